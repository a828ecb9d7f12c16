package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"mashbot/domain"
	"mashbot/domain/mocks"
	"mashbot/internal/loop/looptest"
	"mashbot/protocol"
	"mashbot/world"
)

const (
	testURL     = "ws://arena.test/ffa"
	waitFor     = 2 * time.Second
	pollEvery   = 5 * time.Millisecond
	testSelfID  = 7
	testEnemyID = 9
)

var errNoTransport = errors.New("no transport queued")

// fakeTransport はメモリ上で読み書きする domain.Transport です。
type fakeTransport struct {
	inbox  chan []byte
	failCh chan error

	mu      sync.Mutex
	written [][]byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbox:  make(chan []byte, 64),
		failCh: make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) Read(ctx context.Context) ([]byte, error) {
	select {
	case data := <-f.inbox:
		return data, nil
	case err := <-f.failCh:
		return nil, err
	case <-f.closed:
		return nil, fmt.Errorf("read: %w", domain.ErrConnectionClosed)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) Write(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, data)
	return nil
}

func (f *fakeTransport) Close(int32, string) error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// push はサーバーからのメッセージを受信キューに積みます。
func (f *fakeTransport) push(t *testing.T, msg protocol.ServerMessage) {
	t.Helper()
	data, err := protocol.EncodeServer(msg)
	require.NoError(t, err)
	f.inbox <- data
}

func (f *fakeTransport) sent(t *testing.T) []protocol.ClientMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]protocol.ClientMessage, 0, len(f.written))
	for _, data := range f.written {
		msg, err := protocol.DecodeClient(data)
		require.NoError(t, err)
		out = append(out, msg)
	}
	return out
}

func countSent[T protocol.ClientMessage](t *testing.T, f *fakeTransport) int {
	n := 0
	for _, msg := range f.sent(t) {
		if _, ok := msg.(T); ok {
			n++
		}
	}
	return n
}

type recordingObserver struct {
	NopObserver

	mu       sync.Mutex
	starts   []uint16
	errs     []error
	kills    [][2]uint16
	hits     []uint16
	respawns []uint16
	chats    []ChatEvent
}

func (o *recordingObserver) OnStart(id uint16) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.starts = append(o.starts, id)
}

func (o *recordingObserver) OnError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, err)
}

func (o *recordingObserver) OnKill(killed, killer uint16) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kills = append(o.kills, [2]uint16{killed, killer})
}

func (o *recordingObserver) OnHit(id uint16) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits = append(o.hits, id)
}

func (o *recordingObserver) OnRespawn(id uint16) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.respawns = append(o.respawns, id)
}

func (o *recordingObserver) OnChat(ev ChatEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.chats = append(o.chats, ev)
}

func (o *recordingObserver) sawError(target error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, err := range o.errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (o *recordingObserver) startCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.starts)
}

type harness struct {
	exec     *looptest.Inline
	sched    *looptest.ManualScheduler
	world    *world.World
	session  *Session
	observer *recordingObserver
	dials    chan struct{}
	done     chan error
	cancel   context.CancelFunc
}

// newHarness は transports を接続順に返す Dialer で Session を起動します。
// キューが尽きた後の接続は失敗します。
func newHarness(t *testing.T, cfg Config, transports ...*fakeTransport) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	queue := make(chan *fakeTransport, len(transports))
	for _, tr := range transports {
		queue <- tr
	}
	h := &harness{
		exec:     &looptest.Inline{},
		world:    world.New(),
		observer: &recordingObserver{},
		dials:    make(chan struct{}, 16),
		done:     make(chan error, 1),
	}
	h.sched = looptest.NewManualScheduler(h.exec)

	dialer := mocks.NewMockDialer(ctrl)
	dialer.EXPECT().Dial(gomock.Any(), testURL).DoAndReturn(func(context.Context, string) (domain.Transport, error) {
		h.dials <- struct{}{}
		select {
		case tr := <-queue:
			return tr, nil
		default:
			return nil, errNoTransport
		}
	}).AnyTimes()

	s, err := New(cfg, dialer, h.world, h.exec, h.sched, WithObserver(h.observer))
	require.NoError(t, err)
	h.session = s

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		h.done <- s.Run(ctx, Identity{Name: "tester", Flag: "JP"})
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(waitFor):
			t.Error("session did not stop")
		}
	})
	return h
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		h.done <- err
		return err
	case <-time.After(waitFor):
		t.Fatal("Run did not return")
		return nil
	}
}

func testConfig() Config {
	cfg := DefaultConfig(testURL)
	cfg.RetryDelay = 0
	return cfg
}

func loginMessage(token string) *protocol.Login {
	return &protocol.Login{
		Success: true,
		ID:      testSelfID,
		Team:    1,
		Token:   token,
		Type:    1,
		Room:    "ffa1",
		Players: []protocol.LoginPlayer{
			{ID: testSelfID, Name: "tester", Type: 1, Team: 1, PosX: 0, PosY: 0},
			{ID: testEnemyID, Name: "enemy", Type: 3, Team: 2, PosX: 300, PosY: -200},
		},
	}
}

// loggedIn はログインとバックアップ接続の確立まで進めます。
func loggedIn(t *testing.T) (*harness, *fakeTransport, *fakeTransport) {
	t.Helper()
	primary, backup := newFakeTransport(), newFakeTransport()
	h := newHarness(t, testConfig(), primary, backup)

	require.Eventually(t, func() bool { return countSent[*protocol.LoginRequest](t, primary) == 1 }, waitFor, pollEvery)
	primary.push(t, loginMessage("T1"))
	require.Eventually(t, func() bool { return countSent[*protocol.BackupRequest](t, backup) == 1 }, waitFor, pollEvery)
	return h, primary, backup
}

func TestSession_LoginRequest(t *testing.T) {
	primary := newFakeTransport()
	newHarness(t, testConfig(), primary)

	require.Eventually(t, func() bool { return len(primary.sent(t)) == 1 }, waitFor, pollEvery)
	req, ok := primary.sent(t)[0].(*protocol.LoginRequest)
	require.True(t, ok, "first frame is not a login request")
	assert.Equal(t, uint8(5), req.Protocol)
	assert.Equal(t, "tester", req.Name)
	assert.Equal(t, "none", req.Session)
	assert.Equal(t, uint16(640), req.HorizonX)
	assert.Equal(t, uint16(480), req.HorizonY)
	assert.Equal(t, "JP", req.Flag)
}

func TestSession_LoginPopulatesWorldAndOpensBackup(t *testing.T) {
	h, _, backup := loggedIn(t)

	req := backup.sent(t)[0].(*protocol.BackupRequest)
	assert.Equal(t, "T1", req.Token)

	h.exec.Do(func() {
		me, ok := h.world.Me()
		require.True(t, ok)
		assert.Equal(t, uint16(testSelfID), me.ID)
		assert.Len(t, h.world.Players(), 2)
		enemy, ok := h.world.Player(testEnemyID)
		require.True(t, ok)
		assert.Equal(t, domain.Mohawk, enemy.Type)
		assert.True(t, enemy.Pos.Accurate)
		assert.True(t, h.session.State().BackupLive)
	})
	assert.Equal(t, 1, h.observer.startCount())
}

func TestSession_ReloginReplacesBackup(t *testing.T) {
	primary, first, second := newFakeTransport(), newFakeTransport(), newFakeTransport()
	h := newHarness(t, testConfig(), primary, first, second)

	require.Eventually(t, func() bool { return countSent[*protocol.LoginRequest](t, primary) == 1 }, waitFor, pollEvery)
	primary.push(t, loginMessage("T1"))
	require.Eventually(t, func() bool { return countSent[*protocol.BackupRequest](t, first) == 1 }, waitFor, pollEvery)

	primary.push(t, loginMessage("T2"))
	require.Eventually(t, func() bool { return countSent[*protocol.BackupRequest](t, second) == 1 }, waitFor, pollEvery)

	assert.True(t, first.isClosed(), "previous backup left open")
	assert.False(t, second.isClosed())
	assert.Equal(t, "T2", second.sent(t)[0].(*protocol.BackupRequest).Token)
	assert.Equal(t, 2, h.observer.startCount())
	assert.False(t, h.observer.sawError(ErrConnectionClosed), "replacing the backup reported a close")
}

func TestSession_KeepaliveAlternates(t *testing.T) {
	h, primary, backup := loggedIn(t)

	h.sched.Advance(200 * time.Millisecond)

	require.Eventually(t, func() bool {
		return countSent[*protocol.Ack](t, primary) == 2 && countSent[*protocol.Ack](t, backup) == 2
	}, waitFor, pollEvery)
}

func TestSession_KeepaliveSkipsDeadBackup(t *testing.T) {
	primary := newFakeTransport()
	h := newHarness(t, testConfig(), primary)

	require.Eventually(t, func() bool { return countSent[*protocol.LoginRequest](t, primary) == 1 }, waitFor, pollEvery)
	primary.push(t, loginMessage("T1"))
	require.Eventually(t, func() bool { return h.observer.sawError(errNoTransport) }, waitFor, pollEvery)

	h.sched.Advance(200 * time.Millisecond)

	require.Eventually(t, func() bool { return countSent[*protocol.Ack](t, primary) == 2 }, waitFor, pollEvery)
}

func TestSession_SendKeyMirrorsToBackup(t *testing.T) {
	h, primary, backup := loggedIn(t)

	h.exec.Do(func() {
		require.NoError(t, h.session.SendKey(protocol.KeyUp, true))
		require.NoError(t, h.session.SendKey(protocol.KeyUp, false))
	})

	for _, tr := range []*fakeTransport{primary, backup} {
		require.Eventually(t, func() bool { return countSent[*protocol.Key](t, tr) == 2 }, waitFor, pollEvery)
		var keys []*protocol.Key
		for _, msg := range tr.sent(t) {
			if k, ok := msg.(*protocol.Key); ok {
				keys = append(keys, k)
			}
		}
		assert.Equal(t, &protocol.Key{Seq: 1, Key: protocol.KeyUp, State: true}, keys[0])
		assert.Equal(t, &protocol.Key{Seq: 2, Key: protocol.KeyUp, State: false}, keys[1])
	}
}

func TestSession_SendBeforeConnected(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := &looptest.Inline{}
	s, err := New(testConfig(), mocks.NewMockDialer(ctrl), world.New(), exec, looptest.NewManualScheduler(exec))
	require.NoError(t, err)

	assert.ErrorIs(t, s.SendKey(protocol.KeyFire, true), ErrNotConnected)
	assert.ErrorIs(t, s.SendCommand("respawn", "1"), ErrNotConnected)
}

func TestSession_ChatThrottled(t *testing.T) {
	h, primary, _ := loggedIn(t)

	var errs []error
	h.exec.Do(func() {
		for range 4 {
			errs = append(errs, h.session.SendChat(ChatPublic, "hi", 0))
		}
	})

	for i := range 3 {
		assert.NoError(t, errs[i], "chat %d", i)
	}
	assert.ErrorIs(t, errs[3], ErrChatThrottled)
	require.Eventually(t, func() bool { return countSent[*protocol.Chat](t, primary) == 3 }, waitFor, pollEvery)
}

func TestSession_FireAssignsOwner(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.push(t, &protocol.PlayerFire{
		ID:     testEnemyID,
		Energy: 0.5,
		Projectiles: []protocol.Projectile{
			{ID: 100, Type: 1, PosX: 10, PosY: 20},
			{ID: 101, Type: 1, PosX: 30, PosY: 40},
		},
	})

	require.Eventually(t, func() bool {
		var n int
		h.exec.Do(func() { n = len(h.world.Mobs()) })
		return n == 2
	}, waitFor, pollEvery)

	h.exec.Do(func() {
		for _, m := range h.world.Mobs() {
			assert.Equal(t, uint16(testEnemyID), m.OwnerID, "mob %d", m.ID)
		}
		enemy, _ := h.world.Player(testEnemyID)
		assert.InDelta(t, 0.5, enemy.Energy, 1e-6)
	})
}

func TestSession_StationaryMobKeepsOwner(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.push(t, &protocol.PlayerFire{ID: testEnemyID, Projectiles: []protocol.Projectile{{ID: 100, Type: 2}}})
	primary.push(t, &protocol.MobUpdateStationary{ID: 100, PosX: 50, PosY: 60})

	require.Eventually(t, func() bool {
		var stationary bool
		h.exec.Do(func() {
			if m, ok := h.world.Mob(100); ok {
				stationary = m.Stationary
			}
		})
		return stationary
	}, waitFor, pollEvery)

	h.exec.Do(func() {
		m, _ := h.world.Mob(100)
		assert.Equal(t, uint16(testEnemyID), m.OwnerID)
		assert.Equal(t, uint8(2), m.Type)
		assert.Equal(t, 50.0, m.X)
	})
}

func TestSession_KillAndRespawn(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.push(t, &protocol.PlayerKill{ID: testEnemyID, Killer: testSelfID})
	require.Eventually(t, func() bool {
		h.observer.mu.Lock()
		defer h.observer.mu.Unlock()
		return len(h.observer.kills) == 1
	}, waitFor, pollEvery)
	h.exec.Do(func() {
		enemy, _ := h.world.Player(testEnemyID)
		assert.True(t, enemy.Dead)
	})
	assert.Equal(t, [2]uint16{testEnemyID, testSelfID}, h.observer.kills[0])

	primary.push(t, &protocol.PlayerRespawn{ID: testEnemyID, PosX: 100, PosY: 100})
	require.Eventually(t, func() bool {
		h.observer.mu.Lock()
		defer h.observer.mu.Unlock()
		return len(h.observer.respawns) == 1
	}, waitFor, pollEvery)
	h.exec.Do(func() {
		enemy, _ := h.world.Player(testEnemyID)
		assert.False(t, enemy.Dead)
		assert.Equal(t, 1.0, enemy.Health)
	})
}

func TestSession_HitSkipsUnknownVictims(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.push(t, &protocol.PlayerHit{
		ID: 200,
		Players: []protocol.HitPlayer{
			{ID: 42, Health: 0.1},
			{ID: testSelfID, Health: 0.25, HealthRegen: 0.01},
		},
	})

	require.Eventually(t, func() bool {
		h.observer.mu.Lock()
		defer h.observer.mu.Unlock()
		return len(h.observer.hits) == 1
	}, waitFor, pollEvery)
	assert.Equal(t, []uint16{testSelfID}, h.observer.hits)
	h.exec.Do(func() {
		me, _ := h.world.Me()
		assert.InDelta(t, 0.25, me.Health, 1e-6)
		_, ok := h.world.Player(42)
		assert.False(t, ok, "hit created an unknown player")
	})
}

func TestSession_ScoreBoardSetsLowResPosition(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.push(t, &protocol.ScoreBoard{Rankings: []protocol.Ranking{{ID: testEnemyID, X: 128, Y: 64}}})

	require.Eventually(t, func() bool {
		var done bool
		h.exec.Do(func() {
			enemy, _ := h.world.Player(testEnemyID)
			done = enemy.LowResPos != nil
		})
		return done
	}, waitFor, pollEvery)
	h.exec.Do(func() {
		enemy, _ := h.world.Player(testEnemyID)
		assert.Equal(t, domain.Pos{X: 0, Y: 0, Accurate: false}, *enemy.LowResPos)
	})
}

func TestSession_ChatForwarded(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.push(t, &protocol.ChatWhisper{From: testEnemyID, To: testSelfID, Text: "gg"})

	require.Eventually(t, func() bool {
		h.observer.mu.Lock()
		defer h.observer.mu.Unlock()
		return len(h.observer.chats) == 1
	}, waitFor, pollEvery)
	assert.Equal(t, ChatEvent{Kind: ChatWhisper, From: testEnemyID, To: testSelfID, Text: "gg"}, h.observer.chats[0])
}

func TestSession_DecodeErrorDoesNotStopDispatch(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.inbox <- []byte{byte(protocol.ServerPlayerFire), 0x01}
	primary.push(t, &protocol.PlayerNew{ID: 30, Name: "late", Type: 2, Team: 3})

	require.Eventually(t, func() bool {
		var ok bool
		h.exec.Do(func() { _, ok = h.world.Player(30) })
		return ok
	}, waitFor, pollEvery)
	assert.True(t, h.observer.sawError(protocol.ErrShortFrame))
}

func TestSession_UnknownKindIgnored(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.inbox <- []byte{0xFE, 0x01, 0x02}
	primary.push(t, &protocol.PlayerNew{ID: 31, Name: "after", Type: 1, Team: 4})

	require.Eventually(t, func() bool {
		var ok bool
		h.exec.Do(func() { _, ok = h.world.Player(31) })
		return ok
	}, waitFor, pollEvery)
	h.observer.mu.Lock()
	defer h.observer.mu.Unlock()
	assert.Empty(t, h.observer.errs)
}

func TestSession_LoginRejected(t *testing.T) {
	primary := newFakeTransport()
	h := newHarness(t, testConfig(), primary)

	require.Eventually(t, func() bool { return countSent[*protocol.LoginRequest](t, primary) == 1 }, waitFor, pollEvery)
	primary.push(t, &protocol.Login{Success: false})

	require.Eventually(t, func() bool { return h.observer.sawError(ErrLoginRejected) }, waitFor, pollEvery)
	assert.Equal(t, 0, h.observer.startCount())
}

func TestSession_PrimaryClosedIsTerminal(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.Close(1000, "")

	assert.ErrorIs(t, h.wait(t), ErrPrimaryClosed)
	assert.True(t, h.observer.sawError(ErrConnectionClosed))
}

func TestSession_BackupLossIsNotFatal(t *testing.T) {
	h, primary, backup := loggedIn(t)

	backup.failCh <- errors.New("reset by peer")
	require.Eventually(t, func() bool { return h.observer.sawError(ErrConnectionClosed) }, waitFor, pollEvery)

	h.exec.Do(func() {
		assert.False(t, h.session.State().BackupLive)
		require.NoError(t, h.session.SendKey(protocol.KeyFire, true))
	})
	require.Eventually(t, func() bool { return countSent[*protocol.Key](t, primary) == 1 }, waitFor, pollEvery)
	assert.Equal(t, 0, countSent[*protocol.Key](t, backup))
}

func TestSession_BackupCarriesKeysWhilePrimaryDown(t *testing.T) {
	primary, backup := newFakeTransport(), newFakeTransport()
	cfg := testConfig()
	cfg.RetryDelay = 500 * time.Millisecond
	h := newHarness(t, cfg, primary, backup)

	require.Eventually(t, func() bool { return countSent[*protocol.LoginRequest](t, primary) == 1 }, waitFor, pollEvery)
	primary.push(t, loginMessage("T1"))
	require.Eventually(t, func() bool { return countSent[*protocol.BackupRequest](t, backup) == 1 }, waitFor, pollEvery)

	primary.failCh <- errors.New("reset by peer")
	require.Eventually(t, func() bool { return h.observer.sawError(ErrConnectionClosed) }, waitFor, pollEvery)

	h.exec.Do(func() {
		require.True(t, h.session.State().BackupLive)
		require.NoError(t, h.session.SendKey(protocol.KeyLeft, true))
	})

	require.Eventually(t, func() bool { return countSent[*protocol.Key](t, backup) == 1 }, waitFor, pollEvery)
	for _, msg := range backup.sent(t) {
		if k, ok := msg.(*protocol.Key); ok {
			assert.Equal(t, &protocol.Key{Seq: 1, Key: protocol.KeyLeft, State: true}, k)
		}
	}
	assert.Equal(t, 0, countSent[*protocol.Key](t, primary))
}

func TestSession_RepelTransfersMobOwnership(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.push(t, &protocol.PlayerFire{ID: testEnemyID, Projectiles: []protocol.Projectile{{ID: 100, Type: 1, PosX: 10, PosY: 20}}})
	primary.push(t, &protocol.EventRepel{
		ID:      testSelfID,
		Energy:  0.25,
		Players: []protocol.RepelPlayer{{ID: testEnemyID, PosX: 400, PosY: -300, Health: 0.75}},
		Mobs:    []protocol.RepelMob{{ID: 100, PosX: 15, PosY: 25, SpeedX: -1, SpeedY: -2}},
	})

	require.Eventually(t, func() bool {
		var owner uint16
		h.exec.Do(func() {
			if m, ok := h.world.Mob(100); ok {
				owner = m.OwnerID
			}
		})
		return owner == testSelfID
	}, waitFor, pollEvery)

	h.exec.Do(func() {
		m, _ := h.world.Mob(100)
		assert.Equal(t, uint8(1), m.Type, "repel without a type kept the known type")
		assert.Equal(t, 15.0, m.X)
		assert.Equal(t, -2.0, m.SpeedY)

		enemy, _ := h.world.Player(testEnemyID)
		assert.Equal(t, 400.0, enemy.Pos.X)
		assert.InDelta(t, 0.75, enemy.Health, 1e-6)
		me, _ := h.world.Me()
		assert.InDelta(t, 0.25, me.Energy, 1e-6)
	})
}

func TestSession_MobDespawnRemoves(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.push(t, &protocol.PlayerFire{ID: testEnemyID, Projectiles: []protocol.Projectile{{ID: 100, Type: 1}, {ID: 101, Type: 1}, {ID: 102, Type: 1}}})
	primary.push(t, &protocol.MobDespawn{ID: 100, Type: 1})
	primary.push(t, &protocol.MobDespawnCoords{ID: 101, Type: 1, PosX: 5, PosY: 5})

	require.Eventually(t, func() bool {
		var ids []uint16
		h.exec.Do(func() {
			for _, m := range h.world.Mobs() {
				ids = append(ids, m.ID)
			}
		})
		return len(ids) == 1 && ids[0] == 102
	}, waitFor, pollEvery)
}

func TestSession_LeaveHorizon(t *testing.T) {
	h, primary, _ := loggedIn(t)

	primary.push(t, &protocol.PlayerFire{ID: testEnemyID, Projectiles: []protocol.Projectile{{ID: 100, Type: 1}}})
	primary.push(t, &protocol.EventLeaveHorizon{Type: protocol.HorizonPlayer, ID: testEnemyID})
	primary.push(t, &protocol.EventLeaveHorizon{Type: protocol.HorizonMob, ID: 100})

	require.Eventually(t, func() bool {
		var hidden, mobGone bool
		h.exec.Do(func() {
			p, _ := h.world.Player(testEnemyID)
			hidden = p.Hidden
			_, ok := h.world.Mob(100)
			mobGone = !ok
		})
		return hidden && mobGone
	}, waitFor, pollEvery)

	primary.push(t, &protocol.PlayerUpdate{ID: testEnemyID, PosX: 310, PosY: -190})
	require.Eventually(t, func() bool {
		var visible bool
		h.exec.Do(func() {
			p, _ := h.world.Player(testEnemyID)
			visible = !p.Hidden && p.Pos.X == 310
		})
		return visible
	}, waitFor, pollEvery)
}

func TestSession_PlayerEvents(t *testing.T) {
	tests := []struct {
		name  string
		msg   protocol.ServerMessage
		check func(h *harness) bool
	}{
		{
			name: "stealth",
			msg:  &protocol.EventStealth{ID: testEnemyID, State: true, Energy: 0.5},
			check: func(h *harness) bool {
				p, ok := h.world.Player(testEnemyID)
				return ok && p.Stealth && p.Energy == 0.5
			},
		},
		{
			name: "leave",
			msg:  &protocol.PlayerLeave{ID: testEnemyID},
			check: func(h *harness) bool {
				_, ok := h.world.Player(testEnemyID)
				return !ok && len(h.world.Players()) == 1
			},
		},
		{
			name: "ping result",
			msg:  &protocol.PingResult{Ping: 120, PlayersTotal: 10, PlayersGame: 8},
			check: func(h *harness) bool {
				return h.world.Ping() == 120*time.Millisecond
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, primary, _ := loggedIn(t)
			primary.push(t, tt.msg)

			require.Eventually(t, func() bool {
				var ok bool
				h.exec.Do(func() { ok = tt.check(h) })
				return ok
			}, waitFor, pollEvery)
		})
	}
}

func TestSession_PrimaryReconnects(t *testing.T) {
	first, second := newFakeTransport(), newFakeTransport()
	cfg := testConfig()
	cfg.RetryDelay = 500 * time.Millisecond
	h := newHarness(t, cfg, first, second)

	require.Eventually(t, func() bool { return countSent[*protocol.LoginRequest](t, first) == 1 }, waitFor, pollEvery)
	first.failCh <- errors.New("reset by peer")

	require.Eventually(t, func() bool { return h.sched.PendingCount() == 1 }, waitFor, pollEvery)
	h.sched.Advance(500 * time.Millisecond)

	require.Eventually(t, func() bool { return countSent[*protocol.LoginRequest](t, second) == 1 }, waitFor, pollEvery)
	h.exec.Do(func() {
		assert.Equal(t, 0, h.session.State().PrimaryRetries)
	})
}

func TestSession_RetriesExhausted(t *testing.T) {
	h := newHarness(t, testConfig())

	assert.ErrorIs(t, h.wait(t), ErrRetriesExhausted)
	assert.Len(t, h.dials, 4)
	assert.True(t, h.observer.sawError(ErrRetriesExhausted))
}

func TestSession_RunTwice(t *testing.T) {
	h, _, _ := loggedIn(t)

	err := h.session.Run(context.Background(), Identity{Name: "again"})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}
