package bot

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"mashbot/domain"
	"mashbot/internal/loop/looptest"
	"mashbot/protocol"
	"mashbot/world"
)

var errOffline = errors.New("offline")

type keyEvent struct {
	key     protocol.KeyCode
	pressed bool
}

type fakeControls struct {
	keys     []keyEvent
	commands [][2]string
	err      error
}

func (c *fakeControls) SendKey(key protocol.KeyCode, pressed bool) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, keyEvent{key, pressed})
	return nil
}

func (c *fakeControls) SendCommand(name, data string) error {
	if c.err != nil {
		return c.err
	}
	c.commands = append(c.commands, [2]string{name, data})
	return nil
}

func (c *fakeControls) reset() {
	c.keys = nil
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	clock    *manualClock
	world    *world.World
	exec     *looptest.Inline
	sched    *looptest.ManualScheduler
	controls *fakeControls
}

func newFixture() *fixture {
	clock := &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	exec := &looptest.Inline{}
	return &fixture{
		clock:    clock,
		world:    world.New(world.WithClock(clock.Now)),
		exec:     exec,
		sched:    looptest.NewManualScheduler(exec),
		controls: &fakeControls{},
	}
}

// addPlayer は現在時刻で位置を更新したプレイヤーを追加します。
func (f *fixture) addPlayer(id, team uint16, x, y float64) *domain.Player {
	return f.world.UpsertPlayer(id, func(p *domain.Player) {
		p.Team = team
		p.Type = domain.Predator
		p.SetPos(x, y, f.clock.Now())
	})
}

func (f *fixture) addMe(x, y float64) *domain.Player {
	me := f.addPlayer(1, 1, x, y)
	f.world.SetSelf(1)
	return me
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testCharacter = Character{
	Name:                  "test",
	OtherAircraftDistance: 300,
	FleeHealth:            0.5,
	IntimateRange:         200,
	PredictPositions:      true,
}
