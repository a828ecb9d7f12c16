package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"mashbot/domain"
	"mashbot/protocol"
	"mashbot/world"
)

var (
	// ErrRetriesExhausted はプライマリ接続の再試行上限に達した場合に Run が返す終端エラーです。
	ErrRetriesExhausted = errors.New("session: primary connection retries exhausted")
	// ErrPrimaryClosed はサーバーがプライマリ接続を正常に閉じた場合に Run が返す終端エラーです。
	ErrPrimaryClosed = errors.New("session: primary connection closed by server")
	// ErrConnectionClosed は接続の切断を Observer に通知する際のエラーです。
	ErrConnectionClosed = errors.New("session: connection closed")
	// ErrNotConnected はプライマリ接続が無い状態で送信しようとした場合のエラーです。
	ErrNotConnected = errors.New("session: primary connection not established")
	// ErrChatThrottled はチャットの送信レートを超えた場合のエラーです。
	ErrChatThrottled = errors.New("session: chat throttled")
	// ErrAlreadyRunning は Run を二重に呼んだ場合のエラーです。
	ErrAlreadyRunning = errors.New("session: already running")
	// ErrLoginRejected はサーバーがログインを拒否した場合のエラーです。
	ErrLoginRejected = errors.New("session: login rejected")
	// ErrServer はサーバーから Error メッセージを受け取った場合のエラーです。
	ErrServer = errors.New("session: server error")
	// ErrInitializationFailed は必須の依存が欠けている場合に New が返すエラーです。
	ErrInitializationFailed = errors.New("failed to initialize session")
)

// Config はセッションの設定です。
type Config struct {
	URL               string
	ProtocolVersion   uint8
	ViewportWidth     uint16
	ViewportHeight    uint16
	KeepaliveInterval time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	WriteQueueSize    int
	ChatPerSecond     float64
	ChatBurst         int
}

// DefaultConfig は url に接続する既定の設定を返します。
func DefaultConfig(url string) Config {
	return Config{
		URL:               url,
		ProtocolVersion:   5,
		ViewportWidth:     640,
		ViewportHeight:    480,
		KeepaliveInterval: 50 * time.Millisecond,
		MaxRetries:        3,
		RetryDelay:        500 * time.Millisecond,
		WriteQueueSize:    256,
		ChatPerSecond:     1,
		ChatBurst:         3,
	}
}

// Identity はログインに使う表示名と国旗です。
type Identity struct {
	Name string
	Flag string
}

// Option は Session の生成オプションです。
type Option func(*Session)

// WithObserver はイベントの通知先を設定します。
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// WithLogger はロガーを設定します。
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// Session はプライマリとバックアップの2本の接続を所有し、
// ログイン・キープアライブ・受信ディスパッチ・再接続を行います。
//
// Run 以外のメソッドと全コールバックは Executor 上で実行されます。
type Session struct {
	cfg      Config
	dialer   domain.Dialer
	world    *world.World
	exec     domain.Executor
	sched    domain.Scheduler
	observer Observer
	logger   *slog.Logger
	metrics  *metrics
	chat     *rate.Limiter

	running  atomic.Bool
	ctx      context.Context
	group    *errgroup.Group
	terminal chan error

	// 以下は Executor 上でのみ触ります
	state      State
	identity   Identity
	primary    *conn
	backup     *conn
	nextID     uint64
	wantPrim   uint64
	wantBackup uint64
	keepalive  domain.Task
	pruner     domain.Task
	retry      domain.Task
}

// New は Session を生成します。exec と sched は同じ順序付け点を共有している必要があります。
func New(cfg Config, dialer domain.Dialer, w *world.World, exec domain.Executor, sched domain.Scheduler, opts ...Option) (*Session, error) {
	if dialer == nil || w == nil || exec == nil || sched == nil {
		return nil, ErrInitializationFailed
	}
	if cfg.KeepaliveInterval <= 0 {
		cfg.KeepaliveInterval = 50 * time.Millisecond
	}
	if cfg.WriteQueueSize <= 0 {
		cfg.WriteQueueSize = 256
	}
	m, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitializationFailed, err)
	}

	limit := rate.Inf
	if cfg.ChatPerSecond > 0 {
		limit = rate.Limit(cfg.ChatPerSecond)
	}
	burst := cfg.ChatBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Session{
		cfg:      cfg,
		dialer:   dialer,
		world:    w,
		exec:     exec,
		sched:    sched,
		observer: NopObserver{},
		logger:   slog.Default(),
		metrics:  m,
		chat:     rate.NewLimiter(limit, burst),
		terminal: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run はプライマリ接続を開いてログインし、ctx のキャンセルか終端エラーまでブロックします。
func (s *Session) Run(ctx context.Context, identity Identity) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	s.group = g
	s.ctx = gctx

	if err := s.exec.Submit(ctx, func() {
		s.identity = identity
		s.dial(RolePrimary)
	}); err != nil {
		return err
	}

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-s.terminal:
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
	if serr := s.exec.Submit(shutdownCtx, s.shutdown); serr != nil {
		s.logger.Warn("session: shutdown skipped", "err", serr)
	}
	stop()
	cancel()
	_ = g.Wait()
	return err
}

// SetObserver は通知先を差し替えます。Run より前に呼ぶ必要があります。
func (s *Session) SetObserver(o Observer) {
	if o == nil {
		o = NopObserver{}
	}
	s.observer = o
}

// State はセッション状態のコピーを返します。
func (s *Session) State() State {
	return s.state
}

// SendKey はキー状態の変化をプライマリ接続に送り、
// バックアップが有効なら同じメッセージを複製します。
// プライマリが切断・再接続待ちの間もバックアップだけで送信を続け、
// どちらの接続にも積めなかった場合のみエラーを返します。
func (s *Session) SendKey(key protocol.KeyCode, pressed bool) error {
	mirror := s.state.BackupLive && s.backup != nil
	if s.primary == nil && !mirror {
		return ErrNotConnected
	}
	st, seq := s.state.NextKeySeq()
	s.state = st
	msg := &protocol.Key{Seq: seq, Key: key, State: pressed}

	var errs []error
	accepted := false
	if s.primary != nil {
		if err := s.write(s.primary, msg); err != nil {
			errs = append(errs, fmt.Errorf("primary: %w", err))
		} else {
			accepted = true
		}
	}
	if mirror {
		if err := s.write(s.backup, msg); err != nil {
			s.logger.Debug("session: key mirror to backup failed", "err", err)
			errs = append(errs, fmt.Errorf("backup: %w", err))
		} else {
			accepted = true
		}
	}
	if !accepted {
		return fmt.Errorf("%w: %w", ErrNotConnected, errors.Join(errs...))
	}
	s.metrics.keysSent.Add(s.ctx, 1)
	return nil
}

// SendCommand はサーバーコマンドをプライマリ接続に送ります。
func (s *Session) SendCommand(name, data string) error {
	if s.primary == nil {
		return ErrNotConnected
	}
	return s.write(s.primary, &protocol.Command{Com: name, Data: data})
}

// SendChat はチャットをプライマリ接続に送ります。target は ChatWhisper のときのみ使います。
func (s *Session) SendChat(kind ChatKind, text string, target uint16) error {
	if s.primary == nil {
		return ErrNotConnected
	}
	if !s.chat.Allow() {
		return ErrChatThrottled
	}
	var msg protocol.ClientMessage
	switch kind {
	case ChatSay:
		msg = &protocol.Say{Text: text}
	case ChatTeam:
		msg = &protocol.TeamChat{Text: text}
	case ChatWhisper:
		msg = &protocol.Whisper{ID: target, Text: text}
	default:
		msg = &protocol.Chat{Text: text}
	}
	return s.write(s.primary, msg)
}

func (s *Session) write(c *conn, msg protocol.ClientMessage) error {
	data, err := protocol.EncodeClient(msg)
	if err != nil {
		return err
	}
	return c.send(data)
}

// submit は別ゴルーチンから Executor へ処理を戻します。
func (s *Session) submit(fn func()) {
	if err := s.exec.Submit(s.ctx, fn); err != nil && s.ctx.Err() == nil {
		s.logger.Warn("session: event dropped", "err", err)
	}
}

// dial は role の接続を非同期に開きます。完了は onDialed で受け取ります。
func (s *Session) dial(role Role) {
	s.nextID++
	id := s.nextID
	if role == RolePrimary {
		s.wantPrim = id
	} else {
		s.wantBackup = id
	}
	s.logger.Info("session: dialing", "role", role, "url", s.cfg.URL, "conn", id)

	s.group.Go(func() error {
		transport, err := s.dialer.Dial(s.ctx, s.cfg.URL)
		if serr := s.exec.Submit(s.ctx, func() { s.onDialed(role, id, transport, err) }); serr != nil && transport != nil {
			_ = transport.Close(closeNormal, "session stopped")
		}
		return nil
	})
}

func (s *Session) wanted(role Role, id uint64) bool {
	if role == RolePrimary {
		return s.wantPrim == id
	}
	return s.wantBackup == id
}

func (s *Session) onDialed(role Role, id uint64, transport domain.Transport, err error) {
	if s.ctx.Err() != nil || !s.wanted(role, id) {
		if transport != nil {
			_ = transport.Close(closeNormal, "superseded")
		}
		return
	}
	if err != nil {
		s.metrics.connError(s.ctx, role)
		s.report(fmt.Errorf("%s connection: %w", role, err))
		if role == RolePrimary {
			s.retryPrimary()
		}
		return
	}

	c := newConn(s.ctx, id, role, transport, s.cfg.WriteQueueSize)
	onEnd := func(err error) { s.submit(func() { s.onConnEnd(c, err) }) }
	s.group.Go(func() error {
		c.readLoop(func(data []byte) {
			s.submit(func() { s.onFrame(c, data) })
		}, onEnd)
		return nil
	})
	s.group.Go(func() error {
		c.writeLoop(onEnd)
		return nil
	})

	if role == RolePrimary {
		s.primary = c
		s.onPrimaryOpen(c)
		return
	}
	s.backup = c
	s.onBackupOpen(c)
}

func (s *Session) onPrimaryOpen(c *conn) {
	s.state = s.state.PrimaryOpened()
	s.logger.Info("session: primary connected, logging in", "conn", c.id, "name", s.identity.Name)
	err := s.write(c, &protocol.LoginRequest{
		Protocol: s.cfg.ProtocolVersion,
		Name:     s.identity.Name,
		Session:  "none",
		HorizonX: s.cfg.ViewportWidth,
		HorizonY: s.cfg.ViewportHeight,
		Flag:     s.identity.Flag,
	})
	if err != nil {
		s.report(fmt.Errorf("send login: %w", err))
	}
}

func (s *Session) onBackupOpen(c *conn) {
	if err := s.write(c, &protocol.BackupRequest{Token: s.state.Token}); err != nil {
		s.report(fmt.Errorf("send backup token: %w", err))
		return
	}
	s.state = s.state.BackupOpened()
	s.logger.Info("session: backup connected", "conn", c.id)
}

// onConnEnd は読み書きループが終了したときに呼ばれます。
func (s *Session) onConnEnd(c *conn, err error) {
	if c.ended || c.closing {
		return
	}
	c.ended = true
	c.close("")

	current := (c.role == RolePrimary && s.primary == c) || (c.role == RoleBackup && s.backup == c)
	if !current {
		return
	}

	clean := errors.Is(err, domain.ErrConnectionClosed)
	if !clean {
		s.metrics.connError(s.ctx, c.role)
		s.report(fmt.Errorf("%s connection error: %w", c.role, err))
	}
	s.report(fmt.Errorf("%s: %w", c.role, ErrConnectionClosed))

	if c.role == RoleBackup {
		s.backup = nil
		s.state = s.state.BackupLost()
		return
	}

	s.primary = nil
	if clean {
		s.fail(ErrPrimaryClosed)
		return
	}
	s.retryPrimary()
}

func (s *Session) retryPrimary() {
	st, ok := s.state.PrimaryFailed(s.cfg.MaxRetries)
	s.state = st
	if !ok {
		s.report(ErrRetriesExhausted)
		s.fail(ErrRetriesExhausted)
		return
	}
	s.metrics.reconnects.Add(s.ctx, 1)
	s.logger.Warn("session: reconnecting primary", "attempt", st.PrimaryRetries, "max", s.cfg.MaxRetries)
	if s.cfg.RetryDelay <= 0 {
		s.dial(RolePrimary)
		return
	}
	s.retry = s.sched.AfterFunc(s.cfg.RetryDelay, func() {
		if s.ctx.Err() == nil {
			s.dial(RolePrimary)
		}
	})
}

// ackTick はキープアライブを1回送ります。送信先は毎回プライマリとバックアップで交互になります。
func (s *Session) ackTick() {
	st, target := s.state.NextAck()
	s.state = st
	c := s.primary
	if target == RoleBackup {
		if !s.state.BackupLive {
			return
		}
		c = s.backup
	}
	if c == nil {
		return
	}
	if err := s.write(c, &protocol.Ack{}); err != nil {
		s.logger.Warn("session: ack dropped", "role", target, "err", err)
	}
}

func (s *Session) prune() {
	if n := s.world.PruneStaleMobs(); n > 0 {
		s.logger.Debug("session: pruned stale mobs", "count", n)
	}
}

func (s *Session) report(err error) {
	s.logger.Warn("session: error", "err", err)
	s.observer.OnError(err)
}

func (s *Session) fail(err error) {
	select {
	case s.terminal <- err:
	default:
	}
}

func (s *Session) shutdown() {
	for _, t := range []domain.Task{s.keepalive, s.pruner, s.retry} {
		if t != nil {
			t.Cancel()
		}
	}
	if s.backup != nil {
		s.backup.close("shutdown")
		s.backup = nil
	}
	if s.primary != nil {
		s.primary.close("shutdown")
		s.primary = nil
	}
	s.state.BackupLive = false
}
