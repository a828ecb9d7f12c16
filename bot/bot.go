package bot

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"mashbot/domain"
	"mashbot/session"
)

// ErrInitializationFailed は必須の依存が欠けている場合に New が返すエラーです。
var ErrInitializationFailed = errors.New("failed to initialize bot")

// Config はボットの設定です。
type Config struct {
	AircraftType domain.AircraftType
	TickInterval time.Duration
	// Patrol は敵がいないときに向かう地点です。
	Patrol domain.Pos
}

// Option は Bot の生成オプションです。
type Option func(*Bot)

func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = l
	}
}

// WithCharacter は機種の既定キャラクターを差し替えます。
func WithCharacter(c Character) Option {
	return func(b *Bot) {
		b.char = c
		b.hasChar = true
	}
}

// Bot は tick ごとに目標を選び、命令をキー入力に変換します。
// session.Observer としてセッションのイベントも受け取ります。
// すべてのメソッドは Executor 上で呼ぶ必要があります。
type Bot struct {
	cfg      Config
	env      Environment
	controls Controls
	sched    domain.Scheduler
	logger   *slog.Logger

	char     Character
	hasChar  bool
	selector *Selector
	steering *Steering
	ticker   domain.Task
}

var _ session.Observer = (*Bot)(nil)

func New(cfg Config, env Environment, controls Controls, sched domain.Scheduler, opts ...Option) (*Bot, error) {
	if env == nil || controls == nil || sched == nil {
		return nil, ErrInitializationFailed
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}
	b := &Bot{
		cfg:      cfg,
		env:      env,
		controls: controls,
		sched:    sched,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if !b.hasChar {
		b.char = CharacterFor(cfg.AircraftType)
	}
	b.selector = NewSelector(env, b.char, b.logger, DodgeFactory, GotoFactory(cfg.Patrol))
	b.steering = NewSteering(controls, sched, b.logger)
	return b, nil
}

// Start は tick の周期実行を始めます。
func (b *Bot) Start() {
	if b.ticker != nil {
		return
	}
	b.ticker = b.sched.Every(b.cfg.TickInterval, b.Tick)
}

// Stop は tick を止めてすべてのキーを離します。
func (b *Bot) Stop() {
	if b.ticker != nil {
		b.ticker.Cancel()
		b.ticker = nil
	}
	b.steering.ReleaseAll()
}

// Character は使用中のキャラクターです。
func (b *Bot) Character() Character {
	return b.char
}

// Tick は1回分の意思決定と操作を行います。
func (b *Bot) Tick() {
	me, ok := b.env.Me()
	if !ok || me.Dead {
		b.steering.ReleaseAll()
		return
	}
	target := b.selector.Next()
	if target == nil {
		b.steering.ReleaseAll()
		return
	}
	b.steering.Execute(me, target.Instructions())
}

func (b *Bot) OnStart(selfID uint16) {
	b.logger.Info("bot: logged in, requesting aircraft", "selfID", selfID, "aircraft", b.cfg.AircraftType, "character", b.char.Name)
	if err := b.controls.SendCommand("respawn", strconv.Itoa(int(b.cfg.AircraftType))); err != nil {
		b.logger.Warn("bot: respawn command failed", "err", err)
	}
}

func (b *Bot) OnError(err error) {
	b.logger.Warn("bot: session error", "err", err)
}

func (b *Bot) OnHit(playerID uint16) {
	if me, ok := b.env.Me(); ok && me.ID == playerID {
		b.logger.Debug("bot: hit", "health", me.Health)
	}
}

func (b *Bot) OnKill(killedID, killerID uint16) {
	b.selector.OnKill(killerID, killedID)
	if me, ok := b.env.Me(); ok && me.ID == killedID {
		b.logger.Info("bot: shot down", "killer", killerID)
		b.steering.ReleaseAll()
	}
}

func (b *Bot) OnRespawn(playerID uint16) {
	if me, ok := b.env.Me(); ok && me.ID == playerID {
		b.logger.Info("bot: respawned", "x", me.Pos.X, "y", me.Pos.Y)
	}
}

func (b *Bot) OnChat(ev session.ChatEvent) {
	b.logger.Debug("bot: chat", "kind", ev.Kind, "from", ev.From, "text", ev.Text)
}

func (b *Bot) OnScore(score uint32, upgrades uint16) {
	b.logger.Debug("bot: score", "score", score, "upgrades", upgrades)
}
