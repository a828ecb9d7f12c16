package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

var (
	ErrAlreadyStarted = errors.New("loop: start called multiple times")
	ErrNotStarted     = errors.New("loop: not started")
	ErrStopped        = errors.New("loop: stopped")
)

// Config controls the behaviour of the single thread loop.
type Config struct {
	QueueSize int
	Logger    *slog.Logger
}

// Loop は投入された関数を単一のゴルーチンで順番に実行します。
// ワールドの更新・キープアライブ・旋回タイマー・意思決定はすべてここを通ります。
type Loop struct {
	queue  chan func()
	logger *slog.Logger

	started atomic.Bool
	stopped atomic.Bool

	quit chan struct{}
	done chan struct{}
}

// New creates a Loop with the supplied configuration.
func New(cfg Config) *Loop {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		queue:  make(chan func(), queueSize),
		logger: logger,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the single-thread loop. It must be called once.
func (l *Loop) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go l.run(ctx)
	return nil
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.logger.DebugContext(ctx, "loop: context cancelled, shutting down", "err", ctx.Err())
			return
		case <-l.quit:
			l.drain(ctx)
			return
		case fn := <-l.queue:
			l.exec(ctx, fn)
		}
	}
}

// drain は停止時点でキューに残っている関数を実行し切ります。
func (l *Loop) drain(ctx context.Context) {
	for {
		select {
		case fn := <-l.queue:
			l.exec(ctx, fn)
		default:
			return
		}
	}
}

func (l *Loop) exec(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.ErrorContext(ctx, "loop: event panicked", "panic", r)
		}
	}()
	fn()
}

// Submit は fn をキューに積みます。キューが満杯ならブロックします。
// ループ上で実行中の関数から呼ぶとデッドロックし得るため、呼び出し元は別ゴルーチンに限ります。
func (l *Loop) Submit(ctx context.Context, fn func()) error {
	if !l.started.Load() {
		return ErrNotStarted
	}
	if l.stopped.Load() {
		return ErrStopped
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	case l.queue <- fn:
		return nil
	}
}

// TrySubmit はブロックせずに fn を積みます。満杯なら false を返し fn は破棄されます。
func (l *Loop) TrySubmit(fn func()) bool {
	if !l.started.Load() || l.stopped.Load() {
		return false
	}
	select {
	case l.queue <- fn:
		return true
	default:
		l.logger.Warn("loop: queue full, event dropped")
		return false
	}
}

// Done はループが終了すると閉じられます。
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Stop drains the loop and waits for graceful completion.
func (l *Loop) Stop(ctx context.Context) error {
	if !l.stopped.CompareAndSwap(false, true) {
		return ErrStopped
	}
	close(l.quit)
	if !l.started.Load() {
		return nil
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainTimeout stops the loop and waits for completion with the given timeout.
func (l *Loop) DrainTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return l.Stop(ctx)
}
