// Package looptest は単一ループを前提とするコードのテスト用実装を提供します。
package looptest

import (
	"context"
	"slices"
	"sync"
	"time"

	"mashbot/domain"
)

// Inline は Submit された関数を呼び出し元ゴルーチンで排他的に実行する Executor です。
type Inline struct {
	mu sync.Mutex
}

func (e *Inline) Submit(_ context.Context, fn func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
	return nil
}

// Do は fn をループ上の処理と排他的に実行します。テストから状態を読むときに使います。
func (e *Inline) Do(fn func()) {
	_ = e.Submit(context.Background(), fn)
}

// ManualScheduler は Advance で明示的に時間を進める Scheduler です。
type ManualScheduler struct {
	exec domain.Executor

	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTask
}

// NewManualScheduler はコールバックを exec 経由で実行する ManualScheduler を生成します。
func NewManualScheduler(exec domain.Executor) *ManualScheduler {
	return &ManualScheduler{exec: exec}
}

type manualTask struct {
	mu       sync.Mutex
	due      time.Duration
	interval time.Duration
	fn       func()
	done     bool
}

func (t *manualTask) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.done
}

func (t *manualTask) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
}

func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) domain.Task {
	return s.add(d, 0, fn)
}

func (s *ManualScheduler) Every(d time.Duration, fn func()) domain.Task {
	return s.add(d, d, fn)
}

func (s *ManualScheduler) add(d, interval time.Duration, fn func()) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{due: s.now + d, interval: interval, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance は時刻を d 進め、期限の来たタスクを期限順に実行します。
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		t, ok := s.next(target)
		if !ok {
			break
		}
		_ = s.exec.Submit(context.Background(), func() {
			t.mu.Lock()
			if t.done {
				t.mu.Unlock()
				return
			}
			if t.interval == 0 {
				t.done = true
			}
			t.mu.Unlock()
			t.fn()
		})
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// next は target までに期限が来る最も早いタスクを取り出し、時刻をその期限まで進めます。
func (s *ManualScheduler) next(target time.Duration) (*manualTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = slices.DeleteFunc(s.tasks, func(t *manualTask) bool { return !t.Pending() })
	var best *manualTask
	for _, t := range s.tasks {
		if t.due <= target && (best == nil || t.due < best.due) {
			best = t
		}
	}
	if best == nil {
		return nil, false
	}
	s.now = best.due
	if best.interval > 0 {
		best.due += best.interval
	} else {
		s.tasks = slices.DeleteFunc(s.tasks, func(t *manualTask) bool { return t == best })
	}
	return best, true
}

// PendingCount は未発火のタスク数を返します。
func (s *ManualScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if t.Pending() {
			n++
		}
	}
	return n
}
