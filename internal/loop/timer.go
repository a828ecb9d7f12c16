package loop

import (
	"context"
	"sync/atomic"
	"time"

	"mashbot/domain"
)

const (
	taskPending int32 = iota
	taskFired
	taskCancelled
)

// task は Loop 上で発火する遅延・周期処理のハンドルです。
type task struct {
	state atomic.Int32
	stop  func()
}

func (t *task) Pending() bool {
	return t.state.Load() == taskPending
}

func (t *task) Cancel() {
	if t.state.CompareAndSwap(taskPending, taskCancelled) && t.stop != nil {
		t.stop()
	}
}

// AfterFunc は d 経過後に fn をループ上で一度だけ実行します。
// 発火前に Cancel された場合、fn は実行されません。
func (l *Loop) AfterFunc(d time.Duration, fn func()) domain.Task {
	t := &task{}
	timer := time.AfterFunc(d, func() {
		// time.AfterFunc のゴルーチン上なのでブロックしてよい
		_ = l.Submit(context.Background(), func() {
			if t.state.CompareAndSwap(taskPending, taskFired) {
				fn()
			}
		})
	})
	t.stop = func() { timer.Stop() }
	return t
}

// Every は d 間隔で fn をループ上で実行します。Cancel するまで継続します。
func (l *Loop) Every(d time.Duration, fn func()) domain.Task {
	t := &task{}
	ticker := time.NewTicker(d)
	quit := make(chan struct{})
	t.stop = func() { close(quit) }

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-l.done:
				return
			case <-ticker.C:
				l.TrySubmit(func() {
					if t.Pending() {
						fn()
					}
				})
			}
		}
	}()
	return t
}
