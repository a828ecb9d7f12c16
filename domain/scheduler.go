package domain

import (
	"context"
	"time"
)

// Executor は関数を単一の順序付け点で実行します。
// ワールドの変更と意思決定はすべて Executor を通して直列化されます。
type Executor interface {
	Submit(ctx context.Context, fn func()) error
}

// Task はスケジュール済みの処理へのハンドルです。
type Task interface {
	// Pending はまだ発火もキャンセルもされていない場合に true を返します。
	Pending() bool
	Cancel()
}

// Scheduler は遅延・周期実行を提供します。コールバックは Executor 上で実行されます。
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
	Every(d time.Duration, fn func()) Task
}
