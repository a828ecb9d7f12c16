package session

import (
	"context"
	"errors"

	"mashbot/domain"
)

// websocket の正常終了コード
const closeNormal int32 = 1000

var (
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
	// ErrConnClosing は閉じた接続に書き込もうとした場合に返されるエラーです。
	ErrConnClosing = errors.New("connection is closing")
)

// conn は1本の物理接続です。読み書きはそれぞれ専用ゴルーチンで行い、
// 結果はすべて Session の Executor に戻されます。
type conn struct {
	id        uint64
	role      Role
	transport domain.Transport
	writeCh   chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	// 以下は Executor 上でのみ触ります
	closing bool
	ended   bool
}

func newConn(parent context.Context, id uint64, role Role, transport domain.Transport, queueSize int) *conn {
	ctx, cancel := context.WithCancel(parent)
	return &conn{
		id:        id,
		role:      role,
		transport: transport,
		writeCh:   make(chan []byte, queueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// send は書き込みをキューに積みます。ブロックしません。
func (c *conn) send(data []byte) error {
	if c.closing {
		return ErrConnClosing
	}
	select {
	case c.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// readLoop は受信フレームを onFrame に、終了理由を onEnd に渡します。
func (c *conn) readLoop(onFrame func(data []byte), onEnd func(err error)) {
	for {
		data, err := c.transport.Read(c.ctx)
		if err != nil {
			if c.ctx.Err() == nil {
				onEnd(err)
			}
			return
		}
		onFrame(data)
	}
}

func (c *conn) writeLoop(onEnd func(err error)) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.writeCh:
			if err := c.transport.Write(c.ctx, data); err != nil {
				if c.ctx.Err() == nil {
					onEnd(err)
				}
				return
			}
		}
	}
}

// close は接続を意図的に閉じます。以降の読み書きエラーは報告されません。
func (c *conn) close(reason string) {
	if c.closing {
		return
	}
	c.closing = true
	c.cancel()
	_ = c.transport.Close(closeNormal, reason)
}
