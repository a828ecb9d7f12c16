package domain

import (
	"context"
	"errors"
)

//go:generate go tool mockgen -destination=./mocks/transport_mock.go -package=mocks . Transport,Dialer

// ErrConnectionClosed は相手側から正常に切断された場合に Transport.Read が返すエラーです。
var ErrConnectionClosed = errors.New("connection closed")

// Transport は接続が依存するI/O境界です。
type Transport interface {
	Read(ctx context.Context) (data []byte, err error)
	Write(ctx context.Context, data []byte) error
	Close(code int32, reason string) error
}

// Dialer はサーバーへの新しい Transport を確立します。
type Dialer interface {
	Dial(ctx context.Context, url string) (Transport, error)
}
