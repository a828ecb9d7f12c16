package adapterwebsocket

import (
	"context"
	"fmt"

	"github.com/coder/websocket"

	"mashbot/domain"
)

// 1フレームの最大サイズ。ログイン応答は全プレイヤーの一覧を含むため大きめに取ります。
const defaultReadLimit = 1 << 20

// Dialer は coder/websocket で domain.Transport を開く domain.Dialer です。
type Dialer struct {
	Options   *websocket.DialOptions
	ReadLimit int64
}

// NewDialer は既定の設定で Dialer を生成します。
func NewDialer() *Dialer {
	return &Dialer{ReadLimit: defaultReadLimit}
}

func (d *Dialer) Dial(ctx context.Context, url string) (domain.Transport, error) {
	conn, _, err := websocket.Dial(ctx, url, d.Options)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	limit := d.ReadLimit
	if limit <= 0 {
		limit = defaultReadLimit
	}
	conn.SetReadLimit(limit)
	return NewTransportFrom(conn), nil
}

type wsTransport struct {
	conn *websocket.Conn
}

func NewTransportFrom(conn *websocket.Conn) domain.Transport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		return nil, closeError(err)
	}
	return data, nil
}

func (t *wsTransport) Write(ctx context.Context, data []byte) error {
	if err := t.conn.Write(ctx, websocket.MessageBinary, data); err != nil {
		return closeError(err)
	}
	return nil
}

func (t *wsTransport) Close(code int32, reason string) error {
	return t.conn.Close(websocket.StatusCode(code), reason)
}

// closeError は相手からのクローズフレームによる終了を domain.ErrConnectionClosed に揃えます。
func closeError(err error) error {
	if status := websocket.CloseStatus(err); status != -1 {
		return fmt.Errorf("%w: status %d", domain.ErrConnectionClosed, status)
	}
	return err
}
