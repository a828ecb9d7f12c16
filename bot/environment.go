package bot

import (
	"time"

	"mashbot/domain"
	"mashbot/protocol"
)

// Environment は意思決定が参照するワールドの読み取り面です。*world.World が満たします。
type Environment interface {
	Me() (*domain.Player, bool)
	Players() []*domain.Player
	Player(id uint16) (*domain.Player, bool)
	Ping() time.Duration
	Now() time.Time
}

// Controls はサーバーへの操作出力です。*session.Session が満たします。
type Controls interface {
	SendKey(key protocol.KeyCode, pressed bool) error
	SendCommand(name, data string) error
}
