package domain

import "time"

// StaleAfter を超えて更新の無いエンティティは古いとみなします。
const StaleAfter = 2000 * time.Millisecond

// Mob はプレイヤー以外の移動物体(弾・アイテム等)です。
type Mob struct {
	ID         uint16
	OwnerID    uint16
	Type       uint8
	X          float64
	Y          float64
	SpeedX     float64
	SpeedY     float64
	Rot        float64
	Stationary bool
	LastUpdate time.Time
}

// IsStale は最終更新から StaleAfter 以上経過しているかを返します。
func (m *Mob) IsStale(now time.Time) bool {
	return now.Sub(m.LastUpdate) >= StaleAfter
}

// CopyFrom は src の内容でその場更新します。
// OwnerID と Type はゼロ値なら既知の値を残します。
func (m *Mob) CopyFrom(src Mob, now time.Time) {
	m.ID = src.ID
	m.Stationary = src.Stationary
	if src.OwnerID != 0 {
		m.OwnerID = src.OwnerID
	}
	if src.Type != 0 {
		m.Type = src.Type
	}
	m.X = src.X
	m.Y = src.Y
	m.SpeedX = src.SpeedX
	m.SpeedY = src.SpeedY
	m.Rot = src.Rot
	m.LastUpdate = now
}

// Pos は Mob の現在座標です。
func (m *Mob) Pos() Pos {
	return Pos{X: m.X, Y: m.Y, Accurate: true}
}
