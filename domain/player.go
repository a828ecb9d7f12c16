package domain

import "time"

// Player はワールド上のプレイヤーです。
type Player struct {
	ID       uint16
	Name     string
	Team     uint16
	Type     AircraftType
	Flag     uint16
	Upgrades uint8
	Keystate uint8

	Health      float64
	HealthRegen float64
	Energy      float64
	EnergyRegen float64

	Stealth bool
	// Hidden は視界外に出た通知を受けてから次の位置更新までの間 true です。
	Hidden  bool
	Dead    bool

	// Pos はサーバーから個別に届く高解像度座標です。
	Pos    Pos
	Rot    float64
	SpeedX float64
	SpeedY float64
	// LastUpdate は Pos の最終更新時刻です。
	LastUpdate time.Time

	// LowResPos はスコアボードのミニマップ座標です。未受信なら nil です。
	LowResPos *Pos
}

// NewPlayer は満タンの体力とエネルギーで Player を生成します。
func NewPlayer(id uint16) *Player {
	return &Player{
		ID:     id,
		Health: 1,
		Energy: 1,
	}
}

// SetType は機種を更新します。ゼロ値は既知の値を上書きしません。
func (p *Player) SetType(t AircraftType) {
	if t != 0 {
		p.Type = t
	}
}

// SetPos は高解像度座標を更新し、視界内として扱い始めます。
func (p *Player) SetPos(x, y float64, now time.Time) {
	p.Pos = Pos{X: x, Y: y, Accurate: true}
	p.LastUpdate = now
}

// SetLowResPos はミニマップ由来の低解像度座標を記録します。
func (p *Player) SetLowResPos(x, y float64) {
	p.LowResPos = &Pos{X: x, Y: y, Accurate: false}
}

// IsStale は高解像度座標が StaleAfter 以上更新されていないかを返します。
func (p *Player) IsStale(now time.Time) bool {
	return p.LastUpdate.IsZero() || now.Sub(p.LastUpdate) >= StaleAfter
}

// IsInView は高解像度座標が新しく、視界内にいるとみなせるかを返します。
func (p *Player) IsInView(now time.Time) bool {
	return !p.IsStale(now)
}

// MostReliablePos は高解像度座標が新しければそれを、
// 古ければ低解像度座標を、どちらも無ければ古い高解像度座標を返します。
func (p *Player) MostReliablePos(now time.Time) Pos {
	if p.IsInView(now) {
		return p.Pos
	}
	if p.LowResPos != nil {
		return *p.LowResPos
	}
	return p.Pos
}
