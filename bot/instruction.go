package bot

import (
	"mashbot/domain"
	"mashbot/protocol"
)

// Actuator は命令がこのtickで要求する入力を受け取ります。
type Actuator interface {
	// Press はこのtickの間キーを押し続けることを要求します。
	Press(key protocol.KeyCode)
	// Turn は delta ラジアンの旋回を要求します。正の値は右旋回です。
	Turn(me *domain.Player, delta float64)
}

// Instruction は1tick分の操作です。
type Instruction interface {
	Execute(me *domain.Player, a Actuator)
}

type GotoLocationConfig struct {
	TargetPos domain.Pos
	// DesiredDistance は目標地点と保つ距離です。0 なら地点そのものへ向かいます。
	DesiredDistance float64
	// Backwards が true なら目標を向いたまま後退して距離を取ります。
	Backwards bool
}

// GotoLocationInstruction は目標地点へ機首を向け、前進または後退します。
type GotoLocationInstruction struct {
	cfg GotoLocationConfig
}

func NewGotoLocationInstruction(cfg GotoLocationConfig) *GotoLocationInstruction {
	return &GotoLocationInstruction{cfg: cfg}
}

func (g *GotoLocationInstruction) Config() GotoLocationConfig {
	return g.cfg
}

func (g *GotoLocationInstruction) Execute(me *domain.Player, a Actuator) {
	delta := domain.DeltaTo(me.Pos, g.cfg.TargetPos)
	if delta.Distance == 0 {
		return
	}
	a.Turn(me, domain.AngleDiff(me.Rot, domain.HeadingTo(me.Pos, g.cfg.TargetPos)))

	if g.cfg.Backwards {
		if delta.Distance < g.cfg.DesiredDistance {
			a.Press(protocol.KeyDown)
		}
		return
	}
	if delta.Distance > g.cfg.DesiredDistance {
		a.Press(protocol.KeyUp)
	}
}

// FireInstruction は毎tick射撃します。
type FireInstruction struct{}

func (FireInstruction) Execute(_ *domain.Player, a Actuator) {
	a.Press(protocol.KeyFire)
}
