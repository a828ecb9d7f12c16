package bot

import (
	"fmt"

	"mashbot/domain"
)

const GoalGotoLocation = "gotoLocation"

// GotoLocation は固定の地点へ向かい続ける目標です。常に有効です。
type GotoLocation struct {
	pos domain.Pos
}

func NewGotoLocation(pos domain.Pos) *GotoLocation {
	return &GotoLocation{pos: pos}
}

// GotoFactory は pos を巡回先とする TargetFactory を返します。
func GotoFactory(pos domain.Pos) TargetFactory {
	return func(Environment, Character) Target {
		return NewGotoLocation(pos)
	}
}

func (g *GotoLocation) IsValid() bool { return true }

func (g *GotoLocation) Instructions() []Instruction {
	return []Instruction{
		NewGotoLocationInstruction(GotoLocationConfig{TargetPos: g.pos}),
	}
}

func (g *GotoLocation) OnKill(killerID, killedID uint16) {}

func (g *GotoLocation) Info() TargetInfo {
	return TargetInfo{
		Goal: GoalGotoLocation,
		Info: fmt.Sprintf("goto location %g, %g", g.pos.X, g.pos.Y),
	}
}
