package bot

import (
	"fmt"
	"time"

	"mashbot/domain"
)

const (
	GoalAvoid = "avoid"

	fleeAnxiety     = 20
	zeroHealthScale = 100
)

// DodgeEnemies は最も近い敵機から距離を取りつつ撃ち返す目標です。
type DodgeEnemies struct {
	env  Environment
	char Character

	enemyID  uint16
	hasEnemy bool
}

// NewDodgeEnemies は視界内の最も近い敵機を探し、回避距離の内側にいれば追跡対象にします。
func NewDodgeEnemies(env Environment, c Character) *DodgeEnemies {
	d := &DodgeEnemies{env: env, char: c}

	me, ok := env.Me()
	if !ok {
		return d
	}
	now := env.Now()

	var (
		nearest  *domain.Player
		distance float64
	)
	for _, p := range env.Players() {
		if !isThreat(me, p, now) {
			continue
		}
		dist := domain.DeltaTo(me.Pos, p.MostReliablePos(now)).Distance
		if nearest == nil || dist < distance {
			nearest, distance = p, dist
		}
	}
	if nearest != nil && distance < d.distanceToKeep(me) {
		d.enemyID = nearest.ID
		d.hasEnemy = true
	}
	return d
}

// DodgeFactory は Selector 用の TargetFactory です。
func DodgeFactory(env Environment, c Character) Target {
	return NewDodgeEnemies(env, c)
}

func isThreat(me, p *domain.Player, now time.Time) bool {
	return p.ID != me.ID &&
		p.Team != me.Team &&
		!p.Hidden &&
		!p.Stealth &&
		!p.Dead &&
		p.IsInView(now)
}

// distanceToKeep は体力に応じた回避距離です。体力が減るほど広がります。
func (d *DodgeEnemies) distanceToKeep(me *domain.Player) float64 {
	healthFactor := float64(zeroHealthScale)
	if me.Health > 0 {
		healthFactor = 1 / me.Health
	}
	anxiety := 1.0
	if me.Health <= d.char.FleeHealth {
		anxiety = fleeAnxiety
	}
	return d.char.OtherAircraftDistance * healthFactor * anxiety
}

func (d *DodgeEnemies) enemy() (*domain.Player, bool) {
	if !d.hasEnemy {
		return nil, false
	}
	return d.env.Player(d.enemyID)
}

func (d *DodgeEnemies) IsValid() bool {
	me, ok := d.env.Me()
	if !ok {
		return false
	}
	enemy, ok := d.enemy()
	if !ok {
		return false
	}
	now := d.env.Now()
	if !isThreat(me, enemy, now) {
		return false
	}
	return domain.DeltaTo(me.Pos, enemy.MostReliablePos(now)).Distance < d.distanceToKeep(me)
}

func (d *DodgeEnemies) Instructions() []Instruction {
	enemy, ok := d.enemy()
	if !ok {
		return nil
	}
	pos := enemy.MostReliablePos(d.env.Now())
	if d.char.PredictPositions && pos.Accurate {
		pos = domain.PredictPosition(d.env.Ping(), pos, enemy.SpeedX, enemy.SpeedY)
	}
	return []Instruction{
		NewGotoLocationInstruction(GotoLocationConfig{
			TargetPos:       pos,
			DesiredDistance: d.char.IntimateRange,
			Backwards:       true,
		}),
		FireInstruction{},
	}
}

func (d *DodgeEnemies) OnKill(killerID, killedID uint16) {}

func (d *DodgeEnemies) Info() TargetInfo {
	if !d.hasEnemy {
		return TargetInfo{Goal: GoalAvoid, Info: "no enemy in range"}
	}
	id := d.enemyID
	return TargetInfo{Goal: GoalAvoid, Info: fmt.Sprintf("avoiding player %d", id), ID: &id}
}
