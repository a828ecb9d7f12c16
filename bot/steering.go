package bot

import (
	"log/slog"
	"math"
	"time"

	"mashbot/domain"
	"mashbot/protocol"
	"mashbot/utils"
)

// rotationPrecision 未満の旋回要求は無視します。
const rotationPrecision = 0.05

// 機種ごとの旋回速度。押下時間は |delta| / speed * 100ms で見積もります。
var rotationSpeeds = map[domain.AircraftType]float64{
	domain.Predator: 0.39,
	domain.Goliath:  0.24,
	domain.Mohawk:   0.42,
	domain.Tornado:  0.33,
	domain.Prowler:  0.33,
}

func rotationSpeed(t domain.AircraftType) float64 {
	if s, ok := rotationSpeeds[t]; ok {
		return s
	}
	return rotationSpeeds[domain.Predator]
}

// RotationDuration は delta ラジアン旋回するためにキーを押し続ける時間です。
func RotationDuration(t domain.AircraftType, delta float64) time.Duration {
	return time.Duration(math.Abs(delta) / rotationSpeed(t) * 100 * float64(time.Millisecond))
}

// keyState は1キーの最後に送った状態です。変化したときだけ送信します。
type keyState struct {
	key     protocol.KeyCode
	pressed bool
}

func (k *keyState) set(c Controls, pressed bool, logger *slog.Logger) {
	if k.pressed == pressed {
		return
	}
	if err := c.SendKey(k.key, pressed); err != nil {
		logger.Debug("bot: key not sent", "key", k.key, "pressed", pressed, "err", err)
		return
	}
	k.pressed = pressed
}

// Rotate は時間指定のキー押下で旋回します。
// 押下中の旋回が終わるまで新しい要求は受け付けません。
type Rotate struct {
	controls Controls
	sched    domain.Scheduler
	logger   *slog.Logger

	left    keyState
	right   keyState
	release domain.Task
}

func NewRotate(controls Controls, sched domain.Scheduler, logger *slog.Logger) *Rotate {
	return &Rotate{
		controls: controls,
		sched:    sched,
		logger:   logger,
		left:     keyState{key: protocol.KeyLeft},
		right:    keyState{key: protocol.KeyRight},
	}
}

// Busy は旋回キーの解放待ちかどうかを返します。
func (r *Rotate) Busy() bool {
	return r.release != nil && r.release.Pending()
}

func (r *Rotate) Execute(me *domain.Player, delta float64) {
	if r.Busy() || delta == 0 || !utils.Finite(delta) || math.Abs(delta) < rotationPrecision {
		return
	}

	use, other := &r.left, &r.right
	if delta > 0 {
		use, other = &r.right, &r.left
	}
	other.set(r.controls, false, r.logger)
	use.set(r.controls, true, r.logger)

	r.release = r.sched.AfterFunc(RotationDuration(me.Type, delta), func() {
		use.set(r.controls, false, r.logger)
	})
}

// Stop は旋回を中断し、両方のキーを離します。
func (r *Rotate) Stop() {
	if r.release != nil {
		r.release.Cancel()
		r.release = nil
	}
	r.left.set(r.controls, false, r.logger)
	r.right.set(r.controls, false, r.logger)
}

// Steering は命令を実際のキー入力に変換する Actuator です。
// 推進と射撃のキーは毎tick、どの命令も要求しなければ離されます。
type Steering struct {
	controls Controls
	rotate   *Rotate
	logger   *slog.Logger

	held     []*keyState
	asserted map[protocol.KeyCode]bool
}

func NewSteering(controls Controls, sched domain.Scheduler, logger *slog.Logger) *Steering {
	return &Steering{
		controls: controls,
		rotate:   NewRotate(controls, sched, logger),
		logger:   logger,
		held: []*keyState{
			{key: protocol.KeyUp},
			{key: protocol.KeyDown},
			{key: protocol.KeyFire},
		},
		asserted: make(map[protocol.KeyCode]bool),
	}
}

func (s *Steering) Press(key protocol.KeyCode) {
	s.asserted[key] = true
}

func (s *Steering) Turn(me *domain.Player, delta float64) {
	s.rotate.Execute(me, delta)
}

// Execute は1tick分の命令を実行し、要求されなかったキーを離します。
func (s *Steering) Execute(me *domain.Player, instructions []Instruction) {
	clear(s.asserted)
	for _, in := range instructions {
		in.Execute(me, s)
	}
	for _, k := range s.held {
		k.set(s.controls, s.asserted[k.key], s.logger)
	}
}

// ReleaseAll はすべてのキーを離します。
func (s *Steering) ReleaseAll() {
	s.rotate.Stop()
	for _, k := range s.held {
		k.set(s.controls, false, s.logger)
	}
}
