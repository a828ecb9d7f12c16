package bot

import "log/slog"

// Selector は優先順に並んだ候補から毎tick目標を選びます。
// 現在の目標は有効な間維持され、より優先度の高い候補が有効になったときだけ置き換わります。
type Selector struct {
	env       Environment
	char      Character
	factories []TargetFactory
	logger    *slog.Logger

	current  Target
	priority int
}

func NewSelector(env Environment, c Character, logger *slog.Logger, factories ...TargetFactory) *Selector {
	return &Selector{env: env, char: c, factories: factories, logger: logger}
}

// Current は直近に選ばれた目標です。
func (s *Selector) Current() Target {
	return s.current
}

// Next はこのtickの目標を返します。有効な候補が無ければ nil です。
func (s *Selector) Next() Target {
	for i, factory := range s.factories {
		if s.current != nil && i == s.priority {
			if s.current.IsValid() {
				return s.current
			}
			continue
		}
		t := factory(s.env, s.char)
		if t.IsValid() {
			s.switchTo(t, i)
			return t
		}
	}
	if s.current != nil {
		s.logger.Info("bot: target dropped", "goal", s.current.Info().Goal)
		s.current = nil
	}
	return nil
}

func (s *Selector) switchTo(t Target, priority int) {
	info := t.Info()
	attrs := []any{"goal", info.Goal, "info", info.Info}
	if info.ID != nil {
		attrs = append(attrs, "playerID", *info.ID)
	}
	s.logger.Info("bot: target selected", attrs...)
	s.current = t
	s.priority = priority
}

// OnKill は撃墜を現在の目標に伝えます。
func (s *Selector) OnKill(killerID, killedID uint16) {
	if s.current != nil {
		s.current.OnKill(killerID, killedID)
	}
}
