package bot

import (
	"testing"

	"mashbot/domain"
)

type stubTarget struct {
	goal  string
	valid *bool
	kills int
}

func (s *stubTarget) IsValid() bool                   { return *s.valid }
func (s *stubTarget) Instructions() []Instruction     { return nil }
func (s *stubTarget) OnKill(killerID, killedID uint16) { s.kills++ }
func (s *stubTarget) Info() TargetInfo                { return TargetInfo{Goal: s.goal} }

type stubFactory struct {
	goal  string
	valid bool
	built []*stubTarget
}

func (f *stubFactory) factory(Environment, Character) Target {
	t := &stubTarget{goal: f.goal, valid: &f.valid}
	f.built = append(f.built, t)
	return t
}

func TestSelector_Priority(t *testing.T) {
	high := &stubFactory{goal: "high"}
	low := &stubFactory{goal: "low", valid: true}
	s := NewSelector(nil, testCharacter, discardLogger(), high.factory, low.factory)

	if got := s.Next(); got == nil || got.Info().Goal != "low" {
		t.Fatalf("Next() = %v, want low", got)
	}
	lowTarget := s.Current()

	if got := s.Next(); got != lowTarget {
		t.Errorf("Next() replaced a valid target")
	}
	if len(low.built) != 1 {
		t.Errorf("low factory built %d targets, want 1", len(low.built))
	}

	high.valid = true
	if got := s.Next(); got == nil || got.Info().Goal != "high" {
		t.Fatalf("Next() = %v, want high", got)
	}
	highTarget := s.Current()

	if got := s.Next(); got != highTarget {
		t.Errorf("Next() replaced the valid high priority target")
	}
	if len(high.built) != 3 {
		t.Errorf("high factory built %d targets, want 3", len(high.built))
	}

	high.valid = false
	if got := s.Next(); got == nil || got.Info().Goal != "low" {
		t.Errorf("Next() after high invalid = %v, want low", got)
	}
}

func TestSelector_NoValidTarget(t *testing.T) {
	only := &stubFactory{goal: "only", valid: true}
	s := NewSelector(nil, testCharacter, discardLogger(), only.factory)
	s.Next()

	only.valid = false
	if got := s.Next(); got != nil {
		t.Errorf("Next() = %v, want nil", got)
	}
	if s.Current() != nil {
		t.Error("Current() kept an invalid target")
	}
}

func TestSelector_ForwardsKills(t *testing.T) {
	only := &stubFactory{goal: "only", valid: true}
	s := NewSelector(nil, testCharacter, discardLogger(), only.factory)
	s.OnKill(1, 2)
	s.Next()

	s.OnKill(1, 2)

	if only.built[0].kills != 1 {
		t.Errorf("kills = %d, want 1", only.built[0].kills)
	}
}

func TestSelector_DodgeThenPatrol(t *testing.T) {
	f := newFixture()
	f.addMe(0, 0)
	f.addPlayer(2, 2, 100, 0)
	s := NewSelector(f.world, testCharacter, discardLogger(), DodgeFactory, GotoFactory(domain.Pos{X: 500, Y: 500}))

	if got := s.Next(); got.Info().Goal != GoalAvoid {
		t.Errorf("Next() goal = %q, want %q", got.Info().Goal, GoalAvoid)
	}

	f.world.RemovePlayer(2)
	if got := s.Next(); got.Info().Goal != GoalGotoLocation {
		t.Errorf("Next() goal = %q, want %q", got.Info().Goal, GoalGotoLocation)
	}
}
