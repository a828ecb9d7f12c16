package bot

import (
	"slices"
	"strings"
	"testing"

	"mashbot/domain"
)

func TestNewIdentity_Random(t *testing.T) {
	id, err := NewIdentity("", "random", "")
	if err != nil {
		t.Fatalf("NewIdentity() error = %v", err)
	}
	if !strings.HasPrefix(id.Name, "mashbot-") || len(id.Name) != len("mashbot-")+8 {
		t.Errorf("Name = %q, want mashbot-xxxxxxxx", id.Name)
	}
	if !slices.Contains(flags, id.Flag) {
		t.Errorf("Flag = %q, not a known flag", id.Flag)
	}
	if !slices.Contains(domain.AircraftTypes, id.AircraftType) {
		t.Errorf("AircraftType = %v, not a known type", id.AircraftType)
	}
}

func TestNewIdentity_Explicit(t *testing.T) {
	id, err := NewIdentity("ace", "jp", "Mohawk")
	if err != nil {
		t.Fatalf("NewIdentity() error = %v", err)
	}
	want := Identity{Name: "ace", Flag: "JP", AircraftType: domain.Mohawk}
	if id != want {
		t.Errorf("NewIdentity() = %+v, want %+v", id, want)
	}
}

func TestNewIdentity_UnknownAircraft(t *testing.T) {
	if _, err := NewIdentity("ace", "JP", "zeppelin"); err == nil {
		t.Error("NewIdentity() with unknown aircraft succeeded, want error")
	}
}

func TestCharacterFor(t *testing.T) {
	for _, at := range domain.AircraftTypes {
		if got := CharacterFor(at).Name; got != at.String() {
			t.Errorf("CharacterFor(%v).Name = %q", at, got)
		}
	}
	if got := CharacterFor(0).Name; got != "predator" {
		t.Errorf("CharacterFor(0).Name = %q, want predator", got)
	}
	if _, ok := CharacterByName("tornado"); !ok {
		t.Error("CharacterByName(tornado) not found")
	}
}
