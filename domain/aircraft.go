package domain

import (
	"fmt"
	"strings"
)

// AircraftType は機種です。
type AircraftType uint8

const (
	Predator AircraftType = 1
	Goliath  AircraftType = 2
	Mohawk   AircraftType = 3
	Tornado  AircraftType = 4
	Prowler  AircraftType = 5
)

// AircraftTypes は選択可能な全機種です。
var AircraftTypes = []AircraftType{Predator, Goliath, Mohawk, Tornado, Prowler}

func (t AircraftType) String() string {
	switch t {
	case Predator:
		return "predator"
	case Goliath:
		return "goliath"
	case Mohawk:
		return "mohawk"
	case Tornado:
		return "tornado"
	case Prowler:
		return "prowler"
	default:
		return fmt.Sprintf("aircraft(%d)", uint8(t))
	}
}

// ParseAircraftType は機種名を AircraftType に変換します。
func ParseAircraftType(name string) (AircraftType, error) {
	for _, t := range AircraftTypes {
		if strings.EqualFold(t.String(), name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown aircraft type %q", name)
}
