package bot

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"mashbot/domain"
)

const random = "random"

var flags = []string{
	"AU", "BR", "CA", "CH", "DE", "DK", "ES", "FI", "FR", "GB",
	"IT", "JP", "KR", "NL", "NO", "NZ", "PL", "SE", "UA", "US",
}

// Identity はボットの表示名・国旗・機種です。
type Identity struct {
	Name         string
	Flag         string
	AircraftType domain.AircraftType
}

// NewIdentity は設定値から Identity を作ります。
// 空文字と "random" は無作為に選びます。
func NewIdentity(name, flag, aircraft string) (Identity, error) {
	id := Identity{Name: name, Flag: strings.ToUpper(flag)}
	if id.Name == "" {
		id.Name = "mashbot-" + uuid.NewString()[:8]
	}
	if flag == "" || strings.EqualFold(flag, random) {
		id.Flag = flags[rand.IntN(len(flags))]
	}
	if aircraft == "" || strings.EqualFold(aircraft, random) {
		id.AircraftType = domain.AircraftTypes[rand.IntN(len(domain.AircraftTypes))]
		return id, nil
	}
	t, err := domain.ParseAircraftType(aircraft)
	if err != nil {
		return Identity{}, err
	}
	id.AircraftType = t
	return id, nil
}
