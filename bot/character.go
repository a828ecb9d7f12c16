package bot

import "mashbot/domain"

// Character は機種ごとの行動パラメータです。
type Character struct {
	Name string
	// OtherAircraftDistance は体力満タン時に敵機と保つ基準距離です。
	OtherAircraftDistance float64
	// FleeHealth 以下の体力では回避距離を20倍にして逃げに徹します。
	FleeHealth float64
	// IntimateRange は回避中に保とうとする距離です。
	IntimateRange float64
	// PredictPositions が true なら敵の位置をレイテンシ分だけ先読みします。
	PredictPositions bool
}

var characters = map[domain.AircraftType]Character{
	domain.Predator: {Name: "predator", OtherAircraftDistance: 300, FleeHealth: 0.5, IntimateRange: 200, PredictPositions: true},
	domain.Goliath:  {Name: "goliath", OtherAircraftDistance: 250, FleeHealth: 0.3, IntimateRange: 150, PredictPositions: false},
	domain.Mohawk:   {Name: "mohawk", OtherAircraftDistance: 400, FleeHealth: 0.6, IntimateRange: 300, PredictPositions: true},
	domain.Tornado:  {Name: "tornado", OtherAircraftDistance: 300, FleeHealth: 0.5, IntimateRange: 250, PredictPositions: true},
	domain.Prowler:  {Name: "prowler", OtherAircraftDistance: 350, FleeHealth: 0.5, IntimateRange: 200, PredictPositions: true},
}

// CharacterFor は機種の既定キャラクターを返します。未知の機種には predator を使います。
func CharacterFor(t domain.AircraftType) Character {
	if c, ok := characters[t]; ok {
		return c
	}
	return characters[domain.Predator]
}

// CharacterByName は名前でキャラクターを引きます。
func CharacterByName(name string) (Character, bool) {
	t, err := domain.ParseAircraftType(name)
	if err != nil {
		return Character{}, false
	}
	return characters[t], true
}
