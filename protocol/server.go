package protocol

import "fmt"

// ServerMessage はサーバーメッセージの閉じた集合です。
// 具体型は本パッケージで定義されたものに限られます。
type ServerMessage interface {
	Kind() ServerKind
	decode(r *reader)
	encode(w *writer)
}

// Login はログイン応答です。自機ID・セッショントークン・現在のプレイヤー一覧を含みます。
type Login struct {
	Success bool
	ID      uint16
	Team    uint16
	Clock   uint32
	Token   string
	Type    uint8
	Room    string
	Players []LoginPlayer
}

// LoginPlayer はログイン時に通知される既存プレイヤーです。
type LoginPlayer struct {
	ID       uint16
	Status   uint8
	Level    uint8
	Name     string
	Type     uint8
	Team     uint16
	PosX     float64
	PosY     float64
	Rot      float64
	Flag     uint16
	Upgrades uint8
}

const loginPlayerMinSize = 2 + 1 + 1 + 1 + 1 + 2 + 4*3 + 2 + 1

func (*Login) Kind() ServerKind { return ServerLogin }

func (m *Login) decode(r *reader) {
	m.Success = r.bool()
	m.ID = r.u16()
	m.Team = r.u16()
	m.Clock = r.u32()
	m.Token = r.text()
	m.Type = r.u8()
	m.Room = r.text()
	n := r.count(loginPlayerMinSize)
	m.Players = make([]LoginPlayer, n)
	for i := range m.Players {
		p := &m.Players[i]
		p.ID = r.u16()
		p.Status = r.u8()
		p.Level = r.u8()
		p.Name = r.text()
		p.Type = r.u8()
		p.Team = r.u16()
		p.PosX = r.f32()
		p.PosY = r.f32()
		p.Rot = r.f32()
		p.Flag = r.u16()
		p.Upgrades = r.u8()
	}
}

func (m *Login) encode(w *writer) {
	w.bool(m.Success)
	w.u16(m.ID)
	w.u16(m.Team)
	w.u32(m.Clock)
	w.text(m.Token)
	w.u8(m.Type)
	w.text(m.Room)
	w.list(len(m.Players))
	for _, p := range m.Players {
		w.u16(p.ID)
		w.u8(p.Status)
		w.u8(p.Level)
		w.text(p.Name)
		w.u8(p.Type)
		w.u16(p.Team)
		w.f32(p.PosX)
		w.f32(p.PosY)
		w.f32(p.Rot)
		w.u16(p.Flag)
		w.u8(p.Upgrades)
	}
}

// BackupAck はバックアップ接続が受理されたことを示します。
type BackupAck struct{}

func (*BackupAck) Kind() ServerKind { return ServerBackup }
func (*BackupAck) decode(*reader)   {}
func (*BackupAck) encode(*writer)   {}

// Ping はサーバーからの死活確認です。
type Ping struct {
	Clock uint32
	Num   uint32
}

func (*Ping) Kind() ServerKind { return ServerPing }

func (m *Ping) decode(r *reader) {
	m.Clock = r.u32()
	m.Num = r.u32()
}

func (m *Ping) encode(w *writer) {
	w.u32(m.Clock)
	w.u32(m.Num)
}

// PingResult は計測されたレイテンシ(ミリ秒)を通知します。
type PingResult struct {
	Ping         uint16
	PlayersTotal uint32
	PlayersGame  uint32
}

func (*PingResult) Kind() ServerKind { return ServerPingResult }

func (m *PingResult) decode(r *reader) {
	m.Ping = r.u16()
	m.PlayersTotal = r.u32()
	m.PlayersGame = r.u32()
}

func (m *PingResult) encode(w *writer) {
	w.u16(m.Ping)
	w.u32(m.PlayersTotal)
	w.u32(m.PlayersGame)
}

// Error はサーバーが通知するエラーコードです。
type Error struct {
	Code uint8
}

func (*Error) Kind() ServerKind   { return ServerError }
func (m *Error) decode(r *reader) { m.Code = r.u8() }
func (m *Error) encode(w *writer) { w.u8(m.Code) }

// PlayerNew は新規参加プレイヤーの通知です。
type PlayerNew struct {
	ID       uint16
	Status   uint8
	Name     string
	Type     uint8
	Team     uint16
	PosX     float64
	PosY     float64
	Rot      float64
	Flag     uint16
	Upgrades uint8
}

func (*PlayerNew) Kind() ServerKind { return ServerPlayerNew }

func (m *PlayerNew) decode(r *reader) {
	m.ID = r.u16()
	m.Status = r.u8()
	m.Name = r.text()
	m.Type = r.u8()
	m.Team = r.u16()
	m.PosX = r.f32()
	m.PosY = r.f32()
	m.Rot = r.f32()
	m.Flag = r.u16()
	m.Upgrades = r.u8()
}

func (m *PlayerNew) encode(w *writer) {
	w.u16(m.ID)
	w.u8(m.Status)
	w.text(m.Name)
	w.u8(m.Type)
	w.u16(m.Team)
	w.f32(m.PosX)
	w.f32(m.PosY)
	w.f32(m.Rot)
	w.u16(m.Flag)
	w.u8(m.Upgrades)
}

// PlayerLeave はプレイヤーの退出通知です。
type PlayerLeave struct {
	ID uint16
}

func (*PlayerLeave) Kind() ServerKind   { return ServerPlayerLeave }
func (m *PlayerLeave) decode(r *reader) { m.ID = r.u16() }
func (m *PlayerLeave) encode(w *writer) { w.u16(m.ID) }

// PlayerUpdate は高解像度の位置更新です。
type PlayerUpdate struct {
	Clock    uint32
	ID       uint16
	Keystate uint8
	Upgrades uint8
	PosX     float64
	PosY     float64
	Rot      float64
	SpeedX   float64
	SpeedY   float64
}

func (*PlayerUpdate) Kind() ServerKind { return ServerPlayerUpdate }

func (m *PlayerUpdate) decode(r *reader) {
	m.Clock = r.u32()
	m.ID = r.u16()
	m.Keystate = r.u8()
	m.Upgrades = r.u8()
	m.PosX = r.f32()
	m.PosY = r.f32()
	m.Rot = r.f32()
	m.SpeedX = r.f32()
	m.SpeedY = r.f32()
}

func (m *PlayerUpdate) encode(w *writer) {
	w.u32(m.Clock)
	w.u16(m.ID)
	w.u8(m.Keystate)
	w.u8(m.Upgrades)
	w.f32(m.PosX)
	w.f32(m.PosY)
	w.f32(m.Rot)
	w.f32(m.SpeedX)
	w.f32(m.SpeedY)
}

// PlayerFire は発射イベントです。弾ごとの所有者は含まれません。
type PlayerFire struct {
	Clock       uint32
	ID          uint16
	Energy      float64
	EnergyRegen float64
	Projectiles []Projectile
}

// Projectile は発射された弾です。
type Projectile struct {
	ID     uint16
	Type   uint8
	PosX   float64
	PosY   float64
	Rot    float64
	SpeedX float64
	SpeedY float64
}

const projectileSize = 2 + 1 + 4*5

func (*PlayerFire) Kind() ServerKind { return ServerPlayerFire }

func (m *PlayerFire) decode(r *reader) {
	m.Clock = r.u32()
	m.ID = r.u16()
	m.Energy = r.f32()
	m.EnergyRegen = r.f32()
	m.Projectiles = make([]Projectile, r.count(projectileSize))
	for i := range m.Projectiles {
		p := &m.Projectiles[i]
		p.ID = r.u16()
		p.Type = r.u8()
		p.PosX = r.f32()
		p.PosY = r.f32()
		p.Rot = r.f32()
		p.SpeedX = r.f32()
		p.SpeedY = r.f32()
	}
}

func (m *PlayerFire) encode(w *writer) {
	w.u32(m.Clock)
	w.u16(m.ID)
	w.f32(m.Energy)
	w.f32(m.EnergyRegen)
	w.list(len(m.Projectiles))
	for _, p := range m.Projectiles {
		w.u16(p.ID)
		w.u8(p.Type)
		w.f32(p.PosX)
		w.f32(p.PosY)
		w.f32(p.Rot)
		w.f32(p.SpeedX)
		w.f32(p.SpeedY)
	}
}

// PlayerHit は被弾イベントです。
type PlayerHit struct {
	ID      uint16
	Type    uint8
	PosX    float64
	PosY    float64
	Owner   uint16
	Players []HitPlayer
}

// HitPlayer は被弾したプレイヤーの体力です。
type HitPlayer struct {
	ID          uint16
	Health      float64
	HealthRegen float64
}

const hitPlayerSize = 2 + 4*2

func (*PlayerHit) Kind() ServerKind { return ServerPlayerHit }

func (m *PlayerHit) decode(r *reader) {
	m.ID = r.u16()
	m.Type = r.u8()
	m.PosX = r.f32()
	m.PosY = r.f32()
	m.Owner = r.u16()
	m.Players = make([]HitPlayer, r.count(hitPlayerSize))
	for i := range m.Players {
		m.Players[i] = HitPlayer{ID: r.u16(), Health: r.f32(), HealthRegen: r.f32()}
	}
}

func (m *PlayerHit) encode(w *writer) {
	w.u16(m.ID)
	w.u8(m.Type)
	w.f32(m.PosX)
	w.f32(m.PosY)
	w.u16(m.Owner)
	w.list(len(m.Players))
	for _, p := range m.Players {
		w.u16(p.ID)
		w.f32(p.Health)
		w.f32(p.HealthRegen)
	}
}

// PlayerRespawn は復活通知です。
type PlayerRespawn struct {
	ID       uint16
	PosX     float64
	PosY     float64
	Rot      float64
	Upgrades uint8
}

func (*PlayerRespawn) Kind() ServerKind { return ServerPlayerRespawn }

func (m *PlayerRespawn) decode(r *reader) {
	m.ID = r.u16()
	m.PosX = r.f32()
	m.PosY = r.f32()
	m.Rot = r.f32()
	m.Upgrades = r.u8()
}

func (m *PlayerRespawn) encode(w *writer) {
	w.u16(m.ID)
	w.f32(m.PosX)
	w.f32(m.PosY)
	w.f32(m.Rot)
	w.u8(m.Upgrades)
}

// PlayerKill は撃墜通知です。
type PlayerKill struct {
	ID     uint16
	Killer uint16
	PosX   float64
	PosY   float64
}

func (*PlayerKill) Kind() ServerKind { return ServerPlayerKill }

func (m *PlayerKill) decode(r *reader) {
	m.ID = r.u16()
	m.Killer = r.u16()
	m.PosX = r.f32()
	m.PosY = r.f32()
}

func (m *PlayerKill) encode(w *writer) {
	w.u16(m.ID)
	w.u16(m.Killer)
	w.f32(m.PosX)
	w.f32(m.PosY)
}

// PlayerType は機種変更の通知です。
type PlayerType struct {
	ID   uint16
	Type uint8
}

func (*PlayerType) Kind() ServerKind { return ServerPlayerType }

func (m *PlayerType) decode(r *reader) {
	m.ID = r.u16()
	m.Type = r.u8()
}

func (m *PlayerType) encode(w *writer) {
	w.u16(m.ID)
	w.u8(m.Type)
}

// PlayerPowerup はパワーアップ取得の通知です。
type PlayerPowerup struct {
	Type     uint8
	Duration uint32
}

func (*PlayerPowerup) Kind() ServerKind { return ServerPlayerPowerup }

func (m *PlayerPowerup) decode(r *reader) {
	m.Type = r.u8()
	m.Duration = r.u32()
}

func (m *PlayerPowerup) encode(w *writer) {
	w.u8(m.Type)
	w.u32(m.Duration)
}

// EventRepel はリペル発動の通知です。跳ね返された弾は発動者の所有になります。
type EventRepel struct {
	Clock       uint32
	ID          uint16
	PosX        float64
	PosY        float64
	Rot         float64
	SpeedX      float64
	SpeedY      float64
	Energy      float64
	EnergyRegen float64
	Players     []RepelPlayer
	Mobs        []RepelMob
}

// RepelPlayer はリペルで弾かれたプレイヤーです。
type RepelPlayer struct {
	ID          uint16
	Keystate    uint8
	PosX        float64
	PosY        float64
	Rot         float64
	SpeedX      float64
	SpeedY      float64
	Energy      float64
	EnergyRegen float64
	Health      float64
	HealthRegen float64
}

// RepelMob はリペルで弾かれた弾です。
type RepelMob struct {
	ID     uint16
	Type   uint8
	PosX   float64
	PosY   float64
	SpeedX float64
	SpeedY float64
}

const (
	repelPlayerSize = 2 + 1 + 4*9
	repelMobSize    = 2 + 1 + 4*4
)

func (*EventRepel) Kind() ServerKind { return ServerEventRepel }

func (m *EventRepel) decode(r *reader) {
	m.Clock = r.u32()
	m.ID = r.u16()
	m.PosX = r.f32()
	m.PosY = r.f32()
	m.Rot = r.f32()
	m.SpeedX = r.f32()
	m.SpeedY = r.f32()
	m.Energy = r.f32()
	m.EnergyRegen = r.f32()
	m.Players = make([]RepelPlayer, r.count(repelPlayerSize))
	for i := range m.Players {
		p := &m.Players[i]
		p.ID = r.u16()
		p.Keystate = r.u8()
		p.PosX = r.f32()
		p.PosY = r.f32()
		p.Rot = r.f32()
		p.SpeedX = r.f32()
		p.SpeedY = r.f32()
		p.Energy = r.f32()
		p.EnergyRegen = r.f32()
		p.Health = r.f32()
		p.HealthRegen = r.f32()
	}
	m.Mobs = make([]RepelMob, r.count(repelMobSize))
	for i := range m.Mobs {
		mob := &m.Mobs[i]
		mob.ID = r.u16()
		mob.Type = r.u8()
		mob.PosX = r.f32()
		mob.PosY = r.f32()
		mob.SpeedX = r.f32()
		mob.SpeedY = r.f32()
	}
}

func (m *EventRepel) encode(w *writer) {
	w.u32(m.Clock)
	w.u16(m.ID)
	w.f32(m.PosX)
	w.f32(m.PosY)
	w.f32(m.Rot)
	w.f32(m.SpeedX)
	w.f32(m.SpeedY)
	w.f32(m.Energy)
	w.f32(m.EnergyRegen)
	w.list(len(m.Players))
	for _, p := range m.Players {
		w.u16(p.ID)
		w.u8(p.Keystate)
		w.f32(p.PosX)
		w.f32(p.PosY)
		w.f32(p.Rot)
		w.f32(p.SpeedX)
		w.f32(p.SpeedY)
		w.f32(p.Energy)
		w.f32(p.EnergyRegen)
		w.f32(p.Health)
		w.f32(p.HealthRegen)
	}
	w.list(len(m.Mobs))
	for _, mob := range m.Mobs {
		w.u16(mob.ID)
		w.u8(mob.Type)
		w.f32(mob.PosX)
		w.f32(mob.PosY)
		w.f32(mob.SpeedX)
		w.f32(mob.SpeedY)
	}
}

// EventBoost はブースト状態とエネルギーの通知です。
type EventBoost struct {
	Clock       uint32
	ID          uint16
	Boost       bool
	PosX        float64
	PosY        float64
	Rot         float64
	SpeedX      float64
	SpeedY      float64
	Energy      float64
	EnergyRegen float64
}

func (*EventBoost) Kind() ServerKind { return ServerEventBoost }

func (m *EventBoost) decode(r *reader) {
	m.Clock = r.u32()
	m.ID = r.u16()
	m.Boost = r.bool()
	m.PosX = r.f32()
	m.PosY = r.f32()
	m.Rot = r.f32()
	m.SpeedX = r.f32()
	m.SpeedY = r.f32()
	m.Energy = r.f32()
	m.EnergyRegen = r.f32()
}

func (m *EventBoost) encode(w *writer) {
	w.u32(m.Clock)
	w.u16(m.ID)
	w.bool(m.Boost)
	w.f32(m.PosX)
	w.f32(m.PosY)
	w.f32(m.Rot)
	w.f32(m.SpeedX)
	w.f32(m.SpeedY)
	w.f32(m.Energy)
	w.f32(m.EnergyRegen)
}

// EventBounce は壁での跳ね返りです。
type EventBounce struct {
	Clock    uint32
	ID       uint16
	Keystate uint8
	PosX     float64
	PosY     float64
	Rot      float64
	SpeedX   float64
	SpeedY   float64
}

func (*EventBounce) Kind() ServerKind { return ServerEventBounce }

func (m *EventBounce) decode(r *reader) {
	m.Clock = r.u32()
	m.ID = r.u16()
	m.Keystate = r.u8()
	m.PosX = r.f32()
	m.PosY = r.f32()
	m.Rot = r.f32()
	m.SpeedX = r.f32()
	m.SpeedY = r.f32()
}

func (m *EventBounce) encode(w *writer) {
	w.u32(m.Clock)
	w.u16(m.ID)
	w.u8(m.Keystate)
	w.f32(m.PosX)
	w.f32(m.PosY)
	w.f32(m.Rot)
	w.f32(m.SpeedX)
	w.f32(m.SpeedY)
}

// EventStealth はステルス状態の変化です。
type EventStealth struct {
	ID          uint16
	State       bool
	Energy      float64
	EnergyRegen float64
}

func (*EventStealth) Kind() ServerKind { return ServerEventStealth }

func (m *EventStealth) decode(r *reader) {
	m.ID = r.u16()
	m.State = r.bool()
	m.Energy = r.f32()
	m.EnergyRegen = r.f32()
}

func (m *EventStealth) encode(w *writer) {
	w.u16(m.ID)
	w.bool(m.State)
	w.f32(m.Energy)
	w.f32(m.EnergyRegen)
}

// EventLeaveHorizon の Type が示す対象です。
const (
	HorizonPlayer uint8 = 0
	HorizonMob    uint8 = 1
)

// EventLeaveHorizon は視界外に出たオブジェクトの通知です。
type EventLeaveHorizon struct {
	Type uint8
	ID   uint16
}

func (*EventLeaveHorizon) Kind() ServerKind { return ServerEventLeaveHorizon }

func (m *EventLeaveHorizon) decode(r *reader) {
	m.Type = r.u8()
	m.ID = r.u16()
}

func (m *EventLeaveHorizon) encode(w *writer) {
	w.u8(m.Type)
	w.u16(m.ID)
}

// MobUpdate は移動するMobの更新です。
type MobUpdate struct {
	Clock  uint32
	ID     uint16
	Type   uint8
	PosX   float64
	PosY   float64
	SpeedX float64
	SpeedY float64
}

func (*MobUpdate) Kind() ServerKind { return ServerMobUpdate }

func (m *MobUpdate) decode(r *reader) {
	m.Clock = r.u32()
	m.ID = r.u16()
	m.Type = r.u8()
	m.PosX = r.f32()
	m.PosY = r.f32()
	m.SpeedX = r.f32()
	m.SpeedY = r.f32()
}

func (m *MobUpdate) encode(w *writer) {
	w.u32(m.Clock)
	w.u16(m.ID)
	w.u8(m.Type)
	w.f32(m.PosX)
	w.f32(m.PosY)
	w.f32(m.SpeedX)
	w.f32(m.SpeedY)
}

// MobUpdateStationary は静止Mob(アイテム等)の更新です。
type MobUpdateStationary struct {
	ID   uint16
	Type uint8
	PosX float64
	PosY float64
}

func (*MobUpdateStationary) Kind() ServerKind { return ServerMobUpdateStationary }

func (m *MobUpdateStationary) decode(r *reader) {
	m.ID = r.u16()
	m.Type = r.u8()
	m.PosX = r.f32()
	m.PosY = r.f32()
}

func (m *MobUpdateStationary) encode(w *writer) {
	w.u16(m.ID)
	w.u8(m.Type)
	w.f32(m.PosX)
	w.f32(m.PosY)
}

// MobDespawn はIDによるMob消滅です。
type MobDespawn struct {
	ID   uint16
	Type uint8
}

func (*MobDespawn) Kind() ServerKind { return ServerMobDespawn }

func (m *MobDespawn) decode(r *reader) {
	m.ID = r.u16()
	m.Type = r.u8()
}

func (m *MobDespawn) encode(w *writer) {
	w.u16(m.ID)
	w.u8(m.Type)
}

// MobDespawnCoords は座標付きのMob消滅(衝突等)です。
type MobDespawnCoords struct {
	ID   uint16
	Type uint8
	PosX float64
	PosY float64
}

func (*MobDespawnCoords) Kind() ServerKind { return ServerMobDespawnCoords }

func (m *MobDespawnCoords) decode(r *reader) {
	m.ID = r.u16()
	m.Type = r.u8()
	m.PosX = r.f32()
	m.PosY = r.f32()
}

func (m *MobDespawnCoords) encode(w *writer) {
	w.u16(m.ID)
	w.u8(m.Type)
	w.f32(m.PosX)
	w.f32(m.PosY)
}

// ChatPublic は全体チャットです。
type ChatPublic struct {
	ID   uint16
	Text string
}

func (*ChatPublic) Kind() ServerKind { return ServerChatPublic }

func (m *ChatPublic) decode(r *reader) {
	m.ID = r.u16()
	m.Text = r.text()
}

func (m *ChatPublic) encode(w *writer) {
	w.u16(m.ID)
	w.text(m.Text)
}

// ChatTeam はチームチャットです。
type ChatTeam struct {
	ID   uint16
	Text string
}

func (*ChatTeam) Kind() ServerKind { return ServerChatTeam }

func (m *ChatTeam) decode(r *reader) {
	m.ID = r.u16()
	m.Text = r.text()
}

func (m *ChatTeam) encode(w *writer) {
	w.u16(m.ID)
	w.text(m.Text)
}

// ChatSay は吹き出し表示のチャットです。
type ChatSay struct {
	ID   uint16
	Text string
}

func (*ChatSay) Kind() ServerKind { return ServerChatSay }

func (m *ChatSay) decode(r *reader) {
	m.ID = r.u16()
	m.Text = r.text()
}

func (m *ChatSay) encode(w *writer) {
	w.u16(m.ID)
	w.text(m.Text)
}

// ChatWhisper は個人宛てのチャットです。
type ChatWhisper struct {
	From uint16
	To   uint16
	Text string
}

func (*ChatWhisper) Kind() ServerKind { return ServerChatWhisper }

func (m *ChatWhisper) decode(r *reader) {
	m.From = r.u16()
	m.To = r.u16()
	m.Text = r.text()
}

func (m *ChatWhisper) encode(w *writer) {
	w.u16(m.From)
	w.u16(m.To)
	w.text(m.Text)
}

// ScoreUpdate は自機のスコア更新です。
type ScoreUpdate struct {
	ID          uint16
	Score       uint32
	Earnings    uint32
	Upgrades    uint16
	TotalKills  uint32
	TotalDeaths uint32
}

func (*ScoreUpdate) Kind() ServerKind { return ServerScoreUpdate }

func (m *ScoreUpdate) decode(r *reader) {
	m.ID = r.u16()
	m.Score = r.u32()
	m.Earnings = r.u32()
	m.Upgrades = r.u16()
	m.TotalKills = r.u32()
	m.TotalDeaths = r.u32()
}

func (m *ScoreUpdate) encode(w *writer) {
	w.u16(m.ID)
	w.u32(m.Score)
	w.u32(m.Earnings)
	w.u16(m.Upgrades)
	w.u32(m.TotalKills)
	w.u32(m.TotalDeaths)
}

// ScoreBoard はスコアボードとミニマップ座標のスナップショットです。
type ScoreBoard struct {
	Data     []ScoreEntry
	Rankings []Ranking
}

// ScoreEntry はスコアボードの1行です。
type ScoreEntry struct {
	ID    uint16
	Score uint32
	Level uint8
}

// Ranking はミニマップ上の圧縮座標です。DecodeMinimap で展開します。
type Ranking struct {
	ID uint16
	X  uint8
	Y  uint8
}

const (
	scoreEntrySize = 2 + 4 + 1
	rankingSize    = 2 + 1 + 1
)

func (*ScoreBoard) Kind() ServerKind { return ServerScoreBoard }

func (m *ScoreBoard) decode(r *reader) {
	m.Data = make([]ScoreEntry, r.count(scoreEntrySize))
	for i := range m.Data {
		m.Data[i] = ScoreEntry{ID: r.u16(), Score: r.u32(), Level: r.u8()}
	}
	m.Rankings = make([]Ranking, r.count(rankingSize))
	for i := range m.Rankings {
		m.Rankings[i] = Ranking{ID: r.u16(), X: r.u8(), Y: r.u8()}
	}
}

func (m *ScoreBoard) encode(w *writer) {
	w.list(len(m.Data))
	for _, d := range m.Data {
		w.u16(d.ID)
		w.u32(d.Score)
		w.u8(d.Level)
	}
	w.list(len(m.Rankings))
	for _, rk := range m.Rankings {
		w.u16(rk.ID)
		w.u8(rk.X)
		w.u8(rk.Y)
	}
}

// ServerNotice は画面表示用のサーバーメッセージです。
type ServerNotice struct {
	Type     uint8
	Duration uint32
	Text     string
}

func (*ServerNotice) Kind() ServerKind { return ServerServerMessage }

func (m *ServerNotice) decode(r *reader) {
	m.Type = r.u8()
	m.Duration = r.u32()
	m.Text = r.textBig()
}

func (m *ServerNotice) encode(w *writer) {
	w.u8(m.Type)
	w.u32(m.Duration)
	w.textBig(m.Text)
}

// Unknown は未対応の種別コードを持つメッセージです。本文は読み捨てます。
type Unknown struct {
	Code uint8
}

func (m *Unknown) Kind() ServerKind { return ServerKind(m.Code) }
func (*Unknown) decode(*reader)     {}
func (*Unknown) encode(*writer)     {}

var serverMessages = map[ServerKind]func() ServerMessage{
	ServerLogin:               func() ServerMessage { return &Login{} },
	ServerBackup:              func() ServerMessage { return &BackupAck{} },
	ServerPing:                func() ServerMessage { return &Ping{} },
	ServerPingResult:          func() ServerMessage { return &PingResult{} },
	ServerError:               func() ServerMessage { return &Error{} },
	ServerPlayerNew:           func() ServerMessage { return &PlayerNew{} },
	ServerPlayerLeave:         func() ServerMessage { return &PlayerLeave{} },
	ServerPlayerUpdate:        func() ServerMessage { return &PlayerUpdate{} },
	ServerPlayerFire:          func() ServerMessage { return &PlayerFire{} },
	ServerPlayerHit:           func() ServerMessage { return &PlayerHit{} },
	ServerPlayerRespawn:       func() ServerMessage { return &PlayerRespawn{} },
	ServerPlayerKill:          func() ServerMessage { return &PlayerKill{} },
	ServerPlayerType:          func() ServerMessage { return &PlayerType{} },
	ServerPlayerPowerup:       func() ServerMessage { return &PlayerPowerup{} },
	ServerEventRepel:          func() ServerMessage { return &EventRepel{} },
	ServerEventBoost:          func() ServerMessage { return &EventBoost{} },
	ServerEventBounce:         func() ServerMessage { return &EventBounce{} },
	ServerEventStealth:        func() ServerMessage { return &EventStealth{} },
	ServerEventLeaveHorizon:   func() ServerMessage { return &EventLeaveHorizon{} },
	ServerMobUpdate:           func() ServerMessage { return &MobUpdate{} },
	ServerMobUpdateStationary: func() ServerMessage { return &MobUpdateStationary{} },
	ServerMobDespawn:          func() ServerMessage { return &MobDespawn{} },
	ServerMobDespawnCoords:    func() ServerMessage { return &MobDespawnCoords{} },
	ServerChatPublic:          func() ServerMessage { return &ChatPublic{} },
	ServerChatTeam:            func() ServerMessage { return &ChatTeam{} },
	ServerChatSay:             func() ServerMessage { return &ChatSay{} },
	ServerChatWhisper:         func() ServerMessage { return &ChatWhisper{} },
	ServerScoreUpdate:         func() ServerMessage { return &ScoreUpdate{} },
	ServerScoreBoard:          func() ServerMessage { return &ScoreBoard{} },
	ServerServerMessage:       func() ServerMessage { return &ServerNotice{} },
}

// DecodeServer はサーバーから受信した1フレームをデコードします。
// 未知の種別は *Unknown として返し、エラーにはしません。
func DecodeServer(data []byte) (ServerMessage, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	kind := ServerKind(data[0])
	ctor, ok := serverMessages[kind]
	if !ok {
		return &Unknown{Code: data[0]}, nil
	}
	msg := ctor()
	r := newReader(data[1:])
	msg.decode(r)
	if r.err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, r.err)
	}
	return msg, nil
}

// EncodeServer はサーバーメッセージをフレームにエンコードします。
// 主にテスト用のフェイクサーバーが使います。
func EncodeServer(msg ServerMessage) ([]byte, error) {
	w := newWriter(uint8(msg.Kind()), 64)
	msg.encode(w)
	return w.bytes()
}
