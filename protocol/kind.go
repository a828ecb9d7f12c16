package protocol

import "fmt"

// ServerKind はサーバーから届くメッセージの種別です。
type ServerKind uint8

const (
	ServerLogin               ServerKind = 0
	ServerBackup              ServerKind = 1
	ServerPing                ServerKind = 5
	ServerPingResult          ServerKind = 6
	ServerError               ServerKind = 8
	ServerPlayerNew           ServerKind = 10
	ServerPlayerLeave         ServerKind = 11
	ServerPlayerUpdate        ServerKind = 12
	ServerPlayerFire          ServerKind = 13
	ServerPlayerHit           ServerKind = 14
	ServerPlayerRespawn       ServerKind = 15
	ServerPlayerKill          ServerKind = 17
	ServerPlayerType          ServerKind = 19
	ServerPlayerPowerup       ServerKind = 20
	ServerEventRepel          ServerKind = 40
	ServerEventBoost          ServerKind = 41
	ServerEventBounce         ServerKind = 42
	ServerEventStealth        ServerKind = 43
	ServerEventLeaveHorizon   ServerKind = 44
	ServerMobUpdate           ServerKind = 60
	ServerMobUpdateStationary ServerKind = 61
	ServerMobDespawn          ServerKind = 62
	ServerMobDespawnCoords    ServerKind = 63
	ServerChatPublic          ServerKind = 70
	ServerChatTeam            ServerKind = 71
	ServerChatSay             ServerKind = 72
	ServerChatWhisper         ServerKind = 73
	ServerScoreUpdate         ServerKind = 80
	ServerScoreBoard          ServerKind = 81
	ServerServerMessage       ServerKind = 90
)

var serverKindNames = map[ServerKind]string{
	ServerLogin:               "login",
	ServerBackup:              "backup",
	ServerPing:                "ping",
	ServerPingResult:          "ping_result",
	ServerError:               "error",
	ServerPlayerNew:           "player_new",
	ServerPlayerLeave:         "player_leave",
	ServerPlayerUpdate:        "player_update",
	ServerPlayerFire:          "player_fire",
	ServerPlayerHit:           "player_hit",
	ServerPlayerRespawn:       "player_respawn",
	ServerPlayerKill:          "player_kill",
	ServerPlayerType:          "player_type",
	ServerPlayerPowerup:       "player_powerup",
	ServerEventRepel:          "event_repel",
	ServerEventBoost:          "event_boost",
	ServerEventBounce:         "event_bounce",
	ServerEventStealth:        "event_stealth",
	ServerEventLeaveHorizon:   "event_leavehorizon",
	ServerMobUpdate:           "mob_update",
	ServerMobUpdateStationary: "mob_update_stationary",
	ServerMobDespawn:          "mob_despawn",
	ServerMobDespawnCoords:    "mob_despawn_coords",
	ServerChatPublic:          "chat_public",
	ServerChatTeam:            "chat_team",
	ServerChatSay:             "chat_say",
	ServerChatWhisper:         "chat_whisper",
	ServerScoreUpdate:         "score_update",
	ServerScoreBoard:          "score_board",
	ServerServerMessage:       "server_message",
}

func (k ServerKind) String() string {
	if name, ok := serverKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// ClientKind はクライアントから送るメッセージの種別です。
type ClientKind uint8

const (
	ClientLogin    ClientKind = 0
	ClientBackup   ClientKind = 1
	ClientHorizon  ClientKind = 2
	ClientAck      ClientKind = 5
	ClientPong     ClientKind = 6
	ClientKey      ClientKind = 10
	ClientCommand  ClientKind = 11
	ClientChat     ClientKind = 20
	ClientWhisper  ClientKind = 21
	ClientSay      ClientKind = 22
	ClientTeamChat ClientKind = 23
)

// KeyCode はKeyメッセージで送るキーです。
type KeyCode uint8

const (
	KeyUp      KeyCode = 1
	KeyDown    KeyCode = 2
	KeyLeft    KeyCode = 3
	KeyRight   KeyCode = 4
	KeyFire    KeyCode = 5
	KeySpecial KeyCode = 6
)

func (k KeyCode) String() string {
	switch k {
	case KeyUp:
		return "UP"
	case KeyDown:
		return "DOWN"
	case KeyLeft:
		return "LEFT"
	case KeyRight:
		return "RIGHT"
	case KeyFire:
		return "FIRE"
	case KeySpecial:
		return "SPECIAL"
	default:
		return fmt.Sprintf("KEY(%d)", uint8(k))
	}
}
