package session

// ChatKind はチャットの種別です。
type ChatKind uint8

const (
	ChatPublic ChatKind = iota
	ChatSay
	ChatTeam
	ChatWhisper
)

func (k ChatKind) String() string {
	switch k {
	case ChatSay:
		return "say"
	case ChatTeam:
		return "team"
	case ChatWhisper:
		return "whisper"
	default:
		return "public"
	}
}

// ChatEvent は受信したチャットです。To は ChatWhisper のときのみ意味を持ちます。
type ChatEvent struct {
	Kind ChatKind
	From uint16
	To   uint16
	Text string
}

// Observer はセッションのイベント通知先です。
// すべてのメソッドは Executor 上で呼ばれるため、ブロックしてはいけません。
type Observer interface {
	// OnStart はログインが成功するたびに呼ばれます。
	OnStart(selfID uint16)
	OnError(err error)
	OnHit(playerID uint16)
	OnKill(killedID, killerID uint16)
	OnRespawn(playerID uint16)
	OnChat(ev ChatEvent)
	OnScore(score uint32, upgrades uint16)
}

// NopObserver は何もしない Observer です。部分的な実装の埋め込みにも使えます。
type NopObserver struct{}

func (NopObserver) OnStart(uint16)         {}
func (NopObserver) OnError(error)          {}
func (NopObserver) OnHit(uint16)           {}
func (NopObserver) OnKill(uint16, uint16)  {}
func (NopObserver) OnRespawn(uint16)       {}
func (NopObserver) OnChat(ChatEvent)       {}
func (NopObserver) OnScore(uint32, uint16) {}
