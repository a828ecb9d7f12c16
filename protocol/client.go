package protocol

import "fmt"

// ClientMessage はクライアントからサーバーへ送るメッセージの閉じた集合です。
type ClientMessage interface {
	Kind() ClientKind
	decode(r *reader)
	encode(w *writer)
}

// LoginRequest はプライマリ接続で最初に送るログイン要求です。
type LoginRequest struct {
	Protocol uint8
	Name     string
	Session  string
	HorizonX uint16
	HorizonY uint16
	Flag     string
}

func (*LoginRequest) Kind() ClientKind { return ClientLogin }

func (m *LoginRequest) decode(r *reader) {
	m.Protocol = r.u8()
	m.Name = r.text()
	m.Session = r.text()
	m.HorizonX = r.u16()
	m.HorizonY = r.u16()
	m.Flag = r.text()
}

func (m *LoginRequest) encode(w *writer) {
	w.u8(m.Protocol)
	w.text(m.Name)
	w.text(m.Session)
	w.u16(m.HorizonX)
	w.u16(m.HorizonY)
	w.text(m.Flag)
}

// BackupRequest はバックアップ接続をトークンで既存セッションに紐付けます。
type BackupRequest struct {
	Token string
}

func (*BackupRequest) Kind() ClientKind   { return ClientBackup }
func (m *BackupRequest) decode(r *reader) { m.Token = r.text() }
func (m *BackupRequest) encode(w *writer) { w.text(m.Token) }

// Horizon は視界サイズの変更要求です。
type Horizon struct {
	HorizonX uint16
	HorizonY uint16
}

func (*Horizon) Kind() ClientKind { return ClientHorizon }

func (m *Horizon) decode(r *reader) {
	m.HorizonX = r.u16()
	m.HorizonY = r.u16()
}

func (m *Horizon) encode(w *writer) {
	w.u16(m.HorizonX)
	w.u16(m.HorizonY)
}

// Ack はキープアライブです。
type Ack struct{}

func (*Ack) Kind() ClientKind { return ClientAck }
func (*Ack) decode(*reader)   {}
func (*Ack) encode(*writer)   {}

// Pong はサーバーのPingへの応答です。
type Pong struct {
	Num uint32
}

func (*Pong) Kind() ClientKind   { return ClientPong }
func (m *Pong) decode(r *reader) { m.Num = r.u32() }
func (m *Pong) encode(w *writer) { w.u32(m.Num) }

// Key はキー状態の変化です。Seq は送信ごとに単調増加します。
type Key struct {
	Seq   uint32
	Key   KeyCode
	State bool
}

func (*Key) Kind() ClientKind { return ClientKey }

func (m *Key) decode(r *reader) {
	m.Seq = r.u32()
	m.Key = KeyCode(r.u8())
	m.State = r.bool()
}

func (m *Key) encode(w *writer) {
	w.u32(m.Seq)
	w.u8(uint8(m.Key))
	w.bool(m.State)
}

// Command はサーバーコマンド("respawn" 等)です。
type Command struct {
	Com  string
	Data string
}

func (*Command) Kind() ClientKind { return ClientCommand }

func (m *Command) decode(r *reader) {
	m.Com = r.text()
	m.Data = r.text()
}

func (m *Command) encode(w *writer) {
	w.text(m.Com)
	w.text(m.Data)
}

// Chat は全体チャットです。
type Chat struct {
	Text string
}

func (*Chat) Kind() ClientKind   { return ClientChat }
func (m *Chat) decode(r *reader) { m.Text = r.text() }
func (m *Chat) encode(w *writer) { w.text(m.Text) }

// Whisper は指定プレイヤーへの個人チャットです。
type Whisper struct {
	ID   uint16
	Text string
}

func (*Whisper) Kind() ClientKind { return ClientWhisper }

func (m *Whisper) decode(r *reader) {
	m.ID = r.u16()
	m.Text = r.text()
}

func (m *Whisper) encode(w *writer) {
	w.u16(m.ID)
	w.text(m.Text)
}

// Say は吹き出しチャットです。
type Say struct {
	Text string
}

func (*Say) Kind() ClientKind   { return ClientSay }
func (m *Say) decode(r *reader) { m.Text = r.text() }
func (m *Say) encode(w *writer) { w.text(m.Text) }

// TeamChat はチームチャットです。
type TeamChat struct {
	Text string
}

func (*TeamChat) Kind() ClientKind   { return ClientTeamChat }
func (m *TeamChat) decode(r *reader) { m.Text = r.text() }
func (m *TeamChat) encode(w *writer) { w.text(m.Text) }

var clientMessages = map[ClientKind]func() ClientMessage{
	ClientLogin:    func() ClientMessage { return &LoginRequest{} },
	ClientBackup:   func() ClientMessage { return &BackupRequest{} },
	ClientHorizon:  func() ClientMessage { return &Horizon{} },
	ClientAck:      func() ClientMessage { return &Ack{} },
	ClientPong:     func() ClientMessage { return &Pong{} },
	ClientKey:      func() ClientMessage { return &Key{} },
	ClientCommand:  func() ClientMessage { return &Command{} },
	ClientChat:     func() ClientMessage { return &Chat{} },
	ClientWhisper:  func() ClientMessage { return &Whisper{} },
	ClientSay:      func() ClientMessage { return &Say{} },
	ClientTeamChat: func() ClientMessage { return &TeamChat{} },
}

// EncodeClient はクライアントメッセージをフレームにエンコードします。
func EncodeClient(msg ClientMessage) ([]byte, error) {
	w := newWriter(uint8(msg.Kind()), 32)
	msg.encode(w)
	return w.bytes()
}

// DecodeClient はクライアントが送ったフレームをデコードします。
// サーバー側の検証やテストで送信内容を確認するために使います。
func DecodeClient(data []byte) (ClientMessage, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	ctor, ok := clientMessages[ClientKind(data[0])]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownClientKind, data[0])
	}
	msg := ctor()
	r := newReader(data[1:])
	msg.decode(r)
	if r.err != nil {
		return nil, fmt.Errorf("decode client kind %d: %w", data[0], r.err)
	}
	return msg, nil
}
