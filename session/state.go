package session

// Role は接続の役割です。
type Role uint8

const (
	RolePrimary Role = iota
	RoleBackup
)

func (r Role) String() string {
	if r == RoleBackup {
		return "backup"
	}
	return "primary"
}

// State はセッションの可変状態をひとまとめにした値です。
// 遷移はすべて値を受け取り新しい値を返す関数で表し、Session が唯一の所有者になります。
type State struct {
	// Token は直近のログイン応答で受け取ったセッショントークンです。
	Token string
	// AckToBackup は次のキープアライブをバックアップへ送るかどうかです。
	AckToBackup bool
	// KeySeq は最後に送ったキーイベントの連番です。
	KeySeq uint32
	// PrimaryRetries はプライマリ接続の連続再試行回数です。
	PrimaryRetries int
	// BackupLive はバックアップ接続が鍵の複製を受け付けられる状態かどうかです。
	BackupLive bool
	// SelfID はログイン応答で割り当てられた自機IDです。
	SelfID uint16
	// LoggedIn は少なくとも一度ログイン応答を受け取ったかどうかです。
	LoggedIn bool
}

// LoginPlan はログイン応答を受けたときに行う副作用です。
type LoginPlan struct {
	// CloseBackup が true なら既存のバックアップ接続を先に閉じます。
	CloseBackup bool
}

// AcceptLogin は新しいトークンを取り込み、既存バックアップの後始末を決めます。
// 新しいバックアップが開くまで鍵の複製は止まります。
func (s State) AcceptLogin(token string, selfID uint16, hasBackup bool) (State, LoginPlan) {
	s.Token = token
	s.SelfID = selfID
	s.LoggedIn = true
	s.BackupLive = false
	return s, LoginPlan{CloseBackup: hasBackup}
}

// NextAck は次のキープアライブの送信先を返し、送信先を反転させます。
func (s State) NextAck() (State, Role) {
	target := RolePrimary
	if s.AckToBackup {
		target = RoleBackup
	}
	s.AckToBackup = !s.AckToBackup
	return s, target
}

// NextKeySeq はキーイベント用の連番を払い出します。
func (s State) NextKeySeq() (State, uint32) {
	s.KeySeq++
	return s, s.KeySeq
}

// PrimaryOpened はプライマリ接続の確立で再試行回数をリセットします。
func (s State) PrimaryOpened() State {
	s.PrimaryRetries = 0
	return s
}

// PrimaryFailed はプライマリ接続の失敗を記録し、再試行すべきかを返します。
func (s State) PrimaryFailed(maxRetries int) (State, bool) {
	if s.PrimaryRetries >= maxRetries {
		return s, false
	}
	s.PrimaryRetries++
	return s, true
}

// BackupOpened はバックアップ接続の確立を記録します。
func (s State) BackupOpened() State {
	s.BackupLive = true
	return s
}

// BackupLost はバックアップ接続の喪失を記録します。
func (s State) BackupLost() State {
	s.BackupLive = false
	return s
}
