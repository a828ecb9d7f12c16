package bot

// TargetInfo はログ表示用のターゲット概要です。
type TargetInfo struct {
	Goal string
	Info string
	// ID は対象プレイヤーがいる場合のみ設定されます。
	ID *uint16
}

// Target は1tickごとに有効性を再評価され、有効な間だけ命令を生成する目標です。
// 評価は呼び出し時点のワールドのみに依存し、前のtickの命令には依存しません。
type Target interface {
	IsValid() bool
	Instructions() []Instruction
	OnKill(killerID, killedID uint16)
	Info() TargetInfo
}

// TargetFactory はその時点のワールドから候補の Target を組み立てます。
type TargetFactory func(env Environment, c Character) Target
