package world

import (
	"maps"
	"slices"
	"time"

	"mashbot/domain"
)

// World はサーバーから届いたイベントで更新されるワールド状態のミラーです。
// ロックを持たないため、すべての操作は単一の Executor 上で行う必要があります。
type World struct {
	players map[uint16]*domain.Player
	mobs    map[uint16]*domain.Mob

	selfID  uint16
	hasSelf bool
	score   uint32
	ping    time.Duration

	now func() time.Time
}

// Option は World の生成オプションです。
type Option func(*World)

// WithClock は現在時刻の取得元を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(w *World) {
		w.now = now
	}
}

// New は空の World を生成します。
func New(opts ...Option) *World {
	w := &World{
		players: make(map[uint16]*domain.Player),
		mobs:    make(map[uint16]*domain.Mob),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Now はワールドの現在時刻です。
func (w *World) Now() time.Time {
	return w.now()
}

// Reset は新規ログイン時にすべての状態を破棄します。
func (w *World) Reset() {
	clear(w.players)
	clear(w.mobs)
	w.hasSelf = false
	w.selfID = 0
	w.score = 0
}

// SetSelf は自機IDを記録します。
func (w *World) SetSelf(id uint16) {
	w.selfID = id
	w.hasSelf = true
}

// MyID は自機IDを返します。ログイン前は false です。
func (w *World) MyID() (uint16, bool) {
	return w.selfID, w.hasSelf
}

// Me は自機の Player を返します。
func (w *World) Me() (*domain.Player, bool) {
	if !w.hasSelf {
		return nil, false
	}
	return w.Player(w.selfID)
}

// Player は id のプレイヤーを返します。見つからなければ false です。
func (w *World) Player(id uint16) (*domain.Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

// Players は現在のプレイヤーをID順で返します。
func (w *World) Players() []*domain.Player {
	ids := slices.Sorted(maps.Keys(w.players))
	out := make([]*domain.Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.players[id])
	}
	return out
}

// UpsertPlayer は id のプレイヤーを取得または生成し、apply でその場更新します。
func (w *World) UpsertPlayer(id uint16, apply func(p *domain.Player)) *domain.Player {
	p, ok := w.players[id]
	if !ok {
		p = domain.NewPlayer(id)
		w.players[id] = p
	}
	apply(p)
	return p
}

// UpdatePlayer は既知のプレイヤーのみ更新します。未知のIDなら何もせず false を返します。
func (w *World) UpdatePlayer(id uint16, apply func(p *domain.Player)) bool {
	p, ok := w.players[id]
	if !ok {
		return false
	}
	apply(p)
	return true
}

// RemovePlayer はプレイヤーを削除します。
func (w *World) RemovePlayer(id uint16) {
	delete(w.players, id)
}

// MarkDead は撃墜されたプレイヤーに死亡フラグを立てます。
func (w *World) MarkDead(id uint16) bool {
	return w.UpdatePlayer(id, func(p *domain.Player) {
		p.Dead = true
	})
}

// Mob は id の Mob を返します。見つからなければ false です。
func (w *World) Mob(id uint16) (*domain.Mob, bool) {
	m, ok := w.mobs[id]
	return m, ok
}

// Mobs は現在の Mob をID順で返します。
func (w *World) Mobs() []*domain.Mob {
	ids := slices.Sorted(maps.Keys(w.mobs))
	out := make([]*domain.Mob, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.mobs[id])
	}
	return out
}

// UpsertMob は Mob を作成または非破壊的に更新します。
func (w *World) UpsertMob(src domain.Mob) *domain.Mob {
	m, ok := w.mobs[src.ID]
	if !ok {
		m = &domain.Mob{}
		w.mobs[src.ID] = m
	}
	m.CopyFrom(src, w.now())
	return m
}

// RemoveMob は Mob を削除します。
func (w *World) RemoveMob(id uint16) {
	delete(w.mobs, id)
}

// PruneStaleMobs は更新の途絶えた Mob を削除し、削除数を返します。
func (w *World) PruneStaleMobs() int {
	now := w.now()
	n := 0
	for id, m := range w.mobs {
		if m.IsStale(now) {
			delete(w.mobs, id)
			n++
		}
	}
	return n
}

// Score は自機のスコアです。
func (w *World) Score() uint32 {
	return w.score
}

// SetScore は自機のスコアを更新します。
func (w *World) SetScore(score uint32) {
	w.score = score
}

// Ping は直近に計測されたレイテンシです。
func (w *World) Ping() time.Duration {
	return w.ping
}

// SetPing はレイテンシを更新します。
func (w *World) SetPing(ping time.Duration) {
	w.ping = ping
}
