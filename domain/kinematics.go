package domain

import "time"

// サーバーは60tick/秒でシミュレーションし、速度は1tickあたりの移動量です。
const ticksPerSecond = 60

// PredictPosition はレイテンシ分だけ等速で進めた推定位置を返します。
// 精度タグは元の座標を引き継ぎます。
func PredictPosition(ping time.Duration, pos Pos, speedX, speedY float64) Pos {
	if ping <= 0 {
		return pos
	}
	ticks := ping.Seconds() * ticksPerSecond
	return Pos{
		X:        pos.X + speedX*ticks,
		Y:        pos.Y + speedY*ticks,
		Accurate: pos.Accurate,
	}
}
