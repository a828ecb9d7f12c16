package domain

import "math"

// Pos は2次元座標と精度タグです。
// Accurate が false の座標はミニマップ由来の低解像度な値です。
type Pos struct {
	X        float64
	Y        float64
	Accurate bool
}

// Delta は2点間の差分です。
type Delta struct {
	DiffX    float64
	DiffY    float64
	Distance float64
}

// DeltaTo は from から to への差分と距離を返します。
func DeltaTo(from, to Pos) Delta {
	dx := to.X - from.X
	dy := to.Y - from.Y
	return Delta{
		DiffX:    dx,
		DiffY:    dy,
		Distance: math.Hypot(dx, dy),
	}
}

// HeadingTo は from から to を向くための機首方位を返します。
// 0 が画面上方向で、時計回りに増加し [0, 2π) に正規化されます。
func HeadingTo(from, to Pos) float64 {
	d := DeltaTo(from, to)
	return normalizeAngle(math.Atan2(d.DiffX, -d.DiffY))
}

// AngleDiff は現在の方位 from から目標の方位 to までの最短回転量を返します。
// 正の値は時計回り(右旋回)で、結果は [-π, π) に収まります。
func AngleDiff(from, to float64) float64 {
	d := normalizeAngle(to - from)
	if d >= math.Pi {
		d -= 2 * math.Pi
	}
	return d
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
