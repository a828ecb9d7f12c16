package utils

import "math"

// Finite はすべての値が NaN でも無限大でもない場合に true を返します。
func Finite(vs ...float64) bool {
	for _, v := range vs {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
