package protocol

// ミニマップ座標は1単位あたり128ワールド単位に量子化されています。
const (
	minimapScale   = 128
	minimapOffsetX = 16384
	minimapOffsetY = 8192
)

// DecodeMinimap はスコアボードの圧縮座標をワールド座標に展開します。
func DecodeMinimap(x, y uint8) (float64, float64) {
	return float64(x)*minimapScale - minimapOffsetX, float64(y)*minimapScale - minimapOffsetY
}

// EncodeMinimap は DecodeMinimap の逆変換です。範囲外は端に丸めます。
func EncodeMinimap(x, y float64) (uint8, uint8) {
	return quantize((x + minimapOffsetX) / minimapScale), quantize((y + minimapOffsetY) / minimapScale)
}

func quantize(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
