package protocol

import (
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"
)

// バイトオーダー: リトルエンディアン
var byteOrder = binary.LittleEndian

var (
	// ErrShortFrame はフレームが途中で終わっている場合に返されるエラーです。
	ErrShortFrame = errors.New("protocol: frame too short")
	// ErrEmptyFrame は種別バイトすら無いフレームに対して返されるエラーです。
	ErrEmptyFrame = errors.New("protocol: empty frame")
	// ErrTextTooLong は長さプレフィックスに収まらない文字列のエンコード時に返されるエラーです。
	ErrTextTooLong = errors.New("protocol: text too long")
	// ErrListTooLong は要素数が u16 に収まらない配列のエンコード時に返されるエラーです。
	ErrListTooLong = errors.New("protocol: list too long")
	// ErrInvalidText はUTF-8として不正な文字列を受信した場合に返されるエラーです。
	ErrInvalidText = errors.New("protocol: invalid utf-8 text")
	// ErrUnknownClientKind は未知のクライアントメッセージ種別に対して返されるエラーです。
	ErrUnknownClientKind = errors.New("protocol: unknown client message kind")
)

// reader はフレームを先頭から順に読み進めます。
// 最初に発生したエラーを保持し、以降の読み出しはゼロ値を返します。
type reader struct {
	data []byte
	off  int
	err  error
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.data)-r.off < n {
		r.err = ErrShortFrame
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) bool() bool {
	return r.u8() != 0
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return byteOrder.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return byteOrder.Uint32(b)
}

func (r *reader) f32() float64 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return float64(math.Float32frombits(byteOrder.Uint32(b)))
}

func (r *reader) text() string {
	return r.str(int(r.u8()))
}

func (r *reader) textBig() string {
	return r.str(int(r.u16()))
}

func (r *reader) str(n int) string {
	b := r.take(n)
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.err = ErrInvalidText
		return ""
	}
	return string(b)
}

// count は配列の要素数を読みます。残りバイト数で要素を賄えない場合はエラーになります。
func (r *reader) count(itemSize int) int {
	n := int(r.u16())
	if r.err == nil && n*itemSize > len(r.data)-r.off {
		r.err = ErrShortFrame
		return 0
	}
	return n
}

// writer はフレームを組み立てます。
type writer struct {
	buf []byte
	err error
}

func newWriter(kind uint8, sizeHint int) *writer {
	w := &writer{buf: make([]byte, 0, sizeHint+1)}
	w.u8(kind)
	return w
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
		return
	}
	w.u8(0)
}

func (w *writer) u16(v uint16) {
	w.buf = byteOrder.AppendUint16(w.buf, v)
}

func (w *writer) u32(v uint32) {
	w.buf = byteOrder.AppendUint32(w.buf, v)
}

func (w *writer) f32(v float64) {
	w.buf = byteOrder.AppendUint32(w.buf, math.Float32bits(float32(v)))
}

func (w *writer) text(s string) {
	if len(s) > math.MaxUint8 {
		w.err = ErrTextTooLong
		return
	}
	w.u8(uint8(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) textBig(s string) {
	if len(s) > math.MaxUint16 {
		w.err = ErrTextTooLong
		return
	}
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) list(n int) {
	if n > math.MaxUint16 {
		w.err = ErrListTooLong
		return
	}
	w.u16(uint16(n))
}

func (w *writer) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}
