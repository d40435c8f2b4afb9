package protocol

import (
	"encoding/binary"
	"math"
)

// Fixed-width codecs for the packed little-endian wire layout. Byte 0 is
// always the least-significant byte. The generic helpers below are the only
// place byte order is handled; the exported functions pin the width and
// signedness the frames use.

func get16[T ~uint16 | ~int16](order binary.ByteOrder, b []byte) T {
	return T(order.Uint16(b))
}

func get32[T ~uint32 | ~int32](order binary.ByteOrder, b []byte) T {
	return T(order.Uint32(b))
}

func put16[T ~uint16 | ~int16](order binary.ByteOrder, v T) (b [2]byte) {
	order.PutUint16(b[:], uint16(v))
	return b
}

func put32[T ~uint32 | ~int32](order binary.ByteOrder, v T) (b [4]byte) {
	order.PutUint32(b[:], uint32(v))
	return b
}

// U16FromLE decodes an unsigned 16-bit value
func U16FromLE(b [2]byte) uint16 {
	return get16[uint16](binary.LittleEndian, b[:])
}

// I16FromLE decodes a two's-complement 16-bit value
func I16FromLE(b [2]byte) int16 {
	return get16[int16](binary.LittleEndian, b[:])
}

// U16ToLE encodes an unsigned 16-bit value
func U16ToLE(v uint16) [2]byte {
	return put16(binary.LittleEndian, v)
}

// I16ToLE encodes a two's-complement 16-bit value
func I16ToLE(v int16) [2]byte {
	return put16(binary.LittleEndian, v)
}

// U32FromLE decodes an unsigned 32-bit value
func U32FromLE(b [4]byte) uint32 {
	return get32[uint32](binary.LittleEndian, b[:])
}

// I32FromLE decodes a two's-complement 32-bit value
func I32FromLE(b [4]byte) int32 {
	return get32[int32](binary.LittleEndian, b[:])
}

// U32ToLE encodes an unsigned 32-bit value
func U32ToLE(v uint32) [4]byte {
	return put32(binary.LittleEndian, v)
}

// I32ToLE encodes a two's-complement 32-bit value
func I32ToLE(v int32) [4]byte {
	return put32(binary.LittleEndian, v)
}

// F32ToLE encodes the IEEE-754 single-precision bit pattern of v
func F32ToLE(v float32) [4]byte {
	return put32(binary.LittleEndian, math.Float32bits(v))
}

// F32FromLE decodes an IEEE-754 single-precision value
func F32FromLE(b [4]byte) float32 {
	return math.Float32frombits(U32FromLE(b))
}
