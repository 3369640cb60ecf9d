package document

import (
	"encoding/binary"
	"math"
)

// Normalize converts an integer component to its normalized float value.
// UNSIGNED_INT and FLOAT have no normalized form and are returned unchanged.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#animations
//
// Parameters:
//   - ct: the component type v was stored as
//   - v: the stored integer value
//
// Returns:
//   - float64: the normalized value in [-1, 1] or [0, 1]
func Normalize(ct ComponentType, v int64) float64 {
	f := float64(v)
	switch ct {
	case ComponentByte:
		return math.Max(f/127.0, -1.0)
	case ComponentUnsignedByte:
		return f / 255.0
	case ComponentShort:
		return math.Max(f/32767.0, -1.0)
	case ComponentUnsignedShort:
		return f / 65535.0
	default:
		return f
	}
}

// Quantize converts a normalized float to the integer stored for ct. It is
// the inverse of Normalize for values inside the normalized range.
//
// Parameters:
//   - ct: the target component type
//   - f: the normalized value
//
// Returns:
//   - int64: the rounded integer value
func Quantize(ct ComponentType, f float64) int64 {
	switch ct {
	case ComponentByte:
		return int64(math.Round(f * 127.0))
	case ComponentUnsignedByte:
		return int64(math.Round(f * 255.0))
	case ComponentShort:
		return int64(math.Round(f * 32767.0))
	case ComponentUnsignedShort:
		return int64(math.Round(f * 65535.0))
	default:
		return int64(math.Round(f))
	}
}

// decodeInt reads one little-endian integer component from b.
func decodeInt(ct ComponentType, b []byte) int64 {
	switch ct {
	case ComponentByte:
		return int64(int8(b[0]))
	case ComponentUnsignedByte:
		return int64(b[0])
	case ComponentShort:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case ComponentUnsignedShort:
		return int64(binary.LittleEndian.Uint16(b))
	case ComponentUnsignedInt:
		return int64(binary.LittleEndian.Uint32(b))
	default:
		return int64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
}

// decodeFloat reads one component from b as a float, normalizing integer
// components when normalized is set.
func decodeFloat(ct ComponentType, normalized bool, b []byte) float32 {
	if ct == ComponentFloat {
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
	v := decodeInt(ct, b)
	if normalized {
		return float32(Normalize(ct, v))
	}
	return float32(v)
}

// align4 rounds n up to a multiple of 4.
func align4(n int) int {
	return (n + 3) &^ 3
}
