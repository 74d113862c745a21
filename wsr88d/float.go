// Package wsr88d holds the small pieces shared by the Level II and Level III
// decoders: the compact float encodings used by product payloads and the
// modified julian timestamps carried in every message header.
//
// The documents referenced here:
//   - RPG: https://www.roc.noaa.gov/wsr88d/PublicDocs/ICDs/2620001Y.pdf (Level III products)
//   - User: https://www.roc.noaa.gov/wsr88d/PublicDocs/ICDs/2620010H.pdf (Level II messages)
package wsr88d

import "math"

const (
	float16SignMask     = 0x8000
	float16ExponentMask = 0x7c00
	float16FractionMask = 0x03ff
)

// DecodeFloat16 converts the 16 bit "real*2" halfword used by a handful of
// product parameters (RPG 3.3.1, Figure 3-3). Bit 15 is the sign, bits 14-10
// the biased exponent and bits 9-0 the fraction.
//
//	E == 0: (-1)^S * 2 * (F / 2^10)
//	E != 0: (-1)^S * 2^(E-16) * (1 + F / 2^10)
func DecodeFloat16(hex uint16) float32 {
	s := float64(1)
	if hex&float16SignMask != 0 {
		s = -1
	}
	e := int(hex&float16ExponentMask) >> 10
	f := float64(hex&float16FractionMask) / 1024

	if e == 0 {
		return float32(s * 2 * f)
	}
	return float32(s * math.Ldexp(1+f, e-16))
}

// DecodeFloat32 joins two halfwords into an IEEE-754 single (RPG 3.3.1,
// Figure 3-4). Products store these across parameter slots, most
// significant halfword first.
func DecodeFloat32(msw, lsw uint16) float32 {
	return math.Float32frombits(uint32(msw)<<16 | uint32(lsw))
}
