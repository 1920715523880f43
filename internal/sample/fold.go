/*
   Copyright Mycophonic.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package sample

// signExtend reinterprets the low `width` bits of v as a signed integer of
// that width.
func signExtend(v uint32, width uint8) int32 {
	if width >= 32 {
		return int32(v)
	}
	shift := 32 - width
	return (int32(v) << shift) >> shift
}

// foldAlg is the zig-zag map-to-positive fold, ported from
// map_to_pos_alg_8/16/32 in cmp_icu.c: negative values map to odd unsigned
// codes, non-negative to even ones. Wraparound at the field's own bit width
// is intentional, matching the reference's "possible integer overflow is
// intended" comments (the true edge case being the field's most negative
// representable value).
func foldAlg(v uint32, width uint8) uint32 {
	sv := signExtend(v, width)

	var folded uint32
	if sv < 0 {
		folded = uint32(-sv)*2 - 1
	} else {
		folded = uint32(sv) * 2
	}

	return folded & mask(width)
}

// unfoldAlg is foldAlg's inverse. Uses the standard zig-zag bit-trick
// (shift-and-xor) rather than folded+1 division: for width=32, folded=
// 0xFFFFFFFF (INT_MIN's folded code) the division form overflows uint32
// (folded+1 wraps to 0) and loses the value. The bit-trick has no such
// overflow since it never adds 1 to folded.
func unfoldAlg(folded uint32, width uint8) uint32 {
	sv := int32(folded>>1) ^ -int32(folded&1)
	return uint32(sv) & mask(width)
}

// Fold applies the zig-zag fold to every field of every record, in place.
// zeroEscapeUsed selects the zero-escape mechanism's convention: every
// folded field is incremented by one so that folded value 0 is free to be
// used as the escape symbol -- except the exposure_flags field, which
// cmp_icu.c's map_to_pos_S_FX* family always skips (its increment is
// commented out in the reference source: "/* data_buf[i].EXPOSURE_FLAGS +=
// 1; */"). Preserved here rather than "fixed", per the spec's own flagged
// Open Question about this asymmetry.
func Fold(t Table, s Shape, zeroEscapeUsed bool) {
	for f, field := range s.Fields {
		col := t[f]

		for i := range col {
			folded := foldAlg(col[i], field.Width)
			if zeroEscapeUsed && !field.IsExposureFlags {
				folded = (folded + 1) & mask(field.Width)
			}
			col[i] = folded
		}
	}
}

// Unfold is Fold's inverse.
func Unfold(t Table, s Shape, zeroEscapeUsed bool) {
	for f, field := range s.Fields {
		col := t[f]

		for i := range col {
			v := col[i]
			if zeroEscapeUsed && !field.IsExposureFlags {
				v = (v - 1) & mask(field.Width)
			}
			col[i] = unfoldAlg(v, field.Width)
		}
	}
}
