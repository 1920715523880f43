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

// mask returns the bitmask for a field of the given width (8, 16 or 32).
func mask(width uint8) uint32 {
	if width >= 32 {
		return 0xffffffff
	}
	return (uint32(1) << width) - 1
}

// roundFwd and roundInv implement the lossy rounding pass: a right shift
// that discards the low `round` bits, and its (lossy) inverse. round == 0
// disables rounding entirely, matching the spec's "0 disables lossy".
func roundFwd(v uint32, round uint8) uint32 { return v >> round }
func roundInv(v uint32, round uint8) uint32 { return v << round }

// Diff applies lossy rounding then tail-to-head 1D-differencing in place,
// ported from diff_16/diff_32/diff_S_FX* in cmp_icu.c: every field of every
// record is rounded, then data[i] -= data[i-1] walking from the last sample
// to the first, so that data[0] survives unmodified and every other element
// becomes a residual relative to its rounded predecessor. Wraparound on
// subtraction is intentional, matching cmp_icu.c's own
// "possible underflow is intended" comments.
func Diff(t Table, s Shape, round uint8) {
	for f, field := range s.Fields {
		col := t[f]
		m := mask(field.Width)

		for i := range col {
			col[i] = roundFwd(col[i], round) & m
		}
		for i := len(col) - 1; i > 0; i-- {
			col[i] = (col[i] - col[i-1]) & m
		}
	}
}

// Undiff is Diff's inverse: a head-to-tail running sum, ported as the
// mathematical reverse of cmp_icu.c's tail-to-head subtraction (no decoder
// exists upstream to ground this against directly; it is the unique inverse
// of the documented forward pass). round-trip lossiness from Diff's
// rounding pass is not recovered here -- callers that need an approximate
// original value rebuild it with roundInv themselves.
func Undiff(t Table, s Shape, round uint8) {
	_ = round
	for f, field := range s.Fields {
		col := t[f]
		m := mask(field.Width)

		for i := 1; i < len(col); i++ {
			col[i] = (col[i] + col[i-1]) & m
		}
	}
}

// MaxModelValue is the upper bound of the predictor weight (model_value)
// used by the MODEL families; a weight of 16 gives the update formula a
// full-strength blend.
const MaxModelValue = 16

// cal_up_model's body is not present in the retrieved reference source
// (only its call sites in model_16/model_32/model_S_FX). This is the
// resolved Open Question: the simplest update consistent with every call
// site (a pure function of the new rounded-back sample, the old model
// value, and the model_value weight) -- an exponential blend toward the new
// sample weighted by model_value/MaxModelValue. See DESIGN.md.
func calUpModel(newValue, oldModel uint32, modelValue uint8, width uint8) uint32 {
	delta := int64(newValue) - int64(oldModel)
	updated := int64(oldModel) + (int64(modelValue)*delta)/MaxModelValue
	return uint32(updated) & mask(width)
}

// Model applies the model-prediction pre-processing in place: residual =
// round_fwd(sample) - round_fwd(model), and updates modelTable in place
// (or, if upModelTable is non-nil, writes the updated model there instead,
// matching model_16/model_32/model_S_FX's optional up_model_buf). Ported
// from cmp_icu.c's model_* family; the "round back input because for
// decompression the accurate data are not available" comment is preserved
// by feeding calUpModel the rounded-then-unrounded sample, not the raw one.
func Model(t, modelTable, upModelTable Table, s Shape, modelValue uint8, round uint8) {
	target := upModelTable
	if target == nil {
		target = modelTable
	}

	for f, field := range s.Fields {
		col := t[f]
		modelCol := modelTable[f]
		targetCol := target[f]
		m := mask(field.Width)

		for i := range col {
			roundedInput := roundFwd(col[i], round)
			roundedModel := roundFwd(modelCol[i], round)

			col[i] = (roundedInput - roundedModel) & m

			backInput := roundInv(roundedInput, round) & m
			targetCol[i] = calUpModel(backInput, modelCol[i], modelValue, field.Width)
		}
	}
}

// Unmodel is Model's inverse for decompression: sample = residual +
// round_fwd(model), reconstructed at the rounded resolution (round == 0
// recovers the exact original; round > 0 is inherently lossy, matching the
// spec's round-trip tolerance for round > 0). modelTable is advanced in
// place the same way Model advances it, so a decoder replaying the same
// model sequence stays in lockstep with the encoder.
func Unmodel(t, modelTable, upModelTable Table, s Shape, modelValue uint8, round uint8) {
	target := upModelTable
	if target == nil {
		target = modelTable
	}

	for f, field := range s.Fields {
		col := t[f]
		modelCol := modelTable[f]
		targetCol := target[f]
		m := mask(field.Width)

		for i := range col {
			roundedModel := roundFwd(modelCol[i], round)
			roundedInput := (col[i] + roundedModel) & m

			backInput := roundInv(roundedInput, round) & m
			col[i] = backInput

			targetCol[i] = calUpModel(backInput, modelCol[i], modelValue, field.Width)
		}
	}
}
