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

// Package sample implements the record shapes a telemetry stream can carry,
// their tail-to-head 1D-difference and model-prediction pre-processing, and
// the zig-zag fold/unfold that turns signed residuals into the unsigned
// codebook indices the entropy coder consumes.
//
// Grounded on original_source/lib/cmp_icu.c's per-shape diff_*/model_*/
// map_to_pos_* families, restructured into a single Shape description plus
// generic Record-table operations (Design Note §9: "a tagged-variant Record
// and a small interface... each shape implements it once", rather than one
// free function per shape per stage). In-place buffer mutation and small
// helper-function style ported from internal/alac/predictor.go's UnpcBlock.
package sample

// Kind identifies a record shape.
type Kind int

const (
	KindU16 Kind = iota
	KindU32
	KindFFX
	KindSFX
	KindSFXEFX
	KindSFXNCOB
	KindSFXEFXNCOBECOB
)

// String names a Kind the way it appears in configuration and error text.
func (k Kind) String() string {
	switch k {
	case KindU16:
		return "U16"
	case KindU32:
		return "U32"
	case KindFFX:
		return "F_FX"
	case KindSFX:
		return "S_FX"
	case KindSFXEFX:
		return "S_FX_EFX"
	case KindSFXNCOB:
		return "S_FX_NCOB"
	case KindSFXEFXNCOBECOB:
		return "S_FX_EFX_NCOB_ECOB"
	default:
		return "unknown"
	}
}

// FieldSpec describes one field of a record: its bit width (8, 16 or 32,
// the only widths this format uses) and whether it is the exposure_flags field,
// which several rules treat specially (the zero-escape +1 exemption, and
// encode_S_FX's fixed-parameter bypass of the outlier path).
type FieldSpec struct {
	Width           uint8
	IsExposureFlags bool
}

// Shape describes one record kind's field layout. All pre-processing and
// folding operations are generic over this description; no per-shape
// function bodies are needed beyond it.
type Shape struct {
	Kind   Kind
	Fields []FieldSpec
}

// shapes enumerates every record kind's field layout, ported field-for-field
// from the struct definitions implied by cmp_icu.c's sub_*/map_to_pos_*
// families (struct S_FX { EXPOSURE_FLAGS; FX }, S_FX_EFX adds EFX, S_FX_NCOB
// adds NCOB_X/NCOB_Y, S_FX_EFX_NCOB_ECOB adds both EFX and
// NCOB_X/NCOB_Y/ECOB_X/ECOB_Y).
var shapes = map[Kind]Shape{
	KindU16: {Kind: KindU16, Fields: []FieldSpec{{Width: 16}}},
	KindU32: {Kind: KindU32, Fields: []FieldSpec{{Width: 32}}},
	// F_FX is a bare 32-bit flux value with no exposure_flags field; it
	// reuses the plain U32 kernels (pre_process's switch falls MODE_*_F_FX
	// through to diff_32/model_32).
	KindFFX: {Kind: KindFFX, Fields: []FieldSpec{{Width: 32}}},
	KindSFX: {Kind: KindSFX, Fields: []FieldSpec{
		{Width: 8, IsExposureFlags: true},
		{Width: 32},
	}},
	KindSFXEFX: {Kind: KindSFXEFX, Fields: []FieldSpec{
		{Width: 8, IsExposureFlags: true},
		{Width: 32},
		{Width: 32},
	}},
	KindSFXNCOB: {Kind: KindSFXNCOB, Fields: []FieldSpec{
		{Width: 8, IsExposureFlags: true},
		{Width: 32},
		{Width: 32},
		{Width: 32},
	}},
	KindSFXEFXNCOBECOB: {Kind: KindSFXEFXNCOBECOB, Fields: []FieldSpec{
		{Width: 8, IsExposureFlags: true},
		{Width: 32},
		{Width: 32},
		{Width: 32},
		{Width: 32},
		{Width: 32},
	}},
}

// ShapeFor looks up a record kind's field layout.
func ShapeFor(k Kind) Shape { return shapes[k] }

// Shapes returns the full kind->layout table, for callers (config
// validation) that need to check a Kind's validity alongside its layout.
func Shapes() map[Kind]Shape { return shapes }

// NumFields reports how many fields one record of this shape carries.
func (s Shape) NumFields() int { return len(s.Fields) }

// Table is samples rows of a shape's fields, column-major: Table[f][i] is
// sample i's field f. Column-major storage keeps each field's tail-to-head
// pass and fold pass a simple, BCE-friendly walk over a contiguous []uint32,
// the same style internal/alac/predictor.go uses for in-place sample
// mutation.
type Table [][]uint32

// NewTable allocates a zeroed table for samples records of shape s.
func NewTable(s Shape, samples int) Table {
	t := make(Table, s.NumFields())
	for f := range t {
		t[f] = make([]uint32, samples)
	}
	return t
}
