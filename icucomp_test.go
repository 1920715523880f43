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

package icucomp

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/mycophonic/icucomp/internal/sample"
)

func newU16Table(values []uint32) sample.Table {
	shape := sample.ShapeFor(sample.KindU16)
	tbl := sample.NewTable(shape, len(values))
	copy(tbl[0], values)
	return tbl
}

// Scenario 1 (spec.md §8): residual/folded intermediate values for
// mode=DIFF_ZERO, input [10, 11, 13, 10].
func TestScenario1DiffFoldIntermediates(t *testing.T) {
	shape := sample.ShapeFor(sample.KindU16)
	tbl := newU16Table([]uint32{10, 11, 13, 10})

	sample.Diff(tbl, shape, 0)
	gotResiduals := []uint32{tbl[0][0], tbl[0][1], tbl[0][2], tbl[0][3]}
	wantResiduals := []uint32{10, 1, 2, 0xFFFFFFFD} // -3 in two's complement
	for i := range wantResiduals {
		if gotResiduals[i]&0xffff != wantResiduals[i]&0xffff {
			t.Fatalf("residual[%d] = %d, want %d", i, gotResiduals[i], wantResiduals[i])
		}
	}

	sample.Fold(tbl, shape, true)
	wantFolded := []uint32{21, 3, 5, 6} // folded [20,2,4,5], then +1 under zero-escape
	for i := range wantFolded {
		if tbl[0][i] != wantFolded[i] {
			t.Fatalf("folded[%d] = %d, want %d", i, tbl[0][i], wantFolded[i])
		}
	}
}

// Scenario 3 (spec.md §8): RAW mode byte layout and the small-buffer error.
func TestScenario3Raw(t *testing.T) {
	cfg := Config{Mode: Mode{Family: Raw, Shape: sample.KindU16}, Samples: 3}
	input := newU16Table([]uint32{0x1234, 0x5678, 0x9ABC})

	output := make([]byte, 8) // 6 real bytes + 2 padding
	info, err := Compress(cfg, input, nil, nil, output[:6])
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	want := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}
	for i, b := range want {
		if output[i] != b {
			t.Fatalf("output[%d] = %#x, want %#x", i, output[i], b)
		}
	}
	if info.CmpSize != 6*8 {
		t.Fatalf("CmpSize = %d, want %d", info.CmpSize, 6*8)
	}

	_, err = Compress(cfg, input, nil, nil, output[:5])
	if !errors.Is(err, ErrSmallBuffer) {
		t.Fatalf("expected ErrSmallBuffer for a 5-byte buffer, got %v", err)
	}
}

// Scenario 4 (spec.md §8): multi-escape offset/length arithmetic for a
// single outlier value.
func TestScenario4MultiEscapeOutlier(t *testing.T) {
	cfg := Config{
		Mode:      Mode{Family: DiffMulti, Shape: sample.KindU16},
		Samples:   1,
		GolombPar: 5,
		Spill:     10,
	}
	input := newU16Table([]uint32{42})
	output := make([]byte, 16)

	info, err := Compress(cfg, input, nil, nil, output)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	model := sample.NewTable(sample.ShapeFor(sample.KindU16), 1)
	got, _, err := Decompress(cfg, output[:(info.CmpSize+7)/8], model, nil)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if got[0][0] != 42 {
		t.Fatalf("round-trip got %d, want 42", got[0][0])
	}
}

// Scenario 5 (spec.md §8): S_FX exposure_flags routes through the fixed
// GolombParExposureFlags parameter, bypassing the outlier path entirely
// (spec.md §9's flagged asymmetry).
func TestScenario5SFXExposureFlagsFixedParam(t *testing.T) {
	shape := sample.ShapeFor(sample.KindSFX)
	cfg := Config{
		Mode:      Mode{Family: DiffZero, Shape: sample.KindSFX},
		Samples:   1,
		GolombPar: 4,
		Spill:     4,
	}

	params, fixed := fieldParams(cfg, shape, 0) // field 0 is exposure_flags
	if !fixed {
		t.Fatal("exposure_flags field should use the fixed-parameter path for S_FX")
	}
	if params.GolombPar != GolombParExposureFlags {
		t.Fatalf("exposure_flags GolombPar = %d, want %d", params.GolombPar, GolombParExposureFlags)
	}

	_, fixed = fieldParams(cfg, shape, 1) // field 1 is fx
	if fixed {
		t.Fatal("fx field must use the caller's golomb_par, not the fixed exposure_flags path")
	}

	// S_FX_EFX's exposure_flags, by contrast, is NOT exempted -- the
	// asymmetry is specific to S_FX (spec.md §9).
	efxShape := sample.ShapeFor(sample.KindSFXEFX)
	efxCfg := cfg
	efxCfg.Mode.Shape = sample.KindSFXEFX
	_, efxFixed := fieldParams(efxCfg, efxShape, 0)
	if efxFixed {
		t.Fatal("S_FX_EFX's exposure_flags should go through the generic path, not the S_FX-only fixed parameter")
	}
}

func TestRoundTripFuzz(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	shapes := []sample.Kind{
		sample.KindU16, sample.KindU32, sample.KindFFX,
		sample.KindSFX, sample.KindSFXEFX, sample.KindSFXNCOB, sample.KindSFXEFXNCOBECOB,
	}
	families := []Family{DiffZero, DiffMulti, ModelZero, ModelMulti}

	for trial := 0; trial < 300; trial++ {
		shapeKind := shapes[rng.IntN(len(shapes))]
		shape := sample.ShapeFor(shapeKind)
		family := families[rng.IntN(len(families))]

		samples := 1 + rng.IntN(8)
		golombPar := uint32(1 + rng.IntN(64))
		maxSp := maxSpill(golombPar, family)
		if maxSp < 2 {
			continue
		}
		spill := uint32(1 + rng.IntN(int(maxSp-1)))
		modelValue := uint8(rng.IntN(int(MaxModelValue) + 1))

		cfg := Config{
			Mode:       Mode{Family: family, Shape: shapeKind},
			Samples:    samples,
			GolombPar:  golombPar,
			Spill:      spill,
			ModelValue: modelValue,
			Round:      0,
		}

		input := sample.NewTable(shape, samples)
		for f, field := range shape.Fields {
			for i := 0; i < samples; i++ {
				if field.Width == 8 {
					input[f][i] = uint32(rng.IntN(256))
				} else {
					input[f][i] = rng.Uint32()
				}
			}
		}

		var model, encUpModel, decUpModel sample.Table
		if family.usesModel() {
			model = sample.NewTable(shape, samples)
			for f := range shape.Fields {
				for i := 0; i < samples; i++ {
					model[f][i] = input[f][i] // start the model near the data
				}
			}
			encUpModel = sample.NewTable(shape, samples)
			decUpModel = sample.NewTable(shape, samples)
		}

		// Compress mutates input in place (matches the reference's
		// in-place pre-processing); keep an untouched copy to compare
		// against after decompression.
		want := sample.NewTable(shape, samples)
		for f := range shape.Fields {
			copy(want[f], input[f])
		}

		output := make([]byte, 4096)
		info, err := Compress(cfg, input, model, encUpModel, output)
		if err != nil {
			t.Fatalf("trial %d (shape=%s family=%s par=%d spill=%d): Compress: %v",
				trial, shapeKind, family, golombPar, spill, err)
		}

		decModel := model
		got, _, err := Decompress(cfg, output[:(info.CmpSize+31)/32*4], decModel, decUpModel)
		if err != nil {
			t.Fatalf("trial %d (shape=%s family=%s par=%d spill=%d): Decompress: %v",
				trial, shapeKind, family, golombPar, spill, err)
		}

		for f, field := range shape.Fields {
			for i := 0; i < samples; i++ {
				gotV := got[f][i] & mask32(field.Width)
				wantV := want[f][i] & mask32(field.Width)
				if gotV != wantV {
					t.Fatalf("trial %d (shape=%s family=%s par=%d spill=%d): field %d sample %d: got %d, want %d",
						trial, shapeKind, family, golombPar, spill, f, i, gotV, wantV)
				}
			}
		}
	}
}

func mask32(width uint8) uint32 {
	if width >= 32 {
		return 0xffffffff
	}
	return (uint32(1) << width) - 1
}
