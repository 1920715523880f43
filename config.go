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
	"fmt"
	"unsafe"

	"github.com/mycophonic/icucomp/internal/debugsink"
	"github.com/mycophonic/icucomp/internal/rice"
	"github.com/mycophonic/icucomp/internal/sample"
)

// Family selects the pre-processing/outlier strategy for a mode.
type Family int

const (
	Raw Family = iota
	DiffZero
	DiffMulti
	ModelZero
	ModelMulti
)

// String names a Family the way spec scenarios name it ("DIFF_ZERO", ...).
func (f Family) String() string {
	switch f {
	case Raw:
		return "RAW"
	case DiffZero:
		return "DIFF_ZERO"
	case DiffMulti:
		return "DIFF_MULTI"
	case ModelZero:
		return "MODEL_ZERO"
	case ModelMulti:
		return "MODEL_MULTI"
	default:
		return "unknown"
	}
}

func (f Family) valid() bool { return f >= Raw && f <= ModelMulti }

// usesModel reports whether f is one of the MODEL families.
func (f Family) usesModel() bool { return f == ModelZero || f == ModelMulti }

// escape returns the outlier mechanism f uses. Only meaningful when f is
// not Raw.
func (f Family) escape() rice.Escape {
	if f == DiffMulti || f == ModelMulti {
		return rice.EscapeMulti
	}
	return rice.EscapeZero
}

// Mode is (family, shape), the unit cmp_mode names in the reference.
type Mode struct {
	Family Family
	Shape  sample.Kind
}

// String renders a Mode the way spec scenarios do: the shape suffix is
// dropped for the default U16 shape ("DIFF_ZERO"), and included otherwise
// ("DIFF_ZERO_S_FX"), matching scenario 1 and scenario 5 in spec.md §8.
func (m Mode) String() string {
	if m.Shape == sample.KindU16 {
		return m.Family.String()
	}
	return fmt.Sprintf("%s_%s", m.Family, m.Shape)
}

// id packs Mode into a single byte for Info's truncated echo. Not
// wire-visible -- only used to fit the report's "echoed parameters
// truncated to 8 bits" contract (spec.md §3).
func (m Mode) id() uint8 {
	return uint8(m.Family)<<4 | uint8(m.Shape)
}

// Resolved Open Questions: spec.md names these bounds symbolically
// (MIN_ICU_GOLOMB_PAR, MAX_ICU_ROUND, ...) but neither spec.md nor the
// retrieved original_source/ tree gives their numeric values -- the
// defining header was not part of the distillation. Values below are
// derived from the invariants spec.md §8 does give (codeword length <= 32
// bits, MAX_MODEL_VALUE's weighted-blend role) rather than guessed
// outright; see DESIGN.md for the full reasoning.
const (
	// MinIcuGolombPar is the smallest legal Golomb parameter (must be >= 1
	// per spec.md §3).
	MinIcuGolombPar uint32 = 1

	// MaxIcuGolombPar bounds the parameter well below the point where
	// MaxNormalValue's shift arithmetic would need more than 32 bits,
	// leaving headroom for every field width this format uses.
	MaxIcuGolombPar uint32 = 1 << 20

	// MinIcuSpill is the smallest legal outlier threshold.
	MinIcuSpill uint32 = 1

	// MaxIcuRound bounds the lossy rounding shift. Chosen so the smallest
	// field width in use (exposure_flags, 8 bits) still retains at least
	// one significant bit of post-rounding content (8-3=5 still nonzero),
	// rather than an unbounded shift that could round every field to zero.
	MaxIcuRound uint8 = 3

	// MaxModelValue is the predictor weight ceiling; sample.MaxModelValue
	// is the single source of truth (the update formula itself is defined
	// in internal/sample, where the weighted-blend math lives).
	MaxModelValue uint8 = sample.MaxModelValue

	// GolombParExposureFlags is encode_S_FX's dedicated fixed parameter for
	// the exposure_flags field (the observed-not-rationalized asymmetry
	// flagged in spec.md §9: normal path only, no outlier escape, S_FX
	// only). Exposure flags are an 8-bit bitmask that is overwhelmingly
	// zero in practice; m=1 degenerates to plain unary coding, the cheapest
	// possible code for a mostly-zero byte.
	GolombParExposureFlags uint32 = 1
)

// maxSpill resolves max_spill(golomb_par, family) for the given mode.
func maxSpill(golombPar uint32, f Family) uint32 {
	return rice.MaxSpill(golombPar, f.escape())
}

// Config holds one compress/decompress call's parameters, mirroring
// spec.md §3's configuration surface minus the buffer pointers (Go slices
// passed directly to Compress/Decompress make the pointer-aliasing checks
// a validation step rather than a field of Config itself).
type Config struct {
	Mode       Mode
	Samples    int
	GolombPar  uint32
	Spill      uint32
	ModelValue uint8
	Round      uint8
}

// recordWidthBits returns one record's total field width, in bits.
func recordWidthBits(s sample.Shape) int {
	total := 0
	for _, f := range s.Fields {
		total += int(f.Width)
	}
	return total
}

// Validate checks cfg against spec.md §4.1's validation contract, returning
// the error bits that should be OR-ed into a report and an error describing
// the first failure found. outputCapacity is checked against the record
// size only for RAW modes (the "samples*rec_size <= capacity" check spec.md
// §4.1 requires at validation time, not just at encode time); in every mode
// it also feeds the non-fatal too-small-buffer warning.
func Validate(cfg Config, outputCapacity int, input, model, upModel sample.Table) (ErrorFlags, error) {
	if !cfg.Mode.Family.valid() {
		return CmpModeErr, fmt.Errorf("%w: unsupported family %d", ErrConfig, cfg.Mode.Family)
	}
	shape, ok := sample.Shapes()[cfg.Mode.Shape]
	if !ok {
		return CmpModeErr, fmt.Errorf("%w: unsupported shape %d", ErrConfig, cfg.Mode.Shape)
	}

	if cfg.Samples < 0 {
		return 0, fmt.Errorf("%w: negative sample count %d", ErrConfig, cfg.Samples)
	}

	// Non-fatal conditions (spec.md §7: "reported to the debug sink and do
	// not fail the call"), ported from icu_cmp_cfg_valid's two debug_print
	// warnings in cmp_icu.c.
	if cfg.Samples == 0 {
		debugsink.Warn("samples parameter is 0; no data will be compressed")
	} else {
		inputBytes := cfg.Samples * recordWidthBits(shape) / 8
		if outputCapacity*3 < inputBytes {
			debugsink.Warn("output buffer (%d bytes) is more than 3 times smaller than the input (%d bytes); this is probably unintentional", outputCapacity, inputBytes)
		}
	}

	var errs ErrorFlags

	if cfg.Mode.Family != Raw {
		if cfg.GolombPar < MinIcuGolombPar || cfg.GolombPar > MaxIcuGolombPar {
			errs |= CmpParErr
		} else if cfg.Spill < MinIcuSpill || cfg.Spill > maxSpill(cfg.GolombPar, cfg.Mode.Family) {
			errs |= CmpParErr
		}

		if cfg.Round > MaxIcuRound {
			return errs, fmt.Errorf("%w: round %d exceeds MaxIcuRound", ErrConfig, cfg.Round)
		}
	}

	if cfg.Mode.Family.usesModel() {
		if cfg.ModelValue > MaxModelValue {
			errs |= ModelValueErr
		}
		if tablesOverlap(input, model) {
			return errs, fmt.Errorf("%w: model region aliases input", ErrConfig)
		}
		if upModel != nil && tablesOverlap(input, upModel) {
			return errs, fmt.Errorf("%w: updated-model region aliases input", ErrConfig)
		}
	}

	if cfg.Mode.Family == Raw {
		needBytes := cfg.Samples * recordWidthBits(shape) / 8
		if needBytes > outputCapacity {
			errs |= SmallBufferErr
			return errs, fmt.Errorf("%w: need %d bytes, have %d", ErrSmallBuffer, needBytes, outputCapacity)
		}
	}

	if errs != 0 {
		return errs, fmt.Errorf("%w: parameters out of range", ErrConfig)
	}

	return 0, nil
}

// tablesOverlap reports whether a and b share any underlying storage,
// field for field. Go's typed Table (a []uint32 slice per field) replaces
// the reference's untyped struct-array pointers, so the only aliasing
// class that remains possible -- and the only one spec.md §4.1 needs
// checked -- is two same-shaped Tables sharing a backing array.
func tablesOverlap(a, b sample.Table) bool {
	if a == nil || b == nil {
		return false
	}
	for i := range a {
		if i >= len(b) {
			break
		}
		if sliceOverlap(a[i], b[i]) {
			return true
		}
	}
	return false
}

func sliceOverlap(a, b []uint32) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	const sz = unsafe.Sizeof(uint32(0))
	aStart := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	bStart := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	aEnd := aStart + uintptr(len(a))*sz
	bEnd := bStart + uintptr(len(b))*sz
	return aStart < bEnd && bStart < aEnd
}
