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
	"encoding/binary"
	"fmt"

	"github.com/mycophonic/icucomp/internal/bitio"
	"github.com/mycophonic/icucomp/internal/rice"
	"github.com/mycophonic/icucomp/internal/sample"
)

// Compress runs the four-stage pipeline of spec.md §2 over input, writing
// the packed bitstream into output and returning the run's report.
//
// input, model and upModel are sample.Table values of cfg.Mode.Shape's
// layout; upModel may be nil to update model in place (mirrors the
// reference's "updated-model region, when null, aliases the model
// region"). model and upModel are ignored outside the MODEL families.
//
// Driver state machine (spec.md §4.6): Validating -> PreProcessing ->
// Mapping -> Encoding -> Padding -> Done. Any failure jumps straight to
// Done with CmpSize left at 0 and the matching error bit set.
func Compress(cfg Config, input, model, upModel sample.Table, output []byte) (Info, error) {
	info := newInfo(cfg)

	if errs, err := Validate(cfg, len(output), input, model, upModel); err != nil {
		info.Errors = errs
		return info, err
	}

	shape := sample.ShapeFor(cfg.Mode.Shape)

	if cfg.Mode.Family == Raw {
		if err := packRaw(input, shape, cfg.Samples, output); err != nil {
			info.Errors |= SmallBufferErr
			return info, fmt.Errorf("%w: %w", ErrSmallBuffer, err)
		}
		info.CmpSize = uint32(cfg.Samples * recordWidthBits(shape))
		return info, nil
	}

	preProcess(cfg, shape, input, model, upModel)
	sample.Fold(input, shape, cfg.Mode.Family.escape() == rice.EscapeZero)

	w := bitio.NewWriter(output)
	if err := encodeRecords(w, cfg, shape, input); err != nil {
		info.Errors |= SmallBufferErr
		return info, fmt.Errorf("%w: %w", ErrSmallBuffer, err)
	}

	info.CmpSize = w.BitLength()

	if _, err := w.PadToWord(); err != nil {
		info.Errors |= SmallBufferErr
		info.CmpSize = 0
		return info, fmt.Errorf("%w: %w", ErrSmallBuffer, err)
	}

	return info, nil
}

// preProcess runs the pre-processing kernel selected by cfg.Mode.Family,
// mirroring pre_process's switch in cmp_icu.c.
func preProcess(cfg Config, shape sample.Shape, input, model, upModel sample.Table) {
	switch cfg.Mode.Family {
	case DiffZero, DiffMulti:
		sample.Diff(input, shape, cfg.Round)
	case ModelZero, ModelMulti:
		sample.Model(input, model, upModel, shape, cfg.ModelValue, cfg.Round)
	}
}

// fieldParams resolves the rice.Params a field should encode with,
// preserving encode_S_FX's dedicated-parameter, normal-path-only asymmetry
// for exposure_flags (spec.md §9's flagged Open Question: observed, not
// rationalized, and reproduced exactly).
func fieldParams(cfg Config, shape sample.Shape, fieldIdx int) (rice.Params, bool) {
	field := shape.Fields[fieldIdx]
	if shape.Kind == sample.KindSFX && field.IsExposureFlags {
		return rice.NewParams(GolombParExposureFlags, 0, rice.EscapeZero), true
	}
	return rice.NewParams(cfg.GolombPar, cfg.Spill, cfg.Mode.Family.escape()), false
}

// encodeRecords writes every record's fields in fixed field order, record
// by record (spec.md §5: "Records are encoded in input index order; fields
// within a compound record are encoded in the fixed field order").
func encodeRecords(w *bitio.Writer, cfg Config, shape sample.Shape, t sample.Table) error {
	for i := 0; i < cfg.Samples; i++ {
		for f, field := range shape.Fields {
			params, exposureFlagsFixed := fieldParams(cfg, shape, f)
			value := t[f][i]

			var err error
			if exposureFlagsFixed {
				err = rice.EncodeNormal(w, value, params)
			} else {
				err = rice.EncodeValue(w, value, field.Width, params)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// packRaw copies samples records of shape from t into output, big-endian,
// with no framing -- spec.md §2's "Raw modes bypass stages 1-3 and simply
// copy the input, endian-swapping to big-endian."
func packRaw(t sample.Table, shape sample.Shape, samples int, output []byte) error {
	recBytes := recordWidthBits(shape) / 8
	need := samples * recBytes
	if need > len(output) {
		return bitio.ErrBufferTooSmall
	}

	off := 0
	for i := 0; i < samples; i++ {
		for f, field := range shape.Fields {
			v := t[f][i]
			switch field.Width {
			case 8:
				output[off] = byte(v)
				off++
			case 16:
				binary.BigEndian.PutUint16(output[off:], uint16(v))
				off += 2
			case 32:
				binary.BigEndian.PutUint32(output[off:], v)
				off += 4
			}
		}
	}
	return nil
}
