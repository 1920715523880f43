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

// Decompress is Compress's symmetric peer ([ADD], SPEC_FULL.md §"External
// Interfaces": "the symmetric decoder is a peer and shares the same
// contracts in reverse"). It reconstructs a sample.Table of cfg.Mode.Shape's
// layout from data, using model/upModel the same way Compress does for the
// MODEL families.
func Decompress(cfg Config, data []byte, model, upModel sample.Table) (sample.Table, Info, error) {
	info := newInfo(cfg)

	shape := sample.ShapeFor(cfg.Mode.Shape)
	out := sample.NewTable(shape, cfg.Samples)

	if errs, err := Validate(cfg, len(data), out, model, upModel); err != nil {
		info.Errors = errs
		return nil, info, err
	}

	if cfg.Mode.Family == Raw {
		if err := unpackRaw(data, shape, cfg.Samples, out); err != nil {
			info.Errors |= SmallBufferErr
			return nil, info, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		info.CmpSize = uint32(cfg.Samples * recordWidthBits(shape))
		return out, info, nil
	}

	r := bitio.NewReader(data)
	if err := decodeRecords(r, cfg, shape, out); err != nil {
		return nil, info, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if r.BitPosition() > uint32(len(data))*8 {
		return nil, info, fmt.Errorf("%w: stream ended before samples were satisfied", ErrDecode)
	}

	info.CmpSize = r.BitPosition()

	sample.Unfold(out, shape, cfg.Mode.Family.escape() == rice.EscapeZero)
	postProcess(cfg, shape, out, model, upModel)

	return out, info, nil
}

// postProcess is preProcess's inverse, dispatched by family the same way.
func postProcess(cfg Config, shape sample.Shape, t, model, upModel sample.Table) {
	switch cfg.Mode.Family {
	case DiffZero, DiffMulti:
		sample.Undiff(t, shape, cfg.Round)
	case ModelZero, ModelMulti:
		sample.Unmodel(t, model, upModel, shape, cfg.ModelValue, cfg.Round)
	}
}

// decodeRecords is encodeRecords' inverse: reads samples records, one
// field at a time, in the same fixed field order they were written in.
func decodeRecords(r *bitio.Reader, cfg Config, shape sample.Shape, out sample.Table) error {
	for i := 0; i < cfg.Samples; i++ {
		for f, field := range shape.Fields {
			params, exposureFlagsFixed := fieldParams(cfg, shape, f)

			var (
				value uint32
				err   error
			)
			if exposureFlagsFixed {
				value, err = rice.DecodeNormal(r, params)
			} else {
				value, err = rice.DecodeValue(r, field.Width, params)
			}
			if err != nil {
				return err
			}
			out[f][i] = value
		}
	}
	return nil
}

// unpackRaw is packRaw's inverse.
func unpackRaw(data []byte, shape sample.Shape, samples int, out sample.Table) error {
	recBytes := recordWidthBits(shape) / 8
	need := samples * recBytes
	if need > len(data) {
		return bitio.ErrBufferTooSmall
	}

	off := 0
	for i := 0; i < samples; i++ {
		for f, field := range shape.Fields {
			var v uint32
			switch field.Width {
			case 8:
				v = uint32(data[off])
				off++
			case 16:
				v = uint32(binary.BigEndian.Uint16(data[off:]))
				off += 2
			case 32:
				v = binary.BigEndian.Uint32(data[off:])
				off += 4
			}
			out[f][i] = v
		}
	}
	return nil
}
