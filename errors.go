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

import "errors"

// ErrorFlags is an OR-able bitset mirroring the compressor report's error
// bitset (§7): each failure class owns one bit, and a single run can set
// more than one.
type ErrorFlags uint32

const (
	// CmpModeErr marks an unsupported family/shape combination.
	CmpModeErr ErrorFlags = 1 << iota
	// ModelValueErr marks an out-of-range model_value (MODEL families only).
	ModelValueErr
	// CmpParErr marks an out-of-range Golomb parameter or spill.
	CmpParErr
	// SmallBufferErr marks an output region too small to hold the payload.
	SmallBufferErr
)

// Has reports whether flag is set in f.
func (f ErrorFlags) Has(flag ErrorFlags) bool { return f&flag != 0 }

// Public sentinel errors for consumer error matching.
var (
	// ErrConfig indicates an invalid configuration: bad mode, out-of-range
	// parameter, aliased buffers, or a negative sample count.
	ErrConfig = errors.New("invalid configuration")

	// ErrSmallBuffer indicates the output region could not hold the encoded
	// payload; corresponds to the driver's distinguished -2 return.
	ErrSmallBuffer = errors.New("output buffer too small")

	// ErrEncode indicates a failure during compression after validation
	// succeeded (pre-processing, folding, or bit-packing).
	ErrEncode = errors.New("compression failed")

	// ErrDecode indicates a failure during decompression: an invalid
	// codeword, or the input stream ran out before the configured sample
	// count was satisfied.
	ErrDecode = errors.New("decompression failed")
)
