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

package bitio

import (
	"encoding/binary"
	"math/bits"
)

// Reader consumes codewords MSB-first from a byte slice handed to it at
// construction time.
//
// Ported from internal/alac/bitbuffer.go's BitBuffer: same "pad the tail so
// a wide read never runs off the end of the real slice" trick (there it pads
// to let a 3-byte window cover any 16-bit read; here the window is widened
// to 5 bytes so ReadBits can return up to 32 bits in one call), and the same
// shift-and-mask read technique used there for 24-bit windows.
type Reader struct {
	buf    []byte // data, zero-padded by 4 bytes past the logical end
	size   int    // logical byte length (excludes padding)
	bitPos uint32
}

// NewReader copies data into a padded internal buffer and returns a Reader
// positioned at bit 0.
func NewReader(data []byte) *Reader {
	buf := make([]byte, len(data)+4)
	copy(buf, data)
	return &Reader{buf: buf, size: len(data)}
}

// BitPosition reports the current read cursor, in bits from the start.
func (r *Reader) BitPosition() uint32 { return r.bitPos }

// Overrun reports whether the cursor has advanced past the logical data,
// i.e. every subsequent bit read is coming out of the zero padding.
func (r *Reader) Overrun() bool { return int(r.bitPos>>3) >= r.size }

// ReadBits reads n bits (0 <= n <= 32), most-significant-bit first, and
// advances the cursor. Reading past the logical end yields zero bits rather
// than panicking; callers that care must check Overrun.
func (r *Reader) ReadBits(n uint8) uint32 {
	if n == 0 {
		return 0
	}

	byteOff := r.bitPos >> 3
	bitIdx := uint64(r.bitPos & 7)

	if int(byteOff) >= r.size {
		r.bitPos += uint32(n)
		return 0
	}

	hi := uint64(binary.BigEndian.Uint32(r.buf[byteOff:]))
	lo := uint64(r.buf[byteOff+4])

	window := (hi<<32 | lo<<24) << bitIdx
	result := uint32(window >> (64 - uint64(n)))

	r.bitPos += uint32(n)

	return result
}

// Advance moves the cursor forward by n bits without producing a value,
// used after PeekBits to consume bits whose value has already been read.
func (r *Reader) Advance(n uint32) { r.bitPos += n }

// PeekBits behaves like ReadBits but leaves the cursor unmoved.
func (r *Reader) PeekBits(n uint8) uint32 {
	saved := r.bitPos
	v := r.ReadBits(n)
	r.bitPos = saved
	return v
}

// ReadUnary reads a unary-coded count: a run of 1 bits terminated by a 0
// bit, returning the run length and consuming the terminator. Ported from
// the leading-ones counting idiom in internal/alac/golomb.go's dynGet,
// which computes pre := lead(^streamLong) to find the stop bit in one
// 32-bit window; generalised here to step across windows for counts that
// exceed 32, which valid Golomb/Rice parameters never produce in practice
// but which the loop handles safely regardless.
func (r *Reader) ReadUnary() uint32 {
	var count uint32

	for {
		window := r.PeekBits(32)
		ones := uint32(bits.LeadingZeros32(^window))

		if ones < 32 {
			r.Advance(ones + 1)
			count += ones
			return count
		}

		count += 32
		r.Advance(32)
	}
}
