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

// Info is the compressor report produced by Compress, mirroring spec.md
// §3's "compressor report": the compressed payload length, the parameters
// that were in effect (truncated to 8 bits, as the reference does for its
// diagnostic echo), and the error bitset explaining a failed run.
type Info struct {
	// CmpSize is the compressed payload length in bits, excluding padding.
	// Zero on any failed run.
	CmpSize uint32

	// ModeID, Round and ModelValue are cfg's corresponding fields,
	// truncated to 8 bits, echoed regardless of success or failure.
	ModeID     uint8
	Round      uint8
	ModelValue uint8

	// Errors is the OR-ed set of error bits explaining why a run failed;
	// zero on success.
	Errors ErrorFlags
}

// newInfo initialises a report from cfg, clearing the error bitset --
// step (1) of the driver state machine in spec.md §4.6.
func newInfo(cfg Config) Info {
	return Info{
		ModeID:     cfg.Mode.id(),
		Round:      cfg.Round,
		ModelValue: cfg.ModelValue,
	}
}
