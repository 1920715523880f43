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

// Package debugsink provides the compressor's only permitted global state:
// a pair of overridable print hooks for warnings and errors, in the spirit
// of the reference implementation's debug_print facility.
package debugsink

import (
	"fmt"
	"os"
)

// Warn and Error are the core's two debug hooks. They default to writing to
// the process's standard error stream but may be overridden by a caller that
// wants to route diagnostics elsewhere (a flight-software log buffer, a test
// harness, etc). Neither call fails the compression run: warnings and
// informational errors reported through these hooks are purely diagnostic.
//
//nolint:gochecknoglobals
var (
	Warn  = func(format string, args ...any) { fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...) }
	Error = func(format string, args ...any) { fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...) }
)
