// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cacheerr defines the shared error taxonomy used across the cache,
// retrieve, and index packages.
package cacheerr

import "fmt"

// Kind classifies a cache error so callers can tell fatal, retryable, and
// silently-tolerated failures apart (see spec §4.8 / §7).
type Kind int

const (
	// MissingManifest: elba.toml not found in a source directory.
	MissingManifest Kind = iota
	// InvalidIndex: a manifest or index descriptor failed to parse.
	InvalidIndex
	// Checksum: retrieved bytes did not match the expected digest.
	Checksum
	// LockBusy: a DirLock could not be obtained.
	LockBusy
	// Network: underlying transport failure from the Retriever.
	Network
	// VCS: a version-control operation (clone, fetch, checkout) failed.
	VCS
	// IO: any other filesystem failure.
	IO
)

func (k Kind) String() string {
	switch k {
	case MissingManifest:
		return "MissingManifest"
	case InvalidIndex:
		return "InvalidIndex"
	case Checksum:
		return "Checksum"
	case LockBusy:
		return "LockBusy"
	case Network:
		return "Network"
	case VCS:
		return "VCS"
	case IO:
		return "IO"
	default:
		return "Unknown"
	}
}

// Error carries a Kind, a human-readable context chain, and an optional
// wrapped cause, so logs let an operator inspect the cache state manually.
type Error struct {
	Kind    Kind
	Context string
	Cause   error
}

// New builds an Error of the given kind with a formatted context message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind, wrapping an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same Kind, so that
// errors.Is(err, cacheerr.Sentinel(cacheerr.LockBusy)) matches any LockBusy
// error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel returns a zero-context Error of the given kind, suitable as an
// errors.Is comparison target: errors.Is(err, cacheerr.Sentinel(cacheerr.LockBusy)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
