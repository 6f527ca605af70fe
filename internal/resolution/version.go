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

package resolution

import (
	"github.com/Masterminds/semver/v3"
)

// Version is a semantic version, totally ordered per SemVer precedence.
type Version struct {
	v *semver.Version
}

// ParseVersion parses a semantic version string.
func ParseVersion(s string) (Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, err
	}
	return Version{v: v}, nil
}

// String renders the version in canonical SemVer form.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// Compare orders two Versions per SemVer precedence.
func (v Version) Compare(o Version) int {
	return v.v.Compare(o.v)
}

// Equal reports whether two Versions have equal SemVer precedence.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}
