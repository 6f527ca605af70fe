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

// Package resolution holds the cache's data model: package names, package
// identifiers, semantic versions, and the tagged DirectRes source locator.
package resolution

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
)

// Name is a two-part qualified package identifier, "group/name". Both
// segments are non-empty ASCII tokens. Equality and ordering are
// segment-wise.
type Name struct {
	group string
	name  string
}

// ParseName parses a "group/name" string into a Name.
func ParseName(s string) (Name, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Name{}, fmt.Errorf("invalid package name %q: expected exactly one \"/\"", s)
	}
	group, name := parts[0], parts[1]
	if group == "" || name == "" {
		return Name{}, fmt.Errorf("invalid package name %q: group and name must be non-empty", s)
	}
	if !isASCIIToken(group) || !isASCIIToken(name) {
		return Name{}, fmt.Errorf("invalid package name %q: segments must be printable ASCII with no \"/\"", s)
	}
	return Name{group: group, name: name}, nil
}

// NewName constructs a Name directly from already-validated segments.
func NewName(group, name string) Name {
	return Name{group: group, name: name}
}

func isASCIIToken(s string) bool {
	for _, r := range s {
		if r <= 0x20 || r > 0x7e {
			return false
		}
	}
	return true
}

// Group returns the name's group segment.
func (n Name) Group() string { return n.group }

// Name returns the name's name segment.
func (n Name) Name() string { return n.name }

// String renders the raw "group/name" form.
func (n Name) String() string {
	return n.group + "/" + n.name
}

// Dotted renders the capitalized dotted form, "Group.Name", used for
// generated source module paths.
func (n Name) Dotted() string {
	return strcase.ToCamel(n.group) + "." + strcase.ToCamel(n.name)
}

// Equal reports whether two Names are equal, segment-wise.
func (n Name) Equal(o Name) bool {
	return n.group == o.group && n.name == o.name
}

// Compare orders two Names segment-wise, group first then name.
func (n Name) Compare(o Name) int {
	if c := strings.Compare(n.group, o.group); c != 0 {
		return c
	}
	return strings.Compare(n.name, o.name)
}
