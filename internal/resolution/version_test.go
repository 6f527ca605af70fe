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

import "testing"

func TestVersionCompare(t *testing.T) {
	v1, err := ParseVersion("1.0.0")
	if err != nil {
		t.Fatalf("ParseVersion(1.0.0) error = %v", err)
	}
	v2, err := ParseVersion("1.1.0")
	if err != nil {
		t.Fatalf("ParseVersion(1.1.0) error = %v", err)
	}
	pre, err := ParseVersion("1.1.0-alpha.1")
	if err != nil {
		t.Fatalf("ParseVersion(1.1.0-alpha.1) error = %v", err)
	}

	if v1.Compare(v2) >= 0 {
		t.Errorf("1.0.0 should be < 1.1.0")
	}
	if pre.Compare(v2) >= 0 {
		t.Errorf("1.1.0-alpha.1 should be < 1.1.0 per SemVer precedence")
	}
	if !v1.Equal(v1) {
		t.Errorf("version should equal itself")
	}
}

func TestParseVersionInvalid(t *testing.T) {
	if _, err := ParseVersion("not-a-version"); err == nil {
		t.Errorf("ParseVersion(not-a-version) expected error, got nil")
	}
}
