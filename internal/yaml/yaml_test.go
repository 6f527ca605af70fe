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

package yaml

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testDescriptor stands in for the shape of an index.yaml descriptor
// without pulling internal/index into this package's tests.
type testDescriptor struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

func TestUnmarshal(t *testing.T) {
	got, err := Unmarshal[testDescriptor]([]byte("name: test\nversion: v1.0.0\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := &testDescriptor{Name: "test", Version: "v1.0.0"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalError(t *testing.T) {
	_, err := Unmarshal[testDescriptor]([]byte("name: [invalid"))
	if err == nil {
		t.Error("Unmarshal() expected error for invalid YAML")
	}
}

func TestMarshal(t *testing.T) {
	input := &testDescriptor{Name: "test", Version: "v1.0.0"}
	data, err := Marshal(input)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal[testDescriptor](data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(input, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadWrite(t *testing.T) {
	want := &testDescriptor{Name: "test", Version: "v1.0.0"}
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := Write(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Read[testDescriptor](path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadError(t *testing.T) {
	_, err := Read[testDescriptor]("/nonexistent/path/file.yaml")
	if err == nil {
		t.Error("Read() expected error for nonexistent file")
	}
}

func TestWriteError(t *testing.T) {
	err := Write("/nonexistent/path/file.yaml", &testDescriptor{Name: "test"})
	if err == nil {
		t.Error("Write() expected error for invalid path")
	}
}
