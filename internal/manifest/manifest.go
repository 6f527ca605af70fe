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

// Package manifest parses elba.toml, a project's package manifest: a
// package section (name, version, authors), dependencies, and targets (a
// library with a module list, or one or more binaries each with an entry
// path).
package manifest

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/elba-pm/elba/internal/resolution"
)

// Package is the `[package]` section of elba.toml.
type Package struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
	Authors []string `toml:"authors,omitempty"`
}

// Lib is the `[targets.lib]` section of elba.toml.
type Lib struct {
	Path string   `toml:"path"`
	Mods []string `toml:"mods"`
}

// Bin is a `[[targets.bin]]` entry of elba.toml.
type Bin struct {
	Name string `toml:"name"`
	Main string `toml:"main"`
}

// Targets is the `[targets]` section of elba.toml.
type Targets struct {
	Lib *Lib  `toml:"lib,omitempty"`
	Bin []Bin `toml:"bin,omitempty"`
}

// Manifest is the parsed form of elba.toml.
type Manifest struct {
	Package      Package           `toml:"package"`
	Dependencies map[string]string `toml:"dependencies,omitempty"`
	Targets      Targets           `toml:"targets,omitempty"`
}

// Parse parses the contents of an elba.toml file.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing elba.toml: %w", err)
	}
	if m.Package.Name == "" {
		return nil, fmt.Errorf("elba.toml missing [package].name")
	}
	if m.Package.Version == "" {
		return nil, fmt.Errorf("elba.toml missing [package].version")
	}
	return &m, nil
}

// Summary returns the manifest's name and version, its sole contract with
// the cache (which otherwise treats the manifest as opaque).
func (m *Manifest) Summary() (resolution.Name, resolution.Version, error) {
	name, err := resolution.ParseName(m.Package.Name)
	if err != nil {
		return resolution.Name{}, resolution.Version{}, err
	}
	version, err := resolution.ParseVersion(m.Package.Version)
	if err != nil {
		return resolution.Name{}, resolution.Version{}, err
	}
	return name, version, nil
}
