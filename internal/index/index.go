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

// Package index loads index.yaml descriptors (a named collection of
// package summaries, plus further index resolutions to depend on) and
// holds Indices, the discovery-ordered collection that cache.GetIndices
// builds by breadth-first, dedup-by-DirectRes discovery of the transitive
// index graph that seeds a resolver.
package index

import (
	"fmt"
	"path/filepath"

	"github.com/elba-pm/elba/internal/cacheerr"
	"github.com/elba-pm/elba/internal/resolution"
	"github.com/elba-pm/elba/internal/yaml"
)

// Summary is a single package entry in an index: enough to let a resolver
// consider the package without fetching its source.
type Summary struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Res     string `yaml:"res"`
}

// resRef is index.yaml's on-disk form of a DirectRes: a discriminated
// union written as a flat record, since resolution.DirectRes deliberately
// has no exported fields to marshal directly.
type resRef struct {
	Kind      string `yaml:"kind"`
	URL       string `yaml:"url,omitempty"`
	Cksum     string `yaml:"cksum,omitempty"`
	Reference string `yaml:"reference,omitempty"`
	Path      string `yaml:"path,omitempty"`
}

func (r resRef) toDirectRes() (resolution.DirectRes, error) {
	switch r.Kind {
	case "tar":
		return resolution.NewTarRes(r.URL, r.Cksum), nil
	case "git":
		return resolution.NewGitRes(r.URL, r.Reference), nil
	case "dir":
		return resolution.NewDirRes(r.Path), nil
	default:
		return resolution.DirectRes{}, fmt.Errorf("index: unknown resolution kind %q", r.Kind)
	}
}

// descriptor is the raw YAML shape of an index.yaml file.
type descriptor struct {
	Name     string    `yaml:"name"`
	Packages []Summary `yaml:"packages"`
	Depends  []resRef  `yaml:"depends,omitempty"`
}

// Index is a named collection of package summaries loaded from disk. It
// may itself declare dependent indices, forming a directed graph that is
// deduplicated by DirectRes during discovery.
type Index struct {
	res      resolution.DirectRes
	name     string
	packages []Summary
	depends  []resolution.DirectRes
}

// FromDisk reads dir's index.yaml and associates it with the DirectRes it
// was resolved from.
func FromDisk(res resolution.DirectRes, dir string) (*Index, error) {
	path := filepath.Join(dir, "index.yaml")
	d, err := yaml.Read[descriptor](path)
	if err != nil {
		return nil, cacheerr.Wrap(cacheerr.InvalidIndex, err, "reading %s", path)
	}

	depends := make([]resolution.DirectRes, 0, len(d.Depends))
	for _, ref := range d.Depends {
		dr, err := ref.toDirectRes()
		if err != nil {
			return nil, cacheerr.Wrap(cacheerr.InvalidIndex, err, "parsing depends entry in %s", path)
		}
		depends = append(depends, dr)
	}

	return &Index{res: res, name: d.Name, packages: d.Packages, depends: depends}, nil
}

// Res returns the DirectRes this index was loaded from.
func (ix *Index) Res() resolution.DirectRes { return ix.res }

// Name returns the index's declared name.
func (ix *Index) Name() string { return ix.name }

// Depends returns the further index resolutions this index declares.
func (ix *Index) Depends() []resolution.DirectRes { return ix.depends }

// Summaries returns every package summary in this index matching name.
func (ix *Index) Summaries(name string) []Summary {
	var out []Summary
	for _, s := range ix.packages {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// Indices is an ordered, deduplicated collection of Index values produced
// by transitive discovery. Earlier indices take priority over later ones
// when a package name appears in more than one.
type Indices struct {
	list []*Index
}

// New wraps a discovery-ordered slice of indices.
func New(list []*Index) *Indices {
	return &Indices{list: list}
}

// List returns the indices in discovery order.
func (ixs *Indices) List() []*Index {
	out := make([]*Index, len(ixs.list))
	copy(out, ixs.list)
	return out
}

// Summaries returns every summary for name across all indices, in
// discovery-order priority: a caller that wants the first match only
// should take out[0].
func (ixs *Indices) Summaries(name string) []Summary {
	var out []Summary
	for _, ix := range ixs.list {
		out = append(out, ix.Summaries(name)...)
	}
	return out
}
