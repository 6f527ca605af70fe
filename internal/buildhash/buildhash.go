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

// Package buildhash computes the content fingerprint that keys a build's
// output directory in the build cache: a SHA-256 over the content hashes
// of a source and everything it transitively depends on, in the order the
// resolver's dependency graph presents them.
package buildhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/elba-pm/elba/internal/graph"
	"github.com/elba-pm/elba/internal/source"
)

// Hash is the hex-encoded SHA-256 fingerprint of a build's source
// sub-tree, used as the directory name under layout.build and
// layout.tmp.
type Hash string

// String returns the hex digest.
func (h Hash) String() string { return string(h) }

// New computes the BuildHash for root within g: the sub-tree rooted at
// root, visited in g's intrinsic traversal order (the order the resolver
// added dependency edges in), concatenating each member's content hash
// into one SHA-256. Changing the resolver's traversal order changes the
// resulting hash; that is expected; it only ever triggers a rebuild, never
// incorrect reuse, because the build's actual dependency set is still
// exactly and completely represented in the sum.
func New(root *source.Source, g *graph.Graph[*source.Source]) (Hash, error) {
	members := g.Subtree(root)
	if members == nil {
		return "", fmt.Errorf("buildhash: root is not a member of the supplied graph")
	}

	h := sha256.New()
	for _, m := range members {
		if _, err := h.Write([]byte(m.Hash())); err != nil {
			return "", err
		}
	}

	return Hash(fmt.Sprintf("%x", h.Sum(nil))), nil
}
