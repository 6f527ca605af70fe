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

// PackageId is a Name plus the resolution source it came from. Two
// PackageIds are equal iff both components are equal.
type PackageId struct {
	name Name
	res  DirectRes
}

// NewPackageId builds a PackageId.
func NewPackageId(name Name, res DirectRes) PackageId {
	return PackageId{name: name, res: res}
}

// Name returns the package's Name.
func (p PackageId) Name() Name { return p.name }

// Res returns the package's resolution source.
func (p PackageId) Res() DirectRes { return p.res }

// Equal reports whether two PackageIds are equal.
func (p PackageId) Equal(o PackageId) bool {
	return p.name.Equal(o.name) && p.res.Equal(o.res)
}
