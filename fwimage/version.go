// Copyright 2024 The Firmware Trust authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fwimage

import (
	"fmt"

	"github.com/coreos/go-semver/semver"
)

// Version is a four part product version: major, minor, patch, build.
type Version [4]byte

// String returns the version in dotted form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

// Semver returns the version as a semantic version, the build part
// carried as metadata.
func (v Version) Semver() semver.Version {
	return semver.Version{
		Major:    int64(v[0]),
		Minor:    int64(v[1]),
		Patch:    int64(v[2]),
		Metadata: fmt.Sprintf("%d", v[3]),
	}
}

// AtLeast reports whether v is not older than o, comparing the
// major.minor.patch parts.
func (v Version) AtLeast(o Version) bool {
	sv := v.Semver()
	so := o.Semver()

	return !sv.LessThan(so)
}
