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

import "testing"

func TestVersion(t *testing.T) {
	v := Version{2, 1, 7, 42}

	if got, want := v.String(), "2.1.7.42"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got, want := v.Semver().String(), "2.1.7+42"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	for _, test := range []struct {
		v, o Version
		want bool
	}{
		{Version{2, 1, 7, 0}, Version{2, 1, 7, 0}, true},
		{Version{2, 1, 7, 0}, Version{2, 1, 6, 0}, true},
		{Version{2, 1, 7, 0}, Version{2, 2, 0, 0}, false},
		{Version{3, 0, 0, 0}, Version{2, 9, 9, 0}, true},
		{Version{1, 9, 9, 0}, Version{2, 0, 0, 0}, false},
	} {
		if got := test.v.AtLeast(test.o); got != test.want {
			t.Errorf("%s AtLeast %s: got %v, want %v", test.v, test.o, got, test.want)
		}
	}
}
