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

// Package cosi implements the collective signing side of the firmware
// trust model: a header carries one aggregate signature produced by a
// subset of up to 8 authorized signers, with a bitmask recording which
// signers participated. This package selects the participant keys,
// folds them into a single combined verification key, and checks the
// aggregate signature against it.
//
// The underlying key combination and signature verification math is
// supplied through the Primitive interface, keeping this package free
// of curve arithmetic and easy to exercise with deterministic fakes.
package cosi

import (
	"errors"
	"fmt"
)

// MaxSigners is the number of signer slots a single mask can address.
const MaxSigners = 8

// Primitive supplies the external crypto services the selection and
// aggregation policy is built on.
type Primitive interface {
	// Aggregate folds the given public keys into one combined
	// verification key.
	Aggregate(pubs [][]byte) ([]byte, error)

	// Verify checks sig over digest against pub, returning a nil
	// error only for a valid signature.
	Verify(pub, digest, sig []byte) error
}

// Status is the outcome of an aggregate signature check. An absent
// signature is deliberately distinct from an invalid one: an unsigned
// image is a legitimate artifact to inspect.
type Status int

const (
	// NoSignature means the signer mask is zero and no verification
	// was attempted.
	NoSignature Status = iota
	// Valid means the signature verified against the combined key.
	Valid
	// Incorrect means the signature failed verification, or the
	// combined key could not be derived.
	Incorrect
)

// String returns the status in textual form.
func (s Status) String() string {
	switch s {
	case NoSignature:
		return "no signature present"
	case Valid:
		return "valid"
	case Incorrect:
		return "incorrect"
	default:
		return fmt.Sprintf("unknown status %d", int(s))
	}
}

// ValidScheme reports whether an m-of-n signer scheme is well formed.
func ValidScheme(m, n byte) bool {
	return m >= 1 && m <= n && n <= MaxSigners
}

// Select returns the public keys picked by mask, bit i selecting
// keys[i]. Selection order follows bit index, lowest first.
func Select(keys [][]byte, mask byte) ([][]byte, error) {
	var sel [][]byte

	for i := 0; i < MaxSigners; i++ {
		if mask&(1<<i) == 0 {
			continue
		}

		if i >= len(keys) {
			return nil, fmt.Errorf("signer bit %d set but only %d keys present", i, len(keys))
		}

		sel = append(sel, keys[i])
	}

	return sel, nil
}

// Combine derives the aggregate verification key for the signers
// selected by mask.
func Combine(p Primitive, keys [][]byte, mask byte) ([]byte, error) {
	sel, err := Select(keys, mask)

	if err != nil {
		return nil, err
	}

	if len(sel) == 0 {
		return nil, errors.New("empty signer mask")
	}

	return p.Aggregate(sel)
}

// Verify checks sig over digest against the combined key of the
// signers selected by mask out of keys.
//
// A zero mask reports NoSignature without invoking the primitive. An
// Incorrect status carries a non-nil error describing the failure.
func Verify(p Primitive, keys [][]byte, mask byte, digest, sig []byte) (Status, error) {
	if mask == 0 {
		return NoSignature, nil
	}

	pub, err := Combine(p, keys, mask)

	if err != nil {
		return Incorrect, err
	}

	if err := p.Verify(pub, digest, sig); err != nil {
		return Incorrect, err
	}

	return Valid, nil
}
