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

package cosi

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

// Ed25519 implements Primitive over Ed25519 collective keys: the
// combined key is the Edwards curve point sum of the participant keys,
// and the aggregate signature verifies against it as a plain Ed25519
// signature.
type Ed25519 struct{}

// Aggregate returns the point sum of the given public keys.
func (Ed25519) Aggregate(pubs [][]byte) ([]byte, error) {
	sum := edwards25519.NewIdentityPoint()

	for i, pub := range pubs {
		p, err := new(edwards25519.Point).SetBytes(pub)

		if err != nil {
			return nil, fmt.Errorf("public key %d: %w", i, err)
		}

		sum.Add(sum, p)
	}

	return sum.Bytes(), nil
}

// Verify checks an Ed25519 signature over digest.
func (Ed25519) Verify(pub, digest, sig []byte) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid public key size %d", len(pub))
	}

	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid signature size %d", len(sig))
	}

	if !ed25519.Verify(ed25519.PublicKey(pub), digest, sig) {
		return errors.New("ed25519 signature verification failed")
	}

	return nil
}
