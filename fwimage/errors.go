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

import "errors"

// Decode failures. Structural violations fail fast: no partially
// constructed model is ever returned, and within a single decode the
// checks run in a fixed order (magic, header length, size bounds,
// reserved regions, code length) so the first violated invariant is
// always the one reported.
var (
	// ErrMagicMismatch means the leading 4 byte tag does not match
	// the expected structure kind.
	ErrMagicMismatch = errors.New("magic mismatch")

	// ErrHeaderLengthMismatch means the header length field differs
	// from the kind's fixed constant, or is inconsistent with the
	// structure's actual layout.
	ErrHeaderLengthMismatch = errors.New("header length mismatch")

	// ErrSizeOutOfBounds means the total length is below the
	// minimum, above the kind's maximum, or not a multiple of 512.
	ErrSizeOutOfBounds = errors.New("total size out of bounds")

	// ErrReservedFieldNonZero means a reserved region contains a
	// non-zero byte.
	ErrReservedFieldNonZero = errors.New("reserved field not zero")

	// ErrCodeLengthMismatch means the buffer length does not match
	// the declared code length.
	ErrCodeLengthMismatch = errors.New("code length mismatch")

	// ErrSignerSchemeInvalid means an m-of-n signer scheme violates
	// 1 <= m <= n <= 8.
	ErrSignerSchemeInvalid = errors.New("invalid signer scheme")

	// ErrUnknownFormat means the leading magic matches no known
	// structure kind.
	ErrUnknownFormat = errors.New("unknown image format")
)
