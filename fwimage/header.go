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
	"bytes"
	"encoding/binary"
	"fmt"
)

// Header is the fixed 1024 byte metadata block leading a bootloader or
// firmware image. Field order matches the on-wire little-endian layout
// exactly.
type Header struct {
	Magic      uint32
	HeaderLen  uint32
	Expiry     uint32
	CodeLen    uint32
	Version    Version
	FixVersion Version
	Reserved1  [8]byte
	Digests    [NumChunks]Digest
	Reserved2  [415]byte
	SigMask    byte
	Sig        [SignatureSize]byte
}

// decodeHeader parses and validates a full image (header plus code
// payload) against the expected magic and the kind's maximum total
// size, returning the header only.
//
// Invariant checks run in a fixed order so error reporting is
// deterministic: magic, header length, size bounds, reserved regions,
// code length.
func decodeHeader(buf []byte, magic uint32, maxSize uint64) (*Header, error) {
	if len(buf) < 8 {
		return nil, fmt.Errorf("%w: %d byte buffer", ErrCodeLengthMismatch, len(buf))
	}

	if m := binary.LittleEndian.Uint32(buf[0:4]); m != magic {
		return nil, fmt.Errorf("%w: got %#08x, want %#08x", ErrMagicMismatch, m, magic)
	}

	if l := binary.LittleEndian.Uint32(buf[4:8]); l != HeaderSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrHeaderLengthMismatch, l, HeaderSize)
	}

	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: truncated header (%d bytes)", ErrCodeLengthMismatch, len(buf))
	}

	h := &Header{}

	if err := binary.Read(bytes.NewReader(buf[:HeaderSize]), binary.LittleEndian, h); err != nil {
		return nil, err
	}

	total := uint64(h.HeaderLen) + uint64(h.CodeLen)

	if total < minTotalSize || total > maxSize || total%sizeAlignment != 0 {
		return nil, fmt.Errorf("%w: header %d + code %d bytes", ErrSizeOutOfBounds, h.HeaderLen, h.CodeLen)
	}

	if h.Reserved1 != [8]byte{} || h.Reserved2 != [415]byte{} {
		return nil, fmt.Errorf("%w in image header", ErrReservedFieldNonZero)
	}

	if uint64(len(buf)) != total {
		return nil, fmt.Errorf("%w: have %d code bytes, header declares %d", ErrCodeLengthMismatch, len(buf)-HeaderSize, h.CodeLen)
	}

	return h, nil
}

// encode returns the canonical byte sequence for the header. With
// includeSignature false the signer bitmask and signature are
// zero-filled, producing the signature independent form fingerprints
// are computed over.
func (h *Header) encode(includeSignature bool) []byte {
	out := h

	if !includeSignature {
		c := *h
		c.SigMask = 0
		c.Sig = [SignatureSize]byte{}
		out = &c
	}

	buf := &bytes.Buffer{}
	buf.Grow(HeaderSize)

	// cannot fail on a bytes.Buffer with fixed size fields
	_ = binary.Write(buf, binary.LittleEndian, out)

	return buf.Bytes()
}
