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

import "fmt"

// Firmware is a firmware image: an optional opaque version sub-header,
// a fixed header and code, bounded to six chunk windows.
type Firmware struct {
	// SubHeader is the opaque version sub-header preceding the
	// image header, if any. It is not self-describing: its length is
	// supplied by the caller at load time and the bytes are carried
	// through untouched.
	SubHeader []byte

	Header *Header
	Code   []byte

	hash HashFunc
}

// LoadFirmware parses a firmware image whose first subHeaderLen bytes
// are an opaque version sub-header. The image header invariants apply
// to the remainder of the buffer.
func LoadFirmware(buf []byte, subHeaderLen int, opts *Options) (*Firmware, error) {
	if subHeaderLen < 0 || subHeaderLen > len(buf) {
		return nil, fmt.Errorf("%w: %d byte sub-header in %d byte buffer", ErrCodeLengthMismatch, subHeaderLen, len(buf))
	}

	h, err := decodeHeader(buf[subHeaderLen:], MagicFirmware, FirmwareMaxSize)

	if err != nil {
		return nil, err
	}

	return &Firmware{
		SubHeader: append([]byte(nil), buf[:subHeaderLen]...),
		Header:    h,
		Code:      append([]byte(nil), buf[subHeaderLen+HeaderSize:]...),
		hash:      opts.hash(),
	}, nil
}

// effectiveHeaderLen is the number of non-code bytes occupying the
// start of the first chunk window.
func (f *Firmware) effectiveHeaderLen() int {
	return len(f.SubHeader) + HeaderSize
}

// Fingerprint implements Image. The version sub-header is opaque
// context and not part of the signed identity.
func (f *Firmware) Fingerprint() Digest {
	return f.hash(f.Header.encode(false))
}

// CheckHashes implements Image.
func (f *Firmware) CheckHashes() bool {
	return f.Header.Digests == DigestChunks(f.hash, f.Code, f.effectiveHeaderLen())
}

// UpdateHashes implements Image.
func (f *Firmware) UpdateHashes() {
	f.Header.Digests = DigestChunks(f.hash, f.Code, f.effectiveHeaderLen())
}

// Sign implements Image.
func (f *Firmware) Sign(mask byte, sig [SignatureSize]byte) {
	f.Header.SigMask = mask
	f.Header.Sig = sig
}

// Serialize implements Image.
func (f *Firmware) Serialize() []byte {
	out := append([]byte(nil), f.SubHeader...)
	out = append(out, f.Header.encode(true)...)

	return append(out, f.Code...)
}
