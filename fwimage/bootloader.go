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

// Bootloader is a bootloader image: a fixed header followed by code,
// bounded to a single chunk window.
type Bootloader struct {
	Header *Header
	Code   []byte

	hash HashFunc
}

// LoadBootloader parses a bootloader image.
func LoadBootloader(buf []byte, opts *Options) (*Bootloader, error) {
	h, err := decodeHeader(buf, MagicBootloader, BootloaderMaxSize)

	if err != nil {
		return nil, err
	}

	return &Bootloader{
		Header: h,
		Code:   append([]byte(nil), buf[HeaderSize:]...),
		hash:   opts.hash(),
	}, nil
}

// Fingerprint implements Image.
func (b *Bootloader) Fingerprint() Digest {
	return b.hash(b.Header.encode(false))
}

// CheckHashes implements Image.
func (b *Bootloader) CheckHashes() bool {
	return b.Header.Digests == DigestChunks(b.hash, b.Code, HeaderSize)
}

// UpdateHashes implements Image.
func (b *Bootloader) UpdateHashes() {
	b.Header.Digests = DigestChunks(b.hash, b.Code, HeaderSize)
}

// Sign implements Image.
func (b *Bootloader) Sign(mask byte, sig [SignatureSize]byte) {
	b.Header.SigMask = mask
	b.Header.Sig = sig
}

// Serialize implements Image.
func (b *Bootloader) Serialize() []byte {
	return append(b.Header.encode(true), b.Code...)
}
