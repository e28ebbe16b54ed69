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

// Package fwimage models the trust metadata of embedded device
// firmware images: fixed binary headers carrying version information,
// a per chunk integrity digest array and a threshold (M-of-N)
// aggregate signature, plus an outer vendor header carrying the set of
// authorized signing keys and its own signature.
//
// Three structure kinds exist, identified by their leading magic:
// bootloader images, firmware images and vendor headers. All headers
// are little-endian with fixed offsets, and decoding enforces every
// structural invariant before a model value is returned.
package fwimage

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2s"
	"k8s.io/klog/v2"

	"github.com/transparency-dev/firmware-trust/cosi"
)

// Structure magics ("FTBL", "FTFW", "FTVH" as little-endian u32).
const (
	MagicBootloader = 0x4c425446
	MagicFirmware   = 0x57465446
	MagicVendor     = 0x48565446
)

const (
	// HeaderSize is the fixed length of bootloader and firmware
	// image headers.
	HeaderSize = 1024

	// ChunkSize is the integrity digest window, sized so a device
	// can hash-verify an image incrementally in fixed RAM.
	ChunkSize = 128 * 1024

	// NumChunks is the length of the content digest array.
	NumChunks = 16

	// KeySize is the length of a signer public key.
	KeySize = 32

	// SignatureSize is the length of an aggregate signature.
	SignatureSize = 64

	// BootloaderMaxSize bounds a bootloader image to a single chunk
	// window.
	BootloaderMaxSize = 1 * ChunkSize

	// FirmwareMaxSize bounds a firmware image to six chunk windows.
	FirmwareMaxSize = 6 * ChunkSize

	// VendorMaxSize bounds a vendor header, which embeds a full
	// firmware image plus its own key list and descriptive text.
	VendorMaxSize = FirmwareMaxSize + 64*1024

	// minTotalSize is the smallest valid total length for any kind.
	minTotalSize = 4096

	// sizeAlignment is the required total length multiple for any
	// kind.
	sizeAlignment = 512
)

// DigestSize is the length of a content or fingerprint digest.
const DigestSize = 32

// Digest is a content or fingerprint digest value.
type Digest [DigestSize]byte

// HashFunc is the content hash primitive injected into parsing and
// digesting operations.
type HashFunc func(buf []byte) Digest

// BLAKE2s is the production content hash.
func BLAKE2s(buf []byte) Digest {
	return blake2s.Sum256(buf)
}

// Options supplies the external crypto services used while loading and
// operating on images. A nil *Options selects BLAKE2s hashing and
// Ed25519 collective key verification.
type Options struct {
	// Hash is the content hash primitive.
	Hash HashFunc

	// Verifier is the key combination and signature verification
	// primitive used for embedded image authentication.
	Verifier cosi.Primitive
}

func (o *Options) hash() HashFunc {
	if o == nil || o.Hash == nil {
		return BLAKE2s
	}

	return o.Hash
}

func (o *Options) verifier() cosi.Primitive {
	if o == nil || o.Verifier == nil {
		return cosi.Ed25519{}
	}

	return o.Verifier
}

// Image is a parsed trust structure. The concrete set is closed:
// Bootloader, Firmware or Vendor.
type Image interface {
	// Fingerprint returns the hash of the canonical header encoding
	// with the signature region zeroed; the value signing protocols
	// sign over.
	Fingerprint() Digest

	// CheckHashes compares the stored content digest array against
	// the current code payload.
	CheckHashes() bool

	// UpdateHashes recomputes the stored content digest array from
	// the current code payload. Any existing signature is left in
	// place, even though it no longer matches the new fingerprint.
	UpdateHashes()

	// Sign overwrites the signer bitmask and signature fields
	// verbatim. No verification of the supplied bytes is performed.
	Sign(mask byte, sig [SignatureSize]byte)

	// Serialize returns the full on-wire byte sequence.
	Serialize() []byte
}

// Load parses an image of any kind, dispatching on the leading magic.
//
// Firmware images carrying a version sub-header are not
// self-describing and must be parsed with LoadFirmware instead.
func Load(buf []byte, opts *Options) (Image, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("%w: %d byte buffer", ErrUnknownFormat, len(buf))
	}

	magic := binary.LittleEndian.Uint32(buf)

	klog.V(2).Infof("fwimage: loading %d byte image, magic %#08x", len(buf), magic)

	switch magic {
	case MagicBootloader:
		return LoadBootloader(buf, opts)
	case MagicFirmware:
		return LoadFirmware(buf, 0, opts)
	case MagicVendor:
		return LoadVendor(buf, opts)
	}

	return nil, fmt.Errorf("%w: magic %#08x", ErrUnknownFormat, magic)
}
