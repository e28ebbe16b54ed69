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
	"math/bits"

	"k8s.io/klog/v2"

	"github.com/transparency-dev/firmware-trust/cosi"
)

const (
	// vendorPrefixSize is the fixed leading portion of a vendor
	// header, up to the public key list.
	vendorPrefixSize = 32

	// vendorTrailerSize is the signer bitmask plus signature.
	vendorTrailerSize = 1 + SignatureSize
)

// Vendor is a vendor header: the set of authorized signing keys for an
// m-of-n scheme, a descriptive string, an embedded firmware image, and
// the vendor's own aggregate signature over all of it.
type Vendor struct {
	HeaderLen    uint32
	Expiry       uint32
	VersionMajor byte
	VersionMinor byte

	// SchemeM of SchemeN keys must participate in a signature over
	// the embedded image for it to be trusted.
	SchemeM byte
	SchemeN byte

	TrustFlags uint16

	// Keys holds SchemeN public keys of KeySize bytes each.
	Keys [][]byte

	// Text is the vendor's descriptive string.
	Text string

	// Image is the embedded firmware image, stored without a
	// version sub-header.
	Image *Firmware

	SigMask byte
	Sig     [SignatureSize]byte

	// ImageAuth records the outcome of verifying the embedded
	// image's signature against Keys at load time. It is the chain
	// of trust link between the two structures.
	ImageAuth cosi.Status

	hash     HashFunc
	verifier cosi.Primitive
}

// LoadVendor parses a vendor header and its embedded firmware image.
//
// When the embedded image carries a signature, it is verified against
// the vendor key list under the declared m-of-n scheme; the outcome is
// recorded in ImageAuth rather than failing the load, since an
// unsigned or unverifiable image remains a valid artifact to inspect.
func LoadVendor(buf []byte, opts *Options) (*Vendor, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("%w: %d byte buffer", ErrCodeLengthMismatch, len(buf))
	}

	if m := binary.LittleEndian.Uint32(buf[0:4]); m != MagicVendor {
		return nil, fmt.Errorf("%w: got %#08x, want %#08x", ErrMagicMismatch, m, MagicVendor)
	}

	if len(buf) < vendorPrefixSize {
		return nil, fmt.Errorf("%w: truncated vendor header (%d bytes)", ErrCodeLengthMismatch, len(buf))
	}

	v := &Vendor{
		HeaderLen:    binary.LittleEndian.Uint32(buf[4:8]),
		Expiry:       binary.LittleEndian.Uint32(buf[8:12]),
		VersionMajor: buf[12],
		VersionMinor: buf[13],
		SchemeM:      buf[14],
		SchemeN:      buf[15],
		TrustFlags:   binary.LittleEndian.Uint16(buf[16:18]),
		hash:         opts.hash(),
		verifier:     opts.verifier(),
	}

	total := uint64(v.HeaderLen)

	if total < minTotalSize || total > VendorMaxSize || total%sizeAlignment != 0 {
		return nil, fmt.Errorf("%w: vendor header %d bytes", ErrSizeOutOfBounds, v.HeaderLen)
	}

	if !cosi.ValidScheme(v.SchemeM, v.SchemeN) {
		return nil, fmt.Errorf("%w: %d of %d", ErrSignerSchemeInvalid, v.SchemeM, v.SchemeN)
	}

	if !zero(buf[18:vendorPrefixSize]) {
		return nil, fmt.Errorf("%w in vendor header padding", ErrReservedFieldNonZero)
	}

	if uint64(len(buf)) != total {
		return nil, fmt.Errorf("%w: have %d bytes, vendor header declares %d", ErrCodeLengthMismatch, len(buf), v.HeaderLen)
	}

	// The total length must equal the exact sum of all sub-fields,
	// so every cursor advance below is bounds checked against the
	// trailer position.
	off := vendorPrefixSize
	trailer := len(buf) - vendorTrailerSize

	for i := 0; i < int(v.SchemeN); i++ {
		if off+KeySize > trailer {
			return nil, fmt.Errorf("%w: no room for public key %d", ErrHeaderLengthMismatch, i)
		}

		v.Keys = append(v.Keys, append([]byte(nil), buf[off:off+KeySize]...))
		off += KeySize
	}

	if off+1 > trailer {
		return nil, fmt.Errorf("%w: no room for string length", ErrHeaderLengthMismatch)
	}

	textLen := int(buf[off])
	padLen := (4 - (1+textLen)%4) % 4

	if off+1+textLen+padLen > trailer {
		return nil, fmt.Errorf("%w: no room for %d byte string", ErrHeaderLengthMismatch, textLen)
	}

	v.Text = string(buf[off+1 : off+1+textLen])

	if !zero(buf[off+1+textLen : off+1+textLen+padLen]) {
		return nil, fmt.Errorf("%w in string padding", ErrReservedFieldNonZero)
	}

	off += 1 + textLen + padLen

	// The embedded image is self-describing: its code length field
	// determines where it ends. The remainder up to the trailer is
	// zero padding bringing the total to a multiple of 512.
	if off+16 > trailer {
		return nil, fmt.Errorf("%w: no room for embedded image", ErrHeaderLengthMismatch)
	}

	imageLen := HeaderSize + int(binary.LittleEndian.Uint32(buf[off+12:off+16]))

	if off+imageLen > trailer {
		return nil, fmt.Errorf("%w: no room for %d byte embedded image", ErrHeaderLengthMismatch, imageLen)
	}

	img, err := LoadFirmware(buf[off:off+imageLen], 0, opts)

	if err != nil {
		return nil, fmt.Errorf("embedded image: %w", err)
	}

	v.Image = img
	off += imageLen

	if !zero(buf[off:trailer]) {
		return nil, fmt.Errorf("%w in vendor header trailing padding", ErrReservedFieldNonZero)
	}

	v.SigMask = buf[trailer]
	copy(v.Sig[:], buf[trailer+1:])

	v.ImageAuth, err = v.AuthenticateImage()

	if err != nil {
		klog.V(2).Infof("fwimage: embedded image authentication: %v", err)
	}

	return v, nil
}

// AuthenticateImage verifies the embedded image's signature against
// the vendor key list under the m-of-n scheme. A signature combining
// fewer than m signers is incorrect, not absent.
func (v *Vendor) AuthenticateImage() (cosi.Status, error) {
	mask := v.Image.Header.SigMask

	if mask == 0 {
		return cosi.NoSignature, nil
	}

	if got := bits.OnesCount8(mask); got < int(v.SchemeM) {
		return cosi.Incorrect, fmt.Errorf("%d signers below threshold %d", got, v.SchemeM)
	}

	fp := v.Image.Fingerprint()

	return cosi.Verify(v.verifier, v.Keys, mask, fp[:], v.Image.Header.Sig[:])
}

// encode returns the canonical vendor header byte sequence. With
// includeSignature false the trailing signer bitmask and signature are
// zero-filled; the embedded image is serialized as stored, its own
// signature included either way.
func (v *Vendor) encode(includeSignature bool) []byte {
	buf := &bytes.Buffer{}
	buf.Grow(int(v.HeaderLen))

	var u32 [4]byte
	var u16 [2]byte

	binary.LittleEndian.PutUint32(u32[:], MagicVendor)
	buf.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], v.HeaderLen)
	buf.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], v.Expiry)
	buf.Write(u32[:])
	buf.WriteByte(v.VersionMajor)
	buf.WriteByte(v.VersionMinor)
	buf.WriteByte(v.SchemeM)
	buf.WriteByte(v.SchemeN)
	binary.LittleEndian.PutUint16(u16[:], v.TrustFlags)
	buf.Write(u16[:])
	buf.Write(make([]byte, vendorPrefixSize-18))

	for _, k := range v.Keys {
		buf.Write(k)
	}

	buf.WriteByte(byte(len(v.Text)))
	buf.WriteString(v.Text)
	buf.Write(make([]byte, (4-(1+len(v.Text))%4)%4))

	buf.Write(v.Image.Serialize())

	// zero padding up to the trailer position
	if pad := int(v.HeaderLen) - vendorTrailerSize - buf.Len(); pad > 0 {
		buf.Write(make([]byte, pad))
	}

	if includeSignature {
		buf.WriteByte(v.SigMask)
		buf.Write(v.Sig[:])
	} else {
		buf.Write(make([]byte, vendorTrailerSize))
	}

	return buf.Bytes()
}

// Fingerprint implements Image.
func (v *Vendor) Fingerprint() Digest {
	return v.hash(v.encode(false))
}

// CheckHashes implements Image, delegating to the embedded image,
// which owns the content digest array.
func (v *Vendor) CheckHashes() bool {
	return v.Image.CheckHashes()
}

// UpdateHashes implements Image, delegating to the embedded image.
func (v *Vendor) UpdateHashes() {
	v.Image.UpdateHashes()
}

// Sign implements Image.
func (v *Vendor) Sign(mask byte, sig [SignatureSize]byte) {
	v.SigMask = mask
	v.Sig = sig
}

// Serialize implements Image.
func (v *Vendor) Serialize() []byte {
	return v.encode(true)
}

func zero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}

	return true
}
