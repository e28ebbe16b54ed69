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

package main

import (
	"bytes"
	"fmt"

	"github.com/transparency-dev/firmware-trust/fwimage"
)

// report returns an image description in textual format.
func report(img fwimage.Image) string {
	var b bytes.Buffer

	switch img := img.(type) {
	case *fwimage.Bootloader:
		b.WriteString("------------------------------------------------------ Bootloader image ----\n")
		headerReport(&b, img.Header)
	case *fwimage.Firmware:
		b.WriteString("-------------------------------------------------------- Firmware image ----\n")
		b.WriteString(fmt.Sprintf("Sub-header .............: %d bytes\n", len(img.SubHeader)))
		headerReport(&b, img.Header)
	case *fwimage.Vendor:
		b.WriteString("--------------------------------------------------------- Vendor header ----\n")
		b.WriteString(fmt.Sprintf("Description ............: %s\n", img.Text))
		b.WriteString(fmt.Sprintf("Total length ...........: %d\n", img.HeaderLen))
		b.WriteString(fmt.Sprintf("Expiry .................: %d\n", img.Expiry))
		b.WriteString(fmt.Sprintf("Version ................: %d.%d\n", img.VersionMajor, img.VersionMinor))
		b.WriteString(fmt.Sprintf("Signer scheme ..........: %d of %d\n", img.SchemeM, img.SchemeN))
		b.WriteString(fmt.Sprintf("Trust flags ............: %#04x\n", img.TrustFlags))

		for i, key := range img.Keys {
			b.WriteString(fmt.Sprintf("Public key %d ...........: %x\n", i, key))
		}

		b.WriteString(fmt.Sprintf("Signer bitmask .........: %#02x\n", img.SigMask))
		b.WriteString(fmt.Sprintf("Embedded image auth ....: %v\n", img.ImageAuth))
		b.WriteString("-------------------------------------------------------- Embedded image ----\n")
		headerReport(&b, img.Image.Header)
	}

	fp := img.Fingerprint()
	b.WriteString(fmt.Sprintf("Content digests ........: %v\n", hashStatus(img)))
	b.WriteString(fmt.Sprintf("Fingerprint ............: %x", fp[:]))

	return b.String()
}

func headerReport(b *bytes.Buffer, h *fwimage.Header) {
	b.WriteString(fmt.Sprintf("Expiry .................: %d\n", h.Expiry))
	b.WriteString(fmt.Sprintf("Code length ............: %d\n", h.CodeLen))
	b.WriteString(fmt.Sprintf("Version ................: %s (%s)\n", h.Version, h.Version.Semver()))
	b.WriteString(fmt.Sprintf("Minimum compatible .....: %s\n", h.FixVersion))

	if !h.Version.AtLeast(h.FixVersion) {
		b.WriteString("WARNING: version is below its own minimum compatible version\n")
	}

	b.WriteString(fmt.Sprintf("Signer bitmask .........: %#02x\n", h.SigMask))
}

func hashStatus(img fwimage.Image) string {
	if img.CheckHashes() {
		return "valid"
	}

	return "MISMATCH"
}
