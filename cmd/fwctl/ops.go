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
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"k8s.io/klog/v2"

	"github.com/transparency-dev/firmware-trust/cosi"
	"github.com/transparency-dev/firmware-trust/fwimage"
)

func load(path string) (fwimage.Image, error) {
	buf, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	if conf.subHeader > 0 {
		return fwimage.LoadFirmware(buf, int(conf.subHeader), nil)
	}

	return fwimage.Load(buf, nil)
}

func save(path string, img fwimage.Image) error {
	return os.WriteFile(path, img.Serialize(), 0600)
}

func inspect(path string) error {
	img, err := load(path)

	if err != nil {
		return err
	}

	fmt.Println(report(img))

	return nil
}

func fingerprint(path string) error {
	img, err := load(path)

	if err != nil {
		return err
	}

	fp := img.Fingerprint()
	fmt.Printf("%x\n", fp[:])

	return nil
}

func rehash(path string) error {
	img, err := load(path)

	if err != nil {
		return err
	}

	if mask, _ := signature(img); mask != 0 {
		klog.Warning("existing signature left in place, it no longer matches the new fingerprint")
	}

	img.UpdateHashes()

	return save(path, img)
}

func sign(path string, sigFile string, mask byte) error {
	img, err := load(path)

	if err != nil {
		return err
	}

	buf, err := os.ReadFile(sigFile)

	if err != nil {
		return err
	}

	if len(buf) != fwimage.SignatureSize {
		return fmt.Errorf("invalid signature size %d, expected %d", len(buf), fwimage.SignatureSize)
	}

	var sig [fwimage.SignatureSize]byte
	copy(sig[:], buf)

	img.Sign(mask, sig)

	return save(path, img)
}

func verify(path string, keysFile string) error {
	img, err := load(path)

	if err != nil {
		return err
	}

	keys, err := loadKeys(keysFile)

	if err != nil {
		return err
	}

	fmt.Printf("Content digests ........: %v\n", hashStatus(img))

	mask, sig := signature(img)
	fp := img.Fingerprint()

	status, err := cosi.Verify(cosi.Ed25519{}, keys, mask, fp[:], sig[:])

	if err != nil {
		klog.V(1).Infof("signature verification: %v", err)
	}

	fmt.Printf("Signature ..............: %v\n", status)

	return nil
}

// signature returns the image's own signer bitmask and signature, for
// a vendor header the outer one rather than the embedded image's.
func signature(img fwimage.Image) (byte, [fwimage.SignatureSize]byte) {
	switch img := img.(type) {
	case *fwimage.Bootloader:
		return img.Header.SigMask, img.Header.Sig
	case *fwimage.Firmware:
		return img.Header.SigMask, img.Header.Sig
	case *fwimage.Vendor:
		return img.SigMask, img.Sig
	}

	return 0, [fwimage.SignatureSize]byte{}
}

func loadKeys(path string) (keys [][]byte, err error) {
	buf, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	for i, line := range strings.Split(strings.TrimSpace(string(buf)), "\n") {
		line = strings.TrimSpace(line)

		if len(line) == 0 {
			continue
		}

		key, err := hex.DecodeString(line)

		if err != nil {
			return nil, fmt.Errorf("key %d: %v", i, err)
		}

		if len(key) != fwimage.KeySize {
			return nil, fmt.Errorf("key %d: invalid size %d", i, len(key))
		}

		keys = append(keys, key)
	}

	return
}
