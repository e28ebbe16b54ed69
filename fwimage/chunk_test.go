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

import "testing"

func TestDigestChunksShortCode(t *testing.T) {
	code := testCode(4096)

	got := DigestChunks(testHash, code, HeaderSize)

	if got[0] != testHash(code) {
		t.Error("chunk 0 does not cover the whole code")
	}

	for i := 1; i < NumChunks; i++ {
		if got[i] != (Digest{}) {
			t.Errorf("chunk %d not zero", i)
		}
	}
}

func TestDigestChunksFirstWindowBoundary(t *testing.T) {
	// code exactly filling the first window
	code := testCode(ChunkSize - HeaderSize)
	got := DigestChunks(testHash, code, HeaderSize)

	if got[0] != testHash(code) {
		t.Error("chunk 0 does not cover the full first window")
	}

	if got[1] != (Digest{}) {
		t.Error("chunk 1 not zero")
	}

	// one byte spilling into the second window
	code = testCode(ChunkSize - HeaderSize + 1)
	got = DigestChunks(testHash, code, HeaderSize)

	if got[0] != testHash(code[:ChunkSize-HeaderSize]) {
		t.Error("chunk 0 covers spilled byte")
	}

	if got[1] != testHash(code[ChunkSize-HeaderSize:]) {
		t.Error("chunk 1 does not cover the spilled byte")
	}
}

func TestDigestChunksEndToEnd(t *testing.T) {
	const codeLen = 300000

	code := testCode(codeLen)
	got := DigestChunks(testHash, code, HeaderSize)

	want := [NumChunks]Digest{
		0: testHash(code[0:130048]),
		1: testHash(code[130048:261120]),
		2: testHash(code[261120:300000]),
	}

	if got != want {
		t.Fatal("chunk digests differ from expected windows")
	}

	for i := 3; i < NumChunks; i++ {
		if got[i] != (Digest{}) {
			t.Errorf("chunk %d not zero", i)
		}
	}
}

func TestCheckUpdateHashes(t *testing.T) {
	b, err := LoadBootloader(testImage(MagicBootloader, 3072), testOpts)
	if err != nil {
		t.Fatalf("LoadBootloader: %v", err)
	}

	if b.CheckHashes() {
		t.Fatal("CheckHashes true against placeholder digests")
	}

	b.UpdateHashes()

	if !b.CheckHashes() {
		t.Fatal("CheckHashes false immediately after UpdateHashes")
	}

	b.Code[100] ^= 1

	if b.CheckHashes() {
		t.Fatal("CheckHashes true after code mutation")
	}

	b.UpdateHashes()

	if !b.CheckHashes() {
		t.Fatal("CheckHashes false after second UpdateHashes")
	}
}

func TestUpdateHashesLeavesSignature(t *testing.T) {
	b, err := LoadBootloader(testImage(MagicBootloader, 3072), testOpts)
	if err != nil {
		t.Fatalf("LoadBootloader: %v", err)
	}

	var sig [SignatureSize]byte
	sig[0] = 0xaa
	b.Sign(0b1, sig)

	fp := b.Fingerprint()

	b.Code[0] ^= 1
	b.UpdateHashes()

	// The digest array feeds into the fingerprint, so the prior
	// signature is now stale against it. It is intentionally left in
	// place for the caller to replace; rehashing never clears or
	// validates signature fields.
	if b.Header.SigMask != 0b1 || b.Header.Sig != sig {
		t.Fatal("UpdateHashes touched signature fields")
	}

	if b.Fingerprint() == fp {
		t.Fatal("fingerprint unchanged by rehash of mutated code")
	}
}
