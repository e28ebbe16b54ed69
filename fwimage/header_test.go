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
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testHash is a deterministic stand-in for the content hash primitive.
func testHash(buf []byte) Digest {
	return sha256.Sum256(buf)
}

var testOpts = &Options{Hash: testHash}

func testHeader(magic uint32, codeLen uint32) *Header {
	h := &Header{
		Magic:      magic,
		HeaderLen:  HeaderSize,
		Expiry:     7,
		CodeLen:    codeLen,
		Version:    Version{1, 2, 3, 4},
		FixVersion: Version{1, 0, 0, 0},
	}

	for i := range h.Digests {
		h.Digests[i][0] = byte(i)
	}

	return h
}

func testCode(n int) []byte {
	code := make([]byte, n)

	for i := range code {
		code[i] = byte(i)
	}

	return code
}

func testImage(magic uint32, codeLen int) []byte {
	h := testHeader(magic, uint32(codeLen))
	return append(h.encode(true), testCode(codeLen)...)
}

func TestHeaderRoundTrip(t *testing.T) {
	h := testHeader(MagicFirmware, 3072)
	h.SigMask = 0b101
	h.Sig[0] = 0xaa
	h.Sig[63] = 0xbb

	buf := append(h.encode(true), testCode(3072)...)

	f, err := LoadFirmware(buf, 0, testOpts)
	if err != nil {
		t.Fatalf("LoadFirmware: %v", err)
	}

	if diff := cmp.Diff(h, f.Header); diff != "" {
		t.Fatalf("decoded header diff: %s", diff)
	}

	if got := f.Serialize(); !cmp.Equal(got, buf) {
		t.Fatal("Serialize does not reproduce the input bytes")
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, test := range []struct {
		name  string
		image func() []byte
		want  error
	}{
		{
			name: "wrong magic",
			image: func() []byte {
				return testImage(MagicFirmware, 3072)
			},
			want: ErrMagicMismatch,
		}, {
			name: "wrong magic wins over non-zero reserved",
			image: func() []byte {
				buf := testImage(MagicFirmware, 3072)
				buf[24] = 1
				return buf
			},
			want: ErrMagicMismatch,
		}, {
			name: "wrong header length field",
			image: func() []byte {
				buf := testImage(MagicBootloader, 3072)
				binary.LittleEndian.PutUint32(buf[4:8], 512)
				return buf
			},
			want: ErrHeaderLengthMismatch,
		}, {
			name: "total below minimum",
			image: func() []byte {
				return testImage(MagicBootloader, 1024)
			},
			want: ErrSizeOutOfBounds,
		}, {
			name: "total above kind maximum",
			image: func() []byte {
				return testImage(MagicBootloader, BootloaderMaxSize)
			},
			want: ErrSizeOutOfBounds,
		}, {
			name: "total not a multiple of 512",
			image: func() []byte {
				return testImage(MagicBootloader, 3100)
			},
			want: ErrSizeOutOfBounds,
		}, {
			name: "first reserved region non-zero",
			image: func() []byte {
				buf := testImage(MagicBootloader, 3072)
				buf[24] = 1
				return buf
			},
			want: ErrReservedFieldNonZero,
		}, {
			name: "second reserved region non-zero",
			image: func() []byte {
				buf := testImage(MagicBootloader, 3072)
				buf[600] = 1
				return buf
			},
			want: ErrReservedFieldNonZero,
		}, {
			name: "trailing bytes beyond declared code length",
			image: func() []byte {
				return append(testImage(MagicBootloader, 3072), 0)
			},
			want: ErrCodeLengthMismatch,
		}, {
			name: "short code",
			image: func() []byte {
				buf := testImage(MagicBootloader, 3072)
				return buf[:len(buf)-1]
			},
			want: ErrCodeLengthMismatch,
		}, {
			name: "truncated header",
			image: func() []byte {
				return testImage(MagicBootloader, 3072)[:512]
			},
			want: ErrCodeLengthMismatch,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadBootloader(test.image(), testOpts)

			if !errors.Is(err, test.want) {
				t.Fatalf("got %v, want %v", err, test.want)
			}
		})
	}
}

func TestLoadDispatch(t *testing.T) {
	img, err := Load(testImage(MagicBootloader, 3072), testOpts)
	if err != nil {
		t.Fatalf("Load bootloader: %v", err)
	}

	if _, ok := img.(*Bootloader); !ok {
		t.Fatalf("got %T, want *Bootloader", img)
	}

	img, err = Load(testImage(MagicFirmware, 3072), testOpts)
	if err != nil {
		t.Fatalf("Load firmware: %v", err)
	}

	if _, ok := img.(*Firmware); !ok {
		t.Fatalf("got %T, want *Firmware", img)
	}

	if _, err := Load([]byte("BOGUS-MAGIC-----"), testOpts); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("got %v, want %v", err, ErrUnknownFormat)
	}

	if _, err := Load([]byte{1, 2}, testOpts); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("got %v, want %v", err, ErrUnknownFormat)
	}
}

func TestFingerprintSignatureIndependence(t *testing.T) {
	b, err := LoadBootloader(testImage(MagicBootloader, 3072), testOpts)
	if err != nil {
		t.Fatalf("LoadBootloader: %v", err)
	}

	fp := b.Fingerprint()

	var sig [SignatureSize]byte
	sig[0] = 0xff
	b.Sign(0b11, sig)

	if got := b.Fingerprint(); got != fp {
		t.Fatal("fingerprint changed by Sign")
	}

	b.Header.Digests[0][0] ^= 1

	if got := b.Fingerprint(); got == fp {
		t.Fatal("fingerprint unchanged by digest array change")
	}
}
