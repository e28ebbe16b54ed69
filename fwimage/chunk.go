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

// DigestChunks computes the per chunk content digests for code, where
// headerLen bytes of header material occupy the start of the first
// chunk window.
//
// The logical image is partitioned into NumChunks windows of ChunkSize
// bytes starting at offset 0 of the whole image, so chunk 0 covers
// only the code bytes falling inside the first window. A window with
// no code bytes digests to all zeroes; a partially filled window is
// hashed short, without padding.
func DigestChunks(h HashFunc, code []byte, headerLen int) [NumChunks]Digest {
	var out [NumChunks]Digest

	for i := range out {
		start := i*ChunkSize - headerLen
		end := (i+1)*ChunkSize - headerLen

		if start < 0 {
			start = 0
		}

		if end > len(code) {
			end = len(code)
		}

		if end <= start {
			continue
		}

		out[i] = h(code[start:end])
	}

	return out
}
