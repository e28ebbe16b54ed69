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

// The fwctl tool inspects, rehashes, signs and verifies firmware trust
// images: bootloader images, firmware images and vendor headers.
//
// It never produces a signature itself; signing applies caller
// supplied signature bytes verbatim.
package main

import (
	"flag"

	"k8s.io/klog/v2"
)

type Config struct {
	inspect     string
	fingerprint string
	rehash      string
	sign        string
	verify      string

	sigFile   string
	keysFile  string
	mask      uint
	subHeader uint
}

var conf *Config

func init() {
	klog.InitFlags(nil)

	conf = &Config{}

	flag.StringVar(&conf.inspect, "i", "", "inspect an image")
	flag.StringVar(&conf.fingerprint, "f", "", "print an image fingerprint")
	flag.StringVar(&conf.rehash, "r", "", "recompute an image content digest array")
	flag.StringVar(&conf.sign, "s", "", "apply a signature to an image")
	flag.StringVar(&conf.verify, "v", "", "verify an image against a key list")
	flag.StringVar(&conf.sigFile, "S", "", "signature file (64 bytes, with -s)")
	flag.StringVar(&conf.keysFile, "k", "", "public key list file (hex, one per line, with -v)")
	flag.UintVar(&conf.mask, "m", 0, "signer bitmask (with -s)")
	flag.UintVar(&conf.subHeader, "x", 0, "version sub-header length of a firmware image")
}

func main() {
	var err error

	defer func() {
		if flag.NFlag() == 0 {
			flag.PrintDefaults()
		}

		if err != nil {
			klog.Exitf("fatal error, %v", err)
		}
	}()

	flag.Parse()

	switch {
	case len(conf.inspect) > 0:
		err = inspect(conf.inspect)
	case len(conf.fingerprint) > 0:
		err = fingerprint(conf.fingerprint)
	case len(conf.rehash) > 0:
		err = rehash(conf.rehash)
	case len(conf.sign) > 0:
		err = sign(conf.sign, conf.sigFile, byte(conf.mask))
	case len(conf.verify) > 0:
		err = verify(conf.verify, conf.keysFile)
	}
}
