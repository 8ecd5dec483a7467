// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/ripemd160" //lint:ignore SA1019 ripemd160 is deprecated but not going away
)

// digest computes fn(preimage), delegating entirely to real hash
// primitives: this library never implements a hash function itself.
func digest(fn HashFn, preimage []byte) []byte {
	switch fn {
	case Sha256:
		h := sha256.Sum256(preimage)
		return h[:]
	case DoubleSha256:
		return chainhash.DoubleHashB(preimage)
	case Ripemd160:
		h := ripemd160.New()
		h.Write(preimage)
		return h.Sum(nil)
	case Hash160Fn:
		return btcutil.Hash160(preimage)
	default:
		panic("miniscript: unknown hash function")
	}
}
