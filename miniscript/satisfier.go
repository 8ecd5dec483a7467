// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import "github.com/pkt-cash/miniscript/key"

// SigAndType is a signature plus the sighash-type byte appended to it, as it
// is pushed onto the witness/scriptSig stack.
type SigAndType struct {
	Sig         []byte
	SigHashType byte
}

// Bytes returns the DER signature with the sighash-type byte appended, the
// form Script actually consumes.
func (s SigAndType) Bytes() []byte {
	out := make([]byte, 0, len(s.Sig)+1)
	out = append(out, s.Sig...)
	out = append(out, s.SigHashType)
	return out
}

// Satisfier is the oracle capability the satisfier consults; it never
// touches a network, a wallet database, or the chain directly. A caller
// implements it over whatever key-value store, hardware signer, or wallet
// it has at hand.
type Satisfier[K key.Key] interface {
	// LookupSig returns a signature under the given key, if the caller can
	// produce one.
	LookupSig(k K) (SigAndType, bool)

	// LookupPkhSig returns a signature for whichever key hashes to the
	// given 20-byte hash, along with the key itself (needed to push the
	// public key alongside the signature in a pkh fragment).
	LookupPkhSig(hash [20]byte) (SigAndType, K, bool)

	// LookupPreimage returns a preimage whose digest under fn equals hash.
	LookupPreimage(fn HashFn, hash []byte) ([]byte, bool)

	// CheckOlder reports whether the input's relative age satisfies
	// older(n).
	CheckOlder(n uint32) bool

	// CheckAfter reports whether the spending transaction's locktime
	// satisfies after(n).
	CheckAfter(n uint32) bool
}
