// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"github.com/btcsuite/btcd/txscript"

	"github.com/pkt-cash/miniscript/key"
)

// WSwap is the 's' wrapper: OP_SWAP Inner, turning any E fragment into a W
// fragment that composes one slot below whatever precedes it.
type WSwap[K key.Key] struct {
	markW
	Inner NodeE[K]
}

// NewWSwap builds the W::Swap(E) node ('s:' wrapper).
func NewWSwap[K key.Key](inner NodeE[K]) NodeW[K] { return WSwap[K]{Inner: inner} }

func (n WSwap[K]) encodeInto(b builder) {
	b.AddOp(txscript.OP_SWAP)
	n.Inner.(interface{ encodeInto(builder) }).encodeInto(b)
}
func (n WSwap[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n WSwap[K]) MaxWitnessElements() int             { return n.Inner.MaxWitnessElements() }
func (n WSwap[K]) MaxSatisfactionSize(segwit bool) int { return n.Inner.MaxSatisfactionSize(segwit) }
func (n WSwap[K]) String() string                      { return "s(" + n.Inner.String() + ")" }
func (n WSwap[K]) satisfy(s Satisfier[K]) ([][]byte, bool)    { return n.Inner.satisfy(s) }
func (n WSwap[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return n.Inner.dissatisfy(s) }

// WCastE is the 'a' alt-stack wrapper: OP_TOALTSTACK Inner OP_FROMALTSTACK,
// used to place an E fragment into parallel-composition position without
// disturbing what is already on the stack.
type WCastE[K key.Key] struct {
	markW
	Inner NodeE[K]
}

func NewWCastE[K key.Key](inner NodeE[K]) NodeW[K] { return WCastE[K]{Inner: inner} }

func (n WCastE[K]) encodeInto(b builder) {
	b.AddOp(txscript.OP_TOALTSTACK)
	n.Inner.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_FROMALTSTACK)
}
func (n WCastE[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n WCastE[K]) MaxWitnessElements() int             { return n.Inner.MaxWitnessElements() }
func (n WCastE[K]) MaxSatisfactionSize(segwit bool) int { return n.Inner.MaxSatisfactionSize(segwit) }
func (n WCastE[K]) String() string                      { return "a(" + n.Inner.String() + ")" }
func (n WCastE[K]) satisfy(s Satisfier[K]) ([][]byte, bool)    { return n.Inner.satisfy(s) }
func (n WCastE[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return n.Inner.dissatisfy(s) }

// encodeHashEqual writes OP_SIZE 32 OP_EQUALVERIFY OP_HASH... <digest>
// OP_EQUAL(VERIFY); the preimage-length check is always 32 bytes regardless
// of hash kind, since it constrains the width of the *preimage* fed to
// OP_HASH..., not the digest the push below compares against.
func encodeHashEqual(b builder, fn HashFn, digest []byte, verify bool) {
	b.AddOp(txscript.OP_SIZE)
	b.AddInt64(32)
	b.AddOp(txscript.OP_EQUALVERIFY)
	b.AddOp(hashOpcode(fn))
	b.AddData(digest)
	if verify {
		b.AddOp(txscript.OP_EQUALVERIFY)
	} else {
		b.AddOp(txscript.OP_EQUAL)
	}
}

func hashEqualName(fn HashFn, digest []byte) string {
	return hashFnName(fn) + "(" + hexString(digest) + ")"
}

// hashFnName is the canonical Miniscript text name for fn, distinct from
// HashFn.String() (which names the underlying opcode for lexer/debug use).
func hashFnName(fn HashFn) string {
	switch fn {
	case Sha256:
		return "sha256"
	case DoubleSha256:
		return "hash256"
	case Ripemd160:
		return "ripemd160"
	case Hash160Fn:
		return "hash160"
	default:
		return "hash?"
	}
}

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[2*i] = digits[c>>4]
		out[2*i+1] = digits[c&0xf]
	}
	return string(out)
}
