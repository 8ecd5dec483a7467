// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package miniscript implements the typed Script-fragment algebra (the
// Miniscript AST), its bidirectional mapping to raw Bitcoin Script, and its
// satisfier.
package miniscript

import (
	"github.com/btcsuite/btcd/txscript"

	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/token"
)

// MaxDecodeDepth bounds recursive descent in the decoder so an adversarial
// script cannot overflow the host call stack; mainnet caps scripts at 10,000
// bytes, which bounds real AST depth to a few hundred.
const MaxDecodeDepth = 500

// builder is an alias for *txscript.ScriptBuilder; every node appends to one
// so push-minimality is always delegated to the real ScriptBuilder rather
// than hand-rolled.
type builder = *txscript.ScriptBuilder

// Node is the common capability of every AST fragment, regardless of its
// correctness type. It is never implemented outside this package: every
// concrete variant additionally implements exactly one of NodeE, NodeW,
// NodeV, NodeT below, whose private marker methods close the type over the
// four correctness classes (design note: "enforced structurally").
type Node[K key.Key] interface {
	// ScriptSize is the exact number of bytes this node contributes to the
	// encoded Script, computable without emitting.
	ScriptSize() int

	// MaxWitnessElements is the worst-case number of stack elements this
	// node's satisfaction can push.
	MaxWitnessElements() int

	// MaxSatisfactionSize is the worst-case serialized byte size of this
	// node's satisfaction, signatures assumed 73 bytes (max DER + sighash
	// byte), scriptSig pushes costed at +1 byte and segwit stack elements
	// at +2 bytes of overhead per element.
	MaxSatisfactionSize(segwit bool) int

	// String renders the canonical textual form of this fragment.
	String() string

	encodeInto(b builder)
	satisfy(s Satisfier[K]) (stack [][]byte, ok bool)
	dissatisfy(s Satisfier[K]) (stack [][]byte, ok bool)
}

// NodeE is an "expression": pushes exactly 0 or 1, composable.
type NodeE[K key.Key] interface {
	Node[K]
	isE()
}

// NodeW is a "wrapped" expression: like E but leaves its result one stack
// slot below the top, so it composes in parallel with whatever the
// preceding fragment already left there.
type NodeW[K key.Key] interface {
	Node[K]
	isW()
}

// NodeV is a "verify" fragment: consumes its operands and aborts the whole
// script on failure, leaving nothing behind.
type NodeV[K key.Key] interface {
	Node[K]
	isV()
}

// NodeT is a "top" fragment: evaluates to non-zero iff satisfied. Only valid
// at the script root.
type NodeT[K key.Key] interface {
	Node[K]
	isT()
}

// markers, embedded by every concrete variant to claim its correctness type.
type markE struct{}

func (markE) isE() {}

type markW struct{}

func (markW) isW() {}

type markV struct{}

func (markV) isV() {}

type markT struct{}

func (markT) isT() {}

// TimeKind distinguishes older() (relative, CSV) from after() (absolute,
// CLTV) locktimes; both share one AST shape, only the opcode differs.
type TimeKind int

const (
	Relative TimeKind = iota
	Absolute
)

func (k TimeKind) opcode() byte {
	if k == Relative {
		return txscript.OP_CHECKSEQUENCEVERIFY
	}
	return txscript.OP_CHECKLOCKTIMEVERIFY
}

func (k TimeKind) String() string {
	if k == Relative {
		return "older"
	}
	return "after"
}

// HashFn re-exports token.HashFn so callers of this package need not import
// the token package for AST construction.
type HashFn = token.HashFn

const (
	Sha256       = token.Sha256
	DoubleSha256 = token.DoubleSha256
	Ripemd160    = token.Ripemd160
	Hash160Fn    = token.Hash160
)

func hashOpcode(fn HashFn) byte {
	switch fn {
	case token.Sha256:
		return txscript.OP_SHA256
	case token.DoubleSha256:
		return txscript.OP_HASH256
	case token.Ripemd160:
		return txscript.OP_RIPEMD160
	case token.Hash160:
		return txscript.OP_HASH160
	default:
		panic("miniscript: unknown hash function")
	}
}

// sigCost is the assumed worst-case DER signature size (max DER signature
// plus one sighash-type byte), used by the weight estimator.
const sigCost = 73

// hashPreimageWidth is the fixed width of the preimage a HashEqual fragment's
// OP_SIZE check admits, regardless of which hash function digests it.
const hashPreimageWidth = 32

// elementOverhead returns the per-witness-element serialization overhead
// the weight estimator charges: 1 byte for a scriptSig push, 2 bytes for a
// segwit stack element.
func elementOverhead(segwit bool) int {
	if segwit {
		return 2
	}
	return 1
}

// MaxSigWeight is the worst-case satisfaction size of a bare single
// signature, the same accounting EParallelAnd and friends use for their
// own operand costs. It's exported for the descriptor package's pk
// envelope, whose satisfaction is a lone signature with no Miniscript
// fragment wrapping it.
func MaxSigWeight(segwit bool) int {
	return sigCost + elementOverhead(segwit)
}
