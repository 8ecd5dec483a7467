// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package token defines the semantic token stream the Script lexer
// produces: a level above raw opcodes, with common idioms already
// collapsed (OP_HASH256 + a 32-byte push becomes a single Hash256 token) so
// the AST decoder pattern-matches fragments instead of bytes.
package token

import "fmt"

// Kind identifies a token's shape.
type Kind int

const (
	BoolAnd Kind = iota
	BoolOr
	Add
	Equal
	EqualVerify
	CheckSig
	CheckSigVerify
	CheckMultiSig
	CheckMultiSigVerify
	CheckSequenceVerify
	CheckLockTimeVerify
	FromAltStack
	ToAltStack
	Drop
	Dup
	If
	IfDup
	NotIf
	Else
	EndIf
	ZeroNotEqual
	Size
	Swap
	Tuck
	Verify

	// Hash256 is OP_<fn> followed by a fixed-width hash literal, for the
	// four HashEqual hash kinds. Width depends on HashFn (see HashFn.Width).
	Hash256
	// Number is the canonical minimal encoding of a small, non-negative
	// Script integer (OP_0/OP_1..OP_16 or a minimal data push).
	Number
	// Pubkey is a 33-byte data push parsed as a compressed key.
	Pubkey
	// Hash20 is a bare 20-byte data push (one not directly after a hash
	// opcode, so outside of a Hash256 token).
	Hash20
	// Hash32 is a bare 32-byte data push.
	Hash32

	// End marks the end of the token stream.
	End
)

var names = map[Kind]string{
	BoolAnd: "OP_BOOLAND", BoolOr: "OP_BOOLOR", Add: "OP_ADD",
	Equal: "OP_EQUAL", EqualVerify: "OP_EQUALVERIFY",
	CheckSig: "OP_CHECKSIG", CheckSigVerify: "OP_CHECKSIGVERIFY",
	CheckMultiSig: "OP_CHECKMULTISIG", CheckMultiSigVerify: "OP_CHECKMULTISIGVERIFY",
	CheckSequenceVerify: "OP_CHECKSEQUENCEVERIFY", CheckLockTimeVerify: "OP_CHECKLOCKTIMEVERIFY",
	FromAltStack: "OP_FROMALTSTACK", ToAltStack: "OP_TOALTSTACK",
	Drop: "OP_DROP", Dup: "OP_DUP", If: "OP_IF", IfDup: "OP_IFDUP",
	NotIf: "OP_NOTIF", Else: "OP_ELSE", EndIf: "OP_ENDIF",
	ZeroNotEqual: "OP_0NOTEQUAL", Size: "OP_SIZE", Swap: "OP_SWAP",
	Tuck: "OP_TUCK", Verify: "OP_VERIFY",
	Hash256: "<hash>", Number: "<number>", Pubkey: "<pubkey>",
	Hash20: "<hash20>", Hash32: "<hash32>", End: "<end>",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// HashFn identifies which hash function a Hash256 token's preceding opcode
// was, since the single AST HashEqual node is parameterized over it.
type HashFn int

const (
	Sha256 HashFn = iota
	DoubleSha256
	Ripemd160
	Hash160
)

func (f HashFn) String() string {
	switch f {
	case Sha256:
		return "OP_SHA256"
	case DoubleSha256:
		return "OP_HASH256"
	case Ripemd160:
		return "OP_RIPEMD160"
	case Hash160:
		return "OP_HASH160"
	default:
		return "unknown-hashfn"
	}
}

// Width is the digest width in bytes this hash function produces.
func (f HashFn) Width() int {
	switch f {
	case Sha256, DoubleSha256:
		return 32
	case Ripemd160, Hash160:
		return 20
	default:
		return 0
	}
}

// Token is one element of the lexer's output stream.
type Token struct {
	Kind Kind

	// Number carries Kind == Number's value.
	Number uint32

	// Pubkey carries Kind == Pubkey's raw compressed point.
	Pubkey [33]byte

	// Hash20/Hash32 carry the respective bare-hash token payloads.
	Hash20 [20]byte
	Hash32 [32]byte

	// HashFn and HashDigest carry Kind == Hash256's payload: which
	// function preceded the push, and the digest itself (20 or 32 bytes,
	// per HashFn.Width()).
	HashFn     HashFn
	HashDigest []byte
}

func (t Token) String() string {
	switch t.Kind {
	case Number:
		return fmt.Sprintf("Number(%d)", t.Number)
	case Pubkey:
		return "Pubkey(...)"
	case Hash256:
		return fmt.Sprintf("%s(...)", t.HashFn)
	case Hash20:
		return "Hash20(...)"
	case Hash32:
		return "Hash32(...)"
	default:
		return t.Kind.String()
	}
}
