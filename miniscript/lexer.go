// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"

	"github.com/pkt-cash/miniscript/mserr"
	"github.com/pkt-cash/miniscript/token"
)

// lex turns a raw Script program into the semantic token stream the
// decoder consumes. It accepts only the opcode subset this library's
// templates can produce; anything else is a lex error, not a silent
// pass-through, since a byte sequence this library cannot round-trip can
// never have come from Encode.
func lex(script []byte) ([]token.Token, error) {
	var out []token.Token
	i := 0
	for i < len(script) {
		op := script[i]

		if fn, ok := hashOpcodeFn(op); ok {
			tok, n, err := lexHash(script, i+1, fn)
			if err != nil {
				return nil, err
			}
			out = append(out, tok)
			i += 1 + n
			continue
		}

		switch {
		case op == txscript.OP_0:
			out = append(out, token.Token{Kind: token.Number, Number: 0})
			i++

		case op >= txscript.OP_1 && op <= txscript.OP_16:
			out = append(out, token.Token{Kind: token.Number, Number: uint32(op-txscript.OP_1) + 1})
			i++

		case op >= 1 && op <= 75:
			n := int(op)
			if i+1+n > len(script) {
				return nil, mserr.ErrEarlyEnd.Newf("push of %d bytes at offset %d truncated", n, i)
			}
			tok, err := classifyPush(script[i+1 : i+1+n])
			if err != nil {
				return nil, err
			}
			out = append(out, tok)
			i += 1 + n

		case op == txscript.OP_PUSHDATA1:
			if i+2 > len(script) {
				return nil, mserr.ErrEarlyEnd.New("truncated PUSHDATA1 length")
			}
			n := int(script[i+1])
			if n <= 75 {
				return nil, mserr.ErrNonMinimalPush.Newf("PUSHDATA1 used for %d-byte push", n)
			}
			if i+2+n > len(script) {
				return nil, mserr.ErrEarlyEnd.Newf("PUSHDATA1 of %d bytes truncated", n)
			}
			tok, err := classifyPush(script[i+2 : i+2+n])
			if err != nil {
				return nil, err
			}
			out = append(out, tok)
			i += 2 + n

		case op == txscript.OP_PUSHDATA2:
			if i+3 > len(script) {
				return nil, mserr.ErrEarlyEnd.New("truncated PUSHDATA2 length")
			}
			n := int(script[i+1]) | int(script[i+2])<<8
			if n <= 0xff {
				return nil, mserr.ErrNonMinimalPush.Newf("PUSHDATA2 used for %d-byte push", n)
			}
			return nil, mserr.ErrInvalidPush.Newf("%d-byte push has no place in any accepted template", n)

		case op == txscript.OP_PUSHDATA4:
			if i+5 > len(script) {
				return nil, mserr.ErrEarlyEnd.New("truncated PUSHDATA4 length")
			}
			n := int(script[i+1]) | int(script[i+2])<<8 | int(script[i+3])<<16 | int(script[i+4])<<24
			if n <= 0xffff {
				return nil, mserr.ErrNonMinimalPush.Newf("PUSHDATA4 used for %d-byte push", n)
			}
			return nil, mserr.ErrInvalidPush.Newf("%d-byte push has no place in any accepted template", n)

		default:
			kind, ok := opcodeKinds[op]
			if !ok {
				return nil, mserr.ErrUnknownOpcode.Newf("opcode 0x%02x", op)
			}
			out = append(out, token.Token{Kind: kind})
			i++
		}
	}
	out = append(out, token.Token{Kind: token.End})
	return out, nil
}

// lexHash consumes the single minimal push immediately following a hash
// opcode at script[from:], which must be exactly fn's digest width.
// Returns the collapsed Hash256 token and the number of bytes consumed
// starting at from (i.e. not counting the opcode byte itself).
func lexHash(script []byte, from int, fn token.HashFn) (token.Token, int, error) {
	width := fn.Width()
	if from >= len(script) {
		return token.Token{}, 0, mserr.ErrEarlyEnd.Newf("%s not followed by a digest push", fn)
	}
	op := script[from]
	if int(op) != width {
		return token.Token{}, 0, mserr.ErrInvalidPush.Newf("%s expects a %d-byte push, opcode was 0x%02x", fn, width, op)
	}
	if from+1+width > len(script) {
		return token.Token{}, 0, mserr.ErrEarlyEnd.Newf("%s digest push truncated", fn)
	}
	digest := make([]byte, width)
	copy(digest, script[from+1:from+1+width])
	return token.Token{Kind: token.Hash256, HashFn: fn, HashDigest: digest}, 1 + width, nil
}

func hashOpcodeFn(op byte) (token.HashFn, bool) {
	switch op {
	case txscript.OP_SHA256:
		return token.Sha256, true
	case txscript.OP_HASH256:
		return token.DoubleSha256, true
	case txscript.OP_RIPEMD160:
		return token.Ripemd160, true
	case txscript.OP_HASH160:
		return token.Hash160, true
	default:
		return 0, false
	}
}

// classifyPush turns a raw push payload (one not immediately following a
// hash opcode) into the right semantic token: a compressed pubkey, a bare
// 20/32-byte hash, or (every other width) a minimal Script number — the
// k/n arguments of CheckMultiSig, Threshold, and Time, and the literal 32
// that HashEqual's OP_SIZE check always pushes, are minimally encoded in at
// most 4 bytes, so they never collide with the 20/32/33-byte widths.
func classifyPush(data []byte) (token.Token, error) {
	switch len(data) {
	case 33:
		if _, err := btcec.ParsePubKey(data); err != nil {
			return token.Token{}, mserr.ErrInvalidPush.Newf("invalid compressed pubkey: %s", err)
		}
		var pk [33]byte
		copy(pk[:], data)
		return token.Token{Kind: token.Pubkey, Pubkey: pk}, nil
	case 20:
		var h [20]byte
		copy(h[:], data)
		return token.Token{Kind: token.Hash20, Hash20: h}, nil
	case 32:
		var h [32]byte
		copy(h[:], data)
		return token.Token{Kind: token.Hash32, Hash32: h}, nil
	default:
		n, err := decodeMinimalNumber(data)
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Kind: token.Number, Number: n}, nil
	}
}

// decodeMinimalNumber parses data as a canonical, minimally-encoded
// non-negative Script number (little-endian magnitude, sign in the
// high bit of the last byte), rejecting every encoding CheckMinimalPush
// would: this library never accepts a push that could have been shorter,
// or that encodes a value OP_0/OP_1..OP_16 already has a dedicated opcode
// for. Negative numbers never appear in this library's templates, so any
// push with its sign bit set is rejected outright.
func decodeMinimalNumber(data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, mserr.ErrInvalidPush.New("empty number push")
	}
	if len(data) > 4 {
		return 0, mserr.ErrNumberOverflow.Newf("%d-byte push exceeds 32-bit number range", len(data))
	}
	last := data[len(data)-1]
	if last&0x7f == 0 {
		if len(data) == 1 || data[len(data)-2]&0x80 == 0 {
			return 0, mserr.ErrNonMinimalNumber.Newf("redundant high byte 0x%02x", last)
		}
	}
	if last&0x80 != 0 {
		return 0, mserr.ErrInvalidPush.New("negative numbers are not used by this library's templates")
	}
	if len(data) == 1 && data[0] >= 1 && data[0] <= 16 {
		return 0, mserr.ErrNonMinimalNumber.Newf("value %d should use OP_1..OP_16", data[0])
	}
	var v uint64
	for i, b := range data {
		v |= uint64(b) << uint(8*i)
	}
	if v > 1<<31 {
		return 0, mserr.ErrNumberOverflow.Newf("value %d exceeds this library's 2^31 bound", v)
	}
	return uint32(v), nil
}

var opcodeKinds = map[byte]token.Kind{
	txscript.OP_BOOLAND:             token.BoolAnd,
	txscript.OP_BOOLOR:              token.BoolOr,
	txscript.OP_ADD:                 token.Add,
	txscript.OP_EQUAL:               token.Equal,
	txscript.OP_EQUALVERIFY:         token.EqualVerify,
	txscript.OP_CHECKSIG:            token.CheckSig,
	txscript.OP_CHECKSIGVERIFY:      token.CheckSigVerify,
	txscript.OP_CHECKMULTISIG:       token.CheckMultiSig,
	txscript.OP_CHECKMULTISIGVERIFY: token.CheckMultiSigVerify,
	txscript.OP_CHECKSEQUENCEVERIFY: token.CheckSequenceVerify,
	txscript.OP_CHECKLOCKTIMEVERIFY: token.CheckLockTimeVerify,
	txscript.OP_FROMALTSTACK:        token.FromAltStack,
	txscript.OP_TOALTSTACK:          token.ToAltStack,
	txscript.OP_DROP:                token.Drop,
	txscript.OP_DUP:                 token.Dup,
	txscript.OP_IF:                  token.If,
	txscript.OP_IFDUP:               token.IfDup,
	txscript.OP_NOTIF:               token.NotIf,
	txscript.OP_ELSE:                token.Else,
	txscript.OP_ENDIF:                token.EndIf,
	txscript.OP_0NOTEQUAL:           token.ZeroNotEqual,
	txscript.OP_SIZE:                token.Size,
	txscript.OP_SWAP:                token.Swap,
	txscript.OP_TUCK:                token.Tuck,
	txscript.OP_VERIFY:              token.Verify,
}
