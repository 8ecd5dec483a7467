// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package descriptor

import (
	"github.com/btcsuite/btcd/txscript"

	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/miniscript"
	"github.com/pkt-cash/miniscript/mserr"
)

// TxIn is the pair of fields a transaction input needs to spend an output
// paid to this descriptor: a legacy scriptSig (empty for every segwit
// envelope) and a witness stack (empty for every legacy envelope).
// sh(wsh(...)) and sh(wpkh(...)) populate both: a one-element scriptSig
// holding the P2SH redeemScript push, and the real witness stack.
type TxIn struct {
	ScriptSig []byte
	Witness   [][]byte
}

// Satisfy builds the TxIn that spends an output paid to d, consulting s for
// the signatures, preimages, and timelock facts the fragment needs.
func (d Descriptor[K]) Satisfy(s miniscript.Satisfier[K]) (TxIn, error) {
	switch d.Kind {
	case Pk:
		return satisfySingleSig(d.Key, s, false, nil)
	case Pkh:
		return satisfyPkh(d.Key, s, false, nil)
	case Wpkh:
		return satisfyPkh(d.Key, s, true, nil)
	case ShWpkh:
		redeem, err := payToWitnessPubKeyHash(d.Key)
		if err != nil {
			return TxIn{}, err
		}
		return satisfyPkh(d.Key, s, true, redeem)
	case Bare:
		// No trailing script push: the scriptPubKey already is the program,
		// unlike sh() where the spender must reveal the redeemScript.
		stack, err := miniscript.Satisfy[K](d.Inner, s)
		if err != nil {
			return TxIn{}, err
		}
		return TxIn{ScriptSig: legacyScriptSig(stack, nil)}, nil
	case Sh:
		stack, err := miniscript.Satisfy[K](d.Inner, s)
		if err != nil {
			return TxIn{}, err
		}
		redeem, err := miniscript.Encode(d.Inner)
		if err != nil {
			return TxIn{}, err
		}
		return TxIn{ScriptSig: legacyScriptSig(stack, redeem)}, nil
	case Wsh:
		stack, err := miniscript.Satisfy[K](d.Inner, s)
		if err != nil {
			return TxIn{}, err
		}
		witness, err := miniscript.Encode(d.Inner)
		if err != nil {
			return TxIn{}, err
		}
		return TxIn{Witness: append(append([][]byte{}, stack...), witness)}, nil
	case ShWsh:
		stack, err := miniscript.Satisfy[K](d.Inner, s)
		if err != nil {
			return TxIn{}, err
		}
		witness, err := miniscript.Encode(d.Inner)
		if err != nil {
			return TxIn{}, err
		}
		redeem, err := payToWitnessScriptHashOf(witness)
		if err != nil {
			return TxIn{}, err
		}
		return TxIn{
			ScriptSig: legacyScriptSig(nil, redeem),
			Witness:   append(append([][]byte{}, stack...), witness),
		}, nil
	default:
		return TxIn{}, mserrUnknownKind(d.Kind)
	}
}

// satisfySingleSig produces the scriptSig/witness for a bare pk() envelope:
// a lone signature, no redeemScript trailer.
func satisfySingleSig[K key.Key](k K, s miniscript.Satisfier[K], segwit bool, redeem []byte) (TxIn, error) {
	sig, ok := s.LookupSig(k)
	if !ok {
		return TxIn{}, mserr.ErrMissingSig.New("")
	}
	elem := sig.Bytes()
	if segwit {
		w := [][]byte{elem}
		if redeem != nil {
			return TxIn{ScriptSig: legacyScriptSig(nil, redeem), Witness: w}, nil
		}
		return TxIn{Witness: w}, nil
	}
	return TxIn{ScriptSig: legacyScriptSig([][]byte{elem}, nil)}, nil
}

// satisfyPkh produces the scriptSig/witness for a pkh()/wpkh() envelope: a
// signature followed by the public key, optionally trailed by a
// redeemScript push for the sh(wpkh(...)) case.
func satisfyPkh[K key.Key](k K, s miniscript.Satisfier[K], segwit bool, redeem []byte) (TxIn, error) {
	sig, ok := s.LookupSig(k)
	if !ok {
		return TxIn{}, mserr.ErrMissingSig.New("")
	}
	pub, err := k.ToPublicKey()
	if err != nil {
		return TxIn{}, err
	}
	elems := [][]byte{sig.Bytes(), pub[:]}
	if segwit {
		out := TxIn{Witness: elems}
		if redeem != nil {
			out.ScriptSig = legacyScriptSig(nil, redeem)
		}
		return out, nil
	}
	return TxIn{ScriptSig: legacyScriptSig(elems, nil)}, nil
}

// legacyScriptSig assembles a scriptSig from a witness-style stack (pushed
// data elements, bottom to top) plus an optional trailing redeemScript
// push, using the real ScriptBuilder so every push stays minimal. Each
// stack element that parses as a minimal Script integer (the CHECKMULTISIG
// dummy, an if/else selector byte, a small threshold weight) is pushed
// through AddInt64 so it gets the dedicated OP_0/OP_1..OP_16 opcode rather
// than a literal data push; everything else (signatures, preimages,
// pubkeys) is pushed as raw data. The redeemScript trailer is always a raw
// data push: it is a script blob, never a number.
func legacyScriptSig(stack [][]byte, redeem []byte) []byte {
	b := txscript.NewScriptBuilder()
	for _, elem := range stack {
		if n, ok := minimalScriptNumber(elem); ok {
			b.AddInt64(n)
		} else {
			b.AddData(elem)
		}
	}
	if redeem != nil {
		b.AddData(redeem)
	}
	script, err := b.Script()
	if err != nil {
		// ScriptBuilder only errors on pushes too large for Script to
		// ever contain; Satisfy never produces one.
		panic(err)
	}
	return script
}

// minimalScriptNumber reports whether data is the canonical minimal-encoded
// Script number it would need to be to have been pushed by OP_0, OP_1NEGATE,
// OP_1..OP_16, or a minimal multi-byte push, and if so its value. Anything
// longer than 4 bytes, or carrying a redundant high zero byte, is not a
// number this library's templates ever produce as such and is left for a
// raw data push instead (a signature or hash preimage never collides with
// this, since both always exceed 4 bytes).
func minimalScriptNumber(data []byte) (int64, bool) {
	if len(data) == 0 {
		return 0, true
	}
	if len(data) > 4 {
		return 0, false
	}
	last := data[len(data)-1]
	if last&0x7f == 0 && (len(data) == 1 || data[len(data)-2]&0x80 == 0) {
		return 0, false
	}
	var v int64
	for i, b := range data[:len(data)-1] {
		v |= int64(b) << uint(8*i)
	}
	if last&0x80 != 0 {
		v |= int64(last&0x7f) << uint(8*(len(data)-1))
		return -v, true
	}
	v |= int64(last) << uint(8*(len(data)-1))
	return v, true
}
