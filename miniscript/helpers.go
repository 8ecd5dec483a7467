// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"github.com/btcsuite/btcd/txscript"

	"github.com/pkt-cash/miniscript/key"
)

// scriptSizeOf measures a node's encoded size by actually building it
// through the real ScriptBuilder. This touches no oracle and has no side
// effects, so it remains a pure function of the node; it simply delegates
// the push-minimality arithmetic to the same ScriptBuilder the encoder
// itself uses, instead of duplicating it.
func scriptSizeOf[K key.Key](n Node[K]) int {
	b := txscript.NewScriptBuilder()
	n.encodeInto(b)
	s, err := b.Script()
	if err != nil {
		panic("miniscript: internal encode error: " + err.Error())
	}
	return len(s)
}

// satisfySig looks up a signature for k and, if found, returns the single
// witness element Script expects for a CHECKSIG-family fragment.
func satisfySig[K key.Key](sat Satisfier[K], k K) ([][]byte, bool) {
	sig, ok := sat.LookupSig(k)
	if !ok {
		return nil, false
	}
	return [][]byte{sig.Bytes()}, true
}

// dissatisfySig is the graceful "no signature" witness for a CHECKSIG
// fragment: an empty push, which OP_CHECKSIG reports as a false result
// without aborting the script.
func dissatisfySig() ([][]byte, bool) {
	return [][]byte{{}}, true
}

// satisfyMultiSig picks, in ascending key order, the first k keys the
// satisfier can produce a signature for.
func satisfyMultiSig[K key.Key](sat Satisfier[K], k int, keys []K) ([][]byte, bool) {
	stack := make([][]byte, 0, k+1)
	stack = append(stack, []byte{}) // the CHECKMULTISIG off-by-one dummy
	for _, pk := range keys {
		if len(stack) > k {
			break
		}
		if sig, ok := sat.LookupSig(pk); ok {
			stack = append(stack, sig.Bytes())
		}
	}
	if len(stack) != k+1 {
		return nil, false
	}
	return stack, true
}

// dissatisfyMultiSig supplies k+1 empty elements (the dummy plus one empty
// placeholder per required signature), which CHECKMULTISIG reports as a
// false result without aborting.
func dissatisfyMultiSig(k int) ([][]byte, bool) {
	stack := make([][]byte, k+1)
	for i := range stack {
		stack[i] = []byte{}
	}
	return stack, true
}

// satisfyHash looks up a preimage for the given hash under fn.
func satisfyHash[K key.Key](sat Satisfier[K], fn HashFn, hash []byte) ([][]byte, bool) {
	preimage, ok := sat.LookupPreimage(fn, hash)
	if !ok {
		return nil, false
	}
	return [][]byte{preimage}, true
}

// dissatisfyHash supplies a preimage of the expected width that almost
// certainly will not hash to the target value, so the trailing OP_EQUAL
// (not OP_EQUALVERIFY) reports false without aborting.
func dissatisfyHash(width int) ([][]byte, bool) {
	return [][]byte{make([]byte, width)}, true
}

// smaller returns whichever of a, b serializes to fewer total bytes (sum of
// element lengths), breaking ties toward a (the left branch), per the
// satisfaction-minimality property.
func smaller(a, b [][]byte) [][]byte {
	if stackSize(b) < stackSize(a) {
		return b
	}
	return a
}

func stackSize(stack [][]byte) int {
	n := 0
	for _, e := range stack {
		n += len(e)
	}
	return n
}

func concat(parts ...[][]byte) [][]byte {
	var out [][]byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
