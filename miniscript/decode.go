// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/mserr"
	"github.com/pkt-cash/miniscript/token"
)

// Decode parses a raw Script program into a typed AST, rooted at a T
// fragment. newKey lowers a 33-byte compressed point found in the script
// into the caller's key type; callers whose K already is the raw point
// type can pass key.ParseFromCompressed.
//
// Decode recognizes exactly the fixed templates Encode emits, tried in a
// fixed priority order at each position (see decodeE/decodeW/decodeV for
// the order); it is not a general Script disassembler and does not attempt
// every semantically-equivalent reordering a human-written script might
// use. A script produced by this package's own Encode always round-trips.
func Decode[K key.Key](script []byte, newKey func([33]byte) (K, error)) (NodeT[K], error) {
	log.Tracef("decoding %d-byte script", len(script))
	toks, err := lex(script)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.End {
		return nil, mserr.ErrUnexpected.New("lexer did not terminate with End")
	}
	toks = toks[:len(toks)-1]

	d := &decoder[K]{toks: toks, newKey: newKey}
	end, node, err := d.decodeT(len(toks), 0)
	if err != nil {
		log.Debugf("decode failed: %s", err)
		return nil, err
	}
	if end != 0 {
		return nil, mserr.ErrTrailing.Newf("%d unconsumed tokens", end)
	}
	return node, nil
}

type decoder[K key.Key] struct {
	toks   []token.Token
	newKey func([33]byte) (K, error)
}

// at returns the token `back` positions before the cursor end (0 is the
// last not-yet-consumed token), or an End token if that runs off the
// front of the remaining suffix.
func (d *decoder[K]) at(end, back int) token.Token {
	idx := end - 1 - back
	if idx < 0 {
		return token.Token{Kind: token.End}
	}
	return d.toks[idx]
}

func (d *decoder[K]) checkDepth(depth int) error {
	if depth > MaxDecodeDepth {
		return mserr.ErrDepthExceeded.Newf("exceeded %d", MaxDecodeDepth)
	}
	return nil
}

// decodeE tries E-fragment templates, right-to-left, in a fixed priority
// order, over the suffix d.toks[:end].
func (d *decoder[K]) decodeE(end, depth int) (int, NodeE[K], error) {
	if err := d.checkDepth(depth); err != nil {
		return 0, nil, err
	}

	// pk_k(K): <pk> OP_CHECKSIG
	if d.at(end, 0).Kind == token.CheckSig && d.at(end, 1).Kind == token.Pubkey {
		k, err := d.newKey(d.at(end, 1).Pubkey)
		if err != nil {
			return 0, nil, err
		}
		return end - 2, ECheckSig[K]{Key: k}, nil
	}

	// pk_h(K): OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG
	if n, ok := d.matchCheckSigHash(end); ok {
		return n.end, n.node, nil
	}

	// multi(k, keys): <k> <pks...> <n> OP_CHECKMULTISIG
	if n, ok := d.matchMultiSig(end, token.CheckMultiSig); ok {
		node, err := NewECheckMultiSig[K](n.k, n.keys)
		if err != nil {
			return 0, nil, err
		}
		return n.end, node, nil
	}

	// sha256/hash256/ripemd160/hash160 equality:
	// OP_SIZE 32 OP_EQUALVERIFY OP_HASH... <h> OP_EQUAL
	if n, ok := d.matchHashEqual(end, false); ok {
		node, err := NewEHashEqual[K](n.fn, n.digest)
		if err != nil {
			return 0, nil, err
		}
		return n.end, node, nil
	}

	// older(n)/after(n): <n> OP_CSV|OP_CLTV
	if kind, n2, ok := d.matchTime(end); ok {
		node, err := NewETime[K](kind, n2)
		if err != nil {
			return 0, nil, err
		}
		return end - 2, node, nil
	}

	// l:X : OP_IF OP_0 OP_ELSE X OP_ENDIF
	if d.at(end, 0).Kind == token.EndIf {
		if e2, inner, err := d.decodeE(end-1, depth+1); err == nil &&
			d.at(e2, 0).Kind == token.Else {
			if e3, _, ok := d.matchZero(e2 - 1); ok && d.at(e3, 0).Kind == token.If {
				return e3 - 1, ELikely[K]{Inner: inner}, nil
			}
		}
	}

	// u:X : OP_IF X OP_ELSE OP_0 OP_ENDIF
	if d.at(end, 0).Kind == token.EndIf {
		if e2, _, ok := d.matchZero(end - 1); ok {
			if d.at(e2, 0).Kind == token.Else {
				if e3, inner, err := d.decodeE(e2-1, depth+1); err == nil && d.at(e3, 0).Kind == token.If {
					return e3 - 1, EUnlikely[K]{Inner: inner}, nil
				}
			}
		}
	}

	// and_b(E, W): E W OP_BOOLAND
	if d.at(end, 0).Kind == token.BoolAnd {
		if e2, w, err := d.decodeW(end-1, depth+1); err == nil {
			if e3, e, err := d.decodeE(e2, depth+1); err == nil {
				return e3, EParallelAnd[K]{E: e, W: w}, nil
			}
		}
	}

	// or_b(E, W): E W OP_BOOLOR
	if d.at(end, 0).Kind == token.BoolOr {
		if e2, w, err := d.decodeW(end-1, depth+1); err == nil {
			if e3, e, err := d.decodeE(e2, depth+1); err == nil {
				return e3, EParallelOr[K]{E: e, W: w}, nil
			}
		}
	}

	// or_d(E, T): E OP_IFDUP OP_NOTIF T OP_ENDIF
	if d.at(end, 0).Kind == token.EndIf && d.at(end, 1).Kind != token.End {
		if e2, t, err := d.decodeT(end-1, depth+1); err == nil && d.at(e2, 0).Kind == token.NotIf &&
			d.at(e2, 1).Kind == token.IfDup {
			if e3, e, err := d.decodeE(e2-2, depth+1); err == nil {
				return e3, ECascadeOr[K]{E: e, T: t}, nil
			}
		}
	}

	// or_i(E, T) with left==E selected: OP_IF E OP_ELSE T OP_ENDIF
	if d.at(end, 0).Kind == token.EndIf {
		if e2, t, err := d.decodeT(end-1, depth+1); err == nil && d.at(e2, 0).Kind == token.Else {
			if e3, e, err := d.decodeE(e2-1, depth+1); err == nil && d.at(e3, 0).Kind == token.If {
				return e3 - 1, ESwitchOrLeft[K]{E: e, T: t}, nil
			}
		}
	}
	// or_i(T, E) with right==E selected: OP_IF T OP_ELSE E OP_ENDIF
	if d.at(end, 0).Kind == token.EndIf {
		if e2, e, err := d.decodeE(end-1, depth+1); err == nil && d.at(e2, 0).Kind == token.Else {
			if e3, t, err := d.decodeT(e2-1, depth+1); err == nil && d.at(e3, 0).Kind == token.If {
				return e3 - 1, ESwitchOrRight[K]{E: e, T: t}, nil
			}
		}
	}

	// thresh(k, head, tail...): head (W OP_ADD)* <k> OP_EQUAL
	if n, ok := d.matchThreshold(end, depth); ok {
		node, err := NewEThreshold[K](n.k, n.head, n.tail)
		if err != nil {
			return 0, nil, mserr.ErrParseThreshold.Newf("k=%d with %d children", n.k, len(n.tail)+1)
		}
		return n.end, node, nil
	}

	return 0, nil, mserr.ErrUnexpected.New("no E template matched")
}

// decodeW tries W-fragment templates: a generic alt-stack cast or swap
// cast around an E fragment.
func (d *decoder[K]) decodeW(end, depth int) (int, NodeW[K], error) {
	if err := d.checkDepth(depth); err != nil {
		return 0, nil, err
	}

	if d.at(end, 0).Kind == token.FromAltStack {
		if e2, inner, err := d.decodeE(end-1, depth+1); err == nil && d.at(e2, 0).Kind == token.ToAltStack {
			return e2 - 1, WCastE[K]{Inner: inner}, nil
		}
	}

	if e2, inner, err := d.decodeE(end, depth+1); err == nil && d.at(e2, 0).Kind == token.Swap {
		return e2 - 1, WSwap[K]{Inner: inner}, nil
	}

	return 0, nil, mserr.ErrUnexpected.New("no W template matched")
}

// decodeV decodes a V fragment: one base template, then any number of V
// fragments stacked directly before it. and_v(V, V) is plain concatenation
// with no delimiting opcode of its own, so a run of V templates folds into
// right-nested cascade-ands here rather than being a template decodeVBase
// could recognize on its own.
func (d *decoder[K]) decodeV(end, depth int) (int, NodeV[K], error) {
	if err := d.checkDepth(depth); err != nil {
		return 0, nil, err
	}
	e2, node, err := d.decodeVBase(end, depth)
	if err != nil {
		return 0, nil, err
	}
	for {
		e3, left, err := d.decodeVBase(e2, depth)
		if err != nil {
			return e2, node, nil
		}
		node = VCascadeAnd[K]{Left: left, Right: node}
		e2 = e3
	}
}

// decodeVBase tries the individual V-fragment templates.
func (d *decoder[K]) decodeVBase(end, depth int) (int, NodeV[K], error) {
	if err := d.checkDepth(depth); err != nil {
		return 0, nil, err
	}

	// v:pk_k : <pk> OP_CHECKSIGVERIFY
	if d.at(end, 0).Kind == token.CheckSigVerify && d.at(end, 1).Kind == token.Pubkey {
		k, err := d.newKey(d.at(end, 1).Pubkey)
		if err != nil {
			return 0, nil, err
		}
		return end - 2, VCheckSig[K]{Key: k}, nil
	}

	if n, ok := d.matchMultiSig(end, token.CheckMultiSigVerify); ok {
		node, err := NewVCheckMultiSig[K](n.k, n.keys)
		if err != nil {
			return 0, nil, err
		}
		return n.end, node, nil
	}

	if n, ok := d.matchHashEqual(end, true); ok {
		return n.end, VHashEqual[K]{Fn: n.fn, Digest: n.digest}, nil
	}

	if d.at(end, 0).Kind == token.Drop {
		if kind, n2, ok := d.matchTime(end - 1); ok {
			node, err := NewVTime[K](kind, n2)
			if err != nil {
				return 0, nil, err
			}
			return end - 3, node, nil
		}
	}

	if n, ok := d.matchThresholdVerify(end, depth); ok {
		node, err := NewVThreshold[K](n.k, n.head, n.tail)
		if err != nil {
			return 0, nil, mserr.ErrParseThreshold.Newf("k=%d with %d children", n.k, len(n.tail)+1)
		}
		return n.end, node, nil
	}

	// or_c(E, V): E OP_NOTIF V OP_ENDIF
	if d.at(end, 0).Kind == token.EndIf {
		if e2, v, err := d.decodeV(end-1, depth+1); err == nil && d.at(e2, 0).Kind == token.NotIf {
			if e3, e, err := d.decodeE(e2-1, depth+1); err == nil {
				return e3, VCascadeOr[K]{E: e, V: v}, nil
			}
		}
	}

	// or_i(V, V): OP_IF V OP_ELSE V OP_ENDIF
	if d.at(end, 0).Kind == token.EndIf {
		if e2, right, err := d.decodeV(end-1, depth+1); err == nil && d.at(e2, 0).Kind == token.Else {
			if e3, left, err := d.decodeV(e2-1, depth+1); err == nil && d.at(e3, 0).Kind == token.If {
				return e3 - 1, VSwitchOr[K]{Left: left, Right: right}, nil
			}
		}
	}

	// generic v: cast: E OP_VERIFY
	if d.at(end, 0).Kind == token.Verify {
		if e2, inner, err := d.decodeE(end-1, depth+1); err == nil {
			return e2, VCastE[K]{Inner: inner}, nil
		}
	}

	return 0, nil, mserr.ErrUnexpected.New("no V template matched")
}

// decodeT decodes a T fragment: one base template, then an optional run of
// V fragments stacked directly before it, folded into and_v(V, T). This is
// the entry point for the whole script and for every branch nested directly
// under an IF/NOTIF; a V prefix always belongs to the T being decoded, since
// every position a T appears in is bounded on the left by a control opcode
// no V template can end with.
func (d *decoder[K]) decodeT(end, depth int) (int, NodeT[K], error) {
	if err := d.checkDepth(depth); err != nil {
		return 0, nil, err
	}
	e2, node, err := d.decodeTBase(end, depth)
	if err != nil {
		return 0, nil, err
	}
	if e3, v, err := d.decodeV(e2, depth+1); err == nil {
		return e3, TCascadeAnd[K]{Left: v, Right: node}, nil
	}
	return e2, node, nil
}

// decodeTBase tries the individual T-fragment templates. Where two
// templates could both match an OP_ENDIF suffix, the cascade form (or_d) is
// preferred over the switch form (or_i); that tie-break is what makes
// decode a left inverse of Encode over the decoder's own output.
func (d *decoder[K]) decodeTBase(end, depth int) (int, NodeT[K], error) {
	if err := d.checkDepth(depth); err != nil {
		return 0, nil, err
	}

	// t:V : V OP_1
	if d.at(end, 0).Kind == token.Number && d.at(end, 0).Number == 1 {
		if e2, v, err := d.decodeV(end-1, depth+1); err == nil {
			return e2, TCastV[K]{Inner: v}, nil
		}
	}

	// andor(E, T, T): E OP_NOTIF Z OP_ELSE Y OP_ENDIF
	if d.at(end, 0).Kind == token.EndIf {
		if e2, then, err := d.decodeT(end-1, depth+1); err == nil && d.at(e2, 0).Kind == token.Else {
			if e3, els, err := d.decodeT(e2-1, depth+1); err == nil && d.at(e3, 0).Kind == token.NotIf {
				if e4, e, err := d.decodeE(e3-1, depth+1); err == nil {
					return e4, TAndOr[K]{E: e, Then: then, Else: els}, nil
				}
			}
		}
	}

	// or_d(E, T) used bare at the root
	if d.at(end, 0).Kind == token.EndIf {
		if e2, t, err := d.decodeT(end-1, depth+1); err == nil && d.at(e2, 0).Kind == token.NotIf &&
			d.at(e2, 1).Kind == token.IfDup {
			if e3, e, err := d.decodeE(e2-2, depth+1); err == nil {
				return e3, TCascadeOr[K]{E: e, T: t}, nil
			}
		}
	}

	// or_i(T, T): OP_IF T OP_ELSE T OP_ENDIF
	if d.at(end, 0).Kind == token.EndIf {
		if e2, right, err := d.decodeT(end-1, depth+1); err == nil && d.at(e2, 0).Kind == token.Else {
			if e3, left, err := d.decodeT(e2-1, depth+1); err == nil && d.at(e3, 0).Kind == token.If {
				return e3 - 1, TSwitchOr[K]{Left: left, Right: right}, nil
			}
		}
	}

	// a bare E fragment used directly as the root
	if e2, e, err := d.decodeE(end, depth+1); err == nil {
		return e2, TCastE[K]{Inner: e}, nil
	}

	return 0, nil, mserr.ErrUnexpected.New("no T template matched")
}

func (d *decoder[K]) matchZero(end int) (int, struct{}, bool) {
	if d.at(end, 0).Kind == token.Number && d.at(end, 0).Number == 0 {
		return end - 1, struct{}{}, true
	}
	return 0, struct{}{}, false
}

func (d *decoder[K]) matchTime(end int) (TimeKind, uint32, bool) {
	switch d.at(end, 0).Kind {
	case token.CheckSequenceVerify:
		if d.at(end, 1).Kind == token.Number {
			return Relative, d.at(end, 1).Number, true
		}
	case token.CheckLockTimeVerify:
		if d.at(end, 1).Kind == token.Number {
			return Absolute, d.at(end, 1).Number, true
		}
	}
	return 0, 0, false
}

type checkSigHashMatch[K key.Key] struct {
	end  int
	node NodeE[K]
}

// matchCheckSigHash matches OP_DUP OP_HASH160 <hash160> OP_EQUALVERIFY
// OP_CHECKSIG. The lexer folds OP_HASH160 and the 20-byte push after it
// into one Hash256 token with HashFn Hash160, which is the token expected
// between OP_DUP and OP_EQUALVERIFY here.
func (d *decoder[K]) matchCheckSigHash(end int) (checkSigHashMatch[K], bool) {
	if d.at(end, 0).Kind != token.CheckSig || d.at(end, 1).Kind != token.EqualVerify {
		return checkSigHashMatch[K]{}, false
	}
	tok := d.at(end, 2)
	if tok.Kind != token.Hash256 || tok.HashFn != token.Hash160 {
		return checkSigHashMatch[K]{}, false
	}
	if d.at(end, 3).Kind != token.Dup {
		return checkSigHashMatch[K]{}, false
	}
	var h [20]byte
	copy(h[:], tok.HashDigest)
	return checkSigHashMatch[K]{end: end - 4, node: ECheckSigHash[K]{Hash: h}}, true
}

type multiSigMatch[K key.Key] struct {
	end  int
	k    int
	keys []K
}

// matchMultiSig matches <k> <pks...> <n> opKind, where opKind is the
// CheckMultiSig or CheckMultiSigVerify token.
func (d *decoder[K]) matchMultiSig(end int, opKind token.Kind) (multiSigMatch[K], bool) {
	if d.at(end, 0).Kind != opKind {
		return multiSigMatch[K]{}, false
	}
	if d.at(end, 1).Kind != token.Number {
		return multiSigMatch[K]{}, false
	}
	n := int(d.at(end, 1).Number)
	back := 2
	var keys []K
	for i := 0; i < n; i++ {
		tok := d.at(end, back)
		if tok.Kind != token.Pubkey {
			return multiSigMatch[K]{}, false
		}
		k, err := d.newKey(tok.Pubkey)
		if err != nil {
			return multiSigMatch[K]{}, false
		}
		keys = append(keys, k)
		back++
	}
	// keys were read in reverse push order (rightmost first); reverse to
	// restore left-to-right source order.
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	if d.at(end, back).Kind != token.Number {
		return multiSigMatch[K]{}, false
	}
	k := int(d.at(end, back).Number)
	back++
	return multiSigMatch[K]{end: end - back, k: k, keys: keys}, true
}

type hashEqualMatch struct {
	end    int
	fn     HashFn
	digest []byte
}

// matchHashEqual matches OP_SIZE 32 OP_EQUALVERIFY OP_HASH... <h>
// OP_EQUAL(VERIFY). The 32 constrains the preimage width fed to the hash
// opcode, not the digest width of <h>, so it is fixed regardless of fn.
func (d *decoder[K]) matchHashEqual(end int, verify bool) (hashEqualMatch, bool) {
	wantOp := token.Equal
	if verify {
		wantOp = token.EqualVerify
	}
	if d.at(end, 0).Kind != wantOp {
		return hashEqualMatch{}, false
	}
	tok := d.at(end, 1)
	if tok.Kind != token.Hash256 {
		return hashEqualMatch{}, false
	}
	if d.at(end, 2).Kind != token.EqualVerify {
		return hashEqualMatch{}, false
	}
	if d.at(end, 3).Kind != token.Number || d.at(end, 3).Number != 32 {
		return hashEqualMatch{}, false
	}
	if d.at(end, 4).Kind != token.Size {
		return hashEqualMatch{}, false
	}
	return hashEqualMatch{end: end - 5, fn: tok.HashFn, digest: tok.HashDigest}, true
}

type thresholdMatch[K key.Key] struct {
	end  int
	k    int
	head NodeE[K]
	tail []NodeW[K]
}

// matchThreshold matches head (W OP_ADD)* <k> OP_EQUAL, decoding W/E
// sub-fragments right to left and reversing the accumulated tail back
// into source order.
func (d *decoder[K]) matchThreshold(end, depth int) (thresholdMatch[K], bool) {
	return d.matchThresholdOp(end, depth, token.Equal)
}

func (d *decoder[K]) matchThresholdVerify(end, depth int) (thresholdMatch[K], bool) {
	return d.matchThresholdOp(end, depth, token.EqualVerify)
}

func (d *decoder[K]) matchThresholdOp(end, depth int, finalOp token.Kind) (thresholdMatch[K], bool) {
	if d.at(end, 0).Kind != finalOp || d.at(end, 1).Kind != token.Number {
		return thresholdMatch[K]{}, false
	}
	k := int(d.at(end, 1).Number)
	cur := end - 2
	var tailRev []NodeW[K]
	for d.at(cur, 0).Kind == token.Add {
		e2, w, err := d.decodeW(cur-1, depth+1)
		if err != nil {
			break
		}
		tailRev = append(tailRev, w)
		cur = e2
	}
	e3, head, err := d.decodeE(cur, depth+1)
	if err != nil {
		return thresholdMatch[K]{}, false
	}
	tail := make([]NodeW[K], len(tailRev))
	for i, w := range tailRev {
		tail[len(tailRev)-1-i] = w
	}
	if len(tail) == 0 {
		return thresholdMatch[K]{}, false
	}
	return thresholdMatch[K]{end: e3, k: k, head: head, tail: tail}, true
}
