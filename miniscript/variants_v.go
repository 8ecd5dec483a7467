// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"

	"github.com/pkt-cash/miniscript/key"
)

// VCastE is the 'v' wrapper: Inner OP_VERIFY, converting any E fragment
// into a V fragment that consumes its boolean result and aborts on
// failure instead of leaving it on the stack.
type VCastE[K key.Key] struct {
	markV
	Inner NodeE[K]
}

// NewVCastE builds the V::Cast(E) node ('v:' wrapper).
func NewVCastE[K key.Key](inner NodeE[K]) NodeV[K] { return VCastE[K]{Inner: inner} }

func (n VCastE[K]) encodeInto(b builder) {
	n.Inner.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_VERIFY)
}
func (n VCastE[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n VCastE[K]) MaxWitnessElements() int             { return n.Inner.MaxWitnessElements() }
func (n VCastE[K]) MaxSatisfactionSize(segwit bool) int { return n.Inner.MaxSatisfactionSize(segwit) }
func (n VCastE[K]) String() string                      { return "v(" + n.Inner.String() + ")" }
func (n VCastE[K]) satisfy(s Satisfier[K]) ([][]byte, bool) { return n.Inner.satisfy(s) }

// dissatisfy is unreachable through a well-formed script (V leaves nothing
// to dissatisfy against), but the interface requires an implementation;
// V never participates on the losing side of a disjunction on its own.
func (n VCastE[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// VCheckSig is the direct-verify form of pk_k(K): <pk> OP_CHECKSIGVERIFY.
type VCheckSig[K key.Key] struct {
	markV
	Key K
}

func NewVCheckSig[K key.Key](k K) NodeV[K] { return VCheckSig[K]{Key: k} }

func (n VCheckSig[K]) encodeInto(b builder) {
	pk, err := n.Key.ToPublicKey()
	if err != nil {
		panic("miniscript: key lowering failed at encode time: " + err.Error())
	}
	b.AddData(pk[:]).AddOp(txscript.OP_CHECKSIGVERIFY)
}
func (n VCheckSig[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n VCheckSig[K]) MaxWitnessElements() int             { return 1 }
func (n VCheckSig[K]) MaxSatisfactionSize(segwit bool) int { return sigCost + elementOverhead(segwit) }
func (n VCheckSig[K]) String() string                      { return fmt.Sprintf("v(pk_k(%s))", n.Key.String()) }
func (n VCheckSig[K]) satisfy(s Satisfier[K]) ([][]byte, bool)    { return satisfySig(s, n.Key) }
func (n VCheckSig[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// VCheckMultiSig is the direct-verify form of multi(k, keys):
// <k> <pks...> <n> OP_CHECKMULTISIGVERIFY.
type VCheckMultiSig[K key.Key] struct {
	markV
	K    int
	Keys []K
}

func NewVCheckMultiSig[K key.Key](k int, keys []K) (NodeV[K], error) {
	if err := checkMultiSigBounds(k, len(keys)); err != nil {
		return nil, err
	}
	return VCheckMultiSig[K]{K: k, Keys: keys}, nil
}

func (n VCheckMultiSig[K]) encodeInto(b builder) { encodeMultiSig(b, n.K, n.Keys, true) }
func (n VCheckMultiSig[K]) ScriptSize() int      { return scriptSizeOf[K](n) }
func (n VCheckMultiSig[K]) MaxWitnessElements() int { return n.K + 1 }
func (n VCheckMultiSig[K]) MaxSatisfactionSize(segwit bool) int {
	ov := elementOverhead(segwit)
	return (n.K+1)*ov + n.K*sigCost
}
func (n VCheckMultiSig[K]) String() string { return "v(" + multiString("multi", n.K, n.Keys) + ")" }
func (n VCheckMultiSig[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfyMultiSig(s, n.K, n.Keys)
}
func (n VCheckMultiSig[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// VHashEqual is the direct-verify form of a hash-equality check:
// OP_SIZE 32 OP_EQUALVERIFY OP_HASH... <h> OP_EQUALVERIFY.
type VHashEqual[K key.Key] struct {
	markV
	Fn     HashFn
	Digest []byte
}

func NewVHashEqual[K key.Key](fn HashFn, digest []byte) NodeV[K] {
	return VHashEqual[K]{Fn: fn, Digest: digest}
}

func (n VHashEqual[K]) encodeInto(b builder) { encodeHashEqual(b, n.Fn, n.Digest, true) }
func (n VHashEqual[K]) ScriptSize() int      { return scriptSizeOf[K](n) }
func (n VHashEqual[K]) MaxWitnessElements() int             { return 1 }
func (n VHashEqual[K]) MaxSatisfactionSize(segwit bool) int { return hashPreimageWidth + elementOverhead(segwit) }
func (n VHashEqual[K]) String() string                      { return "v(" + hashEqualName(n.Fn, n.Digest) + ")" }
func (n VHashEqual[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfyHash(s, n.Fn, n.Digest)
}
func (n VHashEqual[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// VTime mirrors ETime under the 'v' wrapper: <n> OP_CSV/OP_CLTV OP_DROP.
// CSV/CLTV leave their argument on the stack on success (they only abort
// on failure), so a trailing DROP is needed to leave nothing behind.
type VTime[K key.Key] struct {
	markV
	Kind TimeKind
	N    uint32
}

func NewVTime[K key.Key](kind TimeKind, n uint32) (NodeV[K], error) {
	if err := checkTimeBounds(n); err != nil {
		return nil, err
	}
	return VTime[K]{Kind: kind, N: n}, nil
}

func (n VTime[K]) encodeInto(b builder) {
	b.AddInt64(int64(n.N)).AddOp(n.Kind.opcode()).AddOp(txscript.OP_DROP)
}
func (n VTime[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n VTime[K]) MaxWitnessElements() int             { return 0 }
func (n VTime[K]) MaxSatisfactionSize(segwit bool) int { return 0 }
func (n VTime[K]) String() string                      { return fmt.Sprintf("v(%s(%d))", n.Kind, n.N) }
func (n VTime[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	if timeOk(s, n.Kind, n.N) {
		return nil, true
	}
	return nil, false
}
func (n VTime[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// VThreshold is the direct-verify form of thresh(k, head, tail...):
// head <w1> OP_ADD <w2> OP_ADD ... <k> OP_EQUALVERIFY.
type VThreshold[K key.Key] struct {
	markV
	K    int
	Head NodeE[K]
	Tail []NodeW[K]
}

func NewVThreshold[K key.Key](k int, head NodeE[K], tail []NodeW[K]) (NodeV[K], error) {
	if err := checkThresholdBounds(k, len(tail)+1); err != nil {
		return nil, err
	}
	return VThreshold[K]{K: k, Head: head, Tail: tail}, nil
}

func (n VThreshold[K]) encodeInto(b builder) { encodeThreshold(b, n.K, n.Head, n.Tail, true) }
func (n VThreshold[K]) ScriptSize() int      { return scriptSizeOf[K](n) }
func (n VThreshold[K]) MaxWitnessElements() int {
	total := n.Head.MaxWitnessElements()
	for _, w := range n.Tail {
		total += w.MaxWitnessElements()
	}
	return total
}
func (n VThreshold[K]) MaxSatisfactionSize(segwit bool) int {
	total := n.Head.MaxSatisfactionSize(segwit)
	for _, w := range n.Tail {
		total += w.MaxSatisfactionSize(segwit)
	}
	return total
}
func (n VThreshold[K]) String() string {
	s := fmt.Sprintf("v(thresh(%d,%s", n.K, n.Head.String())
	for _, w := range n.Tail {
		s += "," + w.String()
	}
	return s + "))"
}
func (n VThreshold[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfyThreshold[K](append([]Node[K]{n.Head}, widenW(n.Tail)...), n.K, s)
}
func (n VThreshold[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// VCascadeAnd is and_v(V, V): V V, the first fragment's VERIFY aborting
// before the second ever runs if it fails.
type VCascadeAnd[K key.Key] struct {
	markV
	Left  NodeV[K]
	Right NodeV[K]
}

func NewVCascadeAnd[K key.Key](left, right NodeV[K]) NodeV[K] {
	return VCascadeAnd[K]{Left: left, Right: right}
}

func (n VCascadeAnd[K]) encodeInto(b builder) {
	n.Left.(interface{ encodeInto(builder) }).encodeInto(b)
	n.Right.(interface{ encodeInto(builder) }).encodeInto(b)
}
func (n VCascadeAnd[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n VCascadeAnd[K]) MaxWitnessElements() int {
	return n.Left.MaxWitnessElements() + n.Right.MaxWitnessElements()
}
func (n VCascadeAnd[K]) MaxSatisfactionSize(segwit bool) int {
	return n.Left.MaxSatisfactionSize(segwit) + n.Right.MaxSatisfactionSize(segwit)
}
func (n VCascadeAnd[K]) String() string {
	return fmt.Sprintf("and_v(%s,%s)", n.Left.String(), n.Right.String())
}
func (n VCascadeAnd[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	lS, ok := n.Left.satisfy(s)
	if !ok {
		return nil, false
	}
	rS, ok := n.Right.satisfy(s)
	if !ok {
		return nil, false
	}
	return concat(lS, rS), true
}
func (n VCascadeAnd[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// VCascadeOr is or_c(E, V): E OP_NOTIF V OP_ENDIF.
type VCascadeOr[K key.Key] struct {
	markV
	E NodeE[K]
	V NodeV[K]
}

func NewVCascadeOr[K key.Key](e NodeE[K], v NodeV[K]) NodeV[K] {
	return VCascadeOr[K]{E: e, V: v}
}

func (n VCascadeOr[K]) encodeInto(b builder) {
	n.E.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_NOTIF)
	n.V.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ENDIF)
}
func (n VCascadeOr[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n VCascadeOr[K]) MaxWitnessElements() int {
	return maxInt(n.E.MaxWitnessElements(), n.E.MaxWitnessElements()+n.V.MaxWitnessElements())
}
func (n VCascadeOr[K]) MaxSatisfactionSize(segwit bool) int {
	return maxInt(n.E.MaxSatisfactionSize(segwit), n.E.MaxSatisfactionSize(segwit)+n.V.MaxSatisfactionSize(segwit))
}
func (n VCascadeOr[K]) String() string {
	return fmt.Sprintf("or_c(%s,%s)", n.E.String(), n.V.String())
}
func (n VCascadeOr[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	if eS, ok := n.E.satisfy(s); ok {
		return eS, true
	}
	eD, ok := n.E.dissatisfy(s)
	if !ok {
		return nil, false
	}
	vS, ok := n.V.satisfy(s)
	if !ok {
		return nil, false
	}
	return concat(eD, vS), true
}
func (n VCascadeOr[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// VSwitchOr is or_i(V, V): OP_IF V OP_ELSE V OP_ENDIF.
type VSwitchOr[K key.Key] struct {
	markV
	Left  NodeV[K]
	Right NodeV[K]
}

func NewVSwitchOr[K key.Key](left, right NodeV[K]) NodeV[K] {
	return VSwitchOr[K]{Left: left, Right: right}
}

func (n VSwitchOr[K]) encodeInto(b builder) {
	b.AddOp(txscript.OP_IF)
	n.Left.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ELSE)
	n.Right.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ENDIF)
}
func (n VSwitchOr[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n VSwitchOr[K]) MaxWitnessElements() int {
	return 1 + maxInt(n.Left.MaxWitnessElements(), n.Right.MaxWitnessElements())
}
func (n VSwitchOr[K]) MaxSatisfactionSize(segwit bool) int {
	return elementOverhead(segwit) + maxInt(n.Left.MaxSatisfactionSize(segwit), n.Right.MaxSatisfactionSize(segwit))
}
func (n VSwitchOr[K]) String() string {
	return fmt.Sprintf("or_i(%s,%s)", n.Left.String(), n.Right.String())
}
func (n VSwitchOr[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfySwitch[K](s, true, n.Left, n.Right)
}
func (n VSwitchOr[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }
