// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"

	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/mserr"
)

// ECheckSig is pk_k(K): <pk> OP_CHECKSIG.
type ECheckSig[K key.Key] struct {
	markE
	Key K
}

// NewECheckSig builds an E::CheckSig(K) node.
func NewECheckSig[K key.Key](k K) NodeE[K] { return ECheckSig[K]{Key: k} }

func (n ECheckSig[K]) encodeInto(b builder) {
	pk, err := n.Key.ToPublicKey()
	if err != nil {
		panic("miniscript: key lowering failed at encode time: " + err.Error())
	}
	b.AddData(pk[:]).AddOp(txscript.OP_CHECKSIG)
}
func (n ECheckSig[K]) ScriptSize() int            { return scriptSizeOf[K](n) }
func (n ECheckSig[K]) MaxWitnessElements() int    { return 1 }
func (n ECheckSig[K]) MaxSatisfactionSize(segwit bool) int {
	return sigCost + elementOverhead(segwit)
}
func (n ECheckSig[K]) String() string { return fmt.Sprintf("pk_k(%s)", n.Key.String()) }
func (n ECheckSig[K]) satisfy(s Satisfier[K]) ([][]byte, bool)    { return satisfySig(s, n.Key) }
func (n ECheckSig[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return dissatisfySig() }

// EHashEqual is sha256(h)/hash256(h)/ripemd160(h)/hash160(h): OP_SIZE 32
// OP_EQUALVERIFY OP_HASH... <h> OP_EQUAL. The preimage is always 32 bytes
// regardless of fn; only the resulting digest's width (Fn.Width()) varies.
type EHashEqual[K key.Key] struct {
	markE
	Fn     HashFn
	Digest []byte
}

// NewEHashEqual builds an E::HashEqual(fn, digest) node, validating digest
// is exactly fn's expected width.
func NewEHashEqual[K key.Key](fn HashFn, digest []byte) (NodeE[K], error) {
	if len(digest) != fn.Width() {
		return nil, mserr.ErrContextError.Newf("%s digest must be %d bytes, got %d", fn, fn.Width(), len(digest))
	}
	return EHashEqual[K]{Fn: fn, Digest: digest}, nil
}

func (n EHashEqual[K]) encodeInto(b builder)  { encodeHashEqual(b, n.Fn, n.Digest, false) }
func (n EHashEqual[K]) ScriptSize() int       { return scriptSizeOf[K](n) }
func (n EHashEqual[K]) MaxWitnessElements() int             { return 1 }
func (n EHashEqual[K]) MaxSatisfactionSize(segwit bool) int { return hashPreimageWidth + elementOverhead(segwit) }
func (n EHashEqual[K]) String() string        { return hashEqualName(n.Fn, n.Digest) }
func (n EHashEqual[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfyHash(s, n.Fn, n.Digest)
}
func (n EHashEqual[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) {
	return dissatisfyHash(hashPreimageWidth)
}

// ECheckSigHash is pk_h(K): OP_DUP OP_HASH160 <hash160(K)> OP_EQUALVERIFY
// OP_CHECKSIG. Decoded from a raw script it carries only the hash, since
// the pubkey itself is never on-chain until spent; satisfy resolves the
// actual key and signature together through LookupPkhSig.
type ECheckSigHash[K key.Key] struct {
	markE
	Hash [20]byte
}

// NewECheckSigHash builds an E::CheckSigHash(K) node, hashing k's
// compressed pubkey to fill Hash.
func NewECheckSigHash[K key.Key](k K) (NodeE[K], error) {
	h, err := k.Hash160()
	if err != nil {
		return nil, err
	}
	return ECheckSigHash[K]{Hash: h}, nil
}

// NewECheckSigHashFromHash builds an E::CheckSigHash node directly from a
// known hash160, as the decoder does (it never sees the pubkey itself).
func NewECheckSigHashFromHash[K key.Key](h [20]byte) NodeE[K] { return ECheckSigHash[K]{Hash: h} }

func (n ECheckSigHash[K]) encodeInto(b builder) {
	b.AddOp(txscript.OP_DUP)
	b.AddOp(txscript.OP_HASH160)
	b.AddData(n.Hash[:])
	b.AddOp(txscript.OP_EQUALVERIFY)
	b.AddOp(txscript.OP_CHECKSIG)
}
func (n ECheckSigHash[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n ECheckSigHash[K]) MaxWitnessElements() int             { return 2 }
func (n ECheckSigHash[K]) MaxSatisfactionSize(segwit bool) int {
	return sigCost + 33 + 2*elementOverhead(segwit)
}
func (n ECheckSigHash[K]) String() string {
	return fmt.Sprintf("pk_h(%x)", n.Hash)
}
func (n ECheckSigHash[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	sig, k, ok := s.LookupPkhSig(n.Hash)
	if !ok {
		return nil, false
	}
	pk, err := k.ToPublicKey()
	if err != nil {
		return nil, false
	}
	return [][]byte{sig.Bytes(), pk[:]}, true
}
func (n ECheckSigHash[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) {
	return nil, false
}

// ECheckMultiSig is multi(k, keys): <k> <pks...> <n> OP_CHECKMULTISIG.
type ECheckMultiSig[K key.Key] struct {
	markE
	K    int
	Keys []K
}

// NewECheckMultiSig builds an E::CheckMultiSig(k, keys) node, validating
// 0 <= k <= len(keys) <= 20.
func NewECheckMultiSig[K key.Key](k int, keys []K) (NodeE[K], error) {
	if err := checkMultiSigBounds(k, len(keys)); err != nil {
		return nil, err
	}
	return ECheckMultiSig[K]{K: k, Keys: keys}, nil
}

func checkMultiSigBounds(k, n int) error {
	if n > 20 {
		return mserr.ErrCmsTooManyKeys.Newf("%d", n)
	}
	if k < 0 || k > n {
		return mserr.ErrContextError.Newf("multisig k=%d out of range for %d keys", k, n)
	}
	return nil
}

func encodeMultiSig[K key.Key](b builder, k int, keys []K, verify bool) {
	b.AddInt64(int64(k))
	for _, pk := range keys {
		raw, err := pk.ToPublicKey()
		if err != nil {
			panic("miniscript: key lowering failed at encode time: " + err.Error())
		}
		b.AddData(raw[:])
	}
	b.AddInt64(int64(len(keys)))
	if verify {
		b.AddOp(txscript.OP_CHECKMULTISIGVERIFY)
	} else {
		b.AddOp(txscript.OP_CHECKMULTISIG)
	}
}

func (n ECheckMultiSig[K]) encodeInto(b builder) { encodeMultiSig(b, n.K, n.Keys, false) }
func (n ECheckMultiSig[K]) ScriptSize() int       { return scriptSizeOf[K](n) }
func (n ECheckMultiSig[K]) MaxWitnessElements() int { return n.K + 1 }
func (n ECheckMultiSig[K]) MaxSatisfactionSize(segwit bool) int {
	ov := elementOverhead(segwit)
	return (n.K+1)*ov + n.K*sigCost
}
func (n ECheckMultiSig[K]) String() string {
	return multiString("multi", n.K, n.Keys)
}
func (n ECheckMultiSig[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfyMultiSig(s, n.K, n.Keys)
}
func (n ECheckMultiSig[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) {
	return dissatisfyMultiSig(n.K)
}

func multiString[K key.Key](name string, k int, keys []K) string {
	s := fmt.Sprintf("%s(%d", name, k)
	for _, pk := range keys {
		s += "," + pk.String()
	}
	return s + ")"
}

// ETime is older(n)/after(n) used as an E fragment: <n> OP_CSV / OP_CLTV.
// It is not softly dissatisfiable: CSV/CLTV abort the whole script on
// failure rather than returning a boolean, so there is no witness that
// fails gracefully through it.
type ETime[K key.Key] struct {
	markE
	Kind TimeKind
	N    uint32
}

// NewETime builds an E::Time(n) node, validating 1 <= n < 2^31.
func NewETime[K key.Key](kind TimeKind, n uint32) (NodeE[K], error) {
	if err := checkTimeBounds(n); err != nil {
		return nil, err
	}
	return ETime[K]{Kind: kind, N: n}, nil
}

func checkTimeBounds(n uint32) error {
	if n < 1 || n >= 1<<31 {
		return mserr.ErrContextError.Newf("timelock %d out of range [1, 2^31)", n)
	}
	return nil
}

func (n ETime[K]) encodeInto(b builder) { b.AddInt64(int64(n.N)).AddOp(n.Kind.opcode()) }
func (n ETime[K]) ScriptSize() int      { return scriptSizeOf[K](n) }
func (n ETime[K]) MaxWitnessElements() int            { return 0 }
func (n ETime[K]) MaxSatisfactionSize(segwit bool) int { return 0 }
func (n ETime[K]) String() string                     { return fmt.Sprintf("%s(%d)", n.Kind, n.N) }
func (n ETime[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	if timeOk(s, n.Kind, n.N) {
		return nil, true
	}
	return nil, false
}
func (n ETime[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

func timeOk[K key.Key](s Satisfier[K], kind TimeKind, n uint32) bool {
	if kind == Relative {
		return s.CheckOlder(n)
	}
	return s.CheckAfter(n)
}

// EThreshold is thresh(k, head, tail...): head <w1> OP_ADD <w2> OP_ADD ...
// <k> OP_EQUAL.
type EThreshold[K key.Key] struct {
	markE
	K    int
	Head NodeE[K]
	Tail []NodeW[K]
}

// NewEThreshold builds an E::Threshold(k, head, tail) node, validating
// 1 <= k <= len(tail)+1.
func NewEThreshold[K key.Key](k int, head NodeE[K], tail []NodeW[K]) (NodeE[K], error) {
	if err := checkThresholdBounds(k, len(tail)+1); err != nil {
		return nil, err
	}
	return EThreshold[K]{K: k, Head: head, Tail: tail}, nil
}

func checkThresholdBounds(k, n int) error {
	if k < 1 || k > n {
		return mserr.ErrContextError.Newf("threshold k=%d out of range for %d children", k, n)
	}
	return nil
}

func encodeThreshold[K key.Key](b builder, k int, head NodeE[K], tail []NodeW[K], verify bool) {
	head.(interface{ encodeInto(builder) }).encodeInto(b)
	for _, w := range tail {
		w.(interface{ encodeInto(builder) }).encodeInto(b)
		b.AddOp(txscript.OP_ADD)
	}
	b.AddInt64(int64(k))
	if verify {
		b.AddOp(txscript.OP_EQUALVERIFY)
	} else {
		b.AddOp(txscript.OP_EQUAL)
	}
}

func (n EThreshold[K]) encodeInto(b builder) { encodeThreshold(b, n.K, n.Head, n.Tail, false) }
func (n EThreshold[K]) ScriptSize() int      { return scriptSizeOf[K](n) }
func (n EThreshold[K]) MaxWitnessElements() int {
	total := n.Head.MaxWitnessElements()
	for _, w := range n.Tail {
		total += w.MaxWitnessElements()
	}
	return total
}
func (n EThreshold[K]) MaxSatisfactionSize(segwit bool) int {
	total := n.Head.MaxSatisfactionSize(segwit)
	for _, w := range n.Tail {
		total += w.MaxSatisfactionSize(segwit)
	}
	return total
}
func (n EThreshold[K]) String() string {
	s := fmt.Sprintf("thresh(%d,%s", n.K, n.Head.String())
	for _, w := range n.Tail {
		s += "," + w.String()
	}
	return s + ")"
}
func (n EThreshold[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfyThreshold[K](append([]Node[K]{n.Head}, widenW(n.Tail)...), n.K, s)
}
func (n EThreshold[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) {
	return dissatisfyThreshold[K](append([]Node[K]{n.Head}, widenW(n.Tail)...))
}

func widenW[K key.Key](ws []NodeW[K]) []Node[K] {
	out := make([]Node[K], len(ws))
	for i, w := range ws {
		out[i] = w
	}
	return out
}

func satisfyThreshold[K key.Key](children []Node[K], k int, sat Satisfier[K]) ([][]byte, bool) {
	n := len(children)
	sStacks := make([][][]byte, n)
	sOk := make([]bool, n)
	dStacks := make([][][]byte, n)
	dOk := make([]bool, n)
	forced := 0
	for i, c := range children {
		sStacks[i], sOk[i] = c.satisfy(sat)
		dStacks[i], dOk[i] = c.dissatisfy(sat)
		if !dOk[i] {
			forced++
		}
	}
	if forced > k {
		return nil, false
	}
	chosen := make([]bool, n)
	chosenCount := 0
	for i := range children {
		if !dOk[i] {
			if !sOk[i] {
				return nil, false
			}
			chosen[i] = true
			chosenCount++
		}
	}
	for i := range children {
		if chosenCount >= k {
			break
		}
		if chosen[i] {
			continue
		}
		if sOk[i] {
			chosen[i] = true
			chosenCount++
		}
	}
	if chosenCount != k {
		return nil, false
	}
	var stack [][]byte
	for i := range children {
		if chosen[i] {
			stack = append(stack, sStacks[i]...)
		} else {
			stack = append(stack, dStacks[i]...)
		}
	}
	return stack, true
}

func dissatisfyThreshold[K key.Key](children []Node[K]) ([][]byte, bool) {
	var stack [][]byte
	for _, c := range children {
		d, ok := c.dissatisfy(noopSatisfier[K]{})
		if !ok {
			return nil, false
		}
		stack = append(stack, d...)
	}
	return stack, true
}

// noopSatisfier answers every lookup negatively. dissatisfyThreshold passes
// it to every child, so a child whose dissatisfaction consults the oracle
// (EParallelAnd falling back to satisfying its E side) cannot be
// dissatisfied inside a threshold.
type noopSatisfier[K key.Key] struct{}

func (noopSatisfier[K]) LookupSig(K) (SigAndType, bool)             { return SigAndType{}, false }
func (noopSatisfier[K]) LookupPkhSig([20]byte) (SigAndType, K, bool) {
	var z K
	return SigAndType{}, z, false
}
func (noopSatisfier[K]) LookupPreimage(HashFn, []byte) ([]byte, bool) { return nil, false }
func (noopSatisfier[K]) CheckOlder(uint32) bool                       { return false }
func (noopSatisfier[K]) CheckAfter(uint32) bool                       { return false }

// EParallelAnd is and_b(E, W): E W OP_BOOLAND.
type EParallelAnd[K key.Key] struct {
	markE
	E NodeE[K]
	W NodeW[K]
}

func NewEParallelAnd[K key.Key](e NodeE[K], w NodeW[K]) NodeE[K] {
	return EParallelAnd[K]{E: e, W: w}
}

func (n EParallelAnd[K]) encodeInto(b builder) {
	n.E.(interface{ encodeInto(builder) }).encodeInto(b)
	n.W.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_BOOLAND)
}
func (n EParallelAnd[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n EParallelAnd[K]) MaxWitnessElements() int {
	return n.E.MaxWitnessElements() + n.W.MaxWitnessElements()
}
func (n EParallelAnd[K]) MaxSatisfactionSize(segwit bool) int {
	return n.E.MaxSatisfactionSize(segwit) + n.W.MaxSatisfactionSize(segwit)
}
func (n EParallelAnd[K]) String() string {
	return fmt.Sprintf("and_b(%s,%s)", n.E.String(), n.W.String())
}
func (n EParallelAnd[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	eS, eOk := n.E.satisfy(s)
	wS, wOk := n.W.satisfy(s)
	if !eOk || !wOk {
		return nil, false
	}
	return concat(eS, wS), true
}
func (n EParallelAnd[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) {
	eD, eDok := n.E.dissatisfy(s)
	wD, wDok := n.W.dissatisfy(s)
	if eDok && wDok {
		return concat(eD, wD), true
	}
	if !eDok {
		eS, eOk := n.E.satisfy(s)
		if !eOk || !wDok {
			return nil, false
		}
		return concat(eS, wD), true
	}
	wS, wOk := n.W.satisfy(s)
	if !wOk {
		return nil, false
	}
	return concat(eD, wS), true
}

// EParallelOr is or_b(E, W): E W OP_BOOLOR.
type EParallelOr[K key.Key] struct {
	markE
	E NodeE[K]
	W NodeW[K]
}

func NewEParallelOr[K key.Key](e NodeE[K], w NodeW[K]) NodeE[K] {
	return EParallelOr[K]{E: e, W: w}
}

func (n EParallelOr[K]) encodeInto(b builder) { encodeParallelOr[K](b, n.E, n.W) }
func encodeParallelOr[K key.Key](b builder, e NodeE[K], w NodeW[K]) {
	e.(interface{ encodeInto(builder) }).encodeInto(b)
	w.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_BOOLOR)
}
func (n EParallelOr[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n EParallelOr[K]) MaxWitnessElements() int {
	return n.E.MaxWitnessElements() + n.W.MaxWitnessElements()
}
func (n EParallelOr[K]) MaxSatisfactionSize(segwit bool) int {
	return maxInt(n.E.MaxSatisfactionSize(segwit)+n.W.MaxSatisfactionSize(segwit),
		n.W.MaxSatisfactionSize(segwit)+n.E.MaxSatisfactionSize(segwit))
}
func (n EParallelOr[K]) String() string {
	return fmt.Sprintf("or_b(%s,%s)", n.E.String(), n.W.String())
}
func (n EParallelOr[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfyParallelOr[K](s, n.E, n.W)
}
func (n EParallelOr[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) {
	eD, eOk := n.E.dissatisfy(s)
	wD, wOk := n.W.dissatisfy(s)
	if !eOk || !wOk {
		return nil, false
	}
	return concat(eD, wD), true
}

func satisfyParallelOr[K key.Key](s Satisfier[K], e NodeE[K], w NodeW[K]) ([][]byte, bool) {
	var opts [][][]byte
	if eS, ok := e.satisfy(s); ok {
		if wD, ok := w.dissatisfy(s); ok {
			opts = append(opts, concat(eS, wD))
		}
	}
	if eD, ok := e.dissatisfy(s); ok {
		if wS, ok := w.satisfy(s); ok {
			opts = append(opts, concat(eD, wS))
		}
	}
	if len(opts) == 0 {
		return nil, false
	}
	best := opts[0]
	for _, o := range opts[1:] {
		best = smaller(best, o)
	}
	return best, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ECascadeOr is or_d(E, T): E OP_IFDUP OP_NOTIF T OP_ENDIF.
type ECascadeOr[K key.Key] struct {
	markE
	E NodeE[K]
	T NodeT[K]
}

func NewECascadeOr[K key.Key](e NodeE[K], t NodeT[K]) NodeE[K] {
	return ECascadeOr[K]{E: e, T: t}
}

func (n ECascadeOr[K]) encodeInto(b builder) { encodeCascadeOr[K](b, n.E, n.T) }
func encodeCascadeOr[K key.Key](b builder, e NodeE[K], t NodeT[K]) {
	e.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_IFDUP)
	b.AddOp(txscript.OP_NOTIF)
	t.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ENDIF)
}
func (n ECascadeOr[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n ECascadeOr[K]) MaxWitnessElements() int {
	return maxInt(n.E.MaxWitnessElements(), n.E.MaxWitnessElements()+n.T.MaxWitnessElements())
}
func (n ECascadeOr[K]) MaxSatisfactionSize(segwit bool) int {
	return maxInt(n.E.MaxSatisfactionSize(segwit), n.E.MaxSatisfactionSize(segwit)+n.T.MaxSatisfactionSize(segwit))
}
func (n ECascadeOr[K]) String() string {
	return fmt.Sprintf("or_d(%s,%s)", n.E.String(), n.T.String())
}
func (n ECascadeOr[K]) satisfy(s Satisfier[K]) ([][]byte, bool) { return satisfyCascadeOr[K](s, n.E, n.T) }
func (n ECascadeOr[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) {
	eD, eOk := n.E.dissatisfy(s)
	if !eOk {
		return nil, false
	}
	tD, tOk := n.T.dissatisfy(s)
	if !tOk {
		return nil, false
	}
	return concat(eD, tD), true
}

func satisfyCascadeOr[K key.Key](s Satisfier[K], e NodeE[K], t NodeT[K]) ([][]byte, bool) {
	var opts [][][]byte
	if eS, ok := e.satisfy(s); ok {
		opts = append(opts, eS)
	}
	if eD, ok := e.dissatisfy(s); ok {
		if tS, ok := t.satisfy(s); ok {
			opts = append(opts, concat(eD, tS))
		}
	}
	if len(opts) == 0 {
		return nil, false
	}
	best := opts[0]
	for _, o := range opts[1:] {
		best = smaller(best, o)
	}
	return best, true
}

// ESwitchOrLeft is or_i with the explicit selector choosing the left (E)
// branch when the selector is true: OP_IF E OP_ELSE T OP_ENDIF.
type ESwitchOrLeft[K key.Key] struct {
	markE
	E NodeE[K]
	T NodeT[K]
}

func NewESwitchOrLeft[K key.Key](e NodeE[K], t NodeT[K]) NodeE[K] {
	return ESwitchOrLeft[K]{E: e, T: t}
}

func (n ESwitchOrLeft[K]) encodeInto(b builder) {
	b.AddOp(txscript.OP_IF)
	n.E.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ELSE)
	n.T.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ENDIF)
}
func (n ESwitchOrLeft[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n ESwitchOrLeft[K]) MaxWitnessElements() int {
	return 1 + maxInt(n.E.MaxWitnessElements(), n.T.MaxWitnessElements())
}
func (n ESwitchOrLeft[K]) MaxSatisfactionSize(segwit bool) int {
	return elementOverhead(segwit) + maxInt(n.E.MaxSatisfactionSize(segwit), n.T.MaxSatisfactionSize(segwit))
}
func (n ESwitchOrLeft[K]) String() string {
	return fmt.Sprintf("or_i(%s,%s)", n.E.String(), n.T.String())
}
func (n ESwitchOrLeft[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfySwitch(s, true, n.E, n.T)
}
func (n ESwitchOrLeft[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) {
	eD, ok := n.E.dissatisfy(s)
	if !ok {
		return nil, false
	}
	return concat(eD, selectorByte(true)), true
}

// ESwitchOrRight is or_i with the selector choosing the right (T) branch
// when true: OP_IF T OP_ELSE E OP_ENDIF.
type ESwitchOrRight[K key.Key] struct {
	markE
	E NodeE[K]
	T NodeT[K]
}

func NewESwitchOrRight[K key.Key](e NodeE[K], t NodeT[K]) NodeE[K] {
	return ESwitchOrRight[K]{E: e, T: t}
}

func (n ESwitchOrRight[K]) encodeInto(b builder) {
	b.AddOp(txscript.OP_IF)
	n.T.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ELSE)
	n.E.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ENDIF)
}
func (n ESwitchOrRight[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n ESwitchOrRight[K]) MaxWitnessElements() int {
	return 1 + maxInt(n.E.MaxWitnessElements(), n.T.MaxWitnessElements())
}
func (n ESwitchOrRight[K]) MaxSatisfactionSize(segwit bool) int {
	return elementOverhead(segwit) + maxInt(n.E.MaxSatisfactionSize(segwit), n.T.MaxSatisfactionSize(segwit))
}
func (n ESwitchOrRight[K]) String() string {
	return fmt.Sprintf("or_i(%s,%s)", n.T.String(), n.E.String())
}
func (n ESwitchOrRight[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfySwitch(s, false, n.T, n.E)
}
func (n ESwitchOrRight[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) {
	eD, ok := n.E.dissatisfy(s)
	if !ok {
		return nil, false
	}
	return concat(eD, selectorByte(false)), true
}

// selectorByte is the OP_1/OP_0 branch-selector byte SwitchOr-family
// fragments push ahead of the IF, as a minimal Script number.
func selectorByte(left bool) [][]byte {
	if left {
		return [][]byte{{1}}
	}
	return [][]byte{{}}
}

// satisfySwitch tries the first branch (taken when the pushed selector is
// true) then the second (selector false), keeping whichever is smaller.
func satisfySwitch[K key.Key](s Satisfier[K], _ bool, ifBranch, elseBranch Node[K]) ([][]byte, bool) {
	var opts [][][]byte
	if st, ok := ifBranch.satisfy(s); ok {
		opts = append(opts, concat(st, selectorByte(true)))
	}
	if st, ok := elseBranch.satisfy(s); ok {
		opts = append(opts, concat(st, selectorByte(false)))
	}
	if len(opts) == 0 {
		return nil, false
	}
	best := opts[0]
	for _, o := range opts[1:] {
		best = smaller(best, o)
	}
	return best, true
}

// ELikely is the 'l' wrapper: OP_IF OP_0 OP_ELSE Inner OP_ENDIF. Inner is
// expected true; the false (likely) branch is cheap.
type ELikely[K key.Key] struct {
	markE
	Inner NodeE[K]
}

func NewELikely[K key.Key](inner NodeE[K]) NodeE[K] { return ELikely[K]{Inner: inner} }

func (n ELikely[K]) encodeInto(b builder) {
	b.AddOp(txscript.OP_IF)
	b.AddOp(txscript.OP_0)
	b.AddOp(txscript.OP_ELSE)
	n.Inner.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ENDIF)
}
func (n ELikely[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n ELikely[K]) MaxWitnessElements() int             { return 1 + n.Inner.MaxWitnessElements() }
func (n ELikely[K]) MaxSatisfactionSize(segwit bool) int { return elementOverhead(segwit) + n.Inner.MaxSatisfactionSize(segwit) }
func (n ELikely[K]) String() string                      { return "l(" + n.Inner.String() + ")" }
func (n ELikely[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	in, ok := n.Inner.satisfy(s)
	if !ok {
		return nil, false
	}
	return concat(in, selectorByte(false)), true
}
func (n ELikely[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return selectorByte(true), true }

// EUnlikely is the 'u' wrapper: OP_IF Inner OP_ELSE OP_0 OP_ENDIF. Inner is
// expected false; the true (unlikely) branch is cheap.
type EUnlikely[K key.Key] struct {
	markE
	Inner NodeE[K]
}

func NewEUnlikely[K key.Key](inner NodeE[K]) NodeE[K] { return EUnlikely[K]{Inner: inner} }

func (n EUnlikely[K]) encodeInto(b builder) {
	b.AddOp(txscript.OP_IF)
	n.Inner.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ELSE)
	b.AddOp(txscript.OP_0)
	b.AddOp(txscript.OP_ENDIF)
}
func (n EUnlikely[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n EUnlikely[K]) MaxWitnessElements() int             { return 1 + n.Inner.MaxWitnessElements() }
func (n EUnlikely[K]) MaxSatisfactionSize(segwit bool) int { return elementOverhead(segwit) + n.Inner.MaxSatisfactionSize(segwit) }
func (n EUnlikely[K]) String() string                      { return "u(" + n.Inner.String() + ")" }
func (n EUnlikely[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	in, ok := n.Inner.satisfy(s)
	if !ok {
		return nil, false
	}
	return concat(in, selectorByte(true)), true
}
func (n EUnlikely[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return selectorByte(false), true }

// ENonZero is the 'n' wrapper: Inner OP_0NOTEQUAL, normalizing an E whose
// top-of-stack result is a nonzero-but-not-strictly-1 value into a strict
// boolean.
type ENonZero[K key.Key] struct {
	markE
	Inner NodeE[K]
}

func NewENonZero[K key.Key](inner NodeE[K]) NodeE[K] { return ENonZero[K]{Inner: inner} }

func (n ENonZero[K]) encodeInto(b builder) {
	n.Inner.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_0NOTEQUAL)
}
func (n ENonZero[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n ENonZero[K]) MaxWitnessElements() int             { return n.Inner.MaxWitnessElements() }
func (n ENonZero[K]) MaxSatisfactionSize(segwit bool) int { return n.Inner.MaxSatisfactionSize(segwit) }
func (n ENonZero[K]) String() string                      { return "n(" + n.Inner.String() + ")" }
func (n ENonZero[K]) satisfy(s Satisfier[K]) ([][]byte, bool)    { return n.Inner.satisfy(s) }
func (n ENonZero[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return n.Inner.dissatisfy(s) }

// EDupIf is the 'd' wrapper: OP_DUP OP_IF Inner OP_ENDIF, lifting a V
// fragment into E position. The selector on top is duplicated and OP_IF
// consumes the copy: a 1 runs Inner and is left as the result, a 0 skips
// Inner and is left as the dissatisfaction result.
type EDupIf[K key.Key] struct {
	markE
	Inner NodeV[K]
}

func NewEDupIf[K key.Key](inner NodeV[K]) NodeE[K] { return EDupIf[K]{Inner: inner} }

func (n EDupIf[K]) encodeInto(b builder) {
	b.AddOp(txscript.OP_DUP)
	b.AddOp(txscript.OP_IF)
	n.Inner.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ENDIF)
}
func (n EDupIf[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n EDupIf[K]) MaxWitnessElements() int             { return 1 + n.Inner.MaxWitnessElements() }
func (n EDupIf[K]) MaxSatisfactionSize(segwit bool) int { return elementOverhead(segwit) + n.Inner.MaxSatisfactionSize(segwit) }
func (n EDupIf[K]) String() string                      { return "d(" + n.Inner.String() + ")" }
func (n EDupIf[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	vS, ok := n.Inner.satisfy(s)
	if !ok {
		return nil, false
	}
	return concat(vS, selectorByte(true)), true
}
func (n EDupIf[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return selectorByte(false), true }
