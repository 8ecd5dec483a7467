// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"

	"github.com/pkt-cash/miniscript/key"
)

// TCastV is the 't' wrapper: Inner(V) OP_1, valid only at the script root.
// Reaching the OP_1 at all means Inner's VERIFY did not abort, so pushing
// a literal true is always correct.
type TCastV[K key.Key] struct {
	markT
	Inner NodeV[K]
}

// NewTCastV builds the T::Cast(V) node ('t:' wrapper).
func NewTCastV[K key.Key](inner NodeV[K]) NodeT[K] { return TCastV[K]{Inner: inner} }

func (n TCastV[K]) encodeInto(b builder) {
	n.Inner.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_1)
}
func (n TCastV[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n TCastV[K]) MaxWitnessElements() int             { return n.Inner.MaxWitnessElements() }
func (n TCastV[K]) MaxSatisfactionSize(segwit bool) int { return n.Inner.MaxSatisfactionSize(segwit) }
func (n TCastV[K]) String() string                      { return "t(" + n.Inner.String() + ")" }
func (n TCastV[K]) satisfy(s Satisfier[K]) ([][]byte, bool) { return n.Inner.satisfy(s) }
func (n TCastV[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// TCastE is an E fragment used directly at the script root: E's result is
// already a strict 0/1, so the root accepts it unchanged with no extra
// wrapper bytes.
type TCastE[K key.Key] struct {
	markT
	Inner NodeE[K]
}

// NewTCastE builds the T::Cast(E) node (bare root use of an E fragment).
func NewTCastE[K key.Key](inner NodeE[K]) NodeT[K] { return TCastE[K]{Inner: inner} }

func (n TCastE[K]) encodeInto(b builder) {
	n.Inner.(interface{ encodeInto(builder) }).encodeInto(b)
}
func (n TCastE[K]) ScriptSize() int                     { return scriptSizeOf[K](n) }
func (n TCastE[K]) MaxWitnessElements() int             { return n.Inner.MaxWitnessElements() }
func (n TCastE[K]) MaxSatisfactionSize(segwit bool) int { return n.Inner.MaxSatisfactionSize(segwit) }
func (n TCastE[K]) String() string                      { return n.Inner.String() }
func (n TCastE[K]) satisfy(s Satisfier[K]) ([][]byte, bool)    { return n.Inner.satisfy(s) }
func (n TCastE[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return n.Inner.dissatisfy(s) }

// TCascadeAnd is and_v(V, T): V T, the V prefix's own VERIFY enforcing the
// left condition before T ever runs.
type TCascadeAnd[K key.Key] struct {
	markT
	Left  NodeV[K]
	Right NodeT[K]
}

func NewTCascadeAnd[K key.Key](left NodeV[K], right NodeT[K]) NodeT[K] {
	return TCascadeAnd[K]{Left: left, Right: right}
}

func (n TCascadeAnd[K]) encodeInto(b builder) {
	n.Left.(interface{ encodeInto(builder) }).encodeInto(b)
	n.Right.(interface{ encodeInto(builder) }).encodeInto(b)
}
func (n TCascadeAnd[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n TCascadeAnd[K]) MaxWitnessElements() int {
	return n.Left.MaxWitnessElements() + n.Right.MaxWitnessElements()
}
func (n TCascadeAnd[K]) MaxSatisfactionSize(segwit bool) int {
	return n.Left.MaxSatisfactionSize(segwit) + n.Right.MaxSatisfactionSize(segwit)
}
func (n TCascadeAnd[K]) String() string {
	return fmt.Sprintf("and_v(%s,%s)", n.Left.String(), n.Right.String())
}
func (n TCascadeAnd[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
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
func (n TCascadeAnd[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// TSwitchOr is or_i(T, T): OP_IF T OP_ELSE T OP_ENDIF.
type TSwitchOr[K key.Key] struct {
	markT
	Left  NodeT[K]
	Right NodeT[K]
}

func NewTSwitchOr[K key.Key](left, right NodeT[K]) NodeT[K] {
	return TSwitchOr[K]{Left: left, Right: right}
}

func (n TSwitchOr[K]) encodeInto(b builder) {
	b.AddOp(txscript.OP_IF)
	n.Left.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ELSE)
	n.Right.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ENDIF)
}
func (n TSwitchOr[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n TSwitchOr[K]) MaxWitnessElements() int {
	return 1 + maxInt(n.Left.MaxWitnessElements(), n.Right.MaxWitnessElements())
}
func (n TSwitchOr[K]) MaxSatisfactionSize(segwit bool) int {
	return elementOverhead(segwit) + maxInt(n.Left.MaxSatisfactionSize(segwit), n.Right.MaxSatisfactionSize(segwit))
}
func (n TSwitchOr[K]) String() string {
	return fmt.Sprintf("or_i(%s,%s)", n.Left.String(), n.Right.String())
}
func (n TSwitchOr[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	return satisfySwitch[K](s, true, n.Left, n.Right)
}
func (n TSwitchOr[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// TAndOr is andor(E, T, T): E OP_NOTIF Z OP_ELSE Y OP_ENDIF -- if E then Y
// else Z.
type TAndOr[K key.Key] struct {
	markT
	E    NodeE[K]
	Then NodeT[K]
	Else NodeT[K]
}

func NewTAndOr[K key.Key](e NodeE[K], then, els NodeT[K]) NodeT[K] {
	return TAndOr[K]{E: e, Then: then, Else: els}
}

func (n TAndOr[K]) encodeInto(b builder) {
	n.E.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_NOTIF)
	n.Else.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ELSE)
	n.Then.(interface{ encodeInto(builder) }).encodeInto(b)
	b.AddOp(txscript.OP_ENDIF)
}
func (n TAndOr[K]) ScriptSize() int { return scriptSizeOf[K](n) }
func (n TAndOr[K]) MaxWitnessElements() int {
	return n.E.MaxWitnessElements() + maxInt(n.Then.MaxWitnessElements(), n.Else.MaxWitnessElements())
}
func (n TAndOr[K]) MaxSatisfactionSize(segwit bool) int {
	return n.E.MaxSatisfactionSize(segwit) + maxInt(n.Then.MaxSatisfactionSize(segwit), n.Else.MaxSatisfactionSize(segwit))
}
func (n TAndOr[K]) String() string {
	return fmt.Sprintf("andor(%s,%s,%s)", n.E.String(), n.Then.String(), n.Else.String())
}
func (n TAndOr[K]) satisfy(s Satisfier[K]) ([][]byte, bool) {
	if eS, ok := n.E.satisfy(s); ok {
		if tS, ok := n.Then.satisfy(s); ok {
			return concat(eS, tS), true
		}
	}
	if eD, ok := n.E.dissatisfy(s); ok {
		if zS, ok := n.Else.satisfy(s); ok {
			return concat(eD, zS), true
		}
	}
	return nil, false
}
func (n TAndOr[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }

// TCascadeOr is or_d(E, T) used bare at the root: identical script and
// semantics to E::CascadeOr, re-typed as T because its caller placed it at
// the root rather than composing it further.
type TCascadeOr[K key.Key] struct {
	markT
	E NodeE[K]
	T NodeT[K]
}

func NewTCascadeOr[K key.Key](e NodeE[K], t NodeT[K]) NodeT[K] { return TCascadeOr[K]{E: e, T: t} }

func (n TCascadeOr[K]) encodeInto(b builder) { encodeCascadeOr[K](b, n.E, n.T) }
func (n TCascadeOr[K]) ScriptSize() int      { return scriptSizeOf[K](n) }
func (n TCascadeOr[K]) MaxWitnessElements() int {
	return maxInt(n.E.MaxWitnessElements(), n.E.MaxWitnessElements()+n.T.MaxWitnessElements())
}
func (n TCascadeOr[K]) MaxSatisfactionSize(segwit bool) int {
	return maxInt(n.E.MaxSatisfactionSize(segwit), n.E.MaxSatisfactionSize(segwit)+n.T.MaxSatisfactionSize(segwit))
}
func (n TCascadeOr[K]) String() string { return fmt.Sprintf("or_d(%s,%s)", n.E.String(), n.T.String()) }
func (n TCascadeOr[K]) satisfy(s Satisfier[K]) ([][]byte, bool) { return satisfyCascadeOr[K](s, n.E, n.T) }
func (n TCascadeOr[K]) dissatisfy(s Satisfier[K]) ([][]byte, bool) { return nil, false }
