// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkt-cash/miniscript/expr"
	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/mserr"
)

// FromTree resolves a parsed name(args...) expression tree into a rooted
// T fragment. newKey lowers a key literal's textual form (as the expr
// grammar's identifier charset allows it) into the caller's key type.
//
// The wrapper-cast combinators (a, s, c, t, d, v, j, n, l, u) are accepted
// in both spellings: the prefix notation tv:pk_k(...), where the character
// string before the colon is applied innermost-last, and the equivalent
// unary nesting t(v(pk_k(...))). Print always emits the unary spelling.
func FromTree[K key.Key](t expr.Tree, newKey func(string) (K, error)) (NodeT[K], error) {
	any, err := fromTreeAny(t, newKey)
	if err != nil {
		return nil, err
	}
	root, ok := any.asT()
	if !ok {
		if any.w != nil {
			return nil, mserr.ErrAtOutsideOr.Newf("%q is a wrapped (W) fragment with no parallel composition around it", t.Name)
		}
		return nil, mserr.ErrMissingExt.Newf("%q cannot be used at the script root", t.Name)
	}
	return root, nil
}

// anyNode holds whichever correctness-typed forms a subtree has been
// resolved to; combinators further up the tree request the specific type
// they need via asE/asW/asV/asT, which synthesize a cast wrapper on
// demand when the native form isn't already that type.
type anyNode[K key.Key] struct {
	e NodeE[K]
	w NodeW[K]
	v NodeV[K]
	t NodeT[K]
}

func (a anyNode[K]) asE() (NodeE[K], bool) {
	if a.e != nil {
		return a.e, true
	}
	return nil, false
}

func (a anyNode[K]) asW() (NodeW[K], bool) {
	if a.w != nil {
		return a.w, true
	}
	if a.e != nil {
		return WSwap[K]{Inner: a.e}, true
	}
	return nil, false
}

func (a anyNode[K]) asV() (NodeV[K], bool) {
	if a.v != nil {
		return a.v, true
	}
	if a.e != nil {
		return VCastE[K]{Inner: a.e}, true
	}
	return nil, false
}

func (a anyNode[K]) asT() (NodeT[K], bool) {
	if a.t != nil {
		return a.t, true
	}
	if a.v != nil {
		return TCastV[K]{Inner: a.v}, true
	}
	if a.e != nil {
		return TCastE[K]{Inner: a.e}, true
	}
	return nil, false
}

func fromTreeAny[K key.Key](t expr.Tree, newKey func(string) (K, error)) (anyNode[K], error) {
	// Wrapper-cast prefix notation: everything before the ':' is a string of
	// single-character wrappers, applied right to left (nearest the node
	// name first).
	if i := strings.IndexByte(t.Name, ':'); i >= 0 {
		wrappers, rest := t.Name[:i], t.Name[i+1:]
		if wrappers == "" {
			return anyNode[K]{}, mserr.ErrBadDescriptor.Newf("empty wrapper prefix in %q", t.Name)
		}
		node, err := fromTreeAny[K](expr.Tree{Name: rest, Args: t.Args}, newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		for j := len(wrappers) - 1; j >= 0; j-- {
			node, err = applyWrapper[K](wrappers[j:j+1], node)
			if err != nil {
				return anyNode[K]{}, err
			}
		}
		return node, nil
	}

	switch t.Name {
	case "pk_k":
		k, err := leafKey(t, newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		return anyNode[K]{e: ECheckSig[K]{Key: k}}, nil

	case "pk_h":
		k, err := leafKey(t, newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		n, err := NewECheckSigHash[K](k)
		if err != nil {
			return anyNode[K]{}, err
		}
		return anyNode[K]{e: n}, nil

	case "older", "after":
		n, err := leafNumber(t)
		if err != nil {
			return anyNode[K]{}, err
		}
		kind := Relative
		if t.Name == "after" {
			kind = Absolute
		}
		node, err := NewETime[K](kind, n)
		if err != nil {
			return anyNode[K]{}, err
		}
		return anyNode[K]{e: node}, nil

	case "sha256", "hash256", "ripemd160", "hash160":
		fn := hashFnByName(t.Name)
		digest, err := leafHex(t, fn.Width())
		if err != nil {
			return anyNode[K]{}, err
		}
		node, err := NewEHashEqual[K](fn, digest)
		if err != nil {
			return anyNode[K]{}, err
		}
		return anyNode[K]{e: node}, nil

	case "multi":
		if len(t.Args) < 1 {
			return anyNode[K]{}, mserr.ErrBadDescriptor.New("multi() needs a threshold argument")
		}
		k, err := strconv.Atoi(t.Args[0].Name)
		if err != nil {
			return anyNode[K]{}, mserr.ErrBadDescriptor.Newf("multi() threshold: %s", err)
		}
		keys := make([]K, 0, len(t.Args)-1)
		for _, a := range t.Args[1:] {
			kk, err := newKey(a.Name)
			if err != nil {
				return anyNode[K]{}, err
			}
			keys = append(keys, kk)
		}
		node, err := NewECheckMultiSig[K](k, keys)
		if err != nil {
			return anyNode[K]{}, err
		}
		return anyNode[K]{e: node}, nil

	case "thresh":
		if len(t.Args) < 2 {
			return anyNode[K]{}, mserr.ErrBadDescriptor.New("thresh() needs a threshold and at least one child")
		}
		k, err := strconv.Atoi(t.Args[0].Name)
		if err != nil {
			return anyNode[K]{}, mserr.ErrBadDescriptor.Newf("thresh() threshold: %s", err)
		}
		headAny, err := fromTreeAny[K](t.Args[1], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		head, ok := headAny.asE()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("thresh() head must be an E fragment")
		}
		tail := make([]NodeW[K], 0, len(t.Args)-2)
		for _, a := range t.Args[2:] {
			childAny, err := fromTreeAny[K](a, newKey)
			if err != nil {
				return anyNode[K]{}, err
			}
			w, ok := childAny.asW()
			if !ok {
				return anyNode[K]{}, mserr.ErrTypeCheck.New("thresh() tail child must cast to W")
			}
			tail = append(tail, w)
		}
		node, err := NewEThreshold[K](k, head, tail)
		if err != nil {
			return anyNode[K]{}, err
		}
		return anyNode[K]{e: node}, nil

	case "and_v":
		if len(t.Args) != 2 {
			return anyNode[K]{}, mserr.ErrBadDescriptor.New("and_v() takes exactly 2 children")
		}
		leftAny, err := fromTreeAny[K](t.Args[0], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		rightAny, err := fromTreeAny[K](t.Args[1], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		left, ok := leftAny.asV()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("and_v() left child must cast to V")
		}
		if rightAny.v != nil {
			return anyNode[K]{v: VCascadeAnd[K]{Left: left, Right: rightAny.v}}, nil
		}
		right, ok := rightAny.asT()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("and_v() right child must cast to V or T")
		}
		return anyNode[K]{t: TCascadeAnd[K]{Left: left, Right: right}}, nil

	case "and_b":
		if len(t.Args) != 2 {
			return anyNode[K]{}, mserr.ErrBadDescriptor.New("and_b() takes exactly 2 children")
		}
		left, right, err := twoArgsEW[K](t, newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		return anyNode[K]{e: EParallelAnd[K]{E: left, W: right}}, nil

	case "or_b":
		if len(t.Args) != 2 {
			return anyNode[K]{}, mserr.ErrBadDescriptor.New("or_b() takes exactly 2 children")
		}
		left, right, err := twoArgsEW[K](t, newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		return anyNode[K]{e: EParallelOr[K]{E: left, W: right}}, nil

	case "or_d":
		if len(t.Args) != 2 {
			return anyNode[K]{}, mserr.ErrBadDescriptor.New("or_d() takes exactly 2 children")
		}
		e, t2, err := twoArgsET[K](t, newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		return anyNode[K]{e: ECascadeOr[K]{E: e, T: t2}}, nil

	case "or_c":
		if len(t.Args) != 2 {
			return anyNode[K]{}, mserr.ErrBadDescriptor.New("or_c() takes exactly 2 children")
		}
		leftAny, err := fromTreeAny[K](t.Args[0], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		rightAny, err := fromTreeAny[K](t.Args[1], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		e, ok := leftAny.asE()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("or_c() left child must cast to E")
		}
		v, ok := rightAny.asV()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("or_c() right child must cast to V")
		}
		return anyNode[K]{v: VCascadeOr[K]{E: e, V: v}}, nil

	case "or_i":
		if len(t.Args) != 2 {
			return anyNode[K]{}, mserr.ErrBadDescriptor.New("or_i() takes exactly 2 children")
		}
		leftAny, err := fromTreeAny[K](t.Args[0], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		rightAny, err := fromTreeAny[K](t.Args[1], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		if leftAny.v != nil && rightAny.v != nil {
			return anyNode[K]{v: VSwitchOr[K]{Left: leftAny.v, Right: rightAny.v}}, nil
		}
		if leftAny.e != nil && rightAny.t == nil && rightAny.v == nil {
			rt, ok := rightAny.asT()
			if !ok {
				return anyNode[K]{}, mserr.ErrTypeCheck.New("or_i() right child must cast to T")
			}
			return anyNode[K]{e: ESwitchOrLeft[K]{E: leftAny.e, T: rt}}, nil
		}
		if rightAny.e != nil && leftAny.t == nil && leftAny.v == nil {
			lt, ok := leftAny.asT()
			if !ok {
				return anyNode[K]{}, mserr.ErrTypeCheck.New("or_i() left child must cast to T")
			}
			return anyNode[K]{e: ESwitchOrRight[K]{E: rightAny.e, T: lt}}, nil
		}
		lt, ok := leftAny.asT()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("or_i() left child must cast to T")
		}
		rt, ok := rightAny.asT()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("or_i() right child must cast to T")
		}
		return anyNode[K]{t: TSwitchOr[K]{Left: lt, Right: rt}}, nil

	case "andor":
		if len(t.Args) != 3 {
			return anyNode[K]{}, mserr.ErrBadDescriptor.New("andor() takes exactly 3 children")
		}
		eAny, err := fromTreeAny[K](t.Args[0], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		thenAny, err := fromTreeAny[K](t.Args[1], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		elseAny, err := fromTreeAny[K](t.Args[2], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		e, ok := eAny.asE()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("andor() first child must cast to E")
		}
		then, ok := thenAny.asT()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("andor() second child must cast to T")
		}
		els, ok := elseAny.asT()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("andor() third child must cast to T")
		}
		return anyNode[K]{t: TAndOr[K]{E: e, Then: then, Else: els}}, nil

	// Wrapper-cast combinators in their unary spelling; the colon-prefix
	// spelling is unfolded into these above.
	case "a", "s", "v", "t", "l", "u", "n", "d", "c", "j":
		if len(t.Args) != 1 {
			return anyNode[K]{}, mserr.ErrBadDescriptor.Newf("%s() takes exactly 1 child", t.Name)
		}
		inner, err := fromTreeAny[K](t.Args[0], newKey)
		if err != nil {
			return anyNode[K]{}, err
		}
		return applyWrapper[K](t.Name, inner)

	case "pk", "pkh", "wpkh", "sh", "wsh":
		// These only exist at the descriptor envelope layer (package
		// descriptor's fromExprTree); inside a Miniscript fragment they're
		// not a node this grammar has any other meaning for.
		return anyNode[K]{}, mserr.ErrNonTopLevel.Newf("%q is a descriptor-level name, not a Miniscript fragment", t.Name)

	default:
		return anyNode[K]{}, mserr.ErrBadDescriptor.Newf("unrecognized Miniscript node %q", t.Name)
	}
}

func applyWrapper[K key.Key](name string, inner anyNode[K]) (anyNode[K], error) {
	switch name {
	case "a":
		e, ok := inner.asE()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("a() requires an E child")
		}
		return anyNode[K]{w: WCastE[K]{Inner: e}}, nil
	case "s":
		e, ok := inner.asE()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("s() requires an E child")
		}
		return anyNode[K]{w: WSwap[K]{Inner: e}}, nil
	case "v":
		if inner.v != nil {
			return anyNode[K]{v: inner.v}, nil
		}
		e, ok := inner.asE()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("v() requires an E or V child")
		}
		return anyNode[K]{v: VCastE[K]{Inner: e}}, nil
	case "t":
		v, ok := inner.asV()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("t() requires a V child")
		}
		return anyNode[K]{t: TCastV[K]{Inner: v}}, nil
	case "l":
		e, ok := inner.asE()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("l() requires an E child")
		}
		return anyNode[K]{e: ELikely[K]{Inner: e}}, nil
	case "u":
		e, ok := inner.asE()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("u() requires an E child")
		}
		return anyNode[K]{e: EUnlikely[K]{Inner: e}}, nil
	case "n":
		e, ok := inner.asE()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("n() requires an E child")
		}
		return anyNode[K]{e: ENonZero[K]{Inner: e}}, nil
	case "d":
		v, ok := inner.asV()
		if !ok {
			return anyNode[K]{}, mserr.ErrTypeCheck.New("d() requires a V child")
		}
		return anyNode[K]{e: EDupIf[K]{Inner: v}}, nil
	case "c", "j":
		// Folded into the terminal combinators (pk_k/pk_h already bundle
		// CHECKSIG; no node in this library needs a bare size-check cast),
		// so these pass their child through unchanged.
		return inner, nil
	default:
		return anyNode[K]{}, mserr.ErrBadDescriptor.Newf("unrecognized wrapper %q", name)
	}
}

func twoArgsEW[K key.Key](t expr.Tree, newKey func(string) (K, error)) (NodeE[K], NodeW[K], error) {
	leftAny, err := fromTreeAny[K](t.Args[0], newKey)
	if err != nil {
		return nil, nil, err
	}
	rightAny, err := fromTreeAny[K](t.Args[1], newKey)
	if err != nil {
		return nil, nil, err
	}
	left, ok := leftAny.asE()
	if !ok {
		return nil, nil, mserr.ErrTypeCheck.Newf("%s() first child must cast to E", t.Name)
	}
	right, ok := rightAny.asW()
	if !ok {
		return nil, nil, mserr.ErrTypeCheck.Newf("%s() second child must cast to W", t.Name)
	}
	return left, right, nil
}

func twoArgsET[K key.Key](t expr.Tree, newKey func(string) (K, error)) (NodeE[K], NodeT[K], error) {
	leftAny, err := fromTreeAny[K](t.Args[0], newKey)
	if err != nil {
		return nil, nil, err
	}
	rightAny, err := fromTreeAny[K](t.Args[1], newKey)
	if err != nil {
		return nil, nil, err
	}
	left, ok := leftAny.asE()
	if !ok {
		return nil, nil, mserr.ErrTypeCheck.Newf("%s() first child must cast to E", t.Name)
	}
	right, ok := rightAny.asT()
	if !ok {
		return nil, nil, mserr.ErrTypeCheck.Newf("%s() second child must cast to T", t.Name)
	}
	return left, right, nil
}

func leafKey[K key.Key](t expr.Tree, newKey func(string) (K, error)) (K, error) {
	var zero K
	if len(t.Args) != 1 {
		return zero, mserr.ErrBadDescriptor.Newf("%s() takes exactly 1 key argument", t.Name)
	}
	return newKey(t.Args[0].Name)
}

func leafNumber(t expr.Tree) (uint32, error) {
	if len(t.Args) != 1 {
		return 0, mserr.ErrBadDescriptor.Newf("%s() takes exactly 1 numeric argument", t.Name)
	}
	n, err := strconv.ParseUint(t.Args[0].Name, 10, 32)
	if err != nil {
		return 0, mserr.ErrBadDescriptor.Newf("%s() argument: %s", t.Name, err)
	}
	return uint32(n), nil
}

func leafHex(t expr.Tree, width int) ([]byte, error) {
	if len(t.Args) != 1 {
		return nil, mserr.ErrBadDescriptor.Newf("%s() takes exactly 1 hex argument", t.Name)
	}
	b, err := hex.DecodeString(t.Args[0].Name)
	if err != nil {
		return nil, mserr.ErrBadDescriptor.Newf("%s() argument: %s", t.Name, err)
	}
	if len(b) != width {
		return nil, mserr.ErrContextError.Newf("%s() digest must be %d bytes, got %d", t.Name, width, len(b))
	}
	return b, nil
}

func hashFnByName(name string) HashFn {
	switch name {
	case "sha256":
		return Sha256
	case "hash256":
		return DoubleSha256
	case "ripemd160":
		return Ripemd160
	case "hash160":
		return Hash160Fn
	default:
		panic("miniscript: unreachable hash name " + name)
	}
}
