// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package descriptor

import (
	"github.com/pkt-cash/miniscript/expr"
	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/miniscript"
	"github.com/pkt-cash/miniscript/mserr"
)

// Parse reads a textual output descriptor — pk(K), pkh(K), wpkh(K),
// sh(wpkh(K)), sh(fragment), wsh(fragment), sh(wsh(fragment)), or a bare
// Miniscript fragment used with no envelope at all — and resolves it to a
// Descriptor. newKey turns this descriptor's key-position text (typically
// hex-encoded compressed points) into K.
func Parse[K key.Key](s string, newKey func(string) (K, error)) (Descriptor[K], error) {
	t, err := expr.Parse(s)
	if err != nil {
		return Descriptor[K]{}, err
	}
	return fromExprTree(t, newKey)
}

func fromExprTree[K key.Key](t expr.Tree, newKey func(string) (K, error)) (Descriptor[K], error) {
	switch t.Name {
	case "pk":
		k, err := singleKeyArg(t, newKey)
		if err != nil {
			return Descriptor[K]{}, err
		}
		return NewPk(k), nil
	case "pkh":
		k, err := singleKeyArg(t, newKey)
		if err != nil {
			return Descriptor[K]{}, err
		}
		return NewPkh(k), nil
	case "wpkh":
		k, err := singleKeyArg(t, newKey)
		if err != nil {
			return Descriptor[K]{}, err
		}
		return NewWpkh(k), nil
	case "sh":
		inner, err := singleArg(t)
		if err != nil {
			return Descriptor[K]{}, err
		}
		switch inner.Name {
		case "wpkh":
			k, err := singleKeyArg(inner, newKey)
			if err != nil {
				return Descriptor[K]{}, err
			}
			return NewShWpkh(k), nil
		case "wsh":
			frag, err := singleArg(inner)
			if err != nil {
				return Descriptor[K]{}, err
			}
			node, err := miniscript.FromTree(frag, newKey)
			if err != nil {
				return Descriptor[K]{}, err
			}
			return NewShWsh(node), nil
		default:
			node, err := miniscript.FromTree(inner, newKey)
			if err != nil {
				return Descriptor[K]{}, err
			}
			return NewSh(node), nil
		}
	case "wsh":
		inner, err := singleArg(t)
		if err != nil {
			return Descriptor[K]{}, err
		}
		node, err := miniscript.FromTree(inner, newKey)
		if err != nil {
			return Descriptor[K]{}, err
		}
		return NewWsh(node), nil
	default:
		node, err := miniscript.FromTree(t, newKey)
		if err != nil {
			return Descriptor[K]{}, err
		}
		return NewBare(node), nil
	}
}

func singleArg(t expr.Tree) (expr.Tree, error) {
	if len(t.Args) != 1 {
		return expr.Tree{}, mserr.ErrBadDescriptor.Newf("%s takes exactly one argument, got %d", t.Name, len(t.Args))
	}
	return t.Args[0], nil
}

func singleKeyArg[K key.Key](t expr.Tree, newKey func(string) (K, error)) (K, error) {
	var zero K
	arg, err := singleArg(t)
	if err != nil {
		return zero, err
	}
	if len(arg.Args) != 0 {
		return zero, mserr.ErrBadDescriptor.Newf("%s: key argument must be a leaf, got %q", t.Name, arg.String())
	}
	return newKey(arg.Name)
}

// String renders d back to its canonical textual form.
func (d Descriptor[K]) String() string {
	switch d.Kind {
	case Bare:
		return d.Inner.String()
	case Pk:
		return "pk(" + d.Key.String() + ")"
	case Pkh:
		return "pkh(" + d.Key.String() + ")"
	case Wpkh:
		return "wpkh(" + d.Key.String() + ")"
	case ShWpkh:
		return "sh(wpkh(" + d.Key.String() + "))"
	case Sh:
		return "sh(" + d.Inner.String() + ")"
	case Wsh:
		return "wsh(" + d.Inner.String() + ")"
	case ShWsh:
		return "sh(wsh(" + d.Inner.String() + "))"
	default:
		return "<invalid descriptor>"
	}
}
