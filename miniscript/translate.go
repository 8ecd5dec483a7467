// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"fmt"

	"github.com/pkt-cash/miniscript/key"
)

// Translate rebuilds a fragment over a different key type, applying f to
// every key it finds. It preserves the input's exact shape (every
// combinator, wrapper, and threshold arity is carried over unchanged) —
// only the leaves change type.
func Translate[K key.Key, K2 key.Key](n NodeT[K], f func(K) (K2, error)) (NodeT[K2], error) {
	return translateT[K, K2](n, f)
}

func translateE[K key.Key, K2 key.Key](n NodeE[K], f func(K) (K2, error)) (NodeE[K2], error) {
	switch v := n.(type) {
	case ECheckSig[K]:
		k, err := f(v.Key)
		if err != nil {
			return nil, err
		}
		return ECheckSig[K2]{Key: k}, nil
	case ECheckSigHash[K]:
		return ECheckSigHash[K2]{Hash: v.Hash}, nil
	case ECheckMultiSig[K]:
		keys, err := translateKeys[K, K2](v.Keys, f)
		if err != nil {
			return nil, err
		}
		return ECheckMultiSig[K2]{K: v.K, Keys: keys}, nil
	case EHashEqual[K]:
		return EHashEqual[K2]{Fn: v.Fn, Digest: v.Digest}, nil
	case ETime[K]:
		return ETime[K2]{Kind: v.Kind, N: v.N}, nil
	case EThreshold[K]:
		head, err := translateE[K, K2](v.Head, f)
		if err != nil {
			return nil, err
		}
		tail, err := translateWs[K, K2](v.Tail, f)
		if err != nil {
			return nil, err
		}
		return EThreshold[K2]{K: v.K, Head: head, Tail: tail}, nil
	case EParallelAnd[K]:
		e, w, err := translateEW[K, K2](v.E, v.W, f)
		if err != nil {
			return nil, err
		}
		return EParallelAnd[K2]{E: e, W: w}, nil
	case EParallelOr[K]:
		e, w, err := translateEW[K, K2](v.E, v.W, f)
		if err != nil {
			return nil, err
		}
		return EParallelOr[K2]{E: e, W: w}, nil
	case ECascadeOr[K]:
		e, t, err := translateET[K, K2](v.E, v.T, f)
		if err != nil {
			return nil, err
		}
		return ECascadeOr[K2]{E: e, T: t}, nil
	case ESwitchOrLeft[K]:
		e, t, err := translateET[K, K2](v.E, v.T, f)
		if err != nil {
			return nil, err
		}
		return ESwitchOrLeft[K2]{E: e, T: t}, nil
	case ESwitchOrRight[K]:
		e, t, err := translateET[K, K2](v.E, v.T, f)
		if err != nil {
			return nil, err
		}
		return ESwitchOrRight[K2]{E: e, T: t}, nil
	case ELikely[K]:
		in, err := translateE[K, K2](v.Inner, f)
		if err != nil {
			return nil, err
		}
		return ELikely[K2]{Inner: in}, nil
	case EUnlikely[K]:
		in, err := translateE[K, K2](v.Inner, f)
		if err != nil {
			return nil, err
		}
		return EUnlikely[K2]{Inner: in}, nil
	case ENonZero[K]:
		in, err := translateE[K, K2](v.Inner, f)
		if err != nil {
			return nil, err
		}
		return ENonZero[K2]{Inner: in}, nil
	case EDupIf[K]:
		in, err := translateV[K, K2](v.Inner, f)
		if err != nil {
			return nil, err
		}
		return EDupIf[K2]{Inner: in}, nil
	default:
		return nil, fmt.Errorf("miniscript: Translate: unhandled E node %T", n)
	}
}

func translateW[K key.Key, K2 key.Key](n NodeW[K], f func(K) (K2, error)) (NodeW[K2], error) {
	switch v := n.(type) {
	case WSwap[K]:
		in, err := translateE[K, K2](v.Inner, f)
		if err != nil {
			return nil, err
		}
		return WSwap[K2]{Inner: in}, nil
	case WCastE[K]:
		in, err := translateE[K, K2](v.Inner, f)
		if err != nil {
			return nil, err
		}
		return WCastE[K2]{Inner: in}, nil
	default:
		return nil, fmt.Errorf("miniscript: Translate: unhandled W node %T", n)
	}
}

func translateV[K key.Key, K2 key.Key](n NodeV[K], f func(K) (K2, error)) (NodeV[K2], error) {
	switch v := n.(type) {
	case VCastE[K]:
		in, err := translateE[K, K2](v.Inner, f)
		if err != nil {
			return nil, err
		}
		return VCastE[K2]{Inner: in}, nil
	case VCheckSig[K]:
		k, err := f(v.Key)
		if err != nil {
			return nil, err
		}
		return VCheckSig[K2]{Key: k}, nil
	case VCheckMultiSig[K]:
		keys, err := translateKeys[K, K2](v.Keys, f)
		if err != nil {
			return nil, err
		}
		return VCheckMultiSig[K2]{K: v.K, Keys: keys}, nil
	case VHashEqual[K]:
		return VHashEqual[K2]{Fn: v.Fn, Digest: v.Digest}, nil
	case VTime[K]:
		return VTime[K2]{Kind: v.Kind, N: v.N}, nil
	case VThreshold[K]:
		head, err := translateE[K, K2](v.Head, f)
		if err != nil {
			return nil, err
		}
		tail, err := translateWs[K, K2](v.Tail, f)
		if err != nil {
			return nil, err
		}
		return VThreshold[K2]{K: v.K, Head: head, Tail: tail}, nil
	case VCascadeAnd[K]:
		left, err := translateV[K, K2](v.Left, f)
		if err != nil {
			return nil, err
		}
		right, err := translateV[K, K2](v.Right, f)
		if err != nil {
			return nil, err
		}
		return VCascadeAnd[K2]{Left: left, Right: right}, nil
	case VCascadeOr[K]:
		e, err := translateE[K, K2](v.E, f)
		if err != nil {
			return nil, err
		}
		vv, err := translateV[K, K2](v.V, f)
		if err != nil {
			return nil, err
		}
		return VCascadeOr[K2]{E: e, V: vv}, nil
	case VSwitchOr[K]:
		left, err := translateV[K, K2](v.Left, f)
		if err != nil {
			return nil, err
		}
		right, err := translateV[K, K2](v.Right, f)
		if err != nil {
			return nil, err
		}
		return VSwitchOr[K2]{Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("miniscript: Translate: unhandled V node %T", n)
	}
}

func translateT[K key.Key, K2 key.Key](n NodeT[K], f func(K) (K2, error)) (NodeT[K2], error) {
	switch v := n.(type) {
	case TCastV[K]:
		in, err := translateV[K, K2](v.Inner, f)
		if err != nil {
			return nil, err
		}
		return TCastV[K2]{Inner: in}, nil
	case TCastE[K]:
		in, err := translateE[K, K2](v.Inner, f)
		if err != nil {
			return nil, err
		}
		return TCastE[K2]{Inner: in}, nil
	case TCascadeAnd[K]:
		left, err := translateV[K, K2](v.Left, f)
		if err != nil {
			return nil, err
		}
		right, err := translateT[K, K2](v.Right, f)
		if err != nil {
			return nil, err
		}
		return TCascadeAnd[K2]{Left: left, Right: right}, nil
	case TSwitchOr[K]:
		left, err := translateT[K, K2](v.Left, f)
		if err != nil {
			return nil, err
		}
		right, err := translateT[K, K2](v.Right, f)
		if err != nil {
			return nil, err
		}
		return TSwitchOr[K2]{Left: left, Right: right}, nil
	case TAndOr[K]:
		e, err := translateE[K, K2](v.E, f)
		if err != nil {
			return nil, err
		}
		then, err := translateT[K, K2](v.Then, f)
		if err != nil {
			return nil, err
		}
		els, err := translateT[K, K2](v.Else, f)
		if err != nil {
			return nil, err
		}
		return TAndOr[K2]{E: e, Then: then, Else: els}, nil
	case TCascadeOr[K]:
		e, t, err := translateET[K, K2](v.E, v.T, f)
		if err != nil {
			return nil, err
		}
		return TCascadeOr[K2]{E: e, T: t}, nil
	default:
		return nil, fmt.Errorf("miniscript: Translate: unhandled T node %T", n)
	}
}

func translateKeys[K key.Key, K2 key.Key](keys []K, f func(K) (K2, error)) ([]K2, error) {
	out := make([]K2, len(keys))
	for i, k := range keys {
		k2, err := f(k)
		if err != nil {
			return nil, err
		}
		out[i] = k2
	}
	return out, nil
}

func translateWs[K key.Key, K2 key.Key](ws []NodeW[K], f func(K) (K2, error)) ([]NodeW[K2], error) {
	out := make([]NodeW[K2], len(ws))
	for i, w := range ws {
		w2, err := translateW[K, K2](w, f)
		if err != nil {
			return nil, err
		}
		out[i] = w2
	}
	return out, nil
}

func translateEW[K key.Key, K2 key.Key](e NodeE[K], w NodeW[K], f func(K) (K2, error)) (NodeE[K2], NodeW[K2], error) {
	e2, err := translateE[K, K2](e, f)
	if err != nil {
		return nil, nil, err
	}
	w2, err := translateW[K, K2](w, f)
	if err != nil {
		return nil, nil, err
	}
	return e2, w2, nil
}

func translateET[K key.Key, K2 key.Key](e NodeE[K], t NodeT[K], f func(K) (K2, error)) (NodeE[K2], NodeT[K2], error) {
	e2, err := translateE[K, K2](e, f)
	if err != nil {
		return nil, nil, err
	}
	t2, err := translateT[K, K2](t, f)
	if err != nil {
		return nil, nil, err
	}
	return e2, t2, nil
}
