// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package descriptor implements the output-descriptor envelope layer on
// top of package miniscript: the handful of ways a Miniscript fragment (or
// a bare key) is embedded into a scriptPubKey — P2PK, P2PKH, P2WPKH,
// P2SH-P2WPKH, P2SH, P2WSH, and P2SH-P2WSH — and the corresponding address
// and witness/scriptSig derivation.
package descriptor

import (
	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/miniscript"
)

// Kind identifies which envelope wraps a Descriptor's payload.
type Kind int

const (
	// Bare is a raw Miniscript fragment used directly as the
	// scriptPubKey, with no P2SH/P2WSH wrapping.
	Bare Kind = iota
	// Pk is pk(K): <pk> OP_CHECKSIG as the scriptPubKey.
	Pk
	// Pkh is pkh(K): the classic P2PKH template.
	Pkh
	// Wpkh is wpkh(K): P2WPKH (native segwit v0 key hash).
	Wpkh
	// ShWpkh is sh(wpkh(K)): a P2WPKH redeemScript wrapped in P2SH for
	// wallets that haven't adopted native segwit addresses.
	ShWpkh
	// Sh is sh(fragment): a Miniscript fragment as a legacy P2SH
	// redeemScript.
	Sh
	// Wsh is wsh(fragment): a Miniscript fragment as a P2WSH witness
	// script.
	Wsh
	// ShWsh is sh(wsh(fragment)): a P2WSH witness script wrapped in P2SH.
	ShWsh
)

func (k Kind) String() string {
	switch k {
	case Bare:
		return "bare"
	case Pk:
		return "pk"
	case Pkh:
		return "pkh"
	case Wpkh:
		return "wpkh"
	case ShWpkh:
		return "sh(wpkh)"
	case Sh:
		return "sh"
	case Wsh:
		return "wsh"
	case ShWsh:
		return "sh(wsh)"
	default:
		return "unknown"
	}
}

// Descriptor is the envelope sum type: exactly one of Key (for the
// single-key envelopes) or Inner (for the Miniscript-bearing envelopes)
// is meaningful, selected by Kind.
type Descriptor[K key.Key] struct {
	Kind  Kind
	Key   K
	Inner miniscript.NodeT[K]
}

// NewPk builds a pk(K) descriptor.
func NewPk[K key.Key](k K) Descriptor[K] { return Descriptor[K]{Kind: Pk, Key: k} }

// NewPkh builds a pkh(K) descriptor.
func NewPkh[K key.Key](k K) Descriptor[K] { return Descriptor[K]{Kind: Pkh, Key: k} }

// NewWpkh builds a wpkh(K) descriptor.
func NewWpkh[K key.Key](k K) Descriptor[K] { return Descriptor[K]{Kind: Wpkh, Key: k} }

// NewShWpkh builds a sh(wpkh(K)) descriptor.
func NewShWpkh[K key.Key](k K) Descriptor[K] { return Descriptor[K]{Kind: ShWpkh, Key: k} }

// NewBare builds a bare Miniscript descriptor.
func NewBare[K key.Key](inner miniscript.NodeT[K]) Descriptor[K] {
	return Descriptor[K]{Kind: Bare, Inner: inner}
}

// NewSh builds a sh(fragment) descriptor.
func NewSh[K key.Key](inner miniscript.NodeT[K]) Descriptor[K] {
	return Descriptor[K]{Kind: Sh, Inner: inner}
}

// NewWsh builds a wsh(fragment) descriptor.
func NewWsh[K key.Key](inner miniscript.NodeT[K]) Descriptor[K] {
	return Descriptor[K]{Kind: Wsh, Inner: inner}
}

// NewShWsh builds a sh(wsh(fragment)) descriptor.
func NewShWsh[K key.Key](inner miniscript.NodeT[K]) Descriptor[K] {
	return Descriptor[K]{Kind: ShWsh, Inner: inner}
}

// isSegwit reports whether this envelope's satisfaction is a witness
// stack (true) or a scriptSig (false).
func (d Descriptor[K]) isSegwit() bool {
	switch d.Kind {
	case Wpkh, ShWpkh, Wsh, ShWsh:
		return true
	default:
		return false
	}
}

// MaxSatisfactionWeight is the worst-case serialized witness/scriptSig
// size this descriptor's satisfaction can reach, mirroring
// miniscript.Node.MaxSatisfactionSize for the envelope-level fragments
// (pk carries a single signature; pkh/wpkh/sh(wpkh) carry a signature and
// the 33-byte public key, costed like pk_h).
func (d Descriptor[K]) MaxSatisfactionWeight() int {
	segwit := d.isSegwit()
	switch d.Kind {
	case Pk:
		return miniscript.MaxSigWeight(segwit)
	case Pkh, Wpkh, ShWpkh:
		return miniscript.ECheckSigHash[K]{}.MaxSatisfactionSize(segwit)
	default:
		return d.Inner.MaxSatisfactionSize(segwit)
	}
}
