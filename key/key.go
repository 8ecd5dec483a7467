// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package key defines the public-key capability the miniscript AST is
// polymorphic over: parse/print plus lowering to the two byte forms Script
// actually embeds (a 33-byte compressed point and its 20-byte hash).
package key

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// Key is the capability every AST key type must expose: any type
// satisfying it can fill the AST's K type parameter.
type Key interface {
	// String prints the key in the same surface syntax it would be parsed
	// from (round-trip with the package's parse function).
	String() string

	// ToPublicKey lowers the key to a 33-byte compressed secp256k1 point.
	ToPublicKey() ([33]byte, error)

	// Hash160 lowers the key to HASH160(compressed point).
	Hash160() ([20]byte, error)
}

// Concrete is the decoded-from-Script instantiation of K: a real,
// already-validated secp256k1 public key. It is the key type
// miniscript.Decode produces when given ParseFromCompressed.
type Concrete struct {
	pub *btcec.PublicKey
}

// FromPublicKey wraps an already-parsed public key.
func FromPublicKey(pub *btcec.PublicKey) Concrete {
	return Concrete{pub: pub}
}

// Parse decodes a hex-encoded 33-byte compressed public key, the textual
// form used inside descriptor/miniscript key positions (e.g. pk_k(<hex>)).
func Parse(s string) (Concrete, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Concrete{}, fmt.Errorf("invalid key hex %q: %w", s, err)
	}
	if len(b) != 33 {
		return Concrete{}, fmt.Errorf("public key must be 33 bytes, got %d", len(b))
	}
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return Concrete{}, fmt.Errorf("invalid public key %q: %w", s, err)
	}
	return Concrete{pub: pub}, nil
}

// ParseFromCompressed builds a Concrete directly from the 33 raw bytes of a
// compressed point, as produced by the Script lexer's Pubkey token.
func ParseFromCompressed(b [33]byte) (Concrete, error) {
	pub, err := btcec.ParsePubKey(b[:])
	if err != nil {
		return Concrete{}, fmt.Errorf("invalid public key: %w", err)
	}
	return Concrete{pub: pub}, nil
}

func (c Concrete) String() string {
	return hex.EncodeToString(c.pub.SerializeCompressed())
}

func (c Concrete) ToPublicKey() ([33]byte, error) {
	var out [33]byte
	copy(out[:], c.pub.SerializeCompressed())
	return out, nil
}

func (c Concrete) Hash160() ([20]byte, error) {
	var out [20]byte
	copy(out[:], btcutil.Hash160(c.pub.SerializeCompressed()))
	return out, nil
}

// PublicKey exposes the underlying btcec key for signature verification by
// callers that sit above this library (e.g. a wallet's Satisfier
// implementation deciding whether it holds the matching private key).
func (c Concrete) PublicKey() *btcec.PublicKey {
	return c.pub
}
