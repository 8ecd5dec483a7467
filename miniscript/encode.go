// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"github.com/btcsuite/btcd/txscript"

	"github.com/pkt-cash/miniscript/key"
)

// Encode serializes a rooted T fragment into raw Script, via a single
// post-order walk through txscript.ScriptBuilder so every push this
// library ever emits goes through the real minimal-push encoder.
func Encode[K key.Key](root NodeT[K]) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	root.(interface{ encodeInto(builder) }).encodeInto(b)
	return b.Script()
}
