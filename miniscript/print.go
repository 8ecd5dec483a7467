// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import "github.com/pkt-cash/miniscript/key"

// Print renders a fragment's canonical textual form. It is the inverse of
// FromTree(expr.Parse(s)): parsing Print(n) reproduces a fragment
// equivalent to n, except for pk_h. An ECheckSigHash keeps only its key
// hash, so pk_h prints that 20-byte hash, which FromTree's pk_h (expecting
// a key) does not accept.
func Print[K key.Key](n Node[K]) string { return n.String() }
