// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/mserr"
)

// Satisfy builds the witness stack that makes root evaluate true under s,
// bottom-to-top in the order Script expects them pushed (the stack's last
// element is the one popped first). It returns an error if no combination
// of the oracle's answers satisfies the fragment.
func Satisfy[K key.Key](root Node[K], s Satisfier[K]) ([][]byte, error) {
	stack, ok := root.satisfy(s)
	if !ok {
		return nil, mserr.ErrCouldNotSatisfy.New("")
	}
	return stack, nil
}
