// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkt-cash/miniscript/mserr"
	"github.com/pkt-cash/miniscript/token"
)

func TestLexNumberTokens(t *testing.T) {
	t.Parallel()

	toks, err := lex([]byte{0x00, 0x52}) // OP_0, OP_2
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, token.Token{Kind: token.Number, Number: 0}, toks[0])
	assert.Equal(t, token.Token{Kind: token.Number, Number: 2}, toks[1])
	assert.Equal(t, token.Kind(token.End), toks[2].Kind)
}

func TestLexRejectsNonMinimalNumber(t *testing.T) {
	t.Parallel()

	// A 3-byte push 0x99 0x03 0x00 has a redundant all-zero high byte:
	// the same magnitude fits in 2 bytes.
	_, err := lex([]byte{0x03, 0x99, 0x03, 0x00})
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrNonMinimalNumber))
}

func TestLexRejectsSmallPushThatShouldBeOpN(t *testing.T) {
	t.Parallel()

	// A 1-byte push of 0x05 should have used OP_5 instead.
	_, err := lex([]byte{0x01, 0x05})
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrNonMinimalNumber))
}

func TestLexRejectsPushdata1ForShortPush(t *testing.T) {
	t.Parallel()

	_, err := lex([]byte{0x4c, 0x01, 0x69})
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrNonMinimalPush))
}

func TestLexRejectsPushdata2ForShortPush(t *testing.T) {
	t.Parallel()

	_, err := lex([]byte{0x4d, 0x01, 0x00, 0x69})
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrNonMinimalPush))
}

func TestLexRejectsUnknownOpcode(t *testing.T) {
	t.Parallel()

	_, err := lex([]byte{0x50}) // OP_RESERVED
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrUnknownOpcode))
}

func TestLexRejectsTruncatedPush(t *testing.T) {
	t.Parallel()

	_, err := lex([]byte{0x10, 0x01}) // push of 16 bytes, only 1 present
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrEarlyEnd))
}

func TestLexCollapsesHashToken(t *testing.T) {
	t.Parallel()

	digest := make([]byte, 32)
	for i := range digest {
		digest[i] = byte(i)
	}
	script := append([]byte{0xaa, 0x20}, digest...) // OP_HASH256 <32 bytes>
	toks, err := lex(script)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Hash256, toks[0].Kind)
	assert.Equal(t, token.DoubleSha256, toks[0].HashFn)
	assert.Equal(t, digest, toks[0].HashDigest)
}

func TestDecodeMinimalNumberRejectsNegative(t *testing.T) {
	t.Parallel()

	_, err := decodeMinimalNumber([]byte{0x80})
	require.Error(t, err)
}

func TestDecodeEmptyProgramFails(t *testing.T) {
	t.Parallel()

	_, err := Decode[fakeDecodeKey](nil, fakeNewKey)
	require.Error(t, err)
}

type fakeDecodeKey struct{ raw [33]byte }

func (k fakeDecodeKey) String() string               { return "" }
func (k fakeDecodeKey) ToPublicKey() ([33]byte, error) { return k.raw, nil }
func (k fakeDecodeKey) Hash160() ([20]byte, error)     { return [20]byte{}, nil }

func fakeNewKey(raw [33]byte) (fakeDecodeKey, error) { return fakeDecodeKey{raw: raw}, nil }
