// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package key_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkt-cash/miniscript/key"
)

const testPubkeyHex = "020000000000000000000000000000000000000000000000000000000000000002"

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	k, err := key.Parse(testPubkeyHex)
	require.NoError(t, err)
	assert.Equal(t, testPubkeyHex, k.String())

	raw, err := k.ToPublicKey()
	require.NoError(t, err)
	assert.Equal(t, testPubkeyHex, hexString(raw[:]))
}

func TestParseFromCompressed(t *testing.T) {
	t.Parallel()

	k, err := key.Parse(testPubkeyHex)
	require.NoError(t, err)
	raw, err := k.ToPublicKey()
	require.NoError(t, err)

	k2, err := key.ParseFromCompressed(raw)
	require.NoError(t, err)
	assert.Equal(t, k.String(), k2.String())
}

func TestParseRejectsBadLength(t *testing.T) {
	t.Parallel()

	_, err := key.Parse("02aabb")
	require.Error(t, err)
}

func TestParseRejectsInvalidPoint(t *testing.T) {
	t.Parallel()

	// 0x04 is the uncompressed-point marker; a 33-byte push with that
	// leading byte is never a valid compressed key regardless of the
	// coordinate bytes that follow.
	_, err := key.Parse("040000000000000000000000000000000000000000000000000000000000000002")
	require.Error(t, err)
}

func TestHash160IsDeterministic(t *testing.T) {
	t.Parallel()

	k, err := key.Parse(testPubkeyHex)
	require.NoError(t, err)

	h1, err := k.Hash160()
	require.NoError(t, err)
	h2, err := k.Hash160()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[2*i] = digits[c>>4]
		out[2*i+1] = digits[c&0xf]
	}
	return string(out)
}
