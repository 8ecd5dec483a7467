// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package descriptor_test

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkt-cash/miniscript/descriptor"
	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/miniscript"
)

// testPubkeyHex is the literal key shared by the address-derivation tests.
const testPubkeyHex = "020000000000000000000000000000000000000000000000000000000000000002"

func parse(t *testing.T, s string) descriptor.Descriptor[key.Concrete] {
	t.Helper()
	d, err := descriptor.Parse(s, key.Parse)
	require.NoError(t, err)
	return d
}

// TestPkScriptPubKey: pk(<hex>) produces the 35-byte <pk> OP_CHECKSIG
// program, 0x21 push-33 followed by 0xac (OP_CHECKSIG).
func TestPkScriptPubKey(t *testing.T) {
	t.Parallel()

	d := parse(t, "pk("+testPubkeyHex+")")
	script, err := d.ScriptPubKey()
	require.NoError(t, err)

	require.Len(t, script, 35)
	assert.Equal(t, byte(0x21), script[0])
	assert.Equal(t, testPubkeyHex, hex.EncodeToString(script[1:34]))
	assert.Equal(t, byte(0xac), script[34])
}

// TestPkhAddress: pkh(<hex>) derives the mainnet address
// 1D7nRvrRgzCg9kYBwhPH3j3Gs6SmsRg3Wq.
func TestPkhAddress(t *testing.T) {
	t.Parallel()

	d := parse(t, "pkh("+testPubkeyHex+")")
	addr, err := d.Address(&chaincfg.MainNetParams)
	require.NoError(t, err)
	assert.Equal(t, "1D7nRvrRgzCg9kYBwhPH3j3Gs6SmsRg3Wq", addr.EncodeAddress())
}

// TestWpkhAddress: wpkh(<hex>) derives the mainnet address
// bc1qsn57m9drscflq5nl76z6ny52hck5w4x5wqd9yt.
func TestWpkhAddress(t *testing.T) {
	t.Parallel()

	d := parse(t, "wpkh("+testPubkeyHex+")")
	addr, err := d.Address(&chaincfg.MainNetParams)
	require.NoError(t, err)
	assert.Equal(t, "bc1qsn57m9drscflq5nl76z6ny52hck5w4x5wqd9yt", addr.EncodeAddress())
}

// TestShWpkhAddressAndScriptSig: sh(wpkh(<hex>)) derives the mainnet
// address 3PjMEzoveVbvajcnDDuxcJhsuqPHgydQXq, and its unsigned scriptSig
// is a 23-byte push of the inner wpkh scriptPubKey.
func TestShWpkhAddressAndScriptSig(t *testing.T) {
	t.Parallel()

	d := parse(t, "sh(wpkh("+testPubkeyHex+"))")
	addr, err := d.Address(&chaincfg.MainNetParams)
	require.NoError(t, err)
	assert.Equal(t, "3PjMEzoveVbvajcnDDuxcJhsuqPHgydQXq", addr.EncodeAddress())

	inner := parse(t, "wpkh("+testPubkeyHex+")")
	innerScript, err := inner.ScriptPubKey()
	require.NoError(t, err)
	require.Len(t, innerScript, 22)

	sat := newFixedSigSatisfier(71)
	txin, err := d.Satisfy(sat)
	require.NoError(t, err)

	// 0x16 (22) push-opcode followed by the 22-byte inner scriptPubKey.
	require.Len(t, txin.ScriptSig, 23)
	assert.Equal(t, byte(0x16), txin.ScriptSig[0])
	assert.Equal(t, innerScript, txin.ScriptSig[1:])
	require.Len(t, txin.Witness, 2)

	// The redeemScript push is known before any signature exists, so the
	// unsigned scriptSig already equals the satisfied one.
	unsigned, err := d.UnsignedScriptSig()
	require.NoError(t, err)
	assert.Equal(t, txin.ScriptSig, unsigned)
}

// TestWitnessScriptPerEnvelope: the direct envelopes expose their own
// program as the witness script, the hash-commitment ones the script the
// spender must reveal.
func TestWitnessScriptPerEnvelope(t *testing.T) {
	t.Parallel()

	t.Run("pk", func(t *testing.T) {
		t.Parallel()
		d := parse(t, "pk("+testPubkeyHex+")")
		ws, err := d.WitnessScript()
		require.NoError(t, err)
		spk, err := d.ScriptPubKey()
		require.NoError(t, err)
		assert.Equal(t, spk, ws)
	})

	t.Run("wpkh", func(t *testing.T) {
		t.Parallel()
		// wpkh's witness script is the implicit P2PKH program, not the
		// OP_0 <hash> commitment it is spent through.
		d := parse(t, "wpkh("+testPubkeyHex+")")
		ws, err := d.WitnessScript()
		require.NoError(t, err)
		pkh := parse(t, "pkh("+testPubkeyHex+")")
		pkhScript, err := pkh.ScriptPubKey()
		require.NoError(t, err)
		assert.Equal(t, pkhScript, ws)
	})

	t.Run("wsh", func(t *testing.T) {
		t.Parallel()
		d := parse(t, "wsh(older(1000))")
		ws, err := d.WitnessScript()
		require.NoError(t, err)
		frag, err := miniscript.Encode(d.Inner)
		require.NoError(t, err)
		assert.Equal(t, frag, ws)

		unsigned, err := d.UnsignedScriptSig()
		require.NoError(t, err)
		assert.Empty(t, unsigned)
	})
}

// TestWshTimelocks: wsh(older(n)) and wsh(after(n)) end their witness
// script in the corresponding opcode.
func TestWshTimelocks(t *testing.T) {
	t.Parallel()

	older := parse(t, "older(1000)")
	wsh := descriptor.NewWsh[key.Concrete](older.Inner)
	script, err := miniscript.Encode(wsh.Inner)
	require.NoError(t, err)
	assert.Equal(t, byte(0xb2), script[len(script)-1]) // OP_CHECKSEQUENCEVERIFY

	after := parse(t, "after(1000)")
	wsh2 := descriptor.NewWsh[key.Concrete](after.Inner)
	script2, err := miniscript.Encode(wsh2.Inner)
	require.NoError(t, err)
	assert.Equal(t, byte(0xb1), script2[len(script2)-1]) // OP_CHECKLOCKTIMEVERIFY
}

// fixedSigSatisfier answers every key lookup with one fixed-length
// signature, used to check every envelope's TxIn layout.
type fixedSigSatisfier struct {
	sigLen int
}

func newFixedSigSatisfier(sigLen int) fixedSigSatisfier {
	return fixedSigSatisfier{sigLen: sigLen}
}

func (f fixedSigSatisfier) fixedSig() miniscript.SigAndType {
	return miniscript.SigAndType{Sig: make([]byte, f.sigLen-1), SigHashType: 0x01}
}

func (f fixedSigSatisfier) LookupSig(key.Concrete) (miniscript.SigAndType, bool) {
	return f.fixedSig(), true
}

func (f fixedSigSatisfier) LookupPkhSig(hash [20]byte) (miniscript.SigAndType, key.Concrete, bool) {
	k, err := key.Parse(testPubkeyHex)
	if err != nil {
		return miniscript.SigAndType{}, key.Concrete{}, false
	}
	return f.fixedSig(), k, true
}

func (f fixedSigSatisfier) LookupPreimage(miniscript.HashFn, []byte) ([]byte, bool) { return nil, false }
func (f fixedSigSatisfier) CheckOlder(uint32) bool                                  { return false }
func (f fixedSigSatisfier) CheckAfter(uint32) bool                                  { return false }

// TestEnvelopeSatisfactionLayouts: for every single-key envelope, the
// satisfier's TxIn places the signature (and pubkey, where applicable)
// into scriptSig for legacy envelopes and witness for segwit ones.
func TestEnvelopeSatisfactionLayouts(t *testing.T) {
	t.Parallel()

	sat := newFixedSigSatisfier(71)

	t.Run("pk", func(t *testing.T) {
		t.Parallel()
		d := parse(t, "pk("+testPubkeyHex+")")
		txin, err := d.Satisfy(sat)
		require.NoError(t, err)
		assert.Empty(t, txin.Witness)
		assert.NotEmpty(t, txin.ScriptSig)
	})

	t.Run("pkh", func(t *testing.T) {
		t.Parallel()
		d := parse(t, "pkh("+testPubkeyHex+")")
		txin, err := d.Satisfy(sat)
		require.NoError(t, err)
		assert.Empty(t, txin.Witness)
		assert.NotEmpty(t, txin.ScriptSig)
	})

	t.Run("wpkh", func(t *testing.T) {
		t.Parallel()
		d := parse(t, "wpkh("+testPubkeyHex+")")
		txin, err := d.Satisfy(sat)
		require.NoError(t, err)
		assert.Empty(t, txin.ScriptSig)
		require.Len(t, txin.Witness, 2) // sig, pubkey
	})

	t.Run("sh_wpkh", func(t *testing.T) {
		t.Parallel()
		d := parse(t, "sh(wpkh("+testPubkeyHex+"))")
		txin, err := d.Satisfy(sat)
		require.NoError(t, err)
		assert.NotEmpty(t, txin.ScriptSig) // the redeemScript push
		require.Len(t, txin.Witness, 2)
	})

	t.Run("wsh", func(t *testing.T) {
		t.Parallel()
		d := parse(t, "wsh(pk_k("+testPubkeyHex+"))")
		txin, err := d.Satisfy(sat)
		require.NoError(t, err)
		assert.Empty(t, txin.ScriptSig)
		require.Len(t, txin.Witness, 2) // sig, witness_script
	})

	t.Run("sh_wsh", func(t *testing.T) {
		t.Parallel()
		d := parse(t, "sh(wsh(pk_k("+testPubkeyHex+")))")
		txin, err := d.Satisfy(sat)
		require.NoError(t, err)
		assert.NotEmpty(t, txin.ScriptSig) // the P2WSH redeemScript push
		require.Len(t, txin.Witness, 2)
	})

	t.Run("sh", func(t *testing.T) {
		t.Parallel()
		d := parse(t, "sh(pk_k("+testPubkeyHex+"))")
		txin, err := d.Satisfy(sat)
		require.NoError(t, err)
		assert.Empty(t, txin.Witness)
		assert.NotEmpty(t, txin.ScriptSig) // sig push + witness_script push
	})

	t.Run("bare", func(t *testing.T) {
		t.Parallel()
		d := parse(t, "pk_k("+testPubkeyHex+")")
		txin, err := d.Satisfy(sat)
		require.NoError(t, err)
		assert.Empty(t, txin.Witness)
		assert.NotEmpty(t, txin.ScriptSig)
	})
}

// TestDescriptorStringRoundTrip checks parse/print round-trip at the
// descriptor-envelope layer.
func TestDescriptorStringRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []string{
		"pk(" + testPubkeyHex + ")",
		"pkh(" + testPubkeyHex + ")",
		"wpkh(" + testPubkeyHex + ")",
		"sh(wpkh(" + testPubkeyHex + "))",
		"sh(pk_k(" + testPubkeyHex + "))",
		"wsh(pk_k(" + testPubkeyHex + "))",
		"sh(wsh(pk_k(" + testPubkeyHex + ")))",
	}

	for _, c := range cases {
		c := c
		t.Run(c, func(t *testing.T) {
			t.Parallel()
			d := parse(t, c)
			assert.Equal(t, c, d.String())
		})
	}
}

// TestMaxSatisfactionWeightIsDeterministic: the weight estimate is a pure
// function of the descriptor, independent of any satisfier.
func TestMaxSatisfactionWeightIsDeterministic(t *testing.T) {
	t.Parallel()

	d := parse(t, "wsh(pk_k("+testPubkeyHex+"))")
	w1 := d.MaxSatisfactionWeight()
	w2 := d.MaxSatisfactionWeight()
	assert.Equal(t, w1, w2)
	assert.Greater(t, w1, 0)
}
