// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package miniscript_test

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkt-cash/miniscript/expr"
	"github.com/pkt-cash/miniscript/key"
	"github.com/pkt-cash/miniscript/miniscript"
	"github.com/pkt-cash/miniscript/mserr"
)

// fakeSatisfier answers LookupSig/LookupPkhSig/LookupPreimage/CheckOlder/
// CheckAfter from fixed tables, standing in for a wallet's real oracle.
type fakeSatisfier struct {
	sigs      map[string]miniscript.SigAndType
	pkhSigs   map[[20]byte]pkhEntry
	preimages map[string][]byte
	older     uint32
	after     uint32
}

type pkhEntry struct {
	sig miniscript.SigAndType
	key key.Concrete
}

func newFakeSatisfier() *fakeSatisfier {
	return &fakeSatisfier{
		sigs:      make(map[string]miniscript.SigAndType),
		pkhSigs:   make(map[[20]byte]pkhEntry),
		preimages: make(map[string][]byte),
	}
}

func (f *fakeSatisfier) withSig(k key.Concrete) *fakeSatisfier {
	pk, err := k.ToPublicKey()
	if err != nil {
		panic(err)
	}
	f.sigs[string(pk[:])] = miniscript.SigAndType{Sig: []byte{0x30, 0x01, 0x02}, SigHashType: 0x01}
	return f
}

func (f *fakeSatisfier) withPkhSig(k key.Concrete) *fakeSatisfier {
	h, err := k.Hash160()
	if err != nil {
		panic(err)
	}
	f.pkhSigs[h] = pkhEntry{sig: miniscript.SigAndType{Sig: []byte{0x30, 0x01, 0x02}, SigHashType: 0x01}, key: k}
	return f
}

func (f *fakeSatisfier) withPreimage(fn miniscript.HashFn, digest, preimage []byte) *fakeSatisfier {
	f.preimages[preimageKey(fn, digest)] = preimage
	return f
}

func preimageKey(fn miniscript.HashFn, digest []byte) string {
	return fmt.Sprintf("%d:%s", fn, digest)
}

func (f *fakeSatisfier) LookupSig(k key.Concrete) (miniscript.SigAndType, bool) {
	pk, err := k.ToPublicKey()
	if err != nil {
		return miniscript.SigAndType{}, false
	}
	s, ok := f.sigs[string(pk[:])]
	return s, ok
}

func (f *fakeSatisfier) LookupPkhSig(hash [20]byte) (miniscript.SigAndType, key.Concrete, bool) {
	e, ok := f.pkhSigs[hash]
	return e.sig, e.key, ok
}

func (f *fakeSatisfier) LookupPreimage(fn miniscript.HashFn, hash []byte) ([]byte, bool) {
	p, ok := f.preimages[preimageKey(fn, hash)]
	return p, ok
}

func (f *fakeSatisfier) CheckOlder(n uint32) bool { return f.older >= n }
func (f *fakeSatisfier) CheckAfter(n uint32) bool { return f.after >= n }

// testKey derives a deterministic, always-valid secp256k1 keypair from a
// small scalar: any nonzero 32-byte value below the curve order is a valid
// private key, so these never risk an invalid-point failure the way a
// hand-picked compressed-point literal would.
func testKey(scalar byte) key.Concrete {
	b := make([]byte, 32)
	b[31] = scalar
	priv, _ := btcec.PrivKeyFromBytes(b)
	return key.FromPublicKey(priv.PubKey())
}

func newKeyFromHex(s string) (key.Concrete, error) { return key.Parse(s) }

func newKeyFromCompressed(raw [33]byte) (key.Concrete, error) { return key.ParseFromCompressed(raw) }

func parseFragment(t *testing.T, s string) miniscript.NodeT[key.Concrete] {
	t.Helper()
	tr, err := expr.Parse(s)
	require.NoError(t, err)
	n, err := miniscript.FromTree[key.Concrete](tr, newKeyFromHex)
	require.NoError(t, err)
	return n
}

// TestScriptRoundTrip checks decode(encode(x)) = x via the textual
// surface for a selection of fragment shapes.
func TestScriptRoundTrip(t *testing.T) {
	t.Parallel()

	k1 := testKey(1)
	k2 := testKey(2)

	cases := []string{
		"pk_k(" + k1.String() + ")",
		"pk_h(" + k1.String() + ")",
		"older(1000)",
		"after(500000)",
		"multi(2," + k1.String() + "," + k2.String() + ")",
		"and_v(v(pk_k(" + k1.String() + ")),pk_h(" + k2.String() + "))",
		"or_d(pk_k(" + k1.String() + "),pk_k(" + k2.String() + "))",
		"or_i(pk_k(" + k1.String() + "),pk_k(" + k2.String() + "))",
		"andor(pk_k(" + k1.String() + "),pk_k(" + k2.String() + "),pk_k(" + k1.String() + "))",
		"thresh(1,pk_k(" + k1.String() + "),s(pk_k(" + k2.String() + ")))",
		"t(and_v(v(pk_k(" + k1.String() + ")),v(pk_k(" + k2.String() + "))))",
		"and_v(v(pk_k(" + k1.String() + ")),and_v(v(pk_k(" + k2.String() + ")),older(1000)))",
	}

	for _, c := range cases {
		c := c
		t.Run(c, func(t *testing.T) {
			t.Parallel()

			node := parseFragment(t, c)
			script, err := miniscript.Encode[key.Concrete](node)
			require.NoError(t, err)

			decoded, err := miniscript.Decode[key.Concrete](script, newKeyFromCompressed)
			require.NoError(t, err)

			reScript, err := miniscript.Encode[key.Concrete](decoded)
			require.NoError(t, err)
			assert.Equal(t, script, reScript)
		})
	}
}

// TestTextualRoundTrip checks parse(print(d)) = d for every combinator
// this library supports -- including the wrapper-cast
// fragments whose String() must stay in the unary-call spelling FromTree
// actually parses.
func TestTextualRoundTrip(t *testing.T) {
	t.Parallel()

	k1 := testKey(1)
	k2 := testKey(2)

	cases := []string{
		"pk_k(" + k1.String() + ")",
		"and_v(v(pk_k(" + k1.String() + ")),pk_k(" + k2.String() + "))",
		"and_b(pk_k(" + k1.String() + "),s(pk_k(" + k2.String() + ")))",
		"or_b(pk_k(" + k1.String() + "),a(pk_k(" + k2.String() + ")))",
		"l(pk_k(" + k1.String() + "))",
		"u(pk_k(" + k1.String() + "))",
		"n(pk_k(" + k1.String() + "))",
		"t(v(pk_k(" + k1.String() + ")))",
		"d(v(pk_k(" + k1.String() + ")))",
		"thresh(1,pk_k(" + k1.String() + "),s(pk_k(" + k2.String() + ")))",
		"t(v(thresh(1,pk_k(" + k1.String() + "),s(pk_k(" + k2.String() + ")))))",
	}

	for _, c := range cases {
		c := c
		t.Run(c, func(t *testing.T) {
			t.Parallel()

			tr, err := expr.Parse(c)
			require.NoError(t, err)
			node, err := miniscript.FromTree[key.Concrete](tr, newKeyFromHex)
			require.NoError(t, err)

			printed := miniscript.Print[key.Concrete](node)
			assert.Equal(t, c, printed)

			tr2, err := expr.Parse(printed)
			require.NoError(t, err)
			node2, err := miniscript.FromTree[key.Concrete](tr2, newKeyFromHex)
			require.NoError(t, err)
			assert.Equal(t, printed, miniscript.Print[key.Concrete](node2))
		})
	}
}

// TestWrapperPrefixSpelling checks that the colon-prefix wrapper notation
// resolves to the same fragment as the equivalent unary nesting.
func TestWrapperPrefixSpelling(t *testing.T) {
	t.Parallel()

	k1 := testKey(1)

	cases := []struct{ prefix, unary string }{
		{"v:pk_k(" + k1.String() + ")", "v(pk_k(" + k1.String() + "))"},
		{"tv:pk_k(" + k1.String() + ")", "t(v(pk_k(" + k1.String() + ")))"},
		{"dv:pk_k(" + k1.String() + ")", "d(v(pk_k(" + k1.String() + ")))"},
		{"and_v(v:pk_k(" + k1.String() + "),older(1000))", "and_v(v(pk_k(" + k1.String() + ")),older(1000))"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.prefix, func(t *testing.T) {
			t.Parallel()

			fromPrefix := parseFragment(t, c.prefix)
			fromUnary := parseFragment(t, c.unary)
			assert.Equal(t, fromUnary, fromPrefix)

			// Print canonicalizes both to the same unary spelling.
			assert.Equal(t,
				miniscript.Print[key.Concrete](fromUnary),
				miniscript.Print[key.Concrete](fromPrefix))
		})
	}
}

// TestWrappedFragmentRejectedAtRoot exercises the ErrAtOutsideOr path: an
// 'a'-wrapped fragment is a W and needs a parallel composition around it.
func TestWrappedFragmentRejectedAtRoot(t *testing.T) {
	t.Parallel()

	tr, err := expr.Parse("a:pk_k(" + testKey(1).String() + ")")
	require.NoError(t, err)
	_, err = miniscript.FromTree[key.Concrete](tr, newKeyFromHex)
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrAtOutsideOr))
}

// TestDescriptorOnlyNameRejectedInsideFragment exercises the ErrNonTopLevel
// path: pk/pkh/wpkh/sh/wsh only exist at the descriptor envelope layer.
func TestDescriptorOnlyNameRejectedInsideFragment(t *testing.T) {
	t.Parallel()

	tr, err := expr.Parse("sh(pk(" + testKey(1).String() + "))")
	require.NoError(t, err)
	_, err = miniscript.FromTree[key.Concrete](tr, newKeyFromHex)
	require.Error(t, err)
}

// TestSatisfactionSoundnessSingleSig checks witness soundness for a bare
// pk_k fragment: the produced witness, appended to the scriptPubKey,
// evaluates the underlying opcodes as CHECKSIG expects (a signature push
// followed by CHECKSIG). This harness doesn't execute Script (no consensus
// engine is in scope), so it checks the witness shape directly instead.
func TestSatisfactionSoundnessSingleSig(t *testing.T) {
	t.Parallel()

	k1 := testKey(1)
	node := parseFragment(t, "pk_k("+k1.String()+")")

	sat := newFakeSatisfier().withSig(k1)
	stack, err := miniscript.Satisfy[key.Concrete](node, sat)
	require.NoError(t, err)
	require.Len(t, stack, 1)

	sig, _ := sat.LookupSig(k1)
	assert.Equal(t, sig.Bytes(), stack[0])
}

func TestSatisfactionFailsWithoutSig(t *testing.T) {
	t.Parallel()

	k1 := testKey(1)
	node := parseFragment(t, "pk_k("+k1.String()+")")

	sat := newFakeSatisfier()
	_, err := miniscript.Satisfy[key.Concrete](node, sat)
	require.Error(t, err)
}

// TestSatisfactionMinimality: for or_d(E, T), the satisfier picks
// whichever satisfiable branch serializes smaller. A
// hashlock's preimage is always 32 bytes (the fixed OP_SIZE 32 check every
// HashEqual template enforces, regardless of hash kind), so here the
// fake-stub signature -- deliberately tiny -- is the smaller branch.
func TestSatisfactionMinimality(t *testing.T) {
	t.Parallel()

	k1 := testKey(1) // left branch: the fake sig stub, 4 bytes

	preimage := make([]byte, 32)
	preimage[31] = 0x42
	digest := sha256Sum(preimage)

	node := parseFragment(t, "or_d(pk_k("+k1.String()+"),sha256("+hex.EncodeToString(digest)+"))")

	sat := newFakeSatisfier().withSig(k1).withPreimage(miniscript.Sha256, digest, preimage)
	stack, err := miniscript.Satisfy[key.Concrete](node, sat)
	require.NoError(t, err)

	// Both branches are satisfiable; the shorter signature branch must win.
	require.Len(t, stack, 1)
	sig, _ := sat.LookupSig(k1)
	assert.Equal(t, sig.Bytes(), stack[0])
}

// TestThresholdDissatisfiesHashBranch covers a thresh() fragment where a
// sha256() sub-fragment sits on the losing side: its dissatisfaction must
// push a preimage whose length matches the encoded OP_SIZE 32 check
// exactly, or the resulting witness would abort the whole script instead
// of gracefully reporting that sub-fragment false.
func TestThresholdDissatisfiesHashBranch(t *testing.T) {
	t.Parallel()

	k1 := testKey(1)
	k3 := testKey(3)
	digest := sha256Sum([]byte("unknown preimage, never supplied to the oracle"))

	node := parseFragment(t, "thresh(2,pk_k("+k1.String()+"),s(sha256("+hex.EncodeToString(digest)+")),s(pk_k("+k3.String()+")))")

	sat := newFakeSatisfier().withSig(k1).withSig(k3)
	stack, err := miniscript.Satisfy[key.Concrete](node, sat)
	require.NoError(t, err)
	require.Len(t, stack, 3)

	sig1, _ := sat.LookupSig(k1)
	sig3, _ := sat.LookupSig(k3)
	assert.Equal(t, sig1.Bytes(), stack[0])
	assert.Equal(t, make([]byte, 32), stack[1])
	assert.Equal(t, sig3.Bytes(), stack[2])
}

func TestSatisfactionMinimalityTiesTowardLeft(t *testing.T) {
	t.Parallel()

	k1 := testKey(1)
	k2 := testKey(2)
	node := parseFragment(t, "or_b(pk_k("+k1.String()+"),a(pk_k("+k2.String()+")))")

	sat := newFakeSatisfier().withSig(k1).withSig(k2)
	stack, err := miniscript.Satisfy[key.Concrete](node, sat)
	require.NoError(t, err)

	sig, _ := sat.LookupSig(k1)
	// Both branches satisfy with equal-length signatures; ties favor the
	// left (E) branch, which dissatisfies the right (W) with an empty push.
	assert.Contains(t, stack, sig.Bytes())
}

// TestCanonicalizationRejection: every one of these raw programs must
// fail to decode.
func TestCanonicalizationRejection(t *testing.T) {
	t.Parallel()

	vectors := map[string][]byte{
		"empty":                       {},
		"bare OP_0":                   {0x00},
		"OP_RESERVED":                 {0x50},
		"bare OP_VERIFY":              {0x69},
		"truncated 16-byte push":      {0x10, 0x01},
		"non-minimal number push":     {0x03, 0x99, 0x03, 0x00, 0xb2},
		"unknown opcode 0x85":         {0x85, 0x59, 0xb2},
		"PUSHDATA1 for 1-byte push":   {0x4c, 0x01, 0x69, 0xb2},
		"wrong OR opcode":             {0x00, 0x00, 0xaf, 0x00, 0x00, 0xae, 0x85},
		"parallel-OR without wrapper": {0x00, 0x00, 0xaf, 0x00, 0x00, 0xae, 0x9b},
	}

	for name, script := range vectors {
		name, script := name, script
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := miniscript.Decode[key.Concrete](script, newKeyFromCompressed)
			assert.Error(t, err)
		})
	}
}

// TestTranslateCommutesWithEncode: an identity-on-bytes translation
// leaves the encoded script unchanged.
func TestTranslateCommutesWithEncode(t *testing.T) {
	t.Parallel()

	k1 := testKey(1)
	k2 := testKey(2)
	node := parseFragment(t, "and_v(v(pk_k("+k1.String()+")),pk_h("+k2.String()+"))")

	script, err := miniscript.Encode[key.Concrete](node)
	require.NoError(t, err)

	translated, err := miniscript.Translate[key.Concrete, key.Concrete](node, func(k key.Concrete) (key.Concrete, error) {
		return k, nil
	})
	require.NoError(t, err)

	translatedScript, err := miniscript.Encode[key.Concrete](translated)
	require.NoError(t, err)
	assert.Equal(t, script, translatedScript)
}

// TestTimelockOpcodes: older(n) and after(n) end in the corresponding
// CSV/CLTV opcode.
func TestTimelockOpcodes(t *testing.T) {
	t.Parallel()

	older := parseFragment(t, "older(1000)")
	olderScript, err := miniscript.Encode[key.Concrete](older)
	require.NoError(t, err)
	require.NotEmpty(t, olderScript)
	assert.Equal(t, byte(txscript.OP_CHECKSEQUENCEVERIFY), olderScript[len(olderScript)-1])

	after := parseFragment(t, "after(1000)")
	afterScript, err := miniscript.Encode[key.Concrete](after)
	require.NoError(t, err)
	require.NotEmpty(t, afterScript)
	assert.Equal(t, byte(txscript.OP_CHECKLOCKTIMEVERIFY), afterScript[len(afterScript)-1])
}

// TestParallelOrEncoding checks the exact opcode sequence of a
// zero-key multisig OR-ed with a swapped checksig.
func TestParallelOrEncoding(t *testing.T) {
	t.Parallel()

	pk1 := testKey(1)
	multi, err := miniscript.NewECheckMultiSig[key.Concrete](0, nil)
	require.NoError(t, err)
	root := miniscript.NewTCastE[key.Concrete](
		miniscript.NewEParallelOr[key.Concrete](multi, miniscript.NewWSwap[key.Concrete](miniscript.NewECheckSig[key.Concrete](pk1))),
	)

	script, err := miniscript.Encode[key.Concrete](root)
	require.NoError(t, err)

	pk, err := pk1.ToPublicKey()
	require.NoError(t, err)

	b := newExpectedBuilder()
	b.addOp(txscript.OP_0)
	b.addOp(txscript.OP_0)
	b.addOp(txscript.OP_CHECKMULTISIG)
	b.addOp(txscript.OP_SWAP)
	b.addData(pk[:])
	b.addOp(txscript.OP_CHECKSIG)
	b.addOp(txscript.OP_BOOLOR)
	expected := b.script(t)

	assert.Equal(t, expected, script)
}

type expectedBuilder struct {
	b *txscript.ScriptBuilder
}

func newExpectedBuilder() *expectedBuilder {
	return &expectedBuilder{b: txscript.NewScriptBuilder()}
}

func (e *expectedBuilder) addOp(op byte) *expectedBuilder {
	e.b.AddOp(op)
	return e
}

func (e *expectedBuilder) addData(d []byte) *expectedBuilder {
	e.b.AddData(d)
	return e
}

func (e *expectedBuilder) script(t *testing.T) []byte {
	t.Helper()
	s, err := e.b.Script()
	require.NoError(t, err)
	return s
}

func sha256Sum(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}
