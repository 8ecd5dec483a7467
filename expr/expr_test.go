// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkt-cash/miniscript/expr"
	"github.com/pkt-cash/miniscript/mserr"
)

func TestParseLeaf(t *testing.T) {
	t.Parallel()

	tr, err := expr.Parse("older")
	require.NoError(t, err)
	assert.Equal(t, expr.Tree{Name: "older"}, tr)
	assert.Equal(t, "older", tr.String())
}

func TestParseNested(t *testing.T) {
	t.Parallel()

	tr, err := expr.Parse("sh(wsh(and_v(v(pk_k(02aa)),pk_h(03bb))))")
	require.NoError(t, err)
	assert.Equal(t, "sh(wsh(and_v(v(pk_k(02aa)),pk_h(03bb))))", tr.String())
	assert.Equal(t, "sh", tr.Name)
	require.Len(t, tr.Args, 1)
	assert.Equal(t, "wsh", tr.Args[0].Name)
}

func TestParseTrailingInput(t *testing.T) {
	t.Parallel()

	_, err := expr.Parse("pk(02aa))")
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrExpectedChar))
}

func TestParseUnterminatedArgs(t *testing.T) {
	t.Parallel()

	_, err := expr.Parse("pk(02aa")
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrExpectedChar))
}

func TestParseWrapperPrefix(t *testing.T) {
	t.Parallel()

	tr, err := expr.Parse("tv:pk_k(02aa)")
	require.NoError(t, err)
	assert.Equal(t, "tv:pk_k", tr.Name)
	require.Len(t, tr.Args, 1)
	assert.Equal(t, "02aa", tr.Args[0].Name)
	assert.Equal(t, "tv:pk_k(02aa)", tr.String())
}

func TestParseMultiColonRejected(t *testing.T) {
	t.Parallel()

	_, err := expr.Parse("t:v:pk_k(02aa)")
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrMultiColon))
}

func TestParseUnprintableByte(t *testing.T) {
	t.Parallel()

	_, err := expr.Parse("pk(\x01)")
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrUnprintable))
}

func TestParseEmptyIdent(t *testing.T) {
	t.Parallel()

	_, err := expr.Parse("(abc)")
	require.Error(t, err)
	assert.True(t, mserr.Is(err, mserr.ErrUnexpectedChar))
}
