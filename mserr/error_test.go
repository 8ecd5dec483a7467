// Copyright (c) 2024 The miniscript developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mserr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkt-cash/miniscript/mserr"
)

func TestErrorString(t *testing.T) {
	t.Parallel()

	withDetail := mserr.ErrTypeCheck.New("left child must cast to E")
	assert.Equal(t, "miniscript.Type.TypeCheck: left child must cast to E", withDetail.Error())

	noDetail := mserr.ErrCouldNotSatisfy.New("")
	assert.Equal(t, "miniscript.Satisfy.CouldNotSatisfy", noDetail.Error())

	formatted := mserr.ErrContextError.Newf("k=%d out of range for %d children", 3, 2)
	assert.Equal(t, "miniscript.Type.ContextError: k=3 out of range for 2 children", formatted.Error())
}

func TestErrorIs(t *testing.T) {
	t.Parallel()

	err := mserr.ErrBadDescriptor.New("unrecognized node")
	assert.True(t, mserr.Is(err, mserr.ErrBadDescriptor))
	assert.False(t, mserr.Is(err, mserr.ErrTypeCheck))
	assert.False(t, mserr.Is(errors.New("plain error"), mserr.ErrBadDescriptor))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	err := mserr.ErrNonTopLevel.New("")
	assert.Equal(t, mserr.ErrNonTopLevel, err.Code())
}
