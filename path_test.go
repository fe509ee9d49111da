// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	tc := []struct{ in, want string }{
		{"/", "/"},
		{"/a/b", "/a/b"},
		{"/a//b", "/a/b"},
		{"/a/./b", "/a/b"},
		{"/a/../b", "/b"},
		{"/a/b/..", "/a"},
		{"/../../a", "/a"},
	}
	for _, c := range tc {
		got, err := cleanPath(c.in)
		require.NoErrorf(t, err, "cleanPath(%q)", c.in)
		assert.Equalf(t, c.want, got, "cleanPath(%q)", c.in)
	}
}

func TestRawSplit(t *testing.T) {
	assert.Equal(t, []string{""}, rawSplit("/"))
	assert.Equal(t, []string{"a", "b"}, rawSplit("/a/b"))
	assert.Equal(t, []string{"a", "b", ""}, rawSplit("/a/b/"))
}

func TestSplitParent(t *testing.T) {
	parent, base, err := splitParent("/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, parent)
	assert.Equal(t, "c", base)

	parent, base, err = splitParent("/")
	require.NoError(t, err)
	assert.Empty(t, parent)
	assert.Empty(t, base)
}

func TestValidName(t *testing.T) {
	assert.True(t, validName("f.txt"))
	assert.False(t, validName(""))
	assert.False(t, validName("."))
	assert.False(t, validName(".."))
	assert.False(t, validName("a/b"))
}
