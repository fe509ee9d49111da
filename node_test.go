// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneDeepCopiesAndIsIndependent(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/a/b", true))
	require.NoError(t, v.Echo("/a/b/f.txt", []byte("hi")))
	require.NoError(t, v.Ln("/a/b/f.txt", "/a/link"))

	n, err := resolve(v.Root, "/a", false)
	require.NoError(t, err)

	cp := n.clone()
	require.NotSame(t, n, cp)
	require.NotSame(t, n.Children["b"], cp.Children["b"])
	require.NotSame(t, n.Children["link"], cp.Children["link"])

	cp.Children["b"].Children["f.txt"].Data[0] = 'X'
	assert.Equal(t, byte('h'), n.Children["b"].Children["f.txt"].Data[0])
}

func TestCloneHandlesDeepNesting(t *testing.T) {
	v := NewVolume()
	path := "/d"
	for i := 0; i < 2000; i++ {
		path += "/d"
	}
	require.NoError(t, v.Mkdir(path, true))

	cp := v.Root.clone()
	assert.Equal(t, 1, len(cp.Children))
}

func TestCountSubtree(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/a/b", true))
	require.NoError(t, v.Echo("/a/f", nil))

	n, err := resolve(v.Root, "/a", false)
	require.NoError(t, err)
	assert.Equal(t, 3, countSubtree(n))
}

func TestSizeDerivation(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/d", false))
	require.NoError(t, v.Echo("/d/a", nil))
	require.NoError(t, v.Echo("/d/b", nil))

	n, err := resolve(v.Root, "/d", false)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n.size())
}
