// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBasic(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/a/b/c", true))
	require.NoError(t, v.Echo("/a/b/c/f.txt", []byte("hi")))

	n, err := resolve(v.Root, "/a/b/c/f.txt", true)
	require.NoError(t, err)
	assert.Equal(t, TypeFile, n.Type)

	n, err = resolve(v.Root, "/a/b/../b/c", true)
	require.NoError(t, err)
	assert.Equal(t, TypeDir, n.Type)
	assert.Equal(t, 1, len(n.Children))
}

func TestResolveDotDotClampsAtRoot(t *testing.T) {
	v := NewVolume()
	n, err := resolve(v.Root, "/../../..", true)
	require.NoError(t, err)
	assert.Same(t, v.Root, n)
}

func TestResolveTrailingSlashDotStillResolvesFile(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Echo("/f.txt", []byte("x")))
	// A trailing "/." shouldn't force ENOTDIR on a plain file lookup that
	// has no further real components after it.
	n, err := resolve(v.Root, "/f.txt/.", true)
	require.NoError(t, err)
	assert.Equal(t, TypeFile, n.Type)
}

func TestResolveSymlinkLoop(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Ln("/a", "/b"))
	require.NoError(t, v.Ln("/b", "/a"))

	_, err := v.Cat("/a")
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindLoop, kind)
}

func TestResolveRelativeSymlinkSplice(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/x/y", true))
	require.NoError(t, v.Echo("/x/target.txt", []byte("payload")))
	require.NoError(t, v.Ln("../target.txt", "/x/y/link"))

	data, err := v.Cat("/x/y/link")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestResolveAbsoluteSymlinkResetsToRoot(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/a/b", true))
	require.NoError(t, v.Echo("/target.txt", []byte("abs")))
	require.NoError(t, v.Ln("/target.txt", "/a/b/link"))

	data, err := v.Cat("/a/b/link")
	require.NoError(t, err)
	assert.Equal(t, "abs", string(data))
}

func TestResolveLstatDoesNotFollowFinalSymlink(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Echo("/real.txt", []byte("hi")))
	require.NoError(t, v.Ln("/real.txt", "/link"))

	n, err := resolve(v.Root, "/link", false)
	require.NoError(t, err)
	assert.Equal(t, TypeSymlink, n.Type)
}

func TestResolveMissingIntermediateComponent(t *testing.T) {
	v := NewVolume()
	_, err := resolve(v.Root, "/missing/child", true)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindNoEntry, kind)
}

func TestResolveIntermediateNotADir(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Echo("/f", []byte("x")))
	_, err := resolve(v.Root, "/f/child", true)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindNotDir, kind)
}
