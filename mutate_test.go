// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoCreatesAndOverwrites(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/a/b", true))
	require.NoError(t, v.Echo("/a/b/c.txt", []byte("hi")))

	data, err := v.Cat("/a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	require.NoError(t, v.Echo("/a/b/c.txt", []byte("bye")))
	data, err = v.Cat("/a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "bye", string(data))
}

// TestEchoAutoCreatesMissingParents reproduces spec.md §8 Scenario 1
// verbatim: ECHO on an empty volume must auto-mkdir-p every missing
// intermediate directory, not fail ENOENT.
func TestEchoAutoCreatesMissingParents(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Echo("/a/b/c.txt", []byte("hi")))

	st, err := v.Stat("/a")
	require.NoError(t, err)
	assert.Equal(t, "dir", st.Type)

	data, err := v.Cat("/a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestAppendCreatesAndAccumulates(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Echo("/log", []byte("one\n")))
	require.NoError(t, v.Append("/log", []byte("two\n")))

	data, err := v.Cat("/log")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestEchoOnDirectoryIsError(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/d", false))
	err := v.Echo("/d", []byte("x"))
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindIsDir, kind)
}

func TestTouchCreatesEmptyFile(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Touch("/new.txt"))
	data, err := v.Cat("/new.txt")
	require.NoError(t, err)
	assert.Empty(t, data)
}

// TestTouchAutoCreatesMissingParents mirrors Echo's auto-mkdir-p coverage
// (spec.md §4.3 gives TOUCH the same "auto-mkdir-p parents" behavior).
func TestTouchAutoCreatesMissingParents(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Touch("/p/q/new.txt"))

	st, err := v.Stat("/p/q")
	require.NoError(t, err)
	assert.Equal(t, "dir", st.Type)

	data, err := v.Cat("/p/q/new.txt")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestTouchFollowsSymlink(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Echo("/real", []byte("x")))
	require.NoError(t, v.Ln("/real", "/link"))

	timeNow = func() time.Time { return time.UnixMilli(1000) }
	defer func() { timeNow = time.Now }()

	require.NoError(t, v.Touch("/link"))

	n, err := resolve(v.Root, "/real", false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), n.Meta.Mtime)

	linkNode, err := resolve(v.Root, "/link", false)
	require.NoError(t, err)
	assert.Equal(t, TypeSymlink, linkNode.Type)
}

func TestMkdirParentsCreatesChain(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/x/y/z", true))
	n, err := resolve(v.Root, "/x/y/z", true)
	require.NoError(t, err)
	assert.Equal(t, TypeDir, n.Type)
}

func TestMkdirParentsExistingDirIsNoop(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/x", false))
	require.NoError(t, v.Mkdir("/x", true))
}

func TestMkdirWithoutParentsMissingAncestorFails(t *testing.T) {
	v := NewVolume()
	err := v.Mkdir("/a/b", false)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindNoEntry, kind)
}

func TestMkdirExistingPathFailsWithoutParents(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/x", false))
	err := v.Mkdir("/x", false)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindExists, kind)
}

func TestRmScenario(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/x/y/z", true))
	require.NoError(t, v.Echo("/x/y/z/f", []byte("d")))

	_, err := v.Rm("/x", false)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindNotEmpty, kind)

	count, err := v.Rm("/x", true)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	ok, err := v.Test("/x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCpRecursive(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/src/a", true))
	require.NoError(t, v.Echo("/src/a/f.txt", []byte("hi")))

	count, err := v.Cp("/src", "/dst", true)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	data, err := v.Cat("/dst/a/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	// Mutating the copy must not affect the original.
	require.NoError(t, v.Echo("/dst/a/f.txt", []byte("changed")))
	data, err = v.Cat("/src/a/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestCpWithoutRecursiveOnDirFails(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/src", false))
	_, err := v.Cp("/src", "/dst", false)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindIsDir, kind)
}

func TestCpOntoNonEmptyDirFails(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Echo("/f", []byte("x")))
	require.NoError(t, v.Mkdir("/d/sub", true))
	_, err := v.Cp("/f", "/d", true)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindExists, kind)
}

func TestCpSelfCopyIsNoopButReportsSize(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/a/b", true))
	require.NoError(t, v.Echo("/a/b/f", []byte("x")))

	count, err := v.Cp("/a", "/a", true)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMvRenamesAndRejectsDescendant(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Mkdir("/a/b", true))

	require.NoError(t, v.Mv("/a", "/c"))
	ok, err := v.Test("/a")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = v.Test("/c/b")
	require.NoError(t, err)
	assert.True(t, ok)

	err = v.Mv("/c", "/c/b/nested")
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindInvalid, kind)
}

func TestMvOverwriteRules(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Echo("/a", []byte("1")))
	require.NoError(t, v.Echo("/b", []byte("2")))
	require.NoError(t, v.Mv("/a", "/b"))
	data, err := v.Cat("/b")
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))

	require.NoError(t, v.Ln("/b", "/link"))
	err = v.Mv("/b", "/link")
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindExists, kind)
}

func TestChmodChownUtimens(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Echo("/f", []byte("x")))

	require.NoError(t, v.Chmod("/f", 0o600))
	require.NoError(t, v.Chown("/f", 42, 7))
	require.NoError(t, v.Utimens("/f", 111, 222))

	st, err := v.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, uint16(0o600), st.Mode)
	assert.Equal(t, uint32(42), st.UID)
	assert.Equal(t, uint32(7), st.GID)
	assert.Equal(t, uint64(111), st.Atime)
	assert.Equal(t, uint64(222), st.Mtime)
}

// TestChmodChownUtimensFollowSymlink checks invariant 7: metadata
// operations on a path whose final component is a symlink act on the
// symlink's target, not the link node itself.
func TestChmodChownUtimensFollowSymlink(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Echo("/real", []byte("x")))
	require.NoError(t, v.Ln("/real", "/link"))

	require.NoError(t, v.Chmod("/link", 0o600))
	require.NoError(t, v.Chown("/link", 42, 7))
	require.NoError(t, v.Utimens("/link", 111, 222))

	target, err := v.Stat("/real")
	require.NoError(t, err)
	assert.Equal(t, uint16(0o600), target.Mode)
	assert.Equal(t, uint32(42), target.UID)
	assert.Equal(t, uint32(7), target.GID)
	assert.Equal(t, uint64(111), target.Atime)
	assert.Equal(t, uint64(222), target.Mtime)

	link, err := v.Stat("/link")
	require.NoError(t, err)
	assert.Equal(t, "symlink", link.Type)
	assert.Equal(t, uint16(0o777), link.Mode)
}

func TestLnAndReadlink(t *testing.T) {
	v := NewVolume()
	require.NoError(t, v.Ln("/does/not/exist", "/dangling"))

	target, err := v.Readlink("/dangling")
	require.NoError(t, err)
	assert.Equal(t, "/does/not/exist", target)

	_, err = v.Cat("/dangling")
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindNoEntry, kind)
}
