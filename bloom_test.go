// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBloomMayContainSoundness(t *testing.T) {
	f := buildBloom([]byte("the quick brown fox jumps over the lazy dog"))
	assert.True(t, f.mayContainFold("quick"))
	assert.True(t, f.mayContainFold("jumps"))
	assert.False(t, f.mayContainFold("absent"))
}

func TestBloomIgnoresShortTokens(t *testing.T) {
	f := buildBloom([]byte("a an if ok"))
	// Every token here is at most 2 bytes, below bloomMinTokenLen (3), so
	// none of them may be indexed.
	assert.False(t, f.mayContainFold("if"))
}

func TestBloomCaseFoldingNeverFalseNegative(t *testing.T) {
	f := buildBloom([]byte("Error here"))
	// Built with original-case "Error", probed in every case variant:
	// none may report absence, since NOCASE search must never miss it.
	assert.True(t, f.mayContainFold("error"))
	assert.True(t, f.mayContainFold("ERROR"))
	assert.True(t, f.mayContainFold("Error"))
}

func TestBloomMayMatchRequiresAllTokens(t *testing.T) {
	f := buildBloom([]byte("foo baz"))
	assert.True(t, bloomMayMatch(f, []string{"foo"}))
	assert.False(t, bloomMayMatch(f, []string{"foo", "bar"}))
	assert.True(t, bloomMayMatch(f, nil))
}
