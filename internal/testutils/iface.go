// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package testutils provides volume-tree fixture builders for tests, the
// same role the teacher's internal/testutils package plays for real
// filesystem trees — but wrapping an in-memory *redisfs.Volume's mutators
// instead of os.Symlink/os.MkdirAll/os.WriteFile.
package testutils

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestingT is an interface wrapper around *testing.T, identical in shape
// to the teacher's own TestingT.
type TestingT interface {
	assert.TestingT
	require.TestingT
}
