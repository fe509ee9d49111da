// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package testutils

import (
	"github.com/stretchr/testify/require"

	"github.com/redisfs/redisfs"
)

// Mkdir is a require-wrapped Volume.Mkdir, mirroring the teacher's
// MkdirAll wrapper around os.MkdirAll.
func Mkdir(t TestingT, v *redisfs.Volume, path string, parents bool) {
	err := v.Mkdir(path, parents)
	require.NoError(t, err)
}

// WriteFile is a require-wrapped Volume.Echo, mirroring the teacher's
// WriteFile wrapper around os.WriteFile.
func WriteFile(t TestingT, v *redisfs.Volume, path string, data []byte) {
	err := v.Echo(path, data)
	require.NoError(t, err)
}

// Symlink is a require-wrapped Volume.Ln, mirroring the teacher's Symlink
// wrapper around os.Symlink.
func Symlink(t TestingT, v *redisfs.Volume, target, linkPath string) {
	err := v.Ln(target, linkPath)
	require.NoError(t, err)
}
