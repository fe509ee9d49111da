// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

// maxSymlinkHops is the symlink-expansion budget for a single resolve.
// Linux itself caps path lookups at 40 symlink dereferences; we use the
// same figure so behavior is familiar to anyone who has hit ELOOP before.
const maxSymlinkHops = 40

// Bloom filter tuning. Fixed rather than made per-volume configurable,
// since spec.md leaves the exact parameters to the implementer but
// requires them to be stable for the life of a filter.
const (
	bloomBits        = 2048
	bloomHashes      = 4
	bloomMinTokenLen = 3
)
