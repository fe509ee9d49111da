// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import "time"

// timeNow is overridden in tests that need deterministic timestamps.
var timeNow = time.Now

func nowMillis() uint64 {
	return uint64(timeNow().UnixMilli())
}

// Volume is the persisted value: a root directory plus a monotonically
// assigned id (spec.md §3). It is the only state a command handler ever
// touches. The package's process-wide variables are nextVolumeID (the id
// counter NewVolume draws from) and the timeNow clock hook.
type Volume struct {
	ID   uint64
	Root *Node
}

// nextVolumeID is a process-local monotonic counter; every NewVolume call
// takes the next value as the new volume's ID. The counter itself is not
// part of the persisted value (only each Volume's ID is).
var nextVolumeID uint64

// NewVolume creates an empty volume: a root directory, mode 0755, owned by
// uid/gid 0. A volume is born the moment the host engine's first write
// command references a previously-absent key (spec.md §3 Lifecycle); the
// host engine is responsible for calling NewVolume at that point.
func NewVolume() *Volume {
	nextVolumeID++
	now := nowMillis()
	return &Volume{
		ID:   nextVolumeID,
		Root: newDir(0o755, 0, 0, now),
	}
}
