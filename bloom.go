// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import (
	"hash/fnv"
	"strings"
)

// bloomFilter is a fixed-capacity per-file bit array accelerating content
// search (spec.md §4.6). It is a sound may-have predicate: Test never
// returns a false negative for a token that was present (3 bytes or
// longer) when the filter was last built, but may return a false positive.
// It must always be rebuilt from the full payload on a content-changing
// write, never updated incrementally.
type bloomFilter struct {
	bits [bloomBits / 64]uint64
}

// buildBloom constructs a filter over the whitespace-delimited tokens of
// data. Tokens shorter than bloomMinTokenLen are not indexed, matching
// spec.md's rule that such tokens cannot be used to prune a file.
//
// Tokens are folded to lowercase before insertion regardless of how the
// file is ultimately searched. A NOCASE probe folds its token the same
// way, so the filter stays sound (may-have, never false-negative) for
// case-insensitive search; a case-sensitive probe folds too, which only
// costs extra false positives (a full line scan on a file that turns out
// not to match) and never a missed match.
func buildBloom(data []byte) *bloomFilter {
	f := &bloomFilter{}
	for _, tok := range strings.Fields(string(data)) {
		if len(tok) >= bloomMinTokenLen {
			f.add(strings.ToLower(tok))
		}
	}
	return f
}

// add sets the k bits derived from token.
func (f *bloomFilter) add(token string) {
	h1, h2 := bloomHash(token)
	for i := 0; i < bloomHashes; i++ {
		f.setBit(bloomIndex(h1, h2, i))
	}
}

// mayContain reports whether token could be present. A false result is a
// proof of absence; a true result is not proof of presence.
func (f *bloomFilter) mayContain(token string) bool {
	h1, h2 := bloomHash(token)
	for i := 0; i < bloomHashes; i++ {
		if !f.getBit(bloomIndex(h1, h2, i)) {
			return false
		}
	}
	return true
}

func (f *bloomFilter) setBit(i uint32) {
	f.bits[i/64] |= 1 << (i % 64)
}

func (f *bloomFilter) getBit(i uint32) bool {
	return f.bits[i/64]&(1<<(i%64)) != 0
}

// bloomHash derives two independent 32-bit hashes from token using FNV-1a
// over the token itself and over the token with a salt byte appended; k
// probe positions are then generated from a linear combination of the two
// (Kirsch-Mitzenmacher double hashing), avoiding the need for k distinct
// hash function implementations.
func bloomHash(token string) (uint32, uint32) {
	h1 := fnv.New32a()
	_, _ = h1.Write([]byte(token))
	a := h1.Sum32()

	h2 := fnv.New32a()
	_, _ = h2.Write([]byte(token))
	_, _ = h2.Write([]byte{0xff})
	b := h2.Sum32()

	return a, b
}

func bloomIndex(h1, h2 uint32, i int) uint32 {
	return (h1 + uint32(i)*h2) % bloomBits
}

// mayContainFold probes for token the same way buildBloom indexed it:
// case-folded. Used by GREP's pre-filter for both NOCASE and case-sensitive
// searches (see buildBloom for why folding is unconditional).
func (f *bloomFilter) mayContainFold(token string) bool {
	return f.mayContain(strings.ToLower(token))
}
