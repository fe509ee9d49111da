// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import "strings"

// resolve walks path from the volume root, following symlinks as it goes,
// and returns the node it names. If followFinal is true, a symlink named
// by the final component is itself followed; otherwise the link node is
// returned (the "lstat" variant).
//
// This is a direct adaptation of the teacher's SecureJoin/partialLookupInRoot
// walking loop (join.go, lookup_linux.go): consume one component at a time,
// and when a symlink is encountered, splice its target onto the front of
// the not-yet-consumed path instead of recursing. The teacher does this
// against real file descriptors under a root directory; here there are no
// descriptors, so "entering a directory" is simply pushing its *Node onto
// a local stack, and "popping to the parent" for ".." is popping that
// stack — the parent-less Node design (spec.md §9) means that stack, not a
// field on Node, is what stands in for the teacher's real inode chain.
func resolve(root *Node, path string, followFinal bool) (*Node, error) {
	if !validPathSyntax(path) {
		return nil, newErr(KindInvalid, "resolve", path)
	}
	return walkComponents(root, rawSplit(path), followFinal)
}

// resolveParent splits path into the directory that would contain its
// final component (fully resolved, following symlinks) and that final
// component's literal name. The name need not exist; callers decide
// whether its absence or presence matters.
func resolveParent(root *Node, path string) (*Node, string, error) {
	if !validPathSyntax(path) {
		return nil, "", newErr(KindInvalid, "resolve", path)
	}
	parts := trimTrailingNoops(rawSplit(path))
	if len(parts) == 0 {
		// "/" itself, or a path made only of "/" and "." parts (e.g. "//",
		// "/."), has no basename to create or delete. A trailing ".." is
		// kept, so "/a/.." arrives here with base "..".
		return nil, "", newErr(KindInvalid, "resolve", path)
	}
	base := parts[len(parts)-1]
	dirNode, err := walkComponents(root, parts[:len(parts)-1], true)
	if err != nil {
		return nil, "", err
	}
	if dirNode.Type != TypeDir {
		return nil, "", newErr(KindNotDir, "resolve", path)
	}
	return dirNode, base, nil
}

// trimTrailingNoops drops trailing ""/"." entries (produced by a trailing
// "/" or "/." in the input) so they don't hide the real basename, while
// leaving a trailing ".." alone — a ".." always changes which node is
// being named, so it can't simply be ignored the way a no-op separator
// can.
func trimTrailingNoops(parts []string) []string {
	for len(parts) > 0 {
		last := parts[len(parts)-1]
		if last == "" || last == "." {
			parts = parts[:len(parts)-1]
			continue
		}
		break
	}
	return parts
}

// walkComponents drives the shared component loop: it processes comps in
// order against root, treating every component as needing to resolve to a
// directory to continue except the very last, which is returned as-is
// (after optionally following a trailing symlink per followFinal).
func walkComponents(root *Node, comps []string, followFinal bool) (*Node, error) {
	dirStack := []*Node{root}
	remaining := append([]string(nil), comps...)
	hops := 0

	for len(remaining) > 0 {
		part := remaining[0]
		remaining = remaining[1:]

		switch part {
		case "", ".":
			continue
		case "..":
			if len(dirStack) > 1 {
				dirStack = dirStack[:len(dirStack)-1]
			}
			continue
		}

		cur := dirStack[len(dirStack)-1]
		if cur.Type != TypeDir {
			return nil, newErr(KindNotDir, "resolve", part)
		}
		child, ok := cur.Children[part]
		if !ok {
			return nil, newErr(KindNoEntry, "resolve", part)
		}

		isLast := onlyNoopsRemain(remaining)
		if child.Type == TypeSymlink && (!isLast || followFinal) {
			hops++
			if hops > maxSymlinkHops {
				return nil, newErr(KindLoop, "resolve", part)
			}
			targetParts := rawSplit(normalizeSymlinkTarget(child.Target))
			if strings.HasPrefix(child.Target, "/") {
				dirStack = dirStack[:1]
			}
			remaining = append(targetParts, remaining...)
			continue
		}

		if isLast {
			return child, nil
		}
		if child.Type != TypeDir {
			return nil, newErr(KindNotDir, "resolve", part)
		}
		dirStack = append(dirStack, child)
	}
	return dirStack[len(dirStack)-1], nil
}

// onlyNoopsRemain reports whether every remaining part is a "" (collapsed
// "//") or "." — i.e. nothing left that would change which node is being
// named, so the component just consumed can be treated as the final one.
// A trailing ".." is deliberately not a no-op: it still changes the
// target (to the current node's parent), so the walk must keep going.
func onlyNoopsRemain(parts []string) bool {
	for _, p := range parts {
		if p != "" && p != "." {
			return false
		}
	}
	return true
}

// normalizeSymlinkTarget ensures a relative symlink target can be fed back
// into rawSplit, which expects a leading "/". Absolute targets pass through
// unchanged (rawSplit only cares that "/" is the separator, and the caller
// resets the walk to root for absolute targets based on the raw Target
// string, not this normalized form).
func normalizeSymlinkTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return target
	}
	return "/" + target
}
