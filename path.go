// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import "strings"

// splitComponents breaks an absolute path into its normalized, non-empty
// components. "." components are dropped; ".." pops the previous component,
// clamped at root (popping past root is a no-op, never an error). The input
// must start with "/"; this is the same lexical normalization the teacher's
// SecureJoin performs while walking a path one component at a time, done up
// front here since we don't need to interleave it with symlink expansion
// until resolve.go.
func splitComponents(path string) ([]string, error) {
	if path == "" || path[0] != '/' {
		return nil, newErr(KindInvalid, "", path)
	}
	var out []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '/' {
			continue
		}
		part := path[start:i]
		start = i + 1
		switch part {
		case "", ".":
			// skip
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, part)
		}
	}
	return out, nil
}

// cleanPath normalizes an absolute path string: collapses "/" runs, resolves
// "." and "..", clamps at root, and renders with exactly one leading "/" and
// no trailing "/" (unless the result is the root itself).
func cleanPath(path string) (string, error) {
	comps, err := splitComponents(path)
	if err != nil {
		return "", err
	}
	return joinComponents(comps), nil
}

// joinComponents renders a component slice back into its canonical string
// form, "/" for the empty slice.
func joinComponents(comps []string) string {
	if len(comps) == 0 {
		return "/"
	}
	return "/" + strings.Join(comps, "/")
}

// splitParent splits a cleaned absolute path into its parent's component
// slice and its final component (the basename). The root path has no
// parent and no basename; callers that require a basename (creates,
// deletes) must reject that case themselves (it maps to EINVAL).
func splitParent(path string) (parent []string, base string, err error) {
	comps, err := splitComponents(path)
	if err != nil {
		return nil, "", err
	}
	if len(comps) == 0 {
		return nil, "", nil
	}
	return comps[:len(comps)-1], comps[len(comps)-1], nil
}

// validName reports whether name is usable as a single directory entry
// name: non-empty, contains no "/", and is not "." or "..".
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.Contains(name, "/")
}

// rawSplit breaks path into "/"-delimited parts without collapsing "."/".."
// — callers that need to interleave dot-handling with symlink expansion
// (the resolver) must see every raw part, including empty parts produced
// by collapsed "//" runs (which the resolver treats the same as "."). path
// must start with "/".
func rawSplit(path string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '/' {
			continue
		}
		parts = append(parts, path[start:i])
		start = i + 1
	}
	// Drop the leading empty part produced by the initial "/".
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	return parts
}

// validPathSyntax reports whether path is the root "/" or matches
// "(/[^/]+)+" after collapsing "/" runs — i.e. whether it starts with a
// single leading slash. Empty components produced by collapsed slash runs
// are handled later like "." components, not rejected here.
func validPathSyntax(path string) bool {
	return len(path) > 0 && path[0] == '/'
}
