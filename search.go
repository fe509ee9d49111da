// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import (
	"bufio"
	"bytes"

	"github.com/redisfs/redisfs/internal/walkstack"
)

// FindMatch is one hit reported by FS.FIND.
type FindMatch struct {
	Path string
	Type string
}

// findFrame is a single not-yet-visited entry: its node, its basename, and
// the already-joined path leading to it — path is carried explicitly
// rather than reconstructed from parent pointers, since Node has none.
type findFrame struct {
	node *Node
	name string
	path string
}

// pushChildrenReversed schedules n's children for visiting, in reverse
// sorted order, so that popping the (LIFO) stack visits them in ascending
// order and fully exhausts each child's subtree before moving to the next
// sibling — true depth-first pre-order from a single explicit stack.
func pushChildrenReversed(stack *walkstack.Stack[findFrame], n *Node, path string) {
	names := n.sortedNames()
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		stack.Push(findFrame{n.Children[name], name, joinPath(path, name)})
	}
}

// Find searches the subtree rooted at path for entries whose basename
// matches the compiled glob and (if typeFilter is non-empty) whose Type
// equals it ("dir", "file", or "symlink"). Results are in true depth-first
// pre-order, children visited in lexicographic order at each level
// (spec.md §4.5). A symlink is reported as a candidate entry like any
// other node but its target is never descended into, so FIND cannot be
// steered into a cycle. The walk is iterative (spec.md §5).
func (v *Volume) Find(path string, pattern *Glob, typeFilter string) ([]FindMatch, error) {
	root, err := resolve(v.Root, path, true)
	if err != nil {
		return nil, err
	}
	base, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	var matches []FindMatch
	if root.Type != TypeDir {
		return matches, nil
	}

	stack := walkstack.New[findFrame]()
	pushChildrenReversed(stack, root, base)
	for {
		f, ok := stack.Pop()
		if !ok {
			break
		}
		if pattern.Match(f.name) && (typeFilter == "" || typeFilter == f.node.Type.String()) {
			matches = append(matches, FindMatch{Path: f.path, Type: f.node.Type.String()})
		}
		if f.node.Type == TypeDir {
			pushChildrenReversed(stack, f.node, f.path)
		}
	}
	return matches, nil
}

func joinPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}

// GrepMatch is one matching line reported by FS.GREP.
type GrepMatch struct {
	Path string
	Line int
	Text string
}

// grepFrame mirrors findFrame for GREP's walk: one not-yet-visited entry.
type grepFrame struct {
	node *Node
	path string
}

func pushGrepChildrenReversed(stack *walkstack.Stack[grepFrame], n *Node, path string) {
	names := n.sortedNames()
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		stack.Push(grepFrame{n.Children[name], joinPath(path, name)})
	}
}

// Grep searches every regular file in the subtree rooted at path for lines
// matching the compiled glob, per FS.GREP. Before scanning a file's full
// content, its per-file bloom filter is consulted against the glob's
// literal tokens (Glob.Tokens): if the filter reports any one of the
// pattern's literal runs (of indexable length) as absent, the file is
// skipped without a line scan (spec.md §4.5). A pattern with no literal runs at all (e.g. "*") always
// falls through to a full scan, since there is nothing to pre-filter on.
// Symlinks are not followed. The walk is iterative (spec.md §5).
func (v *Volume) Grep(path string, pattern *Glob) ([]GrepMatch, error) {
	root, err := resolve(v.Root, path, true)
	if err != nil {
		return nil, err
	}
	base, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	var matches []GrepMatch
	tokens := pattern.Tokens()

	scan := func(p string, n *Node) {
		if n.Bloom != nil && !bloomMayMatch(n.Bloom, tokens) {
			return
		}
		sc := bufio.NewScanner(bytes.NewReader(n.Data))
		sc.Buffer(make([]byte, 0, 64*1024), len(n.Data)+1)
		lineNo := 0
		for sc.Scan() {
			lineNo++
			text := sc.Text()
			if pattern.Match(text) {
				matches = append(matches, GrepMatch{Path: p, Line: lineNo, Text: text})
			}
		}
	}

	if root.Type == TypeFile {
		scan(base, root)
		return matches, nil
	}
	if root.Type != TypeDir {
		return matches, nil
	}

	stack := walkstack.New[grepFrame]()
	pushGrepChildrenReversed(stack, root, base)
	for {
		f, ok := stack.Pop()
		if !ok {
			break
		}
		switch f.node.Type {
		case TypeDir:
			pushGrepChildrenReversed(stack, f.node, f.path)
		case TypeFile:
			scan(f.path, f.node)
		}
	}
	return matches, nil
}

// bloomMayMatch reports whether a file could contain a line matching a
// pattern with these literal tokens. A matching line must contain every
// one of the pattern's literal runs, so the file can be soundly skipped
// only if the filter proves at least one token is definitely absent; if
// it has no literal tokens at all (e.g. a bare "*"), there's nothing to
// prune on and the file must be scanned regardless.
func bloomMayMatch(f *bloomFilter, tokens []string) bool {
	for _, t := range tokens {
		if len(t) < bloomMinTokenLen {
			// Too short to have been indexed; can't be used to prune.
			continue
		}
		if !f.mayContainFold(t) {
			return false
		}
	}
	return true
}
