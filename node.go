// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import (
	"sort"

	"github.com/redisfs/redisfs/internal/walkstack"
)

// Type tags the three node variants a Volume can hold. There is no virtual
// dispatch between them (per spec.md §9): every operation switches on Type
// a bounded number of times and reaches into the variant-specific fields
// directly.
type Type uint8

const (
	TypeDir Type = iota
	TypeFile
	TypeSymlink
)

func (t Type) String() string {
	switch t {
	case TypeDir:
		return "dir"
	case TypeFile:
		return "file"
	case TypeSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Meta is the metadata shared by every node variant (spec.md §3).
type Meta struct {
	Mode  uint16 // low 12 bits: POSIX permission bits; stored, never enforced
	UID   uint32
	GID   uint32
	Atime uint64 // ms since epoch
	Mtime uint64
	Ctime uint64
}

// Node is a tagged variant over {Directory, File, Symlink}. Exactly one of
// Children, Data, Target is meaningful, selected by Type. A Directory owns
// its children exclusively: there are no parent back-pointers, so removing
// a directory frees its whole subtree and there is no dangling-reference
// bookkeeping to do on mv/rm (spec.md §9).
type Node struct {
	Type Type
	Meta Meta

	Children map[string]*Node // TypeDir
	Data     []byte           // TypeFile
	Bloom    *bloomFilter     // TypeFile, optional content-search accelerator
	Target   string           // TypeSymlink
}

// newDir allocates an empty directory node with the given metadata seed.
func newDir(mode uint16, uid, gid uint32, now uint64) *Node {
	return &Node{
		Type:     TypeDir,
		Meta:     Meta{Mode: mode, UID: uid, GID: gid, Atime: now, Mtime: now, Ctime: now},
		Children: make(map[string]*Node),
	}
}

// newFile allocates an empty regular file node with the given metadata seed.
func newFile(mode uint16, uid, gid uint32, now uint64) *Node {
	return &Node{
		Type: TypeFile,
		Meta: Meta{Mode: mode, UID: uid, GID: gid, Atime: now, Mtime: now, Ctime: now},
	}
}

// newSymlink allocates a symlink node pointing at target.
func newSymlink(target string, mode uint16, uid, gid uint32, now uint64) *Node {
	return &Node{
		Type:   TypeSymlink,
		Meta:   Meta{Mode: mode, UID: uid, GID: gid, Atime: now, Mtime: now, Ctime: now},
		Target: target,
	}
}

// size reports the variant-appropriate size field described in spec.md §3:
// child count for a directory, payload length for a file, target length
// for a symlink. It is always derived rather than cached, so invariant 3
// ("a Directory's size equals its direct child count") can never drift.
func (n *Node) size() uint64 {
	switch n.Type {
	case TypeDir:
		return uint64(len(n.Children))
	case TypeFile:
		return uint64(len(n.Data))
	case TypeSymlink:
		return uint64(len(n.Target))
	default:
		return 0
	}
}

// sortedNames returns n's directory entry names in ascending lexicographic
// byte order, satisfying spec.md §3's determinism requirement for LS/FIND
// iteration. For a non-directory (nil Children) it returns an empty slice.
func (n *Node) sortedNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// shallowClone copies n's own fields (metadata and, for a file, its
// payload) but — for a directory — leaves Children freshly allocated and
// empty. clone uses it as the per-node step of an iterative deep copy.
func (n *Node) shallowClone() *Node {
	cp := &Node{Type: n.Type, Meta: n.Meta}
	switch n.Type {
	case TypeDir:
		cp.Children = make(map[string]*Node, len(n.Children))
	case TypeFile:
		cp.Data = append([]byte(nil), n.Data...)
		cp.Bloom = buildBloom(cp.Data)
	case TypeSymlink:
		cp.Target = n.Target
	}
	return cp
}

type cloneFrame struct {
	src, dst *Node
}

// clone deep-copies n and its entire subtree, used by CP. Bloom filters on
// copied files are rebuilt from the payload rather than cloned verbatim,
// per spec.md's resolved Open Question (determinism over micro-efficiency).
// The walk is iterative (walkstack.Stack), not native recursion, so an
// adversarially deep directory tree can't exhaust the call stack (spec.md
// §5).
func (n *Node) clone() *Node {
	root := n.shallowClone()
	if n.Type != TypeDir {
		return root
	}
	stack := walkstack.New(cloneFrame{n, root})
	for {
		f, ok := stack.Pop()
		if !ok {
			break
		}
		for name, child := range f.src.Children {
			childDst := child.shallowClone()
			f.dst.Children[name] = childDst
			if child.Type == TypeDir {
				stack.Push(cloneFrame{child, childDst})
			}
		}
	}
	return root
}

// countSubtree returns 1 plus the number of descendants of n (0 for a
// non-directory), i.e. the total number of nodes rm/cp affect when acting
// on n. Iterative for the same reason clone is (spec.md §5).
func countSubtree(n *Node) int {
	count := 1
	if n.Type != TypeDir {
		return count
	}
	stack := walkstack.New(n)
	for {
		dir, ok := stack.Pop()
		if !ok {
			break
		}
		for _, child := range dir.Children {
			count++
			if child.Type == TypeDir {
				stack.Push(child)
			}
		}
	}
	return count
}

// touchSubtreeCtime sets ctime to now on every node in n's subtree,
// iteratively. Used after CP attaches a freshly cloned
// subtree: every copied node is, from the volume's perspective, newly
// created at this instant even though spec.md requires mtime/atime to be
// preserved from the source.
func touchSubtreeCtime(n *Node, now uint64) {
	n.Meta.Ctime = now
	if n.Type != TypeDir {
		return
	}
	stack := walkstack.New(n)
	for {
		dir, ok := stack.Pop()
		if !ok {
			break
		}
		for _, child := range dir.Children {
			child.Meta.Ctime = now
			if child.Type == TypeDir {
				stack.Push(child)
			}
		}
	}
}
