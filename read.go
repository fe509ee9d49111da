// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import "github.com/redisfs/redisfs/internal/walkstack"

// StatResult is the field set FS.STAT reports for a node. Target is set
// only when Type is "symlink".
type StatResult struct {
	Type   string
	Size   uint64
	Mode   uint16
	UID    uint32
	GID    uint32
	Atime  uint64
	Mtime  uint64
	Ctime  uint64
	Target string
}

// Stat reports metadata for the node at path without following a final
// symlink (spec.md §4.4's lstat-like semantics) — STAT on a symlink
// describes the link itself, with Target set to where it points.
func (v *Volume) Stat(path string) (StatResult, error) {
	n, err := resolve(v.Root, path, false)
	if err != nil {
		return StatResult{}, err
	}
	r := StatResult{
		Type:  n.Type.String(),
		Size:  n.size(),
		Mode:  n.Meta.Mode,
		UID:   n.Meta.UID,
		GID:   n.Meta.GID,
		Atime: n.Meta.Atime,
		Mtime: n.Meta.Mtime,
		Ctime: n.Meta.Ctime,
	}
	if n.Type == TypeSymlink {
		r.Target = n.Target
	}
	return r, nil
}

// Cat returns the contents of the file at path, following symlinks. It
// fails with EISDIR if path names a directory.
func (v *Volume) Cat(path string) ([]byte, error) {
	n, err := resolve(v.Root, path, true)
	if err != nil {
		return nil, err
	}
	if n.Type == TypeDir {
		return nil, newErr(KindIsDir, "cat", path)
	}
	n.Meta.Atime = nowMillis()
	return append([]byte(nil), n.Data...), nil
}

// LsEntry is one directory entry as reported by FS.LS.
type LsEntry struct {
	Name string
	StatResult
}

// Ls lists the entries of the directory at path in ascending lexicographic
// order by name (spec.md §3's determinism requirement). Every entry carries
// its full StatResult; FS.LS's LONG flag only decides whether cmdLs renders
// it or just the Name. path itself must name a directory; a file or symlink
// target is ENOTDIR (use Stat for a single node's metadata instead).
func (v *Volume) Ls(path string) ([]LsEntry, error) {
	n, err := resolve(v.Root, path, true)
	if err != nil {
		return nil, err
	}
	if n.Type != TypeDir {
		return nil, newErr(KindNotDir, "ls", path)
	}
	names := n.sortedNames()
	out := make([]LsEntry, 0, len(names))
	for _, name := range names {
		child := n.Children[name]
		e := LsEntry{Name: name, StatResult: StatResult{
			Type:  child.Type.String(),
			Size:  child.size(),
			Mode:  child.Meta.Mode,
			UID:   child.Meta.UID,
			GID:   child.Meta.GID,
			Atime: child.Meta.Atime,
			Mtime: child.Meta.Mtime,
			Ctime: child.Meta.Ctime,
		}}
		if child.Type == TypeSymlink {
			e.Target = child.Target
		}
		out = append(out, e)
	}
	return out, nil
}

// Test reports whether path resolves to an existing node (following
// symlinks), mirroring FS.TEST's 1/0 boolean result with no error
// surfaced for a missing path. An error is returned only for a malformed
// path.
func (v *Volume) Test(path string) (bool, error) {
	if !validPathSyntax(path) {
		return false, newErr(KindInvalid, "test", path)
	}
	_, err := resolve(v.Root, path, true)
	if err != nil {
		if _, ok := KindOf(err); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Readlink returns the literal target string of the symlink at path. It
// fails with EINVAL if path does not name a symlink.
func (v *Volume) Readlink(path string) (string, error) {
	n, err := resolve(v.Root, path, false)
	if err != nil {
		return "", err
	}
	if n.Type != TypeSymlink {
		return "", newErr(KindInvalid, "readlink", path)
	}
	return n.Target, nil
}

// TreeEntry is one node in the nested tree produced by FS.TREE: a name,
// its stat fields, and (for a directory) its children in sortedNames
// order.
type TreeEntry struct {
	Name     string
	StatResult
	Children []*TreeEntry
}

type treeFrame struct {
	node  *Node
	entry *TreeEntry
	depth int
}

// Tree builds the nested directory listing rooted at path, per FS.TREE.
// maxDepth bounds how many levels below path are expanded (0 means path
// itself only, with no Children populated); a negative maxDepth means
// unbounded. The walk is iterative (walkstack.Stack), not native
// recursion, so it tolerates arbitrarily deep nesting (spec.md §5).
// Symlinks are listed but never descended into, regardless of depth.
func (v *Volume) Tree(path string, maxDepth int) (*TreeEntry, error) {
	root, err := resolve(v.Root, path, true)
	if err != nil {
		return nil, err
	}
	_, base, splitErr := splitParent(path)
	if splitErr != nil || base == "" {
		base = "/"
	}
	rootEntry := newTreeEntry(base, root)

	if root.Type != TypeDir || maxDepth == 0 {
		return rootEntry, nil
	}

	stack := walkstack.New(treeFrame{root, rootEntry, 0})
	for {
		f, ok := stack.Pop()
		if !ok {
			break
		}
		if maxDepth >= 0 && f.depth >= maxDepth {
			continue
		}
		for _, childName := range f.node.sortedNames() {
			child := f.node.Children[childName]
			childEntry := newTreeEntry(childName, child)
			f.entry.Children = append(f.entry.Children, childEntry)
			if child.Type == TypeDir {
				stack.Push(treeFrame{child, childEntry, f.depth + 1})
			}
		}
	}
	return rootEntry, nil
}

func newTreeEntry(name string, n *Node) *TreeEntry {
	e := &TreeEntry{Name: name, StatResult: StatResult{
		Type:  n.Type.String(),
		Size:  n.size(),
		Mode:  n.Meta.Mode,
		UID:   n.Meta.UID,
		GID:   n.Meta.GID,
		Atime: n.Meta.Atime,
		Mtime: n.Meta.Mtime,
		Ctime: n.Meta.Ctime,
	}}
	if n.Type == TypeSymlink {
		e.Target = n.Target
	}
	return e
}

// InfoResult is the whole-volume summary reported by FS.INFO.
type InfoResult struct {
	VolumeID   uint64
	Dirs       uint64
	Files      uint64
	Symlinks   uint64
	TotalBytes uint64
}

// Info walks the entire volume and reports aggregate counts, per FS.INFO.
// VolumeID surfaces Volume.ID, a SPEC_FULL.md addition; Marshal writes the
// id into the serialized form and Unmarshal restores it, so it survives a
// round trip through the codec.
func (v *Volume) Info() InfoResult {
	res := InfoResult{VolumeID: v.ID}
	stack := walkstack.New(v.Root)
	res.Dirs++
	for {
		dir, ok := stack.Pop()
		if !ok {
			break
		}
		for _, child := range dir.Children {
			switch child.Type {
			case TypeDir:
				res.Dirs++
				stack.Push(child)
			case TypeFile:
				res.Files++
				res.TotalBytes += uint64(len(child.Data))
			case TypeSymlink:
				res.Symlinks++
			}
		}
	}
	return res
}
