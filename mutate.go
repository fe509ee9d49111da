// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import "strings"

// Echo overwrites (or creates) the file at path with data, per FS.ECHO.
// Missing intermediate directories are created along the way
// (auto-mkdir-p on parents).
func (v *Volume) Echo(path string, data []byte) error {
	return v.writeFile("echo", path, data, false)
}

// Append adds data to the end of the file at path, creating it if absent,
// per FS.APPEND. Missing intermediate directories are created, matching
// Echo.
func (v *Volume) Append(path string, data []byte) error {
	return v.writeFile("append", path, data, true)
}

// writeFile is the shared ECHO/APPEND implementation. append selects
// APPEND's create-if-missing, add-to-tail behavior over ECHO's
// create-or-truncate behavior. Missing intermediate directories are
// created along the way (spec.md §4.3's "auto-mkdir-p on parents").
func (v *Volume) writeFile(op, path string, data []byte, appendMode bool) error {
	now := nowMillis()
	dir, base, err := resolveParentAutoMkdir(v.Root, path, now)
	if err != nil {
		return err
	}
	existing, ok := dir.Children[base]
	switch {
	case !ok:
		if !validName(base) {
			return newErr(KindInvalid, op, path)
		}
		n := newFile(0o644, 0, 0, now)
		n.Data = append([]byte(nil), data...)
		n.Bloom = buildBloom(n.Data)
		dir.Children[base] = n
	case existing.Type == TypeSymlink:
		// ECHO/APPEND follow a symlink target the same way CAT does.
		target, err := resolve(v.Root, path, true)
		if err != nil {
			return err
		}
		if target.Type != TypeFile {
			return newErr(KindIsDir, op, path)
		}
		if appendMode {
			target.Data = append(target.Data, data...)
		} else {
			target.Data = append([]byte(nil), data...)
		}
		target.Bloom = buildBloom(target.Data)
		target.Meta.Mtime = now
		target.Meta.Ctime = now
	case existing.Type != TypeFile:
		return newErr(KindIsDir, op, path)
	default:
		if appendMode {
			existing.Data = append(existing.Data, data...)
		} else {
			existing.Data = append([]byte(nil), data...)
		}
		existing.Bloom = buildBloom(existing.Data)
		existing.Meta.Mtime = now
		existing.Meta.Ctime = now
	}
	dir.touchForChildChange(now)
	return nil
}

// Touch updates the atime/mtime of the node at path to now, creating an
// empty file there if nothing exists, per FS.TOUCH. An existing target of
// any type (file, dir, symlink) is timestamp-bumped; only the create branch
// is file-specific. A symlink target is followed, per spec.md's resolved
// Open Question. Missing intermediate directories are created along the
// way, matching ECHO/APPEND (spec.md §4.3's "auto-mkdir-p on parents").
func (v *Volume) Touch(path string) error {
	now := nowMillis()
	dir, base, err := resolveParentAutoMkdir(v.Root, path, now)
	if err != nil {
		return err
	}
	n, ok := dir.Children[base]
	if !ok {
		if !validName(base) {
			return newErr(KindInvalid, "touch", path)
		}
		created := newFile(0o644, 0, 0, now)
		created.Bloom = buildBloom(created.Data)
		dir.Children[base] = created
		dir.touchForChildChange(now)
		return nil
	}
	if n.Type == TypeSymlink {
		target, err := resolve(v.Root, path, true)
		if err != nil {
			return err
		}
		target.Meta.Atime = now
		target.Meta.Mtime = now
		return nil
	}
	n.Meta.Atime = now
	n.Meta.Mtime = now
	return nil
}

// Mkdir creates an empty directory at path, per FS.MKDIR. If parents is
// true (the PARENTS flag), missing ancestor directories are created along
// the way and an already-existing directory at path is not an error;
// otherwise a missing ancestor is ENOENT, a non-directory ancestor is
// ENOTDIR, and an existing path of any type is EEXIST.
func (v *Volume) Mkdir(path string, parents bool) error {
	comps, err := splitComponents(path)
	if err != nil {
		return err
	}
	if len(comps) == 0 {
		if parents {
			return nil // "/" always exists
		}
		return newErr(KindExists, "mkdir", path)
	}

	if !parents {
		dir, base, err := resolveParent(v.Root, path)
		if err != nil {
			return err
		}
		if _, exists := dir.Children[base]; exists {
			return newErr(KindExists, "mkdir", path)
		}
		if !validName(base) {
			return newErr(KindInvalid, "mkdir", path)
		}
		now := nowMillis()
		dir.Children[base] = newDir(0o755, 0, 0, now)
		dir.touchForChildChange(now)
		return nil
	}

	cur := v.Root
	now := nowMillis()
	for i, name := range comps {
		child, ok := cur.Children[name]
		if !ok {
			child = newDir(0o755, 0, 0, now)
			cur.Children[name] = child
			cur.touchForChildChange(now)
		} else if child.Type != TypeDir {
			if i == len(comps)-1 {
				return newErr(KindExists, "mkdir", path)
			}
			return newErr(KindNotDir, "mkdir", path)
		}
		cur = child
	}
	return nil
}

// resolveParentAutoMkdir splits path into its containing directory and
// basename like resolveParent, but creates any missing intermediate
// directory along the way instead of failing ENOENT — the "auto-mkdir-p on
// parents" behavior spec.md §4.3 gives ECHO, APPEND, and TOUCH. The walk is
// purely lexical (mirrors Mkdir's PARENTS loop above), not symlink-aware
// like resolve.go's general walk, so a symlink among the already-existing
// intermediate components is ENOTDIR rather than followed — the same
// implementation-level limitation documented for MKDIR PARENTS in
// DESIGN.md.
func resolveParentAutoMkdir(root *Node, path string, now uint64) (*Node, string, error) {
	parent, base, err := splitParent(path)
	if err != nil {
		return nil, "", err
	}
	if base == "" {
		return nil, "", newErr(KindInvalid, "resolve", path)
	}
	cur := root
	for _, name := range parent {
		child, ok := cur.Children[name]
		if !ok {
			child = newDir(0o755, 0, 0, now)
			cur.Children[name] = child
			cur.touchForChildChange(now)
		} else if child.Type != TypeDir {
			return nil, "", newErr(KindNotDir, "resolve", path)
		}
		cur = child
	}
	return cur, base, nil
}

// Rm removes the node at path, per FS.RM. A directory requires recursive
// to be true unless it is empty; recursive also permits removing a single
// file or symlink (it only changes directory handling). It returns the
// count of nodes removed (the target plus, for a recursive directory
// removal, every descendant), matching FS.RM's documented return value.
func (v *Volume) Rm(path string, recursive bool) (int, error) {
	dir, base, err := resolveParent(v.Root, path)
	if err != nil {
		return 0, err
	}
	n, ok := dir.Children[base]
	if !ok {
		return 0, newErr(KindNoEntry, "rm", path)
	}
	if n.Type == TypeDir && len(n.Children) > 0 && !recursive {
		return 0, newErr(KindNotEmpty, "rm", path)
	}
	count := countSubtree(n)
	delete(dir.Children, base)
	dir.touchForChildChange(nowMillis())
	return count, nil
}

// Cp copies the node at src to dst, per FS.CP. recursive is required to
// copy a directory (mirroring cp -r); a single file or symlink copies
// regardless of recursive. The destination may be an existing File,
// Symlink, or empty Directory, all of which are replaced; an existing
// non-empty Directory at dst is EEXIST. Copying a path onto itself is a
// no-op that still reports the size it would have copied. It returns the
// count of nodes copied.
func (v *Volume) Cp(src, dst string, recursive bool) (int, error) {
	if clean, err := cleanPath(src); err == nil {
		if cleanDst, err2 := cleanPath(dst); err2 == nil && clean == cleanDst {
			n, err := resolve(v.Root, src, false)
			if err != nil {
				return 0, err
			}
			return countSubtree(n), nil
		}
	}

	srcNode, err := resolve(v.Root, src, false)
	if err != nil {
		return 0, err
	}
	if srcNode.Type == TypeDir && !recursive {
		return 0, newErr(KindIsDir, "cp", src)
	}

	dstDir, base, err := resolveParent(v.Root, dst)
	if err != nil {
		return 0, err
	}
	if existing, ok := dstDir.Children[base]; ok {
		if existing.Type == TypeDir && len(existing.Children) > 0 {
			return 0, newErr(KindExists, "cp", dst)
		}
	}
	if !validName(base) {
		return 0, newErr(KindInvalid, "cp", dst)
	}

	now := nowMillis()
	copied := srcNode.clone()
	touchSubtreeCtime(copied, now)
	dstDir.Children[base] = copied
	dstDir.touchForChildChange(now)
	return countSubtree(copied), nil
}

// Mv renames/moves the node at src to dst, per FS.MV. Overwrite at dst is
// permitted only File-onto-File or Dir-onto-empty-Dir; every other
// combination (including anything onto a Symlink, or a Symlink onto
// anything) is EEXIST. Moving a directory into its own subtree is EINVAL,
// checked lexically on the cleaned paths since Node carries no parent
// pointers to walk structurally.
func (v *Volume) Mv(src, dst string) error {
	cleanSrc, err := cleanPath(src)
	if err != nil {
		return err
	}
	cleanDst, err := cleanPath(dst)
	if err != nil {
		return err
	}
	if cleanSrc == cleanDst {
		return nil
	}
	if isLexicalDescendant(cleanDst, cleanSrc) {
		return newErr(KindInvalid, "mv", dst)
	}

	srcDir, srcBase, err := resolveParent(v.Root, src)
	if err != nil {
		return err
	}
	srcNode, ok := srcDir.Children[srcBase]
	if !ok {
		return newErr(KindNoEntry, "mv", src)
	}

	dstDir, dstBase, err := resolveParent(v.Root, dst)
	if err != nil {
		return err
	}
	if !validName(dstBase) {
		return newErr(KindInvalid, "mv", dst)
	}
	if existing, ok := dstDir.Children[dstBase]; ok {
		switch {
		case srcNode.Type == TypeFile && existing.Type == TypeFile:
			// replace
		case srcNode.Type == TypeDir && existing.Type == TypeDir && len(existing.Children) == 0:
			// replace
		default:
			return newErr(KindExists, "mv", dst)
		}
	}

	now := nowMillis()
	delete(srcDir.Children, srcBase)
	srcDir.touchForChildChange(now)
	dstDir.Children[dstBase] = srcNode
	dstDir.touchForChildChange(now)
	srcNode.Meta.Ctime = now
	return nil
}

// isLexicalDescendant reports whether candidate names a path at or below
// ancestor in the tree, purely by string comparison on cleaned paths — a
// lexical stand-in for the structural ancestry check Node's parent-less
// design makes awkward to perform directly.
func isLexicalDescendant(candidate, ancestor string) bool {
	if candidate == ancestor {
		return true
	}
	if ancestor == "/" {
		return true
	}
	return strings.HasPrefix(candidate, ancestor+"/")
}

// Chmod sets the low 12 bits of the node at path's mode, per FS.CHMOD. A
// final symlink is followed, so chmodding a link changes its target's mode
// (invariant 7, POSIX chmod semantics), not the link's own.
func (v *Volume) Chmod(path string, mode uint16) error {
	n, err := resolve(v.Root, path, true)
	if err != nil {
		return err
	}
	n.Meta.Mode = mode & 0o7777
	n.Meta.Ctime = nowMillis()
	return nil
}

// Chown sets the owning uid/gid of the node at path, per FS.CHOWN. Like
// Chmod, a final symlink is followed.
func (v *Volume) Chown(path string, uid, gid uint32) error {
	n, err := resolve(v.Root, path, true)
	if err != nil {
		return err
	}
	n.Meta.UID = uid
	n.Meta.GID = gid
	n.Meta.Ctime = nowMillis()
	return nil
}

// Ln creates a symlink at linkPath pointing at target, per FS.LN. target is
// stored verbatim and is not validated against the tree (a dangling or
// cyclic symlink is permitted to exist; it only fails at resolve time).
func (v *Volume) Ln(target, linkPath string) error {
	dir, base, err := resolveParent(v.Root, linkPath)
	if err != nil {
		return err
	}
	if _, exists := dir.Children[base]; exists {
		return newErr(KindExists, "ln", linkPath)
	}
	if !validName(base) {
		return newErr(KindInvalid, "ln", linkPath)
	}
	now := nowMillis()
	dir.Children[base] = newSymlink(target, 0o777, 0, 0, now)
	dir.touchForChildChange(now)
	return nil
}

// Utimens sets the atime and mtime of the node at path to the given
// millisecond timestamps, per FS.UTIMENS. Like Chmod/Chown, a final
// symlink is followed (invariant 7: metadata operations follow the
// symlink to its target).
func (v *Volume) Utimens(path string, atime, mtime uint64) error {
	n, err := resolve(v.Root, path, true)
	if err != nil {
		return err
	}
	n.Meta.Atime = atime
	n.Meta.Mtime = mtime
	n.Meta.Ctime = nowMillis()
	return nil
}

// touchForChildChange bumps a directory's mtime/ctime to now whenever its
// Children map gains or loses an entry. spec.md's invariant 2 notes that a
// mutation's ancestor paths may observe a STAT change; this is the single
// place that decision is implemented, so every mutator above stays
// consistent about when a directory "changed".
func (n *Node) touchForChildChange(now uint64) {
	n.Meta.Mtime = now
	n.Meta.Ctime = now
}
