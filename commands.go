// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import (
	"strconv"
	"strings"

	"github.com/redisfs/redisfs/internal/walkstack"
)

// Reply is the value a Handler returns: an integer, a bulk byte string, or
// a (possibly nested) array of replies, matching the three result shapes
// spec.md §6's command table uses. It carries no protocol framing of its
// own — turning a Reply into wire bytes is the host engine's job, not
// this package's (spec.md §1's "core owns the data model and commands,
// not the host engine").
type Reply interface{}

// Handler implements one FS.* command against an already-resolved Volume.
// args excludes the command name and the key; the key is resolved to v by
// the caller before Dispatch ever reaches a Handler.
type Handler func(v *Volume, args []string) (Reply, error)

// Commands is the FS.* name to Handler table. Names are upper-case,
// matching the command table in spec.md §6.
var Commands = map[string]Handler{
	"FS.ECHO":     cmdEcho,
	"FS.APPEND":   cmdAppend,
	"FS.CAT":      cmdCat,
	"FS.TOUCH":    cmdTouch,
	"FS.MKDIR":    cmdMkdir,
	"FS.LS":       cmdLs,
	"FS.RM":       cmdRm,
	"FS.CP":       cmdCp,
	"FS.MV":       cmdMv,
	"FS.FIND":     cmdFind,
	"FS.GREP":     cmdGrep,
	"FS.STAT":     cmdStat,
	"FS.TEST":     cmdTest,
	"FS.CHMOD":    cmdChmod,
	"FS.CHOWN":    cmdChown,
	"FS.LN":       cmdLn,
	"FS.READLINK": cmdReadlink,
	"FS.TREE":     cmdTree,
	"FS.INFO":     cmdInfo,
	"FS.UTIMENS":  cmdUtimens,
}

// Dispatch looks up cmd in Commands and invokes it against v with args
// (the command's arguments, with the command name and key already
// stripped — a host engine owns key resolution, per spec.md §1's
// out-of-scope list). An unknown command name is reported as KindInvalid.
func Dispatch(v *Volume, cmd string, args []string) (Reply, error) {
	h, ok := Commands[strings.ToUpper(cmd)]
	if !ok {
		return nil, newErr(KindInvalid, "dispatch", cmd)
	}
	return h(v, args)
}

// hasFlag reports whether flag (case-insensitive) is present among args,
// matching spec.md §6's trailing bare-word flags (APPEND, PARENTS,
// RECURSIVE, LONG, NOCASE).
func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}

// namedArg returns the value following the first case-insensitive
// occurrence of key in args (e.g. "TYPE" in "... TYPE file"), and whether
// it was found.
func namedArg(args []string, key string) (string, bool) {
	for i, a := range args {
		if strings.EqualFold(a, key) && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func cmdEcho(v *Volume, args []string) (Reply, error) {
	if len(args) < 2 {
		return nil, newErr(KindInvalid, "echo", "")
	}
	path, data := args[0], []byte(args[1])
	if hasFlag(args[2:], "APPEND") {
		if err := v.Append(path, data); err != nil {
			return nil, err
		}
	} else if err := v.Echo(path, data); err != nil {
		return nil, err
	}
	return int64(len(data)), nil
}

func cmdAppend(v *Volume, args []string) (Reply, error) {
	if len(args) < 2 {
		return nil, newErr(KindInvalid, "append", "")
	}
	data := []byte(args[1])
	if err := v.Append(args[0], data); err != nil {
		return nil, err
	}
	return int64(len(data)), nil
}

func cmdCat(v *Volume, args []string) (Reply, error) {
	if len(args) < 1 {
		return nil, newErr(KindInvalid, "cat", "")
	}
	data, err := v.Cat(args[0])
	if err != nil {
		return nil, err
	}
	return data, nil
}

func cmdTouch(v *Volume, args []string) (Reply, error) {
	if len(args) < 1 {
		return nil, newErr(KindInvalid, "touch", "")
	}
	if err := v.Touch(args[0]); err != nil {
		return nil, err
	}
	return int64(1), nil
}

func cmdMkdir(v *Volume, args []string) (Reply, error) {
	if len(args) < 1 {
		return nil, newErr(KindInvalid, "mkdir", "")
	}
	if err := v.Mkdir(args[0], hasFlag(args[1:], "PARENTS")); err != nil {
		return nil, err
	}
	return int64(1), nil
}

func cmdLs(v *Volume, args []string) (Reply, error) {
	if len(args) < 1 {
		return nil, newErr(KindInvalid, "ls", "")
	}
	entries, err := v.Ls(args[0])
	if err != nil {
		return nil, err
	}
	long := hasFlag(args[1:], "LONG")
	out := make([]Reply, 0, len(entries))
	for _, e := range entries {
		if !long {
			out = append(out, e.Name)
			continue
		}
		out = append(out, []Reply{e.Name, statReply(e.StatResult)})
	}
	return out, nil
}

func cmdRm(v *Volume, args []string) (Reply, error) {
	if len(args) < 1 {
		return nil, newErr(KindInvalid, "rm", "")
	}
	count, err := v.Rm(args[0], hasFlag(args[1:], "RECURSIVE"))
	if err != nil {
		return nil, err
	}
	return int64(count), nil
}

func cmdCp(v *Volume, args []string) (Reply, error) {
	if len(args) < 2 {
		return nil, newErr(KindInvalid, "cp", "")
	}
	count, err := v.Cp(args[0], args[1], hasFlag(args[2:], "RECURSIVE"))
	if err != nil {
		return nil, err
	}
	return int64(count), nil
}

func cmdMv(v *Volume, args []string) (Reply, error) {
	if len(args) < 2 {
		return nil, newErr(KindInvalid, "mv", "")
	}
	if err := v.Mv(args[0], args[1]); err != nil {
		return nil, err
	}
	return int64(1), nil
}

func cmdFind(v *Volume, args []string) (Reply, error) {
	if len(args) < 2 {
		return nil, newErr(KindInvalid, "find", "")
	}
	typeFilter, _ := namedArg(args[2:], "TYPE")
	matches, err := v.Find(args[0], NewGlob(args[1], false), typeFilter)
	if err != nil {
		return nil, err
	}
	out := make([]Reply, len(matches))
	for i, m := range matches {
		out[i] = m.Path
	}
	return out, nil
}

func cmdGrep(v *Volume, args []string) (Reply, error) {
	if len(args) < 2 {
		return nil, newErr(KindInvalid, "grep", "")
	}
	nocase := hasFlag(args[2:], "NOCASE")
	matches, err := v.Grep(args[0], NewGlob(args[1], nocase))
	if err != nil {
		return nil, err
	}
	out := make([]Reply, len(matches))
	for i, m := range matches {
		out[i] = []Reply{m.Path, int64(m.Line), m.Text}
	}
	return out, nil
}

func cmdStat(v *Volume, args []string) (Reply, error) {
	if len(args) < 1 {
		return nil, newErr(KindInvalid, "stat", "")
	}
	r, err := v.Stat(args[0])
	if err != nil {
		return nil, err
	}
	return statReply(r), nil
}

func cmdTest(v *Volume, args []string) (Reply, error) {
	if len(args) < 1 {
		return nil, newErr(KindInvalid, "test", "")
	}
	ok, err := v.Test(args[0])
	if err != nil {
		return nil, err
	}
	if ok {
		return int64(1), nil
	}
	return int64(0), nil
}

func cmdChmod(v *Volume, args []string) (Reply, error) {
	if len(args) < 2 {
		return nil, newErr(KindInvalid, "chmod", "")
	}
	mode, err := strconv.ParseUint(args[1], 8, 16)
	if err != nil {
		return nil, newErr(KindInvalid, "chmod", args[1])
	}
	if err := v.Chmod(args[0], uint16(mode)); err != nil {
		return nil, err
	}
	return int64(1), nil
}

func cmdChown(v *Volume, args []string) (Reply, error) {
	if len(args) < 3 {
		return nil, newErr(KindInvalid, "chown", "")
	}
	uid, err1 := strconv.ParseUint(args[1], 10, 32)
	gid, err2 := strconv.ParseUint(args[2], 10, 32)
	if err1 != nil || err2 != nil {
		return nil, newErr(KindInvalid, "chown", "")
	}
	if err := v.Chown(args[0], uint32(uid), uint32(gid)); err != nil {
		return nil, err
	}
	return int64(1), nil
}

func cmdLn(v *Volume, args []string) (Reply, error) {
	if len(args) < 2 {
		return nil, newErr(KindInvalid, "ln", "")
	}
	if err := v.Ln(args[0], args[1]); err != nil {
		return nil, err
	}
	return int64(1), nil
}

func cmdReadlink(v *Volume, args []string) (Reply, error) {
	if len(args) < 1 {
		return nil, newErr(KindInvalid, "readlink", "")
	}
	target, err := v.Readlink(args[0])
	if err != nil {
		return nil, err
	}
	return []byte(target), nil
}

func cmdTree(v *Volume, args []string) (Reply, error) {
	if len(args) < 1 {
		return nil, newErr(KindInvalid, "tree", "")
	}
	depth := -1
	if raw, ok := namedArg(args[1:], "DEPTH"); ok {
		d, err := strconv.Atoi(raw)
		if err != nil {
			return nil, newErr(KindInvalid, "tree", raw)
		}
		depth = d
	}
	root, err := v.Tree(args[0], depth)
	if err != nil {
		return nil, err
	}
	return treeReply(root), nil
}

func cmdInfo(v *Volume, _ []string) (Reply, error) {
	r := v.Info()
	return []Reply{
		"volume_id", int64(r.VolumeID),
		"dirs", int64(r.Dirs),
		"files", int64(r.Files),
		"symlinks", int64(r.Symlinks),
		"total_bytes", int64(r.TotalBytes),
	}, nil
}

func cmdUtimens(v *Volume, args []string) (Reply, error) {
	if len(args) < 3 {
		return nil, newErr(KindInvalid, "utimens", "")
	}
	atime, err1 := strconv.ParseUint(args[1], 10, 64)
	mtime, err2 := strconv.ParseUint(args[2], 10, 64)
	if err1 != nil || err2 != nil {
		return nil, newErr(KindInvalid, "utimens", "")
	}
	if err := v.Utimens(args[0], atime, mtime); err != nil {
		return nil, err
	}
	return int64(1), nil
}

// statReply renders a StatResult as the flat key/value array FS.STAT and
// FS.LS LONG both return.
func statReply(r StatResult) Reply {
	out := []Reply{
		"type", r.Type,
		"size", int64(r.Size),
		"mode", int64(r.Mode),
		"uid", int64(r.UID),
		"gid", int64(r.GID),
		"atime", int64(r.Atime),
		"mtime", int64(r.Mtime),
		"ctime", int64(r.Ctime),
	}
	if r.Type == "symlink" {
		out = append(out, "target", r.Target)
	}
	return out
}

// treeReply renders a TreeEntry as the nested-array shape FS.TREE returns:
// [name, stat-pairs, [child, child, ...]].
func treeReply(e *TreeEntry) Reply {
	children := make([]Reply, len(e.Children))
	for i, c := range e.Children {
		children[i] = treeReply(c)
	}
	return []Reply{e.Name, statReply(e.StatResult), children}
}

// VolumeCodec is the hook set a host key-value engine uses to manage a
// redis-fs Volume as a native value type: serialize a volume to bytes
// for persistence/replication, deserialize it back, estimate its memory
// footprint for accounting, and free any resources it holds on eviction.
// This package never calls these itself; they exist for a host engine's
// module-registration code to wire up (spec.md §1 keeps the host engine
// out of scope, §6 names the hooks a native type needs to provide).
type VolumeCodec interface {
	Serialize(v *Volume) ([]byte, error)
	Deserialize(data []byte) (*Volume, error)
	SizeEstimate(v *Volume) uint64
	Free(v *Volume)
}

// binaryCodec is the default VolumeCodec, backed directly by Marshal and
// Unmarshal.
type binaryCodec struct{}

// DefaultCodec is the VolumeCodec a host engine should register unless it
// has a reason to do something else (e.g. compress the serialized form).
var DefaultCodec VolumeCodec = binaryCodec{}

func (binaryCodec) Serialize(v *Volume) ([]byte, error) { return v.Marshal() }

func (binaryCodec) Deserialize(data []byte) (*Volume, error) { return Unmarshal(data) }

// SizeEstimate walks the tree and sums each node's resident payload size,
// for a host engine's memory accounting. It does not attempt to model Go
// allocator overhead, matching spec.md's framing of this as an estimate.
func (binaryCodec) SizeEstimate(v *Volume) uint64 {
	const nodeOverhead = 64
	var total uint64
	stack := walkstack.New(v.Root)
	for {
		n, ok := stack.Pop()
		if !ok {
			break
		}
		total += nodeOverhead
		switch n.Type {
		case TypeDir:
			for _, child := range n.Children {
				stack.Push(child)
			}
		case TypeFile:
			total += uint64(len(n.Data))
		case TypeSymlink:
			total += uint64(len(n.Target))
		}
	}
	return total
}

// Free releases v's resources. In-memory volumes hold nothing outside the
// Go heap, so this is a no-op; it exists so a host engine's eviction path
// has a uniform hook to call regardless of which VolumeCodec is
// registered.
func (binaryCodec) Free(v *Volume) {}
