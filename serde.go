// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/redisfs/redisfs/internal/walkstack"
)

// Wire format (little-endian throughout), grounded on the fixed-header,
// pre-order-tag encoding quay-claircore's rpm/ndb package uses for its own
// database value blobs, adapted here from a flat record table to a tree:
//
//	magic   [4]byte  "RFSv"
//	version uint16
//	volID   uint64
//	then one record per node, in pre-order (a directory's record is
//	immediately followed by its children's records, each including their
//	own subtrees, so decode can rebuild structure with an explicit stack
//	instead of recursing):
//	  tag   uint8    0=dir 1=file 2=symlink
//	  mode  uint16
//	  uid   uint32
//	  gid   uint32
//	  atime uint64
//	  mtime uint64
//	  ctime uint64
//	  size  uint64   child count / payload length / target length, by tag
//	  payload, by tag:
//	    dir:     childCount uint32, then childCount * (nameLen uint16, name []byte)
//	    file:    dataLen uint64, then data []byte, then the bloom bitmap
//	             (bloomBits/64 little-endian uint64 words)
//	    symlink: targetLen uint16, then target []byte
const serdeVersion = 1

var serdeMagic = [4]byte{'R', 'F', 'S', 'v'}

// Marshal encodes v into the wire format described above. The walk is
// iterative (walkstack.Stack), not native recursion, so an adversarially
// deep tree can't exhaust the call stack while encoding (spec.md §5).
func (v *Volume) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(serdeMagic[:])
	writeU16(&buf, serdeVersion)
	writeU64(&buf, v.ID)

	stack := walkstack.New(v.Root)
	for {
		n, ok := stack.Pop()
		if !ok {
			break
		}
		if err := encodeNode(&buf, n); err != nil {
			return nil, err
		}
		if n.Type == TypeDir {
			// Push children in reverse sorted order so popping restores
			// ascending order, matching decode's expectation of a
			// deterministic pre-order layout.
			names := n.sortedNames()
			for i := len(names) - 1; i >= 0; i-- {
				stack.Push(n.Children[names[i]])
			}
		}
	}
	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, n *Node) error {
	buf.WriteByte(byte(n.Type))
	writeU16(buf, n.Meta.Mode)
	writeU32(buf, n.Meta.UID)
	writeU32(buf, n.Meta.GID)
	writeU64(buf, n.Meta.Atime)
	writeU64(buf, n.Meta.Mtime)
	writeU64(buf, n.Meta.Ctime)
	writeU64(buf, n.size())

	switch n.Type {
	case TypeDir:
		names := n.sortedNames()
		writeU32(buf, uint32(len(names)))
		for _, name := range names {
			if len(name) > 0xffff {
				return newErr(KindInvalid, "marshal", name)
			}
			writeU16(buf, uint16(len(name)))
			buf.WriteString(name)
		}
	case TypeFile:
		writeU64(buf, uint64(len(n.Data)))
		buf.Write(n.Data)
		writeBloom(buf, n.Bloom)
	case TypeSymlink:
		if len(n.Target) > 0xffff {
			return newErr(KindInvalid, "marshal", n.Target)
		}
		writeU16(buf, uint16(len(n.Target)))
		buf.WriteString(n.Target)
	default:
		return newErr(KindInvalid, "marshal", "")
	}
	return nil
}

// pendingDir tracks, while decoding, a directory whose declared children
// have not all been read off the stream yet, and the names they attach
// under (recovered from the stream, not yet matched to decoded nodes).
type pendingDir struct {
	node    *Node
	names   []string
	nextIdx int
}

// Unmarshal decodes data produced by Marshal into a fresh Volume. Every
// structural invariant from spec.md §3 is checked as the tree is rebuilt
// (tag validity, name ordering and legality, declared child counts
// actually present, no trailing or missing bytes); any violation aborts
// the whole decode with ErrCorrupt, since a partially rebuilt volume is
// not a value this package will ever hand back to a caller. The walk is
// iterative (spec.md §5).
func Unmarshal(data []byte) (*Volume, error) {
	r := bytes.NewReader(data)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != serdeMagic {
		return nil, newErr(KindCorrupt, "unmarshal", "")
	}
	version, err := readU16(r)
	if err != nil || version != serdeVersion {
		return nil, newErr(KindCorrupt, "unmarshal", "")
	}
	volID, err := readU64(r)
	if err != nil {
		return nil, newErr(KindCorrupt, "unmarshal", "")
	}

	root, rootNames, err := decodeNode(r)
	if err != nil {
		return nil, err
	}
	if root.Type != TypeDir {
		return nil, newErr(KindCorrupt, "unmarshal", "")
	}

	var pending []*pendingDir
	if len(rootNames) > 0 {
		pending = append(pending, &pendingDir{node: root, names: rootNames})
	}

	for len(pending) > 0 {
		top := pending[len(pending)-1]
		if top.nextIdx >= len(top.names) {
			pending = pending[:len(pending)-1]
			continue
		}
		name := top.names[top.nextIdx]
		top.nextIdx++

		child, childNames, err := decodeNode(r)
		if err != nil {
			return nil, err
		}
		top.node.Children[name] = child
		if len(childNames) > 0 {
			pending = append(pending, &pendingDir{node: child, names: childNames})
		}
	}

	if r.Len() != 0 {
		return nil, newErr(KindCorrupt, "unmarshal", "")
	}
	return &Volume{ID: volID, Root: root}, nil
}

// decodeNode reads one node record. For a directory it also returns the
// declared child names (in the stream's order, which Marshal always
// writes ascending); the caller is responsible for reading and attaching
// that many subsequent records.
func decodeNode(r *bytes.Reader) (*Node, []string, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, nil, newErr(KindCorrupt, "unmarshal", "")
	}
	tag := Type(tagByte)
	if tag != TypeDir && tag != TypeFile && tag != TypeSymlink {
		return nil, nil, newErr(KindCorrupt, "unmarshal", "")
	}

	mode, err1 := readU16(r)
	uid, err2 := readU32(r)
	gid, err3 := readU32(r)
	atime, err4 := readU64(r)
	mtime, err5 := readU64(r)
	ctime, err6 := readU64(r)
	size, err7 := readU64(r)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil || err7 != nil {
		return nil, nil, newErr(KindCorrupt, "unmarshal", "")
	}

	n := &Node{Type: tag, Meta: Meta{Mode: mode, UID: uid, GID: gid, Atime: atime, Mtime: mtime, Ctime: ctime}}

	switch tag {
	case TypeDir:
		count, err := readU32(r)
		if err != nil {
			return nil, nil, newErr(KindCorrupt, "unmarshal", "")
		}
		if size != uint64(count) {
			// Invariant 3: a Directory's size equals its direct child count.
			return nil, nil, newErr(KindCorrupt, "unmarshal", "")
		}
		n.Children = make(map[string]*Node, count)
		names := make([]string, 0, count)
		var prev string
		for i := uint32(0); i < count; i++ {
			nameLen, err := readU16(r)
			if err != nil {
				return nil, nil, newErr(KindCorrupt, "unmarshal", "")
			}
			nameBytes := make([]byte, nameLen)
			if _, err := io.ReadFull(r, nameBytes); err != nil {
				return nil, nil, newErr(KindCorrupt, "unmarshal", "")
			}
			name := string(nameBytes)
			if !validName(name) {
				return nil, nil, newErr(KindCorrupt, "unmarshal", "")
			}
			if i > 0 && name <= prev {
				// Marshal always writes names in strictly ascending order;
				// anything else means the blob was tampered with or never
				// came from this package.
				return nil, nil, newErr(KindCorrupt, "unmarshal", "")
			}
			prev = name
			names = append(names, name)
		}
		return n, names, nil
	case TypeFile:
		dataLen, err := readU64(r)
		if err != nil {
			return nil, nil, newErr(KindCorrupt, "unmarshal", "")
		}
		if size != dataLen {
			return nil, nil, newErr(KindCorrupt, "unmarshal", "")
		}
		n.Data = make([]byte, dataLen)
		if _, err := io.ReadFull(r, n.Data); err != nil {
			return nil, nil, newErr(KindCorrupt, "unmarshal", "")
		}
		bloom, err := readBloom(r)
		if err != nil {
			return nil, nil, newErr(KindCorrupt, "unmarshal", "")
		}
		n.Bloom = bloom
	case TypeSymlink:
		targetLen, err := readU16(r)
		if err != nil {
			return nil, nil, newErr(KindCorrupt, "unmarshal", "")
		}
		if size != uint64(targetLen) {
			return nil, nil, newErr(KindCorrupt, "unmarshal", "")
		}
		targetBytes := make([]byte, targetLen)
		if _, err := io.ReadFull(r, targetBytes); err != nil {
			return nil, nil, newErr(KindCorrupt, "unmarshal", "")
		}
		n.Target = string(targetBytes)
	}
	return n, nil, nil
}

// writeBloom serializes a file's bloom bitmap verbatim, per spec.md §4.7's
// file payload (length + bytes + bloom bitmap). A nil filter (shouldn't
// occur — every File-producing path builds one) is written as all-zero
// bits rather than panicking.
func writeBloom(buf *bytes.Buffer, f *bloomFilter) {
	if f == nil {
		f = &bloomFilter{}
	}
	for _, word := range f.bits {
		writeU64(buf, word)
	}
}

func readBloom(r *bytes.Reader) (*bloomFilter, error) {
	f := &bloomFilter{}
	for i := range f.bits {
		word, err := readU64(r)
		if err != nil {
			return nil, err
		}
		f.bits[i] = word
	}
	return f, nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readU16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
