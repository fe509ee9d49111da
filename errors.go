// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

import "errors"

// Kind identifies a class of volume operation failure. Every Kind maps to a
// stable, client-visible message token.
type Kind int

const (
	// KindNoEntry means a path component is missing.
	KindNoEntry Kind = iota
	// KindNotDir means a non-final path component is not a directory.
	KindNotDir
	// KindIsDir means a file-only operation was attempted on a directory.
	KindIsDir
	// KindExists means a create targeted a path that already exists.
	KindExists
	// KindNotEmpty means rm targeted a non-empty directory without RECURSIVE.
	KindNotEmpty
	// KindLoop means symlink resolution exceeded the hop budget.
	KindLoop
	// KindInvalid means the request's syntax or arguments are malformed.
	KindInvalid
	// KindNotLink means readlink targeted a non-symlink.
	KindNotLink
	// KindCorrupt means a serialized volume failed validation on decode.
	KindCorrupt
)

// token returns the stable message fragment for a Kind, as specified by
// spec.md §7.
func (k Kind) token() string {
	switch k {
	case KindNoEntry:
		return "no such file or directory"
	case KindNotDir:
		return "not a directory"
	case KindIsDir:
		return "is a directory"
	case KindExists:
		return "file exists"
	case KindNotEmpty:
		return "directory not empty"
	case KindLoop:
		return "too many symbolic links"
	case KindInvalid:
		return "invalid argument"
	case KindNotLink:
		return "not a symbolic link"
	case KindCorrupt:
		return "corrupt value"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every volume operation that fails.
// It carries a Kind so callers (including the command dispatch table) can
// distinguish failure classes without parsing message text.
type Error struct {
	Kind Kind
	Path string // path the error concerns, if any
	Op   string // command or internal operation that failed, if any
}

func (e *Error) Error() string {
	msg := e.Kind.token()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	return msg
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, redisfs.ErrNoEntry) style checks.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// newErr constructs an *Error for the given kind, op and path.
func newErr(kind Kind, op, path string) error {
	return &Error{Kind: kind, Op: op, Path: path}
}

// Sentinels for the nine error kinds, usable with errors.Is against any
// *Error sharing the same Kind (the Path/Op fields are ignored by Is).
var (
	ErrNoEntry  = &Error{Kind: KindNoEntry}
	ErrNotDir   = &Error{Kind: KindNotDir}
	ErrIsDir    = &Error{Kind: KindIsDir}
	ErrExists   = &Error{Kind: KindExists}
	ErrNotEmpty = &Error{Kind: KindNotEmpty}
	ErrLoop     = &Error{Kind: KindLoop}
	ErrInvalid  = &Error{Kind: KindInvalid}
	ErrNotLink  = &Error{Kind: KindNotLink}
	ErrCorrupt  = &Error{Kind: KindCorrupt}
)

// KindOf reports the Kind of err, if err is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
