// Copyright (C) 2026 The redis-fs Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redisfs

// Glob is a compiled name/line pattern: "*" matches any run (including
// empty) of bytes, "?" matches exactly one byte, "[...]" matches a
// character class (with "a-z" ranges and "[!...]" negation), and "\x"
// escapes any byte literally (including inside a class). An unterminated
// class or a trailing "\" is treated as a literal character, matching
// spec.md §4.1. Matching is byte-oriented; NOCASE folds ASCII letters only.
//
// A Glob holds the pattern text and the NOCASE flag; Match and Tokens scan
// the pattern afresh on each call, nothing is precomputed.
type Glob struct {
	pattern string
	nocase  bool
}

// NewGlob compiles pattern for repeated matching. nocase folds ASCII
// A-Z/a-z on both the pattern and the subject during Match.
func NewGlob(pattern string, nocase bool) *Glob {
	return &Glob{pattern: pattern, nocase: nocase}
}

// Match reports whether subject matches the compiled pattern in full.
func (g *Glob) Match(subject string) bool {
	return globMatch(g.pattern, subject, g.nocase)
}

// Tokens returns the maximal runs of non-metacharacter bytes embedded in
// the pattern (e.g. "*er*ror*" yields ["er", "ror"]). Escaped metacharacters
// contribute their literal byte to the current run rather than splitting
// it. Used by GREP's bloom pre-filter (spec.md §4.5).
func (g *Glob) Tokens() []string {
	var tokens []string
	var cur []byte
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = nil
		}
	}
	p := g.pattern
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch c {
		case '*', '?':
			flush()
		case '[':
			flush()
			end := findClassEnd(p, i)
			if end < 0 {
				// Unterminated class: the '[' (and everything after) is
				// literal, per spec.md.
				cur = append(cur, p[i:]...)
				i = len(p)
				continue
			}
			i = end
		case '\\':
			if i+1 < len(p) {
				cur = append(cur, p[i+1])
				i++
			} else {
				cur = append(cur, c)
			}
		default:
			cur = append(cur, c)
		}
	}
	flush()
	return tokens
}

// findClassEnd returns the index of the "]" that closes the class starting
// at p[start] (which must be '['), or -1 if the class is unterminated. A
// "]" immediately after "[" or "[!" is a literal member of the class, not
// its closer, matching common glob semantics. A backslash-escaped "]" is
// a member, not the closer.
func findClassEnd(p string, start int) int {
	i := start + 1
	if i < len(p) && p[i] == '!' {
		i++
	}
	if i < len(p) && p[i] == ']' {
		i++
	}
	for ; i < len(p); i++ {
		if p[i] == '\\' {
			i++
			continue
		}
		if p[i] == ']' {
			return i
		}
	}
	return -1
}

func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// globMatch is a classic backtracking glob matcher extended with character
// classes and backslash escapes. Recursion depth is bounded by the pattern
// length, not the subject, so it stays well within Go's stack for any
// realistic file name or line of text.
func globMatch(pattern, subject string, nocase bool) bool {
	return matchHere(pattern, subject, nocase)
}

func matchHere(pattern, subject string, nocase bool) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			// Collapse runs of '*' and try every split point.
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(subject); i++ {
				if matchHere(pattern, subject[i:], nocase) {
					return true
				}
			}
			return false
		case '?':
			if len(subject) == 0 {
				return false
			}
			pattern = pattern[1:]
			subject = subject[1:]
		case '[':
			if len(subject) == 0 {
				return false
			}
			end := findClassEnd(pattern, 0)
			if end < 0 {
				// Literal '['.
				if !byteEq(pattern[0], subject[0], nocase) {
					return false
				}
				pattern = pattern[1:]
				subject = subject[1:]
				continue
			}
			if !matchClass(pattern[1:end], subject[0], nocase) {
				return false
			}
			pattern = pattern[end+1:]
			subject = subject[1:]
		case '\\':
			var want byte
			if len(pattern) > 1 {
				want = pattern[1]
				pattern = pattern[2:]
			} else {
				want = '\\'
				pattern = pattern[1:]
			}
			if len(subject) == 0 || !byteEq(want, subject[0], nocase) {
				return false
			}
			subject = subject[1:]
		default:
			if len(subject) == 0 || !byteEq(pattern[0], subject[0], nocase) {
				return false
			}
			pattern = pattern[1:]
			subject = subject[1:]
		}
	}
	return len(subject) == 0
}

func byteEq(a, b byte, nocase bool) bool {
	if nocase {
		return foldByte(a) == foldByte(b)
	}
	return a == b
}

// matchClass reports whether c matches the class body (the text between
// "[" and "]", negation marker already consumed into body[0]=='!').
func matchClass(body string, c byte, nocase bool) bool {
	negate := false
	if len(body) > 0 && body[0] == '!' {
		negate = true
		body = body[1:]
	}
	if nocase {
		c = foldByte(c)
	}
	matched := false
	for i := 0; i < len(body); i++ {
		lo := body[i]
		if lo == '\\' && i+1 < len(body) {
			i++
			lo = body[i]
		}
		if i+2 < len(body) && body[i+1] == '-' && body[i+2] != ']' {
			hi := body[i+2]
			lo2, hi2 := lo, hi
			if nocase {
				lo2, hi2 = foldByte(lo), foldByte(hi)
			}
			if lo2 <= c && c <= hi2 {
				matched = true
			}
			i += 2
			continue
		}
		cand := lo
		if nocase {
			cand = foldByte(cand)
		}
		if cand == c {
			matched = true
		}
	}
	return matched != negate
}
