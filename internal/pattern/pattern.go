// Package pattern implements the include/exclude/thread-attach-exempt glob
// matcher shared by the all-processes scanner (C6), the new-process
// interceptor (C7) and the mods manager (C10). See spec.md §4.6:
//
//	Pattern language: '|'-separated glob terms supporting '*' and '?'
//	(non-path-separator-aware match). A term without a backslash matches
//	against the filename only; a term with a backslash matches against the
//	full path. Environment variables are expanded; comparison is
//	case-insensitive.
package pattern

import (
	"os"
	"path"
	"strings"
)

// Set is a parsed, ready-to-match pattern list.
type Set struct {
	terms []term
}

type term struct {
	raw       string // expanded, upper-cased
	wholePath bool   // true if the term contains a backslash
}

// Compile parses a '|'-separated pattern string. An empty string compiles
// to a Set that matches nothing.
func Compile(spec string) Set {
	if spec == "" {
		return Set{}
	}
	parts := strings.Split(spec, "|")
	terms := make([]term, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		expanded := os.Expand(p, os.Getenv)
		terms = append(terms, term{
			raw:       strings.ToUpper(expanded),
			wholePath: strings.Contains(expanded, `\`),
		})
	}
	return Set{terms: terms}
}

// Matches reports whether fullPath matches any term in the set. A term
// without a backslash is matched against the filename only; a term with a
// backslash is matched against the full path (spec.md §4.6). Per the
// pattern-matcher law in spec.md §8: matches("ab|cd", x) <=> matches("ab",
// x) || matches("cd", x) — this falls out directly from iterating terms.
func (s Set) Matches(fullPath string) bool {
	if len(s.terms) == 0 {
		return false
	}
	upperFull := strings.ToUpper(fullPath)
	upperName := strings.ToUpper(path.Base(filepathToSlash(fullPath)))
	for _, t := range s.terms {
		var candidate string
		if t.wholePath {
			candidate = upperFull
		} else {
			candidate = upperName
		}
		if globMatch(t.raw, candidate) {
			return true
		}
	}
	return false
}

// Empty reports whether the set has no terms (the "empty include list
// rejects everything" case used by the mods manager, spec.md §4.10).
func (s Set) Empty() bool { return len(s.terms) == 0 }

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, `/`)
}

// globMatch implements '*' (any run of characters) and '?' (any one
// character) glob matching, deliberately not path-separator-aware: '*' in a
// whole-path term can match across directory separators, matching the
// source's use of a plain wildcard compare rather than filepath.Match.
func globMatch(patternUpper, nameUpper string) bool {
	return matchHere(patternUpper, nameUpper)
}

func matchHere(pat, s string) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case '*':
			// Collapse consecutive '*'.
			for len(pat) > 0 && pat[0] == '*' {
				pat = pat[1:]
			}
			if len(pat) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchHere(pat, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pat = pat[1:]
			s = s[1:]
		default:
			if len(s) == 0 || s[0] != pat[0] {
				return false
			}
			pat = pat[1:]
			s = s[1:]
		}
	}
	return len(s) == 0
}
