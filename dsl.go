package kcompat

import (
	"fmt"
	"strings"
)

// ParseQuery parses one catalog entry. The grammar is one line:
//
//	MACRO if KIND NAME in FILE...
//	MACRO if KIND NAME (matches|lacks) 'PATTERN' in FILE...
//	MACRO if KIND NAME absent in FILE...
//	MACRO if method FIELD of TYPE [(matches|lacks) 'PATTERN'] in FILE...
//
// KIND is one of fun, struct, enum, macro. PATTERN is a single-quoted
// extended regular expression; quoting is optional for patterns without
// whitespace. FILE... are root-relative paths; the token `-` stands for
// a literal source the caller attaches via [Query.WithLiteral].
//
// Anything else is a *[CatalogError]: entries are programmer-authored
// configuration, and a silently skipped entry would corrupt the macro
// set, so parsing fails closed.
func ParseQuery(entry string) (Query, error) {
	toks, err := tokenize(entry)
	if err != nil {
		return Query{}, &CatalogError{Entry: entry, Reason: "bad quoting", Err: err}
	}
	if len(toks) < 5 {
		return Query{}, &CatalogError{Entry: entry, Reason: "too few tokens"}
	}

	q := Query{Macro: toks[0].text}
	if q.Macro == "" || toks[0].quoted {
		return Query{}, &CatalogError{Entry: entry, Reason: "missing macro name"}
	}
	if toks[1].text != "if" {
		return Query{}, &CatalogError{Entry: entry, Reason: "expected 'if' after macro name"}
	}

	i := 2
	if toks[i].text == "method" {
		// method FIELD of TYPE
		if len(toks) < i+4 || toks[i+2].text != "of" {
			return Query{}, &CatalogError{Entry: entry, Reason: "expected 'method FIELD of TYPE'"}
		}
		q.Kind = KindFun
		q.Name = toks[i+1].text
		q.MethodOf = toks[i+3].text
		i += 4
	} else {
		kind, err := ParseKind(toks[i].text)
		if err != nil {
			return Query{}, &CatalogError{Entry: entry, Reason: "bad kind", Err: err}
		}
		if len(toks) < i+2 {
			return Query{}, &CatalogError{Entry: entry, Reason: "missing subject name"}
		}
		q.Kind = kind
		q.Name = toks[i+1].text
		i += 2
	}

	q.Test = Presence()
	switch {
	case i < len(toks) && !toks[i].quoted && toks[i].text == "absent":
		q.Test = Absent()
		i++
	case i < len(toks) && !toks[i].quoted && (toks[i].text == "matches" || toks[i].text == "lacks"):
		op := toks[i].text
		if i+1 >= len(toks) {
			return Query{}, &CatalogError{Entry: entry, Reason: fmt.Sprintf("missing pattern after %q", op)}
		}
		pattern := toks[i+1].text
		var t VerdictTest
		var err error
		if op == "matches" {
			t, err = Matches(pattern)
		} else {
			t, err = Lacks(pattern)
		}
		if err != nil {
			return Query{}, &CatalogError{Entry: entry, Reason: "bad pattern", Err: err}
		}
		q.Test = t
		i += 2
	}

	if i >= len(toks) || toks[i].text != "in" {
		return Query{}, &CatalogError{Entry: entry, Reason: "expected 'in FILE...'"}
	}
	i++

	if i >= len(toks) {
		return Query{}, &CatalogError{Entry: entry, Reason: "no candidate files"}
	}
	for ; i < len(toks); i++ {
		q.Files = append(q.Files, FileRef{Path: toks[i].text})
	}

	return q, nil
}

// WithLiteral returns a copy of the query whose `-` candidates carry
// the given inline text. Used by region entries to re-query an already
// extracted fragment instead of rescanning the file it came from.
func (q Query) WithLiteral(text string) Query {
	files := make([]FileRef, len(q.Files))
	for i, f := range q.Files {
		if !f.IsLiteral && f.Path == "-" {
			files[i] = LiteralRef(text)
		} else {
			files[i] = f
		}
	}
	q.Files = files
	return q
}

type token struct {
	text   string
	quoted bool
}

// tokenize splits on whitespace, keeping single-quoted runs (which may
// contain spaces) as one token with the quotes stripped.
func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}

		if s[i] == '\'' {
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote at offset %d", i)
			}
			toks = append(toks, token{text: s[i+1 : i+1+end], quoted: true})
			i += end + 2
			continue
		}

		start := i
		for i < len(s) && !isSpace(s[i]) {
			i++
		}
		toks = append(toks, token{text: s[start:i]})
	}
	return toks, nil
}
