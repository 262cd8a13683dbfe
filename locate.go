package kcompat

import (
	"regexp"
	"strings"
)

// The locators are a structural text scanner, not a C parser. They
// operate on a stripped shadow of the source (same length, comments and
// literal contents blanked) so that offsets carry over, and slice the
// returned span from the original text. Known limits: unbalanced
// macro-generated braces defeat the depth counter, and only well-formed
// comments/literals are skipped. Header text is well-formed enough in
// practice that this is an accepted risk.

// stripNonCode blanks comments and string/char literal contents with
// spaces, preserving byte offsets. Newlines inside comments survive so
// line-oriented scans (macros) still work.
func stripNonCode(src string) string {
	b := []byte(src)
	out := make([]byte, len(b))
	copy(out, b)

	const (
		code = iota
		lineComment
		blockComment
		strLit
		charLit
	)
	state := code

	for i := 0; i < len(b); i++ {
		c := b[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(b) && b[i+1] == '/':
				state = lineComment
				out[i] = ' '
			case c == '/' && i+1 < len(b) && b[i+1] == '*':
				state = blockComment
				out[i] = ' '
			case c == '"':
				state = strLit
			case c == '\'':
				state = charLit
			}
		case lineComment:
			if c == '\n' {
				state = code
			} else {
				out[i] = ' '
			}
		case blockComment:
			if c == '*' && i+1 < len(b) && b[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				state = code
			} else if c != '\n' {
				out[i] = ' '
			}
		case strLit:
			switch c {
			case '\\':
				out[i] = ' '
				if i+1 < len(b) {
					out[i+1] = ' '
					i++
				}
			case '"':
				state = code
			default:
				if c != '\n' {
					out[i] = ' '
				}
			}
		case charLit:
			switch c {
			case '\\':
				out[i] = ' '
				if i+1 < len(b) {
					out[i+1] = ' '
					i++
				}
			case '\'':
				state = code
			default:
				if c != '\n' {
					out[i] = ' '
				}
			}
		}
	}

	return string(out)
}

// matchBrace returns the offset just past the brace that closes the one
// at open, or -1 when the text is unbalanced. stripped must be the
// stripNonCode shadow so literal/comment braces are invisible.
func matchBrace(stripped string, open int) int {
	depth := 0
	for i := open; i < len(stripped); i++ {
		switch stripped[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// findBraceSpan anchors on `keyword name {` and extends the span by
// brace-depth counting to the matching close, including a trailing
// semicolon when one immediately follows.
func findBraceSpan(keyword, name, src string) *DeclarationSpan {
	stripped := stripNonCode(src)

	re := regexp.MustCompile(`\b` + keyword + `\s+` + regexp.QuoteMeta(name) + `\s*\{`)
	loc := re.FindStringIndex(stripped)
	if loc == nil {
		return nil
	}

	open := strings.IndexByte(stripped[loc[0]:loc[1]], '{') + loc[0]
	end := matchBrace(stripped, open)
	if end < 0 {
		return nil
	}

	// Trailing `;` (possibly after whitespace) belongs to the
	// declaration statement.
	i := end
	for i < len(stripped) && (stripped[i] == ' ' || stripped[i] == '\t' || stripped[i] == '\n') {
		i++
	}
	if i < len(stripped) && stripped[i] == ';' {
		end = i + 1
	}

	return &DeclarationSpan{Text: src[loc[0]:end], Start: loc[0], End: end}
}

// FindStruct locates the first `struct name { ... }` declaration,
// matching nested braces so anonymous struct/union members are
// contained in one span. Returns nil when absent.
func FindStruct(name, src string) *DeclarationSpan {
	return findBraceSpan("struct", name, src)
}

// FindEnum locates the first `enum name { ... }` declaration. Returns
// nil when absent.
func FindEnum(name, src string) *DeclarationSpan {
	return findBraceSpan("enum", name, src)
}

// FindFunction locates the first prototype-like occurrence of name
// followed by a parenthesized parameter list. The span starts after the
// previous statement boundary, so return type and modifier prefixes are
// part of it, and runs through the matching close parenthesis plus an
// optional trailing semicolon. Multi-line prototypes are handled by the
// same parenthesis balancing. Returns nil when absent.
func FindFunction(name, src string) *DeclarationSpan {
	stripped := stripNonCode(src)

	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
	loc := re.FindStringIndex(stripped)
	if loc == nil {
		return nil
	}

	open := strings.IndexByte(stripped[loc[0]:loc[1]], '(') + loc[0]
	depth := 0
	end := -1
	for i := open; i < len(stripped); i++ {
		switch stripped[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil
	}

	i := end
	for i < len(stripped) && (stripped[i] == ' ' || stripped[i] == '\t' || stripped[i] == '\n') {
		i++
	}
	if i < len(stripped) && stripped[i] == ';' {
		end = i + 1
	}

	// Pull the span start back to the previous statement boundary so
	// the return type and attribute/modifier prefixes are visible to
	// pattern tests.
	start := strings.LastIndexAny(stripped[:loc[0]], ";{}") + 1
	for start < loc[0] && (stripped[start] == ' ' || stripped[start] == '\t' || stripped[start] == '\n') {
		start++
	}

	return &DeclarationSpan{Text: src[start:end], Start: start, End: end}
}

// FindMacro locates the first `#define name` and returns its logical
// line, following backslash continuations. Returns nil when absent.
func FindMacro(name, src string) *DeclarationSpan {
	stripped := stripNonCode(src)
	re := regexp.MustCompile(`^[ \t]*#[ \t]*define[ \t]+` + regexp.QuoteMeta(name) + `(\b|\()`)

	pos := 0
	for pos < len(stripped) {
		nl := strings.IndexByte(stripped[pos:], '\n')
		lineEnd := len(stripped)
		if nl >= 0 {
			lineEnd = pos + nl
		}

		if re.MatchString(stripped[pos:lineEnd]) {
			end := lineEnd
			for end < len(src) && strings.HasSuffix(strings.TrimRight(src[pos:end], " \t"), "\\") {
				next := strings.IndexByte(src[end+1:], '\n')
				if next < 0 {
					end = len(src)
					break
				}
				end = end + 1 + next
			}
			return &DeclarationSpan{Text: src[pos:end], Start: pos, End: end}
		}

		if nl < 0 {
			break
		}
		pos = lineEnd + 1
	}
	return nil
}
