package kcompat

import (
	"regexp"
	"strings"
)

// FindMethod locates a named field of an operation-table struct. It
// answers two distinct questions that cannot be conflated: "does the
// table's type declare this field" (field-in-type) and "what did the
// author wire into this field" (field-in-instance). The type
// declaration is consulted first; designated-initializer instances are
// the fallback, first instance carrying the field wins. Returns nil
// when neither yields the field.
func FindMethod(structType, field, src string) *DeclarationSpan {
	if sp := findFieldInType(structType, field, src); sp != nil {
		return sp
	}
	return findFieldInInstance(structType, field, src)
}

// findFieldInType extracts the member declaration named field from the
// struct's type declaration. The span is the member text, so signature
// tests (extack parameters, const-ness) run against the declared shape.
func findFieldInType(structType, field, src string) *DeclarationSpan {
	span := FindStruct(structType, src)
	if span == nil {
		return nil
	}

	stripped := stripNonCode(span.Text)
	open := strings.IndexByte(stripped, '{')
	close := strings.LastIndexByte(stripped, '}')
	if open < 0 || close <= open {
		return nil
	}

	fieldRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(field) + `\b`)

	// Members end at depth-0 semicolons relative to the struct body;
	// anonymous struct/union members keep their inner semicolons.
	depth := 0
	memberStart := open + 1
	for i := open + 1; i < close; i++ {
		switch stripped[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ';':
			if depth != 0 {
				continue
			}
			member := stripped[memberStart : i+1]
			if fieldRe.MatchString(member) {
				s := memberStart
				for s < i && isSpace(stripped[s]) {
					s++
				}
				return &DeclarationSpan{
					Text:  span.Text[s : i+1],
					Start: span.Start + s,
					End:   span.Start + i + 1,
				}
			}
			memberStart = i + 1
		}
	}
	return nil
}

// findFieldInInstance extracts the expression assigned to .field inside
// a designated-initializer literal of the struct type. All instances in
// the source are consulted in order.
func findFieldInInstance(structType, field, src string) *DeclarationSpan {
	stripped := stripNonCode(src)

	instRe := regexp.MustCompile(`\bstruct\s+` + regexp.QuoteMeta(structType) + `\b[^;{}()]*=\s*\{`)
	assignRe := regexp.MustCompile(`^\.` + regexp.QuoteMeta(field) + `\s*=`)

	for _, loc := range instRe.FindAllStringIndex(stripped, -1) {
		open := strings.LastIndexByte(stripped[loc[0]:loc[1]], '{') + loc[0]
		end := matchBrace(stripped, open)
		if end < 0 {
			continue
		}

		if sp := fieldAssignment(src, stripped, open+1, end-1, assignRe); sp != nil {
			return sp
		}
	}
	return nil
}

// fieldAssignment scans an initializer body [start,end) for a depth-0
// `.field =` designator and returns the assigned expression, which runs
// to the next depth-0 comma or the end of the body.
func fieldAssignment(src, stripped string, start, end int, assignRe *regexp.Regexp) *DeclarationSpan {
	depth := 0
	for i := start; i < end; i++ {
		switch stripped[i] {
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		case '.':
			if depth != 0 {
				continue
			}
			m := assignRe.FindStringIndex(stripped[i:end])
			if m == nil {
				continue
			}

			exprStart := i + m[1]
			for exprStart < end && isSpace(stripped[exprStart]) {
				exprStart++
			}

			exprEnd := exprStart
			d := 0
			for j := exprStart; j < end; j++ {
				switch stripped[j] {
				case '{', '(':
					d++
				case '}', ')':
					d--
				case ',':
					if d == 0 {
						exprEnd = j
						goto done
					}
				}
			}
			exprEnd = end
		done:
			text := strings.TrimRight(src[exprStart:exprEnd], " \t\n")
			return &DeclarationSpan{
				Text:  text,
				Start: exprStart,
				End:   exprStart + len(text),
			}
		}
	}
	return nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
