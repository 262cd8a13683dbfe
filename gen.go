package kcompat

import (
	"fmt"
	"io"
	"strings"
)

// Gen evaluates one query against the tree and writes zero or one macro
// definition line to w. It reports whether a macro was emitted.
//
// Candidate files are consulted in the caller's order and the first one
// containing the declaration decides the verdict (first-match-wins);
// later candidates are never read once a declaration is found. This
// models headers relocating across kernel versions without any version
// detection. For absent tests every candidate is checked.
//
// A query whose candidates all resolve away produces a false verdict
// (true for absent) and no error: absence reflects the scanned tree's
// version and is a normal outcome. Read failures on resolved files are
// returned as *[ScanError]; the caller must treat them as fatal.
func Gen(q Query, root SourceRoot, w io.Writer) (bool, error) {
	refs := root.Resolve(q.Files)

	var span *DeclarationSpan
	var origin string
	for _, ref := range refs {
		text, err := root.ReadSource(ref)
		if err != nil {
			return false, &ScanError{Path: ref.Name(), Macro: q.Macro, Err: err}
		}

		span = locate(q, text)
		if span != nil {
			origin = ref.Name()
			break
		}
	}

	if q.Test.Kind == TestAbsent {
		if span == nil {
			origin = candidateNames(q.Files)
		}
		v := Evaluate(span, q.Test, origin)
		return emit(w, q, v)
	}

	if span == nil {
		return false, nil
	}
	v := Evaluate(span, q.Test, origin)
	return emit(w, q, v)
}

func emit(w io.Writer, q Query, v Verdict) (bool, error) {
	if !v.OK {
		return false, nil
	}
	line := MacroLine{Name: q.Macro, Comment: v.Evidence}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return false, fmt.Errorf("write macro %s: %w", q.Macro, err)
	}
	return true, nil
}

func locate(q Query, text string) *DeclarationSpan {
	if q.MethodOf != "" {
		return FindMethod(q.MethodOf, q.Name, text)
	}
	switch q.Kind {
	case KindFun:
		return FindFunction(q.Name, text)
	case KindStruct:
		return FindStruct(q.Name, text)
	case KindEnum:
		return FindEnum(q.Name, text)
	case KindMacro:
		return FindMacro(q.Name, text)
	default:
		return nil
	}
}

func candidateNames(refs []FileRef) string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name())
	}
	return strings.Join(names, ", ")
}
