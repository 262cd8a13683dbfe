package kcompat

import "strings"

// Evaluate turns a located span (or its absence) into a [Verdict].
// origin names the source the span came from and is woven into the
// evidence string; for [TestAbsent] the caller passes the list of
// consulted candidates instead of a span.
func Evaluate(span *DeclarationSpan, test VerdictTest, origin string) Verdict {
	switch test.Kind {
	case TestPresence:
		if span == nil {
			return Verdict{}
		}
		return Verdict{OK: true, Evidence: origin + ": " + fragmentHead(span.Text)}
	case TestMatches:
		if span == nil {
			return Verdict{}
		}
		if !test.re.MatchString(span.Text) {
			return Verdict{Evidence: origin + ": no match for '" + test.Pattern + "'"}
		}
		return Verdict{OK: true, Evidence: origin + ": matched '" + fragmentHead(test.re.FindString(span.Text)) + "'"}
	case TestLacks:
		// A missing declaration is a false verdict: the feature
		// cannot be assessed when its base declaration is gone.
		if span == nil {
			return Verdict{}
		}
		if test.re.MatchString(span.Text) {
			return Verdict{Evidence: origin + ": found '" + test.Pattern + "'"}
		}
		return Verdict{OK: true, Evidence: origin + ": lacks '" + test.Pattern + "'"}
	case TestAbsent:
		if span != nil {
			return Verdict{Evidence: origin + ": " + fragmentHead(span.Text)}
		}
		return Verdict{OK: true, Evidence: "absent from " + origin}
	default:
		return Verdict{}
	}
}

// fragmentHead compresses a span to a single short evidence line.
func fragmentHead(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	const max = 60
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
