package kcompat

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies the C construct a query is about.
type Kind int

const (
	// KindFun is a function prototype (or a method of an operation
	// table when [Query.MethodOf] is set).
	KindFun Kind = iota
	// KindStruct is a struct type declaration.
	KindStruct
	// KindEnum is an enum type declaration.
	KindEnum
	// KindMacro is a #define.
	KindMacro
)

var kindNames = map[Kind]string{
	KindFun:    "fun",
	KindStruct: "struct",
	KindEnum:   "enum",
	KindMacro:  "macro",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// KindNames returns the accepted kind keywords in grammar order.
func KindNames() []string {
	return []string{"fun", "struct", "enum", "macro"}
}

// ParseKind converts a grammar keyword into a [Kind].
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "fun":
		return KindFun, nil
	case "struct":
		return KindStruct, nil
	case "enum":
		return KindEnum, nil
	case "macro":
		return KindMacro, nil
	default:
		return 0, fmt.Errorf("unknown kind: %q (available: %s)", s, strings.Join(KindNames(), ", "))
	}
}

// TestKind selects how a located span is turned into a verdict.
type TestKind int

const (
	// TestPresence holds when the declaration exists.
	TestPresence TestKind = iota
	// TestMatches holds when the declaration exists and its span
	// matches the pattern.
	TestMatches
	// TestLacks holds when the declaration exists and its span does
	// not match the pattern. A missing declaration is a false
	// verdict: the feature cannot be assessed without it.
	TestLacks
	// TestAbsent holds when no candidate file contains the
	// declaration.
	TestAbsent
)

func (t TestKind) String() string {
	switch t {
	case TestPresence:
		return "presence"
	case TestMatches:
		return "matches"
	case TestLacks:
		return "lacks"
	case TestAbsent:
		return "absent"
	default:
		return fmt.Sprintf("TestKind(%d)", t)
	}
}

// VerdictTest is a compiled verdict directive. Pattern-carrying tests
// are compiled at construction so malformed catalog entries fail the
// run before any file is scanned.
type VerdictTest struct {
	Kind    TestKind
	Pattern string

	re *regexp.Regexp
}

// Presence returns a presence-only test.
func Presence() VerdictTest {
	return VerdictTest{Kind: TestPresence}
}

// Absent returns an absent test.
func Absent() VerdictTest {
	return VerdictTest{Kind: TestAbsent}
}

// Matches compiles pattern into a matches test.
func Matches(pattern string) (VerdictTest, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return VerdictTest{}, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return VerdictTest{Kind: TestMatches, Pattern: pattern, re: re}, nil
}

// Lacks compiles pattern into a lacks test.
func Lacks(pattern string) (VerdictTest, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return VerdictTest{}, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return VerdictTest{Kind: TestLacks, Pattern: pattern, re: re}, nil
}

// FileRef names one candidate source for a query: either a path
// relative to the source root, or inline literal text (used to
// re-query a fragment already extracted, e.g. an operation-table
// region, without rescanning the file it came from).
type FileRef struct {
	Path    string
	Literal string
	// IsLiteral distinguishes an inline source from a path, so that
	// empty literal text (a region that was never found) stays a
	// valid, always-resolvable source yielding no declarations.
	IsLiteral bool
}

// LiteralRef wraps inline text as a resolvable source.
func LiteralRef(text string) FileRef {
	return FileRef{Literal: text, IsLiteral: true}
}

// Name returns the evidence name for the source.
func (f FileRef) Name() string {
	if f.IsLiteral {
		return "<inline>"
	}
	return f.Path
}

// Query is one feature check: does construct Kind named Name
// (optionally: field Name of table MethodOf) satisfy Test in the first
// of Files that contains it?
type Query struct {
	Macro    string
	Kind     Kind
	MethodOf string // operation-table type; only set when Kind is KindFun
	Name     string
	Test     VerdictTest
	Files    []FileRef
}

// DeclarationSpan is the minimal self-consistent text fragment for one
// declaration: balanced braces for struct/enum bodies, the prototype
// through its closing parenthesis for functions, the logical line for
// macros.
type DeclarationSpan struct {
	Text  string
	Start int
	End   int
}

// Verdict is a boolean outcome plus the evidence that produced it.
type Verdict struct {
	OK       bool
	Evidence string
}

// MacroLine is one emitted feature macro.
type MacroLine struct {
	Name    string
	Comment string
}

func (m MacroLine) String() string {
	if m.Comment == "" {
		return fmt.Sprintf("#define %s 1", m.Name)
	}
	return fmt.Sprintf("#define %s 1 /* %s */", m.Name, m.Comment)
}

// Process exit codes reported by the top-level handler.
const (
	// ExitOK means the run completed and the macro set is complete.
	ExitOK = 0
	// ExitInternal covers catalog errors and I/O failures.
	ExitInternal = 1
	// ExitBadSource means the source tree is missing or unrecognizable.
	ExitBadSource = 2
	// ExitNoConfig means the build configuration input is missing.
	ExitNoConfig = 3
)

// CatalogError reports a malformed catalog entry. It is a programmer
// error: a silently skipped query would corrupt the macro set, so the
// whole run aborts.
type CatalogError struct {
	Entry  string
	Reason string
	Err    error
}

func (e *CatalogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog entry %q: %s: %v", e.Entry, e.Reason, e.Err)
	}
	return fmt.Sprintf("catalog entry %q: %s", e.Entry, e.Reason)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// ScanError reports an I/O failure reading a source that passed
// resolution. Partial, inconsistent output is worse than none, so it
// aborts the run.
type ScanError struct {
	Path  string
	Macro string
	Err   error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s (query %s): %v", e.Path, e.Macro, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// RunError is a fatal run-level failure carrying the documented process
// exit code for its cause.
type RunError struct {
	Code   int
	Path   string
	Reason string
	Err    error
}

func (e *RunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
