package kcompat

import (
	"errors"
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindFun, "fun"},
		{KindStruct, "struct"},
		{KindEnum, "enum"},
		{KindMacro, "macro"},
		{Kind(42), "Kind(42)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestParseKind_RoundTrip(t *testing.T) {
	for _, name := range KindNames() {
		k, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", name, err)
		}
		if k.String() != name {
			t.Errorf("round trip %q -> %v -> %q", name, k, k.String())
		}
	}

	if _, err := ParseKind("union"); err == nil {
		t.Error("ParseKind(union) expected error")
	}
}

func TestMacroLineString(t *testing.T) {
	m := MacroLine{Name: "HAVE_X", Comment: "f.h: struct x { ... }"}
	if got, want := m.String(), "#define HAVE_X 1 /* f.h: struct x { ... } */"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	bare := MacroLine{Name: "HAVE_Y"}
	if got, want := bare.String(), "#define HAVE_Y 1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
	}{
		{"catalog", &CatalogError{Entry: "e", Reason: "r", Err: base}},
		{"scan", &ScanError{Path: "p", Macro: "M", Err: base}},
		{"run", &RunError{Code: ExitBadSource, Path: "p", Reason: "r", Err: base}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, base) {
				t.Errorf("%v does not unwrap to the cause", tt.err)
			}
			if tt.err.Error() == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestRunError_Message(t *testing.T) {
	err := &RunError{Code: ExitNoConfig, Path: "/tree/.config", Reason: "build configuration missing"}
	if !strings.Contains(err.Error(), "/tree/.config") {
		t.Errorf("error %q does not name the expected path", err.Error())
	}
}
