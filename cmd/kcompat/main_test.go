package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/leodido/kcompat"
)

func TestKindFlag_Set(t *testing.T) {
	tests := []struct {
		input string
		want  kcompat.Kind
	}{
		{"fun", kcompat.KindFun},
		{"struct", kcompat.KindStruct},
		{"enum", kcompat.KindEnum},
		{"macro", kcompat.KindMacro},
		{"MACRO", kcompat.KindMacro}, // case-insensitive
		{" struct ", kcompat.KindStruct},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var k kindFlag
			if err := k.Set(tt.input); err != nil {
				t.Fatalf("Set(%q) error = %v", tt.input, err)
			}
			if kcompat.Kind(k) != tt.want {
				t.Errorf("Set(%q) = %v, want %v", tt.input, kcompat.Kind(k), tt.want)
			}
		})
	}
}

func TestKindFlag_SetUnknown(t *testing.T) {
	var k kindFlag
	err := k.Set("typedef")
	if err == nil {
		t.Fatal("Set(typedef) expected error")
	}

	msg := err.Error()
	if !strings.Contains(msg, `unknown kind: "typedef"`) {
		t.Errorf("error %q missing unknown kind context", msg)
	}
	if !strings.Contains(msg, "available:") {
		t.Errorf("error %q missing available kinds", msg)
	}
}

func TestKindFlag_String(t *testing.T) {
	k := kindFlag(kcompat.KindStruct)
	if got := k.String(); got != "struct" {
		t.Errorf("String() = %q, want %q", got, "struct")
	}
}

func TestResolveRoot(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv("KSRC", "/env/tree")
		got, err := resolveRoot("/flag/tree")
		if err != nil {
			t.Fatalf("resolveRoot() error = %v", err)
		}
		if got != "/flag/tree" {
			t.Errorf("resolveRoot() = %q, want flag value", got)
		}
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("KSRC", "/env/tree")
		got, err := resolveRoot("")
		if err != nil {
			t.Fatalf("resolveRoot() error = %v", err)
		}
		if got != "/env/tree" {
			t.Errorf("resolveRoot() = %q, want env value", got)
		}
	})

	t.Run("neither", func(t *testing.T) {
		t.Setenv("KSRC", "")
		if _, err := resolveRoot(""); err == nil {
			t.Error("resolveRoot() expected error with no flag and no env")
		}
	})
}

func TestResolveInputs_ConfigDefault(t *testing.T) {
	ksrc, kconfig, err := resolveInputs("/tree", "")
	if err != nil {
		t.Fatalf("resolveInputs() error = %v", err)
	}
	if ksrc != "/tree" {
		t.Errorf("ksrc = %q", ksrc)
	}
	if kconfig != filepath.Join("/tree", ".config") {
		t.Errorf("kconfig = %q, want <ksrc>/.config", kconfig)
	}

	_, kconfig, err = resolveInputs("/tree", "/elsewhere/config")
	if err != nil {
		t.Fatalf("resolveInputs() error = %v", err)
	}
	if kconfig != "/elsewhere/config" {
		t.Errorf("kconfig = %q, want explicit flag value", kconfig)
	}
}
