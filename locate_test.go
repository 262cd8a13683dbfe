package kcompat

import (
	"strings"
	"testing"
)

const devlinkHeader = `/* SPDX-License-Identifier: GPL-2.0 */
#ifndef _NET_DEVLINK_H_
#define _NET_DEVLINK_H_

struct devlink_flash_update_params {
	const struct firmware *fw;
	struct {
		u8 overwrite_settings;
		u8 overwrite_identifiers;
	} overwrite_mask;
	const char *component;
};

enum devlink_port_type {
	DEVLINK_PORT_TYPE_NOTSET,
	DEVLINK_PORT_TYPE_AUTO,
	DEVLINK_PORT_TYPE_ETH,
};

struct devlink_health_reporter *
devlink_health_reporter_create(struct devlink *devlink,
			       const struct devlink_health_reporter_ops *ops,
			       u64 graceful_period, bool auto_recover,
			       void *priv);

#endif /* _NET_DEVLINK_H_ */
`

func TestFindStruct(t *testing.T) {
	span := FindStruct("devlink_flash_update_params", devlinkHeader)
	if span == nil {
		t.Fatal("FindStruct() = nil, want span")
	}

	if !strings.HasPrefix(span.Text, "struct devlink_flash_update_params {") {
		t.Errorf("span starts with %q", span.Text[:min(40, len(span.Text))])
	}
	// Nested anonymous struct braces must not terminate the span early.
	if !strings.Contains(span.Text, "overwrite_mask") {
		t.Errorf("span %q misses nested member", span.Text)
	}
	if !strings.Contains(span.Text, "const char *component;") {
		t.Errorf("span %q ends before the last member", span.Text)
	}
	if !strings.HasSuffix(span.Text, "};") {
		t.Errorf("span %q does not end at the outer closing brace", span.Text)
	}
	if got := devlinkHeader[span.Start:span.End]; got != span.Text {
		t.Errorf("offsets [%d:%d] yield %q, want span text", span.Start, span.End, got)
	}
}

func TestFindStruct_Absent(t *testing.T) {
	if span := FindStruct("devlink_port_new_attrs", devlinkHeader); span != nil {
		t.Errorf("FindStruct(absent) = %q, want nil", span.Text)
	}
}

func TestFindStruct_IgnoresCommentsAndStrings(t *testing.T) {
	src := `/* struct fake { would confuse a naive scanner */
static const char *msg = "struct fake {";
struct real {
	int a; /* } not this one */
	int b;
};
`
	if span := FindStruct("fake", src); span != nil {
		t.Fatalf("FindStruct(fake) = %q, want nil (only in comment/string)", span.Text)
	}

	span := FindStruct("real", src)
	if span == nil {
		t.Fatal("FindStruct(real) = nil, want span")
	}
	if !strings.Contains(span.Text, "int b;") {
		t.Errorf("span %q cut short by a commented brace", span.Text)
	}
}

func TestFindEnum(t *testing.T) {
	span := FindEnum("devlink_port_type", devlinkHeader)
	if span == nil {
		t.Fatal("FindEnum() = nil, want span")
	}
	if !strings.Contains(span.Text, "DEVLINK_PORT_TYPE_ETH") {
		t.Errorf("span %q misses last member", span.Text)
	}

	if span := FindEnum("devlink_port_flavour", devlinkHeader); span != nil {
		t.Errorf("FindEnum(absent) = %q, want nil", span.Text)
	}
}

func TestFindFunction_MultiLinePrototype(t *testing.T) {
	span := FindFunction("devlink_health_reporter_create", devlinkHeader)
	if span == nil {
		t.Fatal("FindFunction() = nil, want span")
	}

	// Return type prefix and every parameter line belong to the span.
	if !strings.Contains(span.Text, "struct devlink_health_reporter *") {
		t.Errorf("span %q misses return type prefix", span.Text)
	}
	if !strings.Contains(span.Text, "auto_recover") {
		t.Errorf("span %q misses a parameter from a continuation line", span.Text)
	}
	if !strings.HasSuffix(span.Text, ";") {
		t.Errorf("span %q misses the statement terminator", span.Text)
	}
}

func TestFindFunction_StaticInline(t *testing.T) {
	src := `static inline void eth_hw_addr_set(struct net_device *dev,
				   const u8 *addr)
{
	__dev_addr_set(dev, addr, ETH_ALEN);
}
`
	span := FindFunction("eth_hw_addr_set", src)
	if span == nil {
		t.Fatal("FindFunction() = nil, want span")
	}
	if !strings.Contains(span.Text, "static inline void") {
		t.Errorf("span %q misses modifier prefix", span.Text)
	}
	if !strings.Contains(span.Text, "const u8 *addr)") {
		t.Errorf("span %q misses closing parenthesis", span.Text)
	}
}

func TestFindFunction_Absent(t *testing.T) {
	if span := FindFunction("devlink_params_publish", devlinkHeader); span != nil {
		t.Errorf("FindFunction(absent) = %q, want nil", span.Text)
	}
}

func TestFindMacro(t *testing.T) {
	src := `#ifndef _BITFIELD_H_
#define _BITFIELD_H_
#define DMA_ATTR_WEAK_ORDERING	(1UL << 1)
#define FIELD_PREP(_mask, _val)	\
	({	\
		((typeof(_mask))(_val) << __bf_shf(_mask)) & (_mask);	\
	})
#endif
`

	t.Run("single line", func(t *testing.T) {
		span := FindMacro("DMA_ATTR_WEAK_ORDERING", src)
		if span == nil {
			t.Fatal("FindMacro() = nil, want span")
		}
		if !strings.Contains(span.Text, "(1UL << 1)") {
			t.Errorf("span %q misses replacement text", span.Text)
		}
		if strings.Contains(span.Text, "FIELD_PREP") {
			t.Errorf("span %q leaks into the next definition", span.Text)
		}
	})

	t.Run("backslash continuations", func(t *testing.T) {
		span := FindMacro("FIELD_PREP", src)
		if span == nil {
			t.Fatal("FindMacro() = nil, want span")
		}
		if !strings.Contains(span.Text, "__bf_shf") {
			t.Errorf("span %q misses continuation lines", span.Text)
		}
		if strings.Contains(span.Text, "#endif") {
			t.Errorf("span %q extends past the logical line", span.Text)
		}
	})

	t.Run("name is not a prefix match", func(t *testing.T) {
		if span := FindMacro("DMA_ATTR", src); span != nil {
			t.Errorf("FindMacro(DMA_ATTR) = %q, want nil", span.Text)
		}
	})

	t.Run("absent", func(t *testing.T) {
		if span := FindMacro("GENMASK", src); span != nil {
			t.Errorf("FindMacro(absent) = %q, want nil", span.Text)
		}
	})
}

func TestFindStruct_FirstOccurrenceWins(t *testing.T) {
	src := `struct xdp_buff {
	void *data;
};
struct xdp_buff {
	void *data;
	void *data_meta;
};
`
	span := FindStruct("xdp_buff", src)
	if span == nil {
		t.Fatal("FindStruct() = nil, want span")
	}
	if strings.Contains(span.Text, "data_meta") {
		t.Errorf("span %q is not the first occurrence", span.Text)
	}
}
