// Package kcompat generates kernel compatibility feature macros for
// out-of-tree network drivers.
//
// Given the public headers of an arbitrary kernel source tree, kcompat
// answers questions of the form "does construct K named N exist, and if
// so does its text match pattern P?" and emits a header of boolean
// feature macros (HAVE_X / NEED_X) consumed by conditional-compilation
// code. A single driver source tree can then build against many
// divergent kernel versions and vendor forks without per-target
// branches.
//
// # API Model
//
// kcompat intentionally exposes three layers:
//   - [FindFunction], [FindStruct], [FindEnum], [FindMacro], and
//     [FindMethod] locate declaration spans in header text
//   - [Gen] evaluates one [Query] against a [SourceRoot] and emits at
//     most one macro line
//   - [Runner] validates the target tree, iterates the [Catalog], and
//     manages output capture
//
// Queries are written in a one-line declarative grammar parsed by
// [ParseQuery]:
//
//	HAVE_X if struct devlink_flash_update_params matches 'struct firmware \*fw' in include/net/devlink.h
//	NEED_Y if fun eth_hw_addr_set absent in include/linux/etherdevice.h
//	HAVE_Z if method ndo_eth_ioctl of net_device_ops in include/linux/netdevice.h
//
// # Matching Model
//
// The engine is a deliberately narrow structural text scanner: it
// understands brace nesting, multi-line prototypes, backslash-continued
// macro definitions, and designated-initializer method tables, but it
// is not a C parser. It cannot see past unbalanced macro-generated
// braces and skips comments and string literals only best-effort. That
// is an accepted trade-off: headers across vendors and years are too
// syntactically diverse for full parsing without preprocessor context,
// and existence/shape questions do not need it.
//
// Absence is never an error. A declaration that is not found produces a
// false verdict (or a true one, for absent tests); only malformed
// catalog entries, a missing source tree, a missing build config, and
// I/O failures on files that passed resolution abort a run.
//
// # Quick Run
//
// Generate the full macro set for a tree:
//
//	r := &kcompat.Runner{
//	    Root:       kcompat.SourceRoot("/usr/src/linux"),
//	    ConfigPath: "/usr/src/linux/.config",
//	    Out:        os.Stdout,
//	    Diag:       os.Stderr,
//	}
//	report, err := r.Run()
//	if err != nil {
//	    var re *kcompat.RunError
//	    if errors.As(err, &re) {
//	        os.Exit(re.Code)
//	    }
//	    os.Exit(1)
//	}
package kcompat
