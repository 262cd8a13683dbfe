package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/leodido/kcompat"
	"github.com/leodido/structcli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"
)

// Build metadata injected via ldflags. When built without ldflags
// (e.g., plain `go build`), these remain at their zero values and the
// version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	root := &cobra.Command{
		Use:   "kcompat",
		Short: "Kernel compatibility feature-macro generator",
		Long: `kcompat scans a kernel source tree's public headers and emits a header of
HAVE_X / NEED_X feature macros for conditional compilation.

Point it at any kernel tree (vanilla, vendor fork, any version) and its .config;
the generated macros let a single driver source tree build against all of them
without per-target source branches.`,
		SilenceUsage: true,
	}

	root.AddCommand(genCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(locateCmd())
	root.AddCommand(catalogCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		var re *kcompat.RunError
		if errors.As(err, &re) {
			os.Exit(re.Code)
		}
		os.Exit(1)
	}
}

// GenOptions defines flags for the gen subcommand.
type GenOptions struct {
	KSrc    string `flag:"ksrc" flagshort:"k" flagdescr:"Kernel source tree root (defaults to $KSRC)"`
	KConfig string `flag:"kconfig" flagdescr:"Build configuration path (defaults to <ksrc>/.config)"`
	Output  string `flag:"output" flagshort:"o" flagdescr:"Write the generated header to a file instead of stdout"`
	JSON    bool   `flag:"json" flagshort:"j" flagdescr:"Print the run report as JSON to stderr"`
}

func (o *GenOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func genCmd() *cobra.Command {
	opts := &GenOptions{}

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the feature macro header for a source tree",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			ksrc, kconfig, err := resolveInputs(opts.KSrc, opts.KConfig)
			if err != nil {
				return err
			}

			r := &kcompat.Runner{
				Root:       kcompat.SourceRoot(ksrc),
				ConfigPath: kconfig,
				OutPath:    opts.Output,
				Out:        os.Stdout,
				Diag:       os.Stderr,
			}
			report, err := r.Run()
			if err != nil {
				return err
			}

			if opts.JSON {
				return printJSON(os.Stderr, report)
			}
			fmt.Fprint(os.Stderr, report)
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// QueryOptions defines flags for the query subcommand.
type QueryOptions struct {
	KSrc string `flag:"ksrc" flagshort:"k" flagdescr:"Kernel source tree root (defaults to $KSRC)"`
}

func (o *QueryOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func queryCmd() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query \"MACRO if KIND NAME [matches|lacks 'PATTERN'|absent] in FILE...\"",
		Short: "Evaluate a single catalog-grammar query against a tree",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			ksrc, err := resolveRoot(opts.KSrc)
			if err != nil {
				return err
			}

			q, err := kcompat.ParseQuery(args[0])
			if err != nil {
				return err
			}

			emitted, err := kcompat.Gen(q, kcompat.SourceRoot(ksrc), os.Stdout)
			if err != nil {
				return err
			}
			if !emitted {
				fmt.Fprintf(os.Stderr, "%s: verdict false, no macro emitted\n", q.Macro)
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// LocateOptions defines flags for the locate subcommand.
type LocateOptions struct {
	KSrc  string   `flag:"ksrc" flagshort:"k" flagdescr:"Kernel source tree root (defaults to $KSRC)"`
	Kind  kindFlag `flag:"kind" flagshort:"K" flagdescr:"Declaration kind (fun, struct, enum, macro)" flagcustom:"true"`
	Files []string `flag:"file" flagshort:"f" flagdescr:"Candidate file (relative to the root, repeatable)" flagrequired:"true"`
}

func (o *LocateOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *LocateOptions) DefineKind(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*kindFlag)
	return fieldPtr, descr
}

func (o *LocateOptions) DecodeKind(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	var k kindFlag
	if err := k.Set(s); err != nil {
		return nil, err
	}
	return k, nil
}

func locateCmd() *cobra.Command {
	opts := &LocateOptions{}

	cmd := &cobra.Command{
		Use:   "locate NAME",
		Short: "Print the declaration span of one construct",
		Long: `Locate a declaration in the tree and print its extracted span,
for checking what a catalog pattern would actually run against.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			ksrc, err := resolveRoot(opts.KSrc)
			if err != nil {
				return err
			}
			root := kcompat.SourceRoot(ksrc)

			refs := make([]kcompat.FileRef, 0, len(opts.Files))
			for _, f := range opts.Files {
				refs = append(refs, kcompat.FileRef{Path: f})
			}

			for _, ref := range root.Resolve(refs) {
				text, err := root.ReadSource(ref)
				if err != nil {
					return err
				}

				var span *kcompat.DeclarationSpan
				switch kcompat.Kind(opts.Kind) {
				case kcompat.KindFun:
					span = kcompat.FindFunction(args[0], text)
				case kcompat.KindStruct:
					span = kcompat.FindStruct(args[0], text)
				case kcompat.KindEnum:
					span = kcompat.FindEnum(args[0], text)
				case kcompat.KindMacro:
					span = kcompat.FindMacro(args[0], text)
				}
				if span != nil {
					fmt.Printf("/* %s @ %s [%d:%d] */\n%s\n", args[0], ref.Name(), span.Start, span.End, span.Text)
					return nil
				}
			}

			fmt.Fprintf(os.Stderr, "%s %s: not found\n", kcompat.Kind(opts.Kind), args[0])
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the catalog groups and their entries",
		RunE: func(c *cobra.Command, args []string) error {
			for _, g := range kcompat.Catalog() {
				if g.Gate != "" {
					fmt.Printf("[%s] (gated on CONFIG_%s)\n", g.Name, g.Gate)
				} else {
					fmt.Printf("[%s]\n", g.Name)
				}
				for _, e := range g.Entries {
					fmt.Printf("  %s\n", e.Query)
				}
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool version",
		RunE: func(c *cobra.Command, args []string) error {
			if version != "" {
				fmt.Printf("kcompat %s", version)
				if commit != "" {
					fmt.Printf(" (%s)", commit)
				}
				if date != "" {
					fmt.Printf(" built %s", date)
				}
				fmt.Println()
			} else {
				fmt.Println("kcompat (dev)")
			}
			return nil
		},
	}
}

// resolveRoot picks the source root from the flag or $KSRC.
func resolveRoot(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("KSRC"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no source tree: pass --ksrc or set $KSRC")
}

// resolveInputs picks the source root and build config paths.
func resolveInputs(ksrcFlag, kconfigFlag string) (string, string, error) {
	ksrc, err := resolveRoot(ksrcFlag)
	if err != nil {
		return "", "", err
	}
	kconfig := kconfigFlag
	if kconfig == "" {
		kconfig = filepath.Join(ksrc, ".config")
	}
	return ksrc, kconfig, nil
}

func printJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type kindFlag kcompat.Kind

var kindIdentifierMap = func() map[kcompat.Kind][]string {
	ids := make(map[kcompat.Kind][]string, len(kcompat.KindNames()))
	for _, name := range kcompat.KindNames() {
		k, err := kcompat.ParseKind(name)
		if err != nil {
			panic(err)
		}
		ids[k] = []string{name}
	}
	return ids
}()

func (k *kindFlag) String() string {
	return kcompat.Kind(*k).String()
}

func (k *kindFlag) Set(input string) error {
	var kind kcompat.Kind
	enumValue := enumflag.New(&kind, "kcompat.Kind", kindIdentifierMap, enumflag.EnumCaseInsensitive)
	if err := enumValue.Set(strings.TrimSpace(input)); err != nil {
		return fmt.Errorf("unknown kind: %q (available: %s)", input, strings.Join(kcompat.KindNames(), ", "))
	}

	*k = kindFlag(kind)
	return nil
}

func (k *kindFlag) Type() string {
	return "kind"
}
