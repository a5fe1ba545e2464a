package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shimmer/internal/feature"
	"shimmer/internal/polyfill"
	runtimelib "shimmer/runtime"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the polyfill catalog",
	Long:  "Print every catalogued built-in with its kind, native edition, shim edition, and runtime library.",
	Args:  cobra.NoArgs,
	RunE:  catalogExecution,
}

func init() {
	catalogCmd.Flags().String("newer-than", "", "only entries whose symbol became native after this edition")
	catalogCmd.Flags().String("kind", "", "only entries of this kind (static|method|other)")
	catalogCmd.Flags().Bool("libraries", false, "list runtime library ids instead of catalog entries")
	catalogCmd.Flags().String("catalog", "", "polyfill catalog override file")
	catalogCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type catalogEntryJSON struct {
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	NativeVersion   string `json:"native_version"`
	PolyfillVersion string `json:"polyfill_version"`
	Library         string `json:"library,omitempty"`
}

func catalogExecution(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	newerThanValue, err := flags.GetString("newer-than")
	if err != nil {
		return err
	}
	kindValue, err := flags.GetString("kind")
	if err != nil {
		return err
	}
	listLibraries, err := flags.GetBool("libraries")
	if err != nil {
		return err
	}
	catalogPath, err := flags.GetString("catalog")
	if err != nil {
		return err
	}
	formatValue, err := flags.GetString("format")
	if err != nil {
		return err
	}
	switch formatValue {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", formatValue)
	}

	if listLibraries {
		libs, err := runtimelib.Embedded()
		if err != nil {
			return err
		}
		return renderLibraries(cmd.OutOrStdout(), libs, formatValue)
	}

	cat, err := loadCatalog(catalogPath, true)
	if err != nil {
		return err
	}

	entries := cat.Entries()
	if newerThanValue != "" {
		v, parseErr := feature.ParseVersion(newerThanValue)
		if parseErr != nil {
			return fmt.Errorf("--newer-than: %w", parseErr)
		}
		filtered := make([]polyfill.Polyfill, 0, len(entries))
		for _, p := range cat.NewerThan(v) {
			filtered = append(filtered, *p)
		}
		entries = filtered
	}
	if kindValue != "" {
		want := strings.ToUpper(strings.TrimSpace(kindValue))
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.Kind.String() == want {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 && want != "STATIC" && want != "METHOD" && want != "OTHER" {
			return fmt.Errorf("invalid --kind value %q (expected static|method|other)", kindValue)
		}
		entries = filtered
	}

	return renderCatalog(cmd.OutOrStdout(), entries, formatValue, colorEnabled(cmd, os.Stdout))
}

func renderCatalog(out io.Writer, entries []polyfill.Polyfill, format string, colored bool) error {
	if format == "json" {
		payload := make([]catalogEntryJSON, 0, len(entries))
		for _, e := range entries {
			payload = append(payload, catalogEntryJSON{
				Name:            e.Name,
				Kind:            e.Kind.String(),
				NativeVersion:   e.NativeVersion.String(),
				PolyfillVersion: e.PolyfillVersion.String(),
				Library:         e.Library,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	nameStyle := color.New(color.Bold)
	for _, e := range entries {
		name := e.Name
		if colored {
			name = nameStyle.Sprint(name)
		}
		lib := e.Library
		if lib == "" {
			lib = "(no runtime shim)"
		}
		fmt.Fprintf(out, "%-40s %-6s native %-7s shim %-7s %s\n",
			name, strings.ToLower(e.Kind.String()), e.NativeVersion, e.PolyfillVersion, lib)
	}
	fmt.Fprintf(out, "%d entries\n", len(entries))
	return nil
}

func renderLibraries(out io.Writer, libs *runtimelib.Registry, format string) error {
	names := libs.Names()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	}
	for _, name := range names {
		lib, _ := libs.Lookup(name)
		fmt.Fprintf(out, "%-40s %d registrations, native up to %s\n",
			name, len(lib.Registrations), lib.MaxNativeVersion())
	}
	fmt.Fprintf(out, "%d libraries\n", len(names))
	return nil
}
