package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shimmer/internal/buildpipeline"
	"shimmer/internal/diag"
	"shimmer/internal/diagfmt"
	"shimmer/internal/driver"
	"shimmer/internal/feature"
	"shimmer/internal/polyfill"
	runtimelib "shimmer/runtime"
)

const noShimmerTomlMessage = "no shimmer.toml found\nplease specify the input explicitly, e.g.:\n  shimmer inject path/to/trees"

var injectCmd = &cobra.Command{
	Use:   "inject [flags] [path]",
	Short: "Inject polyfill libraries into interchange trees",
	Long: "Inject scans interchange trees for uses of catalogued built-ins and " +
		"prepends the runtime-support libraries the output edition is missing.",
	Args: cobra.MaximumNArgs(1),
	RunE: injectExecution,
}

func init() {
	injectCmd.Flags().String("language-out", "es5", "output language edition")
	injectCmd.Flags().Bool("polyfills", true, "inject libraries for the symbols the program uses")
	injectCmd.Flags().Bool("isolate", false, "declare the polyfill isolation helper extern")
	injectCmd.Flags().String("force-newer-than", "", "inject every library newer than this edition, ignoring usages")
	injectCmd.Flags().String("catalog", "", "polyfill catalog override file")
	injectCmd.Flags().Bool("no-cache", false, "bypass the on-disk catalog cache")
	injectCmd.Flags().Bool("write", false, "write transformed trees next to their inputs")
	injectCmd.Flags().String("out-suffix", "", "suffix for written outputs (default .out.json)")
	injectCmd.Flags().Bool("warn-insufficient-output", false, "warn when a shim cannot be expressed at the output edition")
	injectCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	injectCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
}

func injectExecution(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	languageOut, err := flags.GetString("language-out")
	if err != nil {
		return err
	}
	polyfills, err := flags.GetBool("polyfills")
	if err != nil {
		return err
	}
	isolate, err := flags.GetBool("isolate")
	if err != nil {
		return err
	}
	forceValue, err := flags.GetString("force-newer-than")
	if err != nil {
		return err
	}
	catalogPath, err := flags.GetString("catalog")
	if err != nil {
		return err
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return err
	}
	write, err := flags.GetBool("write")
	if err != nil {
		return err
	}
	outSuffix, err := flags.GetString("out-suffix")
	if err != nil {
		return err
	}
	warnInsufficient, err := flags.GetBool("warn-insufficient-output")
	if err != nil {
		return err
	}
	formatValue, err := flags.GetString("format")
	if err != nil {
		return err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return err
	}
	showProgress, err := progressEnabled(uiValue)
	if err != nil {
		return err
	}
	switch formatValue {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", formatValue)
	}

	manifest, manifestFound, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	if manifestFound {
		mcfg := manifest.Config
		if !flags.Changed("language-out") && mcfg.Inject.LanguageOut != "" {
			languageOut = mcfg.Inject.LanguageOut
		}
		if !flags.Changed("polyfills") && mcfg.Inject.Polyfills != nil {
			polyfills = *mcfg.Inject.Polyfills
		}
		if !flags.Changed("isolate") && mcfg.Inject.Isolate != nil {
			isolate = *mcfg.Inject.Isolate
		}
		if !flags.Changed("force-newer-than") && mcfg.Inject.ForceNewerThan != "" {
			forceValue = mcfg.Inject.ForceNewerThan
		}
		if !flags.Changed("catalog") && mcfg.Catalog.Path != "" {
			catalogPath = mcfg.Catalog.Path
		}
		if !flags.Changed("no-cache") && mcfg.Catalog.Cache != nil {
			noCache = !*mcfg.Catalog.Cache
		}
	}

	outputVersion, err := feature.ParseVersion(languageOut)
	if err != nil {
		return fmt.Errorf("--language-out: %w", err)
	}
	var forceNewerThan *feature.Version
	if strings.TrimSpace(forceValue) != "" {
		v, parseErr := feature.ParseVersion(forceValue)
		if parseErr != nil {
			return fmt.Errorf("--force-newer-than: %w", parseErr)
		}
		forceNewerThan = &v
	}

	rootFlags := cmd.Root().PersistentFlags()
	maxDiagnostics, err := rootFlags.GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	jobs, err := rootFlags.GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	quiet, err := rootFlags.GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := rootFlags.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	catalog, err := loadCatalog(catalogPath, noCache)
	if err != nil {
		return err
	}
	libraries, err := runtimelib.Embedded()
	if err != nil {
		return fmt.Errorf("runtime library definitions: %w", err)
	}

	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	if target == "" {
		if !manifestFound {
			return errors.New(noShimmerTomlMessage)
		}
		target = manifest.Root
	}
	dir, paths, err := resolveInjectTarget(target)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no *.json inputs under %s", target)
	}

	opts := driver.Options{
		InjectPolyfills:  polyfills,
		IsolatePolyfills: isolate,
		ForceNewerThan:   forceNewerThan,
		OutputVersion:    outputVersion,
		MaxDiagnostics:   maxDiagnostics,
	}
	if warnInsufficient {
		opts.EnabledDiagnostics = append(opts.EnabledDiagnostics, diag.InjectInsufficientOutputVersion)
	}

	req := &buildpipeline.Request{
		Paths:     paths,
		Dir:       dir,
		Options:   opts,
		Catalog:   catalog,
		Libraries: libraries,
		Write:     write,
		OutSuffix: outSuffix,
		Jobs:      jobs,
	}

	var res *buildpipeline.RunResult
	if showProgress && len(paths) > 0 {
		res, err = runPipelineWithUI(cmd.Context(), "shimmer inject", paths, req)
	} else {
		res, err = buildpipeline.Run(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	if err := renderDiagnostics(cmd, res, formatValue); err != nil {
		return err
	}
	if showTimings {
		printStageTimings(os.Stdout, res.Timings)
	}
	if !quiet {
		printInjectSummary(os.Stdout, res)
	}
	if res.HasErrors() {
		return fmt.Errorf("diagnostics reported errors")
	}
	return nil
}

func loadCatalog(path string, noCache bool) (*polyfill.Catalog, error) {
	var cache *polyfill.DiskCache
	if !noCache {
		// A broken cache never blocks the run; the table is the truth.
		cache, _ = polyfill.OpenDiskCache("shimmer")
	}
	if path != "" {
		cat, err := polyfill.LoadFile(path, cache)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		return cat, nil
	}
	cat, err := polyfill.Load(polyfill.EmbeddedTable(), cache)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return cat, nil
}

// resolveInjectTarget turns the CLI target into a file list: a directory is
// walked for inputs, a file is taken as is.
func resolveInjectTarget(target string) (dir string, paths []string, err error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", nil, fmt.Errorf("failed to stat %q: %w", target, err)
	}
	if info.IsDir() {
		paths, err = buildpipeline.ListInputs(target)
		if err != nil {
			return "", nil, err
		}
		return target, paths, nil
	}
	return "", []string{target}, nil
}

func renderDiagnostics(cmd *cobra.Command, res *buildpipeline.RunResult, format string) error {
	merged := diag.NewBag(0)
	for i := range res.Files {
		if res.Files[i].Bag != nil {
			merged.Merge(res.Files[i].Bag)
		}
	}
	merged.Sort()
	if merged.Len() == 0 {
		return nil
	}

	if format == "json" {
		return diagfmt.JSON(cmd.OutOrStdout(), merged, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
		})
	}
	diagfmt.Pretty(cmd.ErrOrStderr(), merged, res.FileSet, diagfmt.PrettyOpts{
		Color:     colorEnabled(cmd, os.Stderr),
		ShowNotes: true,
	})
	return nil
}

func printInjectSummary(out *os.File, res *buildpipeline.RunResult) {
	totalLibs := 0
	for i := range res.Files {
		fr := &res.Files[i]
		totalLibs += len(fr.Libraries)
		if len(fr.Libraries) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", fr.Path, strings.Join(fr.Libraries, ", "))
	}
	fmt.Fprintf(out, "injected %d libraries into %d files\n", totalLibs, len(res.Files))
}
