package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"psls/internal/config"
	"psls/internal/driver"
	"psls/internal/folding"
	"psls/internal/observ"
	"psls/internal/source"
	"psls/internal/ui"
)

var foldCmd = &cobra.Command{
	Use:          "fold [flags] paths...",
	Short:        "Compute folding ranges for script files",
	Long:         `Fold computes folding ranges for the given files, or for every script file under the given directories`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runFold,
}

func init() {
	foldCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	foldCmd.Flags().Bool("include-last-line", false, "extend each range through its closing line")
	foldCmd.Flags().Bool("no-cache", false, "bypass the fold result cache")
	foldCmd.Flags().Int("jobs", 0, "number of parallel workers (0 = GOMAXPROCS)")
	foldCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

type foldReport struct {
	Path   string          `json:"path"`
	Ranges []folding.Range `json:"ranges"`
	Cached bool            `json:"cached,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runFold(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")
	jobs, _ := cmd.Flags().GetInt("jobs")
	uiFlag, _ := cmd.Flags().GetString("ui")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")

	cfg, err := config.Discover(".")
	if err != nil {
		return err
	}
	includeLastLine := cfg.Folding.IncludeLastLine
	if cmd.Flags().Changed("include-last-line") {
		includeLastLine, _ = cmd.Flags().GetBool("include-last-line")
	}

	timer := observ.NewTimer()

	listPhase := timer.Begin("list")
	files, err := driver.ListScriptFiles(args)
	if err != nil {
		return err
	}
	timer.End(listPhase, fmt.Sprintf("%d files", len(files)))

	if len(files) == 0 {
		if !quiet {
			fmt.Fprintln(os.Stderr, "psls: no script files found")
		}
		return nil
	}

	var cache *driver.DiskCache
	if cfg.Cache.Enabled && !noCache {
		if cfg.Cache.Dir != "" {
			cache, err = driver.OpenDiskCacheAt(cfg.Cache.Dir)
		} else {
			cache, err = driver.OpenDiskCache("psls")
		}
		if err != nil {
			// Cache trouble degrades to live computation.
			if !quiet {
				fmt.Fprintf(os.Stderr, "psls: cache disabled: %v\n", err)
			}
			cache = nil
		}
	}

	opts := driver.FoldOptions{
		IncludeLastLine: includeLastLine,
		Jobs:            jobs,
		MaxFileSize:     cfg.Folding.MaxFileSize,
		Cache:           cache,
	}

	foldPhase := timer.Begin("fold")
	var fileSet *source.FileSet
	var results []driver.FoldResult
	withUI := format == "pretty" && !quiet && shouldUseTUI(uiFlag) && len(files) > 3
	if withUI {
		fileSet, results, err = runFoldWithUI(cmd.Context(), files, opts)
	} else {
		fileSet, results, err = driver.Fold(cmd.Context(), files, opts, nil)
	}
	if err != nil {
		return err
	}
	timer.End(foldPhase, fmt.Sprintf("%d files loaded", fileSet.Len()))

	if timings && !quiet {
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	switch format {
	case "json":
		return writeFoldJSON(os.Stdout, results)
	default:
		return writeFoldPretty(cmd, results, quiet)
	}
}

func shouldUseTUI(mode string) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

func runFoldWithUI(ctx context.Context, files []string, opts driver.FoldOptions) (*source.FileSet, []driver.FoldResult, error) {
	type outcome struct {
		fileSet *source.FileSet
		results []driver.FoldResult
		err     error
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan outcome, 1)

	go func() {
		fileSet, results, err := driver.Fold(ctx, files, opts, events)
		outcomeCh <- outcome{fileSet: fileSet, results: results, err: err}
	}()

	model := ui.NewProgressModel("folding", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	out := <-outcomeCh
	if uiErr != nil {
		return out.fileSet, out.results, uiErr
	}
	return out.fileSet, out.results, out.err
}

func writeFoldJSON(out *os.File, results []driver.FoldResult) error {
	reports := make([]foldReport, len(results))
	for i, res := range results {
		reports[i] = foldReport{
			Path:   res.Path,
			Ranges: res.Ranges,
			Cached: res.Cached,
		}
		if reports[i].Ranges == nil {
			reports[i].Ranges = []folding.Range{}
		}
		if res.Err != nil {
			reports[i].Error = res.Err.Error()
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func writeFoldPretty(cmd *cobra.Command, results []driver.FoldResult, quiet bool) error {
	colored := useColor(cmd, os.Stdout)
	header := color.New(color.FgCyan, color.Bold)
	errColor := color.New(color.FgRed)
	kindColor := color.New(color.FgYellow)
	if !colored {
		header.DisableColor()
		errColor.DisableColor()
		kindColor.DisableColor()
	}

	wd, wdErr := os.Getwd()

	var failed int
	for _, res := range results {
		display := res.Path
		if wdErr == nil {
			if rel, err := source.RelativePath(res.Path, wd); err == nil {
				display = rel
			}
		}
		header.Fprintln(os.Stdout, display)
		if res.Err != nil {
			failed++
			errColor.Fprintf(os.Stdout, "  error: %v\n", res.Err)
			continue
		}
		if len(res.Ranges) == 0 {
			if !quiet {
				fmt.Fprintln(os.Stdout, "  (no folds)")
			}
			continue
		}
		for _, r := range res.Ranges {
			kind := r.Kind
			if kind == "" {
				kind = "-"
			}
			fmt.Fprintf(os.Stdout, "  %4d:%-3d .. %4d:%-3d  %s\n",
				r.StartLine, r.StartCharacter, r.EndLine, r.EndCharacter, kindColor.Sprint(kind))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}
