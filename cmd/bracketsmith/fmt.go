package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/CostaMateus/bracketsmith/internal/config"
	"github.com/CostaMateus/bracketsmith/internal/diag"
	"github.com/CostaMateus/bracketsmith/internal/driver"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path> [path...]",
	Short: "Format PHP source files",
	Long: `Format rewrites non-empty single-line array literals so the contents
sit one space inside the brackets: [1,2,3] becomes [ 1,2,3 ].
Strings, comments, and heredocs are left untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "report files needing formatting without rewriting them")
	fmtCmd.Flags().Bool("stdout", false, "print formatted content to stdout instead of rewriting files")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().String("config", "", "path to bracketsmith.toml (default: search upward from cwd)")
	fmtCmd.Flags().Int("jobs", 0, "parallel workers (0 = one per CPU)")
	fmtCmd.Flags().Bool("no-cache", false, "bypass the clean-file skip cache")
	fmtCmd.Flags().Bool("timings", false, "print phase timings to stderr")
	fmtCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	writeToStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if writeToStdout && check {
		return fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	if writeToStdout && outputFormat != "text" {
		return fmt.Errorf("fmt: --stdout is only supported with text output")
	}

	cfg, err := loadFmtConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := buildFormatOptions(cmd, cfg, check, writeToStdout)
	if err != nil {
		return err
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := parseUIMode(uiValue)
	if err != nil {
		return err
	}
	// The TUI owns stdout; content and machine output force it off.
	withTUI := mode.enabled() && !writeToStdout && outputFormat == "text"

	var results []driver.FormatResult
	var summary *driver.Summary
	if withTUI {
		results, summary, err = runFormatWithUI(cmd.Context(), fmtTitle(check), args, opts)
	} else {
		results, summary, err = driver.FormatPaths(cmd.Context(), args, opts)
	}
	if err != nil {
		return err
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	renderFmtDiagnostics(cmd, results)
	if summary != nil && summary.Timings != nil {
		fmt.Fprint(os.Stderr, timingsSummary(summary.Timings))
	}

	var hasErrors, hasChanges bool
	switch outputFormat {
	case "text":
		if writeToStdout {
			renderFmtStdout(results, &hasErrors)
			if hasErrors {
				return fmt.Errorf("fmt: failed to format some files")
			}
			return nil
		}
		renderFmtText(results, check, quiet || withTUI, &hasErrors, &hasChanges)
	case "json":
		if err := renderFmtJSON(results, summary, check); err != nil {
			return err
		}
		hasErrors = summary != nil && summary.Errors > 0
		hasChanges = summary != nil && summary.Changed > 0
	default:
		return fmt.Errorf("fmt: unsupported output format %q", outputFormat)
	}

	if hasErrors {
		return fmt.Errorf("fmt: failed to format some files")
	}
	if check && hasChanges {
		return fmt.Errorf("fmt: formatting changes required")
	}
	return nil
}

func fmtTitle(check bool) string {
	if check {
		return "checking array brackets"
	}
	return "formatting array brackets"
}

// loadFmtConfig resolves the effective configuration: an explicit --config
// path must exist, otherwise the nearest bracketsmith.toml is used, and the
// built-in defaults apply when there is none.
func loadFmtConfig(cmd *cobra.Command) (config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if configPath != "" {
		return config.Load(configPath)
	}
	found, ok, err := config.Find(".")
	if err != nil {
		return config.Config{}, err
	}
	if !ok {
		return config.Default(), nil
	}
	return config.Load(found)
}

func buildFormatOptions(cmd *cobra.Command, cfg config.Config, check, writeToStdout bool) (driver.FormatOptions, error) {
	jobs := cfg.Format.Jobs
	if cmd.Flags().Changed("jobs") {
		flagJobs, err := cmd.Flags().GetInt("jobs")
		if err != nil {
			return driver.FormatOptions{}, err
		}
		jobs = flagJobs
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return driver.FormatOptions{}, err
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return driver.FormatOptions{}, err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return driver.FormatOptions{}, err
	}

	opts := driver.FormatOptions{
		Check:          check,
		Stdout:         writeToStdout,
		NoCache:        noCache,
		Jobs:           jobs,
		MaxPasses:      cfg.Format.MaxPasses,
		MaxDiagnostics: maxDiagnostics,
		Files:          cfg.Files,
		Timings:        timings,
	}

	if !noCache && !writeToStdout {
		// A broken cache dir degrades to formatting everything.
		if cache, cacheErr := driver.OpenSkipCache(); cacheErr == nil {
			opts.Cache = cache
		}
	}
	return opts, nil
}

func renderFmtDiagnostics(cmd *cobra.Command, results []driver.FormatResult) {
	colored := useColor(cmd, os.Stderr)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed)
	if !colored {
		warn.DisableColor()
		fail.DisableColor()
	}

	for _, res := range results {
		if res.Bag == nil {
			continue
		}
		for _, d := range res.Bag.Items() {
			if d.Severity < diag.SevWarning {
				continue
			}
			label := warn
			if d.Severity >= diag.SevError {
				label = fail
			}
			where := res.Path
			if !d.Primary.Empty() {
				where = fmt.Sprintf("%s:%d-%d", res.Path, d.Primary.Start, d.Primary.End)
			}
			fmt.Fprintf(os.Stderr, "%s: %s %s\n", where, label.Sprintf("[%s]", d.Code.ID()), d.Message)
		}
	}
}

func renderFmtStdout(results []driver.FormatResult, hasErrors *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(os.Stderr, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		_, _ = os.Stdout.Write(res.Formatted)
	}
}

func renderFmtText(results []driver.FormatResult, check, quiet bool, hasErrors, hasChanges *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(os.Stderr, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}

		if check {
			if res.Changed {
				*hasChanges = true
				if !quiet {
					fmt.Fprintln(os.Stdout, res.Path)
				}
			}
			continue
		}

		if res.Changed && !quiet {
			fmt.Fprintf(os.Stdout, "reformatted %s\n", res.Path)
		}
	}
}

func renderFmtJSON(results []driver.FormatResult, summary *driver.Summary, check bool) error {
	type jsonResult struct {
		Path    string `json:"path"`
		Changed bool   `json:"changed"`
		Skipped bool   `json:"skipped,omitempty"`
		Passes  int    `json:"passes,omitempty"`
		Error   string `json:"error,omitempty"`
	}
	type jsonPayload struct {
		Check   bool         `json:"check"`
		Files   int64        `json:"files"`
		Changed int64        `json:"changed"`
		Skipped int64        `json:"skipped"`
		Errors  int64        `json:"errors"`
		Results []jsonResult `json:"results"`
	}

	payload := jsonPayload{Check: check, Results: make([]jsonResult, 0, len(results))}
	if summary != nil {
		payload.Files = summary.Files
		payload.Changed = summary.Changed
		payload.Skipped = summary.Skipped
		payload.Errors = summary.Errors
	}
	for _, res := range results {
		jr := jsonResult{Path: res.Path, Changed: res.Changed, Skipped: res.Skipped, Passes: res.Passes}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		payload.Results = append(payload.Results, jr)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
