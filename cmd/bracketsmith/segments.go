package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CostaMateus/bracketsmith/internal/diag"
	"github.com/CostaMateus/bracketsmith/internal/phpscan"
	"github.com/CostaMateus/bracketsmith/internal/source"
)

var segmentsCmd = &cobra.Command{
	Use:   "segments [flags] file.php",
	Short: "Show how a file splits into code and literal regions",
	Long: `Segments classifies a PHP file into the regions the formatter sees:
HTML, code, strings, comments, and heredocs. Only code regions are ever
rewritten, so this is the tool for checking why a bracket was (not) touched.`,
	Args: cobra.ExactArgs(1),
	RunE: runSegments,
}

func init() {
	segmentsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runSegments(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	fileSet := source.NewFileSet()
	fileID, err := fileSet.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	file := fileSet.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	segments := phpscan.New(file, phpscan.Options{Reporter: diag.BagReporter{Bag: bag}}).Scan()

	for _, d := range bag.Items() {
		start, _ := fileSet.Resolve(d.Primary)
		fmt.Fprintf(os.Stderr, "%s:%d:%d: [%s] %s\n", args[0], start.Line, start.Col, d.Code.ID(), d.Message)
	}

	switch format {
	case "pretty":
		renderSegmentsPretty(os.Stdout, fileSet, file, segments)
		return nil
	case "json":
		return renderSegmentsJSON(os.Stdout, fileSet, segments)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func renderSegmentsPretty(out *os.File, fileSet *source.FileSet, file *source.File, segments []phpscan.Segment) {
	for _, seg := range segments {
		start, end := fileSet.Resolve(seg.Span)
		preview := segmentPreview(file.Content[seg.Span.Start:seg.Span.End])
		fmt.Fprintf(out, "%-13s %d:%d..%d:%d  %q\n", seg.Kind, start.Line, start.Col, end.Line, end.Col, preview)
	}
}

func renderSegmentsJSON(out *os.File, fileSet *source.FileSet, segments []phpscan.Segment) error {
	type jsonSegment struct {
		Kind      string `json:"kind"`
		Start     uint32 `json:"start"`
		End       uint32 `json:"end"`
		StartLine uint32 `json:"start_line"`
		StartCol  uint32 `json:"start_col"`
		EndLine   uint32 `json:"end_line"`
		EndCol    uint32 `json:"end_col"`
	}

	payload := make([]jsonSegment, 0, len(segments))
	for _, seg := range segments {
		start, end := fileSet.Resolve(seg.Span)
		payload = append(payload, jsonSegment{
			Kind:      seg.Kind.String(),
			Start:     seg.Span.Start,
			End:       seg.Span.End,
			StartLine: start.Line,
			StartCol:  start.Col,
			EndLine:   end.Line,
			EndCol:    end.Col,
		})
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// segmentPreview flattens a segment's bytes into a short single-line preview.
func segmentPreview(b []byte) string {
	s := strings.ReplaceAll(string(b), "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	const limit = 48
	if len(s) > limit {
		s = s[:limit-3] + "..."
	}
	return s
}
