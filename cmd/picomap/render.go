package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"picomap/internal/highlight"
	"picomap/internal/observ"
	"picomap/internal/picomap"
	"picomap/internal/snapshot"
	"picomap/internal/trace"
)

type renderOptions struct {
	height   int
	format   string
	annotate bool
	color    bool
}

type renderRow struct {
	Row        int    `json:"row"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Text       string `json:"text"`
	Change     string `json:"change"`
	Diagnostic string `json:"diagnostic"`
	Marker     string `json:"marker"`
}

type renderPayload struct {
	Lines  int         `json:"lines"`
	Height int         `json:"height"`
	Rows   []renderRow `json:"rows"`
}

var (
	changeColor  = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	dangerColor  = color.New(color.FgRed, color.Bold)
	markerColor  = color.New(color.FgCyan)
	gutterColor  = color.New(color.Faint)
	defaultColor = color.New(color.Reset)
)

func newRenderCmd() *cobra.Command {
	var (
		height   int
		format   string
		annotate bool
		timings  bool
	)
	cmd := &cobra.Command{
		Use:   "render <snapshot.toml>",
		Short: "Render a snapshot file without an editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			_, cleanup, err := setupTracing(cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			tracer := trace.FromContext(cmd.Context())

			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			defer stopProfiling()

			opts := renderOptions{height: height, format: strings.ToLower(format), annotate: annotate}
			switch opts.format {
			case "text", "json":
			default:
				return fmt.Errorf("unsupported format %q (must be text or json)", format)
			}
			out := cmd.OutOrStdout()
			f, _ := out.(*os.File)
			if opts.color, err = useColor(cmd, f); err != nil {
				return err
			}
			color.NoColor = !opts.color

			span := trace.Begin(tracer, trace.ScopeRender, "snapshot", 0)
			defer span.End(args[0])
			timer := observ.NewTimer()

			idx := timer.Begin("load")
			snap, err := snapshot.Load(args[0])
			if err != nil {
				trace.Error(tracer, trace.ScopeRender, "snapshot", err)
				return err
			}
			if snap.Smoothing == "" {
				snap.Smoothing = cfg.Render.Smoothing
			}
			timer.End(idx, filepath.Base(args[0]))

			idx = timer.Begin("render")
			if opts.format == "json" {
				err = renderJSON(out, snap, opts)
			} else {
				renderText(out, snap, opts)
			}
			timer.End(idx, strconv.Itoa(resolveHeight(snap, opts))+" rows")

			if timings {
				fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&timings, "timings", false, "print stage timings to stderr")
	cmd.Flags().IntVar(&height, "height", 0, "rows to render (0 uses the snapshot height)")
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json)")
	cmd.Flags().BoolVar(&annotate, "annotate", false, "prefix rows with their index and source line range")
	return cmd
}

func resolveHeight(snap *snapshot.Snapshot, opts renderOptions) int {
	if opts.height > 0 {
		return opts.height
	}
	return snap.Height
}

// cellRow is one rendered row with the cells it was formatted from.
type cellRow struct {
	renderRow
	change, diag picomap.Cell
	marker       rune
}

func collectRows(snap *snapshot.Snapshot, height int) []cellRow {
	if snap.Lines <= 0 || height <= 0 {
		return nil
	}
	p := snap.Picomap()
	changes, diags := p.Rows(height)
	rows := make([]cellRow, 0, height)
	var sb strings.Builder
	for i := range height {
		change, diag := changes.At(i), diags.At(i)
		marker := p.Modifier.Marker(i, snap.Lines, height)
		sb.Reset()
		picomap.FormatRow(&sb, change, diag, marker)
		start, end := snapshot.RowRange(i, snap.Lines, height)
		rows = append(rows, cellRow{
			renderRow: renderRow{
				Row:        i,
				Start:      start,
				End:        end,
				Text:       sb.String(),
				Change:     change.Block.String(),
				Diagnostic: diag.Block.String(),
				Marker:     strings.TrimSpace(string(marker)),
			},
			change: change,
			diag:   diag,
			marker: marker,
		})
	}
	return rows
}

func renderJSON(out io.Writer, snap *snapshot.Snapshot, opts renderOptions) error {
	height := resolveHeight(snap, opts)
	payload := renderPayload{Lines: snap.Lines, Height: height, Rows: []renderRow{}}
	for _, row := range collectRows(snap, height) {
		payload.Rows = append(payload.Rows, row.renderRow)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func renderText(out io.Writer, snap *snapshot.Snapshot, opts renderOptions) {
	height := resolveHeight(snap, opts)
	indexWidth := len(strconv.Itoa(height - 1))
	rangeWidth := runewidth.StringWidth(strconv.Itoa(snap.Lines))*2 + 1

	for _, row := range collectRows(snap, height) {
		var line strings.Builder
		if opts.annotate {
			label := runewidth.FillLeft(fmt.Sprintf("%d-%d", row.Start+1, row.End), rangeWidth)
			line.WriteString(paint(opts.color, gutterColor, fmt.Sprintf("%*d %s ", indexWidth, row.Row, label)))
		}
		if !opts.color {
			line.WriteString(row.Text)
			fmt.Fprintln(out, line.String())
			continue
		}
		line.WriteString(changeColor.Sprint(string(row.change.Block.Rune())))
		line.WriteString(diagColor(row.diag.Value).Sprint(string(row.diag.Block.Rune())))
		fmt.Fprintf(&line, "%02d%02d", row.change.Value, row.diag.Value)
		line.WriteString(markerColor.Sprint(string(row.marker)))
		fmt.Fprintln(out, line.String())
	}
}

func diagColor(v highlight.Highlight) *color.Color {
	switch {
	case v >= highlight.LevelDanger.Code():
		return dangerColor
	case v >= highlight.LevelWarning.Code():
		return warnColor
	default:
		return defaultColor
	}
}

func paint(enabled bool, c *color.Color, s string) string {
	if !enabled {
		return s
	}
	return c.Sprint(s)
}
