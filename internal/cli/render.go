package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/explorer"
	"github.com/matzehuels/deptree/pkg/render"
)

// Output formats of the render command.
const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatJPG  = "jpg"
	formatDOT  = "dot"
	formatText = "txt"
	formatJSON = "json"
)

const (
	defaultWidth  = 800 // default frame width in screen units
	defaultHeight = 600 // default frame height in screen units
)

var validFormats = []string{formatSVG, formatPNG, formatJPG, formatDOT, formatText, formatJSON}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path
	formats  []string // output formats
	width    float64  // frame width in screen units
	height   float64  // frame height in screen units
	zoom     float64  // zoom factor; 0 keeps the default
	panX     float64  // horizontal pan in screen units
	panY     float64  // vertical pan in screen units
	fit      bool     // fit the layout into the frame, overriding zoom and pan
	selected string   // package to highlight
	noCache  bool     // bypass the export cache
	tree     treeFlags
}

// renderCommand creates the render command for exporting one frame.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{width: defaultWidth, height: defaultHeight}

	cmd := &cobra.Command{
		Use:   "render [tree.json]",
		Short: "Render one frame of a dependency tree",
		Long: `Render one frame of a dependency tree.

The frame shows the packages visible under the chosen expansion through the
chosen viewport, exactly as the explorer would draw it. Formats:

  svg   standalone SVG
  png   raster image via Graphviz (cached)
  jpg   raster image via Graphviz (cached)
  dot   Graphviz source with pinned node positions
  txt   box-drawing text, as in the terminal explorer
  json  layout and viewport`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.width <= 0 || opts.height <= 0 {
				return fmt.Errorf("frame size must be positive, got %gx%g", opts.width, opts.height)
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format, - for stdout) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, jpg, dot, txt, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 0, "zoom factor (clamped to the configured limits)")
	cmd.Flags().Float64Var(&opts.panX, "pan-x", 0, "horizontal pan")
	cmd.Flags().Float64Var(&opts.panY, "pan-y", 0, "vertical pan")
	cmd.Flags().BoolVar(&opts.fit, "fit", false, "fit the visible tree into the frame")
	cmd.Flags().StringVar(&opts.selected, "select", "", "package to highlight")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the export cache")
	opts.tree.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("select", completeNodeIDs)

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(validFormats, f) {
			return fmt.Errorf("invalid format: %s (must be one of %s)", f, strings.Join(validFormats, ", "))
		}
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	ex, err := c.openExplorer(input, opts.tree)
	if err != nil {
		return err
	}
	defer ex.Close()

	applyView(ex, opts)
	for _, w := range ex.Warnings() {
		printWarning("%s", w.Error())
	}

	cch, err := c.newCache(opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer cch.Close()

	frame := render.Frame{Width: opts.width, Height: opts.height, Selected: opts.selected}
	single := len(opts.formats) == 1
	var written []string
	for _, format := range opts.formats {
		data, cached, err := c.renderFormat(ctx, ex, frame, format, cch)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := outputPath(input, opts.output, format, single)
		if err := writeOutput(stdout, path, data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("wrote frame", "format", format, "path", path, "bytes", len(data), "cached", cached)
		if path != "-" {
			written = append(written, path)
		}
	}
	if len(written) == 0 {
		return nil
	}

	res := ex.Layout()
	prog.done(fmt.Sprintf("Rendered %d packages", len(res.Nodes)))
	printSuccess("Rendered frame at %d%%", ex.Viewport().Percent())
	printStats(len(res.Nodes), len(res.Edges), len(res.Warnings))
	for _, p := range written {
		printFile(p)
	}
	return nil
}

// applyView sets up the viewport from the flags. --fit wins over zoom and pan.
func applyView(ex *explorer.Explorer, opts renderOpts) {
	if opts.fit {
		ex.Fit(opts.width, opts.height)
		return
	}
	if opts.zoom != 0 {
		ex.SetZoom(opts.zoom)
	}
	ex.SetPan(opts.panX, opts.panY)
}

// renderFormat draws the explorer's current frame in format. Graphviz
// exports go through the cache; cached reports a hit.
func (c *CLI) renderFormat(ctx context.Context, ex *explorer.Explorer, frame render.Frame, format string, cch cache.Cache) ([]byte, bool, error) {
	switch format {
	case formatSVG:
		s := render.NewSVGSurface()
		if err := ex.Render(s, frame); err != nil {
			return nil, false, err
		}
		return s.Bytes(), false, nil

	case formatText:
		cv := render.NewCanvas()
		cv.CellWidth, cv.CellHeight = c.config().Explore.CellWidth, c.config().Explore.CellHeight
		if err := ex.Render(cv, frame); err != nil {
			return nil, false, err
		}
		return []byte(cv.String()), false, nil

	case formatJSON:
		doc := struct {
			Root     string `json:"root"`
			Viewport any    `json:"viewport"`
			Frame    any    `json:"frame"`
			Layout   any    `json:"layout"`
		}{
			Root:     ex.Tree().Root().ID,
			Viewport: ex.Viewport(),
			Frame:    frame,
			Layout:   ex.Layout(),
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		return append(data, '\n'), false, err
	}

	dot := render.NewDOTSurface()
	if err := ex.Render(dot, frame); err != nil {
		return nil, false, err
	}
	if format == formatDOT {
		return dot.Bytes(), false, nil
	}

	key := cache.ArtifactKey(format, dot.Bytes())
	if data, ok, err := cch.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s with Graphviz...", format))
	spin.Start()
	data, err := render.RenderGraphviz(ctx, dot.Bytes(), format)
	if err != nil {
		spin.StopWithError(fmt.Sprintf("Graphviz could not render %s", format))
		return nil, false, err
	}
	spin.Stop()
	if err := cch.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
		loggerFromContext(ctx).Warn("cache export", "format", format, "err", err)
	}
	return data, false, nil
}
