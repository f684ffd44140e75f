package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Andrew-Schwartz/typset-image/internal/cachedir"
	"github.com/Andrew-Schwartz/typset-image/internal/config"
	"github.com/Andrew-Schwartz/typset-image/internal/runner"
)

// The color is compiled straight into the source, so there is no colorless
// intermediate; a color change is a recompile. Typst is fast enough that the
// session directory is reused across renders instead of caching by hash.
const typstPreamble = `#import "@preview/physica:0.8.1": *
#set page(width: auto, height: auto, margin: 0pt)
#set text(11pt, font: "New Computer Modern", lang: "en", fill: `

// Typst renders with a single typst compile invocation.
type Typst struct {
	runner runner.Runner
	cache  *cachedir.Manager
	tools  config.ToolsConfig
}

func NewTypst(r runner.Runner, cache *cachedir.Manager, tools config.ToolsConfig) *Typst {
	return &Typst{runner: r, cache: cache, tools: tools}
}

func (t *Typst) Letter() string   { return "T" }
func (t *Typst) Name() string     { return "typst" }
func (t *Typst) Stylized() string { return "Typst" }

func (t *Typst) Render(ctx context.Context, req Request) (string, error) {
	dir, err := t.cache.SessionDir()
	if err != nil {
		return "", err
	}

	source := fmt.Sprintf("%s%s)\n$ %s $", typstPreamble, req.Color, req.Equation)
	srcPath := filepath.Join(dir, "eq.typ")
	if err := os.WriteFile(srcPath, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", srcPath, err)
	}

	args := []string{
		"compile",
		"eq.typ",
		ArtifactName(req.Color, req.Format),
		"--diagnostic-format", "short",
	}
	if req.Format == FormatPNG {
		args = append(args,
			"--ppi", strconv.Itoa(req.PPI),
			"--background", "#00000000",
		)
	}

	if _, err := t.runner.Run(ctx, dir, t.tools.Typst, args...); err != nil {
		return "", err
	}
	return dir, nil
}

func (t *Typst) Recolor(_ context.Context, _, _ string) error {
	return ErrRecolorUnsupported
}
