package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Andrew-Schwartz/typset-image/internal/cachedir"
	"github.com/Andrew-Schwartz/typset-image/internal/config"
	"github.com/Andrew-Schwartz/typset-image/internal/logger"
	"github.com/Andrew-Schwartz/typset-image/internal/runner"
)

// The wrapped document typesets in white so the fill can later be swapped
// textually; colorPlaceholder is the literal dvisvgm writes for it.
const (
	latexPreamble = `\documentclass[12pt]{article}
\usepackage{amsmath}
\usepackage{amssymb}
\usepackage{amsfonts}
\usepackage[usenames,dvipsnames]{color}
\usepackage[utf8]{inputenc}
\thispagestyle{empty}
\begin{document}
\color{white}
\begin{align*}
    `

	latexEpilogue = `
\end{align*}
\end{document}`

	colorPlaceholder = "#fff"

	// IntermediateSVG is the colorless intermediate produced once per
	// equation; every color change derives from it without re-typesetting.
	IntermediateSVG = "eq.svg"
)

// LaTeX renders through the latex -> dvisvgm pipeline, caching the expensive
// typesetting step per equation hash.
type LaTeX struct {
	runner runner.Runner
	cache  *cachedir.Manager
	tools  config.ToolsConfig
}

func NewLaTeX(r runner.Runner, cache *cachedir.Manager, tools config.ToolsConfig) *LaTeX {
	return &LaTeX{runner: r, cache: cache, tools: tools}
}

func (l *LaTeX) Letter() string   { return "L" }
func (l *LaTeX) Name() string     { return "latex" }
func (l *LaTeX) Stylized() string { return "LaTeX" }

func (l *LaTeX) Render(ctx context.Context, req Request) (string, error) {
	dir := l.cache.EquationDir(req.Equation)

	if !fileExists(filepath.Join(dir, IntermediateSVG)) {
		if err := l.genSVG(ctx, req.Equation, dir); err != nil {
			return "", err
		}
	} else {
		logger.WithComponent("latex").Debugf("reusing cached %s in %s", IntermediateSVG, dir)
	}

	if !fileExists(filepath.Join(dir, ArtifactName(req.Color, FormatSVG))) {
		if err := l.Recolor(ctx, dir, req.Color); err != nil {
			return "", err
		}
	}

	if req.Format == FormatPNG {
		if err := l.genPNG(ctx, dir, req.Color, req.PPI); err != nil {
			return "", err
		}
	}

	return dir, nil
}

// genSVG runs the full typesetting pipeline: write eq.tex, typeset it to DVI
// with latex, convert the DVI to the colorless eq.svg with dvisvgm. All tool
// invocations receive dir as their working directory; nothing chdirs.
func (l *LaTeX) genSVG(ctx context.Context, equation, dir string) error {
	if err := l.cache.Ensure(dir); err != nil {
		return err
	}

	doc := latexPreamble + equation + latexEpilogue
	texPath := filepath.Join(dir, "eq.tex")
	if err := os.WriteFile(texPath, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", texPath, err)
	}

	if _, err := l.runner.Run(ctx, dir, l.tools.Latex,
		"-no-shell-escape",
		"-interaction=nonstopmode",
		"-halt-on-error",
		"eq.tex",
	); err != nil {
		return err
	}

	if _, err := l.runner.Run(ctx, dir, l.tools.Dvisvgm,
		"--no-fonts",
		"--scale=1",
		"--exact",
		"-o", IntermediateSVG,
		"eq.dvi",
	); err != nil {
		return err
	}

	return nil
}

// Recolor copies eq.svg to <color>_eq.svg, swapping the white placeholder
// fill for color. The intermediate stays untouched so further colors can be
// derived later without rerunning latex.
func (l *LaTeX) Recolor(_ context.Context, dir, color string) error {
	src := filepath.Join(dir, IntermediateSVG)
	svg, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	recolored := strings.ReplaceAll(string(svg), colorPlaceholder, color)

	dst := filepath.Join(dir, ArtifactName(color, FormatSVG))
	if err := os.WriteFile(dst, []byte(recolored), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

// genPNG rasterizes the colored SVG with a transparent background at the
// requested density. It always runs: the PNG name does not encode the PPI,
// so a stale file from an earlier density must be overwritten.
func (l *LaTeX) genPNG(ctx context.Context, dir, color string, ppi int) error {
	_, err := l.runner.Run(ctx, dir, l.tools.Magick,
		"convert",
		"-background", "none",
		"-density", strconv.Itoa(ppi),
		ArtifactName(color, FormatSVG),
		ArtifactName(color, FormatPNG),
	)
	return err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
