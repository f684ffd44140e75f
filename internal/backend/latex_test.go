package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Andrew-Schwartz/typset-image/internal/cachedir"
	"github.com/Andrew-Schwartz/typset-image/internal/config"
)

func testTools() config.ToolsConfig {
	return config.ToolsConfig{
		Latex:   "latex",
		Dvisvgm: "dvisvgm",
		Typst:   "typst",
		Magick:  "magick",
	}
}

func newLaTeXFixture(t *testing.T) (*LaTeX, *mockRunner, *cachedir.Manager) {
	t.Helper()
	cache, err := cachedir.New(t.TempDir())
	if err != nil {
		t.Fatalf("cannot create cache manager: %v", err)
	}
	r := newMockRunner()
	return NewLaTeX(r, cache, testTools()), r, cache
}

func TestLaTeX_Metadata(t *testing.T) {
	l, _, _ := newLaTeXFixture(t)
	if l.Letter() != "L" || l.Name() != "latex" || l.Stylized() != "LaTeX" {
		t.Errorf("unexpected metadata: %s %s %s", l.Letter(), l.Name(), l.Stylized())
	}
}

func TestLaTeX_Render_FullPipeline(t *testing.T) {
	l, r, cache := newLaTeXFixture(t)

	dir, err := l.Render(context.Background(), Request{Equation: "x^2", Color: "blue", Format: FormatSVG})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join(cache.Root(), fmt.Sprintf("latex_%d", cachedir.HashEquation("x^2")))
	if dir != want {
		t.Errorf("expected dir %s, got %s", want, dir)
	}

	tex, err := os.ReadFile(filepath.Join(dir, "eq.tex"))
	if err != nil {
		t.Fatalf("expected eq.tex to exist: %v", err)
	}
	for _, fragment := range []string{"x^2", `\begin{align*}`, `\color{white}`, `\documentclass[12pt]{article}`} {
		if !strings.Contains(string(tex), fragment) {
			t.Errorf("eq.tex missing %q", fragment)
		}
	}

	for _, name := range []string{"eq.svg", "blue_eq.svg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	if r.count("latex") != 1 || r.count("dvisvgm") != 1 {
		t.Errorf("expected one latex and one dvisvgm call, got %d and %d", r.count("latex"), r.count("dvisvgm"))
	}
	if r.count("magick") != 0 {
		t.Error("magick should not run for SVG output")
	}

	call, _ := r.lastCall("latex")
	if call.workdir != dir {
		t.Errorf("latex should run inside the cache dir, got %s", call.workdir)
	}
	if argsJoined(call) != "-no-shell-escape -interaction=nonstopmode -halt-on-error eq.tex" {
		t.Errorf("unexpected latex args: %s", argsJoined(call))
	}
}

func TestLaTeX_Render_CacheReuse(t *testing.T) {
	l, r, _ := newLaTeXFixture(t)
	ctx := context.Background()

	if _, err := l.Render(ctx, Request{Equation: "x^2", Color: "blue", Format: FormatSVG}); err != nil {
		t.Fatalf("first render failed: %v", err)
	}

	// Same equation, new color: only the color derivation runs.
	dir, err := l.Render(ctx, Request{Equation: "x^2", Color: "red", Format: FormatSVG})
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}

	if r.count("latex") != 1 || r.count("dvisvgm") != 1 {
		t.Errorf("typesetting must not rerun: latex=%d dvisvgm=%d", r.count("latex"), r.count("dvisvgm"))
	}
	if _, err := os.Stat(filepath.Join(dir, "red_eq.svg")); err != nil {
		t.Errorf("expected red_eq.svg: %v", err)
	}
}

func TestLaTeX_Render_Idempotent(t *testing.T) {
	l, _, _ := newLaTeXFixture(t)
	ctx := context.Background()
	req := Request{Equation: "\\frac{1}{2}", Color: "blue", Format: FormatSVG}

	dir1, err := l.Render(ctx, req)
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(dir1, "blue_eq.svg"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	dir2, err := l.Render(ctx, req)
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir2, "blue_eq.svg"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	if dir1 != dir2 {
		t.Errorf("expected the same cache dir, got %s and %s", dir1, dir2)
	}
	if string(first) != string(second) {
		t.Error("expected byte-identical output across renders")
	}
}

func TestLaTeX_Render_PNGReusesColoredSVG(t *testing.T) {
	l, r, _ := newLaTeXFixture(t)
	ctx := context.Background()

	dir, err := l.Render(ctx, Request{Equation: "x^2", Color: "blue", Format: FormatSVG})
	if err != nil {
		t.Fatalf("svg render failed: %v", err)
	}
	texBefore, _ := os.ReadFile(filepath.Join(dir, "eq.tex"))

	if _, err := l.Render(ctx, Request{Equation: "x^2", Color: "blue", Format: FormatPNG, PPI: 300}); err != nil {
		t.Fatalf("png render failed: %v", err)
	}

	if r.count("latex") != 1 {
		t.Error("png render must not re-typeset")
	}
	if r.count("magick") != 1 {
		t.Errorf("expected one magick call, got %d", r.count("magick"))
	}
	if _, err := os.Stat(filepath.Join(dir, "blue_eq.png")); err != nil {
		t.Errorf("expected blue_eq.png: %v", err)
	}

	texAfter, _ := os.ReadFile(filepath.Join(dir, "eq.tex"))
	if string(texBefore) != string(texAfter) {
		t.Error("eq.tex must not be rewritten for a PNG request")
	}

	call, _ := r.lastCall("magick")
	if argsJoined(call) != "convert -background none -density 300 blue_eq.svg blue_eq.png" {
		t.Errorf("unexpected magick args: %s", argsJoined(call))
	}
}

func TestLaTeX_Recolor_RoundTrip(t *testing.T) {
	l, _, cache := newLaTeXFixture(t)
	ctx := context.Background()

	dir := cache.EquationDir("x^2")
	if err := cache.Ensure(dir); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	original := `<svg><g fill="#fff"><path d="M0 0"/></g></svg>`
	if err := os.WriteFile(filepath.Join(dir, "eq.svg"), []byte(original), 0o644); err != nil {
		t.Fatalf("seed eq.svg: %v", err)
	}

	if err := l.Recolor(ctx, dir, "red"); err != nil {
		t.Fatalf("recolor red failed: %v", err)
	}
	if err := l.Recolor(ctx, dir, "green"); err != nil {
		t.Fatalf("recolor green failed: %v", err)
	}

	red, err := os.ReadFile(filepath.Join(dir, "red_eq.svg"))
	if err != nil {
		t.Fatalf("read red_eq.svg: %v", err)
	}
	if string(red) != strings.ReplaceAll(original, "#fff", "red") {
		t.Errorf("unexpected red content: %s", red)
	}

	green, err := os.ReadFile(filepath.Join(dir, "green_eq.svg"))
	if err != nil {
		t.Fatalf("read green_eq.svg: %v", err)
	}
	if !strings.Contains(string(green), `fill="green"`) {
		t.Errorf("unexpected green content: %s", green)
	}

	after, _ := os.ReadFile(filepath.Join(dir, "eq.svg"))
	if string(after) != original {
		t.Error("colorless intermediate must stay unchanged")
	}
}

func TestLaTeX_Recolor_MissingIntermediate(t *testing.T) {
	l, _, cache := newLaTeXFixture(t)

	dir := cache.EquationDir("never rendered")
	err := l.Recolor(context.Background(), dir, "red")
	if err == nil {
		t.Fatal("expected error for missing eq.svg")
	}
}

func TestLaTeX_Render_FailureShortCircuits(t *testing.T) {
	l, r, _ := newLaTeXFixture(t)
	wantErr := errors.New("! Undefined control sequence.")
	r.fail["latex"] = wantErr

	_, err := l.Render(context.Background(), Request{Equation: "\\foo", Color: "blue", Format: FormatSVG})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the latex failure, got %v", err)
	}
	if r.count("dvisvgm") != 0 {
		t.Error("dvisvgm must not run after latex fails")
	}
}
