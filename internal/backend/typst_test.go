package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Andrew-Schwartz/typset-image/internal/cachedir"
)

func newTypstFixture(t *testing.T) (*Typst, *mockRunner, *cachedir.Manager) {
	t.Helper()
	cache, err := cachedir.New(t.TempDir())
	if err != nil {
		t.Fatalf("cannot create cache manager: %v", err)
	}
	t.Cleanup(func() { cache.Cleanup() })
	r := newMockRunner()
	return NewTypst(r, cache, testTools()), r, cache
}

func TestTypst_Metadata(t *testing.T) {
	ty, _, _ := newTypstFixture(t)
	if ty.Letter() != "T" || ty.Name() != "typst" || ty.Stylized() != "Typst" {
		t.Errorf("unexpected metadata: %s %s %s", ty.Letter(), ty.Name(), ty.Stylized())
	}
}

func TestTypst_Render_SVG(t *testing.T) {
	ty, r, _ := newTypstFixture(t)

	dir, err := ty.Render(context.Background(), Request{Equation: "x^2", Color: "blue", Format: FormatSVG})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src, err := os.ReadFile(filepath.Join(dir, "eq.typ"))
	if err != nil {
		t.Fatalf("expected eq.typ: %v", err)
	}
	for _, fragment := range []string{"physica", "margin: 0pt", "fill: blue)", "$ x^2 $"} {
		if !strings.Contains(string(src), fragment) {
			t.Errorf("eq.typ missing %q in:\n%s", fragment, src)
		}
	}

	call, ok := r.lastCall("typst")
	if !ok {
		t.Fatal("expected a typst invocation")
	}
	if call.workdir != dir {
		t.Errorf("typst should run inside the session dir, got %s", call.workdir)
	}
	if argsJoined(call) != "compile eq.typ blue_eq.svg --diagnostic-format short" {
		t.Errorf("unexpected typst args: %s", argsJoined(call))
	}
}

func TestTypst_Render_PNG(t *testing.T) {
	ty, r, _ := newTypstFixture(t)

	_, err := ty.Render(context.Background(), Request{Equation: "x^2", Color: "red", Format: FormatPNG, PPI: 600})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call, _ := r.lastCall("typst")
	if argsJoined(call) != "compile eq.typ red_eq.png --diagnostic-format short --ppi 600 --background #00000000" {
		t.Errorf("unexpected typst args: %s", argsJoined(call))
	}
}

func TestTypst_Render_SessionDirReused(t *testing.T) {
	ty, r, _ := newTypstFixture(t)
	ctx := context.Background()

	dir1, err := ty.Render(ctx, Request{Equation: "x^2", Color: "blue", Format: FormatSVG})
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	dir2, err := ty.Render(ctx, Request{Equation: "y^2", Color: "red", Format: FormatSVG})
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}

	if dir1 != dir2 {
		t.Errorf("expected one session dir, got %s and %s", dir1, dir2)
	}
	// No intermediate caching: every render is a compile.
	if r.count("typst") != 2 {
		t.Errorf("expected two typst calls, got %d", r.count("typst"))
	}
}

func TestTypst_Recolor_Unsupported(t *testing.T) {
	ty, _, _ := newTypstFixture(t)
	err := ty.Recolor(context.Background(), t.TempDir(), "red")
	if !errors.Is(err, ErrRecolorUnsupported) {
		t.Errorf("expected ErrRecolorUnsupported, got %v", err)
	}
}

func TestTypst_Render_CompileFailure(t *testing.T) {
	ty, r, _ := newTypstFixture(t)
	wantErr := errors.New("error: unknown variable: foo")
	r.fail["typst"] = wantErr

	_, err := ty.Render(context.Background(), Request{Equation: "foo", Color: "blue", Format: FormatSVG})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected compile failure, got %v", err)
	}
}
