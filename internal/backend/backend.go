package backend

import (
	"context"
	"errors"
	"fmt"
)

// Format is the target image format of a render.
type Format int

const (
	FormatSVG Format = iota
	FormatPNG
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "svg", "":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	default:
		return 0, fmt.Errorf("unknown format: %s (supported: svg, png)", s)
	}
}

func (f Format) Ext() string {
	if f == FormatPNG {
		return "png"
	}
	return "svg"
}

func (f Format) String() string {
	return f.Ext()
}

// Request carries one render's inputs. Color is a named color or hex token
// understood by the toolchain; PPI only matters for PNG output.
type Request struct {
	Equation string
	Color    string
	Format   Format
	PPI      int
}

// ArtifactName is the file name convention for the final colored output
// inside a cache directory.
func ArtifactName(color string, format Format) string {
	return fmt.Sprintf("%s_eq.%s", color, format.Ext())
}

// ErrRecolorUnsupported is returned by backends that have no colorless
// intermediate to derive from; callers fall back to a full render.
var ErrRecolorUnsupported = errors.New("backend has no recolor fast path")

// Backend is one of the two rendering pipelines. Implementations are
// stateless apart from their injected dependencies; a request either leaves
// the returned directory holding ArtifactName(color, format) or fails.
type Backend interface {
	// Letter is the one-letter tag used for backend toggling.
	Letter() string
	// Name is the lowercase name, also used as a placeholder/hint string.
	Name() string
	// Stylized is the display name.
	Stylized() string

	// Render produces the colored artifact and returns the directory
	// containing it.
	Render(ctx context.Context, req Request) (string, error)

	// Recolor derives a recolored SVG inside dir without recompiling.
	// Only the LaTeX pipeline supports this; others return
	// ErrRecolorUnsupported.
	Recolor(ctx context.Context, dir, color string) error
}
