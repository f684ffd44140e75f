package backend

import (
	"fmt"
	"strings"

	"github.com/Andrew-Schwartz/typset-image/internal/cachedir"
	"github.com/Andrew-Schwartz/typset-image/internal/config"
	"github.com/Andrew-Schwartz/typset-image/internal/runner"
)

const (
	KindLaTeX = "latex"
	KindTypst = "typst"
)

// Kinds lists the supported backend kinds.
func Kinds() []string {
	return []string{KindLaTeX, KindTypst}
}

// ParseKind normalizes a backend selector: full name, stylized name or the
// one-letter tag, case-insensitively.
func ParseKind(s string) (string, error) {
	switch strings.ToLower(s) {
	case KindLaTeX, "l":
		return KindLaTeX, nil
	case KindTypst, "t", "":
		return KindTypst, nil
	default:
		return "", fmt.Errorf("unknown backend: %s (supported: %s, %s)", s, KindLaTeX, KindTypst)
	}
}

// New creates the Backend for a kind.
func New(kind string, r runner.Runner, cache *cachedir.Manager, tools config.ToolsConfig) (Backend, error) {
	normalized, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	switch normalized {
	case KindLaTeX:
		return NewLaTeX(r, cache, tools), nil
	default:
		return NewTypst(r, cache, tools), nil
	}
}
