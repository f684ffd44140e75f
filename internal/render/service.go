package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Andrew-Schwartz/typset-image/internal/backend"
	"github.com/Andrew-Schwartz/typset-image/internal/cachedir"
	"github.com/Andrew-Schwartz/typset-image/internal/config"
	"github.com/Andrew-Schwartz/typset-image/internal/logger"
)

// ErrEmptyEquation is returned for a blank equation, before any external
// process is spawned.
var ErrEmptyEquation = errors.New("enter an equation")

// Result describes a finished render: the cache directory and the final
// colored artifact inside it.
type Result struct {
	Dir      string
	Artifact string
	Backend  backend.Backend
}

// Outcome is the message delivered by RenderAsync.
type Outcome struct {
	Result *Result
	Err    error
}

// Service routes render requests to the selected backend. Renders that share
// a cache directory are serialized with a per-key lock; renders into distinct
// directories may run concurrently because no backend mutates process-global
// state.
type Service struct {
	backends map[string]backend.Backend
	cache    *cachedir.Manager
	defaults config.RenderConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(backends map[string]backend.Backend, cache *cachedir.Manager, defaults config.RenderConfig) *Service {
	return &Service{
		backends: backends,
		cache:    cache,
		defaults: defaults,
		locks:    map[string]*sync.Mutex{},
	}
}

// Backend resolves a backend selector (name, stylized name or letter).
func (s *Service) Backend(kind string) (backend.Backend, error) {
	if kind == "" {
		kind = s.defaults.Backend
	}
	normalized, err := backend.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	b, ok := s.backends[normalized]
	if !ok {
		return nil, fmt.Errorf("backend %s is not configured", normalized)
	}
	return b, nil
}

// Backends returns the configured backends, for listing.
func (s *Service) Backends() []backend.Backend {
	out := make([]backend.Backend, 0, len(s.backends))
	for _, kind := range backend.Kinds() {
		if b, ok := s.backends[kind]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Render validates the request, applies configured defaults and runs the
// selected backend. Blank equations fail with ErrEmptyEquation without
// touching the cache or spawning anything.
func (s *Service) Render(ctx context.Context, kind string, req backend.Request) (*Result, error) {
	if strings.TrimSpace(req.Equation) == "" {
		return nil, ErrEmptyEquation
	}

	b, err := s.Backend(kind)
	if err != nil {
		return nil, err
	}
	s.applyDefaults(&req)

	unlock := s.lockDir(s.lockKey(b, req.Equation))
	defer unlock()

	dir, err := b.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Dir:      dir,
		Artifact: filepath.Join(dir, backend.ArtifactName(req.Color, req.Format)),
		Backend:  b,
	}
	logger.WithComponent("render").Debugf("%s rendered %s", b.Name(), res.Artifact)
	return res, nil
}

// RenderAsync dispatches Render to a goroutine and delivers the outcome on
// the returned channel, so a caller driving a UI or event loop never blocks
// on the external tools.
func (s *Service) RenderAsync(ctx context.Context, kind string, req backend.Request) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		res, err := s.Render(ctx, kind, req)
		ch <- Outcome{Result: res, Err: err}
	}()
	return ch
}

// Recolor derives a recolored SVG in an already rendered cache directory
// without re-typesetting. Only the LaTeX backend supports it; others return
// backend.ErrRecolorUnsupported.
func (s *Service) Recolor(ctx context.Context, kind, dir, color string) (string, error) {
	b, err := s.Backend(kind)
	if err != nil {
		return "", err
	}
	if color == "" {
		color = s.defaults.Color
	}

	unlock := s.lockDir(dir)
	defer unlock()

	if err := b.Recolor(ctx, dir, color); err != nil {
		return "", err
	}
	return filepath.Join(dir, backend.ArtifactName(color, backend.FormatSVG)), nil
}

func (s *Service) applyDefaults(req *backend.Request) {
	if req.Color == "" {
		req.Color = s.defaults.Color
	}
	if req.PPI <= 0 {
		req.PPI = s.defaults.PPI
	}
}

// lockKey picks the serialization key for a render: the LaTeX cache dir is
// shared by every render of the same equation, the Typst session dir by every
// Typst render.
func (s *Service) lockKey(b backend.Backend, equation string) string {
	if b.Name() == backend.KindLaTeX {
		return s.cache.EquationDir(equation)
	}
	return "typst-session"
}

func (s *Service) lockDir(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// CopyArtifact copies a rendered artifact to a user-chosen destination.
func CopyArtifact(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("could not copy file from `%s` to `%s`: %w", src, dst, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("could not copy file from `%s` to `%s`: %w", src, dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("could not copy file from `%s` to `%s`: %w", src, dst, err)
	}
	return out.Close()
}
