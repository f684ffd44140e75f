package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Andrew-Schwartz/typset-image/internal/backend"
	"github.com/Andrew-Schwartz/typset-image/internal/logger"
	"github.com/Andrew-Schwartz/typset-image/internal/render"
)

// Watcher re-renders an equation source file whenever it changes, a live
// preview loop driven from the filesystem instead of a GUI input box.
type Watcher struct {
	path string
	dir  string
	base string

	svc  *render.Service
	kind string
	req  backend.Request
	out  string
}

// New creates a watcher for the equation file at path. req supplies the
// color/format/ppi applied to every re-render; out, when non-empty, is a
// destination the artifact is copied to after each successful render.
func New(path string, svc *render.Service, kind string, req backend.Request, out string) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("equation file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return &Watcher{
		path: abs,
		dir:  filepath.Dir(abs),
		base: filepath.Base(abs),
		svc:  svc,
		kind: kind,
		req:  req,
		out:  out,
	}, nil
}

// Start renders once immediately, then watches until ctx is canceled. It
// watches the parent directory (not the file) so editors that replace the
// file via temp+rename are still observed. Events are debounced to avoid
// double renders on write+chmod/rename bursts.
func (w *Watcher) Start(ctx context.Context) error {
	w.renderOnce(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}
	defer watcher.Close()

	log := logger.WithComponent("watch")
	log.Infof("watching %s", w.path)

	var debounce *time.Timer
	schedule := func() {
		if debounce != nil {
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
		}
		debounce = time.AfterFunc(200*time.Millisecond, func() { w.renderOnce(ctx) })
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != w.base {
				continue
			}
			// Write/Create/Chmod cover normal edits and atomic replace;
			// Remove/Rename means the file was swapped, the Create follows.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watcher error: %v", err)
		}
	}
}

// renderOnce reads the equation file and renders it, logging the outcome the
// way the GUI showed it: the error message replaces the preview, the next
// successful render clears it.
func (w *Watcher) renderOnce(ctx context.Context) {
	log := logger.WithComponent("watch")

	data, err := os.ReadFile(w.path)
	if err != nil {
		log.Errorf("read %s: %v", w.path, err)
		return
	}

	req := w.req
	// Trailing whitespace would change the cache key without changing the
	// typeset output.
	req.Equation = strings.TrimSpace(string(data))

	res, err := w.svc.Render(ctx, w.kind, req)
	if err != nil {
		log.Errorf("render failed: %v", err)
		return
	}
	log.Infof("rendered %s", res.Artifact)

	if w.out != "" {
		if err := render.CopyArtifact(res.Artifact, w.out); err != nil {
			log.Errorf("%v", err)
			return
		}
		log.Infof("copied to %s", w.out)
	}
}
