package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Andrew-Schwartz/typset-image/internal/backend"
	"github.com/Andrew-Schwartz/typset-image/internal/cachedir"
	"github.com/Andrew-Schwartz/typset-image/internal/logger"
	"github.com/Andrew-Schwartz/typset-image/internal/render"
)

// RenderRequest is the POST /render payload.
type RenderRequest struct {
	Equation string `json:"equation" validate:"required"`
	Color    string `json:"color"`
	Format   string `json:"format" validate:"omitempty,oneof=svg png"`
	PPI      int    `json:"ppi" validate:"omitempty,gt=0"`
	Backend  string `json:"backend"`
}

// RecolorRequest is the POST /recolor payload.
type RecolorRequest struct {
	Dir     string `json:"dir" validate:"required"`
	Color   string `json:"color" validate:"required"`
	Backend string `json:"backend"`
}

type RenderController struct {
	svc       *render.Service
	cache     *cachedir.Manager
	validator *validator.Validate
	baseCtx   context.Context
}

func NewRenderController(baseCtx context.Context, svc *render.Service, cache *cachedir.Manager) *RenderController {
	return &RenderController{
		svc:       svc,
		cache:     cache,
		validator: validator.New(),
		baseCtx:   baseCtx,
	}
}

// Render renders an equation and returns the cache directory and artifact path.
func (rc *RenderController) Render(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := rc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format, err := backend.ParseFormat(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := rc.svc.Render(c.Request.Context(), req.Backend, backend.Request{
		Equation: req.Equation,
		Color:    req.Color,
		Format:   format,
		PPI:      req.PPI,
	})
	if err != nil {
		if errors.Is(err, render.ErrEmptyEquation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Tool diagnostics are the primary user feedback, pass them through.
		logger.WithComponent("render_controller").Errorf("render failed: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dir":      res.Dir,
		"artifact": res.Artifact,
		"backend":  res.Backend.Name(),
	})
}

// Recolor derives a recolored SVG from an existing cache directory.
func (rc *RenderController) Recolor(c *gin.Context) {
	var req RecolorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := rc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := req.Backend
	if kind == "" {
		kind = backend.KindLaTeX
	}

	artifact, err := rc.svc.Recolor(c.Request.Context(), kind, req.Dir, req.Color)
	if err != nil {
		if errors.Is(err, backend.ErrRecolorUnsupported) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.WithComponent("render_controller").Errorf("recolor failed: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifact": artifact})
}

// Artifact serves a rendered file. Only paths inside the cache root or the
// session directory are allowed.
func (rc *RenderController) Artifact(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing path"})
		return
	}
	if !rc.cache.Contains(path) {
		c.JSON(http.StatusForbidden, gin.H{"error": "path is outside the cache"})
		return
	}
	c.File(path)
}

// Backends lists the configured backends and their metadata.
func (rc *RenderController) Backends(c *gin.Context) {
	type meta struct {
		Letter   string `json:"letter"`
		Name     string `json:"name"`
		Stylized string `json:"stylized"`
	}
	var out []meta
	for _, b := range rc.svc.Backends() {
		out = append(out, meta{Letter: b.Letter(), Name: b.Name(), Stylized: b.Stylized()})
	}
	c.JSON(http.StatusOK, gin.H{"backends": out})
}
