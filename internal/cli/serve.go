package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/enrichman/httpgrace"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Andrew-Schwartz/typset-image/internal/api/route"
	"github.com/Andrew-Schwartz/typset-image/internal/config"
	"github.com/Andrew-Schwartz/typset-image/internal/logger"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the render API over HTTP",
	Long: `Serve exposes the render backends over HTTP for editors and other
tools: POST /render, POST /recolor, GET /artifact, GET /backends.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		port := a.Config.Server.Port
		if portFlag != 0 {
			port = portFlag
		}

		gin.SetMode(a.Config.Server.GinMode)
		gin.DefaultWriter = logger.Logger.Writer()
		gin.DefaultErrorWriter = logger.Logger.Writer()

		r := gin.New()
		route.SetupRoutes(r, a)

		logger.WithComponent("serve").Infof("render API listening on port %d", port)

		srv := createGraceHTTPServer(a.BaseCtx, a.Config.Server, r)
		if err := srv.ListenAndServe(fmt.Sprintf(":%d", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "listen port (default from config)")
}

func createGraceHTTPServer(ctx context.Context, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	return httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("serve").Info("shutting down render API...")
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), "[render-api] ", log.LstdFlags)
			},
		),
	)
}
