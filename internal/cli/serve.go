package cli

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/quizdrill/internal/api"
	"github.com/vytor/quizdrill/internal/logger"
)

func runServe(cmd *Command) func(e *env, args []string) int {
	return func(e *env, args []string) int {
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		addr := fs.String("addr", "", "listen address (defaults to the configured address)")
		if code, ok := parseFlags(cmd, fs, args, e.stderr); !ok {
			return code
		}

		app, code := e.app()
		if app == nil {
			return code
		}
		defer app.Close()

		listen := app.Config.Addr
		if *addr != "" {
			listen = *addr
		}
		log := logger.FromContext(e.ctx).WithPrefix("serve")

		srv := &api.Server{
			Engine:       app.Engine,
			Bank:         app.Bank,
			RunService:   app.Runs,
			StatsService: app.Stats,
			DB:           app.DB,
		}
		httpServer := &http.Server{
			Addr:         listen,
			Handler:      srv.Routes(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			log.Info("HTTP server listening on %s", listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				serveErr <- err
			}
			close(serveErr)
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(stop)

		select {
		case err, failed := <-serveErr:
			if failed {
				log.Error("HTTP server error: %v", err)
				fmt.Fprintf(e.stderr, "Server failed: %v\n", err)
				return ExitError
			}
			return ExitOK
		case sig := <-stop:
			log.Info("received signal %v, initiating graceful shutdown", sig)
		case <-e.ctx.Done():
			log.Info("context cancelled, initiating graceful shutdown")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		log.Debug("shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error: %v", err)
		}

		log.Debug("saving active run")
		app.Engine.Suspend(shutdownCtx)
		return ExitOK
	}
}
