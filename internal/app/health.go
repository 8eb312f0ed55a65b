package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
	"golang.org/x/sync/errgroup"
)

type healthResponse struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func (healthResponse) Message() string { return "OK" }

func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.dbConn.Ping(gctx) })
	g.Go(func() error { return a.cacheConn.Ping(gctx).Err() })

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "health check failed", "error", err)
		return nil, goerror.NewServer(err)
	}

	return healthResponse{Database: "up", Redis: "up"}, nil
}
