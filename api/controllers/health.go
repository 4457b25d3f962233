package controllers

import (
	"context"
	"net/http"

	"github.com/varejolabs/pdv-terminal/api/responses"
	"github.com/varejolabs/pdv-terminal/pkg/config"
	pkgerrors "github.com/varejolabs/pdv-terminal/pkg/errors"
	"github.com/varejolabs/pdv-terminal/pkg/logger"
)

// Pinger is any dependency the readiness probe can exercise.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PDV-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency. Nil pingers are skipped, so a till
// without redis still reports ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PDV-Env", cfg.App.Env)
		ctx := r.Context()

		status := make(map[string]string, len(pingers)+1)
		for name, pinger := range pingers {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				status[name] = "unreachable"
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" is unreachable").WithDetails(status))
				return
			}
			status[name] = "ok"
		}

		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
