package http

import (
	"context"
	"net/http"
	"time"

	"github.com/alex2808pl/url-shortener/pkg/authsdk"
	"github.com/alex2808pl/url-shortener/pkg/httpx"
)

// Pinger is the store dependency of readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LivezHandler godoc
//
//	@Summary		Liveness
//	@Description	Reports that the process is serving requests. Always 200.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, health(startTime, version, "ok", nil))
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness
//	@Description	Reports whether the user store answers and which algorithm signs tokens.
//	@Description	Returns 503 when the store is unreachable or no signing algorithm is configured.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse
//	@Failure		503	{object}	authsdk.HealthResponse
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, db Pinger, algorithm string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{Database: "ok", Tokens: algorithm}
		status, code := "ok", http.StatusOK

		if err := db.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}
		if algorithm == "" {
			checks.Tokens = "error: no signing algorithm"
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, health(startTime, version, status, checks))
	}
}

func health(startTime time.Time, version, status string, checks *authsdk.HealthChecks) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(startTime).Truncate(time.Second).String(),
		Version: version,
		Checks:  checks,
	}
}
