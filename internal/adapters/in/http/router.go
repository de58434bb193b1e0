// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"minter/internal/adapters/in/http/handler"
	"minter/internal/adapters/in/http/middleware"
)

// RouterDeps collects the services injected from main.go.
type RouterDeps struct {
	IssuanceUC handler.IssuanceService

	// カンマ区切り。空なら "*"
	AllowedOrigins string
}

// NewRouter sets up HTTP routing for the issuance endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS は Recover の外側（panic 時の 500 にもヘッダを付ける）
	r.Use(middleware.CORS(deps.AllowedOrigins))
	r.Use(middleware.Recover)

	// Health check (always on)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// usecase が存在するときだけマウントする
	if deps.IssuanceUC != nil {
		handler.NewIssuanceHandler(deps.IssuanceUC).Routes(r)
	}

	return r
}
