package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"StakingLedger/internal/logger"
	"StakingLedger/internal/metrics"
	"StakingLedger/internal/recorder"
	"StakingLedger/internal/staking"
	"StakingLedger/internal/token"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	Faucet         bool // mount POST /tokens/{name}/mint
}

// New builds the HTTP handler for the ledger, its tokens and its metrics.
func New(
	ledger *staking.Ledger,
	stake, reward *token.MemToken,
	rec recorder.Recorder,
	m *metrics.Metrics,
	opts Options,
) http.Handler {
	origins := make([]string, 0, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
			origins = append(origins, o)
		}
	}

	router := mux.NewRouter()
	NewPoolHandlers(ledger, rec, m).
		Mount(router, "/pool")
	NewTokenHandlers(stake, reward, ledger.Pool().Custody, opts.Faucet).
		Mount(router, "/tokens")
	router.Path("/metrics").Methods(http.MethodGet).Handler(m.Handler())

	handler := handlers.CompressHandler(router)
	if len(origins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedHeaders([]string{"content-type"}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		)(handler)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.Log),
		handlers.PrintRecoveryStack(true),
	)(handler)
}
