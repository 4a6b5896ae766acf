// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakedcall/api/accounts"
	"github.com/vechain/stakedcall/api/events"
	"github.com/vechain/stakedcall/api/middleware"
	"github.com/vechain/stakedcall/api/options"
	"github.com/vechain/stakedcall/api/oracle"
	"github.com/vechain/stakedcall/api/restutil"
	"github.com/vechain/stakedcall/api/subscriptions"
	"github.com/vechain/stakedcall/api/transactions"
	"github.com/vechain/stakedcall/log"
	"github.com/vechain/stakedcall/metrics"
	"github.com/vechain/stakedcall/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	LogsLimit            uint64
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
}

// New return api router
func New(n *node.Node, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	router.Path("/").
		Methods(http.MethodGet).
		Name("GET /").
		HandlerFunc(restutil.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			best := n.Best()
			return restutil.WriteJSON(w, restutil.M{
				"genesisId":     n.Genesis().ID().String(),
				"bestNumber":    best.Number,
				"bestTimestamp": best.Time,
			})
		}))

	accounts.New(n).
		Mount(router, "/accounts")
	options.New(n).
		Mount(router, "/options")
	oracle.New(n).
		Mount(router, "/oracle")
	transactions.New(n).
		Mount(router, "/transactions")
	if n.LogDB() != nil {
		events.New(n, n.LogDB(), opts.LogsLimit).
			Mount(router, "/logs/event")
	}
	subs := subscriptions.New(n, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Path("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold)(handler)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
