// Copyright (c) 2026 The StakePool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the HTTP surface of the pool daemon.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	poolapi "github.com/stakepool/stakepool/api/pool"
	"github.com/stakepool/stakepool/metrics"
	"github.com/stakepool/stakepool/pool"
)

// New returns the assembled API handler. allowedOrigins is a comma-separated
// CORS whitelist, "*" for any.
func New(engine *pool.Pool, attacher poolapi.Attacher, allowedOrigins string) http.Handler {
	router := mux.NewRouter()
	poolapi.New(engine, attacher).Mount(router, "/pool")
	router.Path("/metrics").Handler(metrics.HTTPHandler())

	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.TrimSpace(o)
	}

	return handlers.CompressHandler(
		handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedHeaders([]string{"content-type"}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		)(router))
}
