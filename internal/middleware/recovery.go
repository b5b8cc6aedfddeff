// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recoverer turns a handler panic into a logged JSON 500 tagged with the
// request ID. http.ErrAbortHandler is re-raised so net/http can drop the
// connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer recoverRequest(w, r)
		next.ServeHTTP(w, r)
	})
}

func recoverRequest(w http.ResponseWriter, r *http.Request) {
	rec := recover()
	if rec == nil {
		return
	}
	if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
		panic(rec)
	}

	slog.Error("handler panic",
		"request_id", chimw.GetReqID(r.Context()),
		"route", r.Method+" "+r.URL.Path,
		"panic", rec,
		"stack", string(debug.Stack()),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
