// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API: the public catalog under
// /api and the token-protected admin API under /admin/api. Handlers depend
// on small interfaces so they can be exercised without PostgreSQL, Valkey
// or S3.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moonui/internal/catalog"
	"moonui/internal/models"
	"moonui/internal/store"
)

// maxJSONBody caps request bodies on JSON endpoints.
const maxJSONBody = 1 << 20

// CategoryRepo is the category persistence used by the handlers.
type CategoryRepo interface {
	List(ctx context.Context, kind models.Kind) ([]models.Category, error)
	Tree(ctx context.Context, kind models.Kind) ([]*catalog.Node, error)
	FindByID(ctx context.Context, kind models.Kind, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, kind models.Kind, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, kind models.Kind, c *models.Category) error
	Delete(ctx context.Context, kind models.Kind, id uuid.UUID) error
	NextSortOrder(ctx context.Context, kind models.Kind, parentID *uuid.UUID) (int, error)
}

// AssetRepo is the asset persistence used by the handlers.
type AssetRepo interface {
	List(ctx context.Context, kind models.Kind, f store.AssetFilter) (*store.AssetPage, error)
	FindByID(ctx context.Context, kind models.Kind, id uuid.UUID) (*models.Asset, error)
	FindPublished(ctx context.Context, kind models.Kind, id uuid.UUID) (*models.Asset, error)
	SlugExists(ctx context.Context, kind models.Kind, slug string) (bool, error)
	Create(ctx context.Context, kind models.Kind, a *models.Asset) (*models.Asset, error)
	Update(ctx context.Context, kind models.Kind, a *models.Asset) error
	Delete(ctx context.Context, kind models.Kind, id uuid.UUID) error
	IncrementViews(ctx context.Context, kind models.Kind, id uuid.UUID) error
	IncrementPopularity(ctx context.Context, kind models.Kind, id uuid.UUID) error
	Neighbors(kind models.Kind) catalog.NeighborSource
}

// LicenseRepo stores issued licenses.
type LicenseRepo interface {
	Create(ctx context.Context, l *models.License) (*models.License, error)
	FindByPrefix(ctx context.Context, prefix string) (*models.License, error)
}

// ResponseCache caches public JSON responses.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	InvalidateAll(ctx context.Context)
}

// FileStore holds asset files (private) and previews (public).
type FileStore interface {
	Upload(ctx context.Context, public bool, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, public bool, key string) error
	FileURL(key string) string
	ExtractKey(rawURL string) (string, bool)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// InvalidationLog records why the response cache was cleared.
type InvalidationLog interface {
	Log(ctx context.Context, kind, entityType string, entityID uuid.UUID, action string)
	RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error)
}

// nopCache is used when no response cache is configured.
type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (nopCache) Set(context.Context, string, []byte)        {}
func (nopCache) InvalidateAll(context.Context)              {}

// kindParam resolves the {kind} URL segment, writing a 404 when unknown.
func kindParam(w http.ResponseWriter, r *http.Request) (models.Kind, bool) {
	kind, ok := models.KindByName(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown content kind")
	}
	return kind, ok
}

// idParam parses the {id} URL segment, writing a 404 when malformed.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}
	return id, true
}

// jsonBody encodes v for writeBody and the response cache.
func jsonBody(v any) ([]byte, error) {
	return json.Marshal(v)
}

// writeJSON encodes v and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := jsonBody(v)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeBody(w, status, body)
}

// writeBody writes an already encoded JSON body.
func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// serverError logs err and writes a generic 500.
func serverError(w http.ResponseWriter, msg string, err error, args ...any) {
	slog.Error(msg, append([]any{"error", err}, args...)...)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown
// fields. On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
