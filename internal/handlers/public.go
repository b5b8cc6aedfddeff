// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"moonui/internal/cache"
	"moonui/internal/catalog"
	"moonui/internal/license"
	"moonui/internal/markdown"
	"moonui/internal/models"
	"moonui/internal/store"
)

// LicenseHeader carries the license key on download requests.
const LicenseHeader = "X-License-Key"

// CacheHeader reports whether a listing or detail body came from the
// response cache ("HIT") or was built for this request ("MISS").
const CacheHeader = "X-Cache"

// Public groups handlers for the storefront API. Listing and detail
// responses go through the response cache; category trees do not, so
// their counts are always current.
type Public struct {
	categories CategoryRepo
	assets     AssetRepo
	licenses   license.Finder
	cache      ResponseCache
	files      FileStore
	now        func() time.Time
}

// NewPublic creates a new Public handler group. responses and files may be
// nil: without a cache every request hits the database, without storage
// downloads answer 503.
func NewPublic(categories CategoryRepo, assets AssetRepo, licenses license.Finder, responses ResponseCache, files FileStore) *Public {
	if responses == nil {
		responses = nopCache{}
	}
	return &Public{
		categories: categories,
		assets:     assets,
		licenses:   licenses,
		cache:      responses,
		files:      files,
		now:        time.Now,
	}
}

// categoriesResponse is the body of GET /api/{kind}/categories.
type categoriesResponse struct {
	Categories []*catalog.Node `json:"categories"`
	Total      int             `json:"total"`
}

// Categories returns the kind's category forest with aggregated counts.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	roots, err := p.categories.Tree(r.Context(), kind)
	if err != nil {
		serverError(w, "build category tree failed", err, "kind", kind.Name)
		return
	}

	writeJSON(w, http.StatusOK, categoriesResponse{Categories: roots, Total: catalog.Total(roots)})
}

// List returns one page of published items, filtered by the main/sub
// category selection, a title search and a tier.
func (p *Public) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	query := r.URL.Query()

	filter, msg := parseListQuery(query)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	key := cache.ListingKey(kind.Name, query)
	if cached, ok := p.cache.Get(ctx, key); ok {
		w.Header().Set(CacheHeader, "HIT")
		writeBody(w, http.StatusOK, cached)
		return
	}
	w.Header().Set(CacheHeader, "MISS")

	sel := catalog.Selection{Main: splitNames(query["main"]), Sub: splitNames(query["sub"])}
	if !sel.Empty() {
		cats, err := p.categories.List(ctx, kind)
		if err != nil {
			serverError(w, "list categories failed", err, "kind", kind.Name)
			return
		}
		filter.CategoryIDs = catalog.ResolveSelection(cats, sel)
		if len(filter.CategoryIDs) == 0 {
			// A selection naming no known category matches nothing.
			filter.Normalize()
			writeJSON(w, http.StatusOK, &store.AssetPage{
				Items:   []models.Asset{},
				Page:    filter.Page,
				PerPage: filter.PerPage,
			})
			return
		}
	}

	page, err := p.assets.List(ctx, kind, filter)
	if err != nil {
		serverError(w, "list assets failed", err, "kind", kind.Name)
		return
	}

	body, err := jsonBody(page)
	if err != nil {
		serverError(w, "encode listing failed", err)
		return
	}
	p.cache.Set(ctx, key, body)
	writeBody(w, http.StatusOK, body)
}

// detailResponse is the body of GET /api/{kind}/{id}.
type detailResponse struct {
	Item            *models.Asset       `json:"item"`
	DescriptionHTML string              `json:"description_html"`
	Navigation      *catalog.Navigation `json:"navigation"`
}

// Detail returns a published item with its navigation block and counts
// the view. The view is counted on cache hits too, but a cached body keeps
// the view_count and download_count it was built with, so a HIT may lag the
// database by up to the cache TTL.
func (p *Public) Detail(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	key := cache.DetailKey(kind.Name, id.String())
	if cached, ok := p.cache.Get(ctx, key); ok {
		p.countView(r, kind, id)
		w.Header().Set(CacheHeader, "HIT")
		writeBody(w, http.StatusOK, cached)
		return
	}

	item, err := p.assets.FindPublished(ctx, kind, id)
	if err != nil {
		serverError(w, "find asset failed", err, "kind", kind.Name, "id", id)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	nav, err := catalog.Navigate(ctx, p.assets.Neighbors(kind), item, catalog.DefaultNeighborLimit)
	if err != nil {
		serverError(w, "navigation failed", err, "kind", kind.Name, "id", id)
		return
	}

	descHTML, err := markdown.ToHTML(item.Description)
	if err != nil {
		slog.Warn("render description failed", "kind", kind.Name, "id", id, "error", err)
	}

	body, err := jsonBody(detailResponse{Item: item, DescriptionHTML: descHTML, Navigation: nav})
	if err != nil {
		serverError(w, "encode detail failed", err)
		return
	}
	p.cache.Set(ctx, key, body)
	p.countView(r, kind, id)
	w.Header().Set(CacheHeader, "MISS")
	writeBody(w, http.StatusOK, body)
}

// countView increments the view counter. Failures are logged only.
func (p *Public) countView(r *http.Request, kind models.Kind, id uuid.UUID) {
	if err := p.assets.IncrementViews(r.Context(), kind, id); err != nil {
		slog.Warn("increment views failed", "kind", kind.Name, "id", id, "error", err)
	}
}

// Download checks the caller's license against the item's tier and returns
// a short-lived URL for the item's file.
func (p *Public) Download(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if p.files == nil {
		writeError(w, http.StatusServiceUnavailable, "downloads are not available")
		return
	}

	item, err := p.assets.FindPublished(ctx, kind, id)
	if err != nil {
		serverError(w, "find asset failed", err, "kind", kind.Name, "id", id)
		return
	}
	if item == nil || item.AssetKey == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	now := p.now()
	var lic *models.License
	if item.Tier != models.TierFree {
		if key := r.Header.Get(LicenseHeader); key != "" {
			lic, err = license.Verify(ctx, p.licenses, key, now)
			switch {
			case errors.Is(err, license.ErrMalformedKey), errors.Is(err, license.ErrInvalidKey):
				writeError(w, http.StatusUnauthorized, "invalid license key")
				return
			case errors.Is(err, license.ErrExpired):
				writeError(w, http.StatusForbidden, "license expired")
				return
			case err != nil:
				serverError(w, "verify license failed", err)
				return
			}
		}
	}
	if err := license.Authorize(item, lic, now); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	u, err := p.files.DownloadURL(ctx, item.AssetKey)
	if err != nil {
		serverError(w, "presign download failed", err, "kind", kind.Name, "id", id)
		return
	}

	if err := p.assets.IncrementPopularity(ctx, kind, item.ID); err != nil {
		slog.Warn("increment popularity failed", "kind", kind.Name, "id", item.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": u})
}

// parseListQuery reads tier, sort and paging parameters. It returns a
// message when a parameter is invalid.
func parseListQuery(q url.Values) (store.AssetFilter, string) {
	f := store.AssetFilter{Search: strings.TrimSpace(q.Get("q"))}

	if t := q.Get("tier"); t != "" {
		tier := models.Tier(t)
		if !tier.Valid() {
			return f, "unknown tier"
		}
		f.Tier = tier
	}

	switch s := q.Get("sort"); s {
	case "", store.SortNewest, store.SortPopular, store.SortNumber:
		f.Sort = s
	default:
		return f, "unknown sort order"
	}

	for name, dst := range map[string]*int{"page": &f.Page, "per_page": &f.PerPage} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, name + " must be a positive integer"
		}
		*dst = n
	}
	return f, ""
}

// splitNames flattens repeated and comma-separated category parameters.
func splitNames(values []string) []string {
	var names []string
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}
