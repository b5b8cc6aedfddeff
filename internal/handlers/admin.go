// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"moonui/internal/catalog"
	"moonui/internal/license"
	"moonui/internal/models"
	"moonui/internal/slug"
	"moonui/internal/store"
)

// maxSlugAttempts bounds the -2, -3, ... suffix search for a free slug.
const maxSlugAttempts = 50

// Admin groups the catalog management handlers. Every write clears the
// public response cache and records the invalidation.
type Admin struct {
	categories CategoryRepo
	assets     AssetRepo
	licenses   LicenseRepo
	cache      ResponseCache
	files      FileStore
	cacheLog   InvalidationLog
}

// NewAdmin creates a new Admin handler group. responses, files and
// cacheLog may be nil.
func NewAdmin(categories CategoryRepo, assets AssetRepo, licenses LicenseRepo, responses ResponseCache, files FileStore, cacheLog InvalidationLog) *Admin {
	if responses == nil {
		responses = nopCache{}
	}
	return &Admin{
		categories: categories,
		assets:     assets,
		licenses:   licenses,
		cache:      responses,
		files:      files,
		cacheLog:   cacheLog,
	}
}

// invalidate clears the response cache after a catalog write.
func (a *Admin) invalidate(ctx context.Context, kind models.Kind, entityType string, id uuid.UUID, action string) {
	a.cache.InvalidateAll(ctx)
	if a.cacheLog != nil {
		a.cacheLog.Log(ctx, kind.Name, entityType, id, action)
	}
}

// --- Categories ---

// categoryInput is the body of category create and update requests.
type categoryInput struct {
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder *int       `json:"sort_order"`
}

// adminCategory is one row of the admin category picker.
type adminCategory struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Depth       int        `json:"depth"`
	DirectCount int        `json:"direct_count"`
	Count       int        `json:"count"`
}

// CategoryList returns the kind's categories in depth-first display order
// with their depth, for indented pickers.
func (a *Admin) CategoryList(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	roots, err := a.categories.Tree(r.Context(), kind)
	if err != nil {
		serverError(w, "build category tree failed", err, "kind", kind.Name)
		return
	}

	flat := catalog.Flatten(roots)
	rows := make([]adminCategory, 0, len(flat))
	for _, n := range flat {
		rows = append(rows, adminCategory{
			ID:          n.ID,
			Name:        n.Name,
			ParentID:    n.ParentID,
			Depth:       n.Depth,
			DirectCount: n.DirectCount,
			Count:       n.AggregateCount,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

// CategoryCreate adds a category to a kind.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var in categoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateCategory(in.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if in.ParentID != nil {
		parent, err := a.categories.FindByID(ctx, kind, *in.ParentID)
		if err != nil {
			serverError(w, "find parent category failed", err)
			return
		}
		if parent == nil {
			writeError(w, http.StatusBadRequest, "parent category must belong to the same kind")
			return
		}
	}

	c := &models.Category{Name: strings.TrimSpace(in.Name), ParentID: in.ParentID}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	} else {
		next, err := a.categories.NextSortOrder(ctx, kind, in.ParentID)
		if err != nil {
			serverError(w, "next sort order failed", err)
			return
		}
		c.SortOrder = next
	}

	created, err := a.categories.Create(ctx, kind, c)
	if err != nil {
		serverError(w, "create category failed", err, "kind", kind.Name)
		return
	}

	slog.Info("category created", "kind", kind.Name, "id", created.ID, "name", created.Name)
	a.invalidate(ctx, kind, "category", created.ID, "create")
	writeJSON(w, http.StatusCreated, created)
}

// CategoryUpdate renames, moves or reorders a category. A category cannot
// become its own parent or be moved under one of its descendants.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	existing, err := a.categories.FindByID(ctx, kind, id)
	if err != nil {
		serverError(w, "find category failed", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var in categoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateCategory(in.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if in.ParentID != nil {
		if *in.ParentID == id {
			writeError(w, http.StatusBadRequest, "category cannot be its own parent")
			return
		}
		cats, err := a.categories.List(ctx, kind)
		if err != nil {
			serverError(w, "list categories failed", err)
			return
		}
		if msg := checkParent(cats, id, *in.ParentID); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}

	existing.Name = strings.TrimSpace(in.Name)
	existing.ParentID = in.ParentID
	if in.SortOrder != nil {
		existing.SortOrder = *in.SortOrder
	}

	if err := a.categories.Update(ctx, kind, existing); err != nil {
		serverError(w, "update category failed", err, "kind", kind.Name, "id", id)
		return
	}

	a.invalidate(ctx, kind, "category", id, "update")
	writeJSON(w, http.StatusOK, existing)
}

// checkParent verifies that parentID exists among cats and is not a
// descendant of id.
func checkParent(cats []models.Category, id, parentID uuid.UUID) string {
	parents := make(map[uuid.UUID]*uuid.UUID, len(cats))
	for _, c := range cats {
		parents[c.ID] = c.ParentID
	}
	if _, ok := parents[parentID]; !ok {
		return "parent category must belong to the same kind"
	}

	seen := map[uuid.UUID]bool{}
	for cur := &parentID; cur != nil && !seen[*cur]; cur = parents[*cur] {
		if *cur == id {
			return "category cannot be moved under its own descendant"
		}
		seen[*cur] = true
	}
	return ""
}

// CategoryDelete removes a category. Its children become main categories
// and its items become uncategorised.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	existing, err := a.categories.FindByID(ctx, kind, id)
	if err != nil {
		serverError(w, "find category failed", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := a.categories.Delete(ctx, kind, id); err != nil {
		serverError(w, "delete category failed", err, "kind", kind.Name, "id", id)
		return
	}

	slog.Info("category deleted", "kind", kind.Name, "id", id)
	a.invalidate(ctx, kind, "category", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

// --- Assets ---

// assetInput is the body of asset create and update requests.
type assetInput struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Tier        string     `json:"tier"`
	Status      string     `json:"status"`
	PreviewURL  string     `json:"preview_url"`
}

// AssetList returns one page of items in any status.
func (a *Admin) AssetList(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}

	filter, msg := parseListQuery(r.URL.Query())
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	filter.IncludeUnpublished = true
	if filter.Sort == "" {
		filter.Sort = store.SortNumber
	}

	page, err := a.assets.List(r.Context(), kind, filter)
	if err != nil {
		serverError(w, "list assets failed", err, "kind", kind.Name)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// AssetGet returns a single item in any status.
func (a *Admin) AssetGet(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	item, err := a.assets.FindByID(r.Context(), kind, id)
	if err != nil {
		serverError(w, "find asset failed", err, "kind", kind.Name, "id", id)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// AssetCreate adds an item. The database assigns its number. Items start
// as drafts unless a status is given; gradients are always published.
func (a *Admin) AssetCreate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var in assetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateAsset(&in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !a.checkCategory(ctx, w, kind, in.CategoryID) {
		return
	}

	s, err := a.uniqueSlug(ctx, kind, in.Slug, in.Title, "")
	if err != nil {
		serverError(w, "slug lookup failed", err)
		return
	}

	item := &models.Asset{
		Title:       strings.TrimSpace(in.Title),
		Slug:        s,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Tier:        models.TierFree,
		Status:      models.AssetStatusDraft,
		PreviewURL:  strings.TrimSpace(in.PreviewURL),
	}
	if in.Tier != "" {
		item.Tier = models.Tier(in.Tier)
	}
	if in.Status != "" {
		item.Status = models.AssetStatus(in.Status)
	}

	created, err := a.assets.Create(ctx, kind, item)
	if err != nil {
		serverError(w, "create asset failed", err, "kind", kind.Name)
		return
	}

	slog.Info("asset created", "kind", kind.Name, "id", created.ID, "number", created.Number)
	a.invalidate(ctx, kind, "asset", created.ID, "create")
	writeJSON(w, http.StatusCreated, created)
}

// AssetUpdate replaces an item's editable fields. Number and counters are
// never changed. An empty slug keeps the current one; an empty tier or
// status keeps the current value.
func (a *Admin) AssetUpdate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	existing, err := a.assets.FindByID(ctx, kind, id)
	if err != nil {
		serverError(w, "find asset failed", err, "kind", kind.Name, "id", id)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var in assetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateAsset(&in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !a.checkCategory(ctx, w, kind, in.CategoryID) {
		return
	}

	if in.Slug != "" {
		s, err := a.uniqueSlug(ctx, kind, in.Slug, in.Title, existing.Slug)
		if err != nil {
			serverError(w, "slug lookup failed", err)
			return
		}
		existing.Slug = s
	}
	existing.Title = strings.TrimSpace(in.Title)
	existing.Description = in.Description
	existing.CategoryID = in.CategoryID
	existing.PreviewURL = strings.TrimSpace(in.PreviewURL)
	if in.Tier != "" {
		existing.Tier = models.Tier(in.Tier)
	}
	if in.Status != "" && kind.StatusGate {
		existing.Status = models.AssetStatus(in.Status)
	}

	if err := a.assets.Update(ctx, kind, existing); err != nil {
		serverError(w, "update asset failed", err, "kind", kind.Name, "id", id)
		return
	}

	a.invalidate(ctx, kind, "asset", id, "update")
	writeJSON(w, http.StatusOK, existing)
}

// AssetDelete removes an item and, when storage is configured, its files.
func (a *Admin) AssetDelete(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	existing, err := a.assets.FindByID(ctx, kind, id)
	if err != nil {
		serverError(w, "find asset failed", err, "kind", kind.Name, "id", id)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := a.assets.Delete(ctx, kind, id); err != nil {
		serverError(w, "delete asset failed", err, "kind", kind.Name, "id", id)
		return
	}

	if a.files != nil {
		if existing.AssetKey != "" {
			if err := a.files.Delete(ctx, false, existing.AssetKey); err != nil {
				slog.Warn("delete asset file failed", "key", existing.AssetKey, "error", err)
			}
		}
		if key, ok := a.files.ExtractKey(existing.PreviewURL); ok {
			if err := a.files.Delete(ctx, true, key); err != nil {
				slog.Warn("delete preview failed", "key", key, "error", err)
			}
		}
	}

	slog.Info("asset deleted", "kind", kind.Name, "id", id)
	a.invalidate(ctx, kind, "asset", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

// checkCategory verifies that a category ID, when given, belongs to the
// kind. It writes a 400 and returns false otherwise.
func (a *Admin) checkCategory(ctx context.Context, w http.ResponseWriter, kind models.Kind, id *uuid.UUID) bool {
	if id == nil {
		return true
	}
	c, err := a.categories.FindByID(ctx, kind, *id)
	if err != nil {
		serverError(w, "find category failed", err)
		return false
	}
	if c == nil {
		writeError(w, http.StatusBadRequest, "category must belong to the same kind")
		return false
	}
	return true
}

// uniqueSlug derives a slug from the requested slug or the title and
// suffixes it until it is free within the kind. current is the item's own
// slug, which never counts as taken.
func (a *Admin) uniqueSlug(ctx context.Context, kind models.Kind, requested, title, current string) (string, error) {
	base := slug.Generate(requested)
	if base == "" {
		base = slug.Generate(title)
	}
	if base == "" {
		base = "item"
	}
	return slug.Unique(base, maxSlugAttempts, func(s string) (bool, error) {
		if s == current {
			return false, nil
		}
		return a.assets.SlugExists(ctx, kind, s)
	})
}

// --- Licenses ---

// licenseInput is the body of POST /admin/api/licenses.
type licenseInput struct {
	Tier      string     `json:"tier"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// licenseResponse returns the plaintext key exactly once.
type licenseResponse struct {
	Key     string          `json:"key"`
	License *models.License `json:"license"`
}

// LicenseCreate issues a new license key.
func (a *Admin) LicenseCreate(w http.ResponseWriter, r *http.Request) {
	var in licenseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if msg := validateLicense(&in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	key, l, err := license.Generate(models.Tier(in.Tier), in.Email, in.ExpiresAt)
	if err != nil {
		serverError(w, "generate license failed", err)
		return
	}

	created, err := a.licenses.Create(r.Context(), l)
	if err != nil {
		serverError(w, "store license failed", err)
		return
	}

	slog.Info("license issued", "id", created.ID, "prefix", created.Prefix, "tier", created.Tier)
	writeJSON(w, http.StatusCreated, licenseResponse{Key: key, License: created})
}
