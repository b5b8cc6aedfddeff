// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides in-memory fakes for the repositories, cache and
// storage so handler tests run without PostgreSQL, Valkey or S3.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"moonui/internal/catalog"
	"moonui/internal/models"
	"moonui/internal/store"
)

// --- fake assets ---

type fakeAssets struct {
	mu         sync.Mutex
	items      map[string][]*models.Asset
	nextNumber int64
	err        error
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{items: map[string][]*models.Asset{}}
}

func (f *fakeAssets) add(kind models.Kind, a models.Asset) *models.Asset {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextNumber++
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Kind = kind.Name
	a.Number = f.nextNumber
	if a.Tier == "" {
		a.Tier = models.TierFree
	}
	if a.Status == "" || !kind.StatusGate {
		a.Status = models.AssetStatusPublished
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(a.Number) * time.Hour)
	}
	f.items[kind.Name] = append(f.items[kind.Name], &a)
	return &a
}

func (f *fakeAssets) get(kind models.Kind, id uuid.UUID) *models.Asset {
	for _, a := range f.items[kind.Name] {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeAssets) published(kind models.Kind) []models.Asset {
	var out []models.Asset
	for _, a := range f.items[kind.Name] {
		if a.IsPublished() {
			out = append(out, *a)
		}
	}
	return out
}

func (f *fakeAssets) List(_ context.Context, kind models.Kind, filter store.AssetFilter) (*store.AssetPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	filter.Normalize()

	inCats := func(a *models.Asset) bool {
		if len(filter.CategoryIDs) == 0 {
			return true
		}
		for _, id := range filter.CategoryIDs {
			if a.InCategory(id) {
				return true
			}
		}
		return false
	}

	items := []models.Asset{}
	for _, a := range f.items[kind.Name] {
		if !filter.IncludeUnpublished && !a.IsPublished() {
			continue
		}
		if !inCats(a) || (filter.Tier != "" && a.Tier != filter.Tier) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(filter.Search)) {
			continue
		}
		items = append(items, *a)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Number < items[j].Number })

	total := len(items)
	start := min((filter.Page-1)*filter.PerPage, total)
	end := min(start+filter.PerPage, total)
	return &store.AssetPage{
		Items:   items[start:end],
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
		HasNext: end < total,
	}, nil
}

func (f *fakeAssets) FindByID(_ context.Context, kind models.Kind, id uuid.UUID) (*models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if a := f.get(kind, id); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeAssets) FindPublished(ctx context.Context, kind models.Kind, id uuid.UUID) (*models.Asset, error) {
	a, err := f.FindByID(ctx, kind, id)
	if a != nil && !a.IsPublished() {
		return nil, nil
	}
	return a, err
}

func (f *fakeAssets) SlugExists(_ context.Context, kind models.Kind, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items[kind.Name] {
		if a.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAssets) Create(_ context.Context, kind models.Kind, a *models.Asset) (*models.Asset, error) {
	return f.add(kind, *a), nil
}

func (f *fakeAssets) Update(_ context.Context, kind models.Kind, a *models.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur := f.get(kind, a.ID); cur != nil {
		number, views, downloads, copies := cur.Number, cur.ViewCount, cur.DownloadCount, cur.CopyCount
		*cur = *a
		cur.Number, cur.ViewCount, cur.DownloadCount, cur.CopyCount = number, views, downloads, copies
	}
	return nil
}

func (f *fakeAssets) Delete(_ context.Context, kind models.Kind, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.items[kind.Name]
	for i, a := range items {
		if a.ID == id {
			f.items[kind.Name] = append(items[:i], items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAssets) IncrementViews(_ context.Context, kind models.Kind, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a := f.get(kind, id); a != nil {
		a.ViewCount++
	}
	return nil
}

func (f *fakeAssets) IncrementPopularity(_ context.Context, kind models.Kind, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a := f.get(kind, id); a != nil {
		if kind.CountsCopies() {
			a.CopyCount++
		} else {
			a.DownloadCount++
		}
	}
	return nil
}

func (f *fakeAssets) Neighbors(kind models.Kind) catalog.NeighborSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	return catalog.NewCollection(kind, f.published(kind))
}

// --- fake categories ---

type fakeCategories struct {
	mu     sync.Mutex
	cats   map[string][]models.Category
	assets *fakeAssets
}

func newFakeCategories(assets *fakeAssets) *fakeCategories {
	return &fakeCategories{cats: map[string][]models.Category{}, assets: assets}
}

func (f *fakeCategories) add(kind models.Kind, name string, parent *models.Category) *models.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Category{ID: uuid.New(), Kind: kind.Name, Name: name, SortOrder: len(f.cats[kind.Name])}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	f.cats[kind.Name] = append(f.cats[kind.Name], c)
	return &c
}

func (f *fakeCategories) List(_ context.Context, kind models.Kind) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Category{}, f.cats[kind.Name]...), nil
}

func (f *fakeCategories) Tree(ctx context.Context, kind models.Kind) ([]*catalog.Node, error) {
	cats, _ := f.List(ctx, kind)
	counts := map[uuid.UUID]int{}
	f.assets.mu.Lock()
	for _, a := range f.assets.published(kind) {
		if a.CategoryID != nil {
			counts[*a.CategoryID]++
		}
	}
	f.assets.mu.Unlock()
	return catalog.BuildTree(cats, counts), nil
}

func (f *fakeCategories) FindByID(_ context.Context, kind models.Kind, id uuid.UUID) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cats[kind.Name] {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) Create(_ context.Context, kind models.Kind, c *models.Category) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	cp.ID = uuid.New()
	cp.Kind = kind.Name
	f.cats[kind.Name] = append(f.cats[kind.Name], cp)
	return &cp, nil
}

func (f *fakeCategories) Update(_ context.Context, kind models.Kind, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cats[kind.Name] {
		if f.cats[kind.Name][i].ID == c.ID {
			f.cats[kind.Name][i] = *c
		}
	}
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, kind models.Kind, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cats := f.cats[kind.Name][:0]
	for _, c := range f.cats[kind.Name] {
		if c.ID == id {
			continue
		}
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
		}
		cats = append(cats, c)
	}
	f.cats[kind.Name] = cats
	return nil
}

func (f *fakeCategories) NextSortOrder(_ context.Context, kind models.Kind, parentID *uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := 0
	for _, c := range f.cats[kind.Name] {
		same := (parentID == nil && c.ParentID == nil) ||
			(parentID != nil && c.ParentID != nil && *parentID == *c.ParentID)
		if same && c.SortOrder >= next {
			next = c.SortOrder + 1
		}
	}
	return next, nil
}

// --- fake licenses, cache, files, log ---

type fakeLicenses struct {
	mu   sync.Mutex
	byPx map[string]*models.License
}

func newFakeLicenses() *fakeLicenses {
	return &fakeLicenses{byPx: map[string]*models.License{}}
}

func (f *fakeLicenses) Create(_ context.Context, l *models.License) (*models.License, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	f.byPx[cp.Prefix] = &cp
	return &cp, nil
}

func (f *fakeLicenses) FindByPrefix(_ context.Context, prefix string) (*models.License, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byPx[prefix], nil
}

type fakeCache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	return b, ok
}

func (c *fakeCache) Set(_ context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = body
}

func (c *fakeCache) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	c.invalidations++
}

type fakeFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: map[string][]byte{}}
}

func bucketOf(public bool) string {
	if public {
		return "pub"
	}
	return "priv"
}

func (f *fakeFiles) Upload(_ context.Context, public bool, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucketOf(public)+"/"+key] = data
	return nil
}

func (f *fakeFiles) Delete(_ context.Context, public bool, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucketOf(public)+"/"+key)
	f.deleted = append(f.deleted, bucketOf(public)+"/"+key)
	return nil
}

func (f *fakeFiles) FileURL(key string) string {
	return "https://cdn.test/" + key
}

func (f *fakeFiles) ExtractKey(rawURL string) (string, bool) {
	return strings.CutPrefix(rawURL, "https://cdn.test/")
}

func (f *fakeFiles) DownloadURL(_ context.Context, key string) (string, error) {
	return "https://files.test/" + key + "?sig=x", nil
}

type fakeLog struct {
	mu      sync.Mutex
	entries []store.CacheLogEntry
}

func (l *fakeLog) Log(_ context.Context, kind, entityType string, id uuid.UUID, action string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, store.CacheLogEntry{Kind: kind, EntityType: entityType, EntityID: id, Action: action})
}

func (l *fakeLog) RecentEntries(context.Context, int) ([]store.CacheLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]store.CacheLogEntry{}, l.entries...), nil
}

// --- harness ---

// testEnv bundles handlers and their fakes behind a chi router laid out
// like the real one.
type testEnv struct {
	assets     *fakeAssets
	categories *fakeCategories
	licenses   *fakeLicenses
	cache      *fakeCache
	files      *fakeFiles
	log        *fakeLog
	public     *Public
	admin      *Admin
	router     chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		assets:   newFakeAssets(),
		licenses: newFakeLicenses(),
		cache:    newFakeCache(),
		files:    newFakeFiles(),
		log:      &fakeLog{},
	}
	env.categories = newFakeCategories(env.assets)
	env.public = NewPublic(env.categories, env.assets, env.licenses, env.cache, env.files)
	env.admin = NewAdmin(env.categories, env.assets, env.licenses, env.cache, env.files, env.log)

	r := chi.NewRouter()
	r.Route("/api/{kind}", func(r chi.Router) {
		r.Get("/", env.public.List)
		r.Get("/categories", env.public.Categories)
		r.Get("/{id}", env.public.Detail)
		r.Post("/{id}/download", env.public.Download)
	})
	r.Route("/admin/api", func(r chi.Router) {
		r.Post("/licenses", env.admin.LicenseCreate)
		r.Get("/cache-log", env.admin.CacheLog)
		r.Route("/{kind}", func(r chi.Router) {
			r.Get("/categories", env.admin.CategoryList)
			r.Post("/categories", env.admin.CategoryCreate)
			r.Put("/categories/{id}", env.admin.CategoryUpdate)
			r.Delete("/categories/{id}", env.admin.CategoryDelete)
			r.Get("/assets", env.admin.AssetList)
			r.Post("/assets", env.admin.AssetCreate)
			r.Get("/assets/{id}", env.admin.AssetGet)
			r.Put("/assets/{id}", env.admin.AssetUpdate)
			r.Delete("/assets/{id}", env.admin.AssetDelete)
			r.Post("/assets/{id}/file", env.admin.AssetUpload)
		})
	})
	env.router = r
	return env
}

// do sends a request with an optional JSON body and returns the recorder.
func (env *testEnv) do(t *testing.T, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals a response body.
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

// gradientFixture builds Warm{Conic, Radial} and Cool{Blue} with items
// in each category.
func gradientFixture(env *testEnv) map[string]*models.Category {
	k := models.KindGradients
	warm := env.categories.add(k, "Warm", nil)
	cool := env.categories.add(k, "Cool", nil)
	cats := map[string]*models.Category{
		"Warm":   warm,
		"Cool":   cool,
		"Conic":  env.categories.add(k, "Conic", warm),
		"Radial": env.categories.add(k, "Radial", warm),
		"Blue":   env.categories.add(k, "Blue", cool),
	}
	for _, name := range []string{"Warm", "Conic", "Conic", "Radial", "Blue", "Cool"} {
		id := cats[name].ID
		env.assets.add(k, models.Asset{Title: name + " gradient", Slug: strings.ToLower(name) + "-" + uuid.NewString()[:6], CategoryID: &id})
	}
	return cats
}
