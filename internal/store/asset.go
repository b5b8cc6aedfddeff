// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"moonui/internal/models"
)

// Sort orders accepted by AssetStore.List.
const (
	SortNewest  = "newest"
	SortPopular = "popular"
	SortNumber  = "number"
)

const (
	defaultPerPage = 24
	maxPerPage     = 100
)

// AssetFilter narrows a storefront listing. An empty CategoryIDs slice
// means no category filter.
type AssetFilter struct {
	CategoryIDs        []uuid.UUID
	Search             string
	Tier               models.Tier
	Sort               string
	Page               int
	PerPage            int
	IncludeUnpublished bool
}

// Normalize clamps paging values and defaults the sort order.
func (f *AssetFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	switch f.Sort {
	case SortNewest, SortPopular, SortNumber:
	default:
		f.Sort = SortNewest
	}
}

// AssetPage is one page of a listing.
type AssetPage struct {
	Items   []models.Asset `json:"items"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	HasNext bool           `json:"has_next"`
}

// AssetStore handles the content tables of every kind through one
// implementation parameterised by models.Kind.
type AssetStore struct {
	db *sql.DB
}

// NewAssetStore creates a new AssetStore with the given database connection.
func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

// assetColumns returns the select list for a kind. Components have no
// download counter, the other kinds no copy counter, and gradients no
// status column; the missing ones are selected as constants.
func assetColumns(kind models.Kind) string {
	counters := "download_count, 0"
	if kind.CountsCopies() {
		counters = "0, copy_count"
	}
	status := "status"
	if !kind.StatusGate {
		status = "'published'"
	}
	return "id, title, slug, description, category_id, tier, number, view_count, " +
		counters + ", " + status + ", asset_key, preview_url, created_at, updated_at"
}

// publishedClause returns the status predicate joined with conj ("WHERE" or
// "AND"), or an empty string for kinds without a status column.
func publishedClause(kind models.Kind, conj string) string {
	if !kind.StatusGate {
		return ""
	}
	return " " + conj + " status = 'published'"
}

// scanAsset scans a row selected with assetColumns.
func scanAsset(scanner interface{ Scan(...any) error }, kind models.Kind) (*models.Asset, error) {
	a := models.Asset{Kind: kind.Name}
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Description, &a.CategoryID, &a.Tier, &a.Number,
		&a.ViewCount, &a.DownloadCount, &a.CopyCount, &a.Status,
		&a.AssetKey, &a.PreviewURL, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// queryAssets runs a query selecting assetColumns and collects the rows.
func (s *AssetStore) queryAssets(ctx context.Context, kind models.Kind, query string, args ...any) ([]models.Asset, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind.Name, err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// queryAsset runs a single-row query. Returns nil on no rows.
func (s *AssetStore) queryAsset(ctx context.Context, kind models.Kind, query string, args ...any) (*models.Asset, error) {
	a, err := scanAsset(s.db.QueryRowContext(ctx, query, args...), kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// where builds the WHERE clause and arguments for a filter.
func where(kind models.Kind, f AssetFilter) (string, []any) {
	var conds []string
	var args []any

	if !f.IncludeUnpublished && kind.StatusGate {
		conds = append(conds, "status = 'published'")
	}
	if len(f.CategoryIDs) > 0 {
		ids := make([]string, len(f.CategoryIDs))
		for i, id := range f.CategoryIDs {
			ids[i] = id.String()
		}
		args = append(args, ids)
		conds = append(conds, fmt.Sprintf("category_id = ANY($%d::uuid[])", len(args)))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if f.Tier != "" {
		args = append(args, string(f.Tier))
		conds = append(conds, fmt.Sprintf("tier = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike escapes LIKE wildcards in user search input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// orderBy returns the ORDER BY clause for a normalized sort.
func orderBy(kind models.Kind, sort string) string {
	switch sort {
	case SortPopular:
		return " ORDER BY " + kind.PopularityColumn + " DESC, number ASC"
	case SortNumber:
		return " ORDER BY number ASC"
	}
	return " ORDER BY created_at DESC, number DESC"
}

// List returns one page of assets matching the filter.
func (s *AssetStore) List(ctx context.Context, kind models.Kind, f AssetFilter) (*AssetPage, error) {
	f.Normalize()
	clause, args := where(kind, f)

	var total int
	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, kind.Table, clause), args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", kind.Name, err)
	}

	offset := (f.Page - 1) * f.PerPage
	query := fmt.Sprintf(`SELECT %s FROM %s%s%s LIMIT %d OFFSET %d`,
		assetColumns(kind), kind.Table, clause, orderBy(kind, f.Sort), f.PerPage, offset)

	items, err := s.queryAssets(ctx, kind, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Name, err)
	}

	return &AssetPage{
		Items:   items,
		Total:   total,
		Page:    f.Page,
		PerPage: f.PerPage,
		HasNext: offset+len(items) < total,
	}, nil
}

// FindByID retrieves an asset in any status. Returns nil if not found.
func (s *AssetStore) FindByID(ctx context.Context, kind models.Kind, id uuid.UUID) (*models.Asset, error) {
	a, err := s.queryAsset(ctx, kind, fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = $1`, assetColumns(kind), kind.Table,
	), id)
	if err != nil {
		return nil, fmt.Errorf("find %s by id: %w", kind.Name, err)
	}
	return a, nil
}

// FindPublished retrieves a published asset. Returns nil if not found or
// not visible on the storefront.
func (s *AssetStore) FindPublished(ctx context.Context, kind models.Kind, id uuid.UUID) (*models.Asset, error) {
	a, err := s.queryAsset(ctx, kind, fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = $1%s`, assetColumns(kind), kind.Table, publishedClause(kind, "AND"),
	), id)
	if err != nil {
		return nil, fmt.Errorf("find published %s: %w", kind.Name, err)
	}
	return a, nil
}

// SlugExists reports whether a slug is already used within the kind.
func (s *AssetStore) SlugExists(ctx context.Context, kind models.Kind, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1)`, kind.Table,
	), slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s slug: %w", kind.Name, err)
	}
	return exists, nil
}

// Create inserts a new asset. The database assigns ID and Number.
func (s *AssetStore) Create(ctx context.Context, kind models.Kind, a *models.Asset) (*models.Asset, error) {
	cols := []string{"title", "slug", "description", "category_id", "tier", "asset_key", "preview_url"}
	args := []any{a.Title, a.Slug, a.Description, a.CategoryID, string(a.Tier), a.AssetKey, a.PreviewURL}
	if kind.StatusGate {
		cols = append(cols, "status")
		args = append(args, string(a.Status))
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	result, err := s.queryAsset(ctx, kind, fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		kind.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), assetColumns(kind),
	), args...)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", kind.Name, err)
	}
	return result, nil
}

// Update modifies an existing asset. Number and counters are never changed.
func (s *AssetStore) Update(ctx context.Context, kind models.Kind, a *models.Asset) error {
	sets := []string{"title", "slug", "description", "category_id", "tier", "asset_key", "preview_url"}
	args := []any{a.Title, a.Slug, a.Description, a.CategoryID, string(a.Tier), a.AssetKey, a.PreviewURL}
	if kind.StatusGate {
		sets = append(sets, "status")
		args = append(args, string(a.Status))
	}

	assignments := make([]string, len(sets))
	for i, col := range sets {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args = append(args, a.ID)

	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d`,
		kind.Table, strings.Join(assignments, ", "), len(args),
	), args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", kind.Name, err)
	}
	return nil
}

// Delete removes an asset by ID.
func (s *AssetStore) Delete(ctx context.Context, kind models.Kind, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, kind.Table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind.Name, err)
	}
	return nil
}

// IncrementViews bumps the view counter of an asset.
func (s *AssetStore) IncrementViews(ctx context.Context, kind models.Kind, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET view_count = view_count + 1 WHERE id = $1`, kind.Table,
	), id)
	if err != nil {
		return fmt.Errorf("increment %s views: %w", kind.Name, err)
	}
	return nil
}

// IncrementPopularity bumps the counter the kind ranks by (downloads or copies).
func (s *AssetStore) IncrementPopularity(ctx context.Context, kind models.Kind, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET %s = %s + 1 WHERE id = $1`, kind.Table, kind.PopularityColumn, kind.PopularityColumn,
	), id)
	if err != nil {
		return fmt.Errorf("increment %s %s: %w", kind.Name, kind.PopularityColumn, err)
	}
	return nil
}
