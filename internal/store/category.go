// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"moonui/internal/catalog"
	"moonui/internal/models"
)

// CategoryStore manages the category tables of every kind. Table names come
// from models.Kind and are never user input.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, parent_id, sort_order, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }, kind models.Kind) (*models.Category, error) {
	c := models.Category{Kind: kind.Name}
	err := scanner.Scan(&c.ID, &c.Name, &c.ParentID, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories of a kind ordered by sort_order, then name.
// This order is the display order of the built tree.
func (s *CategoryStore) List(ctx context.Context, kind models.Kind) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY sort_order, name`, categoryColumns, kind.CategoryTable,
	))
	if err != nil {
		return nil, fmt.Errorf("list %s categories: %w", kind.Name, err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// DirectCounts returns the number of published items filed directly under
// each category. Categories without items are absent from the map.
func (s *CategoryStore) DirectCounts(ctx context.Context, kind models.Kind) (map[uuid.UUID]int, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT category_id, COUNT(*)
		FROM %s
		WHERE category_id IS NOT NULL%s
		GROUP BY category_id
	`, kind.Table, publishedClause(kind, "AND")))
	if err != nil {
		return nil, fmt.Errorf("count %s by category: %w", kind.Name, err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// Tree returns the kind's category forest with aggregated published counts.
// It is rebuilt on every call.
func (s *CategoryStore) Tree(ctx context.Context, kind models.Kind) ([]*catalog.Node, error) {
	cats, err := s.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	counts, err := s.DirectCounts(ctx, kind)
	if err != nil {
		return nil, err
	}
	return catalog.BuildTree(cats, counts), nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, kind models.Kind, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = $1`, categoryColumns, kind.CategoryTable,
	), id)
	c, err := scanCategory(row, kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, kind models.Kind, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (name, parent_id, sort_order)
		VALUES ($1, $2, $3)
		RETURNING %s`, kind.CategoryTable, categoryColumns),
		c.Name, c.ParentID, c.SortOrder,
	)
	result, err := scanCategory(row, kind)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category.
func (s *CategoryStore) Update(ctx context.Context, kind models.Kind, c *models.Category) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET name = $1, parent_id = $2, sort_order = $3, updated_at = NOW()
		WHERE id = $4`, kind.CategoryTable),
		c.Name, c.ParentID, c.SortOrder, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category by ID. Children become roots and items become
// uncategorised (ON DELETE SET NULL).
func (s *CategoryStore) Delete(ctx context.Context, kind models.Kind, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, kind.CategoryTable), id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CategoryStore) NextSortOrder(ctx context.Context, kind models.Kind, parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRowContext(ctx, fmt.Sprintf(
			`SELECT MAX(sort_order) FROM %s WHERE parent_id IS NULL`, kind.CategoryTable,
		)).Scan(&maxOrder)
	} else {
		err = s.db.QueryRowContext(ctx, fmt.Sprintf(
			`SELECT MAX(sort_order) FROM %s WHERE parent_id = $1`, kind.CategoryTable,
		), *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}
