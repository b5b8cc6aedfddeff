// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"moonui/internal/models"
)

// DefaultNeighborLimit is how many relevant and popular items a detail page shows.
const DefaultNeighborLimit = 3

// NeighborSource answers the five independent queries behind a detail page.
// Previous and Next are scoped to a category; Rank and Popular span the
// whole kind. A missing previous or next item is (nil, nil).
type NeighborSource interface {
	Previous(ctx context.Context, number int64, categoryID uuid.UUID) (*models.Asset, error)
	Next(ctx context.Context, number int64, categoryID uuid.UUID) (*models.Asset, error)
	Rank(ctx context.Context, number int64) (rank, total int, err error)
	Relevant(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]models.Asset, error)
	Popular(ctx context.Context, limit int) ([]models.Asset, error)
}

// Collection is an in-memory NeighborSource over the visible items of one
// kind. It never reorders or mutates the slice it was given.
type Collection struct {
	kind  models.Kind
	items []models.Asset
}

// NewCollection wraps items of the given kind.
func NewCollection(kind models.Kind, items []models.Asset) *Collection {
	return &Collection{kind: kind, items: items}
}

// FindPrevious returns the item in the category with the largest number
// strictly below number, or nil.
func (c *Collection) FindPrevious(number int64, categoryID uuid.UUID) *models.Asset {
	var best *models.Asset
	for i := range c.items {
		it := &c.items[i]
		if !it.InCategory(categoryID) || it.Number >= number {
			continue
		}
		if best == nil || it.Number > best.Number {
			best = it
		}
	}
	return best
}

// FindNext returns the item in the category with the smallest number
// strictly above number, or nil.
func (c *Collection) FindNext(number int64, categoryID uuid.UUID) *models.Asset {
	var best *models.Asset
	for i := range c.items {
		it := &c.items[i]
		if !it.InCategory(categoryID) || it.Number <= number {
			continue
		}
		if best == nil || it.Number < best.Number {
			best = it
		}
	}
	return best
}

// GlobalRank counts the items of the kind, in any category, numbered at or
// below number.
func (c *Collection) GlobalRank(number int64) int {
	rank := 0
	for i := range c.items {
		if c.items[i].Number <= number {
			rank++
		}
	}
	return rank
}

// FindRelevant returns up to limit items of the category other than
// excludeID, newest first. Equal creation times fall back to number, highest first.
func (c *Collection) FindRelevant(categoryID, excludeID uuid.UUID, limit int) []models.Asset {
	var out []models.Asset
	for _, it := range c.items {
		if it.InCategory(categoryID) && it.ID != excludeID {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Number > out[j].Number
	})
	return truncate(out, limit)
}

// FindPopular returns up to limit items of the kind ranked by its popularity
// counter, highest first. Ties go to the lower number.
func (c *Collection) FindPopular(limit int) []models.Asset {
	out := make([]models.Asset, len(c.items))
	copy(out, c.items)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Popularity(c.kind), out[j].Popularity(c.kind)
		if pi != pj {
			return pi > pj
		}
		return out[i].Number < out[j].Number
	})
	return truncate(out, limit)
}

func truncate(items []models.Asset, limit int) []models.Asset {
	if limit <= 0 {
		limit = DefaultNeighborLimit
	}
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []models.Asset{}
	}
	return items
}

// Previous implements NeighborSource.
func (c *Collection) Previous(_ context.Context, number int64, categoryID uuid.UUID) (*models.Asset, error) {
	return c.FindPrevious(number, categoryID), nil
}

// Next implements NeighborSource.
func (c *Collection) Next(_ context.Context, number int64, categoryID uuid.UUID) (*models.Asset, error) {
	return c.FindNext(number, categoryID), nil
}

// Rank implements NeighborSource.
func (c *Collection) Rank(_ context.Context, number int64) (int, int, error) {
	return c.GlobalRank(number), len(c.items), nil
}

// Relevant implements NeighborSource.
func (c *Collection) Relevant(_ context.Context, categoryID, excludeID uuid.UUID, limit int) ([]models.Asset, error) {
	return c.FindRelevant(categoryID, excludeID, limit), nil
}

// Popular implements NeighborSource.
func (c *Collection) Popular(_ context.Context, limit int) ([]models.Asset, error) {
	return c.FindPopular(limit), nil
}
