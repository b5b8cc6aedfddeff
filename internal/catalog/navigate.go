// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"moonui/internal/models"
)

// Navigation is the detail-page view model. Previous and Next are nil at
// the edges of the item's category.
type Navigation struct {
	Previous *models.Asset  `json:"previous"`
	Next     *models.Asset  `json:"next"`
	Rank     int            `json:"rank"`
	Total    int            `json:"total"`
	Relevant []models.Asset `json:"relevant"`
	Popular  []models.Asset `json:"popular"`
}

// Navigate runs the neighbour queries for item concurrently and joins the
// results. An item without a category gets no previous, next or relevant
// items. The first query error cancels the rest and is returned.
func Navigate(ctx context.Context, src NeighborSource, item *models.Asset, limit int) (*Navigation, error) {
	if limit <= 0 {
		limit = DefaultNeighborLimit
	}
	nav := &Navigation{Relevant: []models.Asset{}, Popular: []models.Asset{}}

	g, ctx := errgroup.WithContext(ctx)

	if item.CategoryID != nil {
		categoryID := *item.CategoryID

		g.Go(func() error {
			prev, err := src.Previous(ctx, item.Number, categoryID)
			if err != nil {
				return fmt.Errorf("previous: %w", err)
			}
			nav.Previous = prev
			return nil
		})
		g.Go(func() error {
			next, err := src.Next(ctx, item.Number, categoryID)
			if err != nil {
				return fmt.Errorf("next: %w", err)
			}
			nav.Next = next
			return nil
		})
		g.Go(func() error {
			relevant, err := src.Relevant(ctx, categoryID, item.ID, limit)
			if err != nil {
				return fmt.Errorf("relevant: %w", err)
			}
			if relevant != nil {
				nav.Relevant = relevant
			}
			return nil
		})
	}

	g.Go(func() error {
		rank, total, err := src.Rank(ctx, item.Number)
		if err != nil {
			return fmt.Errorf("rank: %w", err)
		}
		nav.Rank, nav.Total = rank, total
		return nil
	})
	g.Go(func() error {
		popular, err := src.Popular(ctx, limit)
		if err != nil {
			return fmt.Errorf("popular: %w", err)
		}
		if popular != nil {
			nav.Popular = popular
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("navigate %s #%d: %w", item.Kind, item.Number, err)
	}
	return nav, nil
}
