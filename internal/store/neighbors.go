// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"moonui/internal/catalog"
	"moonui/internal/models"
)

// Neighbors returns the SQL-backed neighbour queries for one kind. Each
// query is independent, so catalog.Navigate can run them in parallel on
// the connection pool. Only published items are considered.
func (s *AssetStore) Neighbors(kind models.Kind) catalog.NeighborSource {
	return &kindNeighbors{store: s, kind: kind}
}

type kindNeighbors struct {
	store *AssetStore
	kind  models.Kind
}

func (n *kindNeighbors) Previous(ctx context.Context, number int64, categoryID uuid.UUID) (*models.Asset, error) {
	a, err := n.store.queryAsset(ctx, n.kind, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE category_id = $1 AND number < $2%s
		ORDER BY number DESC
		LIMIT 1`, assetColumns(n.kind), n.kind.Table, publishedClause(n.kind, "AND")),
		categoryID, number,
	)
	if err != nil {
		return nil, fmt.Errorf("previous %s: %w", n.kind.Name, err)
	}
	return a, nil
}

func (n *kindNeighbors) Next(ctx context.Context, number int64, categoryID uuid.UUID) (*models.Asset, error) {
	a, err := n.store.queryAsset(ctx, n.kind, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE category_id = $1 AND number > $2%s
		ORDER BY number ASC
		LIMIT 1`, assetColumns(n.kind), n.kind.Table, publishedClause(n.kind, "AND")),
		categoryID, number,
	)
	if err != nil {
		return nil, fmt.Errorf("next %s: %w", n.kind.Name, err)
	}
	return a, nil
}

func (n *kindNeighbors) Rank(ctx context.Context, number int64) (int, int, error) {
	var rank, total int
	err := n.store.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*) FILTER (WHERE number <= $1), COUNT(*)
		FROM %s%s`, n.kind.Table, publishedClause(n.kind, "WHERE")),
		number,
	).Scan(&rank, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("rank %s: %w", n.kind.Name, err)
	}
	return rank, total, nil
}

func (n *kindNeighbors) Relevant(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]models.Asset, error) {
	items, err := n.store.queryAssets(ctx, n.kind, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE category_id = $1 AND id <> $2%s
		ORDER BY created_at DESC, number DESC
		LIMIT $3`, assetColumns(n.kind), n.kind.Table, publishedClause(n.kind, "AND")),
		categoryID, excludeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("relevant %s: %w", n.kind.Name, err)
	}
	return items, nil
}

func (n *kindNeighbors) Popular(ctx context.Context, limit int) ([]models.Asset, error) {
	items, err := n.store.queryAssets(ctx, n.kind, fmt.Sprintf(`
		SELECT %s FROM %s%s
		ORDER BY %s DESC, number ASC
		LIMIT $1`, assetColumns(n.kind), n.kind.Table, publishedClause(n.kind, "WHERE"), n.kind.PopularityColumn),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("popular %s: %w", n.kind.Name, err)
	}
	return items, nil
}
