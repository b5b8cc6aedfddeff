// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// seedGradient is one sample gradient inserted by Seed.
type seedGradient struct {
	title    string
	slug     string
	category string
	tier     string
}

// Seed populates an empty database with a small gradient catalog for
// development: Warm -> {Conic, Radial} and Cool -> {Blue}. It is a no-op
// when any gradient category already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM gradient_categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	ids := make(map[string]string)
	insert := func(name, parent string, order int) error {
		var parentID any
		if parent != "" {
			parentID = ids[parent]
		}
		var id string
		err := tx.QueryRow(`
			INSERT INTO gradient_categories (name, parent_id, sort_order)
			VALUES ($1, $2, $3) RETURNING id
		`, name, parentID, order).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
		ids[name] = id
		return nil
	}

	for i, c := range [][2]string{
		{"Warm", ""}, {"Conic", "Warm"}, {"Radial", "Warm"},
		{"Cool", ""}, {"Blue", "Cool"},
	} {
		if err := insert(c[0], c[1], i); err != nil {
			return err
		}
	}

	gradients := []seedGradient{
		{"Sunset Sweep", "sunset-sweep", "Conic", "free"},
		{"Ember Ring", "ember-ring", "Conic", "pro"},
		{"Peach Glow", "peach-glow", "Radial", "free"},
		{"Desert Heat", "desert-heat", "Warm", "free"},
		{"Deep Ocean", "deep-ocean", "Blue", "pro_plus"},
		{"Glacier", "glacier", "Cool", "free"},
	}
	for _, g := range gradients {
		_, err := tx.Exec(`
			INSERT INTO gradients (title, slug, category_id, tier)
			VALUES ($1, $2, $3, $4)
		`, g.title, g.slug, ids[g.category], g.tier)
		if err != nil {
			return fmt.Errorf("seed gradient %s: %w", g.slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample gradients",
		"categories", len(ids),
		"gradients", len(gradients),
	)
	return nil
}
