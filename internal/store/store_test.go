// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"moonui/internal/database"
	"moonui/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "moonui")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "moonui")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testCategory creates a category and removes it when the test ends.
func testCategory(t *testing.T, s *CategoryStore, kind models.Kind, name string, parent *models.Category) *models.Category {
	t.Helper()
	c := &models.Category{Name: name + "-" + uuid.NewString()[:8]}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	created, err := s.Create(context.Background(), kind, c)
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	t.Cleanup(func() { s.Delete(context.Background(), kind, created.ID) })
	return created
}

// testAsset creates a published asset in the category and removes it when
// the test ends.
func testAsset(t *testing.T, s *AssetStore, kind models.Kind, title string, category *models.Category) *models.Asset {
	t.Helper()
	a := &models.Asset{
		Title:  title,
		Slug:   "test-" + uuid.NewString()[:12],
		Tier:   models.TierFree,
		Status: models.AssetStatusPublished,
	}
	if category != nil {
		a.CategoryID = &category.ID
	}
	created, err := s.Create(context.Background(), kind, a)
	if err != nil {
		t.Fatalf("create asset %s: %v", title, err)
	}
	t.Cleanup(func() { s.Delete(context.Background(), kind, created.ID) })
	return created
}
