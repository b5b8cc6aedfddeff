// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"moonui/internal/models"
)

// LicenseStore persists issued licenses.
type LicenseStore struct {
	db *sql.DB
}

// NewLicenseStore returns a new LicenseStore.
func NewLicenseStore(db *sql.DB) *LicenseStore {
	return &LicenseStore{db: db}
}

const licenseColumns = `id, prefix, key_hash, tier, email, expires_at, created_at`

func scanLicense(scanner interface{ Scan(...any) error }) (*models.License, error) {
	var l models.License
	err := scanner.Scan(&l.ID, &l.Prefix, &l.KeyHash, &l.Tier, &l.Email, &l.ExpiresAt, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a license and returns it with its generated ID.
func (s *LicenseStore) Create(ctx context.Context, l *models.License) (*models.License, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO licenses (prefix, key_hash, tier, email, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+licenseColumns,
		l.Prefix, l.KeyHash, string(l.Tier), l.Email, l.ExpiresAt,
	)
	result, err := scanLicense(row)
	if err != nil {
		return nil, fmt.Errorf("create license: %w", err)
	}
	return result, nil
}

// FindByPrefix retrieves a license by its public prefix. Returns nil if not found.
func (s *LicenseStore) FindByPrefix(ctx context.Context, prefix string) (*models.License, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+licenseColumns+` FROM licenses WHERE prefix = $1`, prefix)
	l, err := scanLicense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find license by prefix: %w", err)
	}
	return l, nil
}
