// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package license issues and checks the keys that unlock paid assets.
//
// A key has the form mui_<prefix>_<secret>. The prefix is stored in clear
// and used to look the license up; only a bcrypt hash of the secret is
// stored, so a leaked database does not leak usable keys.
package license

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"moonui/internal/models"
)

const (
	keyPrefix   = "mui_"
	prefixBytes = 6  // 12 hex chars
	secretBytes = 24 // 48 hex chars
)

// hashCost is the bcrypt cost for new keys. Tests lower it.
var hashCost = bcrypt.DefaultCost

var (
	// ErrMalformedKey is returned when a key does not have the mui_ form.
	ErrMalformedKey = errors.New("malformed license key")
	// ErrInvalidKey is returned for unknown prefixes and wrong secrets alike.
	ErrInvalidKey = errors.New("invalid license key")
	// ErrExpired is returned when the license exists but is past its expiry.
	ErrExpired = errors.New("license expired")
	// ErrLicenseRequired is returned when a paid asset is requested without a key.
	ErrLicenseRequired = errors.New("license required")
	// ErrTierTooLow is returned when the license tier does not cover the asset.
	ErrTierTooLow = errors.New("license tier does not include this asset")
)

// Finder looks a license up by its public prefix. It returns (nil, nil)
// when no license matches.
type Finder interface {
	FindByPrefix(ctx context.Context, prefix string) (*models.License, error)
}

// Generate creates a new key. The plaintext key is returned once and never
// stored; the returned License carries the prefix and hash to persist.
func Generate(tier models.Tier, email string, expiresAt *time.Time) (string, *models.License, error) {
	if !tier.Valid() {
		return "", nil, fmt.Errorf("generate license: unknown tier %q", tier)
	}

	prefix, err := randomHex(prefixBytes)
	if err != nil {
		return "", nil, fmt.Errorf("generate license prefix: %w", err)
	}
	secret, err := randomHex(secretBytes)
	if err != nil {
		return "", nil, fmt.Errorf("generate license secret: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), hashCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash license secret: %w", err)
	}

	l := &models.License{
		Prefix:    prefix,
		KeyHash:   string(hash),
		Tier:      tier,
		Email:     strings.TrimSpace(email),
		ExpiresAt: expiresAt,
	}
	return keyPrefix + prefix + "_" + secret, l, nil
}

// Parse splits a key into its prefix and secret.
func Parse(key string) (prefix, secret string, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(key), keyPrefix)
	if !ok {
		return "", "", ErrMalformedKey
	}
	prefix, secret, ok = strings.Cut(rest, "_")
	if !ok || len(prefix) != prefixBytes*2 || len(secret) != secretBytes*2 {
		return "", "", ErrMalformedKey
	}
	return prefix, secret, nil
}

// Verify parses the key, looks it up and checks the secret and expiry.
func Verify(ctx context.Context, f Finder, key string, now time.Time) (*models.License, error) {
	prefix, secret, err := Parse(key)
	if err != nil {
		return nil, err
	}

	l, err := f.FindByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("verify license: %w", err)
	}
	if l == nil {
		return nil, ErrInvalidKey
	}
	if bcrypt.CompareHashAndPassword([]byte(l.KeyHash), []byte(secret)) != nil {
		return nil, ErrInvalidKey
	}
	if !l.Active(now) {
		return nil, ErrExpired
	}
	return l, nil
}

// Authorize reports whether the license grants access to the asset. Free
// assets need no license. l may be nil.
func Authorize(a *models.Asset, l *models.License, now time.Time) error {
	if a.Tier == models.TierFree {
		return nil
	}
	if l == nil {
		return ErrLicenseRequired
	}
	if !l.Active(now) {
		return ErrExpired
	}
	if !l.Tier.Allows(a.Tier) {
		return ErrTierTooLow
	}
	return nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
