// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tier gates access to an asset.
type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierProPlus Tier = "pro_plus"
)

// rank orders tiers from least to most privileged. Unknown tiers rank below free.
func (t Tier) rank() int {
	switch t {
	case TierFree:
		return 1
	case TierPro:
		return 2
	case TierProPlus:
		return 3
	}
	return 0
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return t.rank() > 0
}

// Allows reports whether a holder of tier t may access content of the
// required tier.
func (t Tier) Allows(required Tier) bool {
	return required.Valid() && t.rank() >= required.rank()
}

// AssetStatus represents the publishing state of an asset.
type AssetStatus string

const (
	AssetStatusDraft     AssetStatus = "draft"
	AssetStatusPublished AssetStatus = "published"
	AssetStatusArchived  AssetStatus = "archived"
)

// Valid reports whether s is a known status.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusDraft, AssetStatusPublished, AssetStatusArchived:
		return true
	}
	return false
}

// Asset is a sellable content item of any kind. Number is the ordinal
// assigned at creation, unique within the kind and used for adjacency
// navigation and rank display.
type Asset struct {
	ID            uuid.UUID   `json:"id"`
	Kind          string      `json:"kind"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description"`
	CategoryID    *uuid.UUID  `json:"category_id"`
	Tier          Tier        `json:"tier"`
	Number        int64       `json:"number"`
	ViewCount     int64       `json:"view_count"`
	DownloadCount int64       `json:"download_count"`
	CopyCount     int64       `json:"copy_count"`
	Status        AssetStatus `json:"status"`
	AssetKey      string      `json:"-"`
	PreviewURL    string      `json:"preview_url"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// IsPublished returns true if the asset is visible on the storefront.
func (a *Asset) IsPublished() bool {
	return a.Status == AssetStatusPublished
}

// Popularity returns the counter the asset's kind ranks by.
func (a *Asset) Popularity(k Kind) int64 {
	if k.CountsCopies() {
		return a.CopyCount
	}
	return a.DownloadCount
}

// InCategory reports whether the asset is filed under the given category.
func (a *Asset) InCategory(id uuid.UUID) bool {
	return a.CategoryID != nil && *a.CategoryID == id
}
