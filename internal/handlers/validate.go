// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"moonui/internal/models"
)

// Validation limits for catalog fields.
const (
	maxCategoryNameLen = 100
	maxTitleLen        = 300
	maxSlugLen         = 300
	maxDescriptionLen  = 10_000
	maxURLLen          = 2_000
	maxEmailLen        = 320
)

// validateCategory checks category inputs and returns the first error found.
func validateCategory(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "name is required"
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "name is too long (max 100 characters)"
	}
	if strings.Contains(name, ",") {
		return "name must not contain commas"
	}
	return ""
}

// validateAsset checks asset inputs and returns the first error found.
func validateAsset(in *assetInput) string {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "title is required"
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "title is too long (max 300 characters)"
	}
	if utf8.RuneCountInString(in.Slug) > maxSlugLen {
		return "slug is too long (max 300 characters)"
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return "description is too long (max 10,000 characters)"
	}
	if utf8.RuneCountInString(in.PreviewURL) > maxURLLen {
		return "preview URL is too long (max 2,000 characters)"
	}
	if in.Tier != "" && !models.Tier(in.Tier).Valid() {
		return "tier must be one of free, pro, pro_plus"
	}
	if in.Status != "" && !models.AssetStatus(in.Status).Valid() {
		return "status must be one of draft, published, archived"
	}
	return ""
}

// validateLicense checks license inputs and returns the first error found.
func validateLicense(in *licenseInput) string {
	if !models.Tier(in.Tier).Valid() {
		return "tier must be one of free, pro, pro_plus"
	}
	email := strings.TrimSpace(in.Email)
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "email is too long (max 320 characters)"
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return "email is not valid"
		}
	}
	return ""
}
