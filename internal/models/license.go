// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// License grants access to paid tiers. Only a bcrypt hash of the secret
// part of the key is stored; Prefix is the lookup handle.
type License struct {
	ID        uuid.UUID  `json:"id"`
	Prefix    string     `json:"prefix"`
	KeyHash   string     `json:"-"`
	Tier      Tier       `json:"tier"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Active reports whether the license is usable at the given time.
func (l *License) Active(now time.Time) bool {
	return l.ExpiresAt == nil || now.Before(*l.ExpiresAt)
}
