// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"strings"

	"github.com/google/uuid"

	"moonui/internal/models"
)

// Selection is the sidebar state sent by the storefront. A name may appear
// in both lists at once; that is how a drill-down is expressed.
type Selection struct {
	Main []string `json:"main"`
	Sub  []string `json:"sub"`
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.Main) == 0 && len(s.Sub) == 0
}

// ResolveSelection turns a selection into the set of category IDs to filter
// content by. The result is deduplicated and follows the order of cats.
//
// Sub-category selections are always honoured. A selected main category
// expands to itself plus its direct children, unless one of those children
// is also selected as a sub-category, in which case the main category only
// groups the drill-down and adds nothing. Only direct children are
// considered; grandchildren never take part in drill-down detection.
//
// Names match case-insensitively. Unknown names are ignored.
func ResolveSelection(cats []models.Category, sel Selection) []uuid.UUID {
	subIDs := idsByName(cats, sel.Sub)
	mainIDs := idsByName(cats, sel.Main)

	children := make(map[uuid.UUID][]uuid.UUID)
	for _, c := range cats {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	result := make(map[uuid.UUID]bool, len(subIDs))
	for id := range subIDs {
		result[id] = true
	}

	for id := range mainIDs {
		kids := children[id]
		drilled := false
		for _, k := range kids {
			if subIDs[k] {
				drilled = true
				break
			}
		}
		if drilled {
			continue
		}
		result[id] = true
		for _, k := range kids {
			result[k] = true
		}
	}

	ids := make([]uuid.UUID, 0, len(result))
	for _, c := range cats {
		if result[c.ID] {
			ids = append(ids, c.ID)
			delete(result, c.ID)
		}
	}
	return ids
}

// idsByName returns the IDs of every category whose name matches one of names.
func idsByName(cats []models.Category, names []string) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool)
	if len(names) == 0 {
		return ids
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			wanted[strings.ToLower(n)] = true
		}
	}
	for _, c := range cats {
		if wanted[strings.ToLower(c.Name)] {
			ids[c.ID] = true
		}
	}
	return ids
}
