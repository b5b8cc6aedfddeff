// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Kind describes one of the four content types sold in the marketplace.
// All kinds share the same table shape, so one store implementation serves
// them all; the differences are captured here.
type Kind struct {
	Name             string // URL segment, e.g. "templates"
	Table            string
	CategoryTable    string
	PopularityColumn string // column ranked by "popular" listings
	StatusGate       bool   // false when the table has no status column
}

var (
	KindTemplates = Kind{
		Name:             "templates",
		Table:            "templates",
		CategoryTable:    "template_categories",
		PopularityColumn: "download_count",
		StatusGate:       true,
	}
	KindComponents = Kind{
		Name:             "components",
		Table:            "components",
		CategoryTable:    "component_categories",
		PopularityColumn: "copy_count",
		StatusGate:       true,
	}
	// Gradients are published the moment they are created.
	KindGradients = Kind{
		Name:             "gradients",
		Table:            "gradients",
		CategoryTable:    "gradient_categories",
		PopularityColumn: "download_count",
		StatusGate:       false,
	}
	KindDesigns = Kind{
		Name:             "designs",
		Table:            "designs",
		CategoryTable:    "design_categories",
		PopularityColumn: "download_count",
		StatusGate:       true,
	}
)

// Kinds lists every content kind in display order.
var Kinds = []Kind{KindTemplates, KindComponents, KindGradients, KindDesigns}

// KindByName resolves a URL segment to its kind.
func KindByName(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}

// CountsCopies reports whether popularity is measured by copies rather
// than downloads.
func (k Kind) CountsCopies() bool {
	return k.PopularityColumn == "copy_count"
}
