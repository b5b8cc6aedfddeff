// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"moonui/internal/models"
)

// gradientCategories returns Warm -> {Conic, Radial -> {Soft}}, Cool -> {Blue}.
func gradientCategories() ([]models.Category, map[string]uuid.UUID) {
	warm := cat("Warm", nil)
	conic := cat("Conic", &warm)
	radial := cat("Radial", &warm)
	soft := cat("Soft", &radial)
	cool := cat("Cool", nil)
	blue := cat("Blue", &cool)

	cats := []models.Category{warm, conic, radial, soft, cool, blue}
	ids := make(map[string]uuid.UUID, len(cats))
	for _, c := range cats {
		ids[c.Name] = c.ID
	}
	return cats, ids
}

func TestResolveSelection(t *testing.T) {
	cats, ids := gradientCategories()

	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{
			name: "broad main expands to direct children",
			sel:  Selection{Main: []string{"Warm"}},
			want: []string{"Warm", "Conic", "Radial"},
		},
		{
			name: "sub only",
			sel:  Selection{Sub: []string{"Conic"}},
			want: []string{"Conic"},
		},
		{
			name: "drill-down suppresses broad expansion",
			sel:  Selection{Main: []string{"Warm"}, Sub: []string{"Conic"}},
			want: []string{"Conic"},
		},
		{
			name: "mixed drill-down and broad",
			sel:  Selection{Main: []string{"Warm", "Cool"}, Sub: []string{"Conic"}},
			want: []string{"Conic", "Cool", "Blue"},
		},
		{
			name: "sibling sub-selections both kept",
			sel:  Selection{Main: []string{"Warm"}, Sub: []string{"Conic", "Radial"}},
			want: []string{"Conic", "Radial"},
		},
		{
			name: "grandchild does not trigger drill-down",
			sel:  Selection{Main: []string{"Warm"}, Sub: []string{"Soft"}},
			want: []string{"Warm", "Conic", "Radial", "Soft"},
		},
		{
			name: "sub under unselected parent",
			sel:  Selection{Main: []string{"Cool"}, Sub: []string{"Conic"}},
			want: []string{"Conic", "Cool", "Blue"},
		},
		{
			name: "unknown names are dropped",
			sel:  Selection{Main: []string{"Neon"}, Sub: []string{"Plaid"}},
			want: []string{},
		},
		{
			name: "case-insensitive match",
			sel:  Selection{Main: []string{"warm"}, Sub: []string{" CONIC "}},
			want: []string{"Conic"},
		},
		{
			name: "duplicates collapse",
			sel:  Selection{Main: []string{"Cool", "Cool"}, Sub: []string{"Blue", "Blue"}},
			want: []string{"Blue"},
		},
		{
			name: "empty selection",
			sel:  Selection{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := make([]uuid.UUID, 0, len(tt.want))
			for _, n := range tt.want {
				want = append(want, ids[n])
			}
			// Expected IDs are listed in category order already.
			got := ResolveSelection(cats, tt.sel)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ResolveSelection(%+v) mismatch (-want +got):\n%s", tt.sel, diff)
			}
		})
	}
}

func TestResolveSelectionSharedName(t *testing.T) {
	warm := cat("Warm", nil)
	cool := cat("Cool", nil)
	warmMisc := cat("Misc", &warm)
	coolMisc := cat("Misc", &cool)
	cats := []models.Category{warm, cool, warmMisc, coolMisc}

	got := ResolveSelection(cats, Selection{Sub: []string{"Misc"}})
	want := []uuid.UUID{warmMisc.ID, coolMisc.ID}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionEmpty(t *testing.T) {
	if !(Selection{}).Empty() {
		t.Error("zero selection should be empty")
	}
	if (Selection{Sub: []string{"x"}}).Empty() {
		t.Error("selection with a sub should not be empty")
	}
}
