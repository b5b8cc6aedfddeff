// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"moonui/internal/catalog"
	"moonui/internal/models"
)

func TestAssetStoreCreateAssignsNumber(t *testing.T) {
	db := testDB(t)
	s := NewAssetStore(db)
	kind := models.KindTemplates

	a := testAsset(t, s, kind, "First", nil)
	b := testAsset(t, s, kind, "Second", nil)

	if a.ID == uuid.Nil {
		t.Error("expected generated UUID")
	}
	if b.Number <= a.Number {
		t.Errorf("numbers not increasing: %d then %d", a.Number, b.Number)
	}
	if a.Kind != kind.Name {
		t.Errorf("kind: got %q, want %q", a.Kind, kind.Name)
	}
}

func TestAssetStoreGradientsAlwaysPublished(t *testing.T) {
	db := testDB(t)
	s := NewAssetStore(db)
	ctx := context.Background()
	kind := models.KindGradients

	g := testAsset(t, s, kind, "Sunrise", nil)
	if g.Status != models.AssetStatusPublished {
		t.Errorf("status: got %q, want published", g.Status)
	}

	found, err := s.FindPublished(ctx, kind, g.ID)
	if err != nil {
		t.Fatalf("FindPublished: %v", err)
	}
	if found == nil {
		t.Fatal("expected gradient to be visible")
	}
}

func TestAssetStoreFindPublishedHidesDrafts(t *testing.T) {
	db := testDB(t)
	s := NewAssetStore(db)
	ctx := context.Background()
	kind := models.KindComponents

	a := testAsset(t, s, kind, "Navbar", nil)
	a.Status = models.AssetStatusDraft
	if err := s.Update(ctx, kind, a); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := s.FindPublished(ctx, kind, a.ID)
	if err != nil {
		t.Fatalf("FindPublished: %v", err)
	}
	if found != nil {
		t.Error("draft should not be visible")
	}

	found, _ = s.FindByID(ctx, kind, a.ID)
	if found == nil || found.Status != models.AssetStatusDraft {
		t.Errorf("FindByID: got %+v", found)
	}
}

func TestAssetStoreIncrementCounters(t *testing.T) {
	db := testDB(t)
	s := NewAssetStore(db)
	ctx := context.Background()

	comp := testAsset(t, s, models.KindComponents, "Card", nil)
	if err := s.IncrementPopularity(ctx, models.KindComponents, comp.ID); err != nil {
		t.Fatalf("IncrementPopularity: %v", err)
	}
	if err := s.IncrementViews(ctx, models.KindComponents, comp.ID); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	found, _ := s.FindByID(ctx, models.KindComponents, comp.ID)
	if found.CopyCount != 1 || found.DownloadCount != 0 || found.ViewCount != 1 {
		t.Errorf("component counters: %+v", found)
	}

	tmpl := testAsset(t, s, models.KindTemplates, "Blog", nil)
	s.IncrementPopularity(ctx, models.KindTemplates, tmpl.ID)
	found, _ = s.FindByID(ctx, models.KindTemplates, tmpl.ID)
	if found.DownloadCount != 1 || found.CopyCount != 0 {
		t.Errorf("template counters: %+v", found)
	}
}

func TestAssetStoreListFilters(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	s := NewAssetStore(db)
	ctx := context.Background()
	kind := models.KindDesigns

	warm := testCategory(t, cs, kind, "Warm", nil)
	cool := testCategory(t, cs, kind, "Cool", nil)

	marker := uuid.NewString()[:8]
	a := testAsset(t, s, kind, "Ember "+marker, warm)
	testAsset(t, s, kind, "Frost "+marker, cool)
	pro := testAsset(t, s, kind, "Lava 100% "+marker, warm)
	pro.Tier = models.TierPro
	s.Update(ctx, kind, pro)

	page, err := s.List(ctx, kind, AssetFilter{CategoryIDs: []uuid.UUID{warm.ID}, Sort: SortNumber})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("warm listing: total %d items %d, want 2", page.Total, len(page.Items))
	}
	if page.Items[0].ID != a.ID {
		t.Errorf("number order: first is %s, want %s", page.Items[0].Title, a.Title)
	}

	page, _ = s.List(ctx, kind, AssetFilter{Search: "frost " + marker})
	if page.Total != 1 {
		t.Errorf("search: total %d, want 1", page.Total)
	}

	// LIKE wildcards in the query are literal.
	page, _ = s.List(ctx, kind, AssetFilter{Search: "100% " + marker})
	if page.Total != 1 {
		t.Errorf("escaped search: total %d, want 1", page.Total)
	}

	page, _ = s.List(ctx, kind, AssetFilter{Tier: models.TierPro, Search: marker})
	if page.Total != 1 || page.Items[0].ID != pro.ID {
		t.Errorf("tier filter: got %+v", page)
	}

	page, _ = s.List(ctx, kind, AssetFilter{Search: marker, PerPage: 1})
	if page.Total != 3 || len(page.Items) != 1 || !page.HasNext {
		t.Errorf("paging: total %d items %d has_next %v", page.Total, len(page.Items), page.HasNext)
	}
}

// TestAssetStoreNeighborsMatchCollection checks that the SQL neighbour
// queries agree with the in-memory reference implementation.
func TestAssetStoreNeighborsMatchCollection(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	s := NewAssetStore(db)
	ctx := context.Background()
	kind := models.KindTemplates

	x := testCategory(t, cs, kind, "X", nil)
	y := testCategory(t, cs, kind, "Y", nil)

	var mine []*models.Asset
	for i, c := range []*models.Category{x, y, x, x, y, x} {
		mine = append(mine, testAsset(t, s, kind, "Item "+string(rune('A'+i)), c))
	}

	src := s.Neighbors(kind)
	for _, item := range mine {
		prev, err := src.Previous(ctx, item.Number, *item.CategoryID)
		if err != nil {
			t.Fatalf("Previous: %v", err)
		}
		next, err := src.Next(ctx, item.Number, *item.CategoryID)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}

		var local []models.Asset
		for _, m := range mine {
			local = append(local, *m)
		}
		ref := catalog.NewCollection(kind, local)

		if want := ref.FindPrevious(item.Number, *item.CategoryID); !sameAsset(prev, want) {
			t.Errorf("#%d previous: got %v, want %v", item.Number, prev, want)
		}
		if want := ref.FindNext(item.Number, *item.CategoryID); !sameAsset(next, want) {
			t.Errorf("#%d next: got %v, want %v", item.Number, next, want)
		}
	}

	rankFirst, total, err := src.Rank(ctx, mine[0].Number)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	rankLast, _, _ := src.Rank(ctx, mine[len(mine)-1].Number)
	if rankLast-rankFirst != len(mine)-1 {
		t.Errorf("rank spread: got %d, want %d", rankLast-rankFirst, len(mine)-1)
	}
	if total < len(mine) {
		t.Errorf("total %d < %d", total, len(mine))
	}

	relevant, err := src.Relevant(ctx, x.ID, mine[0].ID, 3)
	if err != nil {
		t.Fatalf("Relevant: %v", err)
	}
	if len(relevant) != 3 {
		t.Fatalf("relevant: got %d, want 3", len(relevant))
	}
	for _, r := range relevant {
		if r.ID == mine[0].ID || !r.InCategory(x.ID) {
			t.Errorf("unexpected relevant item %+v", r)
		}
	}

	popular, err := src.Popular(ctx, 2)
	if err != nil {
		t.Fatalf("Popular: %v", err)
	}
	if len(popular) > 2 {
		t.Errorf("popular: got %d, want at most 2", len(popular))
	}
}

func sameAsset(got *models.Asset, want *models.Asset) bool {
	if got == nil || want == nil {
		return got == nil && want == nil
	}
	return got.ID == want.ID
}
