package domain

import "testing"

func TestNewTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		rules   []CategoryRule
		wantErr bool
	}{
		{name: "valid", rules: []CategoryRule{{Name: "birds"}, {Name: "fish", Kind: CategoryKindProject}}},
		{name: "empty name", rules: []CategoryRule{{Name: "  "}}, wantErr: true},
		{name: "duplicate by slug", rules: []CategoryRule{{Name: "Big Bass"}, {Name: "big-bass"}}, wantErr: true},
		{name: "invalid pattern", rules: []CategoryRule{{Name: "birds", Patterns: []string{"("}}}, wantErr: true},
		{name: "unknown kind", rules: []CategoryRule{{Name: "birds", Kind: "series"}}, wantErr: true},
		{name: "unnamed subcategory", rules: []CategoryRule{{Name: "birds", Subcategories: []Subcategory{{Name: ""}}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTaxonomy(tt.rules, "misc")
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTaxonomy() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTaxonomyFallbackIsLast(t *testing.T) {
	tax := MustTaxonomy([]CategoryRule{
		{Name: "misc", Kind: CategoryKindProject, Keywords: []string{"scrap"}},
		{Name: "birds"},
	}, "misc")

	cats := tax.Categories()
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[1].Name != "misc" {
		t.Errorf("expected fallback last, got %s", cats[1].Name)
	}
	if cats[1].Kind != CategoryKindTopic {
		t.Errorf("expected fallback to be topic kind, got %s", cats[1].Kind)
	}
	if !tax.IsFallback("MISC") {
		t.Error("expected case-insensitive fallback match")
	}
}

func TestTaxonomyAppendsMissingFallback(t *testing.T) {
	tax := MustTaxonomy([]CategoryRule{{Name: "birds"}}, "")

	if tax.Fallback() != DefaultFallbackCategory {
		t.Errorf("expected fallback %s, got %s", DefaultFallbackCategory, tax.Fallback())
	}
	if _, ok := tax.Category(DefaultFallbackCategory); !ok {
		t.Error("expected fallback to be a declared category")
	}
}
