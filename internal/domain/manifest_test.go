package domain

import (
	"reflect"
	"testing"
)

func TestBuildManifest(t *testing.T) {
	layout := NewLayout("library")
	tax := MustTaxonomy([]CategoryRule{
		{Name: "birds", Kind: CategoryKindTopic},
		{Name: "bass", Kind: CategoryKindProject},
	}, "misc")
	vocab := DefaultStageVocabulary()

	files := []MediaFile{
		testFile("library/birds/final/birds_general_001.jpg"),
		testFile("library/bass/rough/bass_rough_001.jpg"),
		testFile("library/bass/final/bass_final_001.jpg"),
		testFile("library/bass/rough/bass_rough_002.jpg"),
		testFile("library/stray.jpg"),
	}

	placed, stray := layout.LibraryFiles(files, tax, vocab)
	if len(stray) != 1 || stray[0].FileName != "stray.jpg" {
		t.Fatalf("expected stray.jpg to be reported, got %v", stray)
	}

	m := BuildManifest(placed, vocab, DefaultCoverSizeThresholds())

	if len(m.Projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(m.Projects))
	}
	p := m.Projects[0]
	if p.ID != "bass" {
		t.Errorf("expected project bass, got %s", p.ID)
	}
	if p.CoverImage != "bass/final/bass_final_001.jpg" {
		t.Errorf("unexpected cover %s", p.CoverImage)
	}
	wantRough := []string{"bass/rough/bass_rough_001.jpg", "bass/rough/bass_rough_002.jpg"}
	if !reflect.DeepEqual(p.Stages[StageRough], wantRough) {
		t.Errorf("expected rough bucket %v, got %v", wantRough, p.Stages[StageRough])
	}
	if p.Stats.Total != 3 || p.Stats.PerStage[StageRough] != 2 {
		t.Errorf("unexpected stats %+v", p.Stats)
	}
	if p.Stats.CompletionLevel != StageFinal || p.Stats.Completion != 1 {
		t.Errorf("expected completion final/1, got %s/%v", p.Stats.CompletionLevel, p.Stats.Completion)
	}

	birds, ok := m.Categories["birds"]
	if !ok {
		t.Fatal("expected birds category")
	}
	if !reflect.DeepEqual(birds.Items, []string{"birds/final/birds_general_001.jpg"}) {
		t.Errorf("unexpected birds items %v", birds.Items)
	}
	if _, ok := m.Categories["bass"]; !ok {
		t.Error("expected project categories listed under categories too")
	}
}

func TestManifestInvalidPaths(t *testing.T) {
	m := &Manifest{
		Categories: map[string]ManifestCategory{
			"birds": {CoverImage: "birds/final/a.jpg", Items: []string{"birds/final/a.jpg", "birds/final/gone.jpg", "../outside.jpg"}},
		},
	}
	present := map[string]bool{"birds/final/a.jpg": true}

	got := m.InvalidPaths(func(p string) bool { return present[p] })

	want := []string{"../outside.jpg", "birds/final/gone.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
