package domain

import "testing"

func TestClassifyStage(t *testing.T) {
	vocab := DefaultStageVocabulary()

	tests := []struct {
		name           string
		path           string
		wantStage      Stage
		wantConfidence float64
	}{
		{
			name:           "delimited final",
			path:           "nature/birds/IMG_2056_eagle_final.jpg",
			wantStage:      StageFinal,
			wantConfidence: 0.2,
		},
		{
			name:      "delimited keyword beats bare substring",
			path:      "shop/sketch_finalist.jpg",
			wantStage: StageRough,
		},
		{
			name:      "no keywords defaults to detailed",
			path:      "dump/IMG_0001.jpg",
			wantStage: StageDetailed,
		},
		{
			name:      "tied top score defaults to detailed",
			path:      "shop/rough_final.jpg",
			wantStage: StageDetailed,
		},
		{
			name:           "path segments count",
			path:           "paint/IMG_0001.jpg",
			wantStage:      StageFinishing,
			wantConfidence: 0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStage(testFile(tt.path), vocab)
			if got.Stage != tt.wantStage {
				t.Errorf("expected stage %s, got %s", tt.wantStage, got.Stage)
			}
			if tt.wantConfidence != 0 && got.Confidence != tt.wantConfidence {
				t.Errorf("expected confidence %v, got %v", tt.wantConfidence, got.Confidence)
			}
		})
	}
}

func TestClassifyStageTieHasZeroConfidence(t *testing.T) {
	got := ClassifyStage(testFile("shop/rough_final.jpg"), DefaultStageVocabulary())

	if got.Confidence != 0 {
		t.Errorf("expected confidence 0 on tie, got %v", got.Confidence)
	}
	if len(got.MatchedKeywords) != 0 {
		t.Errorf("expected no matched keywords on tie, got %v", got.MatchedKeywords)
	}
}

func TestClassifyStageCustomVocabulary(t *testing.T) {
	vocab := StageVocabulary{
		Stages:  []StageRule{{Name: "process", Keywords: []string{"process"}}},
		Default: "process",
	}

	got := ClassifyStage(testFile("process/process_process.jpg"), vocab)

	if got.Stage != "process" {
		t.Fatalf("expected stage process, got %s", got.Stage)
	}
	if got.Confidence != 1 {
		t.Errorf("expected confidence 1, got %v", got.Confidence)
	}
}

func TestStageVocabularyValidate(t *testing.T) {
	tests := []struct {
		name    string
		vocab   StageVocabulary
		wantErr bool
	}{
		{name: "default", vocab: DefaultStageVocabulary(), wantErr: false},
		{name: "empty", vocab: StageVocabulary{}, wantErr: true},
		{
			name: "default missing",
			vocab: StageVocabulary{
				Stages:  []StageRule{{Name: "raw"}},
				Default: "final",
			},
			wantErr: true,
		},
		{
			name: "duplicate",
			vocab: StageVocabulary{
				Stages:  []StageRule{{Name: "raw"}, {Name: "raw"}},
				Default: "raw",
			},
			wantErr: true,
		},
		{
			name: "underscore reserved",
			vocab: StageVocabulary{
				Stages:  []StageRule{{Name: "in_progress"}},
				Default: "in_progress",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.vocab.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
