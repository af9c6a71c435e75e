package application

import (
	"errors"
	"testing"

	"mediasort/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "category",
			value:     "birds",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "category",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "runID",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
			}
		})
	}
}

func TestParseRunMode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    domain.RunMode
		wantErr bool
	}{
		{name: "dry-run", in: "dry-run", want: domain.RunModeDryRun},
		{name: "dryrun alias", in: "DryRun", want: domain.RunModeDryRun},
		{name: "commit", in: "commit", want: domain.RunModeCommit},
		{name: "empty is rejected", in: "", wantErr: true},
		{name: "unknown", in: "force", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRunMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRunMode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidMode) {
				t.Errorf("expected ErrInvalidMode, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestValidateFileID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "nested path", id: "nature/birds/eagle.jpg", wantErr: false},
		{name: "bare name", id: "eagle.jpg", wantErr: false},
		{name: "absolute", id: "/nature/eagle.jpg", wantErr: true},
		{name: "parent segment", id: "../eagle.jpg", wantErr: true},
		{name: "backslash", id: `nature\eagle.jpg`, wantErr: true},
		{name: "empty", id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileID("fileID", tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileID() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateThreshold(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{name: "zero", value: 0, wantErr: false},
		{name: "default", value: 0.5, wantErr: false},
		{name: "one", value: 1, wantErr: false},
		{name: "negative", value: -0.1, wantErr: true},
		{name: "above one", value: 1.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThreshold("review.threshold", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateThreshold() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMoveErrorIs(t *testing.T) {
	collision := &MoveError{File: "a.jpg", Reason: "exhausted", Kind: MoveErrorCollision}
	failure := &MoveError{File: "a.jpg", Reason: "permission denied"}

	if !errors.Is(collision, ErrMoveCollision) || errors.Is(collision, ErrMoveFailure) {
		t.Error("expected collision to match ErrMoveCollision only")
	}
	if !errors.Is(failure, ErrMoveFailure) || errors.Is(failure, ErrMoveCollision) {
		t.Error("expected failure to match ErrMoveFailure only")
	}
	if !errors.Is(&ManifestError{Path: "x.jpg"}, ErrManifestInconsistency) {
		t.Error("expected ManifestError to match ErrManifestInconsistency")
	}
}
