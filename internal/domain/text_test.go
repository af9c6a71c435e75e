package domain

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"birds", "birds"},
		{"Bald Eagle!", "bald-eagle"},
		{"Élan Vital", "elan-vital"},
		{"__big__bass__", "big-bass"},
		{"in_progress", "in-progress"},
		{"???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCountOccurrences(t *testing.T) {
	tests := []struct {
		text          string
		kw            string
		wantTotal     int
		wantDelimited int
	}{
		{"img_2056_eagle_final.jpg", "final", 1, 1},
		{"finalist.jpg", "final", 1, 0},
		{"final", "final", 1, 1},
		{"final-final_v2", "final", 2, 2},
		{"semifinal.jpg", "final", 1, 0},
		{"photo.jpg", "final", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			total, delimited := countOccurrences(tt.text, tt.kw)
			if total != tt.wantTotal || delimited != tt.wantDelimited {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantTotal, tt.wantDelimited, total, delimited)
			}
		})
	}
}

func TestNumericToken(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"IMG_2056_eagle", 2056, true},
		{"0042", 42, true},
		{"eagle_3b_7", 3, true},
		{"eagle", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NumericToken(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("expected %d/%v, got %d/%v", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestNewMediaFile(t *testing.T) {
	f := testFile("nature/birds/IMG_2056.JPG")

	if f.FileName != "IMG_2056.JPG" {
		t.Errorf("expected file name IMG_2056.JPG, got %s", f.FileName)
	}
	if f.Extension != "jpg" {
		t.Errorf("expected extension jpg, got %s", f.Extension)
	}
	if len(f.DirectorySegments) != 2 || f.DirectorySegments[1] != "birds" {
		t.Errorf("unexpected segments %v", f.DirectorySegments)
	}
	if !f.IsImage() {
		t.Error("expected image kind")
	}
	if f.Stem() != "IMG_2056" {
		t.Errorf("expected stem IMG_2056, got %s", f.Stem())
	}
}

func TestIsExcludedSegment(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Archive2019", true},
		{"_backup", true},
		{"original-files", true},
		{"birds", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExcludedSegment(tt.name, DefaultExcludedSegments); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
