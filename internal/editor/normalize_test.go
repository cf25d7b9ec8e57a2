package editor

import (
	"reflect"
	"testing"
)

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Go, Rust,  , Python", []string{"Go", "Rust", "Python"}},
		{"", []string{}},
		{" , ,", []string{}},
		{"Go,Go", []string{"Go", "Go"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SplitSkills(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSkills(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeBullets(t *testing.T) {
	got := NormalizeBullets([]string{"  shipped  ", "", "   ", "led"})
	want := []string{"shipped", "led"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeBullets = %q, want %q", got, want)
	}
}

func TestTrimOrNil(t *testing.T) {
	if got := TrimOrNil("   "); got != nil {
		t.Errorf("expected nil, got %q", *got)
	}
	if got := TrimOrNil(" Acme "); got == nil || *got != "Acme" {
		t.Errorf("expected Acme, got %v", got)
	}
}

func TestJoinSkills(t *testing.T) {
	if got := JoinSkills([]string{"Go", "Rust"}); got != "Go, Rust" {
		t.Errorf("JoinSkills = %q", got)
	}
}
