package editor

import (
	"reflect"
	"testing"

	"resumetailor/internal/types"
)

func strPtr(s string) *string { return &s }

func sampleExperience() []types.ExperienceEntry {
	return []types.ExperienceEntry{
		{Title: "Engineer", Company: "Acme", Bullets: []string{"a", "b", "c"}},
		{Title: "Intern", Company: "Initech", Bullets: []string{"x"}},
	}
}

func TestUpdateEntry(t *testing.T) {
	original := sampleExperience()

	tests := []struct {
		name  string
		index int
		want  string
	}{
		{"first entry", 0, "Lead"},
		{"last entry", 1, "Lead"},
		{"negative index is a no-op", -1, ""},
		{"past the end is a no-op", 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateEntry(original, tt.index, types.ExperiencePatch{Title: strPtr("Lead")})

			if len(got) != len(original) {
				t.Fatalf("length changed: got %d, want %d", len(got), len(original))
			}
			if tt.want == "" {
				if !reflect.DeepEqual(got, original) {
					t.Errorf("out-of-range update changed entries: %+v", got)
				}
				return
			}
			if got[tt.index].Title != tt.want {
				t.Errorf("title = %q, want %q", got[tt.index].Title, tt.want)
			}
			if original[tt.index].Title == tt.want {
				t.Error("original slice was mutated")
			}
		})
	}
}

func TestBulletEdits(t *testing.T) {
	original := sampleExperience()

	tests := []struct {
		name string
		edit func([]types.ExperienceEntry) []types.ExperienceEntry
		want []string
	}{
		{
			name: "update bullet",
			edit: func(e []types.ExperienceEntry) []types.ExperienceEntry { return UpdateBullet(e, 0, 1, "B") },
			want: []string{"a", "B", "c"},
		},
		{
			name: "update bullet out of range",
			edit: func(e []types.ExperienceEntry) []types.ExperienceEntry { return UpdateBullet(e, 0, 3, "B") },
			want: []string{"a", "b", "c"},
		},
		{
			name: "add bullet",
			edit: func(e []types.ExperienceEntry) []types.ExperienceEntry { return AddBullet(e, 0) },
			want: []string{"a", "b", "c", ""},
		},
		{
			name: "remove middle bullet",
			edit: func(e []types.ExperienceEntry) []types.ExperienceEntry { return RemoveBullet(e, 0, 1) },
			want: []string{"a", "c"},
		},
		{
			name: "remove bullet out of range",
			edit: func(e []types.ExperienceEntry) []types.ExperienceEntry { return RemoveBullet(e, 0, -1) },
			want: []string{"a", "b", "c"},
		},
		{
			name: "remove then add is splice then append",
			edit: func(e []types.ExperienceEntry) []types.ExperienceEntry {
				return AddBullet(RemoveBullet(e, 0, 0), 0)
			},
			want: []string{"b", "c", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.edit(original)
			if !reflect.DeepEqual(got[0].Bullets, tt.want) {
				t.Errorf("bullets = %q, want %q", got[0].Bullets, tt.want)
			}
			if !reflect.DeepEqual(original, sampleExperience()) {
				t.Errorf("original mutated: %+v", original)
			}
		})
	}
}

func TestRemoveThenAddBulletKeepsLength(t *testing.T) {
	for j := 0; j < 3; j++ {
		original := sampleExperience()
		got := AddBullet(RemoveBullet(original, 0, j), 0)

		want := append(append([]string{}, original[0].Bullets[:j]...), original[0].Bullets[j+1:]...)
		want = append(want, "")
		if !reflect.DeepEqual(got[0].Bullets, want) {
			t.Errorf("j=%d: bullets = %q, want %q", j, got[0].Bullets, want)
		}
	}
}

func TestAddBulletOnNilBullets(t *testing.T) {
	entries := []types.EducationEntry{{Institution: "Uni"}}

	got := AddBullet(entries, 0)
	if !reflect.DeepEqual(got[0].Bullets, []string{""}) {
		t.Errorf("bullets = %q, want one empty bullet", got[0].Bullets)
	}

	got = RemoveBullet(entries, 0, 0)
	if got[0].Bullets == nil {
		t.Error("nil bullets should come back as an empty slice")
	}
}

func TestEntryEditsNeverReturnNilBullets(t *testing.T) {
	entries := []types.ExperienceEntry{{Company: "a"}, {Company: "b"}}
	company := "c"
	empty := []string(nil)

	tests := []struct {
		name string
		got  []types.ExperienceEntry
	}{
		{"update", UpdateEntry(entries, 0, types.ExperiencePatch{Company: &company})},
		{"update with nil bullets", UpdateEntry(entries, 0, types.ExperiencePatch{Bullets: &empty})},
		{"update out of range", UpdateEntry(entries, 5, types.ExperiencePatch{Company: &company})},
		{"remove", RemoveEntry(entries, 0)},
		{"add", AddEntry(entries)},
		{"update bullet out of range", UpdateBullet(entries, 1, 3, "x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, e := range tt.got {
				if e.Bullets == nil {
					t.Errorf("entry %d has nil bullets", i)
				}
			}
		})
	}
	if entries[0].Bullets != nil || entries[1].Bullets != nil {
		t.Error("input entries were modified")
	}
}

func TestAddAndRemoveEntry(t *testing.T) {
	entries := AddEntry[types.EducationEntry](nil)
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	want := types.EducationEntry{Bullets: []string{""}}
	if !reflect.DeepEqual(entries[0], want) {
		t.Errorf("new entry = %+v, want %+v", entries[0], want)
	}

	original := sampleExperience()
	got := RemoveEntry(original, 0)
	if len(got) != 1 || got[0].Title != "Intern" {
		t.Errorf("remove shifted wrong: %+v", got)
	}
	if len(original) != 2 || original[0].Title != "Engineer" {
		t.Error("original mutated by RemoveEntry")
	}
	if got := RemoveEntry(original, 5); len(got) != 2 {
		t.Errorf("out-of-range remove changed length to %d", len(got))
	}
}

func TestEntrySequenceLength(t *testing.T) {
	// adds minus removes, with each update landing on the index current at call time
	var entries []types.ExperienceEntry
	entries = AddEntry(entries)
	entries = AddEntry(entries)
	entries = AddEntry(entries)
	entries = UpdateEntry(entries, 0, types.ExperiencePatch{Company: strPtr("zero")})
	entries = UpdateEntry(entries, 2, types.ExperiencePatch{Company: strPtr("two")})
	entries = RemoveEntry(entries, 1)
	entries = UpdateEntry(entries, 1, types.ExperiencePatch{Title: strPtr("moved")})
	entries = RemoveEntry(entries, 7)

	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Company != "zero" {
		t.Errorf("entries[0].Company = %q", entries[0].Company)
	}
	if entries[1].Company != "two" || entries[1].Title != "moved" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestPreviousSnapshotUnaffected(t *testing.T) {
	before := sampleExperience()
	after := UpdateBullet(before, 1, 0, "changed")
	after = AddBullet(after, 1)

	if before[1].Bullets[0] != "x" || len(before[1].Bullets) != 1 {
		t.Errorf("snapshot changed: %q", before[1].Bullets)
	}
	if after[1].Bullets[0] != "changed" {
		t.Errorf("edit missing: %q", after[1].Bullets)
	}
}
