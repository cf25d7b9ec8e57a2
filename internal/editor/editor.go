// Package editor implements index-addressed edits over resume sections.
//
// Every function returns a fresh slice and never writes through to its
// input, so a caller holding the previous value keeps a valid snapshot.
// Indices outside the current bounds turn an edit into a plain copy.
package editor

import (
	"resumetailor/internal/types"
)

// Entry is a section record that owns a bullet list
type Entry[E any] interface {
	BulletList() []string
	WithBullets([]string) E
}

// Patch merges a partial update into an entry
type Patch[E any] interface {
	Apply(E) E
}

// UpdateEntry merges patch into the entry at index
func UpdateEntry[E Entry[E], P Patch[E]](entries []E, index int, patch P) []E {
	out := clone(entries)
	if !inRange(index, len(out)) {
		return out
	}
	patched := patch.Apply(out[index])
	out[index] = patched.WithBullets(append([]string{}, patched.BulletList()...))
	return out
}

// UpdateBullet replaces one bullet of the entry at index
func UpdateBullet[E Entry[E]](entries []E, index, bullet int, value string) []E {
	return withBullets(entries, index, func(bullets []string) []string {
		if !inRange(bullet, len(bullets)) {
			return bullets
		}
		bullets[bullet] = value
		return bullets
	})
}

// AddBullet appends an empty bullet to the entry at index
func AddBullet[E Entry[E]](entries []E, index int) []E {
	return withBullets(entries, index, func(bullets []string) []string {
		return append(bullets, "")
	})
}

// RemoveBullet drops one bullet of the entry at index, shifting the rest left
func RemoveBullet[E Entry[E]](entries []E, index, bullet int) []E {
	return withBullets(entries, index, func(bullets []string) []string {
		if !inRange(bullet, len(bullets)) {
			return bullets
		}
		return append(bullets[:bullet], bullets[bullet+1:]...)
	})
}

// AddEntry appends a blank entry holding a single empty bullet
func AddEntry[E Entry[E]](entries []E) []E {
	var blank E
	return append(clone(entries), blank.WithBullets([]string{""}))
}

// RemoveEntry drops the entry at index, shifting the rest left
func RemoveEntry[E Entry[E]](entries []E, index int) []E {
	out := clone(entries)
	if !inRange(index, len(out)) {
		return out
	}
	return append(out[:index], out[index+1:]...)
}

// withBullets hands fn a private copy of the entry's bullets.
func withBullets[E Entry[E]](entries []E, index int, fn func([]string) []string) []E {
	out := clone(entries)
	if !inRange(index, len(out)) {
		return out
	}
	bullets := out[index].BulletList()
	out[index] = out[index].WithBullets(append([]string{}, fn(bullets)...))
	return out
}

// clone copies entries and gives each one its own non-nil bullet slice.
func clone[E Entry[E]](entries []E) []E {
	out := make([]E, len(entries))
	for i, e := range entries {
		out[i] = e.WithBullets(append([]string{}, e.BulletList()...))
	}
	return out
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}

// Compile-time checks that both section types satisfy Entry.
var (
	_ Entry[types.ExperienceEntry] = types.ExperienceEntry{}
	_ Entry[types.EducationEntry]  = types.EducationEntry{}
)
