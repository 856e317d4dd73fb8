package toc

import (
	"testing"

	"itoc/page"
)

func headings(levels ...page.Level) []*page.Heading {
	out := make([]*page.Heading, len(levels))
	for i, l := range levels {
		out[i] = &page.Heading{Level: l, Position: float64(i * 100)}
	}
	return out
}

func TestGroup(t *testing.T) {
	const (
		P = page.LevelPrimary
		S = page.LevelSecondary
	)
	tests := []struct {
		name   string
		levels []page.Level
		// expected kinds and sizes of entries
		kinds    []EntryKind
		sizes    []int
		dangling []bool
	}{
		{
			name: "empty",
		},
		{
			name:     "single topic",
			levels:   []page.Level{P},
			kinds:    []EntryKind{EntryTopic},
			sizes:    []int{1},
			dangling: []bool{false},
		},
		{
			name:     "balanced",
			levels:   []page.Level{P, S, S, P, S},
			kinds:    []EntryKind{EntryTopic, EntrySubtopics, EntryTopic, EntrySubtopics},
			sizes:    []int{1, 2, 1, 1},
			dangling: []bool{false, false, false, false},
		},
		{
			name:     "leading secondary",
			levels:   []page.Level{S, S, P, S},
			kinds:    []EntryKind{EntrySubtopics, EntryTopic, EntrySubtopics},
			sizes:    []int{2, 1, 1},
			dangling: []bool{true, false, false},
		},
		{
			name:     "only secondary",
			levels:   []page.Level{S, S, S},
			kinds:    []EntryKind{EntrySubtopics},
			sizes:    []int{3},
			dangling: []bool{true},
		},
		{
			name:     "consecutive topics",
			levels:   []page.Level{P, P, P},
			kinds:    []EntryKind{EntryTopic, EntryTopic, EntryTopic},
			sizes:    []int{1, 1, 1},
			dangling: []bool{false, false, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := headings(tt.levels...)
			entries := Group(in)
			if len(entries) != len(tt.kinds) {
				t.Fatalf("got %d entries, want %d", len(entries), len(tt.kinds))
			}

			var flat []*page.Heading
			for i, e := range entries {
				if e.Kind != tt.kinds[i] {
					t.Errorf("entry %d kind = %v, want %v", i, e.Kind, tt.kinds[i])
				}
				if len(e.Headings) != tt.sizes[i] {
					t.Errorf("entry %d size = %d, want %d", i, len(e.Headings), tt.sizes[i])
				}
				if e.Dangling != tt.dangling[i] {
					t.Errorf("entry %d dangling = %v, want %v", i, e.Dangling, tt.dangling[i])
				}
				flat = append(flat, e.Headings...)
			}

			// every heading exactly once, in document order
			if len(flat) != len(in) {
				t.Fatalf("flattened %d headings, want %d", len(flat), len(in))
			}
			for i := range in {
				if flat[i] != in[i] {
					t.Errorf("heading %d out of order", i)
				}
			}
		})
	}
}

func TestEntryKind_String(t *testing.T) {
	if EntryTopic.String() != "topic" || EntrySubtopics.String() != "subtopics" {
		t.Errorf("unexpected names %q %q", EntryTopic, EntrySubtopics)
	}
}
