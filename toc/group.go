// Package toc builds interactive table of contents and go-to controls for a
// loaded page.
package toc

import (
	"slices"

	"itoc/page"
)

// EntryKind distinguishes top level list entries.
type EntryKind int

const (
	// EntryTopic wraps single primary heading.
	EntryTopic EntryKind = iota
	// EntrySubtopics is a run of consecutive secondary headings.
	EntrySubtopics
)

func (k EntryKind) String() string {
	if k == EntrySubtopics {
		return "subtopics"
	}
	return "topic"
}

// Entry is an element of two level table of contents.
type Entry struct {
	Kind     EntryKind
	Headings []*page.Heading
	// Dangling is set for subtopics which precede any topic, so they have
	// no parent in the list.
	Dangling bool
}

// Group arranges headings into topics and subtopic groups in a single pass.
// Every primary heading becomes a topic, every maximal run of secondary
// headings becomes one group placed right after the topic it follows.
// Secondary headings found before the first primary one form a dangling
// group. Order is preserved, nothing is dropped or repeated.
func Group(headings []*page.Heading) []Entry {
	var (
		entries []Entry
		topics  int
	)
	for i := 0; i < len(headings); {
		if headings[i].Level == page.LevelPrimary {
			entries = append(entries, Entry{Kind: EntryTopic, Headings: []*page.Heading{headings[i]}})
			topics++
			i++
			continue
		}
		start := i
		for i < len(headings) && headings[i].Level == page.LevelSecondary {
			i++
		}
		entries = append(entries, Entry{
			Kind:     EntrySubtopics,
			Headings: slices.Clone(headings[start:i]),
			Dangling: topics == 0,
		})
	}
	return entries
}
