package toc

import (
	"testing"

	"itoc/scroll"
)

func TestSummarizer(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		text  string
		want  string
	}{
		{"first sentence", 100, "Lorem ipsum dolor sit amet. Second sentence here.", "Lorem ipsum dolor sit amet."},
		{"single", 100, "Just words without end", "Just words without end"},
		{"whitespace collapsed", 100, "  spread\n\tover   lines.  Next.", "spread over lines."},
		{"empty", 100, "   ", ""},
		{"cut on word boundary", 20, "This sentence is quite long indeed and goes on.", "This sentence is…"},
		{"no limit", 0, "This sentence is quite long indeed and goes on.", "This sentence is quite long indeed and goes on."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSummarizer(tt.limit)
			if err != nil {
				t.Fatalf("NewSummarizer() error = %v", err)
			}
			if got := s.Summary(tt.text); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReady_Summaries(t *testing.T) {
	doc := loadPage(t, balancedPage)
	cfg := defaultDocumentConfig(t)
	cfg.TOC.SummaryLength = 40
	p := Ready(doc, estimator(doc), &scroll.Recorder{}, cfg, testLogger(t))
	if p.TOC == nil {
		t.Fatal("table of contents was not built")
	}

	tests := []struct {
		target string
		want   string
	}{
		{"intro", "Lorem ipsum dolor sit amet."},
		{"details", ""},
		{"summary", ""},
	}
	for _, tt := range tests {
		li := p.TOC.FindElement(".//li[@data-target='" + tt.target + "']")
		if li == nil {
			t.Fatalf("no item for %s", tt.target)
		}
		if got := li.SelectAttrValue("title", ""); got != tt.want {
			t.Errorf("%s title = %q, want %q", tt.target, got, tt.want)
		}
	}
}
