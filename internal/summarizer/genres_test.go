package summarizer

import (
	"reflect"
	"testing"
)

func TestCount(t *testing.T) {
	got := NewGenreSummarizer().Count([]string{
		"Action, Comedy",
		"comedy, Drama, Comedy",
		"Drama, ,Action",
		"Comedy",
	})
	want := []GenreCount{
		{"Comedy", 3},
		{"Action", 2},
		{"Drama", 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Count = %+v, want %+v", got, want)
	}
}

func TestSummarize(t *testing.T) {
	s := NewGenreSummarizer()
	got := s.Summarize([]string{"Action, Comedy", "Comedy", "Drama"}, 2)
	want := "3 titles · top genres: Comedy (2), Action (1)"
	if got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
	if got := s.Summarize(nil, 3); got != "0 titles" {
		t.Errorf("empty Summarize = %q", got)
	}
}
