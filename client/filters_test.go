package client

import (
	"testing"
	"time"
)

func TestFilterDefaultsInKey(t *testing.T) {
	f := NewPollFilters(nil)
	got := f.Key()
	want := QueryKey{
		Resource:  PollsResource,
		Page:      1,
		Limit:     10,
		SortBy:    "createdAt",
		SortOrder: "desc",
	}
	if got != want {
		t.Fatalf("Key = %+v, want %+v", got, want)
	}
}

func TestLimitChangeResetsPage(t *testing.T) {
	f := NewPollFilters(nil)
	f.SetPage(5)
	if f.Page() != 5 {
		t.Fatalf("Page = %d, want 5", f.Page())
	}
	f.SetLimit(25)
	if f.Page() != 1 {
		t.Fatalf("Page = %d after limit change, want 1", f.Page())
	}
	if got := f.Key(); got.Limit != 25 || got.Page != 1 {
		t.Fatalf("Key = %+v, want limit 25 page 1", got)
	}
}

func TestPageClampsToOne(t *testing.T) {
	f := NewPollFilters(nil)
	f.SetPage(0)
	if f.Page() != 1 {
		t.Fatalf("Page = %d, want 1", f.Page())
	}
	f.SetPage(-3)
	if f.Page() != 1 {
		t.Fatalf("Page = %d, want 1", f.Page())
	}
}

func TestSearchKeysOffCommittedValue(t *testing.T) {
	committed := make(chan string, 4)
	f := NewPollFilters(func(s string) { committed <- s })

	f.SetSearch("pa")
	f.SetSearch("park")

	if got := f.Search(); got != "park" {
		t.Fatalf("Search = %q, want park immediately", got)
	}
	if got := f.Key().Search; got != "" {
		t.Fatalf("Key().Search = %q before commit, want empty", got)
	}

	select {
	case s := <-committed:
		if s != "park" {
			t.Fatalf("committed %q, want park", s)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("search term never committed")
	}
	if got := f.Key().Search; got != "park" {
		t.Fatalf("Key().Search = %q after commit, want park", got)
	}
}

func TestSortOverrides(t *testing.T) {
	f := NewPollFilters(nil)
	f.SetSort("title", "asc")
	got := f.Key()
	if got.SortBy != "title" || got.SortOrder != "asc" {
		t.Fatalf("Key = %+v, want title/asc", got)
	}
}

func TestStatusFilterFlowsIntoKey(t *testing.T) {
	f := NewPollFilters(nil)
	f.SetStatus("active")
	if got := f.Key().Status; got != "active" {
		t.Fatalf("Key().Status = %q, want active", got)
	}
	f.SetStatus("")
	if got := f.Key().Status; got != "" {
		t.Fatalf("Key().Status = %q, want empty", got)
	}
}
