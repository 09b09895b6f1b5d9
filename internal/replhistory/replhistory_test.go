package replhistory

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.sqlite")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Append("run-1", "println(1);", "1\n", 0, 0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("run-1", "println(2);", "2\n", 1, 128); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Input != "println(1);" || entries[1].Input != "println(2);" {
		t.Errorf("entries out of order: %#v", entries)
	}
	if entries[1].GCCycles != 1 || entries[1].GCBytesLive != 128 {
		t.Errorf("got gc stats %#v, want cycles=1 bytesLive=128", entries[1])
	}
}

func TestRecentRespectsLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		if err := s.Append("run-1", "x;", "", 0, 0); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	entries, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestSearchMatchesSubstring(t *testing.T) {
	s := openTestStore(t)
	if err := s.Append("run-1", `println("hello world");`, "hello world\n", 0, 0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("run-1", `println(42);`, "42\n", 0, 0); err != nil {
		t.Fatalf("Append: %v", err)
	}

	results, err := s.Search("hello")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Input != `println("hello world");` {
		t.Errorf("got %#v", results)
	}
}
