package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nikbrunner/bmsync/internal/model"
	"github.com/nikbrunner/bmsync/internal/storage"
)

func millis(ms int64) *int64 { return &ms }

func sampleTree() []model.Node {
	return []model.Node{
		{Kind: model.KindFolder, ID: "f1", Title: "Development", Children: []model.Node{
			{Kind: model.KindBookmark, ID: "b1", Title: "Test", URL: "https://example.com", DateAdded: millis(1700000000000)},
			{Kind: model.KindFolder, ID: "f2", Title: "Empty", Hidden: true, Children: []model.Node{}},
		}},
		{Kind: model.KindBookmark, Title: "No ID", URL: "https://no-id.example", Hidden: true},
	}
}

func TestJSONStorage_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "bookmarks.json")

	s := storage.NewJSONStorage(path)
	if err := s.Save(sampleTree()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("storage file was not created")
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if !reflect.DeepEqual(loaded, sampleTree()) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, sampleTree())
	}
}

func TestJSONStorage_LoadNonexistent(t *testing.T) {
	s := storage.NewJSONStorage(filepath.Join(t.TempDir(), "nonexistent.json"))
	tree, err := s.Load()
	if err != nil {
		t.Fatalf("expected no error for nonexistent file, got %v", err)
	}
	if tree == nil || len(tree) != 0 {
		t.Errorf("expected empty tree, got %+v", tree)
	}
}

func TestJSONStorage_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[{"title":"neither"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := storage.NewJSONStorage(path).Load(); err == nil {
		t.Error("expected error for malformed node")
	}
}

func TestJSONStorage_SaveRejectsInvalidTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	bad := []model.Node{{Kind: model.KindFolder, Title: "F", URL: "https://oops"}}

	if err := storage.NewJSONStorage(path).Save(bad); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid tree should not be written")
	}
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "bookmarks.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	if err := s.Save(sampleTree()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if !reflect.DeepEqual(loaded, sampleTree()) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, sampleTree())
	}
}

func TestSQLiteStorage_SaveReplacesPreviousTree(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "bookmarks.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	if err := s.Save(sampleTree()); err != nil {
		t.Fatal(err)
	}
	replacement := []model.Node{{Kind: model.KindBookmark, ID: "only", Title: "Only", URL: "https://only"}}
	if err := s.Save(replacement); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, replacement) {
		t.Errorf("expected only the replacement tree, got %+v", loaded)
	}
}

func TestSQLiteStorage_PreservesOrder(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "bookmarks.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var tree []model.Node
	for _, title := range []string{"z", "a", "m", "b"} {
		tree = append(tree, model.Node{Kind: model.KindBookmark, Title: title, URL: "https://" + title})
	}
	if err := s.Save(tree); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	for i, n := range loaded {
		if n.Title != tree[i].Title {
			t.Errorf("position %d: expected %q, got %q", i, tree[i].Title, n.Title)
		}
	}
}

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	tree, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(tree) != 0 {
		t.Errorf("expected empty tree, got %d nodes", len(tree))
	}
}

func TestSQLiteStorage_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.db")

	s, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(sampleTree()); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version != 2 {
		t.Errorf("expected schema version 2, got %d", version)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, sampleTree()) {
		t.Error("tree did not survive reopen")
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	sqlite, err := storage.NewSQLiteStorage(filepath.Join(dir, "bookmarks.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sqlite.Close()

	backends := map[string]storage.Settings{
		"sqlite": sqlite,
		"json":   storage.NewJSONSettings(filepath.Join(dir, "settings.json")),
	}

	for name, kv := range backends {
		t.Run(name, func(t *testing.T) {
			got, err := kv.Get(ctx, "giteeToken")
			if err != nil {
				t.Fatal(err)
			}
			if got["giteeToken"] != "" {
				t.Errorf("expected empty value for unset key, got %q", got["giteeToken"])
			}

			if err := kv.Set(ctx, map[string]string{"giteeToken": "t1", "giteeOwner": "me"}); err != nil {
				t.Fatal(err)
			}
			if err := kv.Set(ctx, map[string]string{"giteeToken": "t2"}); err != nil {
				t.Fatal(err)
			}

			got, err = kv.Get(ctx, "giteeToken", "giteeOwner", "giteeRepo")
			if err != nil {
				t.Fatal(err)
			}
			want := map[string]string{"giteeToken": "t2", "giteeOwner": "me", "giteeRepo": ""}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("expected %v, got %v", want, got)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	for _, kind := range []string{"sqlite", "json"} {
		st, kv, closeFn, err := storage.Open(kind, dir)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if st == nil || kv == nil {
			t.Fatalf("%s: expected storage and settings", kind)
		}
		if err := closeFn(); err != nil {
			t.Errorf("%s: close: %v", kind, err)
		}
	}

	if _, _, _, err := storage.Open("mongo", dir); err == nil {
		t.Error("expected error for unknown storage kind")
	}
}
