package sqlitedict

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestDict(t *testing.T) *Dict {
	t.Helper()
	d, err := Open(context.Background(), filepath.Join(t.TempDir(), "dict.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestUpsertAndLookup(t *testing.T) {
	ctx := context.Background()
	d := openTestDict(t)

	if err := d.Upsert(ctx, "Night", []string{"N", "AY1", "T"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	phs, ok := d.Lookup("night")
	if !ok {
		t.Fatal("Lookup missed after upsert")
	}
	if !reflect.DeepEqual(phs, []string{"N", "AY1", "T"}) {
		t.Errorf("Lookup = %v", phs)
	}
}

func TestUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	d := openTestDict(t)

	if err := d.Upsert(ctx, "moon", []string{"M", "UW0", "N"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Upsert(ctx, "moon", []string{"M", "UW1", "N"}); err != nil {
		t.Fatal(err)
	}

	phs, ok, err := d.LookupContext(ctx, "moon")
	if err != nil || !ok {
		t.Fatalf("LookupContext = %v, %v, %v", phs, ok, err)
	}
	if phs[1] != "UW1" {
		t.Errorf("Upsert should replace, got %v", phs)
	}

	n, err := d.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v, want 1", n, err)
	}
}

func TestLookupMiss(t *testing.T) {
	d := openTestDict(t)
	if _, ok := d.Lookup("unknown"); ok {
		t.Error("Lookup on empty dictionary should miss")
	}
}

func TestUpsertIgnoresEmpty(t *testing.T) {
	ctx := context.Background()
	d := openTestDict(t)

	if err := d.Upsert(ctx, "", []string{"N"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Upsert(ctx, "word", nil); err != nil {
		t.Fatal(err)
	}

	n, err := d.Count(ctx)
	if err != nil || n != 0 {
		t.Errorf("Count = %d, %v, want 0", n, err)
	}
}
