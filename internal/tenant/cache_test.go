package tenant

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockPool(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return db
}

func TestEngineCacheAddAndGet(t *testing.T) {
	c := newEngineCache(4)
	db := newMockPool(t)

	winner, kept, evicted := c.add("acme_co_db", db)
	if !kept || winner != db || evicted != nil {
		t.Fatalf("first add must keep the pool: kept=%v evicted=%v", kept, evicted)
	}

	got, ok := c.get("acme_co_db")
	if !ok || got != db {
		t.Fatal("expected cached pool back")
	}
	if _, ok := c.get("unknown_db"); ok {
		t.Fatal("unknown key must miss")
	}
}

func TestEngineCacheRacingAddKeepsFirst(t *testing.T) {
	c := newEngineCache(4)
	first := newMockPool(t)
	second := newMockPool(t)

	c.add("acme_co_db", first)
	winner, kept, _ := c.add("acme_co_db", second)
	if kept {
		t.Fatal("second add for the same key must not be kept")
	}
	if winner != first {
		t.Fatal("existing pool must win the race")
	}
	second.Close()
}

func TestEngineCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newEngineCache(2)
	a := newMockPool(t)
	b := newMockPool(t)
	d := newMockPool(t)

	c.add("a_db", a)
	c.add("b_db", b)

	// Touch a_db so b_db becomes the eviction candidate.
	c.get("a_db")

	_, _, evicted := c.add("d_db", d)
	if evicted != b {
		t.Fatal("expected least recently used pool to be evicted")
	}
	if _, ok := c.get("b_db"); ok {
		t.Fatal("evicted key must miss")
	}
	if _, ok := c.get("a_db"); !ok {
		t.Fatal("recently used key must stay")
	}
	if c.len() != 2 {
		t.Fatalf("expected 2 cached pools, got %d", c.len())
	}
}

func TestEngineCacheCloseAll(t *testing.T) {
	c := newEngineCache(4)
	c.add("a_db", newMockPool(t))
	c.add("b_db", newMockPool(t))

	c.closeAll()
	if c.len() != 0 {
		t.Fatalf("expected empty cache after closeAll, got %d", c.len())
	}
}

func TestDBNamePattern(t *testing.T) {
	valid := []string{"acme_co_db", "a", "x9_db", "invoicedb"}
	for _, name := range valid {
		if !dbNamePattern.MatchString(name) {
			t.Errorf("expected %q to be a valid db name", name)
		}
	}
	invalid := []string{"", "Acme_db", "1db", "acme-db", "acme db", "acme;drop"}
	for _, name := range invalid {
		if dbNamePattern.MatchString(name) {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}
