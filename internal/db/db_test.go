package db

import (
	"fmt"
	"testing"
	"time"
)

func openTestDB(t *testing.T) Options {
	t.Helper()
	return Options{
		Path:   fmt.Sprintf("file:db_test_%d?mode=memory&cache=shared", time.Now().UnixNano()),
		Silent: true,
	}
}

func TestOpenMigratesAllTables(t *testing.T) {
	gdb, err := Open(openTestDB(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for _, table := range []string{"users", "about", "projects", "experiences", "education", "skills", "certifications", "awards", "contacts"} {
		if !gdb.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Options{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
	if _, err := Open(Options{Driver: "postgres"}); err == nil {
		t.Fatalf("expected error when postgres url is missing")
	}
}

func TestUserEmailIsUnique(t *testing.T) {
	gdb, err := Open(openTestDB(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	now := time.Now().UTC()
	first := User{Base: Base{ID: "u1", CreatedAt: now, UpdatedAt: now}, Email: "a@example.com", Password: "x", Name: "A"}
	if err := gdb.Create(&first).Error; err != nil {
		t.Fatalf("create first: %v", err)
	}
	second := User{Base: Base{ID: "u2", CreatedAt: now, UpdatedAt: now}, Email: "a@example.com", Password: "y", Name: "B"}
	if err := gdb.Create(&second).Error; err == nil {
		t.Fatalf("expected unique violation on duplicate email")
	}
}

func TestStringListRoundTrip(t *testing.T) {
	gdb, err := Open(openTestDB(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	now := time.Now().UTC()
	project := Project{
		Base:         Base{ID: "p1", CreatedAt: now, UpdatedAt: now},
		Title:        "Site",
		Description:  "desc",
		Technologies: StringList{"Go", "React", "Postgres"},
	}
	if err := gdb.Create(&project).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	var loaded Project
	if err := gdb.First(&loaded, "id = ?", "p1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Technologies) != 3 || loaded.Technologies[1] != "React" {
		t.Fatalf("technologies not preserved in order: %v", loaded.Technologies)
	}
}

func TestStringListScanEdgeCases(t *testing.T) {
	var list StringList
	if err := list.Scan(nil); err != nil || list == nil || len(list) != 0 {
		t.Fatalf("nil should scan to empty list, got %v (%v)", list, err)
	}
	if err := list.Scan("null"); err != nil || len(list) != 0 {
		t.Fatalf("json null should scan to empty list, got %v (%v)", list, err)
	}
	if err := list.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported type")
	}

	raw, err := StringList(nil).MarshalJSON()
	if err != nil || string(raw) != "[]" {
		t.Fatalf("expected [] for nil list, got %s (%v)", raw, err)
	}
}
