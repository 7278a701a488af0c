package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"wealth_planner/pkg/models"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load(context.Background(), "team", "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_SaveStripsLocalIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	items := []models.BalanceSheetItem{
		{
			ItemIdentity: models.ItemIdentity{ID: "srv-1", LocalID: "tmp-1"},
			Kind:         "isa",
			Description:  "Stocks ISA",
			Data:         models.CapitalData{InvestmentValue: models.Int64Ptr(2500)},
		},
		{
			ItemIdentity: models.ItemIdentity{LocalID: "tmp-2"},
			Kind:         "mortgage",
			Description:  "Mortgage",
			Data:         models.LoanData{Loan: models.Loan{Balance: models.Int64Ptr(180000)}},
		},
	}

	if err := s.Save(ctx, "team", "client", items); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if items[0].LocalID != "tmp-1" {
		t.Error("save must not mutate the caller's items")
	}

	var raw string
	if err := s.db.QueryRow(`SELECT items_json FROM balance_sheets WHERE team_id = 'team' AND client_id = 'client'`).Scan(&raw); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	for _, local := range []string{"tmp-1", "tmp-2", "localId"} {
		if strings.Contains(raw, local) {
			t.Errorf("stored document leaked %q: %s", local, raw)
		}
	}

	loaded, err := s.Load(ctx, "team", "client")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded))
	}
	if loaded[0].ID != "srv-1" || models.AuthoritativeValue(loaded[0]) != 2500 {
		t.Errorf("unexpected first item %+v", loaded[0])
	}
	if models.AuthoritativeValue(loaded[1]) != 180000 {
		t.Errorf("expected mortgage balance 180000, got %d", models.AuthoritativeValue(loaded[1]))
	}
	if loaded[1].LocalID == "" {
		t.Error("loaded items should be given fresh local ids")
	}
}

func TestSQLiteStore_AssignsServerIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	items := []models.BalanceSheetItem{
		{
			ItemIdentity: models.ItemIdentity{LocalID: "tmp-home"},
			Kind:         "main_residence",
			Data:         models.CapitalData{PropertyValue: models.Int64Ptr(300000)},
		},
		{
			ItemIdentity: models.ItemIdentity{ID: "srv-isa"},
			Kind:         "isa",
			Data:         models.CapitalData{InvestmentValue: models.Int64Ptr(100)},
		},
	}
	if err := s.Save(ctx, "team", "client", items); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if items[0].ID != "" {
		t.Error("save must not mutate the caller's items")
	}

	first, err := s.Load(ctx, "team", "client")
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	second, err := s.Load(ctx, "team", "client")
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}

	if first[0].ID == "" {
		t.Fatal("expected a server id to be assigned on save")
	}
	if first[0].ID != second[0].ID {
		t.Errorf("expected the same id on every load, got %q and %q", first[0].ID, second[0].ID)
	}
	if first[0].Key() != second[0].Key() {
		t.Errorf("expected a stable key, got %q and %q", first[0].Key(), second[0].Key())
	}
	if first[1].ID != "srv-isa" {
		t.Errorf("existing server id should be kept, got %q", first[1].ID)
	}
}

func TestAssignIDs(t *testing.T) {
	items := []models.BalanceSheetItem{
		{ItemIdentity: models.ItemIdentity{LocalID: "tmp-1"}, Kind: "isa"},
		{ItemIdentity: models.ItemIdentity{ID: "srv-2"}, Kind: "isa"},
	}

	got := AssignIDs(items)
	if got[0].ID == "" || got[0].LocalID != "tmp-1" {
		t.Errorf("expected new id with local id kept, got %+v", got[0].ItemIdentity)
	}
	if got[1].ID != "srv-2" {
		t.Errorf("expected existing id kept, got %q", got[1].ID)
	}
	if items[0].ID != "" {
		t.Error("AssignIDs must not mutate its input")
	}
	if again := AssignIDs(got); again[0].ID != got[0].ID {
		t.Error("AssignIDs should leave assigned ids alone")
	}
}

func TestSQLiteStore_Upsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []models.BalanceSheetItem{{Kind: "isa", Data: models.CapitalData{InvestmentValue: models.Int64Ptr(1)}}}
	second := []models.BalanceSheetItem{}

	if err := s.Save(ctx, "t", "c", first); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "t", "c", second); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load(ctx, "t", "c")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected second save to replace the first, got %d items", len(loaded))
	}
}

func TestSQLiteStore_RequiresKeys(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save(context.Background(), "", "c", nil); err == nil {
		t.Error("expected error for empty team id")
	}
	if _, err := s.Load(context.Background(), "t", " "); err == nil {
		t.Error("expected error for blank client id")
	}
}

func TestPostgresStore_RequiresPool(t *testing.T) {
	s := &PostgresStore{}
	if err := s.Save(context.Background(), "t", "c", nil); err == nil {
		t.Error("expected error without a pool")
	}
	if _, err := s.Load(context.Background(), "t", "c"); err == nil {
		t.Error("expected error without a pool")
	}
}
