package memory

import (
	"context"
	"testing"

	"pocketbook/internal/chart"
	"pocketbook/internal/core"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil collection, got %#v", got)
	}

	in := []core.Transaction{{ID: 1, Amount: 10, Type: core.Expense, Category: "food", Date: core.NewDate(2024, 1, 2)}}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	in[0].Amount = 99 // caller mutation must not leak into the store

	got, _ = s.Load(ctx)
	if len(got) != 1 || got[0].Amount != 10 {
		t.Fatalf("unexpected load result: %#v", got)
	}
	got[0].Amount = 77
	again, _ := s.Load(ctx)
	if again[0].Amount != 10 {
		t.Fatalf("load must return a copy")
	}
	if s.Saves() != 1 {
		t.Fatalf("saves = %d, want 1", s.Saves())
	}
}

func TestThemeDefaultsToDark(t *testing.T) {
	ctx := context.Background()
	s := New()
	th, err := s.LoadTheme(ctx)
	if err != nil || th != chart.Dark {
		t.Fatalf("LoadTheme = %q, %v", th, err)
	}
	if err := s.SaveTheme(ctx, chart.Light); err != nil {
		t.Fatal(err)
	}
	if th, _ := s.LoadTheme(ctx); th != chart.Light {
		t.Fatalf("theme = %q, want light", th)
	}
}
