package settings_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"vinscan/internal/kvstore"
	"vinscan/internal/location"
	"vinscan/internal/logging"
	"vinscan/internal/settings"
	"vinscan/internal/testsupport"
)

func openKV(t *testing.T) *kvstore.Store {
	t.Helper()
	return testsupport.MustOpenStore(t, testsupport.NewConfig(t))
}

func TestLoadDefaultsOnFirstRun(t *testing.T) {
	store, err := settings.Load(context.Background(), openKV(t), logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := store.Get()
	if got.CompanyName != settings.DefaultCompany {
		t.Fatalf("unexpected company %q", got.CompanyName)
	}
	if got.AllowedLocations == nil || len(got.AllowedLocations) != 0 {
		t.Fatalf("expected empty allow-list, got %#v", got.AllowedLocations)
	}
	if got.StrictLocationMode {
		t.Fatal("strict mode should default off")
	}
}

func TestMutationsPersist(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	store, err := settings.Load(ctx, kv, logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := store.SetCompany(ctx, "  garage   du centre "); err != nil {
		t.Fatalf("SetCompany: %v", err)
	}
	for _, code := range []string{"a1", "B2", "A1", "zone-north-parking-7"} {
		if _, err := store.AddLocation(ctx, code); err != nil {
			t.Fatalf("AddLocation(%q): %v", code, err)
		}
	}
	if removed, err := store.RemoveLocation(ctx, "b2"); err != nil || !removed {
		t.Fatalf("RemoveLocation: removed=%v err=%v", removed, err)
	}
	if err := store.SetStrictLocationMode(ctx, true); err != nil {
		t.Fatalf("SetStrictLocationMode: %v", err)
	}

	reloaded, err := settings.Load(ctx, kv, logging.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.Get()
	if got.CompanyName != "GARAGE DU CENTRE" {
		t.Fatalf("unexpected company %q", got.CompanyName)
	}
	want := []string{"A1", "ZONE-NORTH-PARK"}
	if !reflect.DeepEqual(got.AllowedLocations, want) {
		t.Fatalf("allow-list = %v, want %v", got.AllowedLocations, want)
	}
	if !got.StrictLocationMode {
		t.Fatal("expected strict mode to persist")
	}
}

func TestRejectsEmptyValues(t *testing.T) {
	ctx := context.Background()
	store, err := settings.Load(ctx, openKV(t), logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := store.SetCompany(ctx, "   "); !errors.Is(err, settings.ErrEmptyCompany) {
		t.Fatalf("expected ErrEmptyCompany, got %v", err)
	}
	if _, err := store.AddLocation(ctx, " "); !errors.Is(err, location.ErrEmptyLocation) {
		t.Fatalf("expected ErrEmptyLocation, got %v", err)
	}
	if added, err := store.AddLocation(ctx, "A1"); err != nil || !added {
		t.Fatalf("AddLocation: added=%v err=%v", added, err)
	}
	if added, err := store.AddLocation(ctx, "a1"); err != nil || added {
		t.Fatalf("duplicate should be ignored: added=%v err=%v", added, err)
	}
	if removed, err := store.RemoveLocation(ctx, "Z9"); err != nil || removed {
		t.Fatalf("unknown code removal: removed=%v err=%v", removed, err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store, err := settings.Load(ctx, openKV(t), logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := store.AddLocation(ctx, "A1"); err != nil {
		t.Fatalf("AddLocation: %v", err)
	}
	snapshot := store.Get()
	snapshot.AllowedLocations[0] = "MUTATED"
	if store.AllowedLocations()[0] != "A1" {
		t.Fatal("Get must not expose internal slice")
	}
}
