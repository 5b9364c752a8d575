package service

import (
	"context"
	"testing"

	"studio_backend/internal/quotations/repository"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type sourceFixture struct {
	spaceA, spaceB uuid.UUID
	typeX          uuid.UUID
	spaces         []repository.SourceSpace
	entries        []repository.SourceEntry
}

// twoSpacesFiveEntries: three entries share (spaceA, typeX), two have no
// component type.
func twoSpacesFiveEntries() sourceFixture {
	f := sourceFixture{spaceA: uuid.New(), spaceB: uuid.New(), typeX: uuid.New()}
	f.spaces = []repository.SourceSpace{
		{ID: f.spaceB, SpaceTypeName: "Bedroom", DisplayOrder: 2},
		{ID: f.spaceA, SpaceTypeName: "Kitchen", OverrideName: ptr("Main Kitchen"), DisplayOrder: 1},
	}
	entry := func(name string, space uuid.UUID, compType *uuid.UUID, order int) repository.SourceEntry {
		return repository.SourceEntry{
			ID:              uuid.New(),
			SourceSpaceID:   &space,
			ComponentTypeID: compType,
			ComponentName:   "Base Cabinets",
			CostItemID:      ptr(uuid.New()),
			Name:            name,
			UnitCode:        "sqft",
			DefaultRate:     decimal.NewFromInt(100),
			DisplayOrder:    order,
		}
	}
	f.entries = []repository.SourceEntry{
		entry("Carcass", f.spaceA, &f.typeX, 1),
		entry("Shutters", f.spaceA, &f.typeX, 2),
		entry("Hardware", f.spaceA, &f.typeX, 3),
		entry("Painting", f.spaceA, nil, 4),
		entry("Flooring", f.spaceB, nil, 1),
	}
	return f
}

func TestMaterializeGroupsEntriesByComponentType(t *testing.T) {
	fx := twoSpacesFiveEntries()
	store := newFakeStore()
	m := NewMaterializer(store, logger.Nop())

	summary := m.Materialize(context.Background(), uuid.New(), fx.spaces, fx.entries, uuid.New())

	if summary.SpacesCreated != 2 || summary.ComponentsCreated != 1 || summary.LineItemsCreated != 5 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(store.components) != 1 || store.components[0].ComponentTypeID != fx.typeX {
		t.Fatalf("expected one component of typeX, got %+v", store.components)
	}

	withoutComponent := 0
	for _, li := range store.lineItems {
		if li.SpaceID == nil {
			t.Fatalf("line item %q lost its space", li.Name)
		}
		if li.ComponentID == nil {
			withoutComponent++
		}
	}
	if withoutComponent != 2 {
		t.Fatalf("expected 2 line items without component, got %d", withoutComponent)
	}
}

func TestMaterializeOrdersSpacesAndUsesOverrideName(t *testing.T) {
	fx := twoSpacesFiveEntries()
	store := newFakeStore()

	NewMaterializer(store, logger.Nop()).Materialize(context.Background(), uuid.New(), fx.spaces, fx.entries, uuid.New())

	if len(store.spaces) != 2 {
		t.Fatalf("expected 2 spaces, got %d", len(store.spaces))
	}
	if store.spaces[0].Name != "Main Kitchen" || store.spaces[1].Name != "Bedroom" {
		t.Fatalf("unexpected space order/names: %q, %q", store.spaces[0].Name, store.spaces[1].Name)
	}
}

func TestMaterializeContinuesAfterRowFailure(t *testing.T) {
	fx := twoSpacesFiveEntries()
	store := newFakeStore()
	store.failLineItems["Shutters"] = true
	store.failSpaces["Bedroom"] = true

	summary := NewMaterializer(store, logger.Nop()).Materialize(context.Background(), uuid.New(), fx.spaces, fx.entries, uuid.New())

	if summary.SpacesCreated != 1 {
		t.Fatalf("expected 1 space, got %d", summary.SpacesCreated)
	}
	if summary.LineItemsCreated != 4 {
		t.Fatalf("expected 4 line items, got %d", summary.LineItemsCreated)
	}
	for _, li := range store.lineItems {
		if li.Name == "Flooring" && li.SpaceID != nil {
			t.Fatal("line item of a failed space must have no space")
		}
	}
}

func TestMaterializeComponentFailureLeavesItemsUngrouped(t *testing.T) {
	fx := twoSpacesFiveEntries()
	store := newFakeStore()
	store.failComponents = true

	summary := NewMaterializer(store, logger.Nop()).Materialize(context.Background(), uuid.New(), fx.spaces, fx.entries, uuid.New())

	if summary.ComponentsCreated != 0 || summary.LineItemsCreated != 5 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	for _, li := range store.lineItems {
		if li.ComponentID != nil {
			t.Fatalf("line item %q should have no component", li.Name)
		}
	}
}

func TestMaterializeRateOverrideWins(t *testing.T) {
	space := uuid.New()
	store := newFakeStore()
	entries := []repository.SourceEntry{
		{ID: uuid.New(), SourceSpaceID: &space, Name: "Default", DefaultRate: decimal.NewFromInt(50)},
		{
			ID:            uuid.New(),
			SourceSpaceID: &space,
			Name:          "Override",
			DefaultRate:   decimal.NewFromInt(50),
			RateOverride:  decimal.NewNullDecimal(decimal.RequireFromString("72.5")),
			DisplayOrder:  1,
		},
	}
	spaces := []repository.SourceSpace{{ID: space, SpaceTypeName: "Hall"}}

	NewMaterializer(store, logger.Nop()).Materialize(context.Background(), uuid.New(), spaces, entries, uuid.New())

	rates := map[string]string{}
	for _, li := range store.lineItems {
		rates[li.Name] = li.Rate.String()
	}
	if rates["Default"] != "50" || rates["Override"] != "72.5" {
		t.Fatalf("unexpected rates %v", rates)
	}
}

func TestMaterializeNamesUnnamedComponentGeneralItems(t *testing.T) {
	space := uuid.New()
	compType := uuid.New()
	store := newFakeStore()
	entries := []repository.SourceEntry{
		{ID: uuid.New(), SourceSpaceID: &space, ComponentTypeID: &compType, ComponentName: "  ", Name: "Misc"},
	}
	spaces := []repository.SourceSpace{{ID: space, SpaceTypeName: "Hall"}}

	NewMaterializer(store, logger.Nop()).Materialize(context.Background(), uuid.New(), spaces, entries, uuid.New())

	if len(store.components) != 1 || store.components[0].Name != GeneralItemsName {
		t.Fatalf("expected %q component, got %+v", GeneralItemsName, store.components)
	}
}

func TestMaterializeEntryWithoutSpaceHasNoComponent(t *testing.T) {
	compType := uuid.New()
	store := newFakeStore()
	entries := []repository.SourceEntry{
		{ID: uuid.New(), ComponentTypeID: &compType, ComponentName: "Loose", Name: "Delivery"},
	}

	summary := NewMaterializer(store, logger.Nop()).Materialize(context.Background(), uuid.New(), nil, entries, uuid.New())

	if summary.ComponentsCreated != 0 || summary.LineItemsCreated != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if store.lineItems[0].SpaceID != nil || store.lineItems[0].ComponentID != nil {
		t.Fatal("expected line item without space and component")
	}
}
