package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"studio_backend/internal/quotations/repository"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

// GeneralItemsName names a component whose type has no name.
const GeneralItemsName = "General Items"

// HierarchyWriter inserts destination rows.
type HierarchyWriter interface {
	CreateSpace(ctx context.Context, s repository.NewSpace) (uuid.UUID, error)
	CreateComponent(ctx context.Context, c repository.NewComponent) (uuid.UUID, error)
	CreateLineItem(ctx context.Context, li repository.NewLineItem) (uuid.UUID, error)
}

// Summary counts the rows a materialization created.
type Summary struct {
	SpacesCreated     int
	ComponentsCreated int
	LineItemsCreated  int
}

// Total returns the number of rows created across all levels.
func (s Summary) Total() int {
	return s.SpacesCreated + s.ComponentsCreated + s.LineItemsCreated
}

// Materializer copies a space/component/line-item hierarchy into a
// quotation. The same algorithm serves template instantiation and baseline
// copies; only the source rows differ.
type Materializer struct {
	writer HierarchyWriter
	log    *logger.Logger
}

func NewMaterializer(writer HierarchyWriter, log *logger.Logger) *Materializer {
	return &Materializer{writer: writer, log: log}
}

type groupKey struct {
	space         uuid.UUID
	componentType uuid.UUID
}

type entryGroup struct {
	key     groupKey
	first   repository.SourceEntry
	entries []repository.SourceEntry
}

// Materialize creates the destination rows and returns what was created. A
// failed row insert is logged and skipped; it never aborts the copy.
func (m *Materializer) Materialize(ctx context.Context, orgID uuid.UUID, spaces []repository.SourceSpace, entries []repository.SourceEntry, destinationQuotationID uuid.UUID) Summary {
	log := m.log.WithContext(ctx)
	var summary Summary

	orderedSpaces := slices.Clone(spaces)
	slices.SortStableFunc(orderedSpaces, func(a, b repository.SourceSpace) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})

	spaceMap := make(map[uuid.UUID]uuid.UUID, len(orderedSpaces))
	spaceOrder := make(map[uuid.UUID]int, len(orderedSpaces))
	for i, src := range orderedSpaces {
		spaceOrder[src.ID] = i
		destID, err := m.writer.CreateSpace(ctx, repository.NewSpace{
			OrganizationID: orgID,
			QuotationID:    destinationQuotationID,
			SpaceTypeID:    src.SpaceTypeID,
			Name:           spaceName(src),
			DisplayOrder:   src.DisplayOrder,
		})
		if err != nil {
			log.Warn("materialize: space skipped", "sourceSpaceId", src.ID, "quotationId", destinationQuotationID, "error", err)
			continue
		}
		spaceMap[src.ID] = destID
		summary.SpacesCreated++
	}

	for _, group := range groupEntries(sortEntries(entries, spaceOrder)) {
		destSpaceID, hasSpace := spaceMap[group.key.space]

		var componentID *uuid.UUID
		if hasSpace && group.first.ComponentTypeID != nil {
			name := strings.TrimSpace(group.first.ComponentName)
			if name == "" {
				name = GeneralItemsName
			}
			id, err := m.writer.CreateComponent(ctx, repository.NewComponent{
				OrganizationID:     orgID,
				QuotationID:        destinationQuotationID,
				SpaceID:            destSpaceID,
				ComponentTypeID:    *group.first.ComponentTypeID,
				ComponentVariantID: group.first.ComponentVariantID,
				Name:               name,
				DisplayOrder:       group.first.DisplayOrder,
			})
			if err != nil {
				log.Warn("materialize: component skipped", "componentTypeId", *group.first.ComponentTypeID, "quotationId", destinationQuotationID, "error", err)
			} else {
				componentID = &id
				summary.ComponentsCreated++
			}
		}

		var spaceRef *uuid.UUID
		if hasSpace {
			spaceRef = &destSpaceID
		}
		for _, entry := range group.entries {
			rate := entry.DefaultRate
			if entry.RateOverride.Valid {
				rate = entry.RateOverride.Decimal
			}
			if _, err := m.writer.CreateLineItem(ctx, repository.NewLineItem{
				OrganizationID: orgID,
				QuotationID:    destinationQuotationID,
				SpaceID:        spaceRef,
				ComponentID:    componentID,
				CostItemID:     entry.CostItemID,
				Name:           entry.Name,
				UnitCode:       entry.UnitCode,
				Rate:           rate,
				DisplayOrder:   entry.DisplayOrder,
			}); err != nil {
				log.Warn("materialize: line item skipped", "sourceEntryId", entry.ID, "quotationId", destinationQuotationID, "error", err)
				continue
			}
			summary.LineItemsCreated++
		}
	}

	log.Info("quotation materialized",
		"quotationId", destinationQuotationID,
		"spaces", summary.SpacesCreated,
		"components", summary.ComponentsCreated,
		"lineItems", summary.LineItemsCreated,
	)
	return summary
}

func spaceName(src repository.SourceSpace) string {
	if src.OverrideName != nil && strings.TrimSpace(*src.OverrideName) != "" {
		return strings.TrimSpace(*src.OverrideName)
	}
	return src.SpaceTypeName
}

// sortEntries orders entries by source space order, then component type,
// then display order. Entries without a known space sort last, as do
// entries without a component type within a space.
func sortEntries(entries []repository.SourceEntry, spaceOrder map[uuid.UUID]int) []repository.SourceEntry {
	ordered := slices.Clone(entries)
	rank := func(e repository.SourceEntry) int {
		if e.SourceSpaceID == nil {
			return len(spaceOrder)
		}
		if i, ok := spaceOrder[*e.SourceSpaceID]; ok {
			return i
		}
		return len(spaceOrder)
	}
	typeKey := func(e repository.SourceEntry) string {
		if e.ComponentTypeID == nil {
			return "~"
		}
		return e.ComponentTypeID.String()
	}
	slices.SortStableFunc(ordered, func(a, b repository.SourceEntry) int {
		return cmp.Or(
			cmp.Compare(rank(a), rank(b)),
			cmp.Compare(typeKey(a), typeKey(b)),
			cmp.Compare(a.DisplayOrder, b.DisplayOrder),
		)
	})
	return ordered
}

// groupEntries buckets entries by (space, component type) in first-seen
// order. uuid.Nil stands for "none" on either side.
func groupEntries(entries []repository.SourceEntry) []*entryGroup {
	groups := make([]*entryGroup, 0)
	index := make(map[groupKey]*entryGroup)
	for _, e := range entries {
		key := groupKey{}
		if e.SourceSpaceID != nil {
			key.space = *e.SourceSpaceID
		}
		if e.ComponentTypeID != nil {
			key.componentType = *e.ComponentTypeID
		}
		g, ok := index[key]
		if !ok {
			g = &entryGroup{key: key, first: e}
			index[key] = g
			groups = append(groups, g)
		}
		g.entries = append(g.entries, e)
	}
	return groups
}
