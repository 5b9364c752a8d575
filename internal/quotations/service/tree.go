package service

import (
	"context"

	"studio_backend/internal/quotations/repository"

	"github.com/google/uuid"
)

// Tree is a quotation with its hierarchy nested.
type Tree struct {
	Quotation  repository.Quotation
	Spaces     []SpaceNode
	Unassigned []repository.LineItem
}

type SpaceNode struct {
	Space      repository.Space
	Components []ComponentNode
	LineItems  []repository.LineItem
}

type ComponentNode struct {
	Component repository.Component
	LineItems []repository.LineItem
}

// GetTree loads a quotation and nests spaces, components and line items.
// Line items with neither a known space nor a known component end up in
// Unassigned.
func (s *Service) GetTree(ctx context.Context, tenantID, id uuid.UUID) (Tree, error) {
	quotation, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return Tree{}, err
	}
	spaces, err := s.repo.ListSpaces(ctx, id, tenantID)
	if err != nil {
		return Tree{}, err
	}
	components, err := s.repo.ListComponents(ctx, id, tenantID)
	if err != nil {
		return Tree{}, err
	}
	items, err := s.repo.ListLineItems(ctx, id, tenantID)
	if err != nil {
		return Tree{}, err
	}
	return buildTree(quotation, spaces, components, items), nil
}

func buildTree(q repository.Quotation, spaces []repository.Space, components []repository.Component, items []repository.LineItem) Tree {
	tree := Tree{
		Quotation:  q,
		Spaces:     make([]SpaceNode, len(spaces)),
		Unassigned: []repository.LineItem{},
	}
	spaceIdx := make(map[uuid.UUID]int, len(spaces))
	for i, sp := range spaces {
		tree.Spaces[i] = SpaceNode{Space: sp, Components: []ComponentNode{}, LineItems: []repository.LineItem{}}
		spaceIdx[sp.ID] = i
	}

	type compRef struct{ space, comp int }
	compIdx := make(map[uuid.UUID]compRef, len(components))
	for _, c := range components {
		si, ok := spaceIdx[c.SpaceID]
		if !ok {
			continue
		}
		node := &tree.Spaces[si]
		node.Components = append(node.Components, ComponentNode{Component: c, LineItems: []repository.LineItem{}})
		compIdx[c.ID] = compRef{space: si, comp: len(node.Components) - 1}
	}

	for _, li := range items {
		if li.ComponentID != nil {
			if ref, ok := compIdx[*li.ComponentID]; ok {
				comp := &tree.Spaces[ref.space].Components[ref.comp]
				comp.LineItems = append(comp.LineItems, li)
				continue
			}
		}
		if li.SpaceID != nil {
			if si, ok := spaceIdx[*li.SpaceID]; ok {
				tree.Spaces[si].LineItems = append(tree.Spaces[si].LineItems, li)
				continue
			}
		}
		tree.Unassigned = append(tree.Unassigned, li)
	}
	return tree
}
