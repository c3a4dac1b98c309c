package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"gnomeshade/api"
	"gnomeshade/internal/core"
)

func (s *Server) catalogRoutes() {
	categories := &resource[core.Category, api.CategoryCreation, api.Category]{
		entity:   core.EntityCategories,
		repo:     s.store.Categories,
		header:   func(c *core.Category) *core.Entity { return &c.Entity },
		validate: (*core.Category).Validate,
		build:    categoryFromAPI,
		toAPI:    categoryToAPI,
		check: func(ctx context.Context, c *core.Category, user *core.User) error {
			if c.CategoryID == nil {
				return nil
			}
			return s.checkCategoryParent(ctx, c, user)
		},
	}
	categories.register(s, api.V1+"/categories")

	products := &resource[core.Product, api.ProductCreation, api.Product]{
		entity:   core.EntityProducts,
		repo:     s.store.Products,
		header:   func(p *core.Product) *core.Entity { return &p.Entity },
		validate: (*core.Product).Validate,
		build:    productFromAPI,
		toAPI:    productToAPI,
		check: func(ctx context.Context, p *core.Product, user *core.User) error {
			if p.UnitID != nil {
				if _, err := s.store.Units.FindByID(ctx, *p.UnitID, user.ID); err != nil {
					return mustExist(err, "unitId")
				}
			}
			if p.CategoryID != nil {
				if _, err := s.store.Categories.FindByID(ctx, *p.CategoryID, user.ID); err != nil {
					return mustExist(err, "categoryId")
				}
			}
			return nil
		},
	}
	products.register(s, api.V1+"/products")
	s.handle("GET "+api.V1+"/products/{id}/purchases", s.handleProductPurchases)

	units := &resource[core.Unit, api.UnitCreation, api.Unit]{
		entity:   core.EntityUnits,
		repo:     s.store.Units,
		header:   func(u *core.Unit) *core.Entity { return &u.Entity },
		validate: (*core.Unit).Validate,
		build:    unitFromAPI,
		toAPI:    unitToAPI,
		check: func(ctx context.Context, u *core.Unit, user *core.User) error {
			if u.ParentUnitID == nil {
				return nil
			}
			if *u.ParentUnitID == u.ID {
				return &core.ValidationError{Field: "parentUnitId", Message: "cannot reference itself"}
			}
			_, err := s.store.Units.FindByID(ctx, *u.ParentUnitID, user.ID)
			return mustExist(err, "parentUnitId")
		},
	}
	units.register(s, api.V1+"/units")
}

func (s *Server) handleProductPurchases(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	if _, err := s.store.Products.FindByID(r.Context(), id, user.ID); err != nil {
		return err
	}
	purchases, err := s.store.PurchasesOfProduct(r.Context(), id, user.ID)
	if err != nil {
		return err
	}
	NewResponse().JSON(mapSlice(purchases, purchaseToAPI)).Write(w)
	return nil
}

// checkCategoryParent walks c's ancestors. The parent must exist and c must
// not appear among its own ancestors.
func (s *Server) checkCategoryParent(ctx context.Context, c *core.Category, user *core.User) error {
	seen := map[uuid.UUID]bool{c.ID: true}
	for id := c.CategoryID; id != nil; {
		if seen[*id] {
			return &core.ValidationError{Field: "categoryId", Message: "would make the category its own ancestor"}
		}
		seen[*id] = true
		parent, err := s.store.Categories.FindByID(ctx, *id, user.ID)
		if err != nil {
			return mustExist(err, "categoryId")
		}
		id = parent.CategoryID
	}
	return nil
}
