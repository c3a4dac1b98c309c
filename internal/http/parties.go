package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"gnomeshade/api"
	"gnomeshade/internal/core"
	"gnomeshade/internal/storage"
)

func (s *Server) partyRoutes() {
	s.handle("GET "+api.V1+"/currencies", s.handleCurrencies)

	counterparties := &resource[core.Counterparty, api.CounterpartyCreation, api.Counterparty]{
		entity:   core.EntityCounterparties,
		repo:     s.store.Counterparties,
		header:   func(c *core.Counterparty) *core.Entity { return &c.Entity },
		validate: (*core.Counterparty).Validate,
		build:    counterpartyFromAPI,
		toAPI:    counterpartyToAPI,
		remove: func(ctx context.Context, id uuid.UUID, user *core.User) error {
			if id == user.CounterpartyID {
				return &core.ValidationError{Field: "id", Message: "the user's own counterparty cannot be deleted"}
			}
			return s.store.Counterparties.Delete(ctx, id, user.ID)
		},
	}
	s.handle("GET "+api.V1+"/counterparties/me", s.handleMyCounterparty)
	counterparties.register(s, api.V1+"/counterparties")
	s.handle("POST "+api.V1+"/counterparties/{targetId}/merge/{sourceId}", s.handleMergeCounterparties)
}

// handleMergeCounterparties moves the accounts and loans of sourceId to
// targetId and deletes sourceId.
func (s *Server) handleMergeCounterparties(w http.ResponseWriter, r *http.Request, user *core.User) error {
	targetID, sourceID, err := mergeIDs(r)
	if err != nil {
		return err
	}
	if err := storage.NewCounterpartyUnitOfWork(s.store).Merge(r.Context(), targetID, sourceID, user.ID); err != nil {
		return err
	}
	s.notifier.Updated(r.Context(), core.EntityCounterparties, targetID, user.ID)
	s.notifier.Deleted(r.Context(), core.EntityCounterparties, sourceID, user.ID)
	NewResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request, _ *core.User) error {
	currencies, err := s.store.Currencies.Get(r.Context())
	if err != nil {
		return err
	}
	NewResponse().JSON(mapSlice(currencies, currencyToAPI)).Write(w)
	return nil
}

func (s *Server) handleMyCounterparty(w http.ResponseWriter, r *http.Request, user *core.User) error {
	c, err := s.store.Counterparties.FindByID(r.Context(), user.CounterpartyID, user.ID)
	if err != nil {
		return err
	}
	NewResponse().JSON(counterpartyToAPI(*c)).Write(w)
	return nil
}
