package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"gnomeshade/internal/core"
)

// ownedRepository is the storage surface a resource needs. The generic
// storage.Repository satisfies it.
type ownedRepository[T any] interface {
	Get(ctx context.Context, ownerID uuid.UUID) ([]T, error)
	FindByID(ctx context.Context, id, ownerID uuid.UUID) (*T, error)
	Add(ctx context.Context, v *T) error
	Upsert(ctx context.Context, v *T) (bool, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// resource serves the create/read/update/delete routes of one owned entity.
// T is the domain type, C the creation body and R the response body.
type resource[T, C, R any] struct {
	entity   string
	repo     ownedRepository[T]
	header   func(*T) *core.Entity
	validate func(*T) error
	build    func(C, *T)
	toAPI    func(T) R

	// check verifies references the database cannot, such as the owner of
	// a referenced row. Optional.
	check func(ctx context.Context, v *T, user *core.User) error
	// list replaces the default owner-wide listing. Optional.
	list func(r *http.Request, user *core.User) ([]T, error)
	// remove replaces the default soft delete. Optional.
	remove func(ctx context.Context, id uuid.UUID, user *core.User) error
}

func (rs *resource[T, C, R]) register(s *Server, prefix string) {
	s.handle("GET "+prefix, rs.handleList(s))
	s.handle("POST "+prefix, rs.handleCreate(s))
	s.handle("GET "+prefix+"/{id}", rs.handleGet(s))
	s.handle("PUT "+prefix+"/{id}", rs.handlePut(s))
	s.handle("DELETE "+prefix+"/{id}", rs.handleDelete(s))
}

func (rs *resource[T, C, R]) handleList(s *Server) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, user *core.User) error {
		var items []T
		var err error
		if rs.list != nil {
			items, err = rs.list(r, user)
		} else {
			items, err = rs.repo.Get(r.Context(), user.ID)
		}
		if err != nil {
			return err
		}
		NewResponse().JSON(mapSlice(items, rs.toAPI)).Write(w)
		return nil
	}
}

func (rs *resource[T, C, R]) handleGet(s *Server) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, user *core.User) error {
		id, err := PathID(r, "id")
		if err != nil {
			return err
		}
		v, err := rs.repo.FindByID(r.Context(), id, user.ID)
		if err != nil {
			return err
		}
		NewResponse().JSON(rs.toAPI(*v)).Write(w)
		return nil
	}
}

// prepare decodes the body into a fresh entity stamped for user.
func (rs *resource[T, C, R]) prepare(s *Server, w http.ResponseWriter, r *http.Request, user *core.User, id uuid.UUID) (*T, error) {
	var in C
	if err := DecodeJSON(w, r, &in); err != nil {
		return nil, err
	}
	v := new(T)
	rs.build(in, v)
	h := rs.header(v)
	h.ID = id
	h.Stamp(user.ID, s.now().UTC())
	if err := rs.validate(v); err != nil {
		return nil, err
	}
	if rs.check != nil {
		if err := rs.check(r.Context(), v, user); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (rs *resource[T, C, R]) handleCreate(s *Server) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, user *core.User) error {
		v, err := rs.prepare(s, w, r, user, uuid.Nil)
		if err != nil {
			return err
		}
		if err := rs.repo.Add(r.Context(), v); err != nil {
			return err
		}
		h := rs.header(v)
		s.notifier.Created(r.Context(), rs.entity, h.ID, h.OwnerID)
		created(w, r.URL.Path+"/"+h.ID.String(), h.ID)
		return nil
	}
}

// handlePut creates the entity under the given id when it is unused and
// replaces it when the caller owns it.
func (rs *resource[T, C, R]) handlePut(s *Server) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, user *core.User) error {
		id, err := PathID(r, "id")
		if err != nil {
			return err
		}
		v, err := rs.prepare(s, w, r, user, id)
		if err != nil {
			return err
		}
		isNew, err := rs.repo.Upsert(r.Context(), v)
		if err != nil {
			return err
		}
		if isNew {
			s.notifier.Created(r.Context(), rs.entity, id, user.ID)
			created(w, r.URL.Path, id)
			return nil
		}
		s.notifier.Updated(r.Context(), rs.entity, id, user.ID)
		NewResponse().Status(http.StatusNoContent).Write(w)
		return nil
	}
}

func (rs *resource[T, C, R]) handleDelete(s *Server) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, user *core.User) error {
		id, err := PathID(r, "id")
		if err != nil {
			return err
		}
		if rs.remove != nil {
			err = rs.remove(r.Context(), id, user)
		} else {
			err = rs.repo.Delete(r.Context(), id, user.ID)
		}
		if err != nil {
			return err
		}
		s.notifier.Deleted(r.Context(), rs.entity, id, user.ID)
		NewResponse().Status(http.StatusNoContent).Write(w)
		return nil
	}
}

// created writes 201 with the new id as body.
func created(w http.ResponseWriter, location string, id uuid.UUID) {
	NewResponse().Status(http.StatusCreated).Location(location).JSON(id).Write(w)
}

// mustExist turns a missing referenced row into a validation error on field.
func mustExist(err error, field string) error {
	if errors.Is(err, core.ErrNotFound) {
		return &core.ValidationError{Field: field, Message: "does not exist"}
	}
	return err
}
