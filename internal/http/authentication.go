package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gnomeshade/api"
	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
)

// authenticate resolves the bearer token to a live user before calling h.
func (s *Server) authenticate(h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Authentication failed",
				log.FieldErrorType, log.ErrorTypeAuth,
				log.FieldError, err.Error(),
				log.FieldPath, r.URL.Path)
			s.fail(w, r, errUnauthorized)
			return
		}

		ctx := log.NewContext(r.Context(), log.FromContext(r.Context()).With(log.FieldUserID, user.ID.String()))
		r = r.WithContext(ctx)
		if err := h(w, r, user); err != nil {
			s.fail(w, r, err)
		}
	})
}

func (s *Server) currentUser(r *http.Request) (*core.User, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, errors.New("missing bearer token")
	}
	userID, _, err := s.issuer.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users.FindByID(r.Context(), userID)
	if err != nil {
		return nil, fmt.Errorf("load token user: %w", err)
	}
	return user, nil
}

func (s *Server) authRoutes() {
	s.handlePublic("POST "+api.V1+"/authentication/register", s.handleRegister)
	s.handlePublic("POST "+api.V1+"/authentication/login", s.handleLogin)
	s.handle("GET "+api.V1+"/authentication/info", s.handleInfo)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var in api.Register
	if err := DecodeJSON(w, r, &in); err != nil {
		return err
	}
	user, err := s.users.Register(r.Context(), in.Username, in.Password, in.FullName)
	if err != nil {
		return err
	}
	NewResponse().Status(http.StatusCreated).Location(api.V1 + "/authentication/info").JSON(userToAPI(user)).Write(w)
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var in api.Login
	if err := DecodeJSON(w, r, &in); err != nil {
		return err
	}
	user, err := s.users.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		return err
	}
	token, err := s.issuer.Issue(user.ID, user.Username)
	if err != nil {
		return err
	}
	NewResponse().JSON(api.LoginResult{Token: token.Value, ExpiresAt: token.ExpiresAt, UserID: user.ID}).Write(w)
	return nil
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request, user *core.User) error {
	NewResponse().JSON(userToAPI(user)).Write(w)
	return nil
}
