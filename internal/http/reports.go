package http

import (
	"net/http"

	"gnomeshade/api"
	"gnomeshade/internal/core"
	"gnomeshade/internal/services"
)

func (s *Server) reportRoutes() {
	s.handle("GET "+api.V1+"/reports/balances", s.handleBalanceReport)
	s.handle("GET "+api.V1+"/reports/categories", s.handleCategoryReport)
}

func (s *Server) handleBalanceReport(w http.ResponseWriter, r *http.Request, user *core.User) error {
	balances, err := s.reports.Balances(r.Context(), user.ID)
	if err != nil {
		return err
	}
	NewResponse().JSON(mapSlice(balances, balanceToAPI)).Write(w)
	return nil
}

// handleCategoryReport sums purchases per category and period. The optional
// category parameter reports on that category's children.
func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request, user *core.User) error {
	query := r.URL.Query()
	rng, err := ParseTimeRange(query)
	if err != nil {
		return err
	}
	split, err := ParseSplit(query)
	if err != nil {
		return err
	}
	root, err := QueryUUID(query, "category")
	if err != nil {
		return err
	}
	if root != nil {
		if _, err := s.store.Categories.FindByID(r.Context(), *root, user.ID); err != nil {
			return err
		}
	}

	report, err := s.reports.Categories(r.Context(),
		services.Viewer{UserID: user.ID, CounterpartyID: user.CounterpartyID},
		services.CategoryQuery{From: rng.From, To: rng.To, Split: split, Root: root})
	if err != nil {
		return err
	}
	NewResponse().JSON(categoryReportToAPI(report)).Write(w)
	return nil
}
