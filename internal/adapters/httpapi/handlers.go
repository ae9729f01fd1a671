package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/export"
	economyQueries "github.com/andrescamacho/warera-economy-go/internal/application/economy/queries"
	marketQueries "github.com/andrescamacho/warera-economy-go/internal/application/market/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	playgroundQueries "github.com/andrescamacho/warera-economy-go/internal/application/playground/queries"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/network"
	"github.com/andrescamacho/warera-economy-go/internal/domain/player"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

const (
	headerFingerprint = "X-Fingerprint"
	contentTypeJSON   = "application/json"
	contentTypeCSV    = "text/csv; charset=utf-8"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	token, fingerprint := credentials(r)

	resp, err := mediator.Send[*marketQueries.GetMarketDataResponse](r.Context(), s.mediator, &marketQueries.GetMarketDataQuery{
		Force:       force,
		Token:       token,
		Fingerprint: fingerprint,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := marketDataResponse{
		Prices:     make([]marketPriceDTO, len(resp.Prices)),
		WasUpdated: resp.WasUpdated,
		Stale:      resp.Stale,
		Error:      resp.Error,
	}
	for i, p := range resp.Prices {
		out.Prices[i] = marketPriceDTO{ProductID: p.ProductID, AveragePrice: p.AveragePrice, LastUpdated: p.LastUpdated}
	}
	if !resp.Timestamp.IsZero() {
		ts := resp.Timestamp
		out.Timestamp = &ts
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	var req costRequest
	if !s.decode(w, r, &req) {
		return
	}
	prices, err := req.Prices.table()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := mediator.Send[*economyQueries.CalculateCostResponse](r.Context(), s.mediator, &economyQueries.CalculateCostQuery{
		ItemID: req.ItemID,
		Salary: req.Salary,
		Prices: prices,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, costResponse{
		ItemID:    resp.ItemID,
		Salary:    resp.Salary,
		Cost:      resp.Cost,
		Breakdown: costNodeFrom(resp.Breakdown),
	})
}

func (s *Server) handleProfitability(w http.ResponseWriter, r *http.Request) {
	var req profitabilityRequest
	if !s.decode(w, r, &req) {
		return
	}
	prices, err := req.Prices.table()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := mediator.Send[*economyQueries.RankProfitabilityResponse](r.Context(), s.mediator, &economyQueries.RankProfitabilityQuery{
		Salary: req.Salary,
		Prices: prices,
		Limit:  req.Limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsCSV(r) {
		w.Header().Set("Content-Type", contentTypeCSV)
		w.Header().Set("Content-Disposition", `attachment; filename="profitability.csv"`)
		if err := export.WriteRanking(w, resp.Records); err != nil {
			s.log("ERROR", "Failed to write ranking CSV", map[string]interface{}{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, profitabilityResponse{Salary: resp.Salary, Products: rankedFrom(resp.Records)})
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	var req networkRequest
	if !s.decode(w, r, &req) {
		return
	}

	facilities, err := req.FacilitySet.Params()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	prices, err := req.Prices.table()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	mode, _ := network.ParseMode(req.Mode)

	var sortKey network.SortKey
	if req.SortBy != "" {
		sortKey = network.SortKey(req.SortBy)
	}

	resp, err := mediator.Send[*economyQueries.ReconcileNetworkResponse](r.Context(), s.mediator, &economyQueries.ReconcileNetworkQuery{
		Facilities: facilities,
		Mode:       mode,
		Prices:     prices,
		SortBy:     sortKey,
		Ascending:  req.Ascending,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsCSV(r) {
		w.Header().Set("Content-Type", contentTypeCSV)
		w.Header().Set("Content-Disposition", `attachment; filename="network.csv"`)
		if err := export.WriteNetwork(w, resp.Report); err != nil {
			s.log("ERROR", "Failed to write network CSV", map[string]interface{}{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, networkFrom(resp.Report, resp.Projections))
}

func (s *Server) handlePlayground(w http.ResponseWriter, r *http.Request) {
	token, fingerprint := credentials(r)

	resp, err := mediator.Send[*playgroundQueries.LoadPlaygroundResponse](r.Context(), s.mediator, &playgroundQueries.LoadPlaygroundQuery{
		Username:    r.URL.Query().Get("username"),
		Token:       token,
		Fingerprint: fingerprint,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := playgroundResponse{
		UserID:     resp.UserID,
		Username:   resp.Username,
		Facilities: make([]FacilityDTO, len(resp.Facilities)),
		Prices:     resp.Prices.Map(),
	}
	for i, f := range resp.Facilities {
		out.Facilities[i] = FacilityFromParams(f)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearchUser(w http.ResponseWriter, r *http.Request) {
	token, fingerprint := credentials(r)

	resp, err := mediator.Send[*playgroundQueries.ResolveUsernameResponse](r.Context(), s.mediator, &playgroundQueries.ResolveUsernameQuery{
		Username:    r.URL.Query().Get("q"),
		Token:       token,
		Fingerprint: fingerprint,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchUserResponse{Found: resp.Found, UserID: resp.UserID, Username: resp.Username})
}

// decode reads a JSON body and validates it, writing a 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	if err := s.validator.Validate(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return false
	}
	return true
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps application errors onto HTTP status codes
func statusFor(err error) int {
	var validation *shared.ValidationError
	var cyclic *recipe.CyclicRecipeError

	switch {
	case errors.As(err, &validation),
		errors.Is(err, market.ErrInvalidPrice),
		errors.Is(err, market.ErrInvalidItemID):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrTokenExpired), errors.Is(err, market.ErrTokenMissing):
		return http.StatusUnauthorized
	case errors.Is(err, player.ErrUserNotFound):
		return http.StatusNotFound
	case errors.As(err, &cyclic):
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(err.Error(), "no handler registered"):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log("ERROR", "Request failed", map[string]interface{}{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// credentials reads the per-request session, if any
func credentials(r *http.Request) (token, fingerprint string) {
	token = strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	return token, r.Header.Get(headerFingerprint)
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv" || strings.Contains(r.Header.Get("Accept"), "text/csv")
}
