package httpx

import (
	"net/http"
	"strings"
)

func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	if r.causes == nil {
		writeError(w, http.StatusBadGateway, msgSearchUnavailable)
		return
	}
	term := strings.TrimPrefix(req.URL.Path, "/api/search/")
	found, err := r.causes.SearchCauses(req.Context(), term)
	if err != nil {
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleDonate(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload donateRequest
	if !decodeJSON(w, req, &payload) {
		return
	}
	donation, err := r.donation.Donate(req.Context(), payload.NonprofitID, string(payload.Amount))
	if err != nil {
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"donation": donation,
	})
}

func (r *Router) handleDonations(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	donations, err := r.donation.List(req.Context())
	if err != nil {
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}
