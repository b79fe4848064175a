package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// numeric accepts either a JSON number or a numeric string and keeps the raw
// text so the domain layer applies a single parsing rule to both.
type numeric string

func (n *numeric) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*n = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = numeric(s)
	default:
		*n = numeric(raw)
	}
	return nil
}

type createTeamRequest struct {
	Name string  `json:"name"`
	Goal numeric `json:"goal"`
}

type contributeRequest struct {
	Name   string  `json:"name"`
	Amount numeric `json:"amount"`
}

type donateRequest struct {
	NonprofitID string  `json:"nonprofitId"`
	Amount      numeric `json:"amount"`
}

func decodeJSON(w http.ResponseWriter, req *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// parseTeamID reads a team id path segment. Anything that is not a base-10
// integer names no team.
func parseTeamID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
