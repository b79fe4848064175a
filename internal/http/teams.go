package httpx

import (
	"net/http"
	"strings"
)

func (r *Router) handleTeams(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		teams, err := r.team.List(req.Context())
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	case http.MethodPost:
		r.limited(policyCreateTeam, r.createTeam)(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) createTeam(w http.ResponseWriter, req *http.Request) {
	var payload createTeamRequest
	if !decodeJSON(w, req, &payload) {
		return
	}
	team, err := r.team.Create(req.Context(), payload.Name, string(payload.Goal))
	if err != nil {
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (r *Router) handleTeamSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(req.URL.Path, "/api/teams/"), "/")
	parts := strings.Split(trimmed, "/")
	if trimmed == "" || len(parts) > 2 {
		r.notFound(w)
		return
	}
	teamID, ok := parseTeamID(parts[0])
	if !ok {
		writeError(w, http.StatusNotFound, msgTeamNotFound)
		return
	}
	if len(parts) == 1 {
		r.handleTeam(w, req, teamID)
		return
	}
	switch parts[1] {
	case "contribute":
		r.limited(policyContribute, func(w http.ResponseWriter, req *http.Request) {
			r.handleContribute(w, req, teamID)
		})(w, req)
	case "stream":
		r.limited(policyStream, func(w http.ResponseWriter, req *http.Request) {
			r.handleTeamStream(w, req, teamID)
		})(w, req)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleTeam(w http.ResponseWriter, req *http.Request, teamID int64) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	team, err := r.team.Get(req.Context(), teamID)
	if err != nil {
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (r *Router) handleContribute(w http.ResponseWriter, req *http.Request, teamID int64) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload contributeRequest
	if !decodeJSON(w, req, &payload) {
		return
	}
	team, err := r.contribution.Contribute(req.Context(), teamID, payload.Name, string(payload.Amount))
	if err != nil {
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"team":    team,
	})
}

func (r *Router) handleLeaderboard(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	entries, err := r.leaderboard.Project(req.Context())
	if err != nil {
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
