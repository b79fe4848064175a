package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/ws"
)

// handleTeamWS accepts /ws/teams/{id} and the short form /ws/{id}.
func (r *Router) handleTeamWS(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	rest := strings.Trim(strings.TrimPrefix(req.URL.Path, "/ws/"), "/")
	rest = strings.TrimPrefix(rest, "teams/")
	if rest == "" || strings.Contains(rest, "/") {
		r.notFound(w)
		return
	}
	teamID, ok := parseTeamID(rest)
	if !ok {
		writeError(w, http.StatusNotFound, msgTeamNotFound)
		return
	}
	if _, err := r.team.Get(req.Context(), teamID); err != nil {
		r.writeServiceError(w, err)
		return
	}

	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", "team_id", teamID, "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger, r.clientOpts)
	if err := r.hub.Attach(teamID, client, r.snapshot(req.Context(), teamID)); err != nil {
		r.logger.Warn("websocket attach failed", "team_id", teamID, "error", err)
		client.Close()
		return
	}
	go client.ReadLoop()
}

func (r *Router) handleTeamStream(w http.ResponseWriter, req *http.Request, teamID int64) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	if _, err := r.team.Get(req.Context(), teamID); err != nil {
		r.writeServiceError(w, err)
		return
	}

	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := ws.NewSSEClient(w, flusher, r.logger, r.clientOpts.SendBuffer)
	if err := r.hub.Attach(teamID, client, r.snapshot(req.Context(), teamID)); err != nil {
		r.logger.Warn("sse attach failed", "team_id", teamID, "error", err)
		client.Close()
		return
	}
	if err := client.Serve(req.Context(), r.sseHeartbeat); err != nil {
		r.logger.Debug("sse stream ended", "team_id", teamID, "error", err)
	}
}

// snapshot loads the encoded current state of a team for a new listener.
func (r *Router) snapshot(ctx context.Context, teamID int64) func() ([]byte, error) {
	return func() ([]byte, error) {
		team, err := r.team.Get(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return domain.MarshalSnapshot(*team)
	}
}
