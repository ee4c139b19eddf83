// Package handler translates wire requests into service calls: it
// decodes action payloads, performs request-shape validation, and maps
// every outcome onto the uniform response envelope.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"league-roster-service/internal/core"
	"league-roster-service/internal/protocol"
	"league-roster-service/internal/service"

	"github.com/rs/zerolog/log"
)

// Dispatcher maps action names to roster-service operations.
type Dispatcher struct {
	svc *service.Roster
}

// NewDispatcher creates a dispatcher over the given service.
func NewDispatcher(svc *service.Roster) *Dispatcher {
	return &Dispatcher{svc: svc}
}

// Dispatch routes one decoded request and always returns a response
// envelope; no error escapes to the connection loop.
func (d *Dispatcher) Dispatch(ctx context.Context, req protocol.Request) protocol.Response {
	switch req.Action {
	case "list_teams":
		return d.listTeams(ctx)
	case "create_team":
		return d.createTeam(ctx, req.Data)
	case "get_team":
		return d.getTeam(ctx, req.Data)
	case "delete_team":
		return d.deleteTeam(ctx, req.Data)
	case "list_players_by_team":
		return d.listPlayersByTeam(ctx, req.Data)
	case "list_free_agents":
		return d.listFreeAgents(ctx)
	case "create_player":
		return d.createPlayer(ctx, req.Data)
	case "update_player":
		return d.updatePlayer(ctx, req.Data)
	case "transfer_player":
		return d.transferPlayer(ctx, req.Data)
	case "delete_player":
		return d.deletePlayer(ctx, req.Data)
	default:
		return protocol.ErrResponse(protocol.CodeUnknownAction,
			fmt.Sprintf("unknown action: %s", req.Action))
	}
}

func (d *Dispatcher) listTeams(ctx context.Context) protocol.Response {
	teams, err := d.svc.ListTeams(ctx)
	if err != nil {
		return errorResponse(err)
	}
	return protocol.OKResponse(teams)
}

func (d *Dispatcher) createTeam(ctx context.Context, data json.RawMessage) protocol.Response {
	var p struct {
		Name    *string  `json:"name"`
		City    *string  `json:"city"`
		Founded *int     `json:"founded"`
		Budget  *float64 `json:"budget"`
	}
	if resp, ok := decodePayload(data, &p); !ok {
		return resp
	}
	if resp, ok := requireFields(map[string]bool{
		"name": p.Name != nil, "city": p.City != nil,
		"founded": p.Founded != nil, "budget": p.Budget != nil,
	}); !ok {
		return resp
	}

	id, err := d.svc.CreateTeam(ctx, &core.Team{
		Name: *p.Name, City: *p.City, Founded: *p.Founded, Budget: *p.Budget,
	})
	if err != nil {
		return errorResponse(err)
	}
	return protocol.OKResponse(map[string]int64{"id": id})
}

func (d *Dispatcher) getTeam(ctx context.Context, data json.RawMessage) protocol.Response {
	id, resp, ok := decodeID(data, "id")
	if !ok {
		return resp
	}
	team, err := d.svc.GetTeam(ctx, id)
	if err != nil {
		return errorResponse(err)
	}
	return protocol.OKResponse(team)
}

func (d *Dispatcher) deleteTeam(ctx context.Context, data json.RawMessage) protocol.Response {
	id, resp, ok := decodeID(data, "id")
	if !ok {
		return resp
	}
	if err := d.svc.DeleteTeam(ctx, id); err != nil {
		return errorResponse(err)
	}
	return protocol.OKResponse(struct{}{})
}

func (d *Dispatcher) listPlayersByTeam(ctx context.Context, data json.RawMessage) protocol.Response {
	id, resp, ok := decodeID(data, "team_id")
	if !ok {
		return resp
	}
	players, err := d.svc.ListPlayersByTeam(ctx, id)
	if err != nil {
		return errorResponse(err)
	}
	return protocol.OKResponse(players)
}

func (d *Dispatcher) listFreeAgents(ctx context.Context) protocol.Response {
	players, err := d.svc.ListFreeAgents(ctx)
	if err != nil {
		return errorResponse(err)
	}
	return protocol.OKResponse(players)
}

func (d *Dispatcher) createPlayer(ctx context.Context, data json.RawMessage) protocol.Response {
	var p struct {
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		Role        *string `json:"role"`
		ShirtNumber *int    `json:"shirt_number"`
		TeamID      *int64  `json:"team_id"`
		Goals       int     `json:"goals"`
	}
	if resp, ok := decodePayload(data, &p); !ok {
		return resp
	}
	if resp, ok := requireFields(map[string]bool{
		"first_name": p.FirstName != nil, "last_name": p.LastName != nil,
		"role": p.Role != nil, "shirt_number": p.ShirtNumber != nil,
	}); !ok {
		return resp
	}

	id, err := d.svc.CreatePlayer(ctx, &core.Player{
		FirstName:   *p.FirstName,
		LastName:    *p.LastName,
		Role:        core.Role(*p.Role),
		ShirtNumber: *p.ShirtNumber,
		Goals:       p.Goals,
		TeamID:      p.TeamID,
	})
	if err != nil {
		return errorResponse(err)
	}
	return protocol.OKResponse(map[string]int64{"id": id})
}

func (d *Dispatcher) updatePlayer(ctx context.Context, data json.RawMessage) protocol.Response {
	var p struct {
		ID          *int64  `json:"id"`
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		Role        *string `json:"role"`
		ShirtNumber *int    `json:"shirt_number"`
		Goals       *int    `json:"goals"`
	}
	if resp, ok := decodePayload(data, &p); !ok {
		return resp
	}
	if resp, ok := requireFields(map[string]bool{
		"id": p.ID != nil, "first_name": p.FirstName != nil,
		"last_name": p.LastName != nil, "role": p.Role != nil,
		"shirt_number": p.ShirtNumber != nil,
	}); !ok {
		return resp
	}

	// p.Goals stays nil when the caller omits it: keep-current, not zero.
	err := d.svc.UpdatePlayer(ctx, *p.ID, *p.FirstName, *p.LastName,
		core.Role(*p.Role), *p.ShirtNumber, p.Goals)
	if err != nil {
		return errorResponse(err)
	}
	return protocol.OKResponse(struct{}{})
}

func (d *Dispatcher) transferPlayer(ctx context.Context, data json.RawMessage) protocol.Response {
	var p struct {
		ID     *int64 `json:"id"`
		TeamID *int64 `json:"team_id"`
	}
	if resp, ok := decodePayload(data, &p); !ok {
		return resp
	}
	if resp, ok := requireFields(map[string]bool{"id": p.ID != nil}); !ok {
		return resp
	}

	// A nil team_id releases the player to the free-agent pool.
	if err := d.svc.TransferPlayer(ctx, *p.ID, p.TeamID); err != nil {
		return errorResponse(err)
	}
	return protocol.OKResponse(struct{}{})
}

func (d *Dispatcher) deletePlayer(ctx context.Context, data json.RawMessage) protocol.Response {
	id, resp, ok := decodeID(data, "id")
	if !ok {
		return resp
	}
	if err := d.svc.DeletePlayer(ctx, id); err != nil {
		return errorResponse(err)
	}
	return protocol.OKResponse(struct{}{})
}

// decodePayload unmarshals an action payload, treating an absent data
// object as empty so missing-field errors name the field instead.
func decodePayload(data json.RawMessage, v interface{}) (protocol.Response, bool) {
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return protocol.ErrResponse(protocol.CodeBadRequest,
			fmt.Sprintf("invalid payload: %v", err)), false
	}
	return protocol.Response{}, true
}

// requireFields reports the first missing required field as BAD_REQUEST.
func requireFields(present map[string]bool) (protocol.Response, bool) {
	for field, ok := range present {
		if !ok {
			return protocol.ErrResponse(protocol.CodeBadRequest,
				fmt.Sprintf("missing field: %s", field)), false
		}
	}
	return protocol.Response{}, true
}

func decodeID(data json.RawMessage, field string) (int64, protocol.Response, bool) {
	var raw map[string]*int64
	if resp, ok := decodePayload(data, &raw); !ok {
		return 0, resp, false
	}
	id := raw[field]
	if id == nil {
		return 0, protocol.ErrResponse(protocol.CodeBadRequest,
			fmt.Sprintf("missing field: %s", field)), false
	}
	return *id, protocol.Response{}, true
}

// errorResponse maps service and repository errors onto wire codes.
func errorResponse(err error) protocol.Response {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return protocol.ErrResponse(protocol.CodeNotFound, err.Error())
	case errors.Is(err, core.ErrConflict):
		return protocol.ErrResponse(protocol.CodeConflict, err.Error())
	case errors.Is(err, core.ErrInvalid):
		return protocol.ErrResponse(protocol.CodeBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		return protocol.ErrResponse(protocol.CodeServerError, err.Error())
	}
}
