// Package service holds the business half of request handling: domain
// validation and repository orchestration. Transport concerns (frames,
// action names, error codes) live in the handler package.
package service

import (
	"context"

	"league-roster-service/internal/core"

	"github.com/rs/zerolog/log"
)

// Roster coordinates the repository and the notification collaborator.
type Roster struct {
	repo     core.Repository
	notifier core.Notifier
}

// NewRoster creates the roster service.
func NewRoster(r core.Repository, n core.Notifier) *Roster {
	return &Roster{repo: r, notifier: n}
}

// CreateTeam validates and inserts a new team, returning its id.
func (s *Roster) CreateTeam(ctx context.Context, t *core.Team) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return s.repo.CreateTeam(ctx, t)
}

// ListTeams returns all teams sorted by name.
func (s *Roster) ListTeams(ctx context.Context) ([]core.Team, error) {
	return s.repo.ListTeams(ctx)
}

// GetTeam fetches one team by id.
func (s *Roster) GetTeam(ctx context.Context, id int64) (*core.Team, error) {
	return s.repo.GetTeam(ctx, id)
}

// DeleteTeam removes a team, releasing its players as part of the same
// store operation, then dispatches the team-deleted notification. The
// notification is fire-and-forget: its outcome is never awaited and its
// failure never reaches the caller.
func (s *Roster) DeleteTeam(ctx context.Context, id int64) error {
	// Fetch the name before the record disappears.
	team, err := s.repo.GetTeam(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTeam(ctx, id); err != nil {
		return err
	}

	go func() {
		payload := map[string]interface{}{"id": team.ID, "name": team.Name}
		if err := s.notifier.Publish(context.Background(), "team.deleted", payload); err != nil {
			log.Debug().Err(err).Int64("team_id", team.ID).
				Msg("team-deleted notification failed")
		}
	}()

	return nil
}

// CreatePlayer validates and inserts a new player, returning its id. A
// non-nil team reference is passed through to the store unverified; the
// foreign key still rejects a dangling id.
func (s *Roster) CreatePlayer(ctx context.Context, p *core.Player) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return s.repo.CreatePlayer(ctx, p)
}

// ListPlayersByTeam returns a team's players sorted by (last, first).
func (s *Roster) ListPlayersByTeam(ctx context.Context, teamID int64) ([]core.Player, error) {
	return s.repo.ListPlayersByTeam(ctx, teamID)
}

// ListFreeAgents returns all unattached players sorted by (last, first).
func (s *Roster) ListFreeAgents(ctx context.Context) ([]core.Player, error) {
	return s.repo.ListFreeAgents(ctx)
}

// UpdatePlayer validates and rewrites a player's mutable fields. A nil
// goals pointer leaves the stored counter unchanged.
func (s *Roster) UpdatePlayer(ctx context.Context, id int64, first, last string, role core.Role, shirt int, goals *int) error {
	candidate := core.Player{FirstName: first, LastName: last, Role: role, ShirtNumber: shirt}
	if err := candidate.Validate(); err != nil {
		return err
	}
	return s.repo.UpdatePlayer(ctx, id, first, last, role, shirt, goals)
}

// TransferPlayer moves a player to another team or, with a nil team id,
// releases them to the free-agent pool.
func (s *Roster) TransferPlayer(ctx context.Context, id int64, teamID *int64) error {
	return s.repo.TransferPlayer(ctx, id, teamID)
}

// DeletePlayer removes a player record entirely.
func (s *Roster) DeletePlayer(ctx context.Context, id int64) error {
	return s.repo.DeletePlayer(ctx, id)
}
