package core

import (
	"fmt"
	"time"
)

// Role is the closed set of positions a player can hold.
type Role string

const (
	RoleGoalkeeper Role = "Goalkeeper"
	RoleDefender   Role = "Defender"
	RoleMidfielder Role = "Midfielder"
	RoleForward    Role = "Forward"
)

// MinFoundingYear is the oldest founding year a team may declare.
const MinFoundingYear = 1850

// Team is a club in the league. IDs are assigned by the store and never
// reused within a store lifetime. Names are unique across all teams.
type Team struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	City    string  `json:"city"`
	Founded int     `json:"founded"`
	Budget  float64 `json:"budget"`
}

// Player is a roster entry. TeamID is nil for free agents; a non-nil
// TeamID always references an existing team between operations.
type Player struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        Role   `json:"role"`
	ShirtNumber int    `json:"shirt_number"`
	Goals       int    `json:"goals"`
	TeamID      *int64 `json:"team_id"`
}

// Validate enforces team-level business rules. The founding-year window
// is checked against the current calendar year at call time.
func (t *Team) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if t.City == "" {
		return fmt.Errorf("%w: city is required", ErrInvalid)
	}
	if year := time.Now().Year(); t.Founded < MinFoundingYear || t.Founded > year {
		return fmt.Errorf("%w: founding year must be between %d and %d", ErrInvalid, MinFoundingYear, year)
	}
	return nil
}

// Validate enforces player-level business rules.
func (p *Player) Validate() error {
	if p.FirstName == "" {
		return fmt.Errorf("%w: first name is required", ErrInvalid)
	}
	if p.LastName == "" {
		return fmt.Errorf("%w: last name is required", ErrInvalid)
	}
	if !p.Role.Valid() {
		return fmt.Errorf("%w: invalid role: %s", ErrInvalid, p.Role)
	}
	if p.ShirtNumber < 1 || p.ShirtNumber > 99 {
		return fmt.Errorf("%w: shirt number must be between 1 and 99", ErrInvalid)
	}
	return nil
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleForward:
		return true
	default:
		return false
	}
}
