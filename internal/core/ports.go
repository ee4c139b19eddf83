package core

import "context"

// Repository owns all access to the persistent store. Mutating
// operations are serialized by a single process-wide write lock held for
// their whole duration, check-then-act sequences included; reads do not
// take the lock and observe fully-applied states only.
//
// CreatePlayer trusts a non-nil TeamID to reference an existing team
// (the caller validates; a dangling id is still rejected by the store's
// foreign key as ErrConflict). TransferPlayer validates both the player
// and the target team itself.
type Repository interface {
	CreateTeam(ctx context.Context, t *Team) (int64, error)
	ListTeams(ctx context.Context) ([]Team, error)
	GetTeam(ctx context.Context, id int64) (*Team, error)
	DeleteTeam(ctx context.Context, id int64) error

	CreatePlayer(ctx context.Context, p *Player) (int64, error)
	ListPlayersByTeam(ctx context.Context, teamID int64) ([]Player, error)
	ListFreeAgents(ctx context.Context) ([]Player, error)
	UpdatePlayer(ctx context.Context, id int64, first, last string, role Role, shirt int, goals *int) error
	TransferPlayer(ctx context.Context, id int64, teamID *int64) error
	DeletePlayer(ctx context.Context, id int64) error
}

// Notifier defines the contract for the outbound-notification
// collaborator (Kafka in the reference deployment). Failures are the
// caller's to swallow; the request path never awaits the outcome.
type Notifier interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
	Close() error
}
