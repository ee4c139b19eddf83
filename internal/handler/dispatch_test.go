package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"league-roster-service/internal/core"
	"league-roster-service/internal/protocol"
	"league-roster-service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository for testing.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateTeam(ctx context.Context, t *core.Team) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListTeams(ctx context.Context) ([]core.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.Team), args.Error(1)
}

func (m *MockRepository) GetTeam(ctx context.Context, id int64) (*core.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Team), args.Error(1)
}

func (m *MockRepository) DeleteTeam(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CreatePlayer(ctx context.Context, p *core.Player) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListPlayersByTeam(ctx context.Context, teamID int64) ([]core.Player, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.Player), args.Error(1)
}

func (m *MockRepository) ListFreeAgents(ctx context.Context) ([]core.Player, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.Player), args.Error(1)
}

func (m *MockRepository) UpdatePlayer(ctx context.Context, id int64, first, last string, role core.Role, shirt int, goals *int) error {
	args := m.Called(ctx, id, first, last, role, shirt, goals)
	return args.Error(0)
}

func (m *MockRepository) TransferPlayer(ctx context.Context, id int64, teamID *int64) error {
	args := m.Called(ctx, id, teamID)
	return args.Error(0)
}

func (m *MockRepository) DeletePlayer(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotifier for testing.
type MockNotifier struct {
	mock.Mock
	published chan struct{}
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{published: make(chan struct{})}
}

func (m *MockNotifier) Publish(ctx context.Context, eventType string, payload interface{}) error {
	args := m.Called(ctx, eventType, payload)
	close(m.published)
	return args.Error(0)
}

func (m *MockNotifier) Close() error {
	return nil
}

func setupDispatcher() (*Dispatcher, *MockRepository, *MockNotifier) {
	repo := new(MockRepository)
	notifier := NewMockNotifier()
	svc := service.NewRoster(repo, notifier)
	return NewDispatcher(svc), repo, notifier
}

func dispatch(d *Dispatcher, action, data string) protocol.Response {
	req := protocol.Request{Action: action}
	if data != "" {
		req.Data = json.RawMessage(data)
	}
	return d.Dispatch(context.Background(), req)
}

func TestDispatchUnknownAction(t *testing.T) {
	d, _, _ := setupDispatcher()

	resp := dispatch(d, "promote_team", `{}`)
	require.False(t, resp.OK)
	assert.Equal(t, protocol.CodeUnknownAction, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "promote_team")
}

func TestDispatchCreateTeam(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		d, repo, _ := setupDispatcher()
		repo.On("CreateTeam", mock.Anything, mock.AnythingOfType("*core.Team")).Return(int64(3), nil)

		resp := dispatch(d, "create_team",
			`{"name":"Inter","city":"Milano","founded":1908,"budget":2000000}`)
		require.True(t, resp.OK)
		assert.Equal(t, map[string]int64{"id": 3}, resp.Data)
		repo.AssertExpectations(t)
	})

	t.Run("missing field named in error", func(t *testing.T) {
		d, repo, _ := setupDispatcher()

		resp := dispatch(d, "create_team", `{"name":"Inter","founded":1908,"budget":0}`)
		require.False(t, resp.OK)
		assert.Equal(t, protocol.CodeBadRequest, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "city")
		repo.AssertNotCalled(t, "CreateTeam", mock.Anything, mock.Anything)
	})

	t.Run("founding year out of range", func(t *testing.T) {
		d, repo, _ := setupDispatcher()

		resp := dispatch(d, "create_team",
			`{"name":"Inter","city":"Milano","founded":1701,"budget":0}`)
		require.False(t, resp.OK)
		assert.Equal(t, protocol.CodeBadRequest, resp.Error.Code)
		repo.AssertNotCalled(t, "CreateTeam", mock.Anything, mock.Anything)
	})

	t.Run("duplicate name maps to conflict", func(t *testing.T) {
		d, repo, _ := setupDispatcher()
		repo.On("CreateTeam", mock.Anything, mock.Anything).Return(int64(0), core.ErrConflict)

		resp := dispatch(d, "create_team",
			`{"name":"Inter","city":"Milano","founded":1908,"budget":0}`)
		require.False(t, resp.OK)
		assert.Equal(t, protocol.CodeConflict, resp.Error.Code)
	})

	t.Run("wrongly typed payload", func(t *testing.T) {
		d, _, _ := setupDispatcher()

		resp := dispatch(d, "create_team", `{"name":"Inter","city":"Milano","founded":"old","budget":0}`)
		require.False(t, resp.OK)
		assert.Equal(t, protocol.CodeBadRequest, resp.Error.Code)
	})
}

func TestDispatchGetTeam(t *testing.T) {
	d, repo, _ := setupDispatcher()
	repo.On("GetTeam", mock.Anything, int64(9)).Return(nil, core.ErrNotFound)

	resp := dispatch(d, "get_team", `{"id":9}`)
	require.False(t, resp.OK)
	assert.Equal(t, protocol.CodeNotFound, resp.Error.Code)
}

func TestDispatchListTeams(t *testing.T) {
	d, repo, _ := setupDispatcher()
	teams := []core.Team{{ID: 1, Name: "AC Milan", City: "Milano", Founded: 1899}}
	repo.On("ListTeams", mock.Anything).Return(teams, nil)

	resp := dispatch(d, "list_teams", "")
	require.True(t, resp.OK)
	assert.Equal(t, teams, resp.Data)
}

func TestDispatchCreatePlayer(t *testing.T) {
	t.Run("success with team reference", func(t *testing.T) {
		d, repo, _ := setupDispatcher()
		repo.On("CreatePlayer", mock.Anything, mock.AnythingOfType("*core.Player")).Return(int64(7), nil)

		resp := dispatch(d, "create_player",
			`{"first_name":"Mario","last_name":"Rossi","role":"Forward","shirt_number":9,"team_id":1}`)
		require.True(t, resp.OK)
		assert.Equal(t, map[string]int64{"id": 7}, resp.Data)

		created := repo.Calls[0].Arguments.Get(1).(*core.Player)
		require.NotNil(t, created.TeamID)
		assert.Equal(t, int64(1), *created.TeamID)
	})

	t.Run("free agent when team_id omitted", func(t *testing.T) {
		d, repo, _ := setupDispatcher()
		repo.On("CreatePlayer", mock.Anything, mock.AnythingOfType("*core.Player")).Return(int64(8), nil)

		resp := dispatch(d, "create_player",
			`{"first_name":"Mario","last_name":"Rossi","role":"Forward","shirt_number":9}`)
		require.True(t, resp.OK)

		created := repo.Calls[0].Arguments.Get(1).(*core.Player)
		assert.Nil(t, created.TeamID)
	})

	t.Run("role outside the closed set", func(t *testing.T) {
		d, repo, _ := setupDispatcher()

		resp := dispatch(d, "create_player",
			`{"first_name":"Mario","last_name":"Rossi","role":"Sweeper","shirt_number":9}`)
		require.False(t, resp.OK)
		assert.Equal(t, protocol.CodeBadRequest, resp.Error.Code)
		repo.AssertNotCalled(t, "CreatePlayer", mock.Anything, mock.Anything)
	})

	t.Run("shirt number out of range", func(t *testing.T) {
		d, _, _ := setupDispatcher()

		resp := dispatch(d, "create_player",
			`{"first_name":"Mario","last_name":"Rossi","role":"Forward","shirt_number":0}`)
		require.False(t, resp.OK)
		assert.Equal(t, protocol.CodeBadRequest, resp.Error.Code)
	})
}

func TestDispatchUpdatePlayer(t *testing.T) {
	t.Run("omitted goals stays nil", func(t *testing.T) {
		d, repo, _ := setupDispatcher()
		repo.On("UpdatePlayer", mock.Anything, int64(7), "Mario", "Rossi",
			core.RoleMidfielder, 8, (*int)(nil)).Return(nil)

		resp := dispatch(d, "update_player",
			`{"id":7,"first_name":"Mario","last_name":"Rossi","role":"Midfielder","shirt_number":8}`)
		require.True(t, resp.OK)
		repo.AssertExpectations(t)
	})

	t.Run("provided goals passes through", func(t *testing.T) {
		d, repo, _ := setupDispatcher()
		repo.On("UpdatePlayer", mock.Anything, int64(7), "Mario", "Rossi",
			core.RoleMidfielder, 8, mock.MatchedBy(func(g *int) bool {
				return g != nil && *g == 12
			})).Return(nil)

		resp := dispatch(d, "update_player",
			`{"id":7,"first_name":"Mario","last_name":"Rossi","role":"Midfielder","shirt_number":8,"goals":12}`)
		require.True(t, resp.OK)
		repo.AssertExpectations(t)
	})

	t.Run("missing player maps to not found", func(t *testing.T) {
		d, repo, _ := setupDispatcher()
		repo.On("UpdatePlayer", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
			mock.Anything, mock.Anything, mock.Anything).Return(core.ErrNotFound)

		resp := dispatch(d, "update_player",
			`{"id":99,"first_name":"Mario","last_name":"Rossi","role":"Midfielder","shirt_number":8}`)
		require.False(t, resp.OK)
		assert.Equal(t, protocol.CodeNotFound, resp.Error.Code)
	})
}

func TestDispatchTransferPlayer(t *testing.T) {
	t.Run("explicit null releases to free agency", func(t *testing.T) {
		d, repo, _ := setupDispatcher()
		repo.On("TransferPlayer", mock.Anything, int64(7), (*int64)(nil)).Return(nil)

		resp := dispatch(d, "transfer_player", `{"id":7,"team_id":null}`)
		require.True(t, resp.OK)
		repo.AssertExpectations(t)
	})

	t.Run("target team forwarded", func(t *testing.T) {
		d, repo, _ := setupDispatcher()
		repo.On("TransferPlayer", mock.Anything, int64(7), mock.MatchedBy(func(id *int64) bool {
			return id != nil && *id == 2
		})).Return(nil)

		resp := dispatch(d, "transfer_player", `{"id":7,"team_id":2}`)
		require.True(t, resp.OK)
	})

	t.Run("missing id", func(t *testing.T) {
		d, _, _ := setupDispatcher()

		resp := dispatch(d, "transfer_player", `{"team_id":2}`)
		require.False(t, resp.OK)
		assert.Equal(t, protocol.CodeBadRequest, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "id")
	})
}

func TestDispatchDeleteTeam(t *testing.T) {
	t.Run("success publishes notification", func(t *testing.T) {
		d, repo, notifier := setupDispatcher()
		team := &core.Team{ID: 2, Name: "Parma", City: "Parma", Founded: 1913}
		repo.On("GetTeam", mock.Anything, int64(2)).Return(team, nil)
		repo.On("DeleteTeam", mock.Anything, int64(2)).Return(nil)
		notifier.On("Publish", mock.Anything, "team.deleted", mock.Anything).Return(nil)

		resp := dispatch(d, "delete_team", `{"id":2}`)
		require.True(t, resp.OK)

		select {
		case <-notifier.published:
		case <-time.After(2 * time.Second):
			t.Fatal("notification was never published")
		}
	})

	t.Run("store failure maps to server error", func(t *testing.T) {
		d, repo, _ := setupDispatcher()
		team := &core.Team{ID: 2, Name: "Parma"}
		repo.On("GetTeam", mock.Anything, int64(2)).Return(team, nil)
		repo.On("DeleteTeam", mock.Anything, int64(2)).Return(errors.New("disk I/O error"))

		resp := dispatch(d, "delete_team", `{"id":2}`)
		require.False(t, resp.OK)
		assert.Equal(t, protocol.CodeServerError, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "disk I/O error")
	})
}

func TestDispatchDeletePlayer(t *testing.T) {
	d, repo, _ := setupDispatcher()
	repo.On("DeletePlayer", mock.Anything, int64(5)).Return(core.ErrNotFound)

	resp := dispatch(d, "delete_player", `{"id":5}`)
	require.False(t, resp.OK)
	assert.Equal(t, protocol.CodeNotFound, resp.Error.Code)
}
