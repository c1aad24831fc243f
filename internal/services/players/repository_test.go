package players

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/storage"
	"github.com/mcoot/hptracker/internal/storage/memory"
	"github.com/mcoot/hptracker/internal/storage/mocks"
	"github.com/mcoot/hptracker/internal/testutil"
)

type RepositorySuite struct {
	suite.Suite
	store *memory.Storage
	repo  *Repository
	ctx   context.Context
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.store = memory.New()
	s.repo = New(s.store, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RepositorySuite) TestEnsurePlayerCreatesDefault() {
	record, err := s.repo.EnsurePlayer(s.ctx, "ABC", "Alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerRecord{PlayerName: "Alice"}, *record)

	raw, err := s.store.Get(s.ctx, "rooms/ABC/players/Alice")
	s.Require().NoError(err)
	s.JSONEq(`{"name":"","maxHP":0,"currentHP":0}`, string(raw))
}

func (s *RepositorySuite) TestEnsurePlayerIsIdempotent() {
	_, err := s.repo.EnsurePlayer(s.ctx, "ABC", "Alice")
	s.Require().NoError(err)
	err = s.repo.SavePlayer(s.ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20})
	s.Require().NoError(err)

	record, err := s.repo.EnsurePlayer(s.ctx, "ABC", "Alice")
	s.Require().NoError(err)
	s.Equal("Thorin", record.CharacterName)
	s.Equal(20, record.CurrentHP)

	again, err := s.repo.EnsurePlayer(s.ctx, "ABC", "Alice")
	s.Require().NoError(err)
	s.Equal(record, again)
}

func (s *RepositorySuite) TestEnsurePlayerReplacesMalformed() {
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte("not json")))

	record, err := s.repo.EnsurePlayer(s.ctx, "ABC", "Alice")
	s.Require().NoError(err)
	s.Equal(model.DefaultPlayerRecord("Alice"), *record)
}

func (s *RepositorySuite) TestSavePlayerOverwrites() {
	err := s.repo.SavePlayer(s.ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20})
	s.Require().NoError(err)
	err = s.repo.SavePlayer(s.ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Gimli", MaxHP: 12, CurrentHP: 3})
	s.Require().NoError(err)

	record, err := s.repo.GetPlayer(s.ctx, "ABC", "Alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerRecord{PlayerName: "Alice", CharacterName: "Gimli", MaxHP: 12, CurrentHP: 3}, *record)
}

func (s *RepositorySuite) TestGetPlayerNotFound() {
	_, err := s.repo.GetPlayer(s.ctx, "ABC", "Nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *RepositorySuite) TestGetPlayerMalformed() {
	logger, logs := testutil.CaptureLogger()
	repo := New(s.store, logger)
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte(`{"name":"Thorin"}`)))

	_, err := repo.GetPlayer(s.ctx, "ABC", "Alice")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.Contains(logs.String(), "treating malformed player record as absent")
	s.Contains(logs.String(), `"player":"Alice"`)
}

func (s *RepositorySuite) TestGetPlayerToleratesPlayerNameField() {
	raw := `{"playerName":"Alice","name":"Thorin","maxHP":20,"currentHP":20}`
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Alice", []byte(raw)))

	record, err := s.repo.GetPlayer(s.ctx, "ABC", "Alice")
	s.Require().NoError(err)
	s.Equal("Thorin", record.CharacterName)
}

func (s *RepositorySuite) TestListPlayersSkipsMalformed() {
	s.Require().NoError(s.repo.SavePlayer(s.ctx, "ABC", "Bob", model.PlayerRecord{}))
	s.Require().NoError(s.repo.SavePlayer(s.ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20}))
	s.Require().NoError(s.store.Set(s.ctx, "rooms/ABC/players/Eve", []byte("{")))
	s.Require().NoError(s.repo.SavePlayer(s.ctx, "XYZ", "Carol", model.PlayerRecord{CharacterName: "Lia"}))

	records, err := s.repo.ListPlayers(s.ctx, "ABC")
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(model.PlayerName("Alice"), records[0].PlayerName)
	s.Equal(model.PlayerName("Bob"), records[1].PlayerName)
}

func (s *RepositorySuite) TestAdjustHealthClamps() {
	err := s.repo.SavePlayer(s.ctx, "ABC", "Alice", model.PlayerRecord{CharacterName: "Thorin", MaxHP: 20, CurrentHP: 20})
	s.Require().NoError(err)

	record, err := s.repo.AdjustHealth(s.ctx, "ABC", "Alice", -5)
	s.Require().NoError(err)
	s.Equal(15, record.CurrentHP)

	record, err = s.repo.AdjustHealth(s.ctx, "ABC", "Alice", -100)
	s.Require().NoError(err)
	s.Equal(0, record.CurrentHP)

	record, err = s.repo.AdjustHealth(s.ctx, "ABC", "Alice", 50)
	s.Require().NoError(err)
	s.Equal(20, record.CurrentHP)

	stored, err := s.repo.GetPlayer(s.ctx, "ABC", "Alice")
	s.Require().NoError(err)
	s.Equal(20, stored.CurrentHP)
}

func (s *RepositorySuite) TestAdjustHealthMissingPlayer() {
	_, err := s.repo.AdjustHealth(s.ctx, "ABC", "Nobody", 1)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    model.PlayerRecord
		wantErr bool
	}{
		{"full record", `{"name":"Thorin","maxHP":20,"currentHP":15}`, model.PlayerRecord{PlayerName: "Alice", CharacterName: "Thorin", MaxHP: 20, CurrentHP: 15}, false},
		{"default record", `{"name":"","maxHP":0,"currentHP":0}`, model.PlayerRecord{PlayerName: "Alice"}, false},
		{"not json", `hello`, model.PlayerRecord{}, true},
		{"missing maxHP", `{"name":"Thorin","currentHP":15}`, model.PlayerRecord{}, true},
		{"wrong type", `{"name":"Thorin","maxHP":"20","currentHP":15}`, model.PlayerRecord{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode("Alice", []byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrMalformedRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	repo := New(store, testutil.NopLogger())
	ctx := context.Background()
	unavailable := errors.New("connection refused")

	t.Run("get propagates store errors", func(t *testing.T) {
		store.EXPECT().Get(gomock.Any(), "rooms/ABC/players/Alice").Return(nil, unavailable)

		_, err := repo.GetPlayer(ctx, "ABC", "Alice")
		assert.ErrorIs(t, err, unavailable)
		assert.NotErrorIs(t, err, model.ErrPlayerNotFound)
	})

	t.Run("ensure does not write when the read fails", func(t *testing.T) {
		store.EXPECT().Get(gomock.Any(), "rooms/ABC/players/Alice").Return(nil, unavailable)

		_, err := repo.EnsurePlayer(ctx, "ABC", "Alice")
		assert.ErrorIs(t, err, unavailable)
	})

	t.Run("ensure writes default when absent", func(t *testing.T) {
		store.EXPECT().Get(gomock.Any(), "rooms/ABC/players/Alice").Return(nil, storage.ErrNotFound)
		store.EXPECT().Set(gomock.Any(), "rooms/ABC/players/Alice", []byte(`{"name":"","maxHP":0,"currentHP":0}`)).Return(nil)

		record, err := repo.EnsurePlayer(ctx, "ABC", "Alice")
		require.NoError(t, err)
		assert.Equal(t, model.PlayerName("Alice"), record.PlayerName)
	})

	t.Run("save propagates store errors", func(t *testing.T) {
		store.EXPECT().Set(gomock.Any(), "rooms/ABC/players/Alice", gomock.Any()).Return(unavailable)

		err := repo.SavePlayer(ctx, "ABC", "Alice", model.PlayerRecord{})
		assert.ErrorIs(t, err, unavailable)
	})

	t.Run("list propagates store errors", func(t *testing.T) {
		store.EXPECT().List(gomock.Any(), "rooms/ABC/players").Return(nil, unavailable)

		_, err := repo.ListPlayers(ctx, "ABC")
		assert.ErrorIs(t, err, unavailable)
	})
}
