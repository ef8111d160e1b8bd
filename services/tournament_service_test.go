package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pongnight/bracket-server/bracket"
	"github.com/pongnight/bracket-server/models"
)

type serviceFixture struct {
	players     *fakePlayerRepo
	teams       *fakeTeamRepo
	matches     *fakeMatchRepo
	tournaments *fakeTournamentRepo
	svc         TournamentService
}

func newServiceFixture(t *testing.T, players ...models.Player) *serviceFixture {
	t.Helper()
	playerRepo := newFakePlayerRepo(players...)
	teamRepo := &fakeTeamRepo{}
	matchRepo := &fakeMatchRepo{}
	tournamentRepo := &fakeTournamentRepo{teamRepo: teamRepo, matchRepo: matchRepo}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &serviceFixture{
		players:     playerRepo,
		teams:       teamRepo,
		matches:     matchRepo,
		tournaments: tournamentRepo,
		svc:         NewTournamentService(playerRepo, teamRepo, matchRepo, tournamentRepo, nil, logger),
	}
}

func (f *serviceFixture) createTournament(t *testing.T, ids []string, buyIn float64) *models.Tournament {
	t.Helper()
	tournament, err := f.svc.CreateTournament(context.Background(), CreateTournamentInput{
		Name:      "Friday Night",
		PlayerIDs: ids,
		Mode:      bracket.PairingRandom,
		BuyIn:     buyIn,
	})
	require.NoError(t, err)
	return tournament
}

func (f *serviceFixture) submitScore(t *testing.T, tournamentID, matchID string, s1, s2 int) *models.Tournament {
	t.Helper()
	tournament, err := f.svc.UpdateMatchScore(context.Background(), UpdateMatchScoreInput{
		TournamentID: tournamentID,
		MatchID:      matchID,
		Score1:       s1,
		Score2:       s2,
		Complete:     true,
	})
	require.NoError(t, err)
	return tournament
}

func TestCreateTournamentThreePlayers(t *testing.T) {
	players := testPlayers(3)
	f := newServiceFixture(t, players...)

	tournament := f.createTournament(t, playerIDs(players), 20)

	assert.Equal(t, models.StatusSetup, tournament.Status)
	assert.Equal(t, 1, tournament.CurrentRound)
	assert.Equal(t, 60.0, tournament.Pot)

	require.Len(t, tournament.Teams, 2)
	solo := 0
	for _, team := range tournament.Teams {
		if team.Solo {
			solo++
		}
	}
	assert.Equal(t, 1, solo)

	// Две команды — ровно один матч первого раунда, без bye.
	require.Len(t, tournament.Matches, 1)
	assert.False(t, tournament.Matches[0].IsBye())
	assert.Equal(t, 1, tournament.Matches[0].Round)
}

func TestCreateTournamentValidation(t *testing.T) {
	players := testPlayers(3)
	f := newServiceFixture(t, players...)
	ctx := context.Background()

	_, err := f.svc.CreateTournament(ctx, CreateTournamentInput{PlayerIDs: playerIDs(players), Mode: bracket.PairingRandom})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	_, err = f.svc.CreateTournament(ctx, CreateTournamentInput{Name: "x", PlayerIDs: playerIDs(players), Mode: bracket.PairingRandom, BuyIn: -5})
	assert.ErrorIs(t, err, ErrNegativeBuyIn)

	_, err = f.svc.CreateTournament(ctx, CreateTournamentInput{Name: "x", PlayerIDs: []string{"player-1"}, Mode: bracket.PairingRandom})
	assert.ErrorIs(t, err, bracket.ErrInsufficientPlayers)

	_, err = f.svc.CreateTournament(ctx, CreateTournamentInput{Name: "x", PlayerIDs: []string{"player-1", "ghost"}, Mode: bracket.PairingRandom})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	// Два игрока дают одну команду — сетку построить нельзя, и в
	// хранилище ничего не должно остаться.
	_, err = f.svc.CreateTournament(ctx, CreateTournamentInput{Name: "x", PlayerIDs: []string{"player-1", "player-2"}, Mode: bracket.PairingRandom})
	assert.ErrorIs(t, err, bracket.ErrInsufficientTeams)
	assert.Empty(t, f.tournaments.tournaments)
	assert.Empty(t, f.teams.teams)
}

func TestCreateTournamentStorageFailureLeavesNothing(t *testing.T) {
	players := testPlayers(4)
	ctx := context.Background()
	boom := errors.New("insert failed")

	// Сбой на вставке матчей: ни турнира, ни осиротевших команд.
	f := newServiceFixture(t, players...)
	f.matches.createErr = boom
	_, err := f.svc.CreateTournament(ctx, CreateTournamentInput{
		Name: "x", PlayerIDs: playerIDs(players), Mode: bracket.PairingRandom,
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.tournaments.tournaments)
	assert.Empty(t, f.teams.teams)
	assert.Empty(t, f.matches.matches)

	// Сбой на вставке команд: то же самое.
	f = newServiceFixture(t, players...)
	f.teams.createErr = boom
	_, err = f.svc.CreateTournament(ctx, CreateTournamentInput{
		Name: "x", PlayerIDs: playerIDs(players), Mode: bracket.PairingRandom,
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.tournaments.tournaments)
	assert.Empty(t, f.teams.teams)
	assert.Empty(t, f.matches.matches)
}

func TestUpdateMatchScoreTiedScoreRejected(t *testing.T) {
	players := testPlayers(4)
	f := newServiceFixture(t, players...)
	tournament := f.createTournament(t, playerIDs(players), 10)
	match := tournament.Matches[0]

	_, err := f.svc.UpdateMatchScore(context.Background(), UpdateMatchScoreInput{
		TournamentID: tournament.ID,
		MatchID:      match.ID,
		Score1:       5,
		Score2:       5,
		Complete:     true,
	})
	assert.ErrorIs(t, err, ErrTiedScore)

	// Ничья отклоняется до любых записей: матч, статус и статистика нетронуты.
	stored, err := f.matches.GetByID(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Score1)
	assert.Equal(t, 0, stored.Score2)
	assert.False(t, stored.IsComplete)

	after, err := f.svc.GetTournament(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSetup, after.Status)

	all, _ := f.players.List(context.Background())
	for _, p := range all {
		assert.Zero(t, p.Wins)
		assert.Zero(t, p.Losses)
	}
}

func TestUpdateMatchScoreSaveProgress(t *testing.T) {
	players := testPlayers(4)
	f := newServiceFixture(t, players...)
	tournament := f.createTournament(t, playerIDs(players), 0)
	match := tournament.Matches[0]

	after, err := f.svc.UpdateMatchScore(context.Background(), UpdateMatchScoreInput{
		TournamentID: tournament.ID,
		MatchID:      match.ID,
		Score1:       7,
		Score2:       7,
		Complete:     false,
	})
	require.NoError(t, err)

	// Любой сабмит счёта активирует турнир, даже промежуточный.
	assert.Equal(t, models.StatusActive, after.Status)

	stored, err := f.matches.GetByID(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.Score1)
	assert.Equal(t, 7, stored.Score2)
	assert.False(t, stored.IsComplete)
	assert.Nil(t, stored.WinnerID)

	all, _ := f.players.List(context.Background())
	for _, p := range all {
		assert.Zero(t, p.Wins)
		assert.Zero(t, p.Losses)
	}
}

func TestUpdateMatchScoreCompletesSingleMatchTournament(t *testing.T) {
	players := testPlayers(4)
	f := newServiceFixture(t, players...)
	tournament := f.createTournament(t, playerIDs(players), 25) // банк 100
	match := tournament.Matches[0]

	after := f.submitScore(t, tournament.ID, match.ID, 10, 7)

	assert.Equal(t, models.StatusCompleted, after.Status)
	require.NotNil(t, after.WinnerTeamID)
	assert.Equal(t, match.Team1ID, *after.WinnerTeamID)

	winner := after.TeamByID(match.Team1ID)
	runnerUp := after.TeamByID(*match.Team2ID)
	require.NotNil(t, winner)
	require.NotNil(t, runnerUp)

	// 70/30 банка, доля команды делится поровну между двумя игроками.
	for _, id := range winner.PlayerIDs() {
		p, err := f.players.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Wins)
		assert.Equal(t, 0, p.Losses)
		assert.InDelta(t, 35.0, p.Winnings, 1e-9)
	}
	for _, id := range runnerUp.PlayerIDs() {
		p, err := f.players.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Wins)
		assert.Equal(t, 1, p.Losses)
		assert.InDelta(t, 15.0, p.Winnings, 1e-9)
	}
}

func TestUpdateMatchScoreAdvancesRound(t *testing.T) {
	players := testPlayers(8)
	f := newServiceFixture(t, players...)
	tournament := f.createTournament(t, playerIDs(players), 10)
	require.Len(t, tournament.Matches, 2)

	after := f.submitScore(t, tournament.ID, tournament.Matches[0].ID, 11, 3)
	assert.Equal(t, 1, after.CurrentRound)
	assert.Len(t, after.Matches, 2)

	after = f.submitScore(t, tournament.ID, tournament.Matches[1].ID, 4, 11)
	assert.Equal(t, models.StatusActive, after.Status)
	assert.Equal(t, 2, after.CurrentRound)
	require.Len(t, after.Matches, 3)

	final := after.Matches[2]
	assert.Equal(t, 2, final.Round)
	assert.False(t, final.IsBye())

	// Финал двигает турнир в COMPLETED.
	after = f.submitScore(t, tournament.ID, final.ID, 11, 9)
	assert.Equal(t, models.StatusCompleted, after.Status)
	require.NotNil(t, after.WinnerTeamID)
	assert.Equal(t, final.Team1ID, *after.WinnerTeamID)
}

func TestUpdateMatchScoreGuards(t *testing.T) {
	players := testPlayers(6)
	f := newServiceFixture(t, players...)
	tournament := f.createTournament(t, playerIDs(players), 0)
	// 3 команды: bye + один играемый матч.
	require.Len(t, tournament.Matches, 2)

	var bye, playable *models.Match
	for i := range tournament.Matches {
		if tournament.Matches[i].IsBye() {
			bye = &tournament.Matches[i]
		} else {
			playable = &tournament.Matches[i]
		}
	}
	require.NotNil(t, bye)
	require.NotNil(t, playable)
	ctx := context.Background()

	_, err := f.svc.UpdateMatchScore(ctx, UpdateMatchScoreInput{TournamentID: tournament.ID, MatchID: bye.ID, Score1: 1, Complete: true})
	assert.ErrorIs(t, err, ErrByeMatchImmutable)

	_, err = f.svc.UpdateMatchScore(ctx, UpdateMatchScoreInput{TournamentID: tournament.ID, MatchID: playable.ID, Score1: -1})
	assert.ErrorIs(t, err, ErrNegativeScore)

	_, err = f.svc.UpdateMatchScore(ctx, UpdateMatchScoreInput{TournamentID: tournament.ID, MatchID: "ghost", Score1: 1})
	assert.ErrorIs(t, err, ErrMatchNotFound)

	after := f.submitScore(t, tournament.ID, playable.ID, 11, 8)
	assert.Equal(t, 2, after.CurrentRound)

	_, err = f.svc.UpdateMatchScore(ctx, UpdateMatchScoreInput{TournamentID: tournament.ID, MatchID: playable.ID, Score1: 2, Complete: true})
	assert.ErrorIs(t, err, ErrMatchAlreadyComplete)

	// Довести до конца и проверить защиту завершённого турнира.
	final := after.Matches[2]
	after = f.submitScore(t, tournament.ID, final.ID, 11, 6)
	require.Equal(t, models.StatusCompleted, after.Status)

	_, err = f.svc.UpdateMatchScore(ctx, UpdateMatchScoreInput{TournamentID: tournament.ID, MatchID: final.ID, Score1: 1, Complete: true})
	assert.ErrorIs(t, err, ErrTournamentOver)
}

func TestActivateTournament(t *testing.T) {
	players := testPlayers(4)
	f := newServiceFixture(t, players...)
	tournament := f.createTournament(t, playerIDs(players), 0)
	ctx := context.Background()

	after, err := f.svc.ActivateTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, after.Status)

	// Повторная активация — no-op.
	after, err = f.svc.ActivateTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, after.Status)

	f.submitScore(t, tournament.ID, tournament.Matches[0].ID, 11, 2)
	_, err = f.svc.ActivateTournament(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentOver)
}

func TestFixTournamentBracket(t *testing.T) {
	players := testPlayers(6)
	f := newServiceFixture(t, players...)
	tournament := f.createTournament(t, playerIDs(players), 0)
	require.Len(t, tournament.Matches, 2)

	// Повреждённое состояние: команды есть, матчи потеряны.
	f.matches.mu.Lock()
	f.matches.matches = nil
	f.matches.mu.Unlock()

	fixed, err := f.svc.FixTournamentBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Len(t, fixed.Matches, 2)
	assert.Equal(t, 1, fixed.CurrentRound)

	// Идемпотентность: повторный вызов ничего не добавляет.
	again, err := f.svc.FixTournamentBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Len(t, again.Matches, 2)
	stored, _ := f.matches.ListByTournament(context.Background(), tournament.ID)
	assert.Len(t, stored, 2)
}

func TestGetBracketView(t *testing.T) {
	players := testPlayers(4)
	f := newServiceFixture(t, players...)
	tournament := f.createTournament(t, playerIDs(players), 10)
	match := tournament.Matches[0]

	view, err := f.svc.GetBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.False(t, view.IsComplete)
	assert.Nil(t, view.Winner)
	require.Len(t, view.Rounds, 1)
	assert.Equal(t, "Championship Round", view.Rounds[0].Label)

	f.submitScore(t, tournament.ID, match.ID, 9, 11)

	view, err = f.svc.GetBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.True(t, view.IsComplete)
	require.NotNil(t, view.Winner)
	assert.Equal(t, *match.Team2ID, view.Winner.ID)
	require.NotNil(t, view.RunnerUp)
	assert.Equal(t, match.Team1ID, view.RunnerUp.ID)
}

func TestDeleteTournament(t *testing.T) {
	players := testPlayers(4)
	f := newServiceFixture(t, players...)
	tournament := f.createTournament(t, playerIDs(players), 0)

	require.NoError(t, f.svc.DeleteTournament(context.Background(), tournament.ID))
	_, err := f.svc.GetTournament(context.Background(), tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	assert.ErrorIs(t, f.svc.DeleteTournament(context.Background(), "ghost"), ErrTournamentNotFound)
}
