package badge_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/presto-relay/presto/internal/badge"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests are skipped in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("presto"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
		testcontainers.CustomizeRequestOption(func(req *testcontainers.GenericContainerRequest) error {
			req.ContainerRequest.WaitingFor = wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second)
			return nil
		}),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		container.Terminate(ctx)
	})
	return db
}

func TestRepository(t *testing.T) {
	db := setupPostgres(t)
	repo := badge.NewRepository(db)
	require.NoError(t, repo.CreateTable())

	participant := badge.Record{
		ColorCode:  0x2050a0,
		Level:      3,
		Levels:     5,
		CourseCode: "CS101",
		CourseName: "Intro to CS",
		Owner:      badge.Participant{Name: "A. Tester", Email: "a.tester@example.com", Relay: "Relay A"},
	}
	id, err := repo.SaveBadge(participant)
	require.NoError(t, err)

	got, err := repo.GetBadge(id)
	require.NoError(t, err)
	assert.Equal(t, participant.Owner, got.Owner)
	assert.Equal(t, participant.Payload().Program, got.Payload().Program)
	assert.False(t, got.LastRenderedAt.Valid)

	referee := participant
	referee.Owner = badge.Referee{ID: 9, Name: "R. Eviewer", Email: "r@example.com", Template: "Peer review"}
	refID, err := repo.SaveBadge(referee)
	require.NoError(t, err)
	got, err = repo.GetBadge(refID)
	require.NoError(t, err)
	assert.Equal(t, referee.Owner, got.Owner)

	_, err = repo.GetBadge(refID + 100)
	assert.ErrorIs(t, err, badge.ErrNotFound)
	assert.ErrorIs(t, repo.MarkVerified(refID+100, time.Now()), badge.ErrNotFound)

	engine := badge.NewEngine(repo, badge.Hasher{Salt: []byte("salt"), Iterations: 32}, nil, zerolog.Nop())
	img, err := engine.Certify(id)
	require.NoError(t, err)
	rec, err := engine.Verify(img)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.VerifyCount)

	got, err = repo.GetBadge(id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RenderCount)
	assert.Equal(t, 1, got.VerifyCount)
	assert.True(t, got.LastRenderedAt.Valid)
	assert.True(t, got.LastVerifiedAt.Valid)

	require.NoError(t, repo.UpdateLevel(id, 4))
	_, err = engine.Verify(img)
	assert.ErrorIs(t, err, badge.ErrLevelMismatch)
}
