package vault

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"vanish-go/internal/database"
	"vanish-go/internal/database/migrate"
)

var (
	testDatabase string
	testPassword string
	testUsername string
	testHost     string
	testPort     string
)

// mustStartPostgresContainer starts a PostgreSQL container for testing
func mustStartPostgresContainer() (func(context.Context) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "testpass"
		dbUser = "testuser"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	testDatabase = dbName
	testPassword = dbPwd
	testUsername = dbUser

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	testHost = dbHost
	testPort = dbPort.Port()

	return dbContainer.Terminate, err
}

func TestMain(m *testing.M) {
	teardown, err := mustStartPostgresContainer()
	if err != nil {
		log.Fatal().
			Err(err).
			Msg("could not start postgres container")
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatal().
			Err(err).
			Msg("could not teardown postgres container")
	}
}

// setupTestDB creates a test database instance
func setupTestDB(t *testing.T) *database.DB {
	cfg := database.Config{
		Host:     testHost,
		Port:     testPort,
		Database: testDatabase,
		Username: testUsername,
		Password: testPassword,
		Schema:   "public",
	}
	db, err := database.New(cfg)
	require.NoError(t, err)
	require.NotNil(t, db)

	// Run migrations
	err = migrate.RunMigrations(db.DB)
	require.NoError(t, err)

	return db
}

func TestPostgresStoreSaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPostgresStore(db.DB)
	ctx := context.Background()

	obj := testObject(t)
	obj.Countdown = intPtr(4)
	obj.ValidUntil = timePtr(time.Now().Add(time.Hour).UTC())
	obj.ContentType = "text/plain; charset=utf-8"
	require.NoError(t, store.Save(ctx, obj))

	loaded, err := store.Load(ctx, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, obj.ID, loaded.ID)
	assert.Equal(t, obj.Name, loaded.Name)
	assert.Equal(t, obj.ContentType, loaded.ContentType)
	require.NotNil(t, loaded.Countdown)
	assert.Equal(t, 4, *loaded.Countdown)
	require.NotNil(t, loaded.ValidUntil)
	assert.WithinDuration(t, *obj.ValidUntil, *loaded.ValidUntil, time.Second)
}

func TestPostgresStoreLoadMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPostgresStore(db.DB)

	_, err := store.Load(context.Background(), "doesnotexist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreSaveUpdatesAccessState(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPostgresStore(db.DB)
	ctx := context.Background()

	obj := testObject(t)
	obj.Countdown = intPtr(2)
	require.NoError(t, store.Save(ctx, obj))

	*obj.Countdown = 1
	obj.AccessedTimes = 1
	now := time.Now().UTC()
	obj.AccessedAt = &now
	require.NoError(t, store.Save(ctx, obj))

	loaded, err := store.Load(ctx, obj.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Countdown)
	assert.Equal(t, 1, *loaded.Countdown)
	assert.Equal(t, 1, loaded.AccessedTimes)
	require.NotNil(t, loaded.AccessedAt)
}

func TestPostgresStoreRemovalStampIsWriteOnce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPostgresStore(db.DB)
	ctx := context.Background()

	obj := testObject(t)
	require.NoError(t, store.Save(ctx, obj))

	first := time.Now().UTC()
	obj.RemovedAt = &first
	obj.RemovedBecause = ReasonExpired
	require.NoError(t, store.Save(ctx, obj))

	// A later save must not overwrite the recorded removal.
	later := first.Add(time.Hour)
	obj.RemovedAt = &later
	obj.RemovedBecause = ReasonOver
	require.NoError(t, store.Save(ctx, obj))

	loaded, err := store.Load(ctx, obj.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.RemovedAt)
	assert.WithinDuration(t, first, *loaded.RemovedAt, time.Second)
	assert.Equal(t, ReasonExpired, loaded.RemovedBecause)
}

func TestPostgresStoreList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewPostgresStore(db.DB)
	ctx := context.Background()

	before, err := store.List(ctx)
	require.NoError(t, err)

	want := make(map[string]struct{})
	for i := 0; i < 3; i++ {
		obj := testObject(t)
		require.NoError(t, store.Save(ctx, obj))
		want[obj.ID] = struct{}{}
	}

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, len(before)+len(want))
	found := 0
	for _, id := range ids {
		if _, ok := want[id]; ok {
			found++
		}
	}
	assert.Equal(t, len(want), found)
}
