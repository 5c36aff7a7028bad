package database

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestSeedDataIsIdempotent(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)

	require.NoError(t, AutoMigrateAndSeed(db))
	require.NoError(t, AutoMigrateAndSeed(db))

	var orgs []models.Organization
	require.NoError(t, db.Find(&orgs).Error)
	require.Len(t, orgs, 1)
	require.Equal(t, MainOrganizationName, orgs[0].Name)

	var teams []models.Team
	require.NoError(t, db.Find(&teams).Error)
	require.Len(t, teams, 1)
	require.Equal(t, models.UncategorizedTeamID, teams[0].ID)
	require.True(t, teams[0].IsSystem)
	require.Equal(t, 0, teams[0].OrderIndex)
}

func TestTeamIDColumnHoldsSentinelOnAllDialects(t *testing.T) {
	// The system team keys on the literal "uncategorized", so the primary
	// key must not declare a uuid column type anywhere it would be enforced.
	for _, model := range []any{&models.Team{}, &models.Organization{}} {
		parsed, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)

		id := parsed.LookUpField("ID")
		require.NotNil(t, id)
		require.Equal(t, schema.String, id.DataType)
		require.Empty(t, id.TagSettings["TYPE"])
	}
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "worker", Password: "pw", Name: "tago"})
	require.NoError(t, err)
	require.Contains(t, dsn, "worker:pw@tcp(127.0.0.1:3306)/tago?")
	require.Contains(t, dsn, "parseTime=True")

	_, err = buildMySQLDSN(Config{User: "worker"})
	require.Error(t, err)
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "worker", Name: "tago"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{Name: "tago"})
	require.Error(t, err)
}
