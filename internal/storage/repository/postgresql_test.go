package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage_CheckDatabaseReady(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	require.NoError(t, storage.CheckDatabaseReady())
}

func TestStorage_CheckDatabaseReady_MissingSchema(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.DB.Exec(`DROP TABLE payments; DROP TABLE sessions; DROP TABLE users;`)
	require.NoError(t, err)

	require.Error(t, storage.CheckDatabaseReady())
}
