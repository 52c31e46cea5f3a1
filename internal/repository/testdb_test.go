package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// newTestDB поднимает базу в памяти со схемой из миграций
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	// Одно соединение, иначе каждое получит собственную базу в памяти
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init.up.sql"))
	require.NoError(t, err)

	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *sqlx.DB, sessionID string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(
		`INSERT INTO users (session_id) VALUES (?) RETURNING id`, sessionID).Scan(&id)
	require.NoError(t, err)

	return id
}
