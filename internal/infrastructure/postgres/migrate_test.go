package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://app:secret@db:5432/shop?sslmode=disable":   "pgx5://app:secret@db:5432/shop?sslmode=disable",
		"postgresql://app:secret@db:5432/shop?sslmode=disable": "pgx5://app:secret@db:5432/shop?sslmode=disable",
		"pgx5://already":                                       "pgx5://already",
	}
	for in, want := range tests {
		assert.Equal(t, want, migrateURL(in), in)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrations, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
