package migrations

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	input := `
-- header comment
CREATE TABLE a (x String) ENGINE = Memory;

  -- indented comment
CREATE TABLE b (
    y UInt64
) ENGINE = Memory;
`
	stmts := splitStatements(input)
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a"))
	assert.Contains(t, stmts[1], "y UInt64")
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings("SELECT 'a''b'; SELECT 1;"))

	err := validateNoSemicolonInStrings("SELECT 'a;b'")
	assert.True(t, errors.Is(err, ErrSemicolonInString))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/launchpad")
	require.NoError(t, err)
	assert.Equal(t, "launchpad", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	pg, err := readMigrations(PostgresFS, "postgres")
	require.NoError(t, err)
	require.Len(t, pg, 2)
	assert.Equal(t, "001_tokens.sql", pg[0].Name)
	assert.Contains(t, pg[1].SQL, "REFERENCES tokens")

	ch, err := readMigrations(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, ch)
	for _, f := range ch {
		assert.NoError(t, validateNoSemicolonInStrings(f.SQL), f.Name)
		assert.NotEmpty(t, splitStatements(f.SQL), f.Name)
	}
}
