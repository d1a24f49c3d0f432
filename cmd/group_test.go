package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/sells-group/placefinder/internal/location"
)

func resetGroupFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		groupStdin = false
		groupFormat = "text"
	})
}

func TestGroupCommand_Args(t *testing.T) {
	chdirTemp(t)
	resetGroupFlags(t)

	out, err := execute(t, "", "group", "Goa", "Wakad", "Dubai", "Aundh")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"local_zone (2)",
		"  Aundh",
		"  Wakad",
		"domestic (1)",
		"  Goa",
		"international (1)",
		"  Dubai",
		"",
	}, "\n"), out)
}

func TestGroupCommand_StdinJSON(t *testing.T) {
	chdirTemp(t)
	resetGroupFlags(t)

	out, err := execute(t, "Baner\n\n  Doha \nMumbai\n", "group", "--stdin", "--format", "json")
	require.NoError(t, err)

	var got location.Grouped
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"Baner"}, got.LocalZone)
	assert.Equal(t, []string{"Mumbai"}, got.Domestic)
	assert.Equal(t, []string{"Doha"}, got.International)
}

func TestGroupCommand_Catalog(t *testing.T) {
	dir := chdirTemp(t)
	resetGroupFlags(t)

	dbPath := filepath.Join(dir, "listings.db")
	conn, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = conn.Exec(`CREATE TABLE listings (location TEXT)`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO listings VALUES ('Hadapsar'), ('Toronto'), ('Hadapsar'), ('Jaipur')`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	t.Setenv("PLACEFINDER_CATALOG_DRIVER", "sqlite")
	t.Setenv("PLACEFINDER_CATALOG_DATABASE_URL", dbPath)

	out, err := execute(t, "", "group", "--format", "yaml")
	require.NoError(t, err)

	var got location.Grouped
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"Hadapsar"}, got.LocalZone)
	assert.Equal(t, []string{"Jaipur"}, got.Domestic)
	assert.Equal(t, []string{"Toronto"}, got.International)
}

func TestGroupCommand_CatalogNotConfigured(t *testing.T) {
	chdirTemp(t)
	resetGroupFlags(t)

	_, err := execute(t, "", "group")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.driver is required")
}

func TestWriteGrouped_UnknownFormat(t *testing.T) {
	err := writeGrouped(&bytes.Buffer{}, "xml", location.Grouped{})
	assert.Error(t, err)
}

func TestReadLines(t *testing.T) {
	got, err := readLines(strings.NewReader("a\n \n b \r\nc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
