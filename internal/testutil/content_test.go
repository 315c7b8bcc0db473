package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldTables_ReturnsCopy(t *testing.T) {
	a := WorldTables()
	delete(a, "rooms.csv")
	b := WorldTables()
	assert.Contains(t, b, "rooms.csv")
}

func TestWriteTables_CreatesNestedFiles(t *testing.T) {
	dir := WriteTables(t, map[string]string{
		"rooms.csv":           "Index,Status\n",
		"fixtures/quests.csv": "Index,Status\n",
	})

	data, err := os.ReadFile(filepath.Join(dir, "fixtures", "quests.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Index,Status\n", string(data))
	assert.FileExists(t, filepath.Join(dir, "rooms.csv"))
}

func TestWorldContent_HasEveryTopLevelTable(t *testing.T) {
	dir := WorldContent(t)
	for _, name := range []string{
		"config.csv", "factions.csv", "rooms.csv", "nodes.csv", "items.csv", "npcs.csv",
		"listings.csv", "auctions.csv", "quests.csv", "skills.csv", "traits.csv",
		"recipes.csv", "relationships.csv", "goals.csv",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}
