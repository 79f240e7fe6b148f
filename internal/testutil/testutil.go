// Package testutil provides shared test helpers for creating config files and catalog fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/revisit/internal/repetition"
)

// DefaultCatalog is the catalog written by SetupTestConfig.
var DefaultCatalog = map[string][]repetition.ReviewableRef{
	"alice": {
		{ItemID: 1, Slug: "two-sum", Name: "Two Sum", Difficulty: "easy", Topic: "arrays"},
		{ItemID: 146, Slug: "lru-cache", Name: "LRU Cache", Difficulty: "medium", Topic: "design"},
	},
	"bob": {
		{ItemID: 20, Slug: "valid-parentheses", Name: "Valid Parentheses", Difficulty: "easy", Topic: "stack"},
	},
}

// SetupTestConfig creates a config file backed by a SQLite database and a
// file catalog inside tmpDir. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	catalogPath := filepath.Join(tmpDir, "catalog.yml")
	WriteCatalog(t, catalogPath, DefaultCatalog)

	configContent := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
schedule:
  timezone: UTC
catalog:
  source: file
  file: %s
outputs:
  export_directory: %s
  report_directory: %s
`,
		filepath.Join(tmpDir, "data", "revisit.db"),
		catalogPath,
		filepath.Join(tmpDir, "export"),
		filepath.Join(tmpDir, "report"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0o644))
	return cfgPath
}

type catalogItem struct {
	ItemID     int64  `yaml:"item_id"`
	Slug       string `yaml:"slug"`
	Name       string `yaml:"name"`
	Difficulty string `yaml:"difficulty,omitempty"`
	Topic      string `yaml:"topic,omitempty"`
}

// WriteCatalog writes a file catalog with the completed items of each user.
func WriteCatalog(t *testing.T, path string, users map[string][]repetition.ReviewableRef) {
	t.Helper()

	content := struct {
		Users map[string][]catalogItem `yaml:"users"`
	}{Users: make(map[string][]catalogItem, len(users))}
	for userID, refs := range users {
		for _, ref := range refs {
			content.Users[userID] = append(content.Users[userID], catalogItem{
				ItemID:     ref.ItemID,
				Slug:       ref.Slug,
				Name:       ref.Name,
				Difficulty: ref.Difficulty,
				Topic:      ref.Topic,
			})
		}
	}

	data, err := yaml.Marshal(content)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
