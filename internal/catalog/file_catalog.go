package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/revisit/internal/repetition"
)

// FileCatalog reads completed items from a YAML file of the form
//
//	users:
//	  alice:
//	    - item_id: 1
//	      slug: two-sum
//	      name: Two Sum
//	      difficulty: easy
//	      topic: arrays
//
// The file is read on every call so edits are picked up without a restart.
type FileCatalog struct {
	path string
}

func NewFileCatalog(path string) *FileCatalog {
	return &FileCatalog{path: path}
}

type catalogFile struct {
	Users map[string][]item `yaml:"users"`
}

func (c *FileCatalog) CompletedItems(ctx context.Context, userID string) ([]repetition.ReviewableRef, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", c.path, err)
	}
	defer func() { _ = f.Close() }()

	var content catalogFile
	if err := yaml.NewDecoder(f).Decode(&content); err != nil {
		return nil, fmt.Errorf("yaml.Decode(%s) > %w", c.path, err)
	}
	return toRefs(content.Users[userID])
}
