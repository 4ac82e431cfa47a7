package peerreviews

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/peerreviews/internal/sources/local"
	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence handles writing the merged list to disk.
type Persistence interface {
	// Save writes the merged entries as a {meta, entries} document, in YAML
	// when path ends in .yaml or .yml and JSON otherwise.
	Save(path string) error
}

// Save persists the current snapshot to path.
func (c *client) Save(path string) error {
	if path == "" {
		return &errors.ValidationError{Field: "path", Message: "cannot be empty"}
	}

	snap := c.Snapshot()
	list := make([]any, len(snap.Entries))
	for i, e := range snap.Entries {
		list[i] = e
	}
	meta := &sources.Meta{Source: "merged"}
	if snap.LastUpdated != nil {
		meta.FetchedAt = snap.LastUpdated.UTC().Format(time.RFC3339)
	}
	doc := &sources.Payload{Meta: meta, Entries: list}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if local.IsYAML(path) {
		if data, err = yaml.JSONToYAML(data); err != nil {
			return errors.WrapParse("yaml", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
