package schema

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/plugboard/plugboard/pkg/plugins"
)

// SchemaDirName is the per-plugin directory scanned for descriptors.
const SchemaDirName = "schema"

// FilesystemDiscoverer finds schema descriptors under
// <root>/<id>/schema/.
type FilesystemDiscoverer struct {
	root string
	log  *logrus.Logger
}

// NewFilesystemDiscoverer creates a discoverer rooted at the plugin root.
func NewFilesystemDiscoverer(root string, log *logrus.Logger) *FilesystemDiscoverer {
	if log == nil {
		log = logrus.New()
	}
	return &FilesystemDiscoverer{root: root, log: log}
}

// Discover returns the plugin's schema descriptors. A plugin without a
// schema directory has no schema; that is not an error.
func (d *FilesystemDiscoverer) Discover(ctx context.Context, id string) ([]plugins.SchemaDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(d.root, id, SchemaDirName)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory for %s: %w", id, err)
	}

	var descriptors []plugins.SchemaDescriptor
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		path := filepath.Join(dir, name)

		switch strings.ToLower(filepath.Ext(name)) {
		case ".sql":
			payload, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read descriptor %s: %w", name, err)
			}
			descriptors = append(descriptors, plugins.SchemaDescriptor{
				Type:    TypeSQL,
				Name:    name,
				Payload: payload,
			})
		case ".yaml", ".yml":
			desc, err := loadTypedDescriptor(path, name)
			if err != nil {
				return nil, err
			}
			descriptors = append(descriptors, desc)
		default:
			d.log.Debugf("Skipping non-descriptor file %s for plugin %s", name, id)
		}
	}

	return descriptors, nil
}

// loadTypedDescriptor reads a YAML descriptor whose top-level type field
// selects the activator. The full file body stays the payload.
func loadTypedDescriptor(path, name string) (plugins.SchemaDescriptor, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return plugins.SchemaDescriptor{}, fmt.Errorf("failed to read descriptor %s: %w", name, err)
	}

	var header struct {
		Type string `yaml:"type"`
	}
	if err := yaml.Unmarshal(payload, &header); err != nil {
		return plugins.SchemaDescriptor{}, fmt.Errorf("failed to parse descriptor %s: %w", name, err)
	}
	if header.Type == "" {
		return plugins.SchemaDescriptor{}, fmt.Errorf("descriptor %s is missing a type field", name)
	}

	return plugins.SchemaDescriptor{
		Type:    header.Type,
		Name:    name,
		Payload: payload,
	}, nil
}
