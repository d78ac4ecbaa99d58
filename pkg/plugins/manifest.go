package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ManifestFileName is the manifest file looked up inside a plugin directory.
const ManifestFileName = "plugin.yaml"

// manifestCacheSize bounds the provider's LRU; plugin counts are small, the
// bound only guards against pathological id churn.
const manifestCacheSize = 256

var semverRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)

// FilesystemProvider resolves manifests from <root>/<id>/plugin.yaml.
//
// Resolved manifests are cached so resolution is deterministic for the life
// of the process: a manifest edited on disk after its first resolution is
// not picked up until restart. The fsnotify watcher only reports such edits
// so operators know a restart is needed.
type FilesystemProvider struct {
	root    string
	cache   *lru.Cache[string, *Manifest]
	watcher *fsnotify.Watcher
	log     *logrus.Logger
}

// NewFilesystemProvider creates a manifest provider rooted at dir.
func NewFilesystemProvider(dir string, log *logrus.Logger) (*FilesystemProvider, error) {
	if log == nil {
		log = logrus.New()
	}

	cache, err := lru.New[string, *Manifest](manifestCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest cache: %w", err)
	}

	p := &FilesystemProvider{
		root:  dir,
		cache: cache,
		log:   log,
	}

	// The watcher is best effort; a provider without one still resolves.
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		if err := watcher.Add(dir); err == nil {
			p.watcher = watcher
			go p.watch()
		} else {
			watcher.Close()
			log.Debugf("Not watching plugin root %s: %v", dir, err)
		}
	}

	return p, nil
}

// Resolve returns the manifest for the given plugin id.
func (p *FilesystemProvider) Resolve(ctx context.Context, id string) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if manifest, ok := p.cache.Get(id); ok {
		return manifest, nil
	}

	path := filepath.Join(p.root, id, ManifestFileName)
	manifest, err := LoadManifest(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, id)
		}
		return nil, err
	}

	if validationErrors := ValidateManifest(manifest); len(validationErrors) > 0 {
		return nil, fmt.Errorf("manifest validation failed for %s: %v", id, validationErrors)
	}

	if manifest.ID != id {
		return nil, fmt.Errorf("manifest id %q does not match requested id %q", manifest.ID, id)
	}

	p.cache.Add(id, manifest)
	return manifest, nil
}

// Close releases the filesystem watcher, if any.
func (p *FilesystemProvider) Close() error {
	if p.watcher == nil {
		return nil
	}
	return p.watcher.Close()
}

// watch logs manifest changes on disk. Resolution intentionally keeps
// serving the cached manifest; changes take effect on restart.
func (p *FilesystemProvider) watch() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				p.log.Warnf("Plugin root changed on disk (%s); manifests are pinned until restart", event.Name)
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.log.Warnf("Plugin root watcher error: %v", err)
		}
	}
}

// LoadManifest loads and parses a plugin manifest from a file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	return &manifest, nil
}

// SaveManifest writes a plugin manifest to a file.
func SaveManifest(manifest *Manifest, path string) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// ValidateManifest performs basic validation on a plugin manifest.
func ValidateManifest(manifest *Manifest) []ValidationError {
	var errors []ValidationError

	if manifest.ID == "" {
		errors = append(errors, ValidationError{
			Field:   "id",
			Message: "Plugin ID is required",
		})
	}

	if manifest.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "Plugin name is required",
		})
	}

	if manifest.Version == "" {
		errors = append(errors, ValidationError{
			Field:   "version",
			Message: "Version is required",
		})
	} else if !semverRegex.MatchString(manifest.Version) {
		errors = append(errors, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("Invalid semver format: %s", manifest.Version),
		})
	}

	for i, dep := range manifest.Dependencies {
		if dep.ID == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("dependencies[%d]", i),
				Message: "Dependency id must not be empty",
			})
		}
		if dep.ID == manifest.ID {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("dependencies[%d]", i),
				Message: "Plugin cannot depend on itself",
			})
		}
	}

	return errors
}
