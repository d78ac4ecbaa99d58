package schema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/plugboard/plugboard/pkg/plugins"
)

// TypeSQL is the descriptor type tag handled by SQLActivator.
const TypeSQL = "sql"

// SQLActivator applies *.sql descriptors against a relational database.
// Descriptors are expected to be written in create-if-absent form so a
// re-run after a partial failure converges instead of erroring.
type SQLActivator struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewSQLActivator creates a SQL schema activator.
func NewSQLActivator(db *sql.DB, log *logrus.Logger) *SQLActivator {
	if log == nil {
		log = logrus.New()
	}
	return &SQLActivator{db: db, log: log}
}

// Create executes the descriptor payload.
func (a *SQLActivator) Create(ctx context.Context, manifest *plugins.Manifest, desc plugins.SchemaDescriptor) error {
	if len(desc.Payload) == 0 {
		return nil
	}

	if _, err := a.db.ExecContext(ctx, string(desc.Payload)); err != nil {
		return fmt.Errorf("failed to apply sql schema for %s: %w", manifest.ID, err)
	}

	a.log.Debugf("Applied sql schema %s for plugin %s", desc.Name, manifest.ID)
	return nil
}
