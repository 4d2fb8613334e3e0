package tally

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xraph/tally/backup"
)

// Export dumps every table into a backup document.
func (t *Tally) Export(ctx context.Context) (backup.Document, error) {
	var doc backup.Document
	err := t.atomically(ctx, func() error {
		tables, err := t.store.ExportTables(ctx)
		if err != nil {
			return err
		}
		doc = backup.Document(tables)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tally: export: %w", err)
	}
	return doc, nil
}

// Import restores a backup document read from r. Each table in the document
// replaces the stored table; tables it does not carry are left alone. A
// document that is not an object, lacks one of the legacy tables or holds a
// table that does not decode is refused with ErrInvalidImportFormat and
// nothing is written.
func (t *Tally) Import(ctx context.Context, r io.Reader) error {
	doc, err := backup.Decode(r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImportFormat, err)
	}

	err = t.atomically(ctx, func() error {
		return t.store.ImportTables(ctx, doc)
	})
	if err != nil {
		if errors.Is(err, backup.ErrInvalidFormat) {
			return fmt.Errorf("%w: %w", ErrInvalidImportFormat, err)
		}
		return err
	}

	names := doc.Names()
	t.logger.Info("backup imported", "tables", names)
	t.plugins.EmitBackupImported(ctx, names)
	return nil
}
