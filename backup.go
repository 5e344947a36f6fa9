package sitebook

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// BackupExtension is the suffix of raw backups.
	BackupExtension = ".ttf"
	// CompressedBackupExtension is the suffix of gzip-compressed backups.
	CompressedBackupExtension = ".json.gz"

	backupPrefix = "sitebook_backup_"
)

// ErrInvalidBackup is returned when a backup lacks the required fields.
var ErrInvalidBackup = errors.New("invalid backup file structure")

// Backup is an exported document ready to be written to a file.
type Backup struct {
	Name        string
	ContentType string
	Data        []byte
}

// WriteFile writes the backup into dir and returns its path.
func (b Backup) WriteFile(dir string) (string, error) {
	path := filepath.Join(dir, b.Name)
	if err := os.WriteFile(path, b.Data, 0o644); err != nil {
		return "", fmt.Errorf("write backup %q: %w", path, err)
	}
	return path, nil
}

// backupName returns a sortable file name like
// sitebook_backup_2025-01-31T18-04-05.ttf
func backupName(now time.Time, ext string) string {
	return backupPrefix + now.UTC().Format("2006-01-02T15-04-05") + ext
}

// stamped returns a copy of d with metadata.backupDate set to now.
func stamped(d *Document, now time.Time) Document {
	backup := *d
	at := now.UTC()
	backup.Metadata.BackupDate = &at
	return backup
}

// ExportRaw encodes d as pretty-printed JSON.
func ExportRaw(d *Document, now time.Time) (Backup, error) {
	data, err := json.MarshalIndent(stamped(d, now), "", "  ")
	if err != nil {
		return Backup{}, fmt.Errorf("encode backup: %w", err)
	}
	return Backup{
		Name:        backupName(now, BackupExtension),
		ContentType: "application/json",
		Data:        data,
	}, nil
}

// ExportCompressed encodes d as compact JSON compressed with gzip.
func ExportCompressed(d *Document, now time.Time) (Backup, error) {
	data, err := json.Marshal(stamped(d, now))
	if err != nil {
		return Backup{}, fmt.Errorf("encode backup: %w", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return Backup{}, fmt.Errorf("compress backup: %w", err)
	}
	if err := zw.Close(); err != nil {
		return Backup{}, fmt.Errorf("compress backup: %w", err)
	}
	return Backup{
		Name:        backupName(now, CompressedBackupExtension),
		ContentType: "application/gzip",
		Data:        buf.Bytes(),
	}, nil
}

// IsCompressed reports whether a backup file name denotes the gzip format.
// The format is chosen on the name only, never on the content.
func IsCompressed(fileName string) bool {
	return strings.HasSuffix(fileName, ".gz")
}

// ValidBackupName reports whether fileName has one of the backup extensions.
func ValidBackupName(fileName string) bool {
	return strings.HasSuffix(fileName, BackupExtension) || strings.HasSuffix(fileName, CompressedBackupExtension)
}

// Decode reads a backup named fileName from r, validates its structure and
// merges it onto a fresh default document. The store is not written.
func (s *Store) Decode(r io.Reader, fileName string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}
	if IsCompressed(fileName) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to restore backup: %w", err)
		}
		data, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("failed to restore backup: %w", err)
		}
	}
	fields, err := decodeFields(data)
	if err != nil {
		return nil, fmt.Errorf("failed to restore backup: %w", err)
	}
	if err := validateBackup(fields); err != nil {
		return nil, fmt.Errorf("failed to restore backup: %w", err)
	}
	d, err := mergeFields(fields, s.New())
	if err != nil {
		return nil, fmt.Errorf("failed to restore backup: %w", err)
	}
	return d, nil
}

// Restore decodes a backup and persists it. Nothing is written when the
// backup is rejected.
func (s *Store) Restore(ctx context.Context, r io.Reader, fileName string) (*Document, error) {
	d, err := s.Decode(r, fileName)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to restore backup: %w", err)
	}
	return d, nil
}

// validateBackup requires the users and the departments. Departments used to
// be a top-level list; they now live in each project, so a backup in the
// nested shape satisfies the requirement with its projects list.
func validateBackup(fields map[string]json.RawMessage) error {
	present := func(key string) bool {
		raw, ok := fields[key]
		return ok && !isNull(raw)
	}
	if !present("users") {
		return fmt.Errorf("%w: missing users", ErrInvalidBackup)
	}
	if !present("departments") && !present("projects") {
		return fmt.Errorf("%w: missing departments", ErrInvalidBackup)
	}
	return nil
}
