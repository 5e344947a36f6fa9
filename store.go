package sitebook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/etnz/sitebook/storage"
)

// StorageKey is the default key holding the serialized Document.
const StorageKey = "sitebook_data"

// Store loads and saves the Document under a single key of a storage.
type Store struct {
	Storage storage.Storage
	// Key defaults to StorageKey.
	Key string
	// Defaults are the settings of fresh documents. Zero means DefaultSettings.
	Defaults Settings
}

// NewStore returns a Store over s with the default key and settings.
func NewStore(s storage.Storage) *Store {
	return &Store{Storage: s}
}

func (s *Store) key() string {
	if s.Key == "" {
		return StorageKey
	}
	return s.Key
}

func (s *Store) settings() Settings {
	if s.Defaults == (Settings{}) {
		return DefaultSettings()
	}
	return s.Defaults
}

// New returns a fresh default document.
func (s *Store) New() *Document {
	return NewDocument(s.settings(), timeNow())
}

// Load reads the persisted document and reconciles it against the default
// shape. It never fails: a missing entry yields a fresh document, and so does
// an unreadable one, after logging the cause.
func (s *Store) Load(ctx context.Context) *Document {
	data, err := s.Storage.GetItem(ctx, s.key())
	if errors.Is(err, storage.ErrNotFound) {
		return s.New()
	}
	if err != nil {
		log.Printf("warning, cannot read %q, starting from an empty document: %v", s.key(), err)
		return s.New()
	}
	d, err := s.Merge(data)
	if err != nil {
		log.Printf("warning, cannot decode %q, starting from an empty document: %v", s.key(), err)
		return s.New()
	}
	return d
}

// Save stamps metadata.lastModified and writes d. The stamp is applied to the
// written copy only; d itself is not modified.
func (s *Store) Save(ctx context.Context, d *Document) error {
	saved := *d
	saved.Metadata.LastModified = timeNow()
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.Storage.SetItem(ctx, s.key(), data); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Clear removes the persisted entry. In-memory documents are not affected.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.Storage.RemoveItem(ctx, s.key()); err != nil {
		return fmt.Errorf("clear document: %w", err)
	}
	return nil
}

// Merge decodes a serialized document onto a fresh default document: fields
// present in data win, missing fields keep their default, then nested
// fields are reconciled.
func (s *Store) Merge(data []byte) (*Document, error) {
	fields, err := decodeFields(data)
	if err != nil {
		return nil, err
	}
	return mergeFields(fields, s.New())
}

// decodeFields splits a JSON object into its top-level fields.
func decodeFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode document: not a JSON object")
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// mergeFields overlays fields onto d. Lists replace the defaults wholesale,
// objects are merged field by field, and nulls are treated as missing.
func mergeFields(fields map[string]json.RawMessage, d *Document) (*Document, error) {
	var errs error
	for key, raw := range fields {
		if isNull(raw) {
			if key == "currentProjectId" {
				d.CurrentProjectID = nil
			}
			continue
		}
		var err error
		switch key {
		case "users":
			var users []User
			err = json.Unmarshal(raw, &users)
			d.Users = users
		case "projects":
			var projects []Project
			err = json.Unmarshal(raw, &projects)
			d.Projects = projects
		case "currentProjectId":
			var id string
			err = json.Unmarshal(raw, &id)
			d.CurrentProjectID = &id
		case "settings":
			err = json.Unmarshal(raw, &d.Settings)
		case "metadata":
			err = json.Unmarshal(raw, &d.Metadata)
		default:
			if d.Extra == nil {
				d.Extra = make(map[string]json.RawMessage)
			}
			d.Extra[key] = raw
		}
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid %q: %w", key, err))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return Reconcile(d), nil
}

// Reconcile returns a copy of d where every field the rest of the package
// relies on is present: nil lists become empty, empty enums and settings take
// their default. Reconcile is idempotent and leaves canonical documents
// unchanged.
func Reconcile(d *Document) *Document {
	next := d.clone()
	if next.Users == nil {
		next.Users = DefaultUsers()
	}
	if next.Projects == nil {
		next.Projects = []Project{}
	}

	defaults := DefaultSettings()
	if next.Settings.Currency == "" {
		next.Settings.Currency = defaults.Currency
	}
	if next.Settings.DateFormat == "" {
		next.Settings.DateFormat = defaults.DateFormat
	}
	if next.Settings.BackupFrequency == "" {
		next.Settings.BackupFrequency = defaults.BackupFrequency
	}
	if next.Metadata.Version == "" {
		next.Metadata.Version = Version
	}

	for i := range next.Projects {
		next.Projects[i] = reconcileProject(next.Projects[i])
	}
	return next
}

func reconcileProject(p Project) Project {
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.Departments == nil {
		p.Departments = []Department{}
	}
	if p.PaymentsIn == nil {
		p.PaymentsIn = []PaymentIn{}
	} else {
		p.PaymentsIn = slices.Clone(p.PaymentsIn)
		for i := range p.PaymentsIn {
			in := &p.PaymentsIn[i]
			if in.Type == "" {
				in.Type = PaymentInstallment
			}
			in.Attachments = nonNil(in.Attachments)
			in.UpdatedAt = since(in.UpdatedAt, in.CreatedAt)
		}
	}
	if p.PaymentsOut == nil {
		p.PaymentsOut = []PaymentOut{}
	} else {
		p.PaymentsOut = slices.Clone(p.PaymentsOut)
		for i := range p.PaymentsOut {
			out := &p.PaymentsOut[i]
			if out.Category == "" {
				out.Category = CategoryOther
			}
			out.Attachments = nonNil(out.Attachments)
			out.UpdatedAt = since(out.UpdatedAt, out.CreatedAt)
		}
	}
	p.UpdatedAt = since(p.UpdatedAt, p.CreatedAt)
	return p
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// since returns updated, or created when the record was never updated.
func since(updated, created time.Time) time.Time {
	if updated.IsZero() {
		return created
	}
	return updated
}
