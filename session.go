package sitebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/etnz/sitebook/storage"
)

// CurrentUserKey is the storage key of the logged-in user.
const CurrentUserKey = "sitebook_current_user"

// Session holds the current Document of a Store and persists every change.
//
// Readers get immutable snapshots and never block. Changes are serialized:
// each one derives a new Document from the latest snapshot, publishes it and
// writes it to the store.
type Session struct {
	store *Store
	mu    sync.Mutex // serializes Update, Restore and Reset
	doc   atomic.Pointer[Document]
}

// Open loads the document of store into a new Session.
func Open(ctx context.Context, store *Store) *Session {
	s := &Session{store: store}
	s.doc.Store(store.Load(ctx))
	return s
}

// Store returns the store backing s.
func (s *Session) Store() *Store { return s.store }

// Document returns the current snapshot.
func (s *Session) Document() *Document { return s.doc.Load() }

// CurrentProject returns the current project of the current snapshot.
func (s *Session) CurrentProject() (Project, bool) { return s.Document().CurrentProject() }

// Update applies f to the current snapshot. When f succeeds its result becomes
// the current snapshot and is saved. A failed save is logged and returned; the
// new snapshot stays current, as the in-memory view is authoritative until
// the next successful save.
func (s *Session) Update(ctx context.Context, f func(d *Document) (*Document, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := f(s.doc.Load())
	if err != nil {
		return err
	}
	s.doc.Store(next)
	if err := s.store.Save(ctx, next); err != nil {
		log.Printf("warning, changes are not persisted: %v", err)
		return err
	}
	return nil
}

// Restore replaces the document with a backup. On failure the current
// snapshot and the store are left untouched.
func (s *Session) Restore(ctx context.Context, r io.Reader, fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.store.Restore(ctx, r, fileName)
	if err != nil {
		return err
	}
	s.doc.Store(d)
	return nil
}

// Reset clears the store and starts over from a fresh default document, which
// is not persisted until the next change.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.doc.Store(s.store.New())
	return nil
}

// Login checks the credentials and remembers the user as logged in.
func (s *Session) Login(ctx context.Context, username, password string) (User, error) {
	u, err := s.Document().Login(username, password)
	if err != nil {
		return User{}, err
	}
	data, err := json.Marshal(u)
	if err != nil {
		return User{}, fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Storage.SetItem(ctx, CurrentUserKey, data); err != nil {
		return User{}, fmt.Errorf("save current user: %w", err)
	}
	return u, nil
}

// Logout forgets the logged-in user.
func (s *Session) Logout(ctx context.Context) error {
	return s.store.Storage.RemoveItem(ctx, CurrentUserKey)
}

// CurrentUser returns the logged-in user, if any.
func (s *Session) CurrentUser(ctx context.Context) (User, bool) {
	data, err := s.store.Storage.GetItem(ctx, CurrentUserKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("warning, cannot read the current user: %v", err)
		}
		return User{}, false
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		log.Printf("warning, cannot decode the current user: %v", err)
		return User{}, false
	}
	return u, true
}
