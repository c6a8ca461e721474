package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-note-keeper/models"
)

// memoryStore is a process-local [LocalStore]. It backs a session whose
// durable store became unavailable and is used in tests. Its contents are
// lost when the process exits.
type memoryStore struct {
	mu     sync.RWMutex
	nextID int64
	notes  map[string]models.CipherNote
	ops    []models.PendingOperation
	salts  map[string][]byte
	closed bool
}

// NewMemoryStore returns an empty in-memory [LocalStore].
func NewMemoryStore() LocalStore {
	return &memoryStore{
		nextID: 1,
		notes:  make(map[string]models.CipherNote),
		salts:  make(map[string][]byte),
	}
}

func (s *memoryStore) Put(_ context.Context, note models.CipherNote) error {
	if note.ID == "" || note.OwnerID == "" {
		return ErrInvalidNote
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	s.notes[note.ID] = normalizeNote(note)
	return nil
}

func (s *memoryStore) Get(_ context.Context, noteID string) (models.CipherNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return models.CipherNote{}, errClosed
	}

	note, ok := s.notes[noteID]
	if !ok {
		return models.CipherNote{}, ErrNoteNotFound
	}
	return note, nil
}

func (s *memoryStore) ListByOwner(_ context.Context, ownerID string) ([]models.CipherNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}

	notes := make([]models.CipherNote, 0)
	for _, note := range s.notes {
		if note.OwnerID == ownerID {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		}
		return strings.Compare(notes[i].ID, notes[j].ID) < 0
	})

	return notes, nil
}

func (s *memoryStore) Delete(_ context.Context, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	delete(s.notes, noteID)
	return nil
}

func (s *memoryStore) Enqueue(_ context.Context, op models.PendingOperation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errClosed
	}

	op.ID = s.nextID
	s.nextID++
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now()
	}
	op.Timestamp = op.Timestamp.Truncate(time.Millisecond).UTC()
	op.Attempts = 0
	op.LastError = ""
	if op.Payload != nil {
		payload := *op.Payload
		op.Payload = &payload
	}

	s.ops = append(s.ops, op)
	return op.ID, nil
}

func (s *memoryStore) ListPending(_ context.Context) ([]models.PendingOperation, error) {
	return s.listPending(func(models.PendingOperation) bool { return true })
}

func (s *memoryStore) ListPendingByOwner(_ context.Context, ownerID string) ([]models.PendingOperation, error) {
	return s.listPending(func(op models.PendingOperation) bool { return op.OwnerID == ownerID })
}

func (s *memoryStore) listPending(keep func(models.PendingOperation) bool) ([]models.PendingOperation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}

	// s.ops is append-only apart from removals, so it is already in ID order
	ops := make([]models.PendingOperation, 0, len(s.ops))
	for _, op := range s.ops {
		if keep(op) {
			ops = append(ops, copyOperation(op))
		}
	}
	return ops, nil
}

func (s *memoryStore) HasPending(_ context.Context, noteID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, errClosed
	}

	return slices.ContainsFunc(s.ops, func(op models.PendingOperation) bool {
		return op.NoteID == noteID
	}), nil
}

func (s *memoryStore) Dequeue(_ context.Context, ids ...int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	s.ops = slices.DeleteFunc(s.ops, func(op models.PendingOperation) bool {
		return slices.Contains(ids, op.ID)
	})
	return nil
}

func (s *memoryStore) RecordAttempt(_ context.Context, id int64, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	for i := range s.ops {
		if s.ops[i].ID != id {
			continue
		}
		s.ops[i].Attempts++
		s.ops[i].LastError = ""
		if cause != nil {
			s.ops[i].LastError = cause.Error()
		}
		return nil
	}
	return ErrOperationNotFound
}

func (s *memoryStore) SaveSalt(_ context.Context, ownerID string, salt []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	s.salts[ownerID] = slices.Clone(salt)
	return nil
}

func (s *memoryStore) GetSalt(_ context.Context, ownerID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}

	salt, ok := s.salts[ownerID]
	if !ok {
		return nil, nil
	}
	return slices.Clone(salt), nil
}

func (s *memoryStore) ReplaceNoteID(_ context.Context, oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	if oldID == newID {
		return nil
	}

	delete(s.notes, newID)
	if note, ok := s.notes[oldID]; ok {
		delete(s.notes, oldID)
		note.ID = newID
		s.notes[newID] = note
	}

	for i := range s.ops {
		if s.ops[i].NoteID != oldID {
			continue
		}
		s.ops[i].NoteID = newID
		if s.ops[i].Payload != nil {
			payload := *s.ops[i].Payload
			payload.ID = newID
			s.ops[i].Payload = &payload
		}
	}

	return nil
}

func (s *memoryStore) WipeOwner(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	for id, note := range s.notes {
		if note.OwnerID == ownerID {
			delete(s.notes, id)
		}
	}
	s.ops = slices.DeleteFunc(s.ops, func(op models.PendingOperation) bool {
		return op.OwnerID == ownerID
	})
	delete(s.salts, ownerID)

	return nil
}

// Close makes every later call fail with [ErrStoreUnavailable].
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var errClosed = fmt.Errorf("%w: memory store is closed", ErrStoreUnavailable)

// normalizeNote applies the precision the SQLite store keeps, so both
// implementations return identical values.
func normalizeNote(note models.CipherNote) models.CipherNote {
	note.CreatedAt = note.CreatedAt.Truncate(time.Millisecond).UTC()
	note.UpdatedAt = note.UpdatedAt.Truncate(time.Millisecond).UTC()
	return note
}

func copyOperation(op models.PendingOperation) models.PendingOperation {
	if op.Payload != nil {
		payload := *op.Payload
		op.Payload = &payload
	}
	return op
}
