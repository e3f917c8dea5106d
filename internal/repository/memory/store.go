package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/domain/mess"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
)

// Store is an in-process backing store shared by the memory repositories.
// A single lock guards every table so bulk updates are atomic like their SQL counterparts.
type Store struct {
	mu    sync.RWMutex
	clock clock.Clock

	residents map[string]resident.Resident
	leaves    map[string]leave.Leave
	// leaveSeq records insertion order; "newest" means highest sequence.
	leaveSeq map[string]int64
	seq      int64

	config *sysconfig.Snapshot

	tokens map[string]mess.Token
}

func NewStore(c clock.Clock) *Store {
	return &Store{
		clock:     c,
		residents: make(map[string]resident.Resident),
		leaves:    make(map[string]leave.Leave),
		leaveSeq:  make(map[string]int64),
		tokens:    make(map[string]mess.Token),
	}
}

func (s *Store) now() time.Time {
	return s.clock.Now()
}

type undoKey struct{}

// undoLog holds the before-images of rows written inside a transaction.
type undoLog struct {
	steps []func()
}

// WithinTransaction runs fn and, when it fails, restores every row fn wrote.
// Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		return fn(ctx)
	}

	undo := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, undo)); err != nil {
		s.mu.Lock()
		for i := len(undo.steps) - 1; i >= 0; i-- {
			undo.steps[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) recordUndo(ctx context.Context, step func()) {
	if undo, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		undo.steps = append(undo.steps, step)
	}
}

// The save* helpers record a row's current state before it is written. Callers hold the write lock.

func (s *Store) saveResident(ctx context.Context, id string) {
	prev, existed := s.residents[id]
	s.recordUndo(ctx, func() {
		if existed {
			s.residents[id] = prev
		} else {
			delete(s.residents, id)
		}
	})
}

func (s *Store) saveLeave(ctx context.Context, id string) {
	prev, existed := s.leaves[id]
	prevSeq := s.leaveSeq[id]
	s.recordUndo(ctx, func() {
		if existed {
			s.leaves[id] = prev
			s.leaveSeq[id] = prevSeq
		} else {
			delete(s.leaves, id)
			delete(s.leaveSeq, id)
		}
	})
}

func (s *Store) saveToken(ctx context.Context, id string) {
	prev, existed := s.tokens[id]
	s.recordUndo(ctx, func() {
		if existed {
			s.tokens[id] = prev
		} else {
			delete(s.tokens, id)
		}
	})
}

func (s *Store) saveConfig(ctx context.Context) {
	var prev *sysconfig.Snapshot
	if s.config != nil {
		cfg := *s.config
		prev = &cfg
	}
	s.recordUndo(ctx, func() {
		s.config = prev
	})
}
