package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
)

type leaveRepositoryImpl struct {
	store *Store
}

func NewLeaveRepository(store *Store) leave.LeaveRepository {
	return &leaveRepositoryImpl{store: store}
}

func (r *leaveRepositoryImpl) Create(ctx context.Context, l leave.Leave) (leave.Leave, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return leave.Leave{}, err
	}
	now := s.now()
	l.ID = id.String()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.OutpassType == "" {
		l.OutpassType = leave.OutpassNone
	}
	s.saveLeave(ctx, l.ID)
	s.seq++
	s.leaves[l.ID] = l
	s.leaveSeq[l.ID] = s.seq
	return s.withResident(l), nil
}

func (r *leaveRepositoryImpl) GetByID(_ context.Context, id string) (leave.Leave, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leaves[id]
	if !ok {
		return leave.Leave{}, leave.ErrLeaveNotFound
	}
	return s.withResident(l), nil
}

func (r *leaveRepositoryImpl) Update(ctx context.Context, l leave.Leave) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leaves[l.ID]; !ok {
		return leave.ErrLeaveNotFound
	}
	l.UpdatedAt = s.now()
	l.ResidentName, l.ResidentRollNo = nil, nil
	s.saveLeave(ctx, l.ID)
	s.leaves[l.ID] = l
	return nil
}

func (r *leaveRepositoryImpl) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leaves[id]; !ok {
		return leave.ErrLeaveNotFound
	}
	s.saveLeave(ctx, id)
	delete(s.leaves, id)
	delete(s.leaveSeq, id)
	return nil
}

func (r *leaveRepositoryImpl) ListByResident(_ context.Context, residentID string) ([]leave.Leave, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selectLeaves(func(l leave.Leave) bool { return l.ResidentID == residentID }), nil
}

func (r *leaveRepositoryImpl) Search(_ context.Context, filter leave.SearchFilter) ([]leave.Leave, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selectLeaves(func(l leave.Leave) bool {
		if filter.ResidentIDs != nil && !contains(filter.ResidentIDs, l.ResidentID) {
			return false
		}
		if filter.WardenStatus != nil && l.WardenStatus != *filter.WardenStatus {
			return false
		}
		return true
	}), nil
}

func (r *leaveRepositoryImpl) FindNewestApproved(_ context.Context, residentID string) (*leave.Leave, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.newest(func(l leave.Leave) bool {
		return l.ResidentID == residentID && l.FullyApproved()
	}), nil
}

func (r *leaveRepositoryImpl) FindNewestAwaitingOutpass(_ context.Context, residentID string) (*leave.Leave, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.newest(func(l leave.Leave) bool {
		return l.ResidentID == residentID && l.ParentStatus == leave.ApprovalApproved && !l.HasOutpass()
	}), nil
}

func (r *leaveRepositoryImpl) SaveOutpass(ctx context.Context, l leave.Leave) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.leaves[l.ID]
	if !ok {
		return leave.ErrLeaveNotFound
	}
	if stored.HasOutpass() {
		return leave.ErrOutpassAlreadyGenerated
	}
	stored.OutpassType = l.OutpassType
	stored.OutpassStatus = l.OutpassStatus
	stored.OutpassGeneratedAt = l.OutpassGeneratedAt
	stored.UpdatedAt = s.now()
	s.saveLeave(ctx, l.ID)
	s.leaves[l.ID] = stored
	return nil
}

// selectLeaves returns matching leaves, newest first. Callers hold the lock.
func (s *Store) selectLeaves(match func(leave.Leave) bool) []leave.Leave {
	var out []leave.Leave
	for _, l := range s.leaves {
		if match(l) {
			out = append(out, s.withResident(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.leaveSeq[out[i].ID] > s.leaveSeq[out[j].ID] })
	return out
}

func (s *Store) newest(match func(leave.Leave) bool) *leave.Leave {
	found := s.selectLeaves(match)
	if len(found) == 0 {
		return nil
	}
	return &found[0]
}

func (s *Store) withResident(l leave.Leave) leave.Leave {
	if res, ok := s.residents[l.ResidentID]; ok {
		name, rollNo := res.Name, res.RollNo
		l.ResidentName = &name
		l.ResidentRollNo = &rollNo
	}
	return l
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
