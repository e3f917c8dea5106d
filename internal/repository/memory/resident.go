package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
)

type residentRepositoryImpl struct {
	store *Store
}

func NewResidentRepository(store *Store) resident.ResidentRepository {
	return &residentRepositoryImpl{store: store}
}

func (r *residentRepositoryImpl) Create(ctx context.Context, res resident.Resident) (resident.Resident, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.residents {
		if existing.RollNo == res.RollNo {
			return resident.Resident{}, resident.ErrRollNoExists
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return resident.Resident{}, err
	}
	now := s.now()
	res.ID = id.String()
	res.CreatedAt = now
	res.UpdatedAt = now
	s.saveResident(ctx, res.ID)
	s.residents[res.ID] = res
	return res, nil
}

func (r *residentRepositoryImpl) GetByID(_ context.Context, id string) (resident.Resident, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.residents[id]
	if !ok {
		return resident.Resident{}, resident.ErrResidentNotFound
	}
	return res, nil
}

func (r *residentRepositoryImpl) GetByRollNo(_ context.Context, rollNo string) (resident.Resident, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, res := range s.residents {
		if res.RollNo == rollNo {
			return res, nil
		}
	}
	return resident.Resident{}, resident.ErrResidentNotFound
}

func (r *residentRepositoryImpl) List(_ context.Context, filter resident.Filter) ([]resident.Resident, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []resident.Resident
	for _, res := range s.residents {
		if filter.Matches(res) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RollNo < out[j].RollNo })
	return out, nil
}

func (r *residentRepositoryImpl) BulkUpdate(ctx context.Context, filter resident.Filter, patch resident.Patch) (int64, error) {
	if patch.Empty() {
		return 0, nil
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for id, res := range s.residents {
		if !filter.Matches(res) {
			continue
		}
		patch.Apply(&res)
		res.UpdatedAt = now
		s.saveResident(ctx, id)
		s.residents[id] = res
		n++
	}
	return n, nil
}
