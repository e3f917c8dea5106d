package memory

import (
	"context"
	"sort"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/mess"
)

type tokenRepositoryImpl struct {
	store *Store
}

func NewTokenRepository(store *Store) mess.TokenRepository {
	return &tokenRepositoryImpl{store: store}
}

func (r *tokenRepositoryImpl) Create(ctx context.Context, t mess.Token) (mess.Token, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.ResidentName, t.ResidentRollNo, t.ResidentRoomNo = nil, nil, nil
	s.saveToken(ctx, t.ID)
	s.tokens[t.ID] = t
	return s.withTokenResident(t), nil
}

func (r *tokenRepositoryImpl) GetByID(_ context.Context, id string) (mess.Token, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[id]
	if !ok {
		return mess.Token{}, mess.ErrTokenNotFound
	}
	return s.withTokenResident(t), nil
}

func (r *tokenRepositoryImpl) ListActive(_ context.Context, residentID *string) ([]mess.Token, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]mess.Token, 0)
	for _, t := range s.tokens {
		if t.Status != mess.TokenActive {
			continue
		}
		if residentID != nil && t.ResidentID != *residentID {
			continue
		}
		out = append(out, s.withTokenResident(t))
	}
	// UUIDv7 ids sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *tokenRepositoryImpl) Close(ctx context.Context, id string, price float64, closedAt time.Time, closedBy string) (mess.Token, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[id]
	if !ok {
		return mess.Token{}, mess.ErrTokenNotFound
	}
	if t.Status != mess.TokenActive {
		return mess.Token{}, mess.ErrTokenClosed
	}

	s.saveToken(ctx, id)
	t.Status = mess.TokenClosed
	t.Price = price
	t.ClosedAt = &closedAt
	if closedBy != "" {
		t.ClosedBy = &closedBy
	}
	t.UpdatedAt = s.now()
	s.tokens[id] = t
	return s.withTokenResident(t), nil
}

func (s *Store) withTokenResident(t mess.Token) mess.Token {
	if res, ok := s.residents[t.ResidentID]; ok {
		name, rollNo := res.Name, res.RollNo
		t.ResidentName = &name
		t.ResidentRollNo = &rollNo
		t.ResidentRoomNo = res.RoomNo
	}
	return t
}
