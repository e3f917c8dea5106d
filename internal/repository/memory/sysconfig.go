package memory

import (
	"context"

	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
)

type configRepositoryImpl struct {
	store *Store
}

func NewConfigRepository(store *Store) sysconfig.ConfigRepository {
	return &configRepositoryImpl{store: store}
}

func (r *configRepositoryImpl) Get(_ context.Context) (sysconfig.Snapshot, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.ensureConfig(), nil
}

func (r *configRepositoryImpl) Update(ctx context.Context, patch sysconfig.Patch) (sysconfig.Snapshot, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveConfig(ctx)
	cfg := s.ensureConfig()
	patch.Apply(cfg)
	cfg.UpdatedAt = s.now()
	return *cfg, nil
}

func (r *configRepositoryImpl) UpdateSpecialFood(ctx context.Context, food sysconfig.SpecialFood) (sysconfig.Snapshot, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveConfig(ctx)
	cfg := s.ensureConfig()
	cfg.SpecialFood = food
	cfg.UpdatedAt = s.now()
	return *cfg, nil
}

func (r *configRepositoryImpl) MarkReset(ctx context.Context, date string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.ensureConfig()
	if cfg.LastResetDate == date {
		return sysconfig.ErrMarkerNotAdvanced
	}
	s.saveConfig(ctx)
	cfg.LastResetDate = date
	return nil
}

func (r *configRepositoryImpl) MarkAutoBlock(ctx context.Context, date string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.ensureConfig()
	if cfg.LastAutoBlockDate == date {
		return sysconfig.ErrMarkerNotAdvanced
	}
	s.saveConfig(ctx)
	cfg.LastAutoBlockDate = date
	return nil
}

// ensureConfig returns the singleton, creating it with defaults. Callers hold the write lock.
func (s *Store) ensureConfig() *sysconfig.Snapshot {
	if s.config == nil {
		cfg := sysconfig.Defaults()
		cfg.UpdatedAt = s.now()
		s.config = &cfg
	}
	return s.config
}
