package mess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/mess"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/metrics"
)

type MessServiceImpl struct {
	mess.TokenRepository
	resident.ResidentRepository
	sysconfig.ConfigRepository
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewMessService(
	tokenRepo mess.TokenRepository,
	residentRepo resident.ResidentRepository,
	configRepo sysconfig.ConfigRepository,
	clk clock.Clock,
	m *metrics.Metrics,
) mess.MessService {
	return &MessServiceImpl{
		TokenRepository:    tokenRepo,
		ResidentRepository: residentRepo,
		ConfigRepository:   configRepo,
		clock:              clk,
		metrics:            m,
	}
}

// ScheduleSpecialFood implements mess.MessService.
func (s *MessServiceImpl) ScheduleSpecialFood(ctx context.Context, req mess.ScheduleSpecialFoodRequest) (mess.SpecialFoodResponse, error) {
	if err := req.Validate(); err != nil {
		return mess.SpecialFoodResponse{}, err
	}

	snap, err := s.ConfigRepository.UpdateSpecialFood(ctx, req.SpecialFood())
	if err != nil {
		return mess.SpecialFoodResponse{}, fmt.Errorf("failed to schedule special food: %w", err)
	}

	food := snap.SpecialFood
	slog.Info("special food scheduled",
		"name", food.Name,
		"session", food.Session,
		"date", food.Date,
		"start_time", food.StartTime,
		"end_time", food.EndTime,
	)

	return mess.SpecialFoodResponse{
		SpecialFoodResponse: sysconfig.NewSpecialFoodResponse(food),
		Events: []event.Event{
			event.New(event.ConfigUpdate, map[string]any{
				"special_food_name":    food.Name,
				"special_food_session": string(food.Session),
				"special_food_date":    food.Date,
				"special_food_start":   food.StartTime,
				"special_food_end":     food.EndTime,
			}),
		},
	}, nil
}

// GenerateToken implements mess.MessService. Registration is only possible on
// the announced date, inside the announced window.
func (s *MessServiceImpl) GenerateToken(ctx context.Context, req mess.GenerateTokenRequest) (mess.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return mess.TokenResponse{}, err
	}

	res, err := s.ResidentRepository.GetByID(ctx, req.ResidentID)
	if err != nil {
		if errors.Is(err, resident.ErrResidentNotFound) {
			return mess.TokenResponse{}, err
		}
		return mess.TokenResponse{}, fmt.Errorf("failed to get resident: %w", err)
	}

	snap, err := s.ConfigRepository.Get(ctx)
	if err != nil {
		return mess.TokenResponse{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	food := snap.SpecialFood
	now := s.clock.Now()
	if !food.Scheduled() {
		s.metrics.IncMessToken("rejected")
		return mess.TokenResponse{}, mess.ErrNoSpecialFood
	}
	if food.Date != clock.DateString(now) {
		s.metrics.IncMessToken("rejected")
		return mess.TokenResponse{}, fmt.Errorf("%w: %s is only available on %s", mess.ErrRegistrationClosed, food.Name, food.Date)
	}
	if !food.RegistrationOpen(now) {
		s.metrics.IncMessToken("rejected")
		return mess.TokenResponse{}, fmt.Errorf("%w: %s is available %s - %s", mess.ErrRegistrationClosed, food.Name, food.StartTime, food.EndTime)
	}

	foodName := food.Name
	if req.FoodName != "" {
		foodName = req.FoodName
	}

	id, err := uuid.NewV7()
	if err != nil {
		return mess.TokenResponse{}, err
	}
	token, err := s.TokenRepository.Create(ctx, mess.Token{
		ID:            id.String(),
		Code:          mess.CodeFromID(id.String()),
		ResidentID:    res.ID,
		Type:          mess.TokenType(req.TokenType),
		Status:        mess.TokenActive,
		FoodName:      foodName,
		Session:       string(food.Session),
		ProvidingDate: food.ProvidingDate,
		GeneratedAt:   now,
	})
	if err != nil {
		return mess.TokenResponse{}, fmt.Errorf("failed to create mess token: %w", err)
	}

	s.metrics.IncMessToken("generated")
	slog.Info("mess token generated", "token_id", token.ID, "code", token.Code, "resident_id", res.ID, "food", foodName)

	resp := mess.NewTokenResponse(token)
	resp.Events = []event.Event{tokenEvent(token)}
	return resp, nil
}

// ListActive implements mess.MessService.
func (s *MessServiceImpl) ListActive(ctx context.Context) ([]mess.TokenResponse, error) {
	tokens, err := s.TokenRepository.ListActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tokens: %w", err)
	}
	return toResponses(tokens), nil
}

// ListActiveByResident implements mess.MessService.
func (s *MessServiceImpl) ListActiveByResident(ctx context.Context, residentID string) ([]mess.TokenResponse, error) {
	tokens, err := s.TokenRepository.ListActive(ctx, &residentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resident tokens: %w", err)
	}
	return toResponses(tokens), nil
}

// CloseToken implements mess.MessService. The token is billed an equal share of
// what the dish cost.
func (s *MessServiceImpl) CloseToken(ctx context.Context, req mess.CloseTokenRequest) (mess.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return mess.TokenResponse{}, err
	}

	token, err := s.TokenRepository.Close(ctx, req.TokenID, req.Price(), s.clock.Now(), req.ClosedBy)
	if err != nil {
		if errors.Is(err, mess.ErrTokenNotFound) || errors.Is(err, mess.ErrTokenClosed) {
			return mess.TokenResponse{}, err
		}
		return mess.TokenResponse{}, fmt.Errorf("failed to close mess token: %w", err)
	}

	s.metrics.IncMessToken("closed")
	slog.Info("mess token closed", "token_id", token.ID, "price", token.Price, "closed_by", req.ClosedBy)

	resp := mess.NewTokenResponse(token)
	resp.Events = []event.Event{tokenEvent(token)}
	return resp, nil
}

func tokenEvent(t mess.Token) event.Event {
	return event.New(event.MessTokenUpdate, map[string]any{
		"token_id":    t.ID,
		"resident_id": t.ResidentID,
		"status":      string(t.Status),
		"price":       t.Price,
	})
}

func toResponses(tokens []mess.Token) []mess.TokenResponse {
	out := make([]mess.TokenResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, mess.NewTokenResponse(t))
	}
	return out
}
