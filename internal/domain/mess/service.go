package mess

import "context"

type MessService interface {
	ScheduleSpecialFood(ctx context.Context, req ScheduleSpecialFoodRequest) (SpecialFoodResponse, error)
	GenerateToken(ctx context.Context, req GenerateTokenRequest) (TokenResponse, error)
	ListActive(ctx context.Context) ([]TokenResponse, error)
	ListActiveByResident(ctx context.Context, residentID string) ([]TokenResponse, error)
	CloseToken(ctx context.Context, req CloseTokenRequest) (TokenResponse, error)
}
