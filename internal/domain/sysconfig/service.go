package sysconfig

import "context"

type ConfigService interface {
	Get(ctx context.Context) (ConfigResponse, error)
	Update(ctx context.Context, req UpdateConfigRequest) (ConfigResponse, error)
}
