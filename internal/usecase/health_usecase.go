package usecase

import (
	"context"
	"time"
)

// Pinger checks one backing service
type Pinger func(ctx context.Context) error

type HealthUsecase interface {
	// Check returns "up"/"down" per service and whether all of them are up
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks  map[string]Pinger
	timeout time.Duration
}

func NewHealthUsecase(checks map[string]Pinger) HealthUsecase {
	return &healthUsecase{checks: checks, timeout: 2 * time.Second}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	services := make(map[string]string, len(u.checks))
	healthy := true
	for name, ping := range u.checks {
		pctx, cancel := context.WithTimeout(ctx, u.timeout)
		if err := ping(pctx); err != nil {
			services[name] = "down"
			healthy = false
		} else {
			services[name] = "up"
		}
		cancel()
	}
	return services, healthy
}
