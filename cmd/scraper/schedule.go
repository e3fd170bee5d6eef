package main

import (
	"context"

	"go-cityboard-automation/internal/scheduler"
)

// schedule repeats the city run on spec until interrupted or a run faults.
func (a *app) schedule(ctx context.Context, city, spec string) error {
	cities, err := a.resolveCities(city)
	if err != nil {
		return err
	}
	s := scheduler.New(ctx, spec, func(ctx context.Context) error {
		for _, c := range cities {
			if err := a.runCity(ctx, c); err != nil {
				return err
			}
		}
		return nil
	}, a.log)
	return s.Run(ctx)
}
