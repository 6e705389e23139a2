package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// SeedLayout places widgetIDs on the viewer's dashboard and saves the result.
// Widgets that are unknown or already placed are collected as errors without
// aborting the remaining placements.
func SeedLayout(ctx context.Context, service *Service, viewer ViewerContext, widgetIDs ...string) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed layout")
	}
	var seedErr error
	for _, id := range widgetIDs {
		if err := service.AddWidget(ctx, viewer, id, ""); err != nil {
			seedErr = errors.Join(seedErr, fmt.Errorf("seed widget %s: %w", id, err))
		}
	}
	if err := service.Save(ctx, viewer); err != nil {
		seedErr = errors.Join(seedErr, err)
	}
	return seedErr
}

// DefaultSeedWidgets lists the starter widgets for a role.
func DefaultSeedWidgets(role string) []string {
	out := []string{}
	for _, w := range FilterByRole(DefaultWidgets(), role) {
		out = append(out, w.ID)
		if len(out) == 3 {
			break
		}
	}
	return out
}
