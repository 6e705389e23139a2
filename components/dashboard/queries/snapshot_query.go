package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-uistate/components/dashboard"
)

type snapshotService interface {
	Snapshot(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Snapshot, error)
}

// SnapshotQuery returns the viewer's persistable customization.
type SnapshotQuery struct {
	service snapshotService
}

// NewSnapshotQuery builds the query.
func NewSnapshotQuery(service snapshotService) *SnapshotQuery {
	return &SnapshotQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, dashboard.Snapshot] = (*SnapshotQuery)(nil)

// Query captures the current snapshot.
func (q *SnapshotQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Snapshot, error) {
	return q.service.Snapshot(ctx, viewer)
}
