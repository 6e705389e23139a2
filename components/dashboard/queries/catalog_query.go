package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-uistate/components/dashboard"
)

// CatalogInput selects catalog widgets for a viewer.
type CatalogInput struct {
	Viewer dashboard.ViewerContext
	// AvailableOnly drops widgets already placed on the viewer's dashboard.
	AvailableOnly bool
}

type catalogService interface {
	Session(ctx context.Context, viewer dashboard.ViewerContext) (*dashboard.Customizer, error)
}

// CatalogQuery lists the widgets a viewer may place.
type CatalogQuery struct {
	service catalogService
}

// NewCatalogQuery builds the query.
func NewCatalogQuery(service catalogService) *CatalogQuery {
	return &CatalogQuery{service: service}
}

var _ gocommand.Querier[CatalogInput, []dashboard.Widget] = (*CatalogQuery)(nil)

// Query resolves the role-filtered catalog.
func (q *CatalogQuery) Query(ctx context.Context, input CatalogInput) ([]dashboard.Widget, error) {
	c, err := q.service.Session(ctx, input.Viewer)
	if err != nil {
		return nil, err
	}
	if input.AvailableOnly {
		return c.AvailableWidgets(), nil
	}
	return c.Catalog(), nil
}
