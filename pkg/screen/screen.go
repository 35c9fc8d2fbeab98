// Package screen holds the controllers behind each ams screen. A controller
// fetches from a DataService, transforms the result with aggregate and
// paginate, and pushes it to a presenter.
//
// Presenter callbacks run with the controller's lock held, one at a time,
// and must not call back into the controller.
package screen

import (
	"context"
	"time"

	"github.com/ams-studio/ams/pkg/models"
)

// DataService is the read side of the backend.
type DataService interface {
	ListAudits(ctx context.Context) ([]models.Audit, error)
	ListInputsForAudit(ctx context.Context, auditID int64, kind models.Kind) ([]models.Input, error)
}

// ErrorPresenter shows a failure banner.
type ErrorPresenter interface {
	OnError(err error)
}

// Option configures a controller.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the clock that anchors trailing chart windows. The
// default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
