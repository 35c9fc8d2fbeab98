package screen

import (
	"context"
	"sync"

	"github.com/ams-studio/ams/pkg/models"
)

// AuditDetailPresenter receives the inputs of one audit.
type AuditDetailPresenter interface {
	ErrorPresenter
	OnInputsChanged(auditID int64, kind models.Kind, inputs []models.Input)
}

// AuditDetail shows the people attached to an audit.
type AuditDetail struct {
	data DataService
	view AuditDetailPresenter

	mu sync.Mutex
}

// NewAuditDetail creates an AuditDetail controller.
func NewAuditDetail(data DataService, view AuditDetailPresenter) *AuditDetail {
	return &AuditDetail{data: data, view: view}
}

// Load fetches and presents the inputs of auditID.
func (d *AuditDetail) Load(ctx context.Context, auditID int64, kind models.Kind) error {
	inputs, err := d.data.ListInputsForAudit(ctx, auditID, kind)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.view.OnError(err)
		return err
	}
	d.view.OnInputsChanged(auditID, kind, inputs)
	return nil
}
