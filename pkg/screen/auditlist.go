package screen

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ams-studio/ams/pkg/aggregate"
	"github.com/ams-studio/ams/pkg/logging"
	"github.com/ams-studio/ams/pkg/models"
	"github.com/ams-studio/ams/pkg/paginate"
)

// AuditListPresenter receives the revealed part of the audit list.
type AuditListPresenter interface {
	ErrorPresenter
	OnVisibleSetChanged(records []models.Audit, hasMore bool)
}

// AuditList is the infinite-scroll audit list, filtered by category.
type AuditList struct {
	data DataService
	view AuditListPresenter
	log  *zap.Logger

	mu     sync.Mutex
	pager  *paginate.Paginator[models.Audit]
	afip   bool
	offset float64
	wg     sync.WaitGroup
}

// NewAuditList creates a list showing internal audits.
func NewAuditList(data DataService, view AuditListPresenter, pageSize int, threshold float64, log *zap.Logger) *AuditList {
	return &AuditList{
		data:  data,
		view:  view,
		log:   logging.OrNop(log),
		pager: paginate.New[models.Audit](pageSize, threshold),
	}
}

// Open loads page one of the current filter.
func (l *AuditList) Open(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset(ctx)
}

// SetFilter switches category. Results of fetches started under the previous
// filter are discarded.
func (l *AuditList) SetFilter(ctx context.Context, afip bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.afip == afip && l.pager.State() != paginate.Idle {
		return
	}
	l.afip = afip
	l.reset(ctx)
}

// Refresh reloads from page one.
func (l *AuditList) Refresh(ctx context.Context) {
	l.Open(ctx)
}

// OnScrollPositionChanged requests the next page when the viewport is near
// the end of the content. It is ignored while a page is loading.
func (l *AuditList) OnScrollPositionChanged(ctx context.Context, offset, contentHeight, viewportHeight float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.offset = offset
	tk, ok := l.pager.OnScroll(offset, contentHeight, viewportHeight)
	if !ok {
		return
	}
	l.log.Debug("next page", zap.Int("page", tk.Page), zap.Uint64("generation", tk.Generation))
	l.fetch(ctx, tk, l.afip)
}

// ScrollToEnd reports the viewport resting at the end of the content, as a
// non-graphical front end does to reveal the next page.
func (l *AuditList) ScrollToEnd(ctx context.Context) {
	l.OnScrollPositionChanged(ctx, 0, 0, 0)
}

// ShowPages opens the list on the given category and reveals up to pages
// pages, waiting for each.
func (l *AuditList) ShowPages(ctx context.Context, afip bool, pages int) {
	l.mu.Lock()
	l.afip = afip
	l.reset(ctx)
	l.mu.Unlock()
	l.Wait()
	for i := 1; i < pages; i++ {
		if l.State() != paginate.Ready {
			return
		}
		l.ScrollToEnd(ctx)
		l.Wait()
	}
}

// Wait blocks until every started fetch has completed.
func (l *AuditList) Wait() {
	l.wg.Wait()
}

// Window returns the page window.
func (l *AuditList) Window() paginate.Window {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager.Window()
}

// Visible returns the revealed audits.
func (l *AuditList) Visible() []models.Audit {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager.Visible()
}

// State returns the pagination state.
func (l *AuditList) State() paginate.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager.State()
}

// AFIP reports whether the list shows AFIP audits.
func (l *AuditList) AFIP() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.afip
}

// ShowScrollToTop reports whether the last scroll offset warrants a
// scroll-to-top control.
func (l *AuditList) ShowScrollToTop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return paginate.ShowScrollToTop(l.offset)
}

func (l *AuditList) reset(ctx context.Context) {
	l.offset = 0
	tk := l.pager.Reset()
	l.log.Debug("reset list", zap.Bool("afip", l.afip), zap.Uint64("generation", tk.Generation))
	l.fetch(ctx, tk, l.afip)
}

// fetch must be called with mu held.
func (l *AuditList) fetch(ctx context.Context, tk paginate.Ticket, afip bool) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		records, err := l.data.ListAudits(ctx)

		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			if l.pager.Fail(tk) {
				l.log.Warn("list audits", zap.Error(err))
				l.view.OnError(err)
			}
			return
		}
		snapshot := aggregate.SortByRecencyDesc(aggregate.FilterByCategory(records, afip))
		if !l.pager.Apply(tk, snapshot) {
			l.log.Debug("dropped stale page", zap.Uint64("generation", tk.Generation), zap.Int("page", tk.Page))
			return
		}
		l.view.OnVisibleSetChanged(l.pager.Visible(), l.pager.Window().HasMore)
	}()
}
