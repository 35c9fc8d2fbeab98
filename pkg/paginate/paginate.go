// Package paginate reveals a sorted snapshot one page at a time, driven by
// scroll position.
//
// A Paginator is not safe for concurrent use; callers serialize access.
package paginate

// DefaultThreshold is the distance from the end of the content, in layout
// units, at which the next page is requested.
const DefaultThreshold = 20

// ScrollToTopOffset is the offset past which a scroll-to-top control shows.
const ScrollToTopOffset = 50

// State is the paginator lifecycle state.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Ticket identifies one fetch. Only the ticket of the latest generation is
// accepted by Apply and Fail.
type Ticket struct {
	Generation uint64
	Page       int
}

// Window describes the current page window.
type Window struct {
	PageSize    int
	CurrentPage int
	HasMore     bool
}

// Paginator holds the page window over a snapshot of T.
type Paginator[T any] struct {
	pageSize  int
	threshold float64

	state      State
	page       int
	generation uint64
	snapshot   []T
	hasSnap    bool
	visible    []T
	hasMore    bool
}

// New creates an Idle paginator. A pageSize below 1 is treated as 1 and a
// negative threshold as DefaultThreshold.
func New[T any](pageSize int, threshold float64) *Paginator[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Paginator[T]{pageSize: pageSize, threshold: threshold, page: 1}
}

// Reset starts a new generation at page 1 and enters Loading. Tickets from
// earlier generations become stale.
func (p *Paginator[T]) Reset() Ticket {
	p.generation++
	p.page = 1
	p.state = Loading
	p.snapshot = nil
	p.hasSnap = false
	p.visible = nil
	p.hasMore = false
	return Ticket{Generation: p.generation, Page: p.page}
}

// Apply installs items as the snapshot for t. It returns false and changes
// nothing when t is stale or no fetch is pending.
func (p *Paginator[T]) Apply(t Ticket, items []T) bool {
	if !p.current(t) {
		return false
	}
	p.snapshot = items
	p.hasSnap = true
	p.reveal()
	return true
}

// Fail ends the pending fetch for t. The previous snapshot, if any, stays
// visible. It returns false for a stale ticket.
func (p *Paginator[T]) Fail(t Ticket) bool {
	if !p.current(t) {
		return false
	}
	if !p.hasSnap {
		p.state = Idle
		return true
	}
	// With a snapshot present the pending fetch was an Advance; undo it.
	if p.page > 1 {
		p.page--
	}
	p.reveal()
	return true
}

// Advance requests the next page. It only succeeds from Ready with more
// items to show; in any other state it is a no-op.
func (p *Paginator[T]) Advance() (Ticket, bool) {
	if p.state != Ready || !p.hasMore {
		return Ticket{}, false
	}
	p.page++
	p.state = Loading
	return Ticket{Generation: p.generation, Page: p.page}, true
}

// NearEnd reports whether the viewport bottom is within the threshold of
// the content end.
func (p *Paginator[T]) NearEnd(offset, contentHeight, viewportHeight float64) bool {
	return offset+viewportHeight >= contentHeight-p.threshold
}

// OnScroll advances when the scroll position is near the end.
func (p *Paginator[T]) OnScroll(offset, contentHeight, viewportHeight float64) (Ticket, bool) {
	if !p.NearEnd(offset, contentHeight, viewportHeight) {
		return Ticket{}, false
	}
	return p.Advance()
}

// Window returns the current window.
func (p *Paginator[T]) Window() Window {
	return Window{PageSize: p.pageSize, CurrentPage: p.page, HasMore: p.hasMore}
}

// Visible returns the revealed prefix of the snapshot.
func (p *Paginator[T]) Visible() []T {
	return p.visible
}

// State returns the current state.
func (p *Paginator[T]) State() State {
	return p.state
}

// Generation returns the current generation.
func (p *Paginator[T]) Generation() uint64 {
	return p.generation
}

// ShowScrollToTop reports whether a scroll-to-top control should be shown.
func ShowScrollToTop(offset float64) bool {
	return offset > ScrollToTopOffset
}

func (p *Paginator[T]) current(t Ticket) bool {
	return p.state == Loading && t.Generation == p.generation && t.Page == p.page
}

func (p *Paginator[T]) reveal() {
	n := p.page * p.pageSize
	if n > len(p.snapshot) {
		n = len(p.snapshot)
	}
	p.visible = p.snapshot[:n:n]
	p.hasMore = p.page*p.pageSize < len(p.snapshot)
	if p.hasMore {
		p.state = Ready
	} else {
		p.state = Exhausted
	}
}
