package timeline

import (
	"time"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/interval"
)

// Window is the contiguous run of days a timeline view shows.
type Window struct {
	Start time.Time
	Span  int
}

// NewWindow anchors a window on the calendar date of start. Span must be at least one day.
func NewWindow(start time.Time, span int) (Window, error) {
	if span < 1 {
		return Window{}, interval.ErrInvalidRange
	}
	return Window{Start: interval.Date(start), Span: span}, nil
}

// End is the first day after the window.
func (w Window) End() time.Time {
	return w.Start.AddDate(0, 0, w.Span)
}

// Next pages forward by the window's own span.
func (w Window) Next() Window {
	return Window{Start: w.Start.AddDate(0, 0, w.Span), Span: w.Span}
}

// Previous pages backward by the window's own span.
func (w Window) Previous() Window {
	return Window{Start: w.Start.AddDate(0, 0, -w.Span), Span: w.Span}
}

// JumpToToday moves the anchor to the calendar date of now.
func (w Window) JumpToToday(now time.Time) Window {
	return Window{Start: interval.Date(now), Span: w.Span}
}

// WithSpan resizes the window. The anchor stays where it is.
func (w Window) WithSpan(span int) (Window, error) {
	if span < 1 {
		return w, interval.ErrInvalidRange
	}
	return Window{Start: w.Start, Span: span}, nil
}
