// Package timeline places bookings on a paged calendar window. Positions are
// returned as fractions of the window; turning them into pixels, and any
// minimum on-screen width, is left to the renderer.
package timeline

import (
	"cmp"
	"slices"
	"time"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/interval"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
)

// Block is the visible part of one booking within a window.
type Block struct {
	Booking         model.Booking
	VisibleStart    time.Time
	VisibleEnd      time.Time
	StartOffsetDays int
	VisibleDays     int
	LeftFraction    float64
	WidthFraction   float64
}

// Project returns, for every room, the active bookings overlapping w as blocks
// ordered by check-in. Rooms without visible bookings map to an empty slice.
// Overlapping bookings on one room are all kept.
func Project(rooms []model.Room, bookings []model.Booking, w Window) map[string][]Block {
	out := make(map[string][]Block, len(rooms))
	for _, r := range rooms {
		out[r.ID] = []Block{}
	}
	if w.Span < 1 {
		return out
	}

	winEnd := w.End()
	for _, b := range bookings {
		row, ok := out[b.RoomID]
		if !ok || !b.Active() {
			continue
		}
		block, visible := project(b, w.Start, winEnd, w.Span)
		if !visible {
			continue
		}
		out[b.RoomID] = append(row, block)
	}

	for id, row := range out {
		slices.SortStableFunc(row, func(a, b Block) int {
			return cmp.Compare(a.Booking.CheckIn.Unix(), b.Booking.CheckIn.Unix())
		})
		out[id] = row
	}
	return out
}

func project(b model.Booking, winStart, winEnd time.Time, span int) (Block, bool) {
	start, end, ok := interval.Clamp(b.CheckIn, b.CheckOut, winStart, winEnd)
	if !ok {
		return Block{}, false
	}

	offset := interval.DurationDays(winStart, start)
	days := interval.DurationDays(start, end)
	left := float64(offset) / float64(span)
	width := float64(days) / float64(span)
	if left+width > 1 {
		// float rounding only; offset+days never exceeds span after Clamp.
		width = 1 - left
	}

	return Block{
		Booking:         b,
		VisibleStart:    start,
		VisibleEnd:      end,
		StartOffsetDays: offset,
		VisibleDays:     days,
		LeftFraction:    left,
		WidthFraction:   width,
	}, true
}
