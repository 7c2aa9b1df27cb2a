package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/frontdesk/libs/httpx"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/guard"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/interval"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/reservations"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/timeline"
)

const (
	maxTimelineSpan  = 366
	maxOccupancyDays = 366
)

type FrontDeskHandler struct {
	svc         *reservations.Service
	logger      *slog.Logger
	defaultSpan int
	now         func() time.Time
}

func NewFrontDeskHandler(svc *reservations.Service, logger *slog.Logger, defaultSpan int) *FrontDeskHandler {
	if defaultSpan < 1 || defaultSpan > maxTimelineSpan {
		defaultSpan = 14
	}
	return &FrontDeskHandler{
		svc:         svc,
		logger:      logger,
		defaultSpan: defaultSpan,
		now:         time.Now,
	}
}

func (h *FrontDeskHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/rooms/available", h.AvailableRooms)
	mux.HandleFunc("/api/v1/rooms/check", h.CheckRoom)
	mux.HandleFunc("/api/v1/reservations", h.CreateReservation)
	mux.HandleFunc("/api/v1/bookings/change", h.ChangeStay)
	mux.HandleFunc("/api/v1/timeline", h.Timeline)
	mux.HandleFunc("/api/v1/occupancy", h.Occupancy)
}

type roomItem struct {
	RoomID       string `json:"room_id"`
	Number       string `json:"number"`
	Type         string `json:"type"`
	Floor        int    `json:"floor"`
	Capacity     int    `json:"capacity"`
	Status       string `json:"status"`
	Housekeeping string `json:"housekeeping_status"`
}

type bookingItem struct {
	BookingID string `json:"booking_id"`
	RoomID    string `json:"room_id"`
	GuestID   string `json:"guest_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Nights    int    `json:"nights"`
	Status    string `json:"status"`
}

type stayRequest struct {
	RoomID   string `json:"room_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type createReservationRequest struct {
	GuestID string        `json:"guest_id"`
	Stays   []stayRequest `json:"stays"`
}

type changeStayRequest struct {
	BookingID string `json:"booking_id"`
	stayRequest
}

type checkRoomResponse struct {
	RoomID               string `json:"room_id"`
	CheckIn              string `json:"check_in"`
	CheckOut             string `json:"check_out"`
	Free                 bool   `json:"free"`
	ConflictingBookingID string `json:"conflicting_booking_id,omitempty"`
}

type blockItem struct {
	BookingID       string  `json:"booking_id"`
	GuestID         string  `json:"guest_id"`
	Status          string  `json:"status"`
	CheckIn         string  `json:"check_in"`
	CheckOut        string  `json:"check_out"`
	VisibleStart    string  `json:"visible_start"`
	VisibleEnd      string  `json:"visible_end"`
	StartOffsetDays int     `json:"start_offset_days"`
	VisibleDays     int     `json:"visible_days"`
	LeftFraction    float64 `json:"left_fraction"`
	WidthFraction   float64 `json:"width_fraction"`
}

type timelineRow struct {
	Room   roomItem    `json:"room"`
	Blocks []blockItem `json:"blocks"`
}

type timelineResponse struct {
	Start         string        `json:"start"`
	End           string        `json:"end"`
	Span          int           `json:"span"`
	PreviousStart string        `json:"previous_start"`
	NextStart     string        `json:"next_start"`
	Rows          []timelineRow `json:"rows"`
}

type occupancyItem struct {
	Date         string  `json:"date"`
	Total        int     `json:"total"`
	Occupied     int     `json:"occupied"`
	Free         int     `json:"free"`
	OutOfService int     `json:"out_of_service"`
	Rate         float64 `json:"rate"`
}

func (h *FrontDeskHandler) AvailableRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	checkIn, checkOut, ok := parseRange(w, q.Get("check_in"), q.Get("check_out"))
	if !ok {
		return
	}
	excludeOOS, _ := strconv.ParseBool(strings.TrimSpace(q.Get("exclude_out_of_service")))

	rooms, err := h.svc.AvailableRooms(r.Context(), reservations.AvailabilityQuery{
		CheckIn:             checkIn,
		CheckOut:            checkOut,
		RoomType:            strings.TrimSpace(q.Get("room_type")),
		ExcludeOutOfService: excludeOOS,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]roomItem, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, toRoomItem(room))
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *FrontDeskHandler) CheckRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	roomID := strings.TrimSpace(q.Get("room_id"))
	if roomID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "room_id is required", nil)
		return
	}
	checkIn, checkOut, ok := parseRange(w, q.Get("check_in"), q.Get("check_out"))
	if !ok {
		return
	}

	res, err := h.svc.CheckRoom(r.Context(), reservations.Stay{RoomID: roomID, CheckIn: checkIn, CheckOut: checkOut}, strings.TrimSpace(q.Get("excluding_booking_id")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, checkRoomResponse{
		RoomID:               roomID,
		CheckIn:              checkIn.Format(time.DateOnly),
		CheckOut:             checkOut.Format(time.DateOnly),
		Free:                 res.Free,
		ConflictingBookingID: res.ConflictingBookingID,
	})
}

func (h *FrontDeskHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body", nil)
		return
	}

	stays := make([]reservations.Stay, 0, len(req.Stays))
	for _, s := range req.Stays {
		stay, ok := parseStay(w, s)
		if !ok {
			return
		}
		stays = append(stays, stay)
	}

	created, err := h.svc.Reserve(r.Context(), reservations.NewReservation{GuestID: req.GuestID, Stays: stays})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]bookingItem, 0, len(created))
	for _, b := range created {
		items = append(items, toBookingItem(b))
	}
	httpx.WriteJSON(w, http.StatusCreated, items)
}

func (h *FrontDeskHandler) ChangeStay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req changeStayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body", nil)
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "booking_id is required", nil)
		return
	}
	stay, ok := parseStay(w, req.stayRequest)
	if !ok {
		return
	}

	updated, err := h.svc.ChangeStay(r.Context(), req.BookingID, stay)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toBookingItem(updated))
}

func (h *FrontDeskHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	start := h.now()
	if raw := strings.TrimSpace(q.Get("start")); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid start", nil)
			return
		}
		start = d
	}
	span := h.defaultSpan
	if raw := strings.TrimSpace(q.Get("span")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTimelineSpan {
			httpx.WriteError(w, http.StatusBadRequest, "span must be between 1 and 366", nil)
			return
		}
		span = n
	}
	win, err := timeline.NewWindow(start, span)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	switch strings.TrimSpace(q.Get("nav")) {
	case "":
	case "next":
		win = win.Next()
	case "previous":
		win = win.Previous()
	case "today":
		win = win.JumpToToday(h.now())
	default:
		httpx.WriteError(w, http.StatusBadRequest, "nav must be next, previous or today", nil)
		return
	}

	board, err := h.svc.Timeline(r.Context(), reservations.TimelineQuery{Window: win, RoomType: strings.TrimSpace(q.Get("room_type"))})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := timelineResponse{
		Start:         win.Start.Format(time.DateOnly),
		End:           win.End().Format(time.DateOnly),
		Span:          win.Span,
		PreviousStart: win.Previous().Start.Format(time.DateOnly),
		NextStart:     win.Next().Start.Format(time.DateOnly),
		Rows:          make([]timelineRow, 0, len(board.Rows)),
	}
	for _, row := range board.Rows {
		blocks := make([]blockItem, 0, len(row.Blocks))
		for _, b := range row.Blocks {
			blocks = append(blocks, blockItem{
				BookingID:       b.Booking.ID,
				GuestID:         b.Booking.GuestID,
				Status:          string(b.Booking.Status),
				CheckIn:         b.Booking.CheckIn.Format(time.DateOnly),
				CheckOut:        b.Booking.CheckOut.Format(time.DateOnly),
				VisibleStart:    b.VisibleStart.Format(time.DateOnly),
				VisibleEnd:      b.VisibleEnd.Format(time.DateOnly),
				StartOffsetDays: b.StartOffsetDays,
				VisibleDays:     b.VisibleDays,
				LeftFraction:    b.LeftFraction,
				WidthFraction:   b.WidthFraction,
			})
		}
		resp.Rows = append(resp.Rows, timelineRow{Room: toRoomItem(row.Room), Blocks: blocks})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *FrontDeskHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	from, to, ok := parseRange(w, q.Get("from"), q.Get("to"))
	if !ok {
		return
	}
	if interval.DurationDays(from, to) > maxOccupancyDays {
		httpx.WriteError(w, http.StatusBadRequest, "occupancy range is limited to 366 nights", nil)
		return
	}

	nights, err := h.svc.Occupancy(r.Context(), from, to)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	items := make([]occupancyItem, 0, len(nights))
	for _, n := range nights {
		items = append(items, occupancyItem{
			Date:         n.Date.Format(time.DateOnly),
			Total:        n.Total,
			Occupied:     n.Occupied,
			Free:         n.Free,
			OutOfService: n.OutOfService,
			Rate:         n.Rate,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *FrontDeskHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		conflict *guard.ConflictError
		overlap  *reservations.OverlappingStaysError
	)
	switch {
	case errors.As(err, &overlap):
		httpx.WriteError(w, http.StatusConflict, err.Error(), map[string]string{
			"room_id":                overlap.RoomID,
			"stay_index":             strconv.Itoa(overlap.Stay),
			"overlapping_stay_index": strconv.Itoa(overlap.OverlapsStay),
		})
	case errors.As(err, &conflict):
		details := map[string]string{
			"room_id":   conflict.RoomID,
			"check_in":  conflict.CheckIn.Format(time.DateOnly),
			"check_out": conflict.CheckOut.Format(time.DateOnly),
		}
		if conflict.BookingID != "" {
			details["conflicting_booking_id"] = conflict.BookingID
		}
		httpx.WriteError(w, http.StatusConflict, guard.ErrRoomConflict.Error(), details)
	case errors.Is(err, interval.ErrInvalidRange),
		errors.Is(err, reservations.ErrMissingGuest),
		errors.Is(err, reservations.ErrNoStays):
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, guard.ErrUnknownRoom), errors.Is(err, guard.ErrUnknownBooking):
		httpx.WriteError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, reservations.ErrBookingInactive):
		httpx.WriteError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		httpx.WriteError(w, http.StatusServiceUnavailable, "request cancelled", nil)
	default:
		h.logger.Error("frontdesk request failed",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, strings.TrimSpace(raw), time.UTC)
}

// parseRange writes a 400 and returns ok=false when either date is missing or malformed.
// Range ordering is left to the service so every caller gets the same error.
func parseRange(w http.ResponseWriter, rawStart, rawEnd string) (time.Time, time.Time, bool) {
	start, err := parseDate(rawStart)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid or missing start date (want YYYY-MM-DD)", nil)
		return time.Time{}, time.Time{}, false
	}
	end, err := parseDate(rawEnd)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid or missing end date (want YYYY-MM-DD)", nil)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseStay(w http.ResponseWriter, s stayRequest) (reservations.Stay, bool) {
	roomID := strings.TrimSpace(s.RoomID)
	if roomID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "room_id is required", nil)
		return reservations.Stay{}, false
	}
	checkIn, checkOut, ok := parseRange(w, s.CheckIn, s.CheckOut)
	if !ok {
		return reservations.Stay{}, false
	}
	return reservations.Stay{RoomID: roomID, CheckIn: checkIn, CheckOut: checkOut}, true
}

func toRoomItem(r model.Room) roomItem {
	return roomItem{
		RoomID:       r.ID,
		Number:       r.Number,
		Type:         r.Type,
		Floor:        r.Floor,
		Capacity:     r.Capacity,
		Status:       string(r.Status),
		Housekeeping: string(r.Housekeeping),
	}
}

func toBookingItem(b model.Booking) bookingItem {
	return bookingItem{
		BookingID: b.ID,
		RoomID:    b.RoomID,
		GuestID:   b.GuestID,
		CheckIn:   b.CheckIn.Format(time.DateOnly),
		CheckOut:  b.CheckOut.Format(time.DateOnly),
		Nights:    interval.DurationDays(b.CheckIn, b.CheckOut),
		Status:    string(b.Status),
	}
}
