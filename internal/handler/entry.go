package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shivenk/gatepass/internal/gate"
	"github.com/shivenk/gatepass/internal/queue"
	queue_publisher "github.com/shivenk/gatepass/internal/service"
)

// wrongEntryToken is the remark a guard's cancel action appends to a
// mis-keyed entry. The record itself is never deleted.
const wrongEntryToken = "WRONG_ENTRY"

// EntryHandler exposes the mutating side of the gate: creating entries,
// matching exits and annotating mistakes.
type EntryHandler struct {
	Lifecycle *gate.Lifecycle
	Resolver  *gate.Resolver
}

func NewEntryHandler(l *gate.Lifecycle, r *gate.Resolver) *EntryHandler {
	if l == nil || r == nil {
		panic("nil dependency passed to NewEntryHandler")
	}
	return &EntryHandler{Lifecycle: l, Resolver: r}
}

type createEntryReq struct {
	gate.EntryInput
	// CustomDestination is folded into Destination when the guard
	// picks "Other" on the kiosk form.
	CustomDestination string `json:"custom_destination"`
}

type markExitReq struct {
	gate.Selector
	OutTime string `json:"out_time"`
}

type annotateReq struct {
	Text string `json:"text"`
}

// Create validates and persists a new entry, then hands the finalized
// record to the slip queue for printing. The slip is best-effort: a
// broker outage never fails the entry.
func (h *EntryHandler) Create(c echo.Context) error {
	var req createEntryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.EqualFold(strings.TrimSpace(req.Destination), "Other") && strings.TrimSpace(req.CustomDestination) != "" {
		req.Destination = "Other - " + strings.TrimSpace(req.CustomDestination)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Lifecycle.CreateEntry(ctx, req.EntryInput)
	if err != nil {
		return coreError(c, err)
	}

	ev := queue.EntryCreatedEvent{
		EntryID:     e.EntryID,
		Name:        e.Name,
		ContactNo:   e.ContactNo,
		Destination: e.Destination,
		Reason:      e.Reason,
		VehicleType: e.VehicleType,
		InTime:      e.InTime.Format("02-01-2006 15:04:05"),
		NoPerson:    e.NoPerson,
		CreatedBy:   currentUsername(c),
	}
	if e.VehicleNo != nil {
		ev.VehicleNo = *e.VehicleNo
	}
	if e.Remarks != nil {
		ev.Remarks = *e.Remarks
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue_publisher.PublishEntryCreated(ctx, ev); err != nil {
			log.Printf("entry %s: slip publish failed: %v", e.EntryID, err)
		}
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "entry added successfully",
		"entry":   e,
	})
}

// MarkExit matches an exit signal back to its open entry and closes it.
// The selector is exactly one of entry_id, vehicle_no or contact_no; a
// failed match is a routine 404, never a system error, so guard
// stations don't see alarms for a mistyped plate.
func (h *EntryHandler) MarkExit(c echo.Context) error {
	var req markExitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var outTime time.Time
	if s := strings.TrimSpace(req.OutTime); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "out_time must be RFC3339"})
		}
		outTime = t
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	closed, err := h.Resolver.ResolveExit(ctx, req.Selector, outTime)
	if err != nil {
		return coreError(c, err)
	}
	if !closed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no matching open entry"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "exit marked successfully"})
}

// Annotate appends a remark token to an entry.
func (h *EntryHandler) Annotate(c echo.Context) error {
	var req annotateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Lifecycle.Annotate(ctx, c.Param("id"), req.Text)
	if err != nil {
		return coreError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no matching entry found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "remarks updated successfully"})
}

// Cancel flags a mis-keyed entry with the WRONG_ENTRY remark. The audit
// record stays; only the annotation marks it void.
func (h *EntryHandler) Cancel(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Lifecycle.Annotate(ctx, c.Param("id"), wrongEntryToken)
	if err != nil {
		return coreError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no matching entry found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "entry marked as wrong"})
}
