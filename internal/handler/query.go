package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shivenk/gatepass/internal/gate"
)

// QueryHandler exposes the read-only side of the gate: full listings,
// the currently-inside view, field searches and returning-visitor
// lookups. It never mutates entries.
type QueryHandler struct {
	Query *gate.Query
}

func NewQueryHandler(q *gate.Query) *QueryHandler {
	if q == nil {
		panic("nil query engine passed to NewQueryHandler")
	}
	return &QueryHandler{Query: q}
}

// pageParams reads 1-based pagination query parameters with the same
// clamping the rest of the API uses.
func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}
	return page, ps
}

// ListAll returns one page of the entry log, newest first, with the
// total for pagination UI.
func (h *QueryHandler) ListAll(c echo.Context) error {
	page, ps := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, total, err := h.Query.ListAll(ctx, page, ps)
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      entries,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}

// ListOpen returns every visitor currently inside, newest first.
func (h *QueryHandler) ListOpen(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, err := h.Query.ListOpen(ctx)
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": entries})
}

// Search returns one page of entries matching ?field= and ?q=. The
// field is one of id, name, contact_no, date; date values are DD/MM/YYYY.
func (h *QueryHandler) Search(c echo.Context) error {
	field, err := gate.ParseField(c.QueryParam("field"))
	if err != nil {
		return coreError(c, err)
	}
	page, ps := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, total, err := h.Query.Search(ctx, field, c.QueryParam("q"), page, ps)
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      entries,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}

// SearchOpen is Search restricted to visitors currently inside,
// unpaginated.
func (h *QueryHandler) SearchOpen(c echo.Context) error {
	field, err := gate.ParseField(c.QueryParam("field"))
	if err != nil {
		return coreError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, err := h.Query.SearchOpen(ctx, field, c.QueryParam("q"))
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": entries})
}

// Recent returns a returning visitor's last few entries so the kiosk
// can prefill destination and reason.
func (h *QueryHandler) Recent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := reqCtx(c)
	defer cancel()

	visits, err := h.Query.RecentForContact(ctx, c.QueryParam("contact_no"), limit)
	if err != nil {
		return coreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": visits})
}

// VisitorDetails returns the name and last vehicle recorded for a phone
// number, or 404 when the visitor has never been through the gate.
func (h *QueryHandler) VisitorDetails(c echo.Context) error {
	contact := strings.TrimSpace(c.QueryParam("contact_no"))
	if contact == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contact_no required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	visits, err := h.Query.LatestEntryForContact(ctx, contact)
	if err != nil {
		return coreError(c, err)
	}
	if visits == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "visitor not found"})
	}
	resp := echo.Map{
		"name":         visits.Name,
		"vehicle_type": visits.VehicleType,
		"vehicle_no":   "",
	}
	if visits.VehicleNo != nil {
		resp["vehicle_no"] = *visits.VehicleNo
	}
	return c.JSON(http.StatusOK, resp)
}
