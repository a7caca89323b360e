package queue

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSlip(t *testing.T) {
	ev := EntryCreatedEvent{
		EntryID:     "202311090001",
		Name:        "Asha Verma",
		ContactNo:   "9000012345",
		Destination: "Library",
		Reason:      "Book return",
		VehicleType: "car",
		VehicleNo:   "MH12AB1234",
		InTime:      "09-11-2023 10:15:00",
		NoPerson:    2,
		CreatedBy:   "guard1",
	}

	slip := RenderSlip(ev)
	assert.Contains(t, slip, "ENTRY-EXIT PASS")
	assert.Contains(t, slip, "car (MH12AB1234)")
	assert.Contains(t, slip, "Issued by:   guard1")
	// The id prints twice: once in the body, once at the scan line.
	assert.Equal(t, 2, strings.Count(slip, "202311090001"))
	assert.True(t, strings.HasSuffix(slip, ">> 202311090001 <<\n\n"))
}

func TestRenderSlipNoVehicle(t *testing.T) {
	slip := RenderSlip(EntryCreatedEvent{
		EntryID:     "202311090002",
		Name:        "Walk In",
		VehicleType: "none",
		NoPerson:    1,
	})
	assert.Contains(t, slip, "Vehicle:     none\n")
	assert.NotContains(t, slip, "(")
}
