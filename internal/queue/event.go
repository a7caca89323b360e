// Package queue defines message payloads exchanged over the message broker.
package queue

// EntryCreatedEvent is published when a gate entry is created. It carries
// the fully-populated record so the downstream slip renderer can format
// the entry-exit pass without querying the primary database.
type EntryCreatedEvent struct {
	EntryID     string `json:"entry_id"`
	Name        string `json:"name"`
	ContactNo   string `json:"contact_no"`
	Destination string `json:"destination"`
	Reason      string `json:"reason"`
	VehicleType string `json:"vehicle_type"`
	VehicleNo   string `json:"vehicle_no,omitempty"`
	InTime      string `json:"in_time"`
	NoPerson    int    `json:"no_person"`
	Remarks     string `json:"remarks,omitempty"`
	CreatedBy   string `json:"created_by"`
}
