package model

import "time"

// Entry records one pass of a visitor (and optionally a vehicle) through
// the checkpoint. A row is created when the visitor arrives and is the
// system of record for the whole visit: OutTime stays null while the
// visitor is inside and is set exactly once when an exit is matched back
// to the entry. Apart from Remarks, every field is immutable after
// creation.
//
// Fields:
//  EntryID     – public identifier, YYYYMMDD followed by a 4-digit daily
//                sequence (e.g. 202311090042). Globally unique.
//  Name        – visitor name as written at the gate.
//  ContactNo   – visitor phone number; also usable as an exit selector.
//  Destination – where the visitor is headed on campus.
//  Reason      – stated purpose of the visit.
//  VehicleType – "car", "bike", ... or "none" for walk-ins.
//  VehicleNo   – registration plate (nullable); also an exit selector.
//  InTime      – arrival timestamp, checkpoint-local zone.
//  OutTime     – departure timestamp (nullable). Null means the entry is
//                open, i.e. the visitor is still inside.
//  NoDriver    – head-count of drivers in the party.
//  NoStudent   – head-count of students in the party.
//  NoVisitor   – head-count of other visitors in the party.
//  NoPerson    – derived total; always NoDriver+NoStudent+NoVisitor.
//  Remarks     – free-text annotations, appended token by token (e.g.
//                WRONG_ENTRY when a guard flags a mis-keyed record).
type Entry struct {
	EntryID     string     `json:"entry_id"`
	Name        string     `json:"name"`
	ContactNo   string     `json:"contact_no"`
	Destination string     `json:"destination"`
	Reason      string     `json:"reason"`
	VehicleType string     `json:"vehicle_type"`
	VehicleNo   *string    `json:"vehicle_no"`
	InTime      time.Time  `json:"in_time"`
	OutTime     *time.Time `json:"out_time"`
	NoDriver    int        `json:"no_driver"`
	NoStudent   int        `json:"no_student"`
	NoVisitor   int        `json:"no_visitor"`
	NoPerson    int        `json:"no_person"`
	Remarks     *string    `json:"remarks"`
}

// Open reports whether the visitor is still inside.
func (e *Entry) Open() bool { return e.OutTime == nil }

// RecentVisit is a trimmed projection of an Entry returned when a
// returning visitor's phone number is looked up to prefill the form.
// EntryDate is derived from InTime at read time.
type RecentVisit struct {
	EntryID     string  `json:"entry_id"`
	Destination string  `json:"destination"`
	Reason      string  `json:"reason"`
	VehicleType string  `json:"vehicle_type"`
	VehicleNo   *string `json:"vehicle_no"`
	EntryDate   string  `json:"entry_date"`
}
