package models

import "time"

// RoomKind classifies a room.
type RoomKind string

const (
	RoomClassroom  RoomKind = "CLASSROOM"
	RoomVirtual    RoomKind = "VIRTUAL"
	RoomLab        RoomKind = "LAB"
	RoomAuditorium RoomKind = "AUDITORIUM"
)

// Valid reports whether the kind is one of the recognised values.
func (k RoomKind) Valid() bool {
	switch k {
	case RoomClassroom, RoomVirtual, RoomLab, RoomAuditorium:
		return true
	}
	return false
}

// Physical reports whether rooms of this kind occupy a real location.
func (k RoomKind) Physical() bool {
	return k.Valid() && k != RoomVirtual
}

// RequiresProjector reports whether rooms of this kind are always equipped
// with a projector.
func (k RoomKind) RequiresProjector() bool {
	return k == RoomLab || k == RoomAuditorium
}

// RoomAvailability is the current occupancy state of a room.
type RoomAvailability string

const (
	RoomFree        RoomAvailability = "FREE"
	RoomOccupied    RoomAvailability = "OCCUPIED"
	RoomMaintenance RoomAvailability = "MAINTENANCE"
)

// Valid reports whether the availability is a recognised state.
func (a RoomAvailability) Valid() bool {
	switch a {
	case RoomFree, RoomOccupied, RoomMaintenance:
		return true
	}
	return false
}

// Room represents a teaching room. Names are unique case-insensitively.
type Room struct {
	ID           string           `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Kind         RoomKind         `db:"kind" json:"kind"`
	Capacity     int              `db:"capacity" json:"capacity"`
	HasProjector bool             `db:"has_projector" json:"has_projector"`
	Availability RoomAvailability `db:"availability" json:"availability"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// RoomFilter describes query params for listing rooms.
type RoomFilter struct {
	Kind         RoomKind
	Availability RoomAvailability
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
