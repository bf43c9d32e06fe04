package entities

import (
	"fmt"
	"time"
)

// FacilityKind identifies which class of municipal asset a facility is.
type FacilityKind string

const (
	FacilityKindPark          FacilityKind = "PARK"
	FacilityKindToilet        FacilityKind = "TOILET"
	FacilityKindFootballField FacilityKind = "FOOTBALL_FIELD"
)

// FacilityKinds lists every supported kind. The issue and schedule engines
// are kind-agnostic; the kind only scopes listings and route prefixes.
var FacilityKinds = []FacilityKind{
	FacilityKindPark,
	FacilityKindToilet,
	FacilityKindFootballField,
}

// ParseFacilityKind validates a raw kind value.
func ParseFacilityKind(raw string) (FacilityKind, error) {
	switch FacilityKind(raw) {
	case FacilityKindPark, FacilityKindToilet, FacilityKindFootballField:
		return FacilityKind(raw), nil
	}
	return "", fmt.Errorf("unknown facility kind %q", raw)
}

// FacilityStatus is the derived operational state of a facility. It is owned
// by the status synchronizer: issue and schedule transitions write it, general
// facility edits do not.
type FacilityStatus string

const (
	FacilityStatusActive           FacilityStatus = "ACTIVE"
	FacilityStatusFaultDamaged     FacilityStatus = "FAULT_DAMAGED"
	FacilityStatusUnderMaintenance FacilityStatus = "UNDER_MAINTENANCE"
	FacilityStatusOperational      FacilityStatus = "OPERATIONAL"
)

// ParseFacilityStatus validates a raw status value.
func ParseFacilityStatus(raw string) (FacilityStatus, error) {
	switch FacilityStatus(raw) {
	case FacilityStatusActive, FacilityStatusFaultDamaged,
		FacilityStatusUnderMaintenance, FacilityStatusOperational:
		return FacilityStatus(raw), nil
	}
	return "", fmt.Errorf("unknown facility status %q", raw)
}

// Facility represents a physical municipal asset tracked by a stable,
// user-assigned code.
type Facility struct {
	Code      string         `json:"code" db:"code"`
	Kind      FacilityKind   `json:"kind" db:"kind"`
	Name      string         `json:"name" db:"name"`
	Location  string         `json:"location" db:"location"`
	Notes     string         `json:"notes,omitempty" db:"notes"`
	Status    FacilityStatus `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}
