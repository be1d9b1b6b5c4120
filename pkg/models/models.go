package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ServiceType identifies the work booked for a visit
type ServiceType string

const (
	FullService ServiceType = "full_service"
	BathOnly    ServiceType = "bath_only"
	Handstrip   ServiceType = "handstrip"
	NailsOnly   ServiceType = "nails_only"
)

// ParseServiceType normalizes the spellings used by the booking system
func ParseServiceType(s string) (ServiceType, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, " ", "_"))) {
	case "full_service", "full", "full_groom", "fs":
		return FullService, nil
	case "bath_only", "bath", "bath_&_brush", "bath_and_brush":
		return BathOnly, nil
	case "handstrip", "hand_strip", "hs":
		return Handstrip, nil
	case "nails_only", "nails", "nail_trim":
		return NailsOnly, nil
	}
	return "", fmt.Errorf("unknown service type %q", s)
}

// Valid reports whether the service is one of the four booked kinds
func (s ServiceType) Valid() bool {
	switch s {
	case FullService, BathOnly, Handstrip, NailsOnly:
		return true
	}
	return false
}

// SizeCategory buckets pets the way the booking system's pet types do
type SizeCategory string

const (
	SizeXS      SizeCategory = "XS"
	SizeSM      SizeCategory = "SM"
	SizeMD      SizeCategory = "MD"
	SizeLG      SizeCategory = "LG"
	SizeXL      SizeCategory = "XL"
	SizeUnknown SizeCategory = "unknown"
)

// sizeRank orders categories smallest to largest; unknown ranks below XS
var sizeRank = map[SizeCategory]int{
	SizeUnknown: 0,
	SizeXS:      1,
	SizeSM:      2,
	SizeMD:      3,
	SizeLG:      4,
	SizeXL:      5,
}

// ParseSizeCategory recognizes the pet-type spellings the booking system
// exports (XL DOG, MEDIUM, Lg, small...). Anything unrecognized maps to
// SizeUnknown rather than an error; size is advisory for most rules.
func ParseSizeCategory(s string) SizeCategory {
	up := strings.ToUpper(strings.TrimSpace(s))
	for _, tok := range strings.Fields(up) {
		switch tok {
		case "XS", "XSMALL", "X-SMALL", "TOY":
			return SizeXS
		case "SM", "SMALL", "S":
			return SizeSM
		case "MD", "MED", "MEDIUM", "M":
			return SizeMD
		case "LG", "LARGE", "L":
			return SizeLG
		case "XL", "XLARGE", "X-LARGE", "GIANT":
			return SizeXL
		}
	}
	return SizeUnknown
}

// Valid reports whether the category is a known size bucket
func (c SizeCategory) Valid() bool {
	_, ok := sizeRank[c]
	return ok
}

// AtLeast reports whether the category is min or larger. Unknown sizes
// rank below XS, so they never satisfy an MD+ check.
func (c SizeCategory) AtLeast(min SizeCategory) bool {
	return sizeRank[c] >= sizeRank[min]
}

// VisitHistory summarizes a pet's completed visits as exported by the
// booking system. GroomerBreakdown keys are groomer display names.
type VisitHistory struct {
	TotalVisits       int            `json:"total_visits"`
	GroomerBreakdown  map[string]int `json:"groomer_breakdown,omitempty"`
	LastCompletedDate string         `json:"last_completed_date,omitempty"`
	NextScheduledDate string         `json:"next_scheduled_date,omitempty"`
}

// IsNew reports whether the pet has never completed a visit
func (h VisitHistory) IsNew() bool {
	return h.TotalVisits == 0 || h.LastCompletedDate == ""
}

// ParseGroomerBreakdown reads the booking system's pipe export format,
// e.g. "Kumi:12|Tomoko:3". Empty input is an empty breakdown.
func ParseGroomerBreakdown(s string) (map[string]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	out := map[string]int{}
	for _, part := range strings.Split(s, "|") {
		name, countStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("bad groomer stats entry %q", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return nil, fmt.Errorf("bad groomer stats count %q", part)
		}
		out[strings.TrimSpace(name)] += n
	}
	return out, nil
}

// Validate rejects breakdowns that cannot describe a real history
func (h VisitHistory) Validate() error {
	if h.TotalVisits < 0 {
		return fmt.Errorf("negative total_visits %d", h.TotalVisits)
	}
	sum := 0
	for name, n := range h.GroomerBreakdown {
		if n < 0 {
			return fmt.Errorf("negative visit count %d for groomer %q", n, name)
		}
		sum += n
	}
	if sum > h.TotalVisits {
		return fmt.Errorf("groomer breakdown sums to %d but total_visits is %d", sum, h.TotalVisits)
	}
	return nil
}

// Pet name markers the front desk embeds in the booking system, where
// there is no structured field for them.
const (
	MarkerHandstrip = "#"    // coat is hand-stripped, specialist only
	MarkerShowDog   = "*"    // show coat, extra care
	MarkerNewPet    = ":NEW" // has not completed a first visit yet
)

// Appointment is one booked or requested visit as relayed by the
// data-access collaborator. Dates are YYYY-MM-DD, times HH:MM.
type Appointment struct {
	ID               string       `json:"id"`
	PetID            string       `json:"pet_id,omitempty"`
	PetName          string       `json:"pet_name"`
	Size             SizeCategory `json:"size"`
	Service          ServiceType  `json:"service"`
	PreferredGroomer string       `json:"preferred_groomer,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	History          VisitHistory `json:"history"`
	Date             string       `json:"date,omitempty"`
	Time             string       `json:"time,omitempty"`
	ClientName       string       `json:"client_name,omitempty"`
	SelfBath         bool         `json:"self_bath,omitempty"`
}

// NeedsHandstrip is true for handstrip bookings and for pets whose
// name carries the # marker regardless of the booked service
func (a Appointment) NeedsHandstrip() bool {
	return a.Service == Handstrip || strings.Contains(a.PetName, MarkerHandstrip)
}

// ShowDog reports the * marker in the pet name
func (a Appointment) ShowDog() bool {
	return strings.Contains(a.PetName, MarkerShowDog)
}

// NeverCompleted reports the :NEW marker in the pet name
func (a Appointment) NeverCompleted() bool {
	return strings.Contains(strings.ToUpper(a.PetName), MarkerNewPet)
}

// NeedsBather is true when the visit occupies the shared bather: baths
// and full grooms, unless the dog is a staff member's own (self bath).
// Handstripped coats are never washed before stripping.
func (a Appointment) NeedsBather() bool {
	if a.SelfBath || a.NeedsHandstrip() {
		return false
	}
	return a.Service == FullService || a.Service == BathOnly
}

// Validate rejects records the rule engines must not guess about
func (a Appointment) Validate() error {
	if !a.Service.Valid() {
		return fmt.Errorf("appointment %s: unknown service type %q", a.ID, string(a.Service))
	}
	if !a.Size.Valid() {
		return fmt.Errorf("appointment %s: unknown size category %q", a.ID, string(a.Size))
	}
	if err := a.History.Validate(); err != nil {
		return fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	if a.Time != "" {
		if _, err := ParseClock(a.Time); err != nil {
			return fmt.Errorf("appointment %s: %w", a.ID, err)
		}
	}
	if a.Date != "" {
		if _, err := ParseDate(a.Date); err != nil {
			return fmt.Errorf("appointment %s: %w", a.ID, err)
		}
	}
	return nil
}

// FlexibleBucket is the catch-all assignment when no rule matches
const FlexibleBucket = "Flexible"

// Assignment is the classifier verdict for one appointment
type Assignment struct {
	AppointmentID string `json:"appointment_id"`
	PetName       string `json:"pet_name,omitempty"`
	Groomer       string `json:"groomer"`
	Reason        string `json:"reason"`
	Rule          string `json:"rule"`
}

// DaySchedule is one groomer's booked column for one date, ordered by time
type DaySchedule struct {
	Groomer      string        `json:"groomer"`
	Date         string        `json:"date"`
	Appointments []Appointment `json:"appointments"`
}

// Severity splits hard double-bookings from bather-load warnings
type Severity string

const (
	SeverityConflict Severity = "conflict"
	SeverityWarning  Severity = "warning"
)

// OverlapDetail names one booked appointment a candidate slot collides with
type OverlapDetail struct {
	TimeRange  string      `json:"time_range"`
	Groomer    string      `json:"groomer,omitempty"`
	PetName    string      `json:"pet_name"`
	ClientName string      `json:"client_name,omitempty"`
	Service    ServiceType `json:"service"`
}

// Finding is one unsafe slot the detector reports. Acknowledgement
// fields are filled in at the API boundary from stored acks; the
// detector itself never sets them.
type Finding struct {
	Groomer      string          `json:"groomer"`
	Date         string          `json:"date"`
	DayOfWeek    string          `json:"day_of_week"`
	Slot         string          `json:"slot"`
	SlotDisplay  string          `json:"slot_display"`
	Severity     Severity        `json:"severity"`
	Detail       string          `json:"detail"`
	Overlaps     []OverlapDetail `json:"overlaps,omitempty"`
	Acknowledged bool            `json:"acknowledged,omitempty"`
	AckedBy      string          `json:"acked_by,omitempty"`
	AckedAt      string          `json:"acked_at,omitempty"`
	AckNote      string          `json:"ack_note,omitempty"`
}
