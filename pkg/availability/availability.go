package availability

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dbfcm/salon-relay-go/pkg/conflicts"
	"github.com/dbfcm/salon-relay-go/pkg/models"
	"github.com/dbfcm/salon-relay-go/pkg/salon"
)

// DuplicateWindowDays is how close two bookings of the same service for
// the same pet must be before the pair is worth a second look
const DuplicateWindowDays = 21

// OpenSlots returns the nominal slots on one groomer's booked day that
// are genuinely safe to offer: the booking surface shows them open and
// a standard block there would not run into any real window.
func OpenSlots(day models.DaySchedule, cfg *salon.Config, includeReserve bool) ([]string, error) {
	w, err := conflicts.ProjectDay(day, cfg)
	if err != nil {
		return nil, err
	}
	var open []string
	for _, slotMin := range cfg.SlotMinutes(includeReserve) {
		if !w.AdvertisedOpen(slotMin) {
			continue
		}
		if len(w.Overlaps(slotMin, cfg.NominalBlockMinutes)) > 0 {
			continue
		}
		open = append(open, models.FormatClock(slotMin))
	}
	return open, nil
}

// Options bound a forward availability walk
type Options struct {
	Days           int      `json:"days"`
	PerGroomer     int      `json:"per_groomer"`
	IncludeReserve bool     `json:"include_reserve"`
	Holidays       []string `json:"holidays"`
}

// SlotOffer is one bookable slot, labeled the way the front desk
// pastes it into a message
type SlotOffer struct {
	Date  string `json:"date"`
	Slot  string `json:"slot"`
	Label string `json:"label"`
}

// GroomerSlots is one groomer's next open slots
type GroomerSlots struct {
	Groomer string      `json:"groomer"`
	Note    string      `json:"note,omitempty"`
	Slots   []SlotOffer `json:"slots"`
}

// NextOpen walks forward from tomorrow collecting safe slots per
// groomer. A groomer with no schedule record for a date is treated as
// not working it; the data collaborator sends one record per working
// day, with an empty appointment list when nothing is booked yet.
// Reserve slots are left out unless asked for: they are held back for
// the manager to give out, not for automatic suggestions.
func NextOpen(schedules []models.DaySchedule, cfg *salon.Config, today time.Time, opts Options) ([]GroomerSlots, error) {
	if opts.Days <= 0 {
		opts.Days = 45
	}
	if opts.PerGroomer <= 0 {
		opts.PerGroomer = 8
	}
	today = models.DateOnly(today)

	holidays := map[string]bool{}
	for _, h := range opts.Holidays {
		holidays[h] = true
	}

	type gdKey struct{ groomer, date string }
	byDay := map[gdKey]models.DaySchedule{}
	for _, ds := range schedules {
		byDay[gdKey{strings.ToLower(ds.Groomer), ds.Date}] = ds
	}

	var out []GroomerSlots
	for _, g := range cfg.Groomers {
		gs := GroomerSlots{Groomer: g.Name, Note: groomerNote(g)}
		for i := 1; i <= opts.Days && len(gs.Slots) < opts.PerGroomer; i++ {
			d := today.AddDate(0, 0, i)
			date := d.Format(models.DateLayout)
			if !cfg.BusinessDay(d.Weekday()) || holidays[date] {
				continue
			}
			day, ok := byDay[gdKey{strings.ToLower(g.Name), date}]
			if !ok {
				continue
			}
			open, err := OpenSlots(day, cfg, opts.IncludeReserve)
			if err != nil {
				return nil, err
			}
			for _, slot := range open {
				gs.Slots = append(gs.Slots, SlotOffer{
					Date:  date,
					Slot:  slot,
					Label: fmt.Sprintf("%s %d %s", d.Format("Mon Jan"), d.Day(), slot),
				})
				if len(gs.Slots) >= opts.PerGroomer {
					break
				}
			}
		}
		out = append(out, gs)
	}
	return out, nil
}

func groomerNote(g salon.Groomer) string {
	switch {
	case g.HandstripSpecialist:
		return "handstrip only"
	case g.LargeBreedDefault:
		return "LG/XL default"
	}
	return ""
}

// CompactText renders the per-groomer availability block as one line
// per groomer, e.g. "Kumi (handstrip only): Tue Mar 3 08:30, ..."
func CompactText(results []GroomerSlots, days int) string {
	var lines []string
	for _, gs := range results {
		label := gs.Groomer
		if gs.Note != "" {
			label = fmt.Sprintf("%s (%s)", gs.Groomer, gs.Note)
		}
		if len(gs.Slots) == 0 {
			lines = append(lines, fmt.Sprintf("%s: no slots in next %d days", label, days))
			continue
		}
		offers := make([]string, len(gs.Slots))
		for i, s := range gs.Slots {
			offers[i] = s.Label
		}
		lines = append(lines, label+": "+strings.Join(offers, ", "))
	}
	return strings.Join(lines, "\n")
}

// DaySummary counts one day's dogs by size and special service
type DaySummary struct {
	Total   int            `json:"total"`
	Sizes   map[string]int `json:"sizes"`
	Special map[string]int `json:"special"`
}

// Summarize tallies a day's appointments. Unknown sizes stay out of
// the size counts but still count toward the total.
func Summarize(appointments []models.Appointment) DaySummary {
	s := DaySummary{
		Total:   len(appointments),
		Sizes:   map[string]int{"XS": 0, "SM": 0, "MD": 0, "LG": 0, "XL": 0},
		Special: map[string]int{"handstrip": 0, "bath_only": 0, "nails_only": 0},
	}
	for _, a := range appointments {
		if a.Size != models.SizeUnknown && a.Size.Valid() {
			s.Sizes[string(a.Size)]++
		}
		switch a.Service {
		case models.Handstrip:
			s.Special["handstrip"]++
		case models.BathOnly:
			s.Special["bath_only"]++
		case models.NailsOnly:
			s.Special["nails_only"]++
		}
	}
	return s
}

// GroomerLoad is one groomer's dog count for a day
type GroomerLoad struct {
	Groomer    string `json:"groomer"`
	Count      int    `json:"count"`
	AtCapacity bool   `json:"at_capacity"`
}

// Load counts dogs per groomer across one date's schedules. At or past
// the configured day capacity is flagged.
func Load(schedules []models.DaySchedule, cfg *salon.Config) []GroomerLoad {
	counts := map[string]int{}
	for _, ds := range schedules {
		if g, ok := cfg.KnownGroomer(ds.Groomer); ok {
			counts[g.Name] += len(ds.Appointments)
		}
	}
	var out []GroomerLoad
	for _, g := range cfg.Groomers {
		n, ok := counts[g.Name]
		if !ok {
			continue
		}
		out = append(out, GroomerLoad{Groomer: g.Name, Count: n, AtCapacity: n >= cfg.GroomerDayCapacity})
	}
	return out
}

// DuplicatePair is two bookings of the same service for the same pet
// close enough together to question
type DuplicatePair struct {
	PetName   string             `json:"pet_name"`
	Service   models.ServiceType `json:"service"`
	FirstDate string             `json:"first_date"`
	NextDate  string             `json:"next_date"`
	DaysApart int                `json:"days_apart"`
}

// Duplicates flags same-pet same-service bookings within 21 days of
// each other. A bath close to a full groom is normal and intentional,
// so only identical service types pair up.
func Duplicates(upcoming []models.Appointment) ([]DuplicatePair, error) {
	type key struct {
		pet string
		svc models.ServiceType
	}
	type visit struct {
		appt models.Appointment
		day  time.Time
	}
	byKey := map[key][]visit{}
	for _, a := range upcoming {
		if a.Date == "" {
			continue
		}
		d, err := models.ParseDate(a.Date)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
		}
		k := key{petKey(a), a.Service}
		byKey[k] = append(byKey[k], visit{a, d})
	}

	var out []DuplicatePair
	for _, visits := range byKey {
		if len(visits) < 2 {
			continue
		}
		sort.Slice(visits, func(i, j int) bool { return visits[i].day.Before(visits[j].day) })
		for i := 0; i < len(visits); i++ {
			for j := i + 1; j < len(visits); j++ {
				gap := int(visits[j].day.Sub(visits[i].day).Hours() / 24)
				if gap > DuplicateWindowDays {
					break
				}
				out = append(out, DuplicatePair{
					PetName:   visits[i].appt.PetName,
					Service:   visits[i].appt.Service,
					FirstDate: visits[i].appt.Date,
					NextDate:  visits[j].appt.Date,
					DaysApart: gap,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PetName != out[j].PetName {
			return out[i].PetName < out[j].PetName
		}
		if out[i].FirstDate != out[j].FirstDate {
			return out[i].FirstDate < out[j].FirstDate
		}
		return out[i].NextDate < out[j].NextDate
	})
	return out, nil
}

func petKey(a models.Appointment) string {
	if a.PetID != "" {
		return a.PetID
	}
	return strings.ToLower(a.ClientName + "|" + a.PetName)
}
