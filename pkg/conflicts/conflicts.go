package conflicts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dbfcm/salon-relay-go/pkg/models"
	"github.com/dbfcm/salon-relay-go/pkg/salon"
)

// booking is one booked appointment with its windows projected onto the
// day. nominalEnd is what the booking surface advertises; realEnd is
// what the floor actually experiences, taken from the top of the
// configured duration range.
type booking struct {
	appt       models.Appointment
	groomer    string
	start      int
	nominalEnd int
	realEnd    int
}

// DayWindows is one groomer's booked day projected onto the timeline.
// Both the conflict scan and the open-slot reporter ask it the same two
// questions, so they can never disagree about what is safe.
type DayWindows struct {
	Groomer  string
	Date     string
	bookings []booking
}

// ProjectDay parses one groomer's day and computes every appointment's
// nominal block and real window
func ProjectDay(day models.DaySchedule, cfg *salon.Config) (*DayWindows, error) {
	w := &DayWindows{Groomer: day.Groomer, Date: day.Date}
	for _, a := range day.Appointments {
		start, err := models.ParseClock(a.Time)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
		}
		dur := cfg.Durations.For(a.Service, a.Size)
		if dur.Max <= 0 {
			return nil, fmt.Errorf("appointment %s: no duration configured for service %q", a.ID, string(a.Service))
		}
		w.bookings = append(w.bookings, booking{
			appt:       a,
			groomer:    day.Groomer,
			start:      start,
			nominalEnd: start + cfg.NominalBlockMinutes,
			realEnd:    start + dur.Max,
		})
	}
	sort.Slice(w.bookings, func(i, j int) bool { return w.bookings[i].start < w.bookings[j].start })
	return w, nil
}

// Booked reports whether anything is booked on the day
func (w *DayWindows) Booked() bool {
	return len(w.bookings) > 0
}

// AdvertisedOpen reports whether the booking surface would still show
// the slot as free, i.e. no nominal block covers its start
func (w *DayWindows) AdvertisedOpen(slotMin int) bool {
	for _, b := range w.bookings {
		if b.start <= slotMin && slotMin < b.nominalEnd {
			return false
		}
	}
	return true
}

// Overlaps lists the booked appointments whose real windows intersect a
// candidate block [slotMin, slotMin+blockMin)
func (w *DayWindows) Overlaps(slotMin, blockMin int) []models.OverlapDetail {
	var out []models.OverlapDetail
	for _, b := range w.bookings {
		if slotMin < b.realEnd && slotMin+blockMin > b.start {
			out = append(out, overlapDetail(b, false))
		}
	}
	return out
}

// ValidateSchedules rejects input the detector must not guess about:
// unknown groomers, a groomer listed twice for one date, malformed
// appointments, booked appointments with no start time.
func ValidateSchedules(schedules []models.DaySchedule, cfg *salon.Config) error {
	seen := map[string]bool{}
	for _, ds := range schedules {
		if _, ok := cfg.KnownGroomer(ds.Groomer); !ok {
			return fmt.Errorf("unknown groomer %q", ds.Groomer)
		}
		if _, err := models.ParseDate(ds.Date); err != nil {
			return err
		}
		key := strings.ToLower(ds.Groomer) + "|" + ds.Date
		if seen[key] {
			return fmt.Errorf("groomer %s listed twice for %s", ds.Groomer, ds.Date)
		}
		seen[key] = true
		for _, a := range ds.Appointments {
			if err := a.Validate(); err != nil {
				return err
			}
			if a.Time == "" {
				return fmt.Errorf("appointment %s on %s has no start time", a.ID, ds.Date)
			}
		}
	}
	return nil
}

// Detect scans booked schedules for slots the booking surface would
// still advertise open but that are not actually safe to book. Same
// groomer real-window overlaps are hard conflicts; shared-bather
// pressure at the same nominal time across groomers is a lower-severity
// warning. Pure and idempotent: same input, same findings.
func Detect(schedules []models.DaySchedule, cfg *salon.Config, today time.Time) ([]models.Finding, error) {
	today = models.DateOnly(today)
	horizonEnd := today.AddDate(0, 0, cfg.HorizonDays)

	type slotKey struct {
		date string
		min  int
	}
	// MD+ dogs needing the shared bather, by exact nominal start time
	batherLoad := map[slotKey][]booking{}

	type groomerDay struct {
		date    time.Time
		windows *DayWindows
	}
	var days []groomerDay

	for _, ds := range schedules {
		d, err := models.ParseDate(ds.Date)
		if err != nil {
			return nil, err
		}
		if !d.After(today) || d.After(horizonEnd) {
			continue
		}
		if !cfg.BusinessDay(d.Weekday()) {
			continue
		}
		w, err := ProjectDay(ds, cfg)
		if err != nil {
			return nil, err
		}
		for _, b := range w.bookings {
			if b.appt.NeedsBather() && b.appt.Size.AtLeast(models.SizeMD) {
				k := slotKey{ds.Date, b.start}
				batherLoad[k] = append(batherLoad[k], b)
			}
		}
		days = append(days, groomerDay{d, w})
	}

	// Reserve slots are scanned too: a double-booked 14:30 is just as
	// unsafe whether or not it is ever auto-suggested.
	slots := cfg.SlotMinutes(true)

	var findings []models.Finding
	for _, day := range days {
		if !day.windows.Booked() {
			continue
		}
		for _, slotMin := range slots {
			if !day.windows.AdvertisedOpen(slotMin) {
				continue
			}

			if over := day.windows.Overlaps(slotMin, cfg.NominalBlockMinutes); len(over) > 0 {
				findings = append(findings, finding(day.windows, day.date, slotMin,
					models.SeverityConflict,
					fmt.Sprintf("slot shows open but a real window runs into it (%d booked)", len(over)),
					over))
				continue
			}

			competing := batherLoad[slotKey{day.windows.Date, slotMin}]
			if len(competing) >= cfg.BathConcurrency {
				var details []models.OverlapDetail
				for _, b := range competing {
					details = append(details, overlapDetail(b, true))
				}
				findings = append(findings, finding(day.windows, day.date, slotMin,
					models.SeverityWarning,
					fmt.Sprintf("%d medium-or-larger dog(s) already need the bather at this time", len(competing)),
					details))
			}
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		ai, bi := cfg.GroomerIndex(a.Groomer), cfg.GroomerIndex(b.Groomer)
		if ai != bi {
			return ai < bi
		}
		am, _ := models.ParseClock(a.Slot)
		bm, _ := models.ParseClock(b.Slot)
		return am < bm
	})
	return findings, nil
}

func overlapDetail(b booking, withGroomer bool) models.OverlapDetail {
	d := models.OverlapDetail{
		TimeRange:  models.DisplayRange(b.start, b.realEnd),
		PetName:    b.appt.PetName,
		ClientName: b.appt.ClientName,
		Service:    b.appt.Service,
	}
	if withGroomer {
		d.Groomer = b.groomer
	}
	return d
}

func finding(w *DayWindows, date time.Time, slotMin int, sev models.Severity, detail string, over []models.OverlapDetail) models.Finding {
	slot := models.FormatClock(slotMin)
	return models.Finding{
		Groomer:     w.Groomer,
		Date:        w.Date,
		DayOfWeek:   date.Weekday().String(),
		Slot:        slot,
		SlotDisplay: models.Display12h(slot),
		Severity:    sev,
		Detail:      detail,
		Overlaps:    over,
	}
}

// Fingerprint is the stable identity of a finding for acknowledgement
// lookups. Severity is not part of it: a human ack covers the slot, not
// the particular shape of the problem.
func Fingerprint(groomer, date, slot string) string {
	return strings.ToLower(strings.TrimSpace(groomer)) + "|" + date + "|" + slot
}
