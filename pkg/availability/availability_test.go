package availability

import (
	"strings"
	"testing"
	"time"

	"github.com/dbfcm/salon-relay-go/pkg/models"
	"github.com/dbfcm/salon-relay-go/pkg/salon"
)

var monday = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func booked(id, at string, service models.ServiceType, size models.SizeCategory) models.Appointment {
	return models.Appointment{
		ID:      id,
		PetName: "Pet " + id,
		Size:    size,
		Service: service,
		Time:    at,
	}
}

func TestOpenSlotsSkipsUnsafe(t *testing.T) {
	cfg := salon.Default()
	day := models.DaySchedule{
		Groomer: "Tomoko",
		Date:    "2026-03-03",
		Appointments: []models.Appointment{
			booked("a1", "08:30", models.FullService, models.SizeMD),
		},
	}

	open, err := OpenSlots(day, cfg, false)
	if err != nil {
		t.Fatalf("OpenSlots returned error: %v", err)
	}

	// 08:30 is booked, 10:00 sits inside the real window
	want := []string{"11:30", "13:30"}
	if len(open) != len(want) {
		t.Fatalf("Expected %v, got %v", want, open)
	}
	for i := range want {
		if open[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, open)
		}
	}

	withReserve, err := OpenSlots(day, cfg, true)
	if err != nil {
		t.Fatalf("OpenSlots returned error: %v", err)
	}
	if len(withReserve) != 3 || withReserve[2] != "14:30" {
		t.Errorf("Expected reserve slot appended when asked for, got %v", withReserve)
	}
}

func TestNextOpenOnlyWorkingDays(t *testing.T) {
	cfg := salon.Default()
	schedules := []models.DaySchedule{
		{Groomer: "Tomoko", Date: "2026-03-03"},
		{Groomer: "Tomoko", Date: "2026-03-04"},
	}

	results, err := NextOpen(schedules, cfg, monday, Options{Days: 7, PerGroomer: 10})
	if err != nil {
		t.Fatalf("NextOpen returned error: %v", err)
	}
	if len(results) != len(cfg.Groomers) {
		t.Fatalf("Expected one entry per roster groomer, got %d", len(results))
	}

	byName := map[string]GroomerSlots{}
	for _, gs := range results {
		byName[gs.Groomer] = gs
	}

	// Two empty working days, four nominal slots each
	if len(byName["Tomoko"].Slots) != 8 {
		t.Errorf("Expected 8 slots for Tomoko, got %d", len(byName["Tomoko"].Slots))
	}
	if first := byName["Tomoko"].Slots[0]; first.Label != "Tue Mar 3 08:30" {
		t.Errorf("Expected label 'Tue Mar 3 08:30', got %q", first.Label)
	}

	// No schedule record means not working
	if len(byName["Kumi"].Slots) != 0 {
		t.Errorf("Expected no slots for Kumi without schedule records, got %d", len(byName["Kumi"].Slots))
	}
}

func TestNextOpenPerGroomerCap(t *testing.T) {
	cfg := salon.Default()
	schedules := []models.DaySchedule{
		{Groomer: "Tomoko", Date: "2026-03-03"},
		{Groomer: "Tomoko", Date: "2026-03-04"},
		{Groomer: "Tomoko", Date: "2026-03-05"},
	}

	results, err := NextOpen(schedules, cfg, monday, Options{Days: 14, PerGroomer: 5})
	if err != nil {
		t.Fatalf("NextOpen returned error: %v", err)
	}
	for _, gs := range results {
		if gs.Groomer == "Tomoko" && len(gs.Slots) != 5 {
			t.Errorf("Expected the per-groomer cap to hold at 5, got %d", len(gs.Slots))
		}
	}
}

func TestNextOpenSkipsHolidays(t *testing.T) {
	cfg := salon.Default()
	schedules := []models.DaySchedule{
		{Groomer: "Tomoko", Date: "2026-03-03"},
		{Groomer: "Tomoko", Date: "2026-03-04"},
	}

	results, err := NextOpen(schedules, cfg, monday, Options{
		Days:       7,
		PerGroomer: 10,
		Holidays:   []string{"2026-03-03"},
	})
	if err != nil {
		t.Fatalf("NextOpen returned error: %v", err)
	}
	for _, gs := range results {
		for _, s := range gs.Slots {
			if s.Date == "2026-03-03" {
				t.Errorf("Expected no slots offered on the holiday, got %+v", s)
			}
		}
	}
}

func TestNextOpenExcludesReserveByDefault(t *testing.T) {
	cfg := salon.Default()
	schedules := []models.DaySchedule{
		{Groomer: "Tomoko", Date: "2026-03-03"},
	}

	results, err := NextOpen(schedules, cfg, monday, Options{Days: 7, PerGroomer: 10})
	if err != nil {
		t.Fatalf("NextOpen returned error: %v", err)
	}
	for _, gs := range results {
		for _, s := range gs.Slots {
			if s.Slot == "14:30" {
				t.Errorf("Expected the reserve slot held back, got %+v", s)
			}
		}
	}

	results, err = NextOpen(schedules, cfg, monday, Options{Days: 7, PerGroomer: 10, IncludeReserve: true})
	if err != nil {
		t.Fatalf("NextOpen returned error: %v", err)
	}
	found := false
	for _, gs := range results {
		for _, s := range gs.Slots {
			if s.Slot == "14:30" {
				found = true
			}
		}
	}
	if !found {
		t.Error("Expected the reserve slot offered when asked for")
	}
}

func TestCompactText(t *testing.T) {
	cfg := salon.Default()
	schedules := []models.DaySchedule{
		{Groomer: "Kumi", Date: "2026-03-03"},
	}

	results, err := NextOpen(schedules, cfg, monday, Options{Days: 7, PerGroomer: 2})
	if err != nil {
		t.Fatalf("NextOpen returned error: %v", err)
	}

	text := CompactText(results, 7)
	if !strings.Contains(text, "Kumi (handstrip only): Tue Mar 3 08:30, Tue Mar 3 10:00") {
		t.Errorf("Expected Kumi's line with two slots, got:\n%s", text)
	}
	if !strings.Contains(text, "Tomoko: no slots in next 7 days") {
		t.Errorf("Expected Tomoko's empty line, got:\n%s", text)
	}
}

func TestSummarize(t *testing.T) {
	appts := []models.Appointment{
		{PetName: "a", Size: models.SizeSM, Service: models.FullService},
		{PetName: "b", Size: models.SizeLG, Service: models.BathOnly},
		{PetName: "c", Size: models.SizeLG, Service: models.Handstrip},
		{PetName: "d", Size: models.SizeUnknown, Service: models.NailsOnly},
	}

	s := Summarize(appts)
	if s.Total != 4 {
		t.Errorf("Expected total 4, got %d", s.Total)
	}
	if s.Sizes["LG"] != 2 || s.Sizes["SM"] != 1 {
		t.Errorf("Expected 2 LG and 1 SM, got %+v", s.Sizes)
	}
	if s.Sizes["XS"] != 0 {
		t.Errorf("Expected 0 XS, got %d", s.Sizes["XS"])
	}
	if s.Special["handstrip"] != 1 || s.Special["bath_only"] != 1 || s.Special["nails_only"] != 1 {
		t.Errorf("Expected one of each special service, got %+v", s.Special)
	}
}

func TestLoadCapacityFlag(t *testing.T) {
	cfg := salon.Default()
	five := make([]models.Appointment, 5)
	for i := range five {
		five[i] = booked(string(rune('a'+i)), "08:30", models.BathOnly, models.SizeSM)
	}
	schedules := []models.DaySchedule{
		{Groomer: "Tomoko", Date: "2026-03-03", Appointments: five},
		{Groomer: "Kumi", Date: "2026-03-03", Appointments: five[:2]},
	}

	loads := Load(schedules, cfg)
	if len(loads) != 2 {
		t.Fatalf("Expected loads only for groomers with records, got %d", len(loads))
	}

	// Roster order: Kumi first
	if loads[0].Groomer != "Kumi" || loads[0].Count != 2 || loads[0].AtCapacity {
		t.Errorf("Expected Kumi at 2 dogs under capacity, got %+v", loads[0])
	}
	if loads[1].Groomer != "Tomoko" || loads[1].Count != 5 || !loads[1].AtCapacity {
		t.Errorf("Expected Tomoko flagged at 5 dogs, got %+v", loads[1])
	}
}

func TestDuplicatesWindow(t *testing.T) {
	upcoming := []models.Appointment{
		{ID: "a1", PetID: "p1", PetName: "Biscuit", Service: models.FullService, Size: models.SizeSM, Date: "2026-03-05"},
		{ID: "a2", PetID: "p1", PetName: "Biscuit", Service: models.FullService, Size: models.SizeSM, Date: "2026-03-20"},
		{ID: "a3", PetID: "p1", PetName: "Biscuit", Service: models.BathOnly, Size: models.SizeSM, Date: "2026-03-06"},
		{ID: "a4", PetID: "p2", PetName: "Rex", Service: models.FullService, Size: models.SizeLG, Date: "2026-03-05"},
		{ID: "a5", PetID: "p2", PetName: "Rex", Service: models.FullService, Size: models.SizeLG, Date: "2026-03-30"},
	}

	pairs, err := Duplicates(upcoming)
	if err != nil {
		t.Fatalf("Duplicates returned error: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("Expected exactly 1 duplicate pair, got %d: %+v", len(pairs), pairs)
	}

	p := pairs[0]
	if p.PetName != "Biscuit" || p.DaysApart != 15 {
		t.Errorf("Expected Biscuit's full grooms 15 days apart, got %+v", p)
	}
	if p.FirstDate != "2026-03-05" || p.NextDate != "2026-03-20" {
		t.Errorf("Expected dates in order, got %+v", p)
	}
}

func TestDuplicatesFallsBackToNames(t *testing.T) {
	upcoming := []models.Appointment{
		{ID: "a1", ClientName: "Garcia", PetName: "Mochi", Service: models.BathOnly, Size: models.SizeSM, Date: "2026-03-05"},
		{ID: "a2", ClientName: "garcia", PetName: "Mochi", Service: models.BathOnly, Size: models.SizeSM, Date: "2026-03-10"},
		{ID: "a3", ClientName: "Nguyen", PetName: "Mochi", Service: models.BathOnly, Size: models.SizeSM, Date: "2026-03-10"},
	}

	pairs, err := Duplicates(upcoming)
	if err != nil {
		t.Fatalf("Duplicates returned error: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("Expected the two Garcia bookings paired and Nguyen's kept apart, got %+v", pairs)
	}
}
