package models

import (
	"testing"
	"time"
)

func TestParseServiceType(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want ServiceType
	}{
		{"full_service", FullService},
		{"Full Groom", FullService},
		{"FS", FullService},
		{"BATH & BRUSH", BathOnly},
		{"bath", BathOnly},
		{"hand strip", Handstrip},
		{"hs", Handstrip},
		{"Nail Trim", NailsOnly},
		{"nails", NailsOnly},
	} {
		got, err := ParseServiceType(tc.in)
		if err != nil {
			t.Errorf("ParseServiceType(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Expected %q to parse as %s, got %s", tc.in, tc.want, got)
		}
	}

	if _, err := ParseServiceType("massage"); err == nil {
		t.Error("Expected error for unknown service, got nil")
	}
}

func TestParseSizeCategory(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want SizeCategory
	}{
		{"XL DOG", SizeXL},
		{"medium", SizeMD},
		{"Lg", SizeLG},
		{"toy", SizeXS},
		{"SMALL DOG", SizeSM},
		{"s", SizeSM},
		{"GIANT", SizeXL},
		{"Chihuahua", SizeUnknown},
		{"", SizeUnknown},
	} {
		if got := ParseSizeCategory(tc.in); got != tc.want {
			t.Errorf("Expected %q to parse as %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestSizeAtLeast(t *testing.T) {
	if !SizeMD.AtLeast(SizeMD) {
		t.Error("Expected MD to satisfy an MD floor")
	}
	if SizeSM.AtLeast(SizeMD) {
		t.Error("Expected SM to fail an MD floor")
	}
	if !SizeXL.AtLeast(SizeMD) {
		t.Error("Expected XL to satisfy an MD floor")
	}
	if SizeUnknown.AtLeast(SizeXS) {
		t.Error("Expected unknown size to rank below XS")
	}
}

func TestParseClock(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int
	}{
		{"08:30", 510},
		{"8:30", 510},
		{"14:05", 845},
		{"00:00", 0},
	} {
		got, err := ParseClock(tc.in)
		if err != nil {
			t.Errorf("ParseClock(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Expected %q = %d minutes, got %d", tc.in, tc.want, got)
		}
	}

	for _, bad := range []string{"25:00", "10:75", "noon", ""} {
		if _, err := ParseClock(bad); err == nil {
			t.Errorf("Expected error for %q, got nil", bad)
		}
	}

	if got := FormatClock(510); got != "08:30" {
		t.Errorf("Expected 08:30, got %q", got)
	}
	if got := FormatClock(870); got != "14:30" {
		t.Errorf("Expected 14:30, got %q", got)
	}
}

func TestDisplay12h(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{"08:30", "8:30 AM"},
		{"12:00", "12:00 PM"},
		{"13:30", "1:30 PM"},
		{"00:15", "12:15 AM"},
		{"whenever", "whenever"},
	} {
		if got := Display12h(tc.in); got != tc.want {
			t.Errorf("Expected Display12h(%q)=%q, got %q", tc.in, tc.want, got)
		}
	}

	if got := DisplayRange(510, 660); got != "8:30 AM-11:00 AM" {
		t.Errorf("Expected 8:30 AM-11:00 AM, got %q", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-02")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Errorf("Expected 2026-03-02 to be a Monday, got %s", d.Weekday())
	}

	if _, err := ParseDate("03/02/2026"); err == nil {
		t.Error("Expected error for US-style date, got nil")
	}

	stamp := time.Date(2026, 3, 2, 15, 45, 12, 0, time.UTC)
	if !DateOnly(stamp).Equal(d) {
		t.Errorf("Expected DateOnly to match ParseDate, got %v", DateOnly(stamp))
	}
}

func TestParseGroomerBreakdown(t *testing.T) {
	got, err := ParseGroomerBreakdown("Kumi:12|Tomoko:3")
	if err != nil {
		t.Fatalf("ParseGroomerBreakdown returned error: %v", err)
	}
	if len(got) != 2 || got["Kumi"] != 12 || got["Tomoko"] != 3 {
		t.Errorf("Expected Kumi:12 Tomoko:3, got %v", got)
	}

	got, err = ParseGroomerBreakdown(" Kumi : 2 ")
	if err != nil {
		t.Fatalf("ParseGroomerBreakdown returned error: %v", err)
	}
	if got["Kumi"] != 2 {
		t.Errorf("Expected whitespace trimmed, got %v", got)
	}

	got, err = ParseGroomerBreakdown("")
	if err != nil || got != nil {
		t.Errorf("Expected empty breakdown for empty input, got %v %v", got, err)
	}

	for _, bad := range []string{"Kumi", "Kumi:twelve"} {
		if _, err := ParseGroomerBreakdown(bad); err == nil {
			t.Errorf("Expected error for %q, got nil", bad)
		}
	}
}

func TestVisitHistoryValidate(t *testing.T) {
	ok := VisitHistory{TotalVisits: 5, GroomerBreakdown: map[string]int{"Kumi": 3, "Tomoko": 2}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Expected valid history, got %v", err)
	}

	if err := (VisitHistory{TotalVisits: -1}).Validate(); err == nil {
		t.Error("Expected error for negative total, got nil")
	}
	if err := (VisitHistory{TotalVisits: 5, GroomerBreakdown: map[string]int{"Kumi": -2}}).Validate(); err == nil {
		t.Error("Expected error for negative groomer count, got nil")
	}
	if err := (VisitHistory{TotalVisits: 2, GroomerBreakdown: map[string]int{"Kumi": 3}}).Validate(); err == nil {
		t.Error("Expected error when breakdown exceeds total, got nil")
	}
}

func TestVisitHistoryIsNew(t *testing.T) {
	if !(VisitHistory{}).IsNew() {
		t.Error("Expected empty history to be new")
	}
	if !(VisitHistory{TotalVisits: 3}).IsNew() {
		t.Error("Expected history without a completed date to be new")
	}
	if (VisitHistory{TotalVisits: 3, LastCompletedDate: "2026-01-10"}).IsNew() {
		t.Error("Expected completed history not to be new")
	}
}

func TestPetNameMarkers(t *testing.T) {
	if !(Appointment{PetName: "Duke #", Service: BathOnly}).NeedsHandstrip() {
		t.Error("Expected # marker to flag handstrip")
	}
	if !(Appointment{PetName: "Duke", Service: Handstrip}).NeedsHandstrip() {
		t.Error("Expected handstrip service to flag handstrip")
	}
	if (Appointment{PetName: "Duke", Service: BathOnly}).NeedsHandstrip() {
		t.Error("Expected plain bath not to flag handstrip")
	}
	if !(Appointment{PetName: "Bella *"}).ShowDog() {
		t.Error("Expected * marker to flag show dog")
	}
	if !(Appointment{PetName: "Rex :new"}).NeverCompleted() {
		t.Error("Expected :new marker to match case-insensitively")
	}
	if (Appointment{PetName: "Rex"}).NeverCompleted() {
		t.Error("Expected unmarked name not to flag :NEW")
	}
}

func TestNeedsBather(t *testing.T) {
	if !(Appointment{PetName: "Milo", Service: FullService}).NeedsBather() {
		t.Error("Expected full service to need the bather")
	}
	if !(Appointment{PetName: "Milo", Service: BathOnly}).NeedsBather() {
		t.Error("Expected bath to need the bather")
	}
	if (Appointment{PetName: "Milo", Service: NailsOnly}).NeedsBather() {
		t.Error("Expected nail trim not to need the bather")
	}
	if (Appointment{PetName: "Milo", Service: Handstrip}).NeedsBather() {
		t.Error("Expected handstrip not to need the bather")
	}
	if (Appointment{PetName: "Milo", Service: FullService, SelfBath: true}).NeedsBather() {
		t.Error("Expected self bath not to load the bather")
	}
	if (Appointment{PetName: "Milo #", Service: FullService}).NeedsBather() {
		t.Error("Expected handstrip-marked coat not to load the bather")
	}
}

func TestAppointmentValidate(t *testing.T) {
	good := Appointment{
		ID:      "a1",
		PetName: "Milo",
		Service: FullService,
		Size:    SizeSM,
		Date:    "2026-03-03",
		Time:    "08:30",
	}
	if err := good.Validate(); err != nil {
		t.Errorf("Expected valid appointment, got %v", err)
	}

	bad := good
	bad.Service = "massage"
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for unknown service, got nil")
	}

	bad = good
	bad.Size = "HUGE"
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for unknown size, got nil")
	}

	bad = good
	bad.History = VisitHistory{TotalVisits: 1, GroomerBreakdown: map[string]int{"Kumi": 2}}
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for inconsistent history, got nil")
	}

	bad = good
	bad.Time = "25:00"
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for bad time, got nil")
	}

	bad = good
	bad.Date = "03/02/2026"
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for bad date, got nil")
	}
}
