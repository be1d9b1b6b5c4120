package salon

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dbfcm/salon-relay-go/pkg/models"
)

// Groomer is one member of the grooming staff roster. Roster order is
// meaningful: it breaks ties whenever two groomers match a rule equally.
type Groomer struct {
	Name                string `toml:"name" json:"name"`
	EmployeeID          int    `toml:"employee_id" json:"employee_id"`
	HandstripSpecialist bool   `toml:"handstrip_specialist" json:"handstrip_specialist"`
	LargeBreedDefault   bool   `toml:"large_breed_default" json:"large_breed_default"`
	NewClientDefault    bool   `toml:"new_client_default" json:"new_client_default"`
}

// DurationRange bounds the real minutes a service takes on the floor
type DurationRange struct {
	Min int `toml:"min" json:"min"`
	Max int `toml:"max" json:"max"`
}

// Durations is the real-duration table keyed by service and size.
// Full service splits at MD: a medium dog takes the large range.
type Durations struct {
	FullServiceSmall DurationRange `toml:"full_service_small" json:"full_service_small"`
	FullServiceLarge DurationRange `toml:"full_service_large" json:"full_service_large"`
	BathOnly         DurationRange `toml:"bath_only" json:"bath_only"`
	Handstrip        DurationRange `toml:"handstrip" json:"handstrip"`
	NailsOnly        DurationRange `toml:"nails_only" json:"nails_only"`
}

// For returns the range for a service on a dog of the given size
func (d Durations) For(service models.ServiceType, size models.SizeCategory) DurationRange {
	switch service {
	case models.FullService:
		if size.AtLeast(models.SizeMD) {
			return d.FullServiceLarge
		}
		return d.FullServiceSmall
	case models.BathOnly:
		return d.BathOnly
	case models.Handstrip:
		return d.Handstrip
	case models.NailsOnly:
		return d.NailsOnly
	}
	return DurationRange{}
}

// Config carries every tunable business rule. It is loaded once and
// passed by pointer into the engines; nothing mutates it after Validate.
type Config struct {
	Groomers            []Groomer `toml:"groomers" json:"groomers"`
	NominalSlots        []string  `toml:"nominal_slots" json:"nominal_slots"`
	ReserveSlots        []string  `toml:"reserve_slots" json:"reserve_slots"`
	NominalBlockMinutes int       `toml:"nominal_block_minutes" json:"nominal_block_minutes"`
	Durations           Durations `toml:"durations" json:"durations"`
	BathConcurrency     int       `toml:"bath_concurrency" json:"bath_concurrency"`
	HorizonDays         int       `toml:"horizon_days" json:"horizon_days"`
	GroomerDayCapacity  int       `toml:"groomer_day_capacity" json:"groomer_day_capacity"`
	DominantMinVisits   int       `toml:"dominant_min_visits" json:"dominant_min_visits"`
	DominantPercent     int       `toml:"dominant_percent" json:"dominant_percent"`
	DefaultCadenceDays  int       `toml:"default_cadence_days" json:"default_cadence_days"`
}

// Default returns the production configuration for Dog's Best Friend &
// the Cat's Meow. A salon.toml overrides any subset of it.
func Default() *Config {
	return &Config{
		Groomers: []Groomer{
			{Name: "Kumi", EmployeeID: 59, HandstripSpecialist: true},
			{Name: "Tomoko", EmployeeID: 85},
			{Name: "Mandilyn", EmployeeID: 95, LargeBreedDefault: true, NewClientDefault: true},
		},
		NominalSlots:        []string{"08:30", "10:00", "11:30", "13:30"},
		ReserveSlots:        []string{"14:30"},
		NominalBlockMinutes: 90,
		Durations: Durations{
			FullServiceSmall: DurationRange{Min: 90, Max: 120},
			FullServiceLarge: DurationRange{Min: 150, Max: 180},
			BathOnly:         DurationRange{Min: 60, Max: 90},
			Handstrip:        DurationRange{Min: 120, Max: 180},
			NailsOnly:        DurationRange{Min: 15, Max: 30},
		},
		BathConcurrency:    1,
		HorizonDays:        120,
		GroomerDayCapacity: 5,
		DominantMinVisits:  3,
		DominantPercent:    60,
		DefaultCadenceDays: 42,
	}
}

// Load reads a TOML file over the defaults, so a config file only needs
// the keys it changes. An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parsing salon config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid salon config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the engines cannot run on
func (c *Config) Validate() error {
	if len(c.Groomers) == 0 {
		return fmt.Errorf("no groomers configured")
	}
	seen := map[string]bool{}
	var handstrip, large, newc int
	for i, g := range c.Groomers {
		name := strings.ToLower(strings.TrimSpace(g.Name))
		if name == "" {
			return fmt.Errorf("groomer %d has no name", i)
		}
		if seen[name] {
			return fmt.Errorf("duplicate groomer %q", g.Name)
		}
		seen[name] = true
		if g.HandstripSpecialist {
			handstrip++
		}
		if g.LargeBreedDefault {
			large++
		}
		if g.NewClientDefault {
			newc++
		}
	}
	if handstrip != 1 {
		return fmt.Errorf("exactly one handstrip specialist required, have %d", handstrip)
	}
	if large != 1 {
		return fmt.Errorf("exactly one large-breed default required, have %d", large)
	}
	if newc != 1 {
		return fmt.Errorf("exactly one new-client default required, have %d", newc)
	}

	if len(c.NominalSlots) == 0 {
		return fmt.Errorf("no nominal slots configured")
	}
	if err := validateSlots(c.NominalSlots); err != nil {
		return fmt.Errorf("nominal_slots: %w", err)
	}
	if err := validateSlots(c.ReserveSlots); err != nil {
		return fmt.Errorf("reserve_slots: %w", err)
	}
	all := map[string]bool{}
	for _, s := range append(append([]string{}, c.NominalSlots...), c.ReserveSlots...) {
		if all[s] {
			return fmt.Errorf("slot %s listed twice", s)
		}
		all[s] = true
	}

	if c.NominalBlockMinutes <= 0 {
		return fmt.Errorf("nominal_block_minutes must be positive")
	}
	for _, dr := range []struct {
		name string
		r    DurationRange
	}{
		{"full_service_small", c.Durations.FullServiceSmall},
		{"full_service_large", c.Durations.FullServiceLarge},
		{"bath_only", c.Durations.BathOnly},
		{"handstrip", c.Durations.Handstrip},
		{"nails_only", c.Durations.NailsOnly},
	} {
		if dr.r.Min <= 0 || dr.r.Max < dr.r.Min {
			return fmt.Errorf("durations.%s: need 0 < min <= max, have %d..%d", dr.name, dr.r.Min, dr.r.Max)
		}
	}

	if c.BathConcurrency < 1 {
		return fmt.Errorf("bath_concurrency must be at least 1")
	}
	if c.HorizonDays < 1 {
		return fmt.Errorf("horizon_days must be at least 1")
	}
	if c.GroomerDayCapacity < 1 {
		return fmt.Errorf("groomer_day_capacity must be at least 1")
	}
	if c.DominantMinVisits < 1 {
		return fmt.Errorf("dominant_min_visits must be at least 1")
	}
	if c.DominantPercent < 1 || c.DominantPercent > 100 {
		return fmt.Errorf("dominant_percent must be 1..100")
	}
	if c.DefaultCadenceDays < 1 {
		return fmt.Errorf("default_cadence_days must be at least 1")
	}
	return nil
}

func validateSlots(slots []string) error {
	prev := -1
	for _, s := range slots {
		min, err := models.ParseClock(s)
		if err != nil {
			return err
		}
		if min <= prev {
			return fmt.Errorf("slots must be strictly increasing, %s is not", s)
		}
		prev = min
	}
	return nil
}

// HandstripSpecialist returns the roster's one hand-stripping groomer
func (c *Config) HandstripSpecialist() Groomer {
	for _, g := range c.Groomers {
		if g.HandstripSpecialist {
			return g
		}
	}
	return Groomer{}
}

// LargeBreedDefault returns the groomer who takes LG/XL dogs by default
func (c *Config) LargeBreedDefault() Groomer {
	for _, g := range c.Groomers {
		if g.LargeBreedDefault {
			return g
		}
	}
	return Groomer{}
}

// NewClientDefault returns the groomer who takes first visits by default
func (c *Config) NewClientDefault() Groomer {
	for _, g := range c.Groomers {
		if g.NewClientDefault {
			return g
		}
	}
	return Groomer{}
}

// KnownGroomer resolves a name against the roster, case-insensitively
func (c *Config) KnownGroomer(name string) (Groomer, bool) {
	for _, g := range c.Groomers {
		if strings.EqualFold(strings.TrimSpace(name), g.Name) {
			return g, true
		}
	}
	return Groomer{}, false
}

// GroomerIndex returns the roster position of a name, or -1. Lower
// positions win ties.
func (c *Config) GroomerIndex(name string) int {
	for i, g := range c.Groomers {
		if strings.EqualFold(name, g.Name) {
			return i
		}
	}
	return -1
}

// BusinessDay reports whether the salon grooms on that weekday.
// The salon runs Tuesday through Saturday.
func (c *Config) BusinessDay(d time.Weekday) bool {
	return d >= time.Tuesday && d <= time.Saturday
}

// SlotMinutes returns the configured slot times as minutes from
// midnight, sorted. Reserve slots are included when asked for; callers
// snapping a client's habitual time want them, availability does not.
func (c *Config) SlotMinutes(includeReserve bool) []int {
	var out []int
	for _, s := range c.NominalSlots {
		if min, err := models.ParseClock(s); err == nil {
			out = append(out, min)
		}
	}
	if includeReserve {
		for _, s := range c.ReserveSlots {
			if min, err := models.ParseClock(s); err == nil {
				out = append(out, min)
			}
		}
	}
	sort.Ints(out)
	return out
}
