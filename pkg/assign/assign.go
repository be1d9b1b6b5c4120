package assign

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/dbfcm/salon-relay-go/pkg/models"
	"github.com/dbfcm/salon-relay-go/pkg/salon"
)

// rule is one row of the priority cascade. apply returns false when the
// rule has nothing to say about the record.
type rule struct {
	name  string
	apply func(models.Appointment, *salon.Config) (models.Assignment, bool)
}

// cascade is evaluated top-down; the first matching rule wins and no
// later rule is consulted. Order is the whole contract.
var cascade = []rule{
	{"handstrip", ruleHandstrip},
	{"preference", rulePreference},
	{"history", ruleHistory},
	{"size", ruleSize},
	{"new_client", ruleNewClient},
	{"fallback", ruleFallback},
}

// Classify maps one appointment to exactly one assignment bucket.
// Missing optional fields are normal inputs to the rules; the only
// errors are out-of-domain categorical fields, which signal a data
// defect upstream rather than something to paper over here.
func Classify(rec models.Appointment, cfg *salon.Config) (models.Assignment, error) {
	if !rec.Service.Valid() {
		return models.Assignment{}, fmt.Errorf("appointment %s: unknown service type %q", rec.ID, string(rec.Service))
	}
	if !rec.Size.Valid() {
		return models.Assignment{}, fmt.Errorf("appointment %s: unknown size category %q", rec.ID, string(rec.Size))
	}
	if err := rec.History.Validate(); err != nil {
		return models.Assignment{}, fmt.Errorf("appointment %s: %w", rec.ID, err)
	}
	for _, r := range cascade {
		if out, ok := r.apply(rec, cfg); ok {
			out.AppointmentID = rec.ID
			out.PetName = rec.PetName
			out.Rule = r.name
			return out, nil
		}
	}
	// unreachable: the fallback rule matches everything
	return models.Assignment{}, fmt.Errorf("appointment %s: cascade exhausted", rec.ID)
}

// Only one groomer can hand-strip. A conflicting explicit preference is
// an error state for a human to resolve, not for this rule to accept.
func ruleHandstrip(rec models.Appointment, cfg *salon.Config) (models.Assignment, bool) {
	if !rec.NeedsHandstrip() {
		return models.Assignment{}, false
	}
	return models.Assignment{Groomer: cfg.HandstripSpecialist().Name, Reason: "Handstrip"}, true
}

// The structured preference field matches by substring; free-text notes
// match whole words only, in roster order, because the front desk has
// historically recorded preferences in notes rather than the field.
func rulePreference(rec models.Appointment, cfg *salon.Config) (models.Assignment, bool) {
	if pref := strings.ToLower(strings.TrimSpace(rec.PreferredGroomer)); pref != "" {
		for _, g := range cfg.Groomers {
			if strings.Contains(pref, strings.ToLower(g.Name)) {
				return models.Assignment{Groomer: g.Name, Reason: "Requested " + g.Name}, true
			}
		}
	}
	if rec.Notes != "" {
		for _, g := range cfg.Groomers {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(g.Name) + `\b`)
			if re.MatchString(rec.Notes) {
				return models.Assignment{Groomer: g.Name, Reason: "Requested " + g.Name}, true
			}
		}
	}
	return models.Assignment{}, false
}

// A rounded-percentage threshold, so clients with many visits need the
// same consistency ratio as clients with few. Names outside the roster
// count toward the total but can never win the bucket.
func ruleHistory(rec models.Appointment, cfg *salon.Config) (models.Assignment, bool) {
	total := rec.History.TotalVisits
	if total < cfg.DominantMinVisits {
		return models.Assignment{}, false
	}
	var best salon.Groomer
	bestPct := -1
	for _, g := range cfg.Groomers {
		n := 0
		for name, count := range rec.History.GroomerBreakdown {
			if strings.EqualFold(name, g.Name) {
				n += count
			}
		}
		if n == 0 {
			continue
		}
		pct := int(math.Round(float64(n) / float64(total) * 100))
		if pct > bestPct {
			best, bestPct = g, pct
		}
	}
	if bestPct < cfg.DominantPercent {
		return models.Assignment{}, false
	}
	return models.Assignment{Groomer: best.Name, Reason: "Always with " + best.Name}, true
}

func ruleSize(rec models.Appointment, cfg *salon.Config) (models.Assignment, bool) {
	if rec.Size != models.SizeLG && rec.Size != models.SizeXL {
		return models.Assignment{}, false
	}
	return models.Assignment{Groomer: cfg.LargeBreedDefault().Name, Reason: "LG/XL dog"}, true
}

func ruleNewClient(rec models.Appointment, cfg *salon.Config) (models.Assignment, bool) {
	if !rec.History.IsNew() {
		return models.Assignment{}, false
	}
	return models.Assignment{Groomer: cfg.NewClientDefault().Name, Reason: "New client"}, true
}

func ruleFallback(models.Appointment, *salon.Config) (models.Assignment, bool) {
	return models.Assignment{Groomer: models.FlexibleBucket, Reason: "Any groomer"}, true
}

// BatchResult is the classification of a whole waitlist
type BatchResult struct {
	Assignments []models.Assignment            `json:"assignments"`
	Buckets     map[string][]models.Assignment `json:"buckets"`
	Errors      []string                       `json:"errors,omitempty"`
}

// ClassifyAll classifies a waitlist in input order. Records that fail
// validation are reported in Errors and do not stop the batch.
func ClassifyAll(recs []models.Appointment, cfg *salon.Config) BatchResult {
	out := BatchResult{Buckets: make(map[string][]models.Assignment)}
	for _, rec := range recs {
		asgn, err := Classify(rec, cfg)
		if err != nil {
			out.Errors = append(out.Errors, err.Error())
			continue
		}
		out.Assignments = append(out.Assignments, asgn)
		out.Buckets[asgn.Groomer] = append(out.Buckets[asgn.Groomer], asgn)
	}
	return out
}
