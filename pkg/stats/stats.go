package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dbfcm/salon-relay-go/pkg/models"
	"github.com/dbfcm/salon-relay-go/pkg/salon"
)

// Card-tip rate thresholds for the human-readable label
const (
	usuallyTipsRate      = 0.60
	occasionallyTipsRate = 0.20
)

// Gaps outside this band are vacations, reschedules or data noise, not
// a grooming rhythm
const (
	minCadenceGapDays = 7
	maxCadenceGapDays = 365
)

// Receipt is one payment record relayed from the booking system.
// Amount is the service charge only; Tip is the card tip line.
type Receipt struct {
	Date    string  `json:"date"`
	Amount  float64 `json:"amount"`
	Tip     float64 `json:"tip"`
	PayType string  `json:"pay_type"`
}

// Card reports whether the receipt was paid by card. Cash and check
// tips go into the jar, not the records, so only card tips count.
func (r Receipt) Card() bool {
	switch strings.ToUpper(strings.TrimSpace(r.PayType)) {
	case "CASH", "CHECK", "":
		return false
	}
	return true
}

// Visit is one completed appointment, for cadence computation
type Visit struct {
	Date string `json:"date"`
	Time string `json:"time,omitempty"`
}

// ClientStats is the precomputed behavior row for one client. Nullable
// numbers are pointers so a client with no card tips reads as absent,
// not as zero.
type ClientStats struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name,omitempty"`

	LastTipAmount    *float64 `json:"last_tip_amount,omitempty"`
	LastTipPct       *float64 `json:"last_tip_pct,omitempty"`
	LastTipDate      string   `json:"last_tip_date,omitempty"`
	AvgTipAmount     *float64 `json:"avg_tip_amount,omitempty"`
	AvgTipPct        *float64 `json:"avg_tip_pct,omitempty"`
	CardReceiptCount int      `json:"card_receipt_count"`
	PreferredPayment string   `json:"preferred_payment,omitempty"`
	TipMethod        string   `json:"tip_method,omitempty"`
	CardTipRate      float64  `json:"card_tip_rate"`

	LastApptDate   string   `json:"last_appt_date,omitempty"`
	AvgCadenceDays *float64 `json:"avg_cadence_days,omitempty"`
	PreferredDay   string   `json:"preferred_day,omitempty"`
	PreferredTime  string   `json:"preferred_time,omitempty"`
	ApptCount12Mo  int      `json:"appt_count_12mo"`

	SuggestedNext string `json:"suggested_next,omitempty"`
}

// Compute builds the full behavior row for one client from raw
// receipts and completed visits. Visits older than 24 months are
// ignored; the suggested next date assumes the client books today.
func Compute(clientID, clientName string, receipts []Receipt, visits []Visit, cfg *salon.Config, today time.Time) (ClientStats, error) {
	out := ClientStats{ClientID: clientID, ClientName: clientName}
	tipBehavior(receipts, &out)
	if err := cadence(visits, cfg, today, &out); err != nil {
		return ClientStats{}, fmt.Errorf("client %s: %w", clientID, err)
	}
	out.SuggestedNext = SuggestNext(out.AvgCadenceDays, out.PreferredDay, today, cfg)
	return out, nil
}

func tipBehavior(receipts []Receipt, out *ClientStats) {
	var cardCount, cashCount int
	var tipped []Receipt
	for _, r := range receipts {
		if !r.Card() {
			cashCount++
			continue
		}
		cardCount++
		if r.Tip > 0 {
			tipped = append(tipped, r)
		}
	}

	switch {
	case cardCount > cashCount:
		out.PreferredPayment = "Card"
	case cashCount > cardCount:
		out.PreferredPayment = "Cash"
	case cardCount+cashCount > 0:
		out.PreferredPayment = "Mixed"
	}

	out.CardReceiptCount = cardCount
	if cardCount > 0 {
		out.CardTipRate = float64(len(tipped)) / float64(cardCount)
	}

	switch {
	case cardCount == 0 && cashCount > 0:
		out.TipMethod = "Cash payer (tip not tracked)"
	case out.CardTipRate >= usuallyTipsRate:
		out.TipMethod = "Usually tips on card"
	case out.CardTipRate >= occasionallyTipsRate:
		out.TipMethod = "Occasionally tips"
	case cardCount > 0:
		out.TipMethod = "Rarely tips"
	default:
		out.TipMethod = "No card receipts"
	}

	if len(tipped) == 0 {
		return
	}
	sort.SliceStable(tipped, func(i, j int) bool { return tipped[i].Date > tipped[j].Date })
	last := tipped[0]
	out.LastTipAmount = ptr(last.Tip)
	pct := 0.0
	if last.Amount > 0 {
		pct = last.Tip / last.Amount * 100
	}
	out.LastTipPct = ptr(pct)
	out.LastTipDate = last.Date

	var sumAmt, sumPct float64
	for _, r := range tipped {
		sumAmt += r.Tip
		if r.Amount > 0 {
			sumPct += r.Tip / r.Amount * 100
		}
	}
	out.AvgTipAmount = ptr(sumAmt / float64(len(tipped)))
	out.AvgTipPct = ptr(sumPct / float64(len(tipped)))
}

func cadence(visits []Visit, cfg *salon.Config, today time.Time, out *ClientStats) error {
	today = models.DateOnly(today)
	cutoff := today.AddDate(-2, 0, 0)
	yearAgo := today.AddDate(-1, 0, 0)

	// one visit per calendar date; the first record for a date wins
	type dayVisit struct {
		day  time.Time
		time string
	}
	seen := map[string]dayVisit{}
	for _, v := range visits {
		d, err := models.ParseDate(v.Date)
		if err != nil {
			return err
		}
		if d.Before(cutoff) || d.After(today) {
			continue
		}
		if _, ok := seen[v.Date]; !ok {
			seen[v.Date] = dayVisit{d, v.Time}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	days := make([]dayVisit, 0, len(seen))
	for _, dv := range seen {
		days = append(days, dv)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].day.Before(days[j].day) })

	out.LastApptDate = days[len(days)-1].day.Format(models.DateLayout)

	var gaps []int
	for i := 1; i < len(days); i++ {
		gap := int(days[i].day.Sub(days[i-1].day).Hours() / 24)
		if gap >= minCadenceGapDays && gap <= maxCadenceGapDays {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) > 0 {
		sort.Ints(gaps)
		mid := len(gaps) / 2
		med := float64(gaps[mid])
		if len(gaps)%2 == 0 {
			med = float64(gaps[mid-1]+gaps[mid]) / 2
		}
		out.AvgCadenceDays = ptr(med)
	}

	var dowCounts [7]int
	for _, dv := range days {
		dowCounts[dv.day.Weekday()]++
	}
	bestDow, bestDowN := time.Sunday, 0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if dowCounts[wd] > bestDowN {
			bestDow, bestDowN = wd, dowCounts[wd]
		}
	}
	if bestDowN > 0 {
		out.PreferredDay = bestDow.String()
	}

	// habitual time snaps to the nearest slot; reserve slots included
	// since a client who always books 14:30 really prefers 14:30
	slotMins := cfg.SlotMinutes(true)
	slotCounts := map[int]int{}
	for _, dv := range days {
		if dv.time == "" {
			continue
		}
		m, err := models.ParseClock(dv.time)
		if err != nil {
			continue
		}
		closest, bestDist := 0, 1<<30
		for _, sm := range slotMins {
			dist := sm - m
			if dist < 0 {
				dist = -dist
			}
			if dist < bestDist {
				closest, bestDist = sm, dist
			}
		}
		slotCounts[closest]++
	}
	bestSlot, bestSlotN := 0, 0
	for _, sm := range slotMins {
		if slotCounts[sm] > bestSlotN {
			bestSlot, bestSlotN = sm, slotCounts[sm]
		}
	}
	if bestSlotN > 0 {
		out.PreferredTime = models.Display12h(models.FormatClock(bestSlot))
	}

	for _, dv := range days {
		if !dv.day.Before(yearAgo) {
			out.ApptCount12Mo++
		}
	}
	return nil
}

// SuggestNext proposes the next visit date: today plus the client's
// cadence (config default when unknown), snapped forward to the
// preferred weekday. Rendered MM/DD/YYYY the way the desk writes dates.
func SuggestNext(cadenceDays *float64, preferredDay string, today time.Time, cfg *salon.Config) string {
	cadence := float64(cfg.DefaultCadenceDays)
	if cadenceDays != nil && *cadenceDays > 0 {
		cadence = *cadenceDays
	}
	target := models.DateOnly(today).AddDate(0, 0, int(cadence))
	if wd, ok := parseWeekday(preferredDay); ok {
		delta := (int(wd) - int(target.Weekday()) + 7) % 7
		target = target.AddDate(0, 0, delta)
	}
	return target.Format("01/02/2006")
}

func parseWeekday(name string) (time.Weekday, bool) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(strings.TrimSpace(name), wd.String()) {
			return wd, true
		}
	}
	return 0, false
}

func ptr(f float64) *float64 { return &f }
