package stats

import (
	"testing"
	"time"

	"github.com/dbfcm/salon-relay-go/pkg/salon"
)

var monday = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func cardReceipt(date string, amount, tip float64) Receipt {
	return Receipt{Date: date, Amount: amount, Tip: tip, PayType: "Visa"}
}

func TestTipBehaviorUsuallyTips(t *testing.T) {
	receipts := []Receipt{
		cardReceipt("2026-01-05", 100, 20),
		cardReceipt("2026-01-12", 100, 15),
		cardReceipt("2026-01-19", 100, 18),
		cardReceipt("2026-01-26", 100, 0),
		cardReceipt("2026-02-02", 100, 0),
	}

	out, err := Compute("c1", "Garcia", receipts, nil, salon.Default(), monday)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if out.TipMethod != "Usually tips on card" {
		t.Errorf("Expected 'Usually tips on card' at 3 of 5, got %q", out.TipMethod)
	}
	if out.PreferredPayment != "Card" {
		t.Errorf("Expected preferred payment Card, got %q", out.PreferredPayment)
	}
	if out.CardTipRate != 0.6 {
		t.Errorf("Expected card tip rate 0.6, got %f", out.CardTipRate)
	}
}

func TestTipBehaviorOccasionallyTips(t *testing.T) {
	receipts := []Receipt{
		cardReceipt("2026-01-05", 100, 10),
		cardReceipt("2026-01-12", 100, 0),
		cardReceipt("2026-01-19", 100, 0),
		cardReceipt("2026-01-26", 100, 0),
		cardReceipt("2026-02-02", 100, 0),
	}

	out, err := Compute("c1", "Garcia", receipts, nil, salon.Default(), monday)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if out.TipMethod != "Occasionally tips" {
		t.Errorf("Expected 'Occasionally tips' at 1 of 5, got %q", out.TipMethod)
	}
}

func TestTipBehaviorRarelyTips(t *testing.T) {
	receipts := []Receipt{
		cardReceipt("2026-01-05", 100, 0),
		cardReceipt("2026-01-12", 100, 0),
	}

	out, err := Compute("c1", "Garcia", receipts, nil, salon.Default(), monday)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if out.TipMethod != "Rarely tips" {
		t.Errorf("Expected 'Rarely tips' with no card tips, got %q", out.TipMethod)
	}
	if out.LastTipAmount != nil {
		t.Errorf("Expected no last tip, got %v", *out.LastTipAmount)
	}
}

func TestTipBehaviorCashPayer(t *testing.T) {
	receipts := []Receipt{
		{Date: "2026-01-05", Amount: 80, PayType: "CASH"},
		{Date: "2026-01-12", Amount: 80, PayType: "cash"},
	}

	out, err := Compute("c1", "Garcia", receipts, nil, salon.Default(), monday)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if out.TipMethod != "Cash payer (tip not tracked)" {
		t.Errorf("Expected cash payer label, got %q", out.TipMethod)
	}
	if out.PreferredPayment != "Cash" {
		t.Errorf("Expected preferred payment Cash, got %q", out.PreferredPayment)
	}
	if out.CardReceiptCount != 0 {
		t.Errorf("Expected 0 card receipts, got %d", out.CardReceiptCount)
	}
}

func TestTipAverages(t *testing.T) {
	receipts := []Receipt{
		cardReceipt("2026-01-05", 100, 20),
		cardReceipt("2026-02-10", 50, 5),
	}

	out, err := Compute("c1", "Garcia", receipts, nil, salon.Default(), monday)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if out.LastTipDate != "2026-02-10" || *out.LastTipAmount != 5 {
		t.Errorf("Expected the newest tip last, got %s %v", out.LastTipDate, *out.LastTipAmount)
	}
	if *out.LastTipPct != 10 {
		t.Errorf("Expected last tip pct 10, got %f", *out.LastTipPct)
	}
	if *out.AvgTipAmount != 12.5 {
		t.Errorf("Expected avg tip 12.5, got %f", *out.AvgTipAmount)
	}
	if *out.AvgTipPct != 15 {
		t.Errorf("Expected avg tip pct 15, got %f", *out.AvgTipPct)
	}
}

func TestComputeCadence(t *testing.T) {
	visits := []Visit{
		{Date: "2026-01-06", Time: "10:05"},
		{Date: "2026-01-20", Time: "09:55"},
		{Date: "2026-01-20", Time: "13:30"}, // second record same day, ignored
		{Date: "2026-02-03", Time: "10:10"},
		{Date: "2026-02-17", Time: "10:00"},
	}

	out, err := Compute("c1", "Garcia", nil, visits, salon.Default(), monday)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if out.AvgCadenceDays == nil || *out.AvgCadenceDays != 14 {
		t.Fatalf("Expected cadence 14 days, got %v", out.AvgCadenceDays)
	}
	if out.PreferredDay != "Tuesday" {
		t.Errorf("Expected preferred day Tuesday, got %q", out.PreferredDay)
	}
	if out.PreferredTime != "10:00 AM" {
		t.Errorf("Expected habitual time to snap to 10:00 AM, got %q", out.PreferredTime)
	}
	if out.LastApptDate != "2026-02-17" {
		t.Errorf("Expected last appt 2026-02-17, got %q", out.LastApptDate)
	}
	if out.ApptCount12Mo != 4 {
		t.Errorf("Expected 4 visits in 12 months, got %d", out.ApptCount12Mo)
	}
	if out.SuggestedNext != "03/17/2026" {
		t.Errorf("Expected suggestion 03/17/2026 (next Tuesday after +14), got %q", out.SuggestedNext)
	}
}

func TestCadenceGapFiltering(t *testing.T) {
	visits := []Visit{
		{Date: "2025-12-01"},
		{Date: "2025-12-04"}, // 3-day gap, a rebooked correction, dropped
		{Date: "2026-01-01"},
		{Date: "2026-02-12"},
	}

	out, err := Compute("c1", "Garcia", nil, visits, salon.Default(), monday)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	// Kept gaps are 28 and 42; even count takes the mean of the middle two
	if out.AvgCadenceDays == nil || *out.AvgCadenceDays != 35 {
		t.Errorf("Expected median cadence 35, got %v", out.AvgCadenceDays)
	}
}

func TestCadenceIgnoresAncientVisits(t *testing.T) {
	visits := []Visit{
		{Date: "2023-01-15", Time: "10:00"},
	}

	out, err := Compute("c1", "Garcia", nil, visits, salon.Default(), monday)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if out.LastApptDate != "" {
		t.Errorf("Expected visits older than 24 months ignored, got last appt %q", out.LastApptDate)
	}
	if out.AvgCadenceDays != nil {
		t.Errorf("Expected no cadence, got %v", *out.AvgCadenceDays)
	}
	if out.ApptCount12Mo != 0 {
		t.Errorf("Expected 0 recent visits, got %d", out.ApptCount12Mo)
	}
}

func TestSuggestNextDefaultCadence(t *testing.T) {
	cfg := salon.Default()

	got := SuggestNext(nil, "Saturday", monday, cfg)
	if got != "04/18/2026" {
		t.Errorf("Expected 04/18/2026 (42 days out, snapped to Saturday), got %q", got)
	}

	got = SuggestNext(nil, "", monday, cfg)
	if got != "04/13/2026" {
		t.Errorf("Expected 04/13/2026 with no preferred day, got %q", got)
	}
}
