package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	KeyID         uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date          string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount  int    `gorm:"default:0" json:"request_count"`
	TotalRecords  int    `gorm:"default:0" json:"total_records"`
	TotalFindings int    `gorm:"default:0" json:"total_findings"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConflictAck records a human's sign-off on one flagged slot. The
// detector stays pure; acknowledgement lives here, keyed by the slot's
// identity so a re-scan that finds the same slot stays acknowledged.
type ConflictAck struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Groomer string `gorm:"uniqueIndex:idx_ack_slot;not null" json:"groomer"`
	Date    string `gorm:"uniqueIndex:idx_ack_slot;not null" json:"date"`
	Slot    string `gorm:"uniqueIndex:idx_ack_slot;not null" json:"slot"`
	AckedBy string `gorm:"not null" json:"acked_by"`
	AckedAt string `json:"acked_at"`
	Note    string `json:"note"`
}

// ClientStat is the precomputed per-client behavior row, rebuilt on
// demand from relayed receipts and visits. It belongs to this service
// alone; the booking system never reads or writes it.
type ClientStat struct {
	ClientID    string `gorm:"primaryKey" json:"client_id"`
	ClientName  string `json:"client_name"`
	LastUpdated string `json:"last_updated"`

	LastTipAmount    *float64 `json:"last_tip_amount"`
	LastTipPct       *float64 `json:"last_tip_pct"`
	LastTipDate      string   `json:"last_tip_date"`
	AvgTipAmount     *float64 `json:"avg_tip_amount"`
	AvgTipPct        *float64 `json:"avg_tip_pct"`
	CardReceiptCount int      `json:"card_receipt_count"`
	PreferredPayment string   `json:"preferred_payment"`
	TipMethod        string   `json:"tip_method"`
	CardTipRate      float64  `json:"card_tip_rate"`

	LastApptDate   string   `json:"last_appt_date"`
	AvgCadenceDays *float64 `json:"avg_cadence_days"`
	PreferredDay   string   `json:"preferred_day"`
	PreferredTime  string   `json:"preferred_time"`
	ApptCount12Mo  int      `json:"appt_count_12mo"`
	SuggestedNext  string   `json:"suggested_next"`
}

// InitDB initializes the database connection and migrates the schema
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "salon_relay.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto Migration
	db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}, &ConflictAck{}, &ClientStat{})

	return db
}
