package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/dbfcm/salon-relay-go/pkg/auth"
	"github.com/dbfcm/salon-relay-go/pkg/database"
	"github.com/dbfcm/salon-relay-go/pkg/handlers"
	"github.com/dbfcm/salon-relay-go/pkg/salon"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := loadSalonConfig()
	if err != nil {
		log.Fatalf("could not load salon config: %v", err)
	}

	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)

	h := &handlers.Handler{
		DB:        db,
		Cfg:       cfg,
		CachePath: os.Getenv("SCAN_CACHE_PATH"),
	}

	r := h.Router()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Salon relay starting on port %s (%d groomers, %d slots)",
		port, len(cfg.Groomers), len(cfg.NominalSlots)+len(cfg.ReserveSlots))
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}

// loadSalonConfig reads SALON_CONFIG, then salon.toml in the working
// directory, then falls back to the built-in roster
func loadSalonConfig() (*salon.Config, error) {
	if p := os.Getenv("SALON_CONFIG"); p != "" {
		return salon.Load(p)
	}
	if _, err := os.Stat("salon.toml"); err == nil {
		return salon.Load("salon.toml")
	}
	return salon.Default(), nil
}
