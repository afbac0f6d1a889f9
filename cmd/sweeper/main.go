package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/p2pdao/lending-dao/internal/config"
)

// The sweeper periodically flips proposals whose voting window has passed
// to their expired terminal state, so reads don't have to rely solely on
// lazy phase derivation.
func main() {
	log.Println("Starting proposal sweeper...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	location, err := time.LoadLocation(cfg.Sweeper.Timezone)
	if err != nil {
		log.Fatalf("Invalid SWEEPER_TIMEZONE: %v", err)
	}

	c := cron.New(cron.WithLocation(location))

	spec := "@every " + cfg.Sweeper.Interval
	_, err = c.AddFunc(spec, func() {
		if err := sweep(cfg); err != nil {
			log.Printf("Sweep failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Error scheduling sweep job: %v", err)
	}

	c.Start()
	log.Printf("Sweeper started, interval %s", cfg.Sweeper.Interval)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down sweeper...")
	c.Stop()
	log.Println("Sweeper stopped")
}

func sweep(cfg *config.Config) error {
	url := cfg.Sweeper.ServerURL + "/api/v1/admin/proposals/sweep"

	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Caller-Address", cfg.Sweeper.AdminAddr)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sweep returned status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Swept int `json:"swept"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}

	log.Printf("Sweep complete: %d proposal(s) expired", body.Data.Swept)
	return nil
}
