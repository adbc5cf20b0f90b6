// Command simulate generates retail sensor readings and sends them to the
// ingest endpoint. Used for load testing and demoing the real-time stream.
//
// Usage:
//
//	storepulse-simulate once
//	storepulse-simulate burst --count 20
//	storepulse-simulate stream --interval 5s --anomaly-every 10
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/storepulse/storepulse/internal/ingest"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

var target string

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "storepulse-simulate",
		Short: "StorePulse reading simulator",
	}
	root.PersistentFlags().StringVar(&target, "target", "http://localhost:8000/api/v1/iot", "Ingest endpoint URL")

	root.AddCommand(onceCmd())
	root.AddCommand(burstCmd())
	root.AddCommand(streamCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func onceCmd() *cobra.Command {
	var anomaly bool
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Send a single reading",
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(cmd.Context(), anomaly)
		},
	}
	cmd.Flags().BoolVar(&anomaly, "anomaly", false, "Send an outlier-shaped reading")
	return cmd
}

func burstCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "burst",
		Short: "Send a batch of readings quickly",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i := 0; i < count; i++ {
				// Every 3rd reading is outlier-shaped.
				if err := send(cmd.Context(), i%3 == 0); err != nil {
					logger.Error("Send failed", "error", err)
				}
				time.Sleep(500 * time.Millisecond)
			}
			logger.Info("Burst complete", "count", count)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "Number of readings")
	return cmd
}

func streamCmd() *cobra.Command {
	var interval time.Duration
	var anomalyEvery int
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Send readings continuously until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			logger.Info("Simulator started", "target", target, "interval", interval)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for n := 1; ; n++ {
				if err := send(ctx, anomalyEvery > 0 && n%anomalyEvery == 0); err != nil {
					logger.Error("Send failed", "error", err)
				}
				select {
				case <-ticker.C:
				case <-ctx.Done():
					logger.Info("Simulator stopped", "sent", n)
					return nil
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "Delay between readings")
	cmd.Flags().IntVar(&anomalyEvery, "anomaly-every", 10, "Send an outlier-shaped reading every Nth send (0 disables)")
	return cmd
}

// randomReading produces a reading in the normal operating ranges.
func randomReading() ingest.Record {
	return ingest.Record{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Store:        rand.Intn(45) + 1,
		Dept:         rand.Intn(98) + 1,
		WeeklySales:  round2(2000 + rand.Float64()*58000),
		Temperature:  round2(10 + rand.Float64()*28),
		FuelPrice:    round2(2.0 + rand.Float64()*2.5),
		CPI:          round2(150 + rand.Float64()*110),
		Unemployment: round2(3.0 + rand.Float64()*8.0),
		IsHoliday:    rand.Intn(2),
	}
}

// anomalyReading produces a reading shaped to trip the anomaly detector:
// extreme sales, temperatures, and macro indicators.
func anomalyReading() ingest.Record {
	return ingest.Record{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Store:        rand.Intn(45) + 1,
		Dept:         rand.Intn(98) + 1,
		WeeklySales:  round2(100000 + rand.Float64()*400000),
		Temperature:  round2(-20 + rand.Float64()*70),
		FuelPrice:    round2(6.0 + rand.Float64()*4.0),
		CPI:          round2(300 + rand.Float64()*100),
		Unemployment: round2(15.0 + rand.Float64()*10.0),
		IsHoliday:    1,
	}
}

func send(ctx context.Context, anomaly bool) error {
	rec := randomReading()
	if anomaly {
		rec = anomalyReading()
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send reading: %w", err)
	}
	defer resp.Body.Close()

	var result ingest.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	logger.Info("Reading sent",
		"anomaly_shaped", anomaly,
		"store", rec.Store,
		"dept", rec.Dept,
		"sales", rec.WeeklySales,
		"status", resp.StatusCode,
		"risk_level", result.RiskLevel,
		"risk_score", result.RiskScore,
		"cluster", result.Cluster)
	return nil
}

func round2(f float64) float64 {
	return float64(int(f*100)) / 100
}
