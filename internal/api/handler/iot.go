package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/storepulse/storepulse/internal/api/respond"
	"github.com/storepulse/storepulse/internal/ingest"
)

// IngestReading accepts one sensor reading and runs the scoring pipeline.
// @Summary Ingest a sensor reading
// @Description Scores one retail sensor/transaction reading for anomaly, cluster membership, and operational risk; persists the derived facts; auto-raises an alert on HIGH risk; and broadcasts the result to connected websocket subscribers.
// @Tags iot
// @Accept json
// @Produce json
// @Param reading body ingest.Record true "Sensor reading"
// @Success 200 {object} ingest.Result
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /iot [post]
func (h *Handler) IngestReading(w http.ResponseWriter, r *http.Request) {
	var rec ingest.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed JSON body")
		return
	}
	if err := validateRecord(rec); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	result, err := h.ingester.Ingest(r.Context(), rec)
	switch {
	case errors.Is(err, ingest.ErrOracle):
		h.logger.Error("Scoring failed", "store", rec.Store, "dept", rec.Dept, "error", err)
		respond.WriteError(w, http.StatusBadGateway, "ORACLE_UNAVAILABLE", "Scoring oracle unavailable")
		return
	case err != nil:
		h.logger.Error("Ingest failed", "store", rec.Store, "dept", rec.Dept, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INGEST_FAILED", "Failed to record reading")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, result)
}

// validateRecord enforces the pipeline preconditions: positive ids and
// finite numerics. Business-domain values (negative sales, extreme
// temperatures) pass through and are scored as-is.
func validateRecord(rec ingest.Record) error {
	if rec.Store <= 0 {
		return fmt.Errorf("store must be a positive integer")
	}
	if rec.Dept <= 0 {
		return fmt.Errorf("dept must be a positive integer")
	}
	fields := map[string]float64{
		"Weekly_Sales": rec.WeeklySales,
		"Temperature":  rec.Temperature,
		"Fuel_Price":   rec.FuelPrice,
		"CPI":          rec.CPI,
		"Unemployment": rec.Unemployment,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	return nil
}
