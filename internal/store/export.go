package store

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mfalk/ellipsim/internal/engine"
)

// ExportData is the on-disk record of one run.
type ExportData struct {
	Timestamp time.Time `json:"timestamp"`
	Platform  string    `json:"platform"`
	Dt        float64   `json:"dt"`
	Steps     int       `json:"steps"`
	Times     []float64 `json:"times"`
	Energies  []float64 `json:"energies"`
	Drift     float64   `json:"energy_drift,omitempty"`
}

// ExportJSON writes a run's energy trace to path.
func ExportJSON(path, platform string, dt float64, drift float64, result *engine.Result) error {
	data := ExportData{
		Timestamp: time.Now(),
		Platform:  platform,
		Dt:        dt,
		Steps:     result.Steps,
		Times:     result.Times,
		Energies:  result.Energies,
		Drift:     drift,
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
