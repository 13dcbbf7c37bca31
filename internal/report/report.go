// Package report writes timestamped JSON run reports to the reports/
// directory. The result mapping never records why an id is missing; the
// fetch report does.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmagro/nft-image-urls/internal/fetcher"
	"github.com/dmagro/nft-image-urls/internal/metrics"
	"github.com/dmagro/nft-image-urls/internal/output"
)

// DefaultDir is where reports are written.
const DefaultDir = "reports"

// MillisDuration marshals a time.Duration as an integer millisecond count.
type MillisDuration time.Duration

func (d MillisDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).Milliseconds())
}

// FetchReport is the JSON form of one fetch run.
type FetchReport struct {
	Timestamp          time.Time              `json:"timestamp"`
	Contract           string                 `json:"contract"`
	Output             string                 `json:"output"`
	TotalSupply        int                    `json:"total_supply"`
	PreviouslyResolved int                    `json:"previously_resolved"`
	Attempted          int                    `json:"attempted"`
	NewlyResolved      int                    `json:"newly_resolved"`
	Resolved           int                    `json:"resolved"`
	Interrupted        bool                   `json:"interrupted"`
	DurationMS         MillisDuration         `json:"duration_ms"`
	Metrics            metrics.Snapshot       `json:"metrics"`
	Endpoints          []output.EndpointUsage `json:"endpoints"`
	Unresolved         []fetcher.Unresolved   `json:"unresolved"`
}

// NewFetchReport builds a report from a run summary.
func NewFetchReport(contract string, s fetcher.Summary, endpoints []output.EndpointUsage) FetchReport {
	unresolved := s.Unresolved
	if unresolved == nil {
		unresolved = []fetcher.Unresolved{}
	}
	return FetchReport{
		Timestamp:          time.Now().UTC(),
		Contract:           contract,
		Output:             s.Output,
		TotalSupply:        s.TotalSupply,
		PreviouslyResolved: s.PreviouslyResolved,
		Attempted:          s.Attempted,
		NewlyResolved:      s.NewlyResolved,
		Resolved:           s.Resolved,
		Interrupted:        s.Interrupted,
		DurationMS:         MillisDuration(s.Duration),
		Metrics:            s.Metrics,
		Endpoints:          endpoints,
		Unresolved:         unresolved,
	}
}

// WriteJSON writes data to reports/{prefix}-{YYYYMMDD-HHMMSS}.json and
// returns the file path.
func WriteJSON(data interface{}, prefix string) (string, error) {
	return WriteJSONTo(DefaultDir, data, prefix, time.Now())
}

// WriteJSONTo is WriteJSON with an explicit directory and timestamp.
func WriteJSONTo(dir string, data interface{}, prefix string, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.json", prefix, at.Format("20060102-150405"))
	path := filepath.Join(dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}

	return path, nil
}
