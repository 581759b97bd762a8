package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/StinkyLord/dbc-relational/internal/model"
)

// Report describes one conversion: which tables were produced from which
// source, and how every signal maps onto the relational identifiers.
//
// Example output:
//
//	{
//	  "serialNumber": "urn:uuid:6f1c...",
//	  "metadata": { "timestamp": "...", "tools": [ { "name": "dbc-relational", "version": "1.0.0" } ] },
//	  "source": "/data/vehicle.dbc",
//	  "network": "Powertrain",
//	  "tables": [ { "name": "CAN", "path": "/data/vehicle_CAN.csv", "rows": 6, "written": true }, ... ],
//	  "tree": [ { "kind": "message", "name": "EngineStatus", "id": "0x64", "children": [ ... ] } ]
//	}
type Report struct {
	SerialNumber string            `json:"serialNumber"`
	Metadata     ReportMetadata    `json:"metadata"`
	Source       string            `json:"source"`
	Network      string            `json:"network,omitempty"`
	Tables       []ReportTable     `json:"tables"`
	Tree         []*model.TreeNode `json:"tree"`
}

type ReportMetadata struct {
	Timestamp string       `json:"timestamp"`
	Tools     []ReportTool `json:"tools"`
}

type ReportTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ReportTable summarises one output table. Written is false for a table
// that had no rows.
type ReportTable struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Rows    int    `json:"rows"`
	Written bool   `json:"written"`
}

// NewReport starts a report for the run identified by runID.
func NewReport(runID, toolVersion, source string) *Report {
	return &Report{
		SerialNumber: "urn:uuid:" + runID,
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Tools: []ReportTool{
				{Name: "dbc-relational", Version: toolVersion},
			},
		},
		Source: source,
		Tables: []ReportTable{},
		Tree:   []*model.TreeNode{},
	}
}

// AddTables records the jobs of a commit and which of them were written.
func (r *Report) AddTables(jobs []Job, written []string) {
	done := make(map[string]bool, len(written))
	for _, p := range written {
		done[p] = true
	}
	for _, job := range jobs {
		r.Tables = append(r.Tables, ReportTable{
			Name:    job.Table.Name,
			Path:    job.Path,
			Rows:    len(job.Rows),
			Written: done[job.Path],
		})
	}
}

// WriteReport serialises the report as indented JSON to outputPath. If
// outputPath is "-", it writes to stdout.
func WriteReport(r *Report, outputPath string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report JSON: %w", err)
	}

	if outputPath == "-" {
		_, err = os.Stdout.Write(data)
		if err == nil {
			_, err = os.Stdout.WriteString("\n")
		}
		return err
	}

	return os.WriteFile(outputPath, append(data, '\n'), 0644)
}
