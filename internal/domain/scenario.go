package domain

import "time"

// Scenario is a named, persisted set of projection assumptions.
// Corresponds to the scenarios table.
type Scenario struct {
	ID        string           `json:"id"` // deterministic hash of Config
	Name      string           `json:"name"`
	Config    SimulationConfig `json:"config"`
	CreatedAt time.Time        `json:"created_at"`
}

// RunStatus is the outcome class of a persisted run.
type RunStatus string

// Run status constants
const (
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusDegenerate RunStatus = "DEGENERATE" // trace is partial
)

// Run is one persisted execution of a scenario.
// Corresponds to the simulation_runs table; its trace lives in period_records.
type Run struct {
	ID                string    `json:"id"` // uuid
	ScenarioID        string    `json:"scenario_id"`
	Status            RunStatus `json:"status"`
	PeriodCount       int       `json:"period_count"`
	FinalValue        float64   `json:"final_value"`
	FinalAnnualIncome float64   `json:"final_annual_income"`
	TotalInvested     float64   `json:"total_invested"`
	Summary           *Summary  `json:"summary,omitempty"` // nil for degenerate runs
	Error             string    `json:"error,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
