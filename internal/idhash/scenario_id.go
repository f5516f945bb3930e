package idhash

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"dividend-projection-lab/internal/domain"
)

// ComputeScenarioID computes a deterministic scenario_id using SHA256.
// Formula: SHA256(name|json(config))
// Returns the base58-encoded hash (43-44 characters).
func ComputeScenarioID(name string, cfg domain.SimulationConfig) (string, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode scenario config: %w", err)
	}

	data := append([]byte(name+"|"), payload...)
	hash := sha256.Sum256(data)
	return base58.Encode(hash[:]), nil
}
