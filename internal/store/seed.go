package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/kode4food/wfm/pkg/api"
)

// Seed is the JSON document used to preload a Store
type Seed struct {
	Profile    *api.UserProfile `json:"profile,omitempty"`
	Workflows  []*api.Workflow  `json:"workflows"`
	Workorders []*api.Workorder `json:"workorders"`
	Results    []*api.Result    `json:"results"`
}

// LoadSeed reads a Seed from a JSON file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res Seed
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return &res, nil
}

// Apply adds every record of the Seed to the Store. Records are created in
// order, so workflows precede the workorders that follow them
func (s *Store) Apply(seed *Seed) error {
	if seed.Profile != nil {
		s.SetProfile(seed.Profile)
	}
	for _, wf := range seed.Workflows {
		if _, err := s.CreateWorkflow(wf); err != nil {
			return err
		}
	}
	for _, wo := range seed.Workorders {
		if _, err := s.CreateWorkorder(wo); err != nil {
			return err
		}
	}
	for _, res := range seed.Results {
		if _, err := s.CreateResult(res); err != nil {
			return err
		}
	}
	slog.Info("Store seeded",
		slog.Int("workflows", len(seed.Workflows)),
		slog.Int("workorders", len(seed.Workorders)),
		slog.Int("results", len(seed.Results)))
	return nil
}
