package topology

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ghodss/yaml"
)

const stateFileMode = 0o644

// Address is an elastic IP allocated during a run.
type Address struct {
	PublicIP      string `json:"publicIP"`
	AllocationID  string `json:"allocationID"`
	AssociationID string `json:"associationID,omitempty"`
}

// State records the identifiers AWS returned for a run, keyed by the names
// used in the plan. It is written even when the run fails so that whatever
// was created can be found and cleaned up.
type State struct {
	Region          string             `json:"region,omitempty"`
	StartedAt       time.Time          `json:"startedAt"`
	FinishedAt      *time.Time         `json:"finishedAt,omitempty"`
	VPC             string             `json:"vpc,omitempty"`
	Subnets         map[string]string  `json:"subnets,omitempty"`
	InternetGateway string             `json:"internetGateway,omitempty"`
	RouteTable      string             `json:"routeTable,omitempty"`
	SecurityGroups  map[string]string  `json:"securityGroups,omitempty"`
	KeyFile         string             `json:"keyFile,omitempty"`
	Instances       map[string]string  `json:"instances,omitempty"`
	ElasticIPs      map[string]Address `json:"elasticIPs,omitempty"`
	Volumes         map[string]string  `json:"volumes,omitempty"`
	Snapshots       map[string]string  `json:"snapshots,omitempty"`
	TargetGroups    map[string]string  `json:"targetGroups,omitempty"`
	// Error is the failure that stopped the run.
	Error string `json:"error,omitempty"`
}

// NewState returns an empty state for a run starting now.
func NewState(region string) *State {
	return &State{
		Region:         region,
		StartedAt:      time.Now().UTC(),
		Subnets:        map[string]string{},
		SecurityGroups: map[string]string{},
		Instances:      map[string]string{},
		ElasticIPs:     map[string]Address{},
		Volumes:        map[string]string{},
		Snapshots:      map[string]string{},
		TargetGroups:   map[string]string{},
	}
}

// Finish marks the run as finished, recording err when it failed.
func (s *State) Finish(err error) {
	now := time.Now().UTC()
	s.FinishedAt = &now
	if err != nil {
		s.Error = err.Error()
	}
}

// IDs returns the ids of the given names in m, in the order of names.
func IDs(m map[string]string, names []string) []string {
	ids := make([]string, 0, len(names))
	for _, n := range names {
		if id, ok := m[n]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Resources lists every created resource id, sorted, for logging.
func (s *State) Resources() []string {
	var ids []string
	for _, id := range []string{s.VPC, s.InternetGateway, s.RouteTable} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	for _, m := range []map[string]string{s.Subnets, s.SecurityGroups, s.Instances, s.Volumes, s.Snapshots, s.TargetGroups} {
		for _, id := range m {
			ids = append(ids, id)
		}
	}
	for _, a := range s.ElasticIPs {
		ids = append(ids, a.AllocationID)
	}
	sort.Strings(ids)
	return ids
}

// Marshal encodes the state as YAML.
func (s *State) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Save writes the state to path.
func (s *State) Save(path string) error {
	buf, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("unable to encode state: %w", err)
	}
	if err := os.WriteFile(path, buf, stateFileMode); err != nil {
		return fmt.Errorf("unable to write state file: %w", err)
	}
	return nil
}

// LoadState reads a state file written by Save.
func LoadState(path string) (*State, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read state file: %w", err)
	}
	s := &State{}
	if err := yaml.Unmarshal(buf, s); err != nil {
		return nil, fmt.Errorf("unable to parse state file: %w", err)
	}
	return s, nil
}
