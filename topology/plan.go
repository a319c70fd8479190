package topology

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
)

// Plan is the declarative description of a topology. Resources refer to
// each other by name; the provisioning order is fixed and does not depend on
// the order of entries in the file.
type Plan struct {
	VPC             VPC              `json:"vpc"`
	Subnets         []Subnet         `json:"subnets,omitempty" validate:"dive"`
	InternetGateway *InternetGateway `json:"internetGateway,omitempty"`
	RouteTable      *RouteTable      `json:"routeTable,omitempty"`
	SecurityGroups  []SecurityGroup  `json:"securityGroups,omitempty" validate:"dive"`
	KeyPair         *KeyPair         `json:"keyPair,omitempty"`
	Instances       []Instance       `json:"instances,omitempty" validate:"dive"`
	Volumes         []Volume         `json:"volumes,omitempty" validate:"dive"`
	TargetGroups    []TargetGroup    `json:"targetGroups,omitempty" validate:"dive"`
}

type VPC struct {
	Name string            `json:"name" validate:"required"`
	CIDR string            `json:"cidr,omitempty"`
	Tags map[string]string `json:"tags,omitempty"`
}

type Subnet struct {
	Name             string            `json:"name" validate:"required"`
	CIDR             string            `json:"cidr" validate:"required"`
	AvailabilityZone string            `json:"availabilityZone,omitempty"`
	Tags             map[string]string `json:"tags,omitempty"`
}

type InternetGateway struct {
	Name string            `json:"name" validate:"required"`
	Tags map[string]string `json:"tags,omitempty"`
}

// RouteTable is associated with the listed subnets. When the plan has an
// internet gateway, the table routes 0.0.0.0/0 through it.
type RouteTable struct {
	Name    string            `json:"name" validate:"required"`
	Subnets []string          `json:"subnets"`
	Tags    map[string]string `json:"tags,omitempty"`
}

type SecurityGroup struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description,omitempty"`
	Ingress     []IngressRule     `json:"ingress,omitempty" validate:"dive"`
	Tags        map[string]string `json:"tags,omitempty"`
}

type IngressRule struct {
	// Protocol is tcp, udp, icmp or -1 for all traffic.
	Protocol    string `json:"protocol" validate:"required"`
	FromPort    int32  `json:"fromPort,omitempty"`
	ToPort      int32  `json:"toPort,omitempty"`
	CIDR        string `json:"cidr" validate:"required"`
	Description string `json:"description,omitempty"`
}

type KeyPair struct {
	Name string `json:"name" validate:"required"`
}

type Instance struct {
	Name           string   `json:"name" validate:"required"`
	AMI            string   `json:"ami" validate:"required"`
	InstanceType   string   `json:"instanceType,omitempty"`
	Subnet         string   `json:"subnet" validate:"required"`
	SecurityGroups []string `json:"securityGroups,omitempty"`
	KeyPair        string   `json:"keyPair,omitempty"`
	// ElasticIP names an elastic IP allocated for and associated with the instance.
	ElasticIP string            `json:"elasticIP,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
}

type Volume struct {
	Name             string            `json:"name" validate:"required"`
	AvailabilityZone string            `json:"availabilityZone" validate:"required"`
	SizeGiB          int32             `json:"sizeGiB,omitempty" validate:"min=0"`
	Type             string            `json:"type,omitempty"`
	Snapshot         *Snapshot         `json:"snapshot,omitempty"`
	Tags             map[string]string `json:"tags,omitempty"`
}

type Snapshot struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	// Wait blocks the run until the snapshot is completed.
	Wait bool `json:"wait,omitempty"`
}

type TargetGroup struct {
	Name                       string `json:"name" validate:"required"`
	Protocol                   string `json:"protocol,omitempty"`
	Port                       int32  `json:"port,omitempty" validate:"min=0,max=65535"`
	HealthCheckPath            string `json:"healthCheckPath,omitempty"`
	HealthCheckPort            int32  `json:"healthCheckPort,omitempty" validate:"min=0,max=65535"`
	HealthCheckIntervalSeconds int32  `json:"healthCheckIntervalSeconds,omitempty" validate:"omitempty,min=5,max=300"`
	// Targets are instance names registered once they are running.
	Targets []string          `json:"targets,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// LoadPlan reads a YAML plan from path.
func LoadPlan(path string) (*Plan, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read plan: %w", err)
	}
	return ParsePlan(buf)
}

// ParsePlan decodes a YAML plan.
func ParsePlan(buf []byte) (*Plan, error) {
	plan := &Plan{}
	if err := yaml.Unmarshal(buf, plan); err != nil {
		return nil, fmt.Errorf("unable to parse plan: %w", err)
	}
	return plan, nil
}

// Marshal encodes the plan as YAML.
func (p *Plan) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// DefaultPlan returns the sample topology: one public subnet with an
// internet facing instance reachable through an elastic IP.
func DefaultPlan() *Plan {
	return &Plan{
		VPC: VPC{Name: "testVPC", CIDR: "10.0.0.0/16"},
		Subnets: []Subnet{
			{Name: "TestSubnet", CIDR: "10.0.0.0/27", AvailabilityZone: "us-east-1b"},
		},
		InternetGateway: &InternetGateway{Name: "testIGW"},
		RouteTable:      &RouteTable{Name: "testRouteTable", Subnets: []string{"TestSubnet"}},
		KeyPair:         &KeyPair{Name: "keypair"},
		Instances: []Instance{
			{
				Name:      "testInstance",
				AMI:       "ami-03ededff12e34e59e",
				Subnet:    "TestSubnet",
				KeyPair:   "keypair",
				ElasticIP: "testElastic",
			},
		},
	}
}
