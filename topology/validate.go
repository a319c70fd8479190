package topology

import (
	"errors"
	"net/netip"
	"reflect"
	"strings"

	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/zalando-incubator/aws-network-provisioner/aws"
	"github.com/zalando-incubator/aws-network-provisioner/problem"
	"gopkg.in/go-playground/validator.v9"
)

const (
	// AWS accepts VPC and subnet blocks between /16 and /28.
	minPrefixBits = 16
	maxPrefixBits = 28
	maxPort       = 65535
)

var ingressProtocols = map[string]bool{
	"tcp":  true,
	"udp":  true,
	"icmp": true,
	"-1":   true,
}

var fieldValidator = newFieldValidator()

// newFieldValidator reports fields by their plan file names.
func newFieldValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the plan for problems that would fail the run halfway and
// returns all of them joined, or nil.
func (p *Plan) Validate() error {
	probs := &problem.List{}

	p.validateFields(probs)

	vpc, vpcOK := p.validateVPC(probs)
	subnets := p.validateSubnets(probs, vpc, vpcOK)

	if rt := p.RouteTable; rt != nil {
		for _, s := range rt.Subnets {
			if !subnets[s] {
				probs.Add("route table %q: unknown subnet %q", rt.Name, s)
			}
		}
	}

	groups := p.validateSecurityGroups(probs)
	instances := p.validateInstances(probs, subnets, groups)
	p.validateVolumes(probs)
	p.validateTargetGroups(probs, instances)

	return probs.Err()
}

func parsePrefix(cidr string) (netip.Prefix, bool) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil || !prefix.Addr().Is4() || prefix != prefix.Masked() {
		return netip.Prefix{}, false
	}
	return prefix, prefix.Bits() >= minPrefixBits && prefix.Bits() <= maxPrefixBits
}

// validateFields applies the validate tags of the plan types.
func (p *Plan) validateFields(probs *problem.List) {
	err := fieldValidator.Struct(p)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		if err != nil {
			probs.Add("%w", err)
		}
		return
	}
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Plan.")
		if fe.Tag() == "required" {
			probs.Add("%s is required", field)
		} else {
			probs.Add("%s: invalid value %v (%s=%s)", field, fe.Value(), fe.Tag(), fe.Param())
		}
	}
}

func (p *Plan) validateVPC(probs *problem.List) (netip.Prefix, bool) {
	cidr := p.VPC.CIDR
	if cidr == "" {
		cidr = aws.DefaultVpcCIDR
	}
	prefix, ok := parsePrefix(cidr)
	if !ok {
		probs.Add("vpc %q: invalid CIDR %q", p.VPC.Name, cidr)
	}
	return prefix, ok
}

func (p *Plan) validateSubnets(probs *problem.List, vpc netip.Prefix, vpcOK bool) map[string]bool {
	names := make(map[string]bool, len(p.Subnets))
	var prefixes []netip.Prefix
	for _, s := range p.Subnets {
		if s.Name != "" && names[s.Name] {
			probs.Add("subnet %q: duplicate name", s.Name)
		}
		names[s.Name] = true

		if s.CIDR == "" {
			continue
		}
		prefix, ok := parsePrefix(s.CIDR)
		if !ok {
			probs.Add("subnet %q: invalid CIDR %q", s.Name, s.CIDR)
			continue
		}
		if vpcOK && (prefix.Bits() < vpc.Bits() || !vpc.Contains(prefix.Addr())) {
			probs.Add("subnet %q: CIDR %s is outside the VPC CIDR %s", s.Name, prefix, vpc)
		}
		for _, other := range prefixes {
			if other.Overlaps(prefix) {
				probs.Add("subnet %q: CIDR %s overlaps %s", s.Name, prefix, other)
			}
		}
		prefixes = append(prefixes, prefix)
	}
	return names
}

func (p *Plan) validateSecurityGroups(probs *problem.List) map[string]bool {
	names := make(map[string]bool, len(p.SecurityGroups))
	for _, sg := range p.SecurityGroups {
		if sg.Name != "" && names[sg.Name] {
			probs.Add("security group %q: duplicate name", sg.Name)
		}
		names[sg.Name] = true

		for i, r := range sg.Ingress {
			proto := strings.ToLower(r.Protocol)
			if !ingressProtocols[proto] {
				probs.Add("security group %q rule %d: unknown protocol %q", sg.Name, i, r.Protocol)
			}
			if proto == "tcp" || proto == "udp" {
				if r.FromPort < 1 || r.ToPort > maxPort || r.FromPort > r.ToPort {
					probs.Add("security group %q rule %d: invalid port range %d-%d", sg.Name, i, r.FromPort, r.ToPort)
				}
			}
			// ingress rules are sent as IPv4 ranges
			if prefix, err := netip.ParsePrefix(r.CIDR); r.CIDR != "" && (err != nil || !prefix.Addr().Is4()) {
				probs.Add("security group %q rule %d: invalid IPv4 CIDR %q", sg.Name, i, r.CIDR)
			}
		}
	}
	return names
}

func (p *Plan) validateInstances(probs *problem.List, subnets, groups map[string]bool) map[string]bool {
	names := make(map[string]bool, len(p.Instances))
	addresses := make(map[string]bool)
	for _, inst := range p.Instances {
		if inst.Name != "" && names[inst.Name] {
			probs.Add("instance %q: duplicate name", inst.Name)
		}
		names[inst.Name] = true

		if inst.Subnet != "" && !subnets[inst.Subnet] {
			probs.Add("instance %q: unknown subnet %q", inst.Name, inst.Subnet)
		}
		for _, sg := range inst.SecurityGroups {
			if !groups[sg] {
				probs.Add("instance %q: unknown security group %q", inst.Name, sg)
			}
		}
		if inst.KeyPair != "" && (p.KeyPair == nil || p.KeyPair.Name != inst.KeyPair) {
			probs.Add("instance %q: key pair %q is not declared", inst.Name, inst.KeyPair)
		}
		if inst.ElasticIP != "" {
			if addresses[inst.ElasticIP] {
				probs.Add("instance %q: elastic IP %q is used twice", inst.Name, inst.ElasticIP)
			}
			addresses[inst.ElasticIP] = true
		}
	}
	return names
}

func (p *Plan) validateVolumes(probs *problem.List) {
	names := make(map[string]bool, len(p.Volumes))
	snapshots := make(map[string]bool)
	for _, v := range p.Volumes {
		if v.Name != "" && names[v.Name] {
			probs.Add("volume %q: duplicate name", v.Name)
		}
		names[v.Name] = true

		if v.Snapshot != nil && v.Snapshot.Name != "" {
			if snapshots[v.Snapshot.Name] {
				probs.Add("volume %q: duplicate snapshot name %q", v.Name, v.Snapshot.Name)
			}
			snapshots[v.Snapshot.Name] = true
		}

		if v.Type != "" && !isVolumeType(v.Type) {
			probs.Add("volume %q: unknown volume type %q", v.Name, v.Type)
		}
	}
}

func isVolumeType(t string) bool {
	for _, vt := range ec2types.VolumeType("").Values() {
		if string(vt) == t {
			return true
		}
	}
	return false
}

func (p *Plan) validateTargetGroups(probs *problem.List, instances map[string]bool) {
	// all target groups share the VPC, so names clash after normalization
	names := make(map[string]string, len(p.TargetGroups))
	for _, tg := range p.TargetGroups {
		if tg.Name != "" {
			normalized := aws.TargetGroupName(tg.Name, "")
			if other, ok := names[normalized]; ok {
				if other == tg.Name {
					probs.Add("target group %q: duplicate name", tg.Name)
				} else {
					probs.Add("target group %q: name collides with %q after normalization", tg.Name, other)
				}
			} else {
				names[normalized] = tg.Name
			}
		}

		if tg.Protocol != "" && !aws.IsValidTargetGroupProtocol(tg.Protocol) {
			probs.Add("target group %q: unknown protocol %q", tg.Name, tg.Protocol)
		}
		for _, t := range tg.Targets {
			if !instances[t] {
				probs.Add("target group %q: unknown target instance %q", tg.Name, t)
			}
		}
	}
}
