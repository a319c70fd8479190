package aws

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTargetGroupProtocol = elbv2types.ProtocolEnumHttp
	DefaultTargetGroupPort     = 80
	DefaultHealthCheckPath     = "/"
	DefaultHealthCheckInterval = 30 * time.Second
	healthCheckPortTrafficPort = "traffic-port"
)

// TargetGroupProtocols lists the protocols accepted for instance target groups.
var TargetGroupProtocols = []string{
	string(elbv2types.ProtocolEnumHttp),
	string(elbv2types.ProtocolEnumHttps),
	string(elbv2types.ProtocolEnumTcp),
	string(elbv2types.ProtocolEnumTls),
	string(elbv2types.ProtocolEnumUdp),
	string(elbv2types.ProtocolEnumTcpUdp),
}

// TargetGroupSpec describes an instance target group.
type TargetGroupSpec struct {
	Name     string
	VpcID    string
	Protocol string
	Port     int32
	// HealthCheckPath is only used by HTTP and HTTPS target groups.
	HealthCheckPath string
	// HealthCheckPort defaults to the traffic port.
	HealthCheckPort     int32
	HealthCheckInterval time.Duration
	Tags                map[string]string
}

// IsValidTargetGroupProtocol reports whether protocol can be used for a target group.
func IsValidTargetGroupProtocol(protocol string) bool {
	for _, p := range TargetGroupProtocols {
		if strings.EqualFold(p, protocol) {
			return true
		}
	}
	return false
}

func elbv2Tags(tags map[string]string) []elbv2types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]elbv2types.Tag, len(keys))
	for i, k := range keys {
		result[i] = elbv2types.Tag{Key: aws.String(k), Value: aws.String(tags[k])}
	}
	return result
}

// CreateTargetGroup creates an instance target group and returns its ARN.
// The group name is normalized to the ELB naming rules and made unique per VPC.
func (a *Adapter) CreateTargetGroup(ctx context.Context, spec *TargetGroupSpec) (string, error) {
	protocol := DefaultTargetGroupProtocol
	if spec.Protocol != "" {
		protocol = elbv2types.ProtocolEnum(strings.ToUpper(spec.Protocol))
	}
	port := spec.Port
	if port == 0 {
		port = DefaultTargetGroupPort
	}
	interval := spec.HealthCheckInterval
	if interval == 0 {
		interval = DefaultHealthCheckInterval
	}
	healthCheckPort := healthCheckPortTrafficPort
	if spec.HealthCheckPort != 0 {
		healthCheckPort = strconv.Itoa(int(spec.HealthCheckPort))
	}

	tags := make(map[string]string, len(spec.Tags)+1)
	for k, v := range spec.Tags {
		tags[k] = v
	}
	tags[nameTag] = spec.Name

	name := TargetGroupName(spec.Name, spec.VpcID)
	input := &elbv2.CreateTargetGroupInput{
		Name:                       aws.String(name),
		Protocol:                   protocol,
		Port:                       aws.Int32(port),
		VpcId:                      aws.String(spec.VpcID),
		TargetType:                 elbv2types.TargetTypeEnumInstance,
		HealthCheckPort:            aws.String(healthCheckPort),
		HealthCheckIntervalSeconds: aws.Int32(int32(interval.Seconds())),
		Tags:                       elbv2Tags(tags),
	}
	if protocol == elbv2types.ProtocolEnumHttp || protocol == elbv2types.ProtocolEnumHttps {
		path := spec.HealthCheckPath
		if path == "" {
			path = DefaultHealthCheckPath
		}
		input.HealthCheckPath = aws.String(path)
		input.HealthCheckProtocol = protocol
	}

	resp, err := a.elbv2.CreateTargetGroup(ctx, input)
	if err != nil {
		return "", fmt.Errorf("unable to create target group %q: %w", name, err)
	}
	if len(resp.TargetGroups) < 1 {
		return "", fmt.Errorf("%w: target group %q", ErrEmptyResponse, name)
	}

	arn := aws.ToString(resp.TargetGroups[0].TargetGroupArn)
	log.WithFields(log.Fields{"targetGroup": arn, "name": name, "protocol": protocol, "port": port}).
		Info("created target group")
	return arn, nil
}

// RegisterTargets registers the instances in every target group.
func (a *Adapter) RegisterTargets(ctx context.Context, targetGroupARNs []string, instances []string) error {
	return registerTargetsOnTargetGroups(ctx, a.elbv2, targetGroupARNs, instances)
}

// DeregisterTargets removes the instances from every target group.
func (a *Adapter) DeregisterTargets(ctx context.Context, targetGroupARNs []string, instances []string) error {
	return deregisterTargetsOnTargetGroups(ctx, a.elbv2, targetGroupARNs, instances)
}

func targetDescriptions(instances []string) []elbv2types.TargetDescription {
	targets := make([]elbv2types.TargetDescription, len(instances))
	for i, instance := range instances {
		targets[i] = elbv2types.TargetDescription{
			Id: aws.String(instance),
		}
	}
	return targets
}

func registerTargetsOnTargetGroups(ctx context.Context, svc ELBV2API, targetGroupARNs []string, instances []string) error {
	if len(instances) == 0 {
		return nil
	}
	targets := targetDescriptions(instances)

	for _, targetGroupARN := range targetGroupARNs {
		input := &elbv2.RegisterTargetsInput{
			TargetGroupArn: aws.String(targetGroupARN),
			Targets:        targets,
		}

		_, err := svc.RegisterTargets(ctx, input)
		if err != nil {
			return fmt.Errorf("unable to register instances %q in target group %s: %w", instances, targetGroupARN, err)
		}
		log.WithField("targetGroup", targetGroupARN).Infof("registered instances %q", instances)
	}
	return nil
}

func deregisterTargetsOnTargetGroups(ctx context.Context, svc ELBV2API, targetGroupARNs []string, instances []string) error {
	if len(instances) == 0 {
		return nil
	}
	targets := targetDescriptions(instances)

	for _, targetGroupARN := range targetGroupARNs {
		input := &elbv2.DeregisterTargetsInput{
			TargetGroupArn: aws.String(targetGroupARN),
			Targets:        targets,
		}

		_, err := svc.DeregisterTargets(ctx, input)
		if err != nil {
			return fmt.Errorf("unable to deregister instances %q in target group %s: %w", instances, targetGroupARN, err)
		}
		log.WithField("targetGroup", targetGroupARN).Infof("deregistered instances %q", instances)
	}
	return nil
}
