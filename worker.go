package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zalando-incubator/aws-network-provisioner/aws"
	"github.com/zalando-incubator/aws-network-provisioner/topology"
)

const (
	resourceVpc             = "vpc"
	resourceSubnet          = "subnet"
	resourceInternetGateway = "internet-gateway"
	resourceRouteTable      = "route-table"
	resourceSecurityGroup   = "security-group"
	resourceKeyPair         = "key-pair"
	resourceInstance        = "instance"
	resourceElasticIP       = "elastic-ip"
	resourceVolume          = "volume"
	resourceSnapshot        = "snapshot"
	resourceTargetGroup     = "target-group"
	resourceTag             = "tag"
)

type provisioner interface {
	Region() string
	CreateVpc(ctx context.Context, name, cidr string, tags map[string]string) (string, error)
	CreateSubnet(ctx context.Context, name, vpcID, cidr, availabilityZone string, tags map[string]string) (string, error)
	CreateInternetGateway(ctx context.Context, name, vpcID string, tags map[string]string) (string, error)
	CreateRouteTable(ctx context.Context, name, vpcID string, subnetIDs []string, gatewayID string, tags map[string]string) (string, error)
	CreateSecurityGroup(ctx context.Context, name, description, vpcID string, rules []aws.IngressRule, tags map[string]string) (string, error)
	CreateKeyPair(ctx context.Context, keyName, dir string) (string, error)
	CreateInstance(ctx context.Context, spec *aws.InstanceSpec) (string, error)
	WaitForInstanceRunning(ctx context.Context, instanceID string) error
	AllocateElasticAddress(ctx context.Context, name string, tags map[string]string) (*aws.ElasticAddress, error)
	AssociateElasticAddress(ctx context.Context, address *aws.ElasticAddress, instanceID string) (string, error)
	CreateVolume(ctx context.Context, spec *aws.VolumeSpec) (string, error)
	CreateSnapshot(ctx context.Context, name, volumeID, description string, tags map[string]string) (string, error)
	WaitForSnapshot(ctx context.Context, snapshotID string) error
	CreateTargetGroup(ctx context.Context, spec *aws.TargetGroupSpec) (string, error)
	RegisterTargets(ctx context.Context, targetGroupARNs []string, instances []string) error
}

var _ provisioner = &aws.Adapter{}

// worker runs a plan step by step. The first failing step stops the run.
type worker struct {
	provisioner provisioner
	metrics     *metrics
	keyDir      string
	statePath   string
}

func newWorker(p provisioner, m *metrics, keyDir, statePath string) *worker {
	return &worker{
		provisioner: p,
		metrics:     m,
		keyDir:      keyDir,
		statePath:   statePath,
	}
}

// provision builds every resource of plan and returns the ids that were
// created, also when the run failed. The state file is written in both cases.
func (w *worker) provision(ctx context.Context, plan *topology.Plan) (*topology.State, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	if kp := plan.KeyPair; kp != nil {
		if err := aws.CheckKeyFile(w.keyDir, kp.Name); err != nil {
			return nil, fmt.Errorf("key pair %q: %w", kp.Name, err)
		}
	}

	start := time.Now()
	state := topology.NewState(w.provisioner.Region())
	err := w.doWork(ctx, plan, state)
	state.Finish(err)
	w.metrics.runFinished(start, err)

	if err != nil {
		log.WithFields(log.Fields{"created": state.Resources()}).Errorf("provisioning stopped: %v", err)
	} else {
		log.WithFields(log.Fields{"resources": len(state.Resources()), "duration": time.Since(start)}).
			Info("provisioning finished")
	}

	if w.statePath != "" {
		if serr := state.Save(w.statePath); serr != nil {
			return state, errors.Join(err, serr)
		}
		log.Debugf("state written to %s", w.statePath)
	}
	return state, err
}

func (w *worker) step(resourceType, name string, fn func() error) error {
	if err := fn(); err != nil {
		w.metrics.failed(resourceType)
		return fmt.Errorf("%s %q: %w", resourceType, name, err)
	}
	w.metrics.changesTotal.created(resourceType)
	return nil
}

func (w *worker) doWork(ctx context.Context, plan *topology.Plan, state *topology.State) error {
	p := w.provisioner

	vpcCIDR := plan.VPC.CIDR
	if vpcCIDR == "" {
		vpcCIDR = aws.DefaultVpcCIDR
	}
	err := w.step(resourceVpc, plan.VPC.Name, func() (err error) {
		state.VPC, err = p.CreateVpc(ctx, plan.VPC.Name, vpcCIDR, plan.VPC.Tags)
		return
	})
	if err != nil {
		return err
	}

	for _, s := range plan.Subnets {
		err := w.step(resourceSubnet, s.Name, func() error {
			id, err := p.CreateSubnet(ctx, s.Name, state.VPC, s.CIDR, s.AvailabilityZone, s.Tags)
			if err != nil {
				return err
			}
			state.Subnets[s.Name] = id
			return nil
		})
		if err != nil {
			return err
		}
	}

	if igw := plan.InternetGateway; igw != nil {
		err := w.step(resourceInternetGateway, igw.Name, func() (err error) {
			state.InternetGateway, err = p.CreateInternetGateway(ctx, igw.Name, state.VPC, igw.Tags)
			return
		})
		if err != nil {
			return err
		}
	}

	if rt := plan.RouteTable; rt != nil {
		err := w.step(resourceRouteTable, rt.Name, func() (err error) {
			subnets := topology.IDs(state.Subnets, rt.Subnets)
			state.RouteTable, err = p.CreateRouteTable(ctx, rt.Name, state.VPC, subnets, state.InternetGateway, rt.Tags)
			return
		})
		if err != nil {
			return err
		}
	}

	for _, sg := range plan.SecurityGroups {
		err := w.step(resourceSecurityGroup, sg.Name, func() error {
			id, err := p.CreateSecurityGroup(ctx, sg.Name, sg.Description, state.VPC, ingressRules(sg.Ingress), sg.Tags)
			if id != "" {
				state.SecurityGroups[sg.Name] = id
			}
			return err
		})
		if err != nil {
			return err
		}
	}

	if kp := plan.KeyPair; kp != nil {
		err := w.step(resourceKeyPair, kp.Name, func() (err error) {
			state.KeyFile, err = p.CreateKeyPair(ctx, kp.Name, w.keyDir)
			return
		})
		if err != nil {
			return err
		}
	}

	if err := w.provisionInstances(ctx, plan, state); err != nil {
		return err
	}

	if err := w.provisionVolumes(ctx, plan, state); err != nil {
		return err
	}

	return w.provisionTargetGroups(ctx, plan, state)
}

func ingressRules(rules []topology.IngressRule) []aws.IngressRule {
	result := make([]aws.IngressRule, 0, len(rules))
	for _, r := range rules {
		result = append(result, aws.IngressRule{
			Protocol:    r.Protocol,
			FromPort:    r.FromPort,
			ToPort:      r.ToPort,
			CIDR:        r.CIDR,
			Description: r.Description,
		})
	}
	return result
}

// targetInstances returns the names of instances some target group registers.
func targetInstances(plan *topology.Plan) map[string]bool {
	targets := make(map[string]bool)
	for _, tg := range plan.TargetGroups {
		for _, t := range tg.Targets {
			targets[t] = true
		}
	}
	return targets
}

func (w *worker) provisionInstances(ctx context.Context, plan *topology.Plan, state *topology.State) error {
	p := w.provisioner
	targets := targetInstances(plan)

	for _, inst := range plan.Instances {
		err := w.step(resourceInstance, inst.Name, func() error {
			id, err := p.CreateInstance(ctx, &aws.InstanceSpec{
				Name:             inst.Name,
				ImageID:          inst.AMI,
				SubnetID:         state.Subnets[inst.Subnet],
				KeyName:          inst.KeyPair,
				SecurityGroupIDs: topology.IDs(state.SecurityGroups, inst.SecurityGroups),
				InstanceType:     inst.InstanceType,
				Tags:             inst.Tags,
			})
			if err != nil {
				return err
			}
			state.Instances[inst.Name] = id

			// addresses and targets can only be attached to a running instance
			if inst.ElasticIP != "" || targets[inst.Name] {
				return p.WaitForInstanceRunning(ctx, id)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if inst.ElasticIP == "" {
			continue
		}
		err = w.step(resourceElasticIP, inst.ElasticIP, func() error {
			address, err := p.AllocateElasticAddress(ctx, inst.ElasticIP, nil)
			if err != nil {
				return err
			}
			recorded := topology.Address{PublicIP: address.PublicIP, AllocationID: address.AllocationID}
			state.ElasticIPs[inst.ElasticIP] = recorded

			recorded.AssociationID, err = p.AssociateElasticAddress(ctx, address, state.Instances[inst.Name])
			if err != nil {
				return err
			}
			state.ElasticIPs[inst.ElasticIP] = recorded
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *worker) provisionVolumes(ctx context.Context, plan *topology.Plan, state *topology.State) error {
	p := w.provisioner

	for _, v := range plan.Volumes {
		err := w.step(resourceVolume, v.Name, func() error {
			id, err := p.CreateVolume(ctx, &aws.VolumeSpec{
				Name:             v.Name,
				AvailabilityZone: v.AvailabilityZone,
				SizeGiB:          v.SizeGiB,
				VolumeType:       v.Type,
				Tags:             v.Tags,
			})
			if err != nil {
				return err
			}
			state.Volumes[v.Name] = id
			return nil
		})
		if err != nil {
			return err
		}

		snap := v.Snapshot
		if snap == nil {
			continue
		}
		err = w.step(resourceSnapshot, snap.Name, func() error {
			id, err := p.CreateSnapshot(ctx, snap.Name, state.Volumes[v.Name], snap.Description, nil)
			if err != nil {
				return err
			}
			state.Snapshots[snap.Name] = id
			if snap.Wait {
				return p.WaitForSnapshot(ctx, id)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *worker) provisionTargetGroups(ctx context.Context, plan *topology.Plan, state *topology.State) error {
	p := w.provisioner

	for _, tg := range plan.TargetGroups {
		err := w.step(resourceTargetGroup, tg.Name, func() error {
			arn, err := p.CreateTargetGroup(ctx, &aws.TargetGroupSpec{
				Name:                tg.Name,
				VpcID:               state.VPC,
				Protocol:            tg.Protocol,
				Port:                tg.Port,
				HealthCheckPath:     tg.HealthCheckPath,
				HealthCheckPort:     tg.HealthCheckPort,
				HealthCheckInterval: time.Duration(tg.HealthCheckIntervalSeconds) * time.Second,
				Tags:                tg.Tags,
			})
			if err != nil {
				return err
			}
			state.TargetGroups[tg.Name] = arn
			return p.RegisterTargets(ctx, []string{arn}, topology.IDs(state.Instances, tg.Targets))
		})
		if err != nil {
			return err
		}
	}
	return nil
}
