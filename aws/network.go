package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	log "github.com/sirupsen/logrus"
)

// ElasticAddress identifies an allocated elastic IP.
type ElasticAddress struct {
	PublicIP     string
	AllocationID string
}

// CreateVpc creates a VPC named name. An empty cidr selects DefaultVpcCIDR.
func (a *Adapter) CreateVpc(ctx context.Context, name, cidr string, tags map[string]string) (string, error) {
	if cidr == "" {
		cidr = DefaultVpcCIDR
	}
	resp, err := a.ec2.CreateVpc(ctx, &ec2.CreateVpcInput{
		CidrBlock:         aws.String(cidr),
		TagSpecifications: nameTagSpecification(ec2types.ResourceTypeVpc, name, tags),
	})
	if err != nil {
		return "", fmt.Errorf("unable to create vpc %q: %w", name, err)
	}
	if resp.Vpc == nil {
		return "", fmt.Errorf("%w: vpc %q", ErrEmptyResponse, name)
	}

	vpcID := aws.ToString(resp.Vpc.VpcId)
	log.WithFields(log.Fields{"vpc": vpcID, "name": name, "cidr": cidr}).Info("created vpc")
	return vpcID, nil
}

// CreateSubnet creates a subnet of the VPC in the given availability zone.
func (a *Adapter) CreateSubnet(ctx context.Context, name, vpcID, cidr, availabilityZone string, tags map[string]string) (string, error) {
	input := &ec2.CreateSubnetInput{
		VpcId:             aws.String(vpcID),
		CidrBlock:         aws.String(cidr),
		TagSpecifications: nameTagSpecification(ec2types.ResourceTypeSubnet, name, tags),
	}
	if availabilityZone != "" {
		input.AvailabilityZone = aws.String(availabilityZone)
	}

	resp, err := a.ec2.CreateSubnet(ctx, input)
	if err != nil {
		return "", fmt.Errorf("unable to create subnet %q in %s: %w", name, vpcID, err)
	}
	if resp.Subnet == nil {
		return "", fmt.Errorf("%w: subnet %q", ErrEmptyResponse, name)
	}

	subnetID := aws.ToString(resp.Subnet.SubnetId)
	log.WithFields(log.Fields{
		"subnet": subnetID,
		"name":   name,
		"cidr":   cidr,
		"az":     aws.ToString(resp.Subnet.AvailabilityZone),
	}).Info("created subnet")
	return subnetID, nil
}

// CreateInternetGateway creates an internet gateway and attaches it to the VPC.
// When the attachment fails the ID of the detached gateway is still returned.
func (a *Adapter) CreateInternetGateway(ctx context.Context, name, vpcID string, tags map[string]string) (string, error) {
	resp, err := a.ec2.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{
		TagSpecifications: nameTagSpecification(ec2types.ResourceTypeInternetGateway, name, tags),
	})
	if err != nil {
		return "", fmt.Errorf("unable to create internet gateway %q: %w", name, err)
	}
	if resp.InternetGateway == nil {
		return "", fmt.Errorf("%w: internet gateway %q", ErrEmptyResponse, name)
	}
	gatewayID := aws.ToString(resp.InternetGateway.InternetGatewayId)

	_, err = a.ec2.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: aws.String(gatewayID),
		VpcId:             aws.String(vpcID),
	})
	if err != nil {
		return gatewayID, fmt.Errorf("unable to attach internet gateway %s to %s: %w", gatewayID, vpcID, err)
	}

	log.WithFields(log.Fields{"gateway": gatewayID, "name": name, "vpc": vpcID}).Info("created and attached internet gateway")
	return gatewayID, nil
}

// CreateRouteTable creates a route table in the VPC, associates it with the
// subnets and routes 0.0.0.0/0 through the gateway. The route is skipped when
// gatewayID is empty. On a failed association or route the ID of the
// created table is still returned.
func (a *Adapter) CreateRouteTable(ctx context.Context, name, vpcID string, subnetIDs []string, gatewayID string, tags map[string]string) (string, error) {
	resp, err := a.ec2.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
		VpcId:             aws.String(vpcID),
		TagSpecifications: nameTagSpecification(ec2types.ResourceTypeRouteTable, name, tags),
	})
	if err != nil {
		return "", fmt.Errorf("unable to create route table %q: %w", name, err)
	}
	if resp.RouteTable == nil {
		return "", fmt.Errorf("%w: route table %q", ErrEmptyResponse, name)
	}
	routeTableID := aws.ToString(resp.RouteTable.RouteTableId)

	for _, subnetID := range subnetIDs {
		_, err := a.ec2.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
			RouteTableId: aws.String(routeTableID),
			SubnetId:     aws.String(subnetID),
		})
		if err != nil {
			return routeTableID, fmt.Errorf("unable to associate route table %s with %s: %w", routeTableID, subnetID, err)
		}
	}

	if gatewayID != "" {
		_, err = a.ec2.CreateRoute(ctx, &ec2.CreateRouteInput{
			RouteTableId:         aws.String(routeTableID),
			DestinationCidrBlock: aws.String(DefaultRouteCIDR),
			GatewayId:            aws.String(gatewayID),
		})
		if err != nil {
			return routeTableID, fmt.Errorf("unable to route %s via %s: %w", DefaultRouteCIDR, gatewayID, err)
		}
	}

	log.WithFields(log.Fields{"routeTable": routeTableID, "name": name, "subnets": subnetIDs, "gateway": gatewayID}).
		Info("created route table")
	return routeTableID, nil
}

// AllocateElasticAddress allocates a VPC elastic IP named name.
func (a *Adapter) AllocateElasticAddress(ctx context.Context, name string, tags map[string]string) (*ElasticAddress, error) {
	resp, err := a.ec2.AllocateAddress(ctx, &ec2.AllocateAddressInput{
		Domain:            ec2types.DomainTypeVpc,
		TagSpecifications: nameTagSpecification(ec2types.ResourceTypeElasticIp, name, tags),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to allocate elastic address %q: %w", name, err)
	}

	address := &ElasticAddress{
		PublicIP:     aws.ToString(resp.PublicIp),
		AllocationID: aws.ToString(resp.AllocationId),
	}
	log.WithFields(log.Fields{"address": address.PublicIP, "allocation": address.AllocationID, "name": name}).
		Info("allocated elastic address")
	return address, nil
}

// AssociateElasticAddress binds an elastic IP to an instance and returns the
// association ID. The address is looked up by allocation ID when set and by
// public IP otherwise.
func (a *Adapter) AssociateElasticAddress(ctx context.Context, address *ElasticAddress, instanceID string) (string, error) {
	input := &ec2.AssociateAddressInput{
		InstanceId: aws.String(instanceID),
	}
	if address.AllocationID != "" {
		input.AllocationId = aws.String(address.AllocationID)
	} else {
		input.PublicIp = aws.String(address.PublicIP)
	}

	resp, err := a.ec2.AssociateAddress(ctx, input)
	if err != nil {
		return "", fmt.Errorf("unable to associate %s with %s: %w", address, instanceID, err)
	}

	associationID := aws.ToString(resp.AssociationId)
	log.WithFields(log.Fields{"address": address.PublicIP, "instance": instanceID, "association": associationID}).
		Info("associated elastic address")
	return associationID, nil
}

func (ea *ElasticAddress) String() string {
	if ea.AllocationID != "" {
		return fmt.Sprintf("%s (%s)", ea.PublicIP, ea.AllocationID)
	}
	return ea.PublicIP
}
