package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	log "github.com/sirupsen/logrus"
)

// IngressRule opens a port range to an IPv4 CIDR.
type IngressRule struct {
	// Protocol is tcp, udp, icmp or -1 for all traffic.
	Protocol    string
	FromPort    int32
	ToPort      int32
	CIDR        string
	Description string
}

func (r IngressRule) ipPermission() ec2types.IpPermission {
	ipRange := ec2types.IpRange{CidrIp: aws.String(r.CIDR)}
	if r.Description != "" {
		ipRange.Description = aws.String(r.Description)
	}
	perm := ec2types.IpPermission{
		IpProtocol: aws.String(strings.ToLower(r.Protocol)),
		IpRanges:   []ec2types.IpRange{ipRange},
	}
	if r.Protocol != "-1" {
		perm.FromPort = aws.Int32(r.FromPort)
		perm.ToPort = aws.Int32(r.ToPort)
	}
	return perm
}

// CreateSecurityGroup creates a security group in the VPC and authorizes the
// ingress rules. When the authorization fails the ID of the created group is
// still returned.
func (a *Adapter) CreateSecurityGroup(ctx context.Context, name, description, vpcID string, rules []IngressRule, tags map[string]string) (string, error) {
	if description == "" {
		description = name
	}
	resp, err := a.ec2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:         aws.String(name),
		Description:       aws.String(description),
		VpcId:             aws.String(vpcID),
		TagSpecifications: nameTagSpecification(ec2types.ResourceTypeSecurityGroup, name, tags),
	})
	if err != nil {
		return "", fmt.Errorf("unable to create security group %q: %w", name, err)
	}
	groupID := aws.ToString(resp.GroupId)

	if len(rules) > 0 {
		permissions := make([]ec2types.IpPermission, len(rules))
		for i, r := range rules {
			permissions[i] = r.ipPermission()
		}
		_, err = a.ec2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:       aws.String(groupID),
			IpPermissions: permissions,
		})
		if err != nil {
			return groupID, fmt.Errorf("unable to authorize ingress for security group %s: %w", groupID, err)
		}
	}

	log.WithFields(log.Fields{"securityGroup": groupID, "name": name, "vpc": vpcID, "rules": len(rules)}).
		Info("created security group")
	return groupID, nil
}
