package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalando-incubator/aws-network-provisioner/aws/fake"
)

func TestCreateVpc(t *testing.T) {
	for _, test := range []struct {
		name      string
		cidr      string
		tags      map[string]string
		responses fake.EC2Outputs
		want      string
		wantCIDR  string
		wantTags  map[string]string
		wantError bool
	}{
		{
			name:      "default-cidr",
			responses: fake.EC2Outputs{CreateVpc: fake.R(fake.MockCreateVpcOutput("vpc-1"), nil)},
			want:      "vpc-1",
			wantCIDR:  DefaultVpcCIDR,
			wantTags:  map[string]string{"Name": "testVPC"},
		},
		{
			name:      "custom-cidr-and-tags",
			cidr:      "172.16.0.0/16",
			tags:      map[string]string{"Owner": "network-team"},
			responses: fake.EC2Outputs{CreateVpc: fake.R(fake.MockCreateVpcOutput("vpc-2"), nil)},
			want:      "vpc-2",
			wantCIDR:  "172.16.0.0/16",
			wantTags:  map[string]string{"Name": "testVPC", "Owner": "network-team"},
		},
		{
			name:      "empty-response",
			responses: fake.EC2Outputs{CreateVpc: fake.R(&ec2.CreateVpcOutput{}, nil)},
			wantError: true,
		},
		{
			name:      "aws-error",
			responses: fake.EC2Outputs{CreateVpc: fake.R(nil, fake.ErrDummy)},
			wantError: true,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			svc := &fake.EC2Client{Outputs: test.responses}
			got, err := newTestAdapter(svc, nil).CreateVpc(context.Background(), "testVPC", test.cidr, test.tags)
			assertResultAndError(t, test.want, got, test.wantError, err)
			if test.wantError {
				return
			}
			in := svc.Inputs.CreateVpc[0]
			assert.Equal(t, test.wantCIDR, aws.ToString(in.CidrBlock))
			require.Len(t, in.TagSpecifications, 1)
			assert.Equal(t, ec2types.ResourceTypeVpc, in.TagSpecifications[0].ResourceType)
			assert.Equal(t, test.wantTags, convertEc2Tags(in.TagSpecifications[0].Tags))
		})
	}
}

func TestCreateSubnet(t *testing.T) {
	svc := &fake.EC2Client{Outputs: fake.EC2Outputs{
		CreateSubnet: fake.R(fake.MockCreateSubnetOutput("subnet-1", "us-east-1b"), nil),
	}}

	got, err := newTestAdapter(svc, nil).CreateSubnet(context.Background(), "TestSubnet", "vpc-1", "10.0.0.0/27", "us-east-1b", nil)
	require.NoError(t, err)
	assert.Equal(t, "subnet-1", got)

	in := svc.Inputs.CreateSubnet[0]
	assert.Equal(t, "vpc-1", aws.ToString(in.VpcId))
	assert.Equal(t, "10.0.0.0/27", aws.ToString(in.CidrBlock))
	assert.Equal(t, "us-east-1b", aws.ToString(in.AvailabilityZone))
	assert.Equal(t, ec2types.ResourceTypeSubnet, in.TagSpecifications[0].ResourceType)
	assert.Equal(t, map[string]string{"Name": "TestSubnet"}, convertEc2Tags(in.TagSpecifications[0].Tags))

	t.Run("no-availability-zone", func(t *testing.T) {
		svc := &fake.EC2Client{Outputs: fake.EC2Outputs{
			CreateSubnet: fake.R(fake.MockCreateSubnetOutput("subnet-2", "us-east-1a"), nil),
		}}
		_, err := newTestAdapter(svc, nil).CreateSubnet(context.Background(), "s", "vpc-1", "10.0.1.0/24", "", nil)
		require.NoError(t, err)
		assert.Nil(t, svc.Inputs.CreateSubnet[0].AvailabilityZone)
	})

	t.Run("aws-error", func(t *testing.T) {
		svc := &fake.EC2Client{Outputs: fake.EC2Outputs{CreateSubnet: fake.R(nil, fake.ErrDummy)}}
		_, err := newTestAdapter(svc, nil).CreateSubnet(context.Background(), "s", "vpc-1", "10.0.1.0/24", "", nil)
		assert.ErrorIs(t, err, fake.ErrDummy)
	})
}

func TestCreateInternetGateway(t *testing.T) {
	for _, test := range []struct {
		name       string
		responses  fake.EC2Outputs
		want       string
		wantError  bool
		wantAttach int
	}{
		{
			name:       "create-and-attach",
			responses:  fake.EC2Outputs{CreateInternetGateway: fake.R(fake.MockCreateInternetGatewayOutput("igw-1"), nil)},
			want:       "igw-1",
			wantAttach: 1,
		},
		{
			name: "attach-fails",
			responses: fake.EC2Outputs{
				CreateInternetGateway: fake.R(fake.MockCreateInternetGatewayOutput("igw-1"), nil),
				AttachInternetGateway: fake.R(nil, fake.ErrDummy),
			},
			want:       "igw-1",
			wantError:  true,
			wantAttach: 1,
		},
		{
			name:       "create-fails",
			responses:  fake.EC2Outputs{CreateInternetGateway: fake.R(nil, fake.ErrDummy)},
			wantError:  true,
			wantAttach: 0,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			svc := &fake.EC2Client{Outputs: test.responses}
			got, err := newTestAdapter(svc, nil).CreateInternetGateway(context.Background(), "testIGW", "vpc-1", nil)
			if test.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, test.want, got)

			require.Len(t, svc.Inputs.AttachInternetGateway, test.wantAttach)
			if test.wantAttach > 0 {
				attach := svc.Inputs.AttachInternetGateway[0]
				assert.Equal(t, "igw-1", aws.ToString(attach.InternetGatewayId))
				assert.Equal(t, "vpc-1", aws.ToString(attach.VpcId))
			}
			if len(svc.Inputs.CreateInternetGateway) > 0 {
				specs := svc.Inputs.CreateInternetGateway[0].TagSpecifications
				assert.Equal(t, ec2types.ResourceTypeInternetGateway, specs[0].ResourceType)
			}
		})
	}
}

func TestCreateRouteTable(t *testing.T) {
	t.Run("associate-and-route", func(t *testing.T) {
		svc := &fake.EC2Client{Outputs: fake.EC2Outputs{
			CreateRouteTable: fake.R(fake.MockCreateRouteTableOutput("rtb-1"), nil),
		}}

		got, err := newTestAdapter(svc, nil).CreateRouteTable(context.Background(), "testRouteTable", "vpc-1",
			[]string{"subnet-1", "subnet-2"}, "igw-1", nil)
		require.NoError(t, err)
		assert.Equal(t, "rtb-1", got)

		assert.Equal(t, "vpc-1", aws.ToString(svc.Inputs.CreateRouteTable[0].VpcId))
		assert.Equal(t, ec2types.ResourceTypeRouteTable, svc.Inputs.CreateRouteTable[0].TagSpecifications[0].ResourceType)

		require.Len(t, svc.Inputs.AssociateRouteTable, 2)
		for i, subnet := range []string{"subnet-1", "subnet-2"} {
			assert.Equal(t, "rtb-1", aws.ToString(svc.Inputs.AssociateRouteTable[i].RouteTableId))
			assert.Equal(t, subnet, aws.ToString(svc.Inputs.AssociateRouteTable[i].SubnetId))
		}

		require.Len(t, svc.Inputs.CreateRoute, 1)
		route := svc.Inputs.CreateRoute[0]
		assert.Equal(t, "rtb-1", aws.ToString(route.RouteTableId))
		assert.Equal(t, "0.0.0.0/0", aws.ToString(route.DestinationCidrBlock))
		assert.Equal(t, "igw-1", aws.ToString(route.GatewayId))
	})

	t.Run("no-gateway-no-route", func(t *testing.T) {
		svc := &fake.EC2Client{Outputs: fake.EC2Outputs{
			CreateRouteTable: fake.R(fake.MockCreateRouteTableOutput("rtb-1"), nil),
		}}
		_, err := newTestAdapter(svc, nil).CreateRouteTable(context.Background(), "private", "vpc-1", []string{"subnet-1"}, "", nil)
		require.NoError(t, err)
		assert.Empty(t, svc.Inputs.CreateRoute)
	})

	t.Run("association-fails", func(t *testing.T) {
		svc := &fake.EC2Client{Outputs: fake.EC2Outputs{
			CreateRouteTable:    fake.R(fake.MockCreateRouteTableOutput("rtb-1"), nil),
			AssociateRouteTable: fake.R(nil, fake.ErrDummy),
		}}
		got, err := newTestAdapter(svc, nil).CreateRouteTable(context.Background(), "rt", "vpc-1", []string{"subnet-1", "subnet-2"}, "igw-1", nil)
		assert.ErrorIs(t, err, fake.ErrDummy)
		assert.Equal(t, "rtb-1", got)
		assert.Len(t, svc.Inputs.AssociateRouteTable, 1)
		assert.Empty(t, svc.Inputs.CreateRoute)
	})

	t.Run("route-fails", func(t *testing.T) {
		svc := &fake.EC2Client{Outputs: fake.EC2Outputs{
			CreateRouteTable: fake.R(fake.MockCreateRouteTableOutput("rtb-1"), nil),
			CreateRoute:      fake.R(nil, fake.ErrDummy),
		}}
		got, err := newTestAdapter(svc, nil).CreateRouteTable(context.Background(), "rt", "vpc-1", nil, "igw-1", nil)
		assert.ErrorIs(t, err, fake.ErrDummy)
		assert.Equal(t, "rtb-1", got)
	})
}

func TestElasticAddress(t *testing.T) {
	svc := &fake.EC2Client{Outputs: fake.EC2Outputs{
		AllocateAddress:  fake.R(fake.MockAllocateAddressOutput("203.0.113.10", "eipalloc-1"), nil),
		AssociateAddress: fake.R(fake.MockAssociateAddressOutput("eipassoc-1"), nil),
	}}
	a := newTestAdapter(svc, nil)

	address, err := a.AllocateElasticAddress(context.Background(), "testElastic", nil)
	require.NoError(t, err)
	assert.Equal(t, &ElasticAddress{PublicIP: "203.0.113.10", AllocationID: "eipalloc-1"}, address)
	assert.Equal(t, ec2types.DomainTypeVpc, svc.Inputs.AllocateAddress[0].Domain)
	assert.Equal(t, ec2types.ResourceTypeElasticIp, svc.Inputs.AllocateAddress[0].TagSpecifications[0].ResourceType)

	associationID, err := a.AssociateElasticAddress(context.Background(), address, "i-1")
	require.NoError(t, err)
	assert.Equal(t, "eipassoc-1", associationID)
	assert.Equal(t, "eipalloc-1", aws.ToString(svc.Inputs.AssociateAddress[0].AllocationId))
	assert.Nil(t, svc.Inputs.AssociateAddress[0].PublicIp)
	assert.Equal(t, "i-1", aws.ToString(svc.Inputs.AssociateAddress[0].InstanceId))

	_, err = a.AssociateElasticAddress(context.Background(), &ElasticAddress{PublicIP: "203.0.113.11"}, "i-2")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.11", aws.ToString(svc.Inputs.AssociateAddress[1].PublicIp))
	assert.Nil(t, svc.Inputs.AssociateAddress[1].AllocationId)

	t.Run("allocate-fails", func(t *testing.T) {
		svc := &fake.EC2Client{Outputs: fake.EC2Outputs{AllocateAddress: fake.R(nil, fake.ErrDummy)}}
		_, err := newTestAdapter(svc, nil).AllocateElasticAddress(context.Background(), "e", nil)
		assert.ErrorIs(t, err, fake.ErrDummy)
	})
}

func TestElasticAddressString(t *testing.T) {
	assert.Equal(t, "203.0.113.10 (eipalloc-1)", (&ElasticAddress{PublicIP: "203.0.113.10", AllocationID: "eipalloc-1"}).String())
	assert.Equal(t, "203.0.113.10", (&ElasticAddress{PublicIP: "203.0.113.10"}).String())
}
