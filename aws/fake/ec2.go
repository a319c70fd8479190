package fake

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

type EC2Outputs struct {
	StartInstancesDryRun          *APIResponse
	StartInstances                *APIResponse
	StopInstancesDryRun           *APIResponse
	StopInstances                 *APIResponse
	DescribeInstances             []*APIResponse
	RunInstances                  *APIResponse
	CreateKeyPair                 *APIResponse
	CreateTags                    *APIResponse
	DeleteTags                    *APIResponse
	CreateVpc                     *APIResponse
	CreateSubnet                  *APIResponse
	CreateInternetGateway         *APIResponse
	AttachInternetGateway         *APIResponse
	CreateRouteTable              *APIResponse
	AssociateRouteTable           *APIResponse
	CreateRoute                   *APIResponse
	AllocateAddress               *APIResponse
	AssociateAddress              *APIResponse
	CreateVolume                  *APIResponse
	CreateSnapshot                *APIResponse
	DescribeSnapshots             []*APIResponse
	CreateSecurityGroup           *APIResponse
	AuthorizeSecurityGroupIngress *APIResponse
}

// EC2Inputs records the requests an EC2Client received.
type EC2Inputs struct {
	StartInstances                []*ec2.StartInstancesInput
	StopInstances                 []*ec2.StopInstancesInput
	DescribeInstances             []*ec2.DescribeInstancesInput
	RunInstances                  []*ec2.RunInstancesInput
	CreateKeyPair                 []*ec2.CreateKeyPairInput
	CreateTags                    []*ec2.CreateTagsInput
	DeleteTags                    []*ec2.DeleteTagsInput
	CreateVpc                     []*ec2.CreateVpcInput
	CreateSubnet                  []*ec2.CreateSubnetInput
	CreateInternetGateway         []*ec2.CreateInternetGatewayInput
	AttachInternetGateway         []*ec2.AttachInternetGatewayInput
	CreateRouteTable              []*ec2.CreateRouteTableInput
	AssociateRouteTable           []*ec2.AssociateRouteTableInput
	CreateRoute                   []*ec2.CreateRouteInput
	AllocateAddress               []*ec2.AllocateAddressInput
	AssociateAddress              []*ec2.AssociateAddressInput
	CreateVolume                  []*ec2.CreateVolumeInput
	CreateSnapshot                []*ec2.CreateSnapshotInput
	DescribeSnapshots             []*ec2.DescribeSnapshotsInput
	CreateSecurityGroup           []*ec2.CreateSecurityGroupInput
	AuthorizeSecurityGroupIngress []*ec2.AuthorizeSecurityGroupIngressInput
}

type EC2Client struct {
	Outputs EC2Outputs
	Inputs  EC2Inputs
}

func (m *EC2Client) StartInstances(_ context.Context, in *ec2.StartInstancesInput, _ ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	m.Inputs.StartInstances = append(m.Inputs.StartInstances, in)
	if aws.ToBool(in.DryRun) {
		return output[ec2.StartInstancesOutput](m.Outputs.StartInstancesDryRun)
	}
	return output[ec2.StartInstancesOutput](m.Outputs.StartInstances)
}

func (m *EC2Client) StopInstances(_ context.Context, in *ec2.StopInstancesInput, _ ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	m.Inputs.StopInstances = append(m.Inputs.StopInstances, in)
	if aws.ToBool(in.DryRun) {
		return output[ec2.StopInstancesOutput](m.Outputs.StopInstancesDryRun)
	}
	return output[ec2.StopInstancesOutput](m.Outputs.StopInstances)
}

func (m *EC2Client) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	n := len(m.Inputs.DescribeInstances)
	m.Inputs.DescribeInstances = append(m.Inputs.DescribeInstances, in)
	return output[ec2.DescribeInstancesOutput](sequence(m.Outputs.DescribeInstances, n))
}

func (m *EC2Client) RunInstances(_ context.Context, in *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	m.Inputs.RunInstances = append(m.Inputs.RunInstances, in)
	return output[ec2.RunInstancesOutput](m.Outputs.RunInstances)
}

func (m *EC2Client) CreateKeyPair(_ context.Context, in *ec2.CreateKeyPairInput, _ ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error) {
	m.Inputs.CreateKeyPair = append(m.Inputs.CreateKeyPair, in)
	return output[ec2.CreateKeyPairOutput](m.Outputs.CreateKeyPair)
}

func (m *EC2Client) CreateTags(_ context.Context, in *ec2.CreateTagsInput, _ ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	m.Inputs.CreateTags = append(m.Inputs.CreateTags, in)
	return output[ec2.CreateTagsOutput](m.Outputs.CreateTags)
}

func (m *EC2Client) DeleteTags(_ context.Context, in *ec2.DeleteTagsInput, _ ...func(*ec2.Options)) (*ec2.DeleteTagsOutput, error) {
	m.Inputs.DeleteTags = append(m.Inputs.DeleteTags, in)
	return output[ec2.DeleteTagsOutput](m.Outputs.DeleteTags)
}

func (m *EC2Client) CreateVpc(_ context.Context, in *ec2.CreateVpcInput, _ ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error) {
	m.Inputs.CreateVpc = append(m.Inputs.CreateVpc, in)
	return output[ec2.CreateVpcOutput](m.Outputs.CreateVpc)
}

func (m *EC2Client) CreateSubnet(_ context.Context, in *ec2.CreateSubnetInput, _ ...func(*ec2.Options)) (*ec2.CreateSubnetOutput, error) {
	m.Inputs.CreateSubnet = append(m.Inputs.CreateSubnet, in)
	return output[ec2.CreateSubnetOutput](m.Outputs.CreateSubnet)
}

func (m *EC2Client) CreateInternetGateway(_ context.Context, in *ec2.CreateInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.CreateInternetGatewayOutput, error) {
	m.Inputs.CreateInternetGateway = append(m.Inputs.CreateInternetGateway, in)
	return output[ec2.CreateInternetGatewayOutput](m.Outputs.CreateInternetGateway)
}

func (m *EC2Client) AttachInternetGateway(_ context.Context, in *ec2.AttachInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.AttachInternetGatewayOutput, error) {
	m.Inputs.AttachInternetGateway = append(m.Inputs.AttachInternetGateway, in)
	return output[ec2.AttachInternetGatewayOutput](m.Outputs.AttachInternetGateway)
}

func (m *EC2Client) CreateRouteTable(_ context.Context, in *ec2.CreateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.CreateRouteTableOutput, error) {
	m.Inputs.CreateRouteTable = append(m.Inputs.CreateRouteTable, in)
	return output[ec2.CreateRouteTableOutput](m.Outputs.CreateRouteTable)
}

func (m *EC2Client) AssociateRouteTable(_ context.Context, in *ec2.AssociateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.AssociateRouteTableOutput, error) {
	m.Inputs.AssociateRouteTable = append(m.Inputs.AssociateRouteTable, in)
	return output[ec2.AssociateRouteTableOutput](m.Outputs.AssociateRouteTable)
}

func (m *EC2Client) CreateRoute(_ context.Context, in *ec2.CreateRouteInput, _ ...func(*ec2.Options)) (*ec2.CreateRouteOutput, error) {
	m.Inputs.CreateRoute = append(m.Inputs.CreateRoute, in)
	return output[ec2.CreateRouteOutput](m.Outputs.CreateRoute)
}

func (m *EC2Client) AllocateAddress(_ context.Context, in *ec2.AllocateAddressInput, _ ...func(*ec2.Options)) (*ec2.AllocateAddressOutput, error) {
	m.Inputs.AllocateAddress = append(m.Inputs.AllocateAddress, in)
	return output[ec2.AllocateAddressOutput](m.Outputs.AllocateAddress)
}

func (m *EC2Client) AssociateAddress(_ context.Context, in *ec2.AssociateAddressInput, _ ...func(*ec2.Options)) (*ec2.AssociateAddressOutput, error) {
	m.Inputs.AssociateAddress = append(m.Inputs.AssociateAddress, in)
	return output[ec2.AssociateAddressOutput](m.Outputs.AssociateAddress)
}

func (m *EC2Client) CreateVolume(_ context.Context, in *ec2.CreateVolumeInput, _ ...func(*ec2.Options)) (*ec2.CreateVolumeOutput, error) {
	m.Inputs.CreateVolume = append(m.Inputs.CreateVolume, in)
	return output[ec2.CreateVolumeOutput](m.Outputs.CreateVolume)
}

func (m *EC2Client) CreateSnapshot(_ context.Context, in *ec2.CreateSnapshotInput, _ ...func(*ec2.Options)) (*ec2.CreateSnapshotOutput, error) {
	m.Inputs.CreateSnapshot = append(m.Inputs.CreateSnapshot, in)
	return output[ec2.CreateSnapshotOutput](m.Outputs.CreateSnapshot)
}

func (m *EC2Client) DescribeSnapshots(_ context.Context, in *ec2.DescribeSnapshotsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSnapshotsOutput, error) {
	n := len(m.Inputs.DescribeSnapshots)
	m.Inputs.DescribeSnapshots = append(m.Inputs.DescribeSnapshots, in)
	return output[ec2.DescribeSnapshotsOutput](sequence(m.Outputs.DescribeSnapshots, n))
}

func (m *EC2Client) CreateSecurityGroup(_ context.Context, in *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	m.Inputs.CreateSecurityGroup = append(m.Inputs.CreateSecurityGroup, in)
	return output[ec2.CreateSecurityGroupOutput](m.Outputs.CreateSecurityGroup)
}

func (m *EC2Client) AuthorizeSecurityGroupIngress(_ context.Context, in *ec2.AuthorizeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	m.Inputs.AuthorizeSecurityGroupIngress = append(m.Inputs.AuthorizeSecurityGroupIngress, in)
	return output[ec2.AuthorizeSecurityGroupIngressOutput](m.Outputs.AuthorizeSecurityGroupIngress)
}

func MockCreateVpcOutput(vpcID string) *ec2.CreateVpcOutput {
	return &ec2.CreateVpcOutput{Vpc: &types.Vpc{VpcId: aws.String(vpcID)}}
}

func MockCreateSubnetOutput(subnetID, az string) *ec2.CreateSubnetOutput {
	return &ec2.CreateSubnetOutput{Subnet: &types.Subnet{SubnetId: aws.String(subnetID), AvailabilityZone: aws.String(az)}}
}

func MockCreateInternetGatewayOutput(gatewayID string) *ec2.CreateInternetGatewayOutput {
	return &ec2.CreateInternetGatewayOutput{InternetGateway: &types.InternetGateway{InternetGatewayId: aws.String(gatewayID)}}
}

func MockCreateRouteTableOutput(routeTableID string) *ec2.CreateRouteTableOutput {
	return &ec2.CreateRouteTableOutput{RouteTable: &types.RouteTable{RouteTableId: aws.String(routeTableID)}}
}

func MockRunInstancesOutput(instanceIDs ...string) *ec2.RunInstancesOutput {
	instances := make([]types.Instance, len(instanceIDs))
	for i, id := range instanceIDs {
		instances[i] = types.Instance{InstanceId: aws.String(id)}
	}
	return &ec2.RunInstancesOutput{Instances: instances}
}

func MockCreateKeyPairOutput(keyName, material string) *ec2.CreateKeyPairOutput {
	return &ec2.CreateKeyPairOutput{
		KeyName:        aws.String(keyName),
		KeyMaterial:    aws.String(material),
		KeyFingerprint: aws.String("1f:51:ae:28:bf:89:e9:d8:1f:25:5d:37:2d:7d:b8:ca:9f:f5:f1:6f"),
	}
}

func MockAllocateAddressOutput(publicIP, allocationID string) *ec2.AllocateAddressOutput {
	return &ec2.AllocateAddressOutput{PublicIp: aws.String(publicIP), AllocationId: aws.String(allocationID)}
}

func MockAssociateAddressOutput(associationID string) *ec2.AssociateAddressOutput {
	return &ec2.AssociateAddressOutput{AssociationId: aws.String(associationID)}
}

func MockCreateVolumeOutput(volumeID string) *ec2.CreateVolumeOutput {
	return &ec2.CreateVolumeOutput{VolumeId: aws.String(volumeID), State: types.VolumeStateCreating}
}

func MockCreateSnapshotOutput(snapshotID string) *ec2.CreateSnapshotOutput {
	return &ec2.CreateSnapshotOutput{SnapshotId: aws.String(snapshotID), State: types.SnapshotStatePending}
}

func MockDescribeSnapshotsOutput(snapshotID string, state types.SnapshotState) *ec2.DescribeSnapshotsOutput {
	return &ec2.DescribeSnapshotsOutput{
		Snapshots: []types.Snapshot{
			{
				SnapshotId:   aws.String(snapshotID),
				State:        state,
				Progress:     aws.String("50%"),
				StateMessage: aws.String("snapshot state " + string(state)),
			},
		},
	}
}

func MockCreateSecurityGroupOutput(groupID string) *ec2.CreateSecurityGroupOutput {
	return &ec2.CreateSecurityGroupOutput{GroupId: aws.String(groupID)}
}

type TestInstance struct {
	Id    string
	Tags  Tags
	VpcId string
	State types.InstanceStateName
}

func MockDescribeInstancesOutput(mockedInstances ...TestInstance) *ec2.DescribeInstancesOutput {
	instances := make([]types.Instance, 0, len(mockedInstances))
	for _, i := range mockedInstances {
		tags := make([]types.Tag, 0, len(i.Tags))
		for k, v := range i.Tags {
			tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
		}
		instances = append(instances, types.Instance{
			InstanceId: aws.String(i.Id),
			Tags:       tags,
			State:      &types.InstanceState{Name: i.State},
			VpcId:      aws.String(i.VpcId),
		})
	}
	return &ec2.DescribeInstancesOutput{Reservations: []types.Reservation{{Instances: instances}}}
}
