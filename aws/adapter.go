package aws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/google/uuid"
	"github.com/linki/instrumented_http"
	log "github.com/sirupsen/logrus"
)

// EC2API is the subset of the EC2 client used by the Adapter.
type EC2API interface {
	StartInstances(context.Context, *ec2.StartInstancesInput, ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(context.Context, *ec2.StopInstancesInput, ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	DescribeInstances(context.Context, *ec2.DescribeInstancesInput, ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	RunInstances(context.Context, *ec2.RunInstancesInput, ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	CreateKeyPair(context.Context, *ec2.CreateKeyPairInput, ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error)
	CreateTags(context.Context, *ec2.CreateTagsInput, ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
	DeleteTags(context.Context, *ec2.DeleteTagsInput, ...func(*ec2.Options)) (*ec2.DeleteTagsOutput, error)
	CreateVpc(context.Context, *ec2.CreateVpcInput, ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error)
	CreateSubnet(context.Context, *ec2.CreateSubnetInput, ...func(*ec2.Options)) (*ec2.CreateSubnetOutput, error)
	CreateInternetGateway(context.Context, *ec2.CreateInternetGatewayInput, ...func(*ec2.Options)) (*ec2.CreateInternetGatewayOutput, error)
	AttachInternetGateway(context.Context, *ec2.AttachInternetGatewayInput, ...func(*ec2.Options)) (*ec2.AttachInternetGatewayOutput, error)
	CreateRouteTable(context.Context, *ec2.CreateRouteTableInput, ...func(*ec2.Options)) (*ec2.CreateRouteTableOutput, error)
	AssociateRouteTable(context.Context, *ec2.AssociateRouteTableInput, ...func(*ec2.Options)) (*ec2.AssociateRouteTableOutput, error)
	CreateRoute(context.Context, *ec2.CreateRouteInput, ...func(*ec2.Options)) (*ec2.CreateRouteOutput, error)
	AllocateAddress(context.Context, *ec2.AllocateAddressInput, ...func(*ec2.Options)) (*ec2.AllocateAddressOutput, error)
	AssociateAddress(context.Context, *ec2.AssociateAddressInput, ...func(*ec2.Options)) (*ec2.AssociateAddressOutput, error)
	CreateVolume(context.Context, *ec2.CreateVolumeInput, ...func(*ec2.Options)) (*ec2.CreateVolumeOutput, error)
	CreateSnapshot(context.Context, *ec2.CreateSnapshotInput, ...func(*ec2.Options)) (*ec2.CreateSnapshotOutput, error)
	DescribeSnapshots(context.Context, *ec2.DescribeSnapshotsInput, ...func(*ec2.Options)) (*ec2.DescribeSnapshotsOutput, error)
	CreateSecurityGroup(context.Context, *ec2.CreateSecurityGroupInput, ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngress(context.Context, *ec2.AuthorizeSecurityGroupIngressInput, ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
}

// ELBV2API is the subset of the Elastic Load Balancing v2 client used by the Adapter.
type ELBV2API interface {
	CreateTargetGroup(context.Context, *elbv2.CreateTargetGroupInput, ...func(*elbv2.Options)) (*elbv2.CreateTargetGroupOutput, error)
	RegisterTargets(context.Context, *elbv2.RegisterTargetsInput, ...func(*elbv2.Options)) (*elbv2.RegisterTargetsOutput, error)
	DeregisterTargets(context.Context, *elbv2.DeregisterTargetsInput, ...func(*elbv2.Options)) (*elbv2.DeregisterTargetsOutput, error)
}

// STSAPI is the subset of the STS client used by the Adapter.
type STSAPI interface {
	GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// An Adapter provisions network, compute and load balancing resources on Amazon Web Services.
type Adapter struct {
	ec2   EC2API
	elbv2 ELBV2API
	sts   STSAPI

	region       string
	instanceType ec2types.InstanceType
	pollInterval time.Duration
	waitTimeout  time.Duration
	clientToken  func() string
}

const (
	DefaultRegion       = "us-east-1"
	DefaultInstanceType = ec2types.InstanceTypeT2Micro
	DefaultVpcCIDR      = "10.0.0.0/16"
	DefaultRouteCIDR    = "0.0.0.0/0"
	DefaultPollInterval = 5 * time.Second
	DefaultWaitTimeout  = 10 * time.Minute
	DefaultMaxRetries   = 3

	nameTag = "Name"
)

var (
	// ErrDryRunFailed is used to signal that the permission check of a dry run request was denied.
	ErrDryRunFailed = errors.New("dry run failed")
	// ErrSnapshotFailed is used to signal that a snapshot reached the error state.
	ErrSnapshotFailed = errors.New("snapshot failed")
	// ErrWaitTimeout is used to signal that a resource did not reach the desired state in time.
	ErrWaitTimeout = errors.New("timed out waiting for resource")
	// ErrEmptyResponse is used to signal that AWS answered without the expected resource.
	ErrEmptyResponse = errors.New("empty response from AWS")
	// ErrKeyFileExists is used to signal that a private key file would be overwritten.
	ErrKeyFileExists = errors.New("key file already exists")
	// ErrMissingCredentials is used to signal that a credentials file lacks the access or secret key.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidTag is used to signal a malformed key=value tag expression.
	ErrInvalidTag = errors.New("invalid tag")
)

var loadConfig = defaultLoadConfig

func defaultLoadConfig(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, optFns...)
}

// NewAdapter returns a new Adapter backed by SDK clients. When region is empty
// it is resolved from the EC2 instance metadata service, falling back to
// DefaultRegion. A non-empty credentialsFile replaces the default credential
// chain with the static keys found in that file.
func NewAdapter(ctx context.Context, region, credentialsFile string, maxRetries int) (*Adapter, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRetryMaxAttempts(maxRetries),
		config.WithHTTPClient(instrumented_http.NewClient(&http.Client{}, nil)),
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if credentialsFile != "" {
		provider, err := LoadCredentialsFile(credentialsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, config.WithCredentialsProvider(provider))
	}

	cfg, err := loadConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	if cfg.Region == "" {
		cfg.Region = discoverRegion(ctx, imds.NewFromConfig(cfg))
	}
	log.Debugf("using region %q", cfg.Region)

	return NewAdapterWithClients(ec2.NewFromConfig(cfg), elbv2.NewFromConfig(cfg), sts.NewFromConfig(cfg)).
		withRegion(cfg.Region), nil
}

// NewAdapterWithClients returns an Adapter using the given clients and the default settings.
func NewAdapterWithClients(ec2Client EC2API, elbv2Client ELBV2API, stsClient STSAPI) *Adapter {
	return &Adapter{
		ec2:          ec2Client,
		elbv2:        elbv2Client,
		sts:          stsClient,
		region:       DefaultRegion,
		instanceType: DefaultInstanceType,
		pollInterval: DefaultPollInterval,
		waitTimeout:  DefaultWaitTimeout,
		clientToken:  uuid.NewString,
	}
}

func (a *Adapter) withRegion(region string) *Adapter {
	a.region = region
	return a
}

// WithInstanceType returns the receiver adapter after changing the instance type used for new instances.
func (a *Adapter) WithInstanceType(instanceType string) *Adapter {
	if instanceType != "" {
		a.instanceType = ec2types.InstanceType(instanceType)
	}
	return a
}

// WithPollInterval returns the receiver adapter after changing the interval between state checks
// while waiting for snapshots and instances.
func (a *Adapter) WithPollInterval(interval time.Duration) *Adapter {
	if interval > 0 {
		a.pollInterval = interval
	}
	return a
}

// WithWaitTimeout returns the receiver adapter after changing the maximum time spent waiting for
// snapshots and instances to settle.
func (a *Adapter) WithWaitTimeout(timeout time.Duration) *Adapter {
	if timeout > 0 {
		a.waitTimeout = timeout
	}
	return a
}

// Region returns the AWS region the adapter talks to.
func (a *Adapter) Region() string {
	return a.region
}

// InstanceType returns the instance type used for new instances.
func (a *Adapter) InstanceType() string {
	return string(a.instanceType)
}
