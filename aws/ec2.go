package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	log "github.com/sirupsen/logrus"
)

const (
	dryRunOperationCode = "DryRunOperation"
	keyFileExtension    = ".pem"
	keyFileMode         = 0o600
)

// InstanceSpec describes a single instance to launch.
type InstanceSpec struct {
	Name             string
	ImageID          string
	SubnetID         string
	KeyName          string
	SecurityGroupIDs []string
	// InstanceType overrides the adapter's instance type when set.
	InstanceType string
	Tags         map[string]string
}

type instanceDetails struct {
	id    string
	vpcID string
	state ec2types.InstanceStateName
	tags  map[string]string
}

func (id *instanceDetails) name() string {
	if n, ok := id.tags[nameTag]; ok && n != "" {
		return n
	}
	return "unknown instance"
}

// checkDryRun maps the outcome of a dry run request. AWS always answers a
// dry run with an error; DryRunOperation is the one meaning "permitted".
func checkDryRun(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == dryRunOperationCode {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDryRunFailed, err)
}

// StartInstance starts a stopped instance after checking with a dry run that the call is permitted.
func (a *Adapter) StartInstance(ctx context.Context, instanceID string) error {
	start := func(dryRun bool) error {
		_, err := a.ec2.StartInstances(ctx, &ec2.StartInstancesInput{
			InstanceIds: []string{instanceID},
			DryRun:      aws.Bool(dryRun),
		})
		return err
	}

	if err := checkDryRun(start(true)); err != nil {
		return fmt.Errorf("failed dry run to start instance %s: %w", instanceID, err)
	}
	if err := start(false); err != nil {
		return fmt.Errorf("unable to start instance %s: %w", instanceID, err)
	}
	log.WithField("instance", instanceID).Info("started instance")
	return nil
}

// StopInstance stops a running instance after checking with a dry run that the call is permitted.
func (a *Adapter) StopInstance(ctx context.Context, instanceID string) error {
	stop := func(dryRun bool) error {
		_, err := a.ec2.StopInstances(ctx, &ec2.StopInstancesInput{
			InstanceIds: []string{instanceID},
			DryRun:      aws.Bool(dryRun),
		})
		return err
	}

	if err := checkDryRun(stop(true)); err != nil {
		return fmt.Errorf("failed dry run to stop instance %s: %w", instanceID, err)
	}
	if err := stop(false); err != nil {
		return fmt.Errorf("unable to stop instance %s: %w", instanceID, err)
	}
	log.WithField("instance", instanceID).Info("stopped instance")
	return nil
}

// KeyFilePath returns where the private key of the named key pair is stored.
func KeyFilePath(dir, keyName string) string {
	return filepath.Join(dir, keyName+keyFileExtension)
}

// CheckKeyFile verifies that the private key of the named key pair can be
// stored in dir: the directory must be writable and the file must not exist.
func CheckKeyFile(dir, keyName string) error {
	path := KeyFilePath(dir, keyName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrKeyFileExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unable to check key file %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+keyName+"-*")
	if err != nil {
		return fmt.Errorf("unable to write key files to %s: %w", filepath.Dir(path), err)
	}
	tmp.Close()
	return os.Remove(tmp.Name())
}

// CreateKeyPair creates a key pair and stores its private key in dir as
// <keyName>.pem. The file is created before the key pair so that an existing
// or unwritable file fails the call before AWS hands out a key it will never
// hand out again.
func (a *Adapter) CreateKeyPair(ctx context.Context, keyName, dir string) (string, error) {
	path := KeyFilePath(dir, keyName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, keyFileMode)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrKeyFileExists, path)
	}
	if err != nil {
		return "", fmt.Errorf("unable to create key file for %q: %w", keyName, err)
	}
	discard := func() {
		f.Close()
		os.Remove(path)
	}

	resp, err := a.ec2.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{
		KeyName:           aws.String(keyName),
		TagSpecifications: nameTagSpecification(ec2types.ResourceTypeKeyPair, keyName, nil),
	})
	if err != nil {
		discard()
		return "", fmt.Errorf("unable to create key pair %q: %w", keyName, err)
	}
	if aws.ToString(resp.KeyMaterial) == "" {
		discard()
		return "", fmt.Errorf("%w: key pair %q has no key material", ErrEmptyResponse, keyName)
	}

	if _, err := f.WriteString(aws.ToString(resp.KeyMaterial)); err != nil {
		f.Close()
		return "", fmt.Errorf("unable to write key file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("unable to write key file %s: %w", path, err)
	}

	log.WithFields(log.Fields{"keyPair": keyName, "fingerprint": aws.ToString(resp.KeyFingerprint)}).
		Infof("created key pair, private key stored in %s", path)
	return path, nil
}

// CreateInstance launches one instance with a public IP on its primary
// network interface and returns its ID. The Name tag is applied by the launch
// request itself.
func (a *Adapter) CreateInstance(ctx context.Context, spec *InstanceSpec) (string, error) {
	instanceType := a.instanceType
	if spec.InstanceType != "" {
		instanceType = ec2types.InstanceType(spec.InstanceType)
	}

	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(spec.ImageID),
		InstanceType: instanceType,
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		ClientToken:  aws.String(a.clientToken()),
		NetworkInterfaces: []ec2types.InstanceNetworkInterfaceSpecification{
			{
				DeviceIndex:              aws.Int32(0),
				AssociatePublicIpAddress: aws.Bool(true),
				SubnetId:                 aws.String(spec.SubnetID),
				Groups:                   spec.SecurityGroupIDs,
			},
		},
		TagSpecifications: nameTagSpecification(ec2types.ResourceTypeInstance, spec.Name, spec.Tags),
	}
	if spec.KeyName != "" {
		input.KeyName = aws.String(spec.KeyName)
	}

	resp, err := a.ec2.RunInstances(ctx, input)
	if err != nil {
		return "", fmt.Errorf("unable to launch instance %q from %s: %w", spec.Name, spec.ImageID, err)
	}
	if len(resp.Instances) < 1 {
		return "", fmt.Errorf("%w: no instance launched for %q", ErrEmptyResponse, spec.Name)
	}

	instanceID := aws.ToString(resp.Instances[0].InstanceId)
	log.WithFields(log.Fields{"instance": instanceID, "name": spec.Name}).
		Infof("started EC2 instance based on AMI %s", spec.ImageID)
	return instanceID, nil
}

func (a *Adapter) getInstanceDetails(ctx context.Context, instanceID string) (*instanceDetails, error) {
	resp, err := a.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Reservations) < 1 || len(resp.Reservations[0].Instances) < 1 {
		return nil, fmt.Errorf("unable to get details for instance %q", instanceID)
	}

	i := resp.Reservations[0].Instances[0]
	details := &instanceDetails{
		id:    aws.ToString(i.InstanceId),
		vpcID: aws.ToString(i.VpcId),
		tags:  convertEc2Tags(i.Tags),
	}
	if i.State != nil {
		details.state = i.State.Name
	}
	return details, nil
}

// WaitForInstanceRunning blocks until the instance is running. It fails
// early when the instance heads for termination.
func (a *Adapter) WaitForInstanceRunning(ctx context.Context, instanceID string) error {
	return a.waitFor(ctx, "instance "+instanceID, func(ctx context.Context) (bool, error) {
		details, err := a.getInstanceDetails(ctx, instanceID)
		if err != nil {
			return false, err
		}
		switch details.state {
		case ec2types.InstanceStateNameRunning:
			log.WithField("instance", instanceID).Infof("%s is running", details.name())
			return true, nil
		case ec2types.InstanceStateNameShuttingDown, ec2types.InstanceStateNameTerminated:
			return false, fmt.Errorf("instance %s is in an invalid state: %s", instanceID, details.state)
		}
		log.WithField("instance", instanceID).Debugf("instance state %s", details.state)
		return false, nil
	})
}
