package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultVolumeSize = 8
	DefaultVolumeType = ec2types.VolumeTypeGp3
)

// VolumeSpec describes an EBS volume to create.
type VolumeSpec struct {
	Name             string
	AvailabilityZone string
	// SizeGiB defaults to DefaultVolumeSize.
	SizeGiB int32
	// VolumeType defaults to DefaultVolumeType.
	VolumeType string
	Tags       map[string]string
}

// CreateVolume creates an EBS volume and returns its ID.
func (a *Adapter) CreateVolume(ctx context.Context, spec *VolumeSpec) (string, error) {
	size := spec.SizeGiB
	if size <= 0 {
		size = DefaultVolumeSize
	}
	volumeType := DefaultVolumeType
	if spec.VolumeType != "" {
		volumeType = ec2types.VolumeType(spec.VolumeType)
	}

	resp, err := a.ec2.CreateVolume(ctx, &ec2.CreateVolumeInput{
		AvailabilityZone:  aws.String(spec.AvailabilityZone),
		Size:              aws.Int32(size),
		VolumeType:        volumeType,
		ClientToken:       aws.String(a.clientToken()),
		TagSpecifications: nameTagSpecification(ec2types.ResourceTypeVolume, spec.Name, spec.Tags),
	})
	if err != nil {
		return "", fmt.Errorf("unable to create volume %q: %w", spec.Name, err)
	}

	volumeID := aws.ToString(resp.VolumeId)
	log.WithFields(log.Fields{"volume": volumeID, "name": spec.Name, "size": size, "type": volumeType}).
		Info("created volume")
	return volumeID, nil
}

// CreateSnapshot starts a snapshot of the volume and returns its ID without waiting for it to complete.
func (a *Adapter) CreateSnapshot(ctx context.Context, name, volumeID, description string, tags map[string]string) (string, error) {
	input := &ec2.CreateSnapshotInput{
		VolumeId:          aws.String(volumeID),
		TagSpecifications: nameTagSpecification(ec2types.ResourceTypeSnapshot, name, tags),
	}
	if description != "" {
		input.Description = aws.String(description)
	}

	resp, err := a.ec2.CreateSnapshot(ctx, input)
	if err != nil {
		return "", fmt.Errorf("unable to snapshot volume %s: %w", volumeID, err)
	}

	snapshotID := aws.ToString(resp.SnapshotId)
	log.WithFields(log.Fields{"snapshot": snapshotID, "volume": volumeID, "state": resp.State}).Info("started snapshot")
	return snapshotID, nil
}

// WaitForSnapshot polls the snapshot until it is completed. A snapshot in the
// error state fails with ErrSnapshotFailed.
func (a *Adapter) WaitForSnapshot(ctx context.Context, snapshotID string) error {
	return a.waitFor(ctx, "snapshot "+snapshotID, func(ctx context.Context) (bool, error) {
		resp, err := a.ec2.DescribeSnapshots(ctx, &ec2.DescribeSnapshotsInput{
			SnapshotIds: []string{snapshotID},
		})
		if err != nil {
			return false, fmt.Errorf("unable to describe snapshot %s: %w", snapshotID, err)
		}
		if len(resp.Snapshots) < 1 {
			return false, fmt.Errorf("%w: snapshot %s", ErrEmptyResponse, snapshotID)
		}

		snapshot := resp.Snapshots[0]
		switch snapshot.State {
		case ec2types.SnapshotStateCompleted:
			log.WithField("snapshot", snapshotID).Info("snapshot completed")
			return true, nil
		case ec2types.SnapshotStateError:
			return false, fmt.Errorf("%w: %s: %s", ErrSnapshotFailed, snapshotID, aws.ToString(snapshot.StateMessage))
		}
		log.WithField("snapshot", snapshotID).Debugf("snapshot %s, progress %s", snapshot.State, aws.ToString(snapshot.Progress))
		return false, nil
	})
}
