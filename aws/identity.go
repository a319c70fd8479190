package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	log "github.com/sirupsen/logrus"
)

const regionDiscoveryTimeout = 2 * time.Second

type regionGetter interface {
	GetRegion(context.Context, *imds.GetRegionInput, ...func(*imds.Options)) (*imds.GetRegionOutput, error)
}

// CallerIdentity describes the principal whose credentials the Adapter uses.
type CallerIdentity struct {
	Account string
	ARN     string
	UserID  string
}

func (ci *CallerIdentity) String() string {
	return fmt.Sprintf("%s (account %s)", ci.ARN, ci.Account)
}

func discoverRegion(ctx context.Context, svc regionGetter) string {
	ctx, cancel := context.WithTimeout(ctx, regionDiscoveryTimeout)
	defer cancel()

	resp, err := svc.GetRegion(ctx, &imds.GetRegionInput{})
	if err != nil || resp.Region == "" {
		log.Debugf("not running on EC2 or metadata unavailable (%v), using region %q", err, DefaultRegion)
		return DefaultRegion
	}
	return resp.Region
}

// CallerIdentity returns the account and ARN of the configured credentials.
func (a *Adapter) CallerIdentity(ctx context.Context) (*CallerIdentity, error) {
	resp, err := a.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("unable to get caller identity: %w", err)
	}
	return &CallerIdentity{
		Account: aws.ToString(resp.Account),
		ARN:     aws.ToString(resp.Arn),
		UserID:  aws.ToString(resp.UserId),
	}, nil
}
