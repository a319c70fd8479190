package aws

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	log "github.com/sirupsen/logrus"
)

// ParseTag splits a key=value expression. The value may be empty, the key may not.
func ParseTag(expr string) (string, string, error) {
	key, value, _ := strings.Cut(expr, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTag, expr)
	}
	return key, value, nil
}

// ec2Tags converts a tag map into EC2 tags sorted by key. Empty values are
// sent as nil which, for DeleteTags, matches the key regardless of its value.
func ec2Tags(tags map[string]string) []ec2types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]ec2types.Tag, 0, len(keys))
	for _, k := range keys {
		tag := ec2types.Tag{Key: aws.String(k)}
		if v := tags[k]; v != "" {
			tag.Value = aws.String(v)
		}
		result = append(result, tag)
	}
	return result
}

func convertEc2Tags(tags []ec2types.Tag) map[string]string {
	result := make(map[string]string, len(tags))
	for _, t := range tags {
		result[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return result
}

// nameTagSpecification tags a resource at creation time with its Name and any extra tags.
func nameTagSpecification(resourceType ec2types.ResourceType, name string, extra map[string]string) []ec2types.TagSpecification {
	tags := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		tags[k] = v
	}
	if name != "" {
		tags[nameTag] = name
	}
	if len(tags) == 0 {
		return nil
	}
	return []ec2types.TagSpecification{
		{
			ResourceType: resourceType,
			Tags:         ec2Tags(tags),
		},
	}
}

// SetTags adds or overwrites tags on any EC2 resource.
func (a *Adapter) SetTags(ctx context.Context, resourceID string, tags map[string]string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := a.ec2.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{resourceID},
		Tags:      ec2Tags(tags),
	})
	if err != nil {
		return fmt.Errorf("unable to tag %s: %w", resourceID, err)
	}
	log.WithField("resource", resourceID).Infof("set %d tags", len(tags))
	return nil
}

// DeleteTags removes tags from any EC2 resource. A tag with an empty value is
// removed whatever its current value is; otherwise only an exact match is removed.
func (a *Adapter) DeleteTags(ctx context.Context, resourceID string, tags map[string]string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := a.ec2.DeleteTags(ctx, &ec2.DeleteTagsInput{
		Resources: []string{resourceID},
		Tags:      ec2Tags(tags),
	})
	if err != nil {
		return fmt.Errorf("unable to delete tags from %s: %w", resourceID, err)
	}
	log.WithField("resource", resourceID).Infof("deleted %d tags", len(tags))
	return nil
}
