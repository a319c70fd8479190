package aws

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

// SHA1 hash of the scope (the VPC ID), keep last 7 hex chars.
// Prepend up to maxLen - shortHashLen - 1 chars of the normalized name with a '-' as separator.
// Normalization replaces all non valid chars.
// Valid sets: a-z,A-Z,0-9,-
// Separator: -
// Squeeze and strip from beginning and/or end
type awsResourceNamer struct {
	maxLen int
}

const (
	shortHashLen = 7

	maxTargetGroupNameLen = 32

	nameSeparator = "-"
)

var (
	normalizationRegex = regexp.MustCompile("[^A-Za-z0-9-]+")
	squeezeDashesRegex = regexp.MustCompile("[-]{2,}")
)

// Normalize returns a name which replaces invalid characters from name with
// '-' and appends the last 7 chars of the SHA1 hash of scope. If the
// normalized name is too long it is truncated from the end so that, with the
// separator and the hash, it does not exceed maxLen chars.
func (n *awsResourceNamer) Normalize(name, scope string) string {
	hasher := sha1.New()
	hasher.Write([]byte(scope))
	hash := strings.ToLower(hex.EncodeToString(hasher.Sum(nil)))
	hash = hash[len(hash)-shortHashLen:]

	normalized := squeezeDashesRegex.ReplaceAllString(
		normalizationRegex.ReplaceAllString(name, nameSeparator), nameSeparator)
	normalized = strings.Trim(normalized, nameSeparator)
	maxNameLen := n.maxLen - shortHashLen - 1
	if len(normalized) > maxNameLen {
		normalized = strings.TrimRight(normalized[:maxNameLen], nameSeparator)
	}
	if normalized == "" {
		return hash
	}

	return normalized + nameSeparator + hash
}

var targetGroupNamer = &awsResourceNamer{maxLen: maxTargetGroupNameLen}

// TargetGroupName returns the name a target group gets in the given VPC.
func TargetGroupName(name, vpcID string) string {
	return targetGroupNamer.Normalize(name, vpcID)
}
