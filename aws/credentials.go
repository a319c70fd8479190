package aws

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

const (
	accessKeyProperty    = "accessKey"
	secretKeyProperty    = "secretKey"
	sessionTokenProperty = "sessionToken"
)

// LoadCredentialsFile reads static credentials from a properties file with
// accessKey and secretKey entries and an optional sessionToken.
func LoadCredentialsFile(path string) (aws.CredentialsProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open credentials file: %w", err)
	}
	defer f.Close()

	props, err := parseProperties(bufio.NewScanner(f))
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file %q: %w", path, err)
	}

	accessKey, secretKey := props[accessKeyProperty], props[secretKeyProperty]
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("%w: %q must contain %s and %s", ErrMissingCredentials, path, accessKeyProperty, secretKeyProperty)
	}

	return credentials.NewStaticCredentialsProvider(accessKey, secretKey, props[sessionTokenProperty]), nil
}

// parseProperties understands the subset of the properties format used for
// credential files: one key per line, '=' or ':' separators, '#' and '!'
// comments.
func parseProperties(s *bufio.Scanner) (map[string]string, error) {
	props := make(map[string]string)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		i := strings.IndexAny(line, "=:")
		if i < 0 {
			props[line] = ""
			continue
		}
		props[strings.TrimSpace(line[:i])] = strings.TrimSpace(line[i+1:])
	}
	return props, s.Err()
}
