// Package ssm fetches remote properties from AWS Systems Manager Parameter Store.
//
// All parameters below a path are read recursively. The path prefix is removed
// from each parameter name and the remaining '/' separators become '.':
// with path "/myapp/prod", parameter "/myapp/prod/db/url" becomes "db.url".
package ssm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/yacchi/kasane/format"
	"github.com/yacchi/kasane/remote"
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the client used for GetParametersByPath.
// If not provided, a client is created from the default AWS configuration on first use.
func WithClient(client ssm.GetParametersByPathAPIClient) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithAWSConfig sets the AWS configuration used to create the default client.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(ctx, config.WithRegion("us-west-2"))
//	f := ssm.New("/myapp/prod", ssm.WithAWSConfig(cfg))
func WithAWSConfig(cfg aws.Config) Option {
	return func(f *Fetcher) {
		f.awsConfig = &cfg
	}
}

// WithDecryption enables decryption for SecureString parameters.
// Default is false.
func WithDecryption(decrypt bool) Option {
	return func(f *Fetcher) {
		f.withDecrypt = decrypt
	}
}

// Fetcher reads every parameter under a path.
type Fetcher struct {
	path        string
	withDecrypt bool
	awsConfig   *aws.Config
	client      ssm.GetParametersByPathAPIClient

	clientInit    sync.Once
	clientInitErr error
}

// Ensure Fetcher implements remote.Fetcher.
var _ remote.Fetcher = (*Fetcher)(nil)

// New creates a fetcher for the parameters under path.
//
// Example:
//
//	f := ssm.New("/myapp/prod")
//	f := ssm.New("/myapp/prod", ssm.WithDecryption(true))
func New(path string, opts ...Option) *Fetcher {
	f := &Fetcher{path: normalizePath(path)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the parameter path.
func (f *Fetcher) Path() string {
	return f.path
}

// ensureClient returns the client, creating a default one on first use if
// none was provided. It is safe for concurrent use.
func (f *Fetcher) ensureClient(ctx context.Context) (ssm.GetParametersByPathAPIClient, error) {
	f.clientInit.Do(func() {
		if f.client != nil {
			return
		}
		var cfg aws.Config
		if f.awsConfig != nil {
			cfg = *f.awsConfig
		} else {
			loaded, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				f.clientInitErr = fmt.Errorf("failed to load AWS config: %w", err)
				return
			}
			cfg = loaded
		}
		f.client = ssm.NewFromConfig(cfg)
	})
	return f.client, f.clientInitErr
}

// Fetch implements remote.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context) (format.Bag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := f.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(f.path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(f.withDecrypt),
	})

	bag := make(format.Bag)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get parameters by path %q: %w", f.path, err)
		}
		for _, p := range page.Parameters {
			key := f.KeyOf(aws.ToString(p.Name))
			if key == "" || p.Value == nil {
				continue
			}
			bag[key] = aws.ToString(p.Value)
		}
	}
	return bag, nil
}

// KeyOf converts a parameter name below the fetcher's path to a property key.
func (f *Fetcher) KeyOf(name string) string {
	rel := strings.TrimPrefix(name, f.path)
	rel = strings.Trim(rel, "/")
	return strings.ReplaceAll(rel, "/", ".")
}

// normalizePath makes path absolute and strips a trailing '/'.
func normalizePath(path string) string {
	path = strings.TrimRight(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
