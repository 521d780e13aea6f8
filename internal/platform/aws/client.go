// Package aws builds AWS service clients from the default credential chain.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const sessionName = "mono-trigger"

// Options selects the region and, optionally, a role to assume for
// pipelines that live in another account.
type Options struct {
	Region  string
	RoleARN string
}

// NewCodePipelineClient loads the default AWS config (env, shared config,
// instance role) and returns a CodePipeline client.
func NewCodePipelineClient(ctx context.Context, opts Options) (*codepipeline.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	if opts.RoleARN != "" {
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), opts.RoleARN,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = sessionName
			})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return codepipeline.NewFromConfig(cfg), nil
}
