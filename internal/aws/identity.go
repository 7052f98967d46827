package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/bedrocksmith/bsmith/pkg/types"
)

// STSAPI is the subset of the STS client used here
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// IdentityProvider reports the caller identity of the ambient credentials
type IdentityProvider struct {
	api STSAPI
}

// NewIdentityProvider creates an IdentityProvider from an STS API
func NewIdentityProvider(api STSAPI) *IdentityProvider {
	return &IdentityProvider{api: api}
}

// CallerIdentity returns the current AWS caller identity
func (p *IdentityProvider) CallerIdentity(ctx context.Context) (*types.CallerIdentity, error) {
	output, err := p.api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}

	return &types.CallerIdentity{
		Account: aws.ToString(output.Account),
		Arn:     aws.ToString(output.Arn),
		UserID:  aws.ToString(output.UserId),
	}, nil
}
