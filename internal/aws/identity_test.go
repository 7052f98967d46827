package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/require"
)

type fakeSTSAPI struct{}

func (fakeSTSAPI) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:user/dev"),
		UserId:  aws.String("AIDAEXAMPLE"),
	}, nil
}

func TestCallerIdentity(t *testing.T) {
	id, err := NewIdentityProvider(fakeSTSAPI{}).CallerIdentity(context.Background())
	require.NoError(t, err)
	require.Equal(t, "123456789012", id.Account)
	require.Equal(t, "AIDAEXAMPLE", id.UserID)
	require.Equal(t, "arn:aws:iam::123456789012:user/dev", id.Arn)
}
