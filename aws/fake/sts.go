package fake

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type STSClient struct {
	Output *APIResponse
}

func (m *STSClient) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return output[sts.GetCallerIdentityOutput](m.Output)
}

func MockGetCallerIdentityOutput(account, arn string) *sts.GetCallerIdentityOutput {
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(account),
		Arn:     aws.String(arn),
		UserId:  aws.String("AIDAEXAMPLE"),
	}
}
