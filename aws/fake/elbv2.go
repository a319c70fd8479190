package fake

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
)

type ELBv2Outputs struct {
	CreateTargetGroup *APIResponse
	RegisterTargets   *APIResponse
	DeregisterTargets *APIResponse
}

type ELBv2Client struct {
	Outputs   ELBv2Outputs
	Ctginputs []*elbv2.CreateTargetGroupInput
	Rtinputs  []*elbv2.RegisterTargetsInput
	Dtinputs  []*elbv2.DeregisterTargetsInput
}

func (m *ELBv2Client) CreateTargetGroup(_ context.Context, in *elbv2.CreateTargetGroupInput, _ ...func(*elbv2.Options)) (*elbv2.CreateTargetGroupOutput, error) {
	m.Ctginputs = append(m.Ctginputs, in)
	return output[elbv2.CreateTargetGroupOutput](m.Outputs.CreateTargetGroup)
}

func (m *ELBv2Client) RegisterTargets(_ context.Context, in *elbv2.RegisterTargetsInput, _ ...func(*elbv2.Options)) (*elbv2.RegisterTargetsOutput, error) {
	m.Rtinputs = append(m.Rtinputs, in)
	return output[elbv2.RegisterTargetsOutput](m.Outputs.RegisterTargets)
}

func (m *ELBv2Client) DeregisterTargets(_ context.Context, in *elbv2.DeregisterTargetsInput, _ ...func(*elbv2.Options)) (*elbv2.DeregisterTargetsOutput, error) {
	m.Dtinputs = append(m.Dtinputs, in)
	return output[elbv2.DeregisterTargetsOutput](m.Outputs.DeregisterTargets)
}

func MockCreateTargetGroupOutput(arn string) *elbv2.CreateTargetGroupOutput {
	return &elbv2.CreateTargetGroupOutput{
		TargetGroups: []types.TargetGroup{{TargetGroupArn: aws.String(arn)}},
	}
}

func MockRTOutput() *elbv2.RegisterTargetsOutput {
	return &elbv2.RegisterTargetsOutput{}
}

func MockDeregisterTargetsOutput() *elbv2.DeregisterTargetsOutput {
	return &elbv2.DeregisterTargetsOutput{}
}
