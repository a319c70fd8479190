package aws

import (
	"reflect"
	"testing"
	"time"

	"github.com/zalando-incubator/aws-network-provisioner/aws/fake"
)

const testClientToken = "7c5b3d4a-2f11-4e0b-9d7e-0f6c2f1f3b21"

func newTestAdapter(ec2Client *fake.EC2Client, elbv2Client *fake.ELBv2Client) *Adapter {
	if ec2Client == nil {
		ec2Client = &fake.EC2Client{}
	}
	if elbv2Client == nil {
		elbv2Client = &fake.ELBv2Client{}
	}
	a := NewAdapterWithClients(ec2Client, elbv2Client, &fake.STSClient{})
	a.clientToken = func() string { return testClientToken }
	return a.WithPollInterval(time.Millisecond).WithWaitTimeout(time.Second)
}

func assertResultAndError(t *testing.T, want, got interface{}, wantError bool, err error) {
	if wantError {
		if err == nil {
			t.Error("wanted an error but call seemed to have succeeded")
		}
	} else {
		if err != nil {
			t.Fatal("unexpected error", err)
		}

		if !reflect.DeepEqual(want, got) {
			t.Errorf("unexpected result. wanted %+v, got %+v", want, got)
		}
	}
}
