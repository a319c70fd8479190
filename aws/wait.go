package aws

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/util/wait"
)

// waitFor polls condition every pollInterval until it reports done, returns
// an error, ctx is cancelled or waitTimeout elapses.
func (a *Adapter) waitFor(ctx context.Context, what string, condition wait.ConditionWithContextFunc) error {
	err := wait.PollUntilContextTimeout(ctx, a.pollInterval, a.waitTimeout, true, condition)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("stopped waiting for %s: %w", what, ctx.Err())
	}
	if err != nil && wait.Interrupted(err) {
		return fmt.Errorf("%w: %s: %w", ErrWaitTimeout, what, err)
	}
	return err
}
