package fake

import (
	"errors"

	"github.com/aws/smithy-go"
)

type APIResponse struct {
	response interface{}
	err      error
}

type Tags map[string]string

var (
	ErrDummy = errors.New("fail")

	// ErrDryRunOperation is what AWS answers to a permitted dry run request.
	ErrDryRunOperation = &smithy.GenericAPIError{
		Code:    "DryRunOperation",
		Message: "Request would have succeeded, but DryRun flag is set.",
	}
	// ErrUnauthorizedOperation is what AWS answers to a denied request.
	ErrUnauthorizedOperation = &smithy.GenericAPIError{
		Code:    "UnauthorizedOperation",
		Message: "You are not authorized to perform this operation.",
	}
)

func R(r interface{}, e error) *APIResponse {
	return &APIResponse{response: r, err: e}
}

// output returns the canned response of r. A nil r answers with an empty
// output and no error.
func output[T any](r *APIResponse) (*T, error) {
	if r == nil {
		return new(T), nil
	}
	out, ok := r.response.(*T)
	if !ok {
		return nil, r.err
	}
	return out, r.err
}

// sequence returns the response for the n-th call, repeating the last one
// once the list is exhausted.
func sequence(responses []*APIResponse, n int) *APIResponse {
	if len(responses) == 0 {
		return nil
	}
	if n >= len(responses) {
		n = len(responses) - 1
	}
	return responses[n]
}
