package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/logging"
	"github.com/Amund211/blacksmith/internal/reporting"
)

// CustomerTimeout is how long the remote customer provider gets before the static customer is used
const CustomerTimeout = 1500 * time.Millisecond

type localCustomerProvider interface {
	GenerateCustomer(reputation int) domain.CustomerRequest
}

type remoteCustomerProvider interface {
	DescribeCustomer(ctx context.Context, draft domain.CustomerRequest, reputation int, materials []domain.Material) (domain.CustomerRequest, error)
}

type remoteCustomerResult struct {
	request domain.CustomerRequest
	err     error
}

// BuildRequestCustomer races the remote provider against a timeout
//
// The local provider always produces the customer draft. If remote is nil the
// draft is used as is, otherwise the remote provider may replace its name and
// dialogue if it answers in time.
func BuildRequestCustomer(
	local localCustomerProvider,
	remote remoteCustomerProvider,
	timeout time.Duration,
	afterFunc func(time.Duration) <-chan time.Time,
) RequestCustomer {
	return func(ctx context.Context, reputation int, materials []domain.Material) domain.CustomerRequest {
		draft := local.GenerateCustomer(reputation)
		if remote == nil {
			recordCustomerSource(ctx, "local")
			return draft
		}

		remoteCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		results := make(chan remoteCustomerResult, 1)
		go func() {
			request, err := remote.DescribeCustomer(remoteCtx, draft, reputation, materials)
			results <- remoteCustomerResult{request: request, err: err}
		}()

		select {
		case result := <-results:
			if result.err != nil {
				// NOTE: remoteCustomerProvider implementations handle their own error reporting
				recordCustomerSource(ctx, "fallback_error")
				return draft
			}
			recordCustomerSource(ctx, "remote")
			return mergeCustomerRequest(draft, result.request)
		case <-afterFunc(timeout):
			recordCustomerSource(ctx, "fallback_timeout")
			reporting.Report(ctx, fmt.Errorf("%w: customer provider timed out", domain.ErrTemporarilyUnavailable), map[string]string{
				"timeout": timeout.String(),
			})
			return draft
		case <-ctx.Done():
			logging.FromContext(ctx).InfoContext(ctx, "Context done while waiting for customer", "ctx_error", ctx.Err())
			return draft
		}
	}
}

// mergeCustomerRequest takes the flavor text from remote, the rest of the order stays as drafted
func mergeCustomerRequest(draft, remote domain.CustomerRequest) domain.CustomerRequest {
	merged := draft
	if remote.Name != "" {
		merged.Name = remote.Name
	}
	if remote.Dialogue != "" {
		merged.Dialogue = remote.Dialogue
	}
	return merged
}
