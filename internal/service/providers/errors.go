package providers

import (
	"context"
	"errors"
	"net"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

// classify maps a transport-layer error into a typed ProviderError so nothing
// raw escapes the gateway boundary.
func classify(p models.ProviderID, err error) *models.ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewProviderError(p, models.ErrKindTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return models.NewProviderError(p, models.ErrKindTimeout, err)
	}
	return models.NewProviderError(p, models.ErrKindTransport, err)
}

func emptyResult(p models.ProviderID) *models.ProviderError {
	return models.NewProviderError(p, models.ErrKindEmptyResult, nil)
}
