package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/plateful/plateful/internal/model"
)

// GetSubscription fetches the caller's subscription status. Consumed
// opportunistically to enrich a pro profile; failures are non-fatal for the
// session bootstrap.
func (c *Client) GetSubscription(ctx context.Context) (*model.Subscription, error) {
	var out model.Subscription
	if err := c.doJSON(ctx, http.MethodGet, "subscription/status", nil, &out); err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &out, nil
}
