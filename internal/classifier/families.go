// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classifier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/patrickmn/go-cache"

	"github.com/pdiddy/sporeid/internal/codec"
	"github.com/pdiddy/sporeid/internal/httputil"
	"github.com/pdiddy/sporeid/pkg/types"
)

const familiesKey = "families"

// Families returns the families the server's model can predict, from
// GET /familias. Results are cached for the configured FamiliesTTL.
// Unlike Classify this is an ordinary lookup and reports errors.
func (c *Client) Families(ctx context.Context) ([]string, error) {
	if v, ok := c.families.Get(familiesKey); ok {
		return clone(v.([]string)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+FamiliesPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setCommonHeaders(req)

	resp, err := httputil.Do(ctx, c.predict, req, c.cfg.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", types.ErrServer, resp.StatusCode)
	}

	families, err := codec.DecodeFamilies(resp.Body)
	if err != nil {
		return nil, err
	}
	c.families.Set(familiesKey, families, cache.DefaultExpiration)
	c.logger.Debug("family catalog refreshed", "count", len(families))
	return clone(families), nil
}

// InvalidateFamilies drops the cached catalog.
func (c *Client) InvalidateFamilies() {
	c.families.Delete(familiesKey)
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
