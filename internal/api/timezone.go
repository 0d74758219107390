package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/internal/iocache"
	"github.com/huangsam/solaredge/internal/jsonvalue"
	"github.com/huangsam/solaredge/internal/memo"
)

// SiteTimezone returns the IANA zone of a site, e.g. "Europe/Rome".
//
// Multi-site IDs have no single zone and yield "". With useCache the value
// is read from and written to the persistent cache under "<siteId>.timezone".
// Results are memoized per client.
func (c *Client) SiteTimezone(ctx context.Context, siteID string, useCache bool) (string, error) {
	siteID = strings.TrimSpace(siteID)
	key := memo.Key(EndpointSiteTimezone, siteID, useCache)
	return c.timezones.Do(key, func() (string, error) {
		if strings.Contains(siteID, ",") {
			return "", nil
		}
		if !useCache || c.stores == nil {
			c.logger.Debug("site timezone without cache", "site", siteID)
			return c.fetchTimezone(ctx, siteID)
		}
		return c.cachedTimezone(ctx, siteID)
	})
}

func (c *Client) cachedTimezone(ctx context.Context, siteID string) (string, error) {
	key := iocache.SiteCacheKey(siteID, "timezone")
	var tz string
	err := iocache.WithCacheStore(c.stores, func(store contract.CacheStore) error {
		value, ok, err := iocache.GetCachedValue(store, key)
		if err != nil {
			return err
		}
		if ok {
			c.logger.Debug("site timezone from cache", "key", key)
			tz = value
			return nil
		}
		c.logger.Debug("site timezone not cached", "key", key)
		if tz, err = c.fetchTimezone(ctx, siteID); err != nil {
			return err
		}
		return iocache.SetCachedValue(store, key, tz, c.now())
	})
	return tz, err
}

// fetchTimezone reads details.location.timeZone from the site details.
func (c *Client) fetchTimezone(ctx context.Context, siteID string) (string, error) {
	resp, err := c.fetch(ctx, call{
		endpoint: EndpointSiteTimezone,
		path:     []string{"site", strings.TrimSpace(siteID), "details"},
		siteID:   siteID,
	})
	if err != nil {
		return "", err
	}
	data, err := jsonvalue.Decode([]byte(resp.Text))
	if err != nil {
		return "", fmt.Errorf("site %s details: %w", siteID, err)
	}
	tz, ok := data.Lookup("details", "location", "timeZone")
	if !ok || tz.Kind() != jsonvalue.String || tz.Str() == "" {
		return "", fmt.Errorf("site %s details carry no location.timeZone (status %d)", siteID, resp.StatusCode)
	}
	return tz.Str(), nil
}
