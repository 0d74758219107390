package api

import (
	"context"
	"net/http"
	"time"

	"github.com/huangsam/solaredge/internal/jsonvalue"
	"github.com/huangsam/solaredge/internal/tabular"
	"github.com/huangsam/solaredge/internal/timedates"
)

// decodeLogLimit caps how much of an undecodable body is logged.
const decodeLogLimit = 255

// Response is the result of one endpoint call.
type Response struct {
	URL        string
	Request    *http.Request
	Header     http.Header
	Cookies    []*http.Cookie
	StatusCode int
	Text       string
	Elapsed    time.Duration

	// Data is nil when the body was not valid JSON.
	Data *jsonvalue.Value
	// Table is nil unless tabular output is enabled and Data has content.
	Table *tabular.Table
}

// HasData reports whether the body decoded into a non-empty value.
func (r *Response) HasData() bool {
	return r != nil && r.Data != nil && hasContent(*r.Data)
}

func hasContent(v jsonvalue.Value) bool {
	switch v.Kind() {
	case jsonvalue.Null:
		return false
	case jsonvalue.Sequence:
		return len(v.Items()) > 0
	case jsonvalue.Mapping:
		return v.Map().Len() > 0
	default:
		return true
	}
}

// wrap decodes the body and runs the post-processing pipeline on it.
func (c *Client) wrap(ctx context.Context, resp *Response, siteID, prefix string) *Response {
	data, err := jsonvalue.Decode([]byte(resp.Text))
	if err != nil {
		c.logger.Debug("unable to JSON decode", "body", truncate(resp.Text, decodeLogLimit), "err", err)
		return resp
	}
	if !hasContent(data) {
		resp.Data = &data
		return resp
	}

	if c.datetime {
		data = timedates.ToDatetime(data)
	}
	if siteID != "" && timedates.HasNaive(data) {
		data = timedates.SetTimezone(data, c.siteLocation(ctx, siteID))
	}
	if c.tabular {
		resp.Table = tabular.FromValue(data, prefix)
	}
	resp.Data = &data
	return resp
}

// siteLocation resolves the site's zone. Failures leave instants naive.
func (c *Client) siteLocation(ctx context.Context, siteID string) *time.Location {
	name, err := c.SiteTimezone(ctx, siteID, c.timezoneCache)
	if err != nil {
		c.logger.Warn("site timezone lookup failed, keeping naive times", "site", siteID, "err", err)
		return nil
	}
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		c.logger.Warn("unknown site timezone", "site", siteID, "timezone", name, "err", err)
		return nil
	}
	return loc
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ValueResponse wraps a locally built value, such as a looked-up timezone,
// so it can be rendered like any endpoint response.
func ValueResponse(v jsonvalue.Value) *Response {
	text, _ := v.MarshalJSON()
	resp := &Response{StatusCode: http.StatusOK, Text: string(text), Data: &v}
	if hasContent(v) {
		resp.Table = tabular.FromValue(v, "")
	}
	return resp
}
