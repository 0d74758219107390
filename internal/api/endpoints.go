package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/huangsam/solaredge/internal/memo"
)

// Endpoint names used for memo keys, request history and CLI commands.
const (
	EndpointAccounts                  = "accounts"
	EndpointSites                     = "sites"
	EndpointSiteDetails               = "site-details"
	EndpointSiteTimezone              = "site-timezone"
	EndpointSiteDataPeriod            = "site-data-period"
	EndpointSiteEnergy                = "site-energy"
	EndpointSiteTimeFrameEnergy       = "site-time-frame-energy"
	EndpointSiteOverview              = "site-overview"
	EndpointSitePower                 = "site-power"
	EndpointSitePowerDetails          = "site-power-details"
	EndpointSiteEnergyDetails         = "site-energy-details"
	EndpointSiteCurrentPowerFlow      = "site-current-power-flow"
	EndpointSiteStorageData           = "site-storage-data"
	EndpointSiteEnvironmentalBenefits = "site-environmental-benefits"
	EndpointSiteInventory             = "site-inventory"
	EndpointSiteEquipmentData         = "site-equipment-data"
	EndpointSiteEquipmentChangeLog    = "site-equipment-change-log"
	EndpointSiteMeters                = "site-meters"
	EndpointSiteSensors               = "site-sensors"
	EndpointSiteEquipmentSensors      = "site-equipment-sensors"
	EndpointVersionCurrent            = "version-current"
	EndpointVersionSupported          = "version-supported"
)

// Column prefixes stripped from table columns, keyed by endpoint. Each is the
// root key of the endpoint's single-site response.
var columnPrefixes = map[string]string{
	EndpointAccounts:                  "accounts.",
	EndpointSites:                     "sites.",
	EndpointSiteDetails:               "details.",
	EndpointSiteDataPeriod:            "dataPeriod.",
	EndpointSiteEnergy:                "energy.",
	EndpointSiteTimeFrameEnergy:       "timeFrameEnergy.",
	EndpointSiteOverview:              "overview.",
	EndpointSitePower:                 "power.",
	EndpointSitePowerDetails:          "powerDetails.",
	EndpointSiteEnergyDetails:         "energyDetails.",
	EndpointSiteCurrentPowerFlow:      "siteCurrentPowerFlow.",
	EndpointSiteStorageData:           "storageData.",
	EndpointSiteEnvironmentalBenefits: "envBenefits.",
	EndpointSiteInventory:             "Inventory.",
	EndpointSiteEquipmentData:         "data.",
	EndpointSiteEquipmentChangeLog:    "ChangeLog.",
	EndpointSiteMeters:                "meterEnergyDetails.",
	EndpointSiteSensors:               "SiteSensors.",
	EndpointSiteEquipmentSensors:      "SiteSensors.",
	EndpointVersionCurrent:            "version.",
	EndpointVersionSupported:          "supported.",
}

// Defaults applied by the list endpoints.
const (
	DefaultListSize   = 100
	DefaultSortOrder  = "ASC"
	DefaultSiteStatus = "Active,Pending"
	DefaultTimeUnit   = "DAY"
)

// ListOptions filters and pages the account and site lists.
type ListOptions struct {
	Size         int
	StartIndex   int
	SearchText   string
	SortProperty string
	SortOrder    string
	// Status only applies to Sites.
	Status string
}

// DefaultListOptions returns the defaults used when no options are given.
func DefaultListOptions() ListOptions {
	return ListOptions{Size: DefaultListSize, SortOrder: DefaultSortOrder, Status: DefaultSiteStatus}
}

func (o ListOptions) withDefaults() ListOptions {
	if o.Size <= 0 {
		o.Size = DefaultListSize
	}
	if o.SortOrder == "" {
		o.SortOrder = DefaultSortOrder
	}
	if o.Status == "" {
		o.Status = DefaultSiteStatus
	}
	return o
}

// JoinSiteIDs returns the path for one or many sites: "site/<id>" for a
// single ID, "sites/<id>,<id>" for several or for an ID holding a comma.
// Spaces are removed.
func JoinSiteIDs(ids ...string) string {
	joined := strings.ReplaceAll(strings.Join(ids, ","), " ", "")
	if len(ids) > 1 || strings.Contains(joined, ",") {
		return "sites/" + joined
	}
	return "site/" + joined
}

// params stringifies values into a query. Empty optional values are skipped.
type params struct {
	url.Values
}

func newParams() params { return params{url.Values{}} }

func (p params) set(key string, value any) params {
	var s string
	switch v := value.(type) {
	case []string:
		trimmed := make([]string, len(v))
		for i, item := range v {
			trimmed[i] = strings.TrimSpace(item)
		}
		s = strings.Join(trimmed, ",")
	default:
		s = fmt.Sprint(v)
	}
	p.Values.Set(key, strings.TrimSpace(s))
	return p
}

func (p params) optional(key string, value any) params {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return p
		}
	case []string:
		if len(v) == 0 {
			return p
		}
	}
	return p.set(key, value)
}

// get fetches and wraps a response for endpoint.
func (c *Client) get(ctx context.Context, endpoint, siteID string, q params, path ...string) (*Response, error) {
	resp, err := c.fetch(ctx, call{endpoint: endpoint, path: path, query: q.Values, siteID: siteID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return c.wrap(ctx, resp, siteID, columnPrefixes[endpoint]), nil
}

// memoized wraps get with the client memo. The key covers every argument,
// defaults included.
func (c *Client) memoized(key string, fetch func() (*Response, error)) (*Response, error) {
	return c.responses.Do(key, fetch)
}

// Accounts lists the sub-accounts visible to the API key. Memoized.
func (c *Client) Accounts(ctx context.Context, opts ListOptions) (*Response, error) {
	opts = opts.withDefaults()
	key := memo.Key(EndpointAccounts, opts.Size, opts.StartIndex, opts.SearchText, opts.SortProperty, opts.SortOrder)
	return c.memoized(key, func() (*Response, error) {
		q := newParams().
			set("size", opts.Size).
			set("startIndex", opts.StartIndex).
			set("sortOrder", opts.SortOrder).
			optional("searchText", opts.SearchText).
			optional("sortProperty", opts.SortProperty)
		return c.get(ctx, EndpointAccounts, "", q, "accounts", "list")
	})
}

// Sites lists the sites visible to the API key. Memoized.
func (c *Client) Sites(ctx context.Context, opts ListOptions) (*Response, error) {
	opts = opts.withDefaults()
	key := memo.Key(EndpointSites, opts.Size, opts.StartIndex, opts.SearchText, opts.SortProperty, opts.SortOrder, opts.Status)
	return c.memoized(key, func() (*Response, error) {
		q := newParams().
			set("size", opts.Size).
			set("startIndex", opts.StartIndex).
			set("sortOrder", opts.SortOrder).
			set("status", opts.Status).
			optional("searchText", opts.SearchText).
			optional("sortProperty", opts.SortProperty)
		return c.get(ctx, EndpointSites, "", q, "sites", "list")
	})
}

// SiteDetails returns name, location, status and more for a site. Memoized.
func (c *Client) SiteDetails(ctx context.Context, siteID string) (*Response, error) {
	siteID = strings.TrimSpace(siteID)
	return c.memoized(memo.Key(EndpointSiteDetails, siteID), func() (*Response, error) {
		return c.get(ctx, EndpointSiteDetails, siteID, newParams(), "site", siteID, "details")
	})
}

// SiteDataPeriod returns the production start and end dates. Memoized.
func (c *Client) SiteDataPeriod(ctx context.Context, siteID string) (*Response, error) {
	path := JoinSiteIDs(siteID)
	return c.memoized(memo.Key(EndpointSiteDataPeriod, path), func() (*Response, error) {
		return c.get(ctx, EndpointSiteDataPeriod, siteID, newParams(), path, "dataPeriod")
	})
}

// SiteEnergy returns energy measurements between two dates (YYYY-MM-DD).
func (c *Client) SiteEnergy(ctx context.Context, siteID, startDate, endDate, timeUnit string) (*Response, error) {
	if timeUnit == "" {
		timeUnit = DefaultTimeUnit
	}
	q := newParams().set("startDate", startDate).set("endDate", endDate).set("timeUnit", timeUnit)
	return c.get(ctx, EndpointSiteEnergy, siteID, q, JoinSiteIDs(siteID), "energy")
}

// SiteTimeFrameEnergy returns the total energy produced between two dates.
func (c *Client) SiteTimeFrameEnergy(ctx context.Context, siteID, startDate, endDate string) (*Response, error) {
	q := newParams().set("startDate", startDate).set("endDate", endDate)
	return c.get(ctx, EndpointSiteTimeFrameEnergy, siteID, q, JoinSiteIDs(siteID), "timeFrameEnergy")
}

// SiteOverview returns the current overview of one or more sites.
func (c *Client) SiteOverview(ctx context.Context, siteID string) (*Response, error) {
	return c.get(ctx, EndpointSiteOverview, siteID, newParams(), JoinSiteIDs(siteID), "overview")
}

// SitePower returns power measurements in 15 minute resolution.
func (c *Client) SitePower(ctx context.Context, siteID, startTime, endTime string) (*Response, error) {
	q := newParams().set("startTime", startTime).set("endTime", endTime)
	return c.get(ctx, EndpointSitePower, siteID, q, JoinSiteIDs(siteID), "power")
}

// SitePowerDetails returns power measurements per meter.
func (c *Client) SitePowerDetails(ctx context.Context, siteID, startTime, endTime string, meters []string) (*Response, error) {
	q := newParams().set("startTime", startTime).set("endTime", endTime).optional("meters", meters)
	return c.get(ctx, EndpointSitePowerDetails, siteID, q, "site", strings.TrimSpace(siteID), "powerDetails")
}

// SiteEnergyDetails returns energy measurements per meter.
func (c *Client) SiteEnergyDetails(ctx context.Context, siteID, startTime, endTime string, meters []string, timeUnit string) (*Response, error) {
	if timeUnit == "" {
		timeUnit = DefaultTimeUnit
	}
	q := newParams().
		set("startTime", startTime).
		set("endTime", endTime).
		set("timeUnit", timeUnit).
		optional("meters", meters)
	return c.get(ctx, EndpointSiteEnergyDetails, siteID, q, "site", strings.TrimSpace(siteID), "energyDetails")
}

// SiteCurrentPowerFlow returns the power flow between PV, storage, loads and grid.
func (c *Client) SiteCurrentPowerFlow(ctx context.Context, siteID string) (*Response, error) {
	return c.get(ctx, EndpointSiteCurrentPowerFlow, siteID, newParams(), "site", strings.TrimSpace(siteID), "currentPowerFlow")
}

// SiteStorageData returns battery state of energy, power and lifetime energy.
func (c *Client) SiteStorageData(ctx context.Context, siteID, startTime, endTime string, serials []string) (*Response, error) {
	q := newParams().set("startTime", startTime).set("endTime", endTime).optional("serials", serials)
	return c.get(ctx, EndpointSiteStorageData, siteID, q, "site", strings.TrimSpace(siteID), "storageData")
}

// SiteEnvironmentalBenefits returns CO2 savings and equivalents.
// systemUnits is "Metrics", "Imperial" or empty for the account default.
func (c *Client) SiteEnvironmentalBenefits(ctx context.Context, siteID, systemUnits string) (*Response, error) {
	q := newParams().optional("systemUnits", systemUnits)
	return c.get(ctx, EndpointSiteEnvironmentalBenefits, siteID, q, "site", strings.TrimSpace(siteID), "envBenefits")
}

// SiteInventory lists inverters, batteries, meters, gateways and sensors. Memoized.
func (c *Client) SiteInventory(ctx context.Context, siteID string) (*Response, error) {
	siteID = strings.TrimSpace(siteID)
	return c.memoized(memo.Key(EndpointSiteInventory, siteID), func() (*Response, error) {
		return c.get(ctx, EndpointSiteInventory, siteID, newParams(), "site", siteID, "inventory")
	})
}

// SiteEquipmentData returns inverter telemetry for a time frame.
func (c *Client) SiteEquipmentData(ctx context.Context, siteID, serialNumber, startTime, endTime string) (*Response, error) {
	q := newParams().set("startTime", startTime).set("endTime", endTime)
	return c.get(ctx, EndpointSiteEquipmentData, siteID, q, "equipment", strings.TrimSpace(siteID), strings.TrimSpace(serialNumber), "data")
}

// SiteEquipmentChangeLog lists component replacements ordered by date.
func (c *Client) SiteEquipmentChangeLog(ctx context.Context, siteID, serialNumber string) (*Response, error) {
	return c.get(ctx, EndpointSiteEquipmentChangeLog, siteID, newParams(), "equipment", strings.TrimSpace(siteID), strings.TrimSpace(serialNumber), "changeLog")
}

// SiteMeters returns lifetime energy readings per meter.
func (c *Client) SiteMeters(ctx context.Context, siteID, startTime, endTime string, meters []string) (*Response, error) {
	q := newParams().set("startTime", startTime).set("endTime", endTime).optional("meters", meters)
	return c.get(ctx, EndpointSiteMeters, siteID, q, "site", strings.TrimSpace(siteID), "meters")
}

// SiteSensors returns sensor readings for a time frame.
func (c *Client) SiteSensors(ctx context.Context, siteID, startTime, endTime string) (*Response, error) {
	q := newParams().set("startTime", startTime).set("endTime", endTime)
	return c.get(ctx, EndpointSiteSensors, siteID, q, "site", strings.TrimSpace(siteID), "sensors")
}

// SiteEquipmentSensors lists the sensors of a site and the devices they attach to.
func (c *Client) SiteEquipmentSensors(ctx context.Context, siteID string) (*Response, error) {
	return c.get(ctx, EndpointSiteEquipmentSensors, siteID, newParams(), "equipment", strings.TrimSpace(siteID), "sensors")
}

// VersionCurrent returns the current API version.
func (c *Client) VersionCurrent(ctx context.Context) (*Response, error) {
	return c.get(ctx, EndpointVersionCurrent, "", newParams(), "version", "current")
}

// VersionSupported lists the supported API versions.
func (c *Client) VersionSupported(ctx context.Context) (*Response, error) {
	return c.get(ctx, EndpointVersionSupported, "", newParams(), "version", "supported")
}
