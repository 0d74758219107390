package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/solaredge/internal/api"
	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/internal/jsonvalue"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// argSet selects which arguments an endpoint command accepts.
type argSet uint

const (
	siteArg argSet = 1 << iota
	dateRange
	timeRange
	timeUnit
	meters
	serials
	systemUnits
	serialNumber
	listing
	siteStatus
)

// endpointArgs holds the resolved arguments of one invocation.
type endpointArgs struct {
	flags    *pflag.FlagSet
	siteID   string
	start    string
	end      string
	useCache bool
}

func (a *endpointArgs) str(name string) string {
	v, _ := a.flags.GetString(name)
	return strings.TrimSpace(v)
}

func (a *endpointArgs) number(name string) int {
	v, _ := a.flags.GetInt(name)
	return v
}

// split reads a comma separated flag.
func (a *endpointArgs) split(name string) []string {
	raw := a.str(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (a *endpointArgs) list() api.ListOptions {
	return api.ListOptions{
		Size:         a.number("size"),
		StartIndex:   a.number("start-index"),
		SearchText:   a.str("search-text"),
		SortProperty: a.str("sort-property"),
		SortOrder:    a.str("sort-order"),
		Status:       a.str("status"),
	}
}

type endpointCall func(ctx context.Context, c *api.Client, args *endpointArgs) (*api.Response, error)

type endpoint struct {
	use   string
	short string
	args  argSet
	call  endpointCall
}

var endpoints = []endpoint{
	{"accounts", "Get the accessible sub-accounts", listing,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.Accounts(ctx, a.list())
		}},
	{"sites", "Get the list of accessible sites", listing | siteStatus,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.Sites(ctx, a.list())
		}},
	{"site-details", "Get site details; name, location, status, etc.", siteArg,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteDetails(ctx, a.siteID)
		}},
	{"site-timezone", "Get the IANA time zone of a site", siteArg, siteTimezone},
	{"site-data-period", "Site(s) start and end date of production", siteArg,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteDataPeriod(ctx, a.siteID)
		}},
	{"site-energy", "Site(s) energy measurements", siteArg | dateRange | timeUnit,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteEnergy(ctx, a.siteID, a.start, a.end, a.str("time-unit"))
		}},
	{"site-time-frame-energy", "Site(s) total energy produced for a given period", siteArg | dateRange,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteTimeFrameEnergy(ctx, a.siteID, a.start, a.end)
		}},
	{"site-overview", "Site(s) overview data", siteArg,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteOverview(ctx, a.siteID)
		}},
	{"site-power", "Site(s) power measurements", siteArg | timeRange,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SitePower(ctx, a.siteID, a.start, a.end)
		}},
	{"site-power-details", "Site power measurements per meter", siteArg | timeRange | meters,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SitePowerDetails(ctx, a.siteID, a.start, a.end, a.split("meters"))
		}},
	{"site-energy-details", "Site energy measurements per meter", siteArg | timeRange | meters | timeUnit,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteEnergyDetails(ctx, a.siteID, a.start, a.end, a.split("meters"), a.str("time-unit"))
		}},
	{"site-current-power-flow", "Site current power flow", siteArg,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteCurrentPowerFlow(ctx, a.siteID)
		}},
	{"site-storage-data", "Site battery storage data", siteArg | timeRange | serials,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteStorageData(ctx, a.siteID, a.start, a.end, a.split("serials"))
		}},
	{"site-environmental-benefits", "Site environmental benefits", siteArg | systemUnits,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteEnvironmentalBenefits(ctx, a.siteID, a.str("system-units"))
		}},
	{"site-inventory", "Site inventory of equipment", siteArg,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteInventory(ctx, a.siteID)
		}},
	{"site-equipment-data", "Site inverter technical data", siteArg | timeRange | serialNumber,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteEquipmentData(ctx, a.siteID, a.str("serial-number"), a.start, a.end)
		}},
	{"site-equipment-change-log", "Site equipment component replacements", siteArg | serialNumber,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteEquipmentChangeLog(ctx, a.siteID, a.str("serial-number"))
		}},
	{"site-meters", "Site meter lifetime energy readings", siteArg | timeRange | meters,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteMeters(ctx, a.siteID, a.start, a.end, a.split("meters"))
		}},
	{"site-sensors", "Site sensor readings", siteArg | timeRange,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteSensors(ctx, a.siteID, a.start, a.end)
		}},
	{"site-equipment-sensors", "Site sensors and the devices they attach to", siteArg,
		func(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
			return c.SiteEquipmentSensors(ctx, a.siteID)
		}},
	{"version-current", "Current API version", 0,
		func(ctx context.Context, c *api.Client, _ *endpointArgs) (*api.Response, error) {
			return c.VersionCurrent(ctx)
		}},
	{"version-supported", "Supported API versions", 0,
		func(ctx context.Context, c *api.Client, _ *endpointArgs) (*api.Response, error) {
			return c.VersionSupported(ctx)
		}},
}

// siteTimezone wraps the timezone lookup as a local response.
func siteTimezone(ctx context.Context, c *api.Client, a *endpointArgs) (*api.Response, error) {
	tz, err := c.SiteTimezone(ctx, a.siteID, a.useCache)
	if err != nil {
		return nil, err
	}
	m := jsonvalue.NewMap()
	m.Set("siteId", jsonvalue.StringValue(a.siteID))
	m.Set("timeZone", jsonvalue.StringValue(tz))
	return api.ValueResponse(jsonvalue.MappingValue(m)), nil
}

// newEndpointCmd builds the cobra command for one endpoint.
func newEndpointCmd(ep endpoint) *cobra.Command {
	use := ep.use
	if ep.args&siteArg != 0 {
		use += " [site-id]"
	}
	cmd := &cobra.Command{
		Use:     use,
		Short:   ep.short,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: connectApp,
		RunE: func(cmd *cobra.Command, positional []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if ep.args&siteArg == 0 && len(positional) > 0 {
				return fmt.Errorf("%s does not take a site-id argument", ep.use)
			}
			args, err := resolveArgs(ep.args, cmd.Flags(), positional, a.cfg, time.Now())
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("calling endpoint", "name", ep.use, "site", args.siteID)
			resp, err := ep.call(cmd.Context(), a.client, args)
			if err != nil {
				return err
			}
			return a.out.WriteResponse(resp, a.cfg.Output, a.cfg.OutputFile)
		},
	}
	addEndpointFlags(cmd.Flags(), ep.args)
	return cmd
}

// resolveArgs applies the argument defaults: site from the positional arg or
// config, end date today and end time now, start seven days before end.
func resolveArgs(set argSet, flags *pflag.FlagSet, positional []string, cfg *contract.Config, now time.Time) (*endpointArgs, error) {
	args := &endpointArgs{flags: flags, useCache: cfg.TimezoneCache}

	if set&siteArg != 0 {
		given := ""
		if len(positional) > 0 {
			given = positional[0]
		}
		siteID, err := api.ResolveSiteID(given, cfg.SiteID)
		if err != nil {
			return nil, err
		}
		args.siteID = siteID
	}

	var (
		r   api.Range
		err error
	)
	switch {
	case set&dateRange != 0:
		r, err = api.ResolveDateRange(args.str("start-date"), args.str("end-date"), now, contract.DefaultLookback)
	case set&timeRange != 0:
		r, err = api.ResolveTimeRange(args.str("start-time"), args.str("end-time"), now, contract.DefaultLookback)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid date range: %w", err)
	}
	args.start, args.end = r.Start, r.End

	if set&serialNumber != 0 && args.str("serial-number") == "" {
		return nil, fmt.Errorf("--serial-number is required")
	}
	return args, nil
}

func addEndpointFlags(f *pflag.FlagSet, set argSet) {
	if set&listing != 0 {
		f.Int("size", api.DefaultListSize, "Maximum number of results returned")
		f.Int("start-index", 0, "Index of the first result returned")
		f.String("search-text", "", "Search text filter")
		f.String("sort-property", "", "Property to sort by")
		f.String("sort-order", api.DefaultSortOrder, "Sort order: ASC or DESC")
	}
	if set&siteStatus != 0 {
		f.String("status", api.DefaultSiteStatus, "Site statuses to include")
	}
	if set&dateRange != 0 {
		f.String("start-date", "", `Default 7 days before end-date, else format "YYYY-MM-DD"`)
		f.String("end-date", "", `Default today, else format "YYYY-MM-DD"`)
	}
	if set&timeRange != 0 {
		f.String("start-time", "", `Default 7 days before end-time, else format "YYYY-MM-DD hh:mm:ss"`)
		f.String("end-time", "", `Default now, else format "YYYY-MM-DD hh:mm:ss"`)
	}
	if set&timeUnit != 0 {
		f.String("time-unit", api.DefaultTimeUnit, "QUARTER_OF_AN_HOUR, HOUR, DAY, WEEK, MONTH, YEAR")
	}
	if set&meters != 0 {
		f.String("meters", "", "Production, Consumption, SelfConsumption, FeedIn, Purchased")
	}
	if set&serials != 0 {
		f.String("serials", "", "Battery serial numbers; all batteries when omitted")
	}
	if set&systemUnits != 0 {
		f.String("system-units", "", "Metrics or Imperial")
	}
	if set&serialNumber != 0 {
		f.String("serial-number", "", "The inverter short serial number")
	}
}
