package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/solaredge/internal/api"
	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/internal/jsonvalue"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolHandler holds common dependencies for MCP tool handlers.
// The stdio server may run handlers concurrently, and the client memo is
// not safe for that, so client calls go through mu.
type toolHandler struct {
	baseCfg *contract.Config
	client  *api.Client
	now     func() time.Time
	mu      sync.Mutex
}

func newToolHandler(baseCfg *contract.Config, client *api.Client) *toolHandler {
	return &toolHandler{baseCfg: baseCfg, client: client, now: time.Now}
}

// invoke runs fn while holding the client lock.
func (h *toolHandler) invoke(ctx context.Context, fn call, args *toolArgs) (*api.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(ctx, args)
}

type tool struct {
	definition mcp.Tool
	handler    server.ToolHandlerFunc
}

// call is an endpoint invocation fed with parsed tool arguments.
type call func(ctx context.Context, args *toolArgs) (*api.Response, error)

func (h *toolHandler) tools() []tool {
	site := siteOption()
	return []tool{
		h.plainTool(newTool("get_accounts", "List the sub-accounts visible to the API key.", listOptions()...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.Accounts(ctx, a.list())
			}),
		h.plainTool(newTool("get_sites", "List the sites visible to the API key.",
			with(listOptions(), mcp.WithString("status", mcp.Description("Site status filter, e.g. Active,Pending.")))...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.Sites(ctx, a.list())
			}),
		h.siteTool(newTool("get_site_details", "Site name, location, status, peak power and more.", site),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteDetails(ctx, a.siteID)
			}),
		{
			definition: newTool("get_site_timezone", "IANA time zone of a site.", site),
			handler:    h.handleSiteTimezone,
		},
		h.siteTool(newTool("get_site_data_period", "First and last dates of energy production.", site),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteDataPeriod(ctx, a.siteID)
			}),
		h.dateTool(newTool("get_site_energy", "Energy measurements between two dates.", with(dateOptions(), site, timeUnitOption())...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteEnergy(ctx, a.siteID, a.start, a.end, a.str("time_unit"))
			}),
		h.dateTool(newTool("get_site_time_frame_energy", "Total energy produced between two dates.", with(dateOptions(), site)...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteTimeFrameEnergy(ctx, a.siteID, a.start, a.end)
			}),
		h.siteTool(newTool("get_site_overview", "Current power, daily, monthly, yearly and lifetime energy.", site),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteOverview(ctx, a.siteID)
			}),
		h.timeTool(newTool("get_site_power", "Power measurements in 15 minute resolution.", with(timeOptions(), site)...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SitePower(ctx, a.siteID, a.start, a.end)
			}),
		h.timeTool(newTool("get_site_power_details", "Power measurements per meter.", with(timeOptions(), site, metersOption())...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SitePowerDetails(ctx, a.siteID, a.start, a.end, a.splitList("meters"))
			}),
		h.timeTool(newTool("get_site_energy_details", "Energy measurements per meter.", with(timeOptions(), site, metersOption(), timeUnitOption())...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteEnergyDetails(ctx, a.siteID, a.start, a.end, a.splitList("meters"), a.str("time_unit"))
			}),
		h.siteTool(newTool("get_site_current_power_flow", "Current power flow between PV, storage, loads and grid.", site),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteCurrentPowerFlow(ctx, a.siteID)
			}),
		h.timeTool(newTool("get_site_storage_data", "Battery state of energy, power and lifetime energy.",
			with(timeOptions(), site, mcp.WithString("serials", mcp.Description("Comma separated battery serial numbers.")))...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteStorageData(ctx, a.siteID, a.start, a.end, a.splitList("serials"))
			}),
		h.siteTool(newTool("get_site_environmental_benefits", "CO2 savings and equivalents.",
			site, mcp.WithString("system_units", mcp.Description("Unit system."), mcp.Enum("Metrics", "Imperial"))),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteEnvironmentalBenefits(ctx, a.siteID, a.str("system_units"))
			}),
		h.siteTool(newTool("get_site_inventory", "Inverters, batteries, meters, gateways and sensors of a site.", site),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteInventory(ctx, a.siteID)
			}),
		h.timeTool(newTool("get_site_equipment_data", "Inverter telemetry for a time frame.",
			with(timeOptions(), site, mcp.WithString("serial_number", mcp.Description("Inverter serial number."), mcp.Required()))...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteEquipmentData(ctx, a.siteID, a.str("serial_number"), a.start, a.end)
			}),
		h.siteTool(newTool("get_site_equipment_change_log", "Component replacements of a device, ordered by date.",
			site, mcp.WithString("serial_number", mcp.Description("Device serial number."), mcp.Required())),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteEquipmentChangeLog(ctx, a.siteID, a.str("serial_number"))
			}),
		h.timeTool(newTool("get_site_meters", "Lifetime energy readings per meter.", with(timeOptions(), site, metersOption())...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteMeters(ctx, a.siteID, a.start, a.end, a.splitList("meters"))
			}),
		h.timeTool(newTool("get_site_sensors", "Sensor readings for a time frame.", with(timeOptions(), site)...),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteSensors(ctx, a.siteID, a.start, a.end)
			}),
		h.siteTool(newTool("get_site_equipment_sensors", "Sensors of a site and the devices they attach to.", site),
			func(ctx context.Context, a *toolArgs) (*api.Response, error) {
				return h.client.SiteEquipmentSensors(ctx, a.siteID)
			}),
		h.plainTool(newTool("get_version_current", "Current API version."),
			func(ctx context.Context, _ *toolArgs) (*api.Response, error) {
				return h.client.VersionCurrent(ctx)
			}),
		h.plainTool(newTool("get_version_supported", "Supported API versions."),
			func(ctx context.Context, _ *toolArgs) (*api.Response, error) {
				return h.client.VersionSupported(ctx)
			}),
	}
}

// toolArgs holds the parsed arguments of one tool call.
type toolArgs struct {
	request mcp.CallToolRequest
	siteID  string
	start   string
	end     string
}

func (a *toolArgs) str(name string) string {
	return strings.TrimSpace(a.request.GetString(name, ""))
}

// splitList splits a comma separated argument.
func (a *toolArgs) splitList(name string) []string {
	raw := a.str(name)
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func (a *toolArgs) list() api.ListOptions {
	return api.ListOptions{
		Size:         a.request.GetInt("size", api.DefaultListSize),
		StartIndex:   a.request.GetInt("start_index", 0),
		SearchText:   a.str("search_text"),
		SortProperty: a.str("sort_property"),
		SortOrder:    a.str("sort_order"),
		Status:       a.str("status"),
	}
}

// plainTool wraps an endpoint that needs no site.
func (h *toolHandler) plainTool(def mcp.Tool, fn call) tool {
	return tool{definition: def, handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return respond(h.invoke(ctx, fn, &toolArgs{request: request}))
	}}
}

// siteTool resolves site_id before calling fn.
func (h *toolHandler) siteTool(def mcp.Tool, fn call) tool {
	return tool{definition: def, handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := h.siteArgs(request)
		if errResult != nil {
			return errResult, nil
		}
		return respond(h.invoke(ctx, fn, args))
	}}
}

// dateTool resolves site_id and the date range.
func (h *toolHandler) dateTool(def mcp.Tool, fn call) tool {
	return h.rangeTool(def, fn, "start_date", "end_date", api.ResolveDateRange)
}

// timeTool resolves site_id and the time range.
func (h *toolHandler) timeTool(def mcp.Tool, fn call) tool {
	return h.rangeTool(def, fn, "start_time", "end_time", api.ResolveTimeRange)
}

type rangeResolver func(start, end string, now time.Time, lookbackDays int) (api.Range, error)

func (h *toolHandler) rangeTool(def mcp.Tool, fn call, startKey, endKey string, resolve rangeResolver) tool {
	return tool{definition: def, handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := h.siteArgs(request)
		if errResult != nil {
			return errResult, nil
		}
		r, err := resolve(args.str(startKey), args.str(endKey), h.now(), contract.DefaultLookback)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid %s/%s: %v", startKey, endKey, err)), nil
		}
		args.start, args.end = r.Start, r.End
		return respond(h.invoke(ctx, fn, args))
	}}
}

func (h *toolHandler) siteArgs(request mcp.CallToolRequest) (*toolArgs, *mcp.CallToolResult) {
	args := &toolArgs{request: request}
	siteID, err := api.ResolveSiteID(args.str("site_id"), h.baseCfg.SiteID)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	args.siteID = siteID
	return args, nil
}

func (h *toolHandler) handleSiteTimezone(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := h.siteArgs(request)
	if errResult != nil {
		return errResult, nil
	}
	h.mu.Lock()
	tz, err := h.client.SiteTimezone(ctx, args.siteID, h.baseCfg.TimezoneCache)
	h.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("timezone lookup failed: %v", err)), nil
	}
	m := jsonvalue.NewMap()
	m.Set("siteId", jsonvalue.StringValue(args.siteID))
	m.Set("timeZone", jsonvalue.StringValue(tz))
	return respond(api.ValueResponse(jsonvalue.MappingValue(m)), nil)
}

// respond renders the decoded body as indented JSON, or the raw body when
// it did not decode.
func respond(resp *api.Response, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("request failed: %v", err)), nil
	}
	if !resp.HasData() {
		return mcp.NewToolResultText(resp.Text), nil
	}
	data, err := resp.Data.MarshalJSON()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
