package datadog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
)

type ListMonitorsInput struct {
	Name        string `json:"name,omitempty" jsonschema:"substring of the monitor name"`
	Tags        string `json:"tags,omitempty" jsonschema:"comma separated scope tags, e.g. env:prod"`
	MonitorTags string `json:"monitor_tags,omitempty" jsonschema:"comma separated monitor tags, e.g. team:core"`
	Page        int    `json:"page,omitempty"`
	PageSize    int    `json:"page_size,omitempty" jsonschema:"at most 1000"`
}

type monitor struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Query        string   `json:"query"`
	OverallState string   `json:"overall_state"`
	Tags         []string `json:"tags"`
	Options      struct {
		Silenced map[string]*int64 `json:"silenced"`
	} `json:"options"`
}

type MonitorSummary struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	State string   `json:"state"`
	Query string   `json:"query"`
	Tags  []string `json:"tags,omitempty"`
	Muted bool     `json:"muted"`
}

func (m monitor) summary() MonitorSummary {
	return MonitorSummary{
		ID:    m.ID,
		Name:  m.Name,
		Type:  m.Type,
		State: m.OverallState,
		Query: m.Query,
		Tags:  m.Tags,
		Muted: len(m.Options.Silenced) > 0,
	}
}

func (d *Integration) listMonitors(ctx context.Context, creds Credentials, in ListMonitorsInput) (any, error) {
	c, err := d.client(creds)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("page_size", strconv.Itoa(mcpserver.Limit(in.PageSize, 50, 1000)))
	q.Set("page", strconv.Itoa(max(in.Page, 0)))
	if in.Name != "" {
		q.Set("name", in.Name)
	}
	if in.Tags != "" {
		q.Set("tags", in.Tags)
	}
	if in.MonitorTags != "" {
		q.Set("monitor_tags", in.MonitorTags)
	}

	var raw []monitor
	if err := c.Get(ctx, "/api/v1/monitor", q, &raw); err != nil {
		return nil, err
	}
	out := make([]MonitorSummary, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.summary())
	}
	return map[string]any{"count": len(out), "monitors": out}, nil
}

type QueryMetricsInput struct {
	Query string `json:"query" jsonschema:"metric query, e.g. avg:system.cpu.user{env:prod}"`
	From  int64  `json:"from,omitempty" jsonschema:"start as unix seconds, default one hour ago"`
	To    int64  `json:"to,omitempty" jsonschema:"end as unix seconds, default now"`
}

type SeriesSummary struct {
	Metric  string   `json:"metric"`
	Scope   string   `json:"scope"`
	Unit    string   `json:"unit,omitempty"`
	Points  int      `json:"points"`
	Last    *float64 `json:"last,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Samples [][2]any `json:"samples,omitempty"`
}

type unit struct {
	Name string `json:"name"`
}

// maxSamples bounds how many raw points are echoed per series.
const maxSamples = 10

func (d *Integration) queryMetrics(ctx context.Context, creds Credentials, in QueryMetricsInput) (any, error) {
	if err := mcpserver.Require("query", in.Query); err != nil {
		return nil, err
	}
	to := in.To
	if to <= 0 {
		to = time.Now().Unix()
	}
	from := in.From
	if from <= 0 {
		from = to - int64(time.Hour/time.Second)
	}
	if from >= to {
		return nil, fmt.Errorf("from (%d) must be before to (%d)", from, to)
	}

	c, err := d.client(creds)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("query", in.Query)
	q.Set("from", strconv.FormatInt(from, 10))
	q.Set("to", strconv.FormatInt(to, 10))

	var resp struct {
		Status string `json:"status"`
		Error  string `json:"error"`
		Series []struct {
			Metric    string       `json:"metric"`
			Scope     string       `json:"scope"`
			PointList [][]*float64 `json:"pointlist"`
			Unit      []*unit      `json:"unit"`
		} `json:"series"`
	}
	if err := c.Get(ctx, "/api/v1/query", q, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "error" {
		return nil, fmt.Errorf("datadog query failed: %s", resp.Error)
	}

	series := make([]SeriesSummary, 0, len(resp.Series))
	for _, s := range resp.Series {
		sum := SeriesSummary{Metric: s.Metric, Scope: s.Scope, Points: len(s.PointList)}
		if len(s.Unit) > 0 && s.Unit[0] != nil {
			sum.Unit = s.Unit[0].Name
		}
		for i, p := range s.PointList {
			if len(p) < 2 || p[1] == nil {
				continue
			}
			v := *p[1]
			if sum.Min == nil || v < *sum.Min {
				sum.Min = &v
			}
			if sum.Max == nil || v > *sum.Max {
				sum.Max = &v
			}
			sum.Last = &v
			if i >= len(s.PointList)-maxSamples && p[0] != nil {
				sum.Samples = append(sum.Samples, [2]any{int64(*p[0] / 1000), v})
			}
		}
		series = append(series, sum)
	}
	return map[string]any{"from": from, "to": to, "series": series}, nil
}

type MuteMonitorInput struct {
	MonitorID int64  `json:"monitor_id"`
	Scope     string `json:"scope,omitempty" jsonschema:"scope to mute, e.g. host:web-1; all scopes when empty"`
	End       int64  `json:"end,omitempty" jsonschema:"unix seconds when the mute ends; indefinite when empty"`
}

func (d *Integration) muteMonitor(ctx context.Context, creds Credentials, in MuteMonitorInput) (any, error) {
	if in.MonitorID <= 0 {
		return nil, fmt.Errorf("monitor_id is required")
	}
	if in.End > 0 && in.End <= time.Now().Unix() {
		return nil, fmt.Errorf("end must be in the future")
	}
	c, err := d.client(creds)
	if err != nil {
		return nil, err
	}

	body := map[string]any{}
	if in.Scope != "" {
		body["scope"] = in.Scope
	}
	if in.End > 0 {
		body["end"] = in.End
	}

	var m monitor
	if err := c.Post(ctx, fmt.Sprintf("/api/v1/monitor/%d/mute", in.MonitorID), body, &m); err != nil {
		return nil, err
	}
	return m.summary(), nil
}
