package bamboohr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
)

const dateLayout = "2006-01-02"

type DirectoryInput struct {
	Department string `json:"department,omitempty" jsonschema:"only employees of this department"`
}

type Employee struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	JobTitle    string `json:"jobTitle,omitempty"`
	Department  string `json:"department,omitempty"`
	Division    string `json:"division,omitempty"`
	Location    string `json:"location,omitempty"`
	WorkEmail   string `json:"workEmail,omitempty"`
	Supervisor  string `json:"supervisor,omitempty"`
}

func (b *Integration) getDirectory(ctx context.Context, creds Credentials, in DirectoryInput) (any, error) {
	c, err := b.client(creds)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Employees []Employee `json:"employees"`
	}
	if err := c.Get(ctx, "/v1/employees/directory", nil, &resp); err != nil {
		return nil, err
	}

	employees := make([]Employee, 0, len(resp.Employees))
	for _, e := range resp.Employees {
		if in.Department != "" && !strings.EqualFold(e.Department, in.Department) {
			continue
		}
		employees = append(employees, e)
	}
	return map[string]any{"count": len(employees), "employees": employees}, nil
}

type EmployeeInput struct {
	EmployeeID string   `json:"employee_id"`
	Fields     []string `json:"fields,omitempty" jsonschema:"extra field names to fetch"`
}

var defaultEmployeeFields = []string{
	"firstName", "lastName", "displayName", "jobTitle", "department", "division",
	"location", "workEmail", "hireDate", "status", "supervisor",
}

type jobInfo struct {
	Date       string `json:"date"`
	JobTitle   string `json:"jobTitle"`
	Department string `json:"department"`
	Location   string `json:"location"`
	ReportsTo  string `json:"reportsTo"`
}

func (b *Integration) getEmployee(ctx context.Context, creds Credentials, in EmployeeInput) (any, error) {
	id := strings.TrimSpace(in.EmployeeID)
	if _, err := strconv.Atoi(id); err != nil {
		return nil, fmt.Errorf("employee_id must be numeric, got %q", in.EmployeeID)
	}
	c, err := b.client(creds)
	if err != nil {
		return nil, err
	}

	fields := append(append([]string{}, defaultEmployeeFields...), in.Fields...)
	var (
		employee map[string]any
		history  []jobInfo
	)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		q := url.Values{"fields": {strings.Join(fields, ",")}}
		return c.Get(ctx, "/v1/employees/"+id, q, &employee)
	})
	group.Go(func() error {
		return c.Get(ctx, "/v1/employees/"+id+"/tables/jobInfo", nil, &history)
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if history == nil {
		history = []jobInfo{}
	}
	return map[string]any{"employee": employee, "job_history": history}, nil
}

type TimeOffInput struct {
	Start      string `json:"start" jsonschema:"first day, YYYY-MM-DD"`
	End        string `json:"end" jsonschema:"last day, YYYY-MM-DD"`
	Status     string `json:"status,omitempty" jsonschema:"approved, denied, superceded, requested or canceled"`
	EmployeeID string `json:"employee_id,omitempty"`
}

type TimeOffRequest struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Amount     string `json:"amount"`
}

type rawTimeOff struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Status     struct {
		Status string `json:"status"`
	} `json:"status"`
	Type struct {
		Name string `json:"name"`
	} `json:"type"`
	Amount struct {
		Unit   string `json:"unit"`
		Amount string `json:"amount"`
	} `json:"amount"`
}

func (b *Integration) listTimeOff(ctx context.Context, creds Credentials, in TimeOffInput) (any, error) {
	start, err := time.Parse(dateLayout, in.Start)
	if err != nil {
		return nil, fmt.Errorf("start must be YYYY-MM-DD: %w", err)
	}
	end, err := time.Parse(dateLayout, in.End)
	if err != nil {
		return nil, fmt.Errorf("end must be YYYY-MM-DD: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s", in.End, in.Start)
	}
	if err := mcpserver.OneOf("status", in.Status, "approved", "denied", "superceded", "requested", "canceled"); err != nil {
		return nil, err
	}
	c, err := b.client(creds)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("start", in.Start)
	q.Set("end", in.End)
	if in.Status != "" {
		q.Set("status", in.Status)
	}
	if in.EmployeeID != "" {
		q.Set("employeeId", in.EmployeeID)
	}

	var raw []rawTimeOff
	if err := c.Get(ctx, "/v1/time_off/requests", q, &raw); err != nil {
		return nil, err
	}
	out := make([]TimeOffRequest, 0, len(raw))
	for _, r := range raw {
		out = append(out, TimeOffRequest{
			ID:         r.ID,
			EmployeeID: r.EmployeeID,
			Name:       r.Name,
			Type:       r.Type.Name,
			Status:     r.Status.Status,
			Start:      r.Start,
			End:        r.End,
			Amount:     strings.TrimSpace(r.Amount.Amount + " " + r.Amount.Unit),
		})
	}
	return map[string]any{"count": len(out), "requests": out}, nil
}
