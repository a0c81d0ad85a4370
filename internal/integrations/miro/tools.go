package miro

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
)

type ListBoardsInput struct {
	Query  string `json:"query,omitempty" jsonschema:"search boards by name or description"`
	TeamID string `json:"team_id,omitempty"`
	Limit  int    `json:"limit,omitempty" jsonschema:"at most 50"`
	Offset int    `json:"offset,omitempty"`
}

type Board struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ViewLink    string `json:"viewLink"`
	CreatedAt   string `json:"createdAt,omitempty"`
	ModifiedAt  string `json:"modifiedAt,omitempty"`
}

func (m *Integration) listBoards(ctx context.Context, creds Credentials, in ListBoardsInput) (any, error) {
	c, err := m.client(creds)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(mcpserver.Limit(in.Limit, 20, 50)))
	if in.Offset > 0 {
		q.Set("offset", strconv.Itoa(in.Offset))
	}
	if in.Query != "" {
		q.Set("query", in.Query)
	}
	if in.TeamID != "" {
		q.Set("team_id", in.TeamID)
	}

	var resp struct {
		Data   []Board `json:"data"`
		Total  int     `json:"total"`
		Offset int     `json:"offset"`
	}
	if err := c.Get(ctx, "/v2/boards", q, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []Board{}
	}
	return map[string]any{"total": resp.Total, "offset": resp.Offset, "boards": resp.Data}, nil
}

type StickyNoteInput struct {
	BoardID string  `json:"board_id"`
	Content string  `json:"content" jsonschema:"note text; simple HTML is allowed"`
	X       float64 `json:"x,omitempty" jsonschema:"horizontal position relative to the board center"`
	Y       float64 `json:"y,omitempty"`
	Color   string  `json:"color,omitempty" jsonschema:"fill color name such as light_yellow, light_green, light_blue"`
}

var stickyColors = []string{
	"gray", "light_yellow", "yellow", "orange", "light_green", "green", "dark_green",
	"cyan", "light_pink", "pink", "violet", "red", "light_blue", "blue", "dark_blue", "black",
}

func (m *Integration) createStickyNote(ctx context.Context, creds Credentials, in StickyNoteInput) (any, error) {
	if err := mcpserver.Require("board_id", in.BoardID, "content", in.Content); err != nil {
		return nil, err
	}
	if err := mcpserver.OneOf("color", in.Color, stickyColors...); err != nil {
		return nil, err
	}
	c, err := m.client(creds)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"data":     map[string]any{"content": in.Content, "shape": "square"},
		"position": map[string]any{"x": in.X, "y": in.Y},
	}
	if in.Color != "" {
		body["style"] = map[string]any{"fillColor": in.Color}
	}

	var created struct {
		ID    string `json:"id"`
		Type  string `json:"type"`
		Links struct {
			Self string `json:"self"`
		} `json:"links"`
		CreatedAt string `json:"createdAt"`
	}
	if err := c.Post(ctx, "/v2/boards/"+url.PathEscape(in.BoardID)+"/sticky_notes", body, &created); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":         created.ID,
		"type":       created.Type,
		"link":       created.Links.Self,
		"created_at": created.CreatedAt,
	}, nil
}
