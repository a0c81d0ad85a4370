package slack

import (
	"context"
	"fmt"

	slackgo "github.com/slack-go/slack"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
)

type ListChannelsInput struct {
	Types           []string `json:"types,omitempty" jsonschema:"public_channel, private_channel, mpim or im; default public_channel"`
	Limit           int      `json:"limit,omitempty" jsonschema:"at most 1000"`
	Cursor          string   `json:"cursor,omitempty" jsonschema:"next_cursor from a previous call"`
	IncludeArchived bool     `json:"include_archived,omitempty"`
}

type Channel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Private  bool   `json:"private"`
	Archived bool   `json:"archived"`
	Members  int    `json:"members"`
	Topic    string `json:"topic,omitempty"`
	Purpose  string `json:"purpose,omitempty"`
}

var channelTypes = []string{"public_channel", "private_channel", "mpim", "im"}

func (s *Integration) listChannels(ctx context.Context, creds Credentials, in ListChannelsInput) (any, error) {
	types := in.Types
	if len(types) == 0 {
		types = []string{"public_channel"}
	}
	for _, t := range types {
		if err := mcpserver.OneOf("types", t, channelTypes...); err != nil {
			return nil, err
		}
	}

	channels, next, err := s.client(creds).GetConversationsContext(ctx, &slackgo.GetConversationsParameters{
		Types:           types,
		Limit:           mcpserver.Limit(in.Limit, 100, 1000),
		Cursor:          in.Cursor,
		ExcludeArchived: !in.IncludeArchived,
	})
	if err != nil {
		return nil, fmt.Errorf("slack conversations.list: %w", err)
	}

	out := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		out = append(out, Channel{
			ID:       ch.ID,
			Name:     ch.Name,
			Private:  ch.IsPrivate,
			Archived: ch.IsArchived,
			Members:  ch.NumMembers,
			Topic:    ch.Topic.Value,
			Purpose:  ch.Purpose.Value,
		})
	}
	return map[string]any{"channels": out, "next_cursor": next}, nil
}

type PostMessageInput struct {
	Channel  string `json:"channel" jsonschema:"channel id such as C0123456789"`
	Text     string `json:"text" jsonschema:"message text in Slack mrkdwn"`
	ThreadTS string `json:"thread_ts,omitempty" jsonschema:"timestamp of the parent message to reply in thread"`
}

func (s *Integration) postMessage(ctx context.Context, creds Credentials, in PostMessageInput) (any, error) {
	if err := mcpserver.Require("channel", in.Channel, "text", in.Text); err != nil {
		return nil, err
	}

	opts := []slackgo.MsgOption{slackgo.MsgOptionText(in.Text, false)}
	if in.ThreadTS != "" {
		opts = append(opts, slackgo.MsgOptionTS(in.ThreadTS))
	}
	channel, ts, err := s.client(creds).PostMessageContext(ctx, in.Channel, opts...)
	if err != nil {
		return nil, fmt.Errorf("slack chat.postMessage: %w", err)
	}
	return map[string]any{"channel": channel, "ts": ts, "thread_ts": in.ThreadTS}, nil
}
