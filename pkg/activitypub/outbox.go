package activitypub

import (
	"context"
	"time"
)

// Activity is the flattened form of an ActivityStreams activity.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Actor     string    `json:"actor,omitempty"`
	Object    any       `json:"object,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Published time.Time `json:"published,omitempty"`
}

// FetchOutbox fetches a collection (typically an actor outbox) and returns
// its activities. When the collection pages its items, the first page is
// followed once.
func (c *Client) FetchOutbox(ctx context.Context, collectionURL string) ([]Activity, error) {
	v, err := c.Fetch(ctx, collectionURL, nil)
	if err != nil {
		return nil, err
	}

	items := extractItems(v)
	if items == nil {
		if m, ok := v.(map[string]any); ok {
			switch first := m["first"].(type) {
			case string:
				page, err := c.Fetch(ctx, first, nil)
				if err != nil {
					return nil, err
				}
				items = extractItems(page)
			case map[string]any:
				items = extractItems(first)
			}
		}
	}
	return ActivitiesFrom(items), nil
}

// ActivitiesFrom converts decoded collection items. Items that are not JSON
// objects are skipped.
func ActivitiesFrom(items []any) []Activity {
	out := make([]Activity, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Activity{
			ID:        str(m["id"]),
			Type:      str(m["type"]),
			Actor:     idOf(m["actor"]),
			Object:    m["object"],
			Summary:   str(m["summary"]),
			Published: timeOf(m["published"]),
		})
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// idOf returns v when it is a string, or its "id" member when it is an
// embedded object.
func idOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		return str(x["id"])
	}
	return ""
}

func timeOf(v any) time.Time {
	s := str(v)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
