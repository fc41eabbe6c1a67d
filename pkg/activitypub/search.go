package activitypub

import (
	"strings"
	"time"
)

// ResultType classifies a search hit.
type ResultType string

// Result types.
const (
	ResultAudio ResultType = "audio"
	ResultVideo ResultType = "video"
	ResultImage ResultType = "image"
	ResultPost  ResultType = "post"
	ResultUser  ResultType = "user"
	ResultOther ResultType = "other"
)

// maxTitleLen bounds titles derived from content.
const maxTitleLen = 80

// SearchResult is a search hit shaped for display.
type SearchResult struct {
	ID        string     `json:"id"`
	Type      ResultType `json:"type"`
	Title     string     `json:"title"`
	URL       string     `json:"url,omitempty"`
	Author    string     `json:"author,omitempty"`
	Platform  string     `json:"platform,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
}

// ToSearchResults maps ActivityStreams objects to SearchResults tagged with
// platform. Non-object items are skipped.
func ToSearchResults(items []any, platform string) []SearchResult {
	out := make([]SearchResult, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := str(m["id"])
		link := urlOf(m["url"])
		if link == "" {
			link = id
		}
		out = append(out, SearchResult{
			ID:        id,
			Type:      classify(str(m["type"])),
			Title:     titleOf(m),
			URL:       link,
			Author:    idOf(m["attributedTo"]),
			Platform:  platform,
			CreatedAt: timeOf(m["published"]),
		})
	}
	return out
}

func classify(asType string) ResultType {
	switch asType {
	case "Audio":
		return ResultAudio
	case "Video":
		return ResultVideo
	case "Image":
		return ResultImage
	case "Note", "Article", "Page", "Question", "Event":
		return ResultPost
	case "Person", "Service", "Group", "Application", "Organization":
		return ResultUser
	}
	return ResultOther
}

func titleOf(m map[string]any) string {
	for _, key := range []string{"name", "preferredUsername", "summary", "content"} {
		if s := strings.TrimSpace(str(m[key])); s != "" {
			if r := []rune(s); len(r) > maxTitleLen {
				return string(r[:maxTitleLen-1]) + "…"
			}
			return s
		}
	}
	return ""
}

// urlOf accepts a plain URL, a Link object, or a list of either.
func urlOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		return str(x["href"])
	case []any:
		for _, e := range x {
			if s := urlOf(e); s != "" {
				return s
			}
		}
	}
	return ""
}
