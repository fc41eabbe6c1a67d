// Package activitypub provides one-shot HTTP helpers for ActivityPub servers.
//
// Requests carry "Accept: application/activity+json" merged with any caller
// headers. Non-2xx responses are returned as *StatusError.
//
//	client := activitypub.NewClient()
//	actor, err := client.Fetch(ctx, "https://example.social/users/alice", nil)
//	items, err := client.Search(ctx, "https://example.social/api/search", "golang", nil)
package activitypub
