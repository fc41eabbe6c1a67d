// Package cli provides the fedlink command-line interface.
//
// Commands:
//   - connect: open streaming connections for every configured protocol
//   - fetch: retrieve an ActivityPub object
//   - search: query an ActivityPub search endpoint
//   - outbox: list the activities in an actor's outbox
//   - validate: check a configuration file
//   - version: show the fedlink version
package cli
