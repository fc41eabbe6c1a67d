// Package config loads fedlink configuration files.
//
// A configuration names the protocols to connect plus retry, auth, transport,
// filter and logging settings. Files may be YAML (.yaml, .yml), TOML (.toml)
// or JSON (anything else):
//
//	protocols:
//	  - name: activitypub
//	    version: "1.0"
//	    capabilities: [messaging, search]
//	    endpoints:
//	      - path: wss://example.social/api/v1/streaming
//	        method: GET
//	errorHandling:
//	  retries: 3
//	  retryDelay: 1000   # milliseconds
//	auth:
//	  token: ${FEDLINK_TOKEN}
//	transport: coder
//	log:
//	  level: info
//
// Every document is validated against an embedded JSON Schema before it is
// decoded, so errors point at the offending path regardless of format.
// Environment variables in the form ${NAME} are expanded in string values.
//
//	cfg, err := config.LoadFromFile("fedlink.yaml")
//	if err != nil {
//	    return err
//	}
//	opts := cfg.ManagerOptions()
package config
