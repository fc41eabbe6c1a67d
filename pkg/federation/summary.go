package federation

import "time"

// Summary aggregates the registry into a single federation status.
type Summary struct {
	Active             bool      `json:"isActive"`
	ActiveConnections  int       `json:"activeConnections"`
	AvailableProtocols int       `json:"availablePlatforms"`
	LastActivity       time.Time `json:"lastActivity,omitempty"`
	Error              string    `json:"error,omitempty"`
}

// Summary reports how many protocols are connected and the most recent error.
func (m *Manager) Summary() Summary {
	return Summarize(m.registry.Snapshot())
}

// Summarize builds a Summary from a registry snapshot.
func Summarize(states map[ProtocolName]ConnectionState) Summary {
	var (
		sum       Summary
		errAt     time.Time
		errString string
	)
	sum.AvailableProtocols = len(states)

	for name, s := range states {
		if s.Status == StatusConnected {
			sum.ActiveConnections++
		}
		if s.LastActivity.After(sum.LastActivity) {
			sum.LastActivity = s.LastActivity
		}
		if s.Status == StatusError && s.LastError != nil {
			// Prefer the error of the most recently active protocol.
			if errString == "" || s.LastActivity.After(errAt) {
				errAt = s.LastActivity
				errString = string(name) + ": " + s.LastError.Error()
			}
		}
	}

	sum.Active = sum.ActiveConnections > 0
	sum.Error = errString
	return sum
}
