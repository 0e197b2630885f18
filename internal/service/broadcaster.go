package service

// Broadcaster pushes session updates to connected study monitors.
// Defined here to avoid a circular dependency with the ws transport.
type Broadcaster interface {
	BroadcastToMonitors(sessionID string, msgType string, payload interface{})
}
