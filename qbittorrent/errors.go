package qbittorrent

// Messages sent to HTTP clients in error documents.
const (
	MessageUnreachable = "The qBittorrent Web API could not be reached"
	MessageTimeout     = "The qBittorrent Web API timed out"
)
