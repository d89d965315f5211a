// Package qbittorrent provides a slot source backed by the qBittorrent Web API.
//
// This package wraps the autobrr/go-qbittorrent library and renders each torrent
// the way transmission-remote prints it, so dashboards written against the
// transmission-remote listing keep working when the daemon points at qBittorrent.
//
// # Features
//
//   - Lazy login with a single re-login on request failure
//   - Torrents listed in the order they were added, numbered from 1
//   - Global share ratio limit read from the application preferences
//   - Context-aware operations for request cancellation
//
// # Usage
//
//	client := qbittorrent.NewClient(url, username, password, logger)
//
//	maxRatio := client.MaxRatio(ctx)
//	slots, err := client.Slots(ctx)
package qbittorrent
