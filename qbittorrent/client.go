package qbittorrent

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"

	"github.com/s0up4200/transmission-rest/status"
)

const sourceName = "qbittorrent"

// torrentAPI is the part of the go-qbittorrent client used here
type torrentAPI interface {
	LoginCtx(ctx context.Context) error
	GetTorrentsCtx(ctx context.Context, o qbittorrent.TorrentFilterOptions) ([]qbittorrent.Torrent, error)
	GetAppPreferencesCtx(ctx context.Context) (qbittorrent.AppPreferences, error)
}

// Client wraps the qBittorrent API client
type Client struct {
	api    torrentAPI
	host   string
	logger zerolog.Logger
}

// NewClient creates a new qBittorrent client. It does not contact the Web UI;
// the first query logs in.
func NewClient(url, username, password string, logger zerolog.Logger, opts ...Option) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg := qbittorrent.Config{
		Host:          url,
		Username:      username,
		Password:      password,
		TLSSkipVerify: o.skipVerify,
		BasicUser:     o.basicUser,
		BasicPass:     o.basicPass,
	}
	if o.timeout > 0 {
		cfg.Timeout = int(o.timeout.Seconds())
	}

	return newClient(qbittorrent.NewClient(cfg), url, logger)
}

func newClient(api torrentAPI, host string, logger zerolog.Logger) *Client {
	return &Client{
		api:    api,
		host:   host,
		logger: logger,
	}
}

// Name implements status.Source
func (c *Client) Name() string {
	return sourceName
}

// Slots retrieves all torrents and renders them as slots.
func (c *Client) Slots(ctx context.Context) ([]status.Slot, error) {
	torrents, err := c.api.GetTorrentsCtx(ctx, qbittorrent.TorrentFilterOptions{})
	if err != nil {
		// The session cookie may have expired; log in once and retry.
		if loginErr := c.api.LoginCtx(ctx); loginErr != nil {
			return nil, c.sourceError(ctx, fmt.Errorf("login: %w", loginErr))
		}
		torrents, err = c.api.GetTorrentsCtx(ctx, qbittorrent.TorrentFilterOptions{})
		if err != nil {
			return nil, c.sourceError(ctx, fmt.Errorf("failed to get torrents: %w", err))
		}
	}

	c.logger.Debug().Msgf("Retrieved %d torrents from qBittorrent", len(torrents))

	sort.SliceStable(torrents, func(i, j int) bool {
		return torrents[i].AddedOn < torrents[j].AddedOn
	})

	slots := make([]status.Slot, 0, len(torrents))
	for i, t := range torrents {
		slots = append(slots, toSlot(i+1, t))
	}

	return slots, nil
}

// MaxRatio returns the global share ratio limit, or status.UnknownRatio when
// the limit is disabled or the preferences cannot be read.
func (c *Client) MaxRatio(ctx context.Context) float64 {
	prefs, err := c.api.GetAppPreferencesCtx(ctx)
	if err != nil {
		if loginErr := c.api.LoginCtx(ctx); loginErr == nil {
			prefs, err = c.api.GetAppPreferencesCtx(ctx)
		}
	}
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("host", c.host).
			Msg("Failed to read qBittorrent preferences, ratio limit unknown")
		return status.UnknownRatio
	}

	if !prefs.MaxRatioEnabled || prefs.MaxRatio <= 0 {
		return status.UnknownRatio
	}

	c.logger.Info().
		Float64("ratio_limit", prefs.MaxRatio).
		Msg("Loaded ratio limit from qBittorrent preferences")

	return prefs.MaxRatio
}

func (c *Client) sourceError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return status.Timeout(sourceName, MessageTimeout, err)
	}
	return status.Unavailable(sourceName, MessageUnreachable, err)
}
