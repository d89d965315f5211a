package qbittorrent

import (
	"context"
	"errors"
	"testing"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/transmission-rest/status"
)

// mockAPI implements torrentAPI for testing
type mockAPI struct {
	torrents    []qbittorrent.Torrent
	prefs       qbittorrent.AppPreferences
	torrentErrs []error // returned by successive GetTorrentsCtx calls
	prefsErr    error
	loginErr    error

	loginCalls   int
	torrentCalls int
}

func (m *mockAPI) LoginCtx(ctx context.Context) error {
	m.loginCalls++
	return m.loginErr
}

func (m *mockAPI) GetTorrentsCtx(ctx context.Context, o qbittorrent.TorrentFilterOptions) ([]qbittorrent.Torrent, error) {
	call := m.torrentCalls
	m.torrentCalls++
	if call < len(m.torrentErrs) && m.torrentErrs[call] != nil {
		return nil, m.torrentErrs[call]
	}
	return m.torrents, nil
}

func (m *mockAPI) GetAppPreferencesCtx(ctx context.Context) (qbittorrent.AppPreferences, error) {
	return m.prefs, m.prefsErr
}

func TestSlotsOrderAndRendering(t *testing.T) {
	api := &mockAPI{
		torrents: []qbittorrent.Torrent{
			{
				Name:     "second added",
				AddedOn:  200,
				State:    "downloading",
				Size:     2_000_000_000,
				Progress: 0.5,
				ETA:      7200,
				DlSpeed:  1_250_000,
				UpSpeed:  0,
				Ratio:    0.123,
			},
			{
				Name:     "first added",
				AddedOn:  100,
				State:    "uploading",
				Size:     3_610_000_000,
				Progress: 1,
				ETA:      etaInfinity,
				UpSpeed:  42_000,
				Ratio:    2.5,
			},
			{
				Name:    "broken",
				AddedOn: 300,
				State:   "missingFiles",
				Size:    0,
				Ratio:   -1,
			},
		},
	}

	client := newClient(api, "http://localhost:8080", zerolog.Nop())
	assert.Equal(t, "qbittorrent", client.Name())

	slots, err := client.Slots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 3)

	assert.Equal(t, status.Slot{
		ID:     "1",
		Done:   "100%",
		Have:   "3.61 GB",
		ETA:    "Done",
		Up:     "42.0",
		Down:   "0.0",
		Ratio:  "2.50",
		Status: "Seeding",
		Name:   "first added",
	}, slots[0])

	assert.Equal(t, status.Slot{
		ID:     "2",
		Done:   "50%",
		Have:   "1.00 GB",
		ETA:    "2 hrs",
		Up:     "0.0",
		Down:   "1250.0",
		Ratio:  "0.12",
		Status: "Downloading",
		Name:   "second added",
	}, slots[1])

	assert.Equal(t, status.SlotID("3*"), slots[2].ID)
	assert.Equal(t, "n/a", slots[2].Done)
	assert.Equal(t, "None", slots[2].Have)
	assert.Equal(t, "None", slots[2].Ratio)
	assert.Equal(t, "Stopped", slots[2].Status)

	assert.Equal(t, 0, api.loginCalls)
}

func TestSlotsReloginOnce(t *testing.T) {
	api := &mockAPI{
		torrents:    []qbittorrent.Torrent{{Name: "x", Size: 1, Progress: 1}},
		torrentErrs: []error{errors.New("403 forbidden")},
	}

	slots, err := newClient(api, "", zerolog.Nop()).Slots(context.Background())
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, 1, api.loginCalls)
	assert.Equal(t, 2, api.torrentCalls)
}

func TestSlotsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		api  *mockAPI
	}{
		{
			name: "login fails",
			api: &mockAPI{
				torrentErrs: []error{errors.New("connection refused")},
				loginErr:    errors.New("connection refused"),
			},
		},
		{
			name: "retry fails",
			api: &mockAPI{
				torrentErrs: []error{errors.New("403"), errors.New("500")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newClient(tt.api, "", zerolog.Nop()).Slots(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, status.ErrSourceUnavailable)

			var srcErr *status.SourceError
			require.ErrorAs(t, err, &srcErr)
			assert.Equal(t, MessageUnreachable, srcErr.Message)
		})
	}
}

func TestSlotsTimeout(t *testing.T) {
	api := &mockAPI{
		torrentErrs: []error{context.DeadlineExceeded},
		loginErr:    context.DeadlineExceeded,
	}

	_, err := newClient(api, "", zerolog.Nop()).Slots(context.Background())
	assert.ErrorIs(t, err, status.ErrSourceTimeout)
}

func TestMaxRatio(t *testing.T) {
	tests := []struct {
		name string
		api  *mockAPI
		want float64
	}{
		{
			name: "enabled",
			api:  &mockAPI{prefs: qbittorrent.AppPreferences{MaxRatio: 2.5, MaxRatioEnabled: true}},
			want: 2.5,
		},
		{
			name: "disabled",
			api:  &mockAPI{prefs: qbittorrent.AppPreferences{MaxRatio: 2.5, MaxRatioEnabled: false}},
			want: status.UnknownRatio,
		},
		{
			name: "unreachable",
			api:  &mockAPI{prefsErr: errors.New("connection refused"), loginErr: errors.New("connection refused")},
			want: status.UnknownRatio,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newClient(tt.api, "", zerolog.Nop()).MaxRatio(context.Background())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "None"},
		{512, "512 B"},
		{1_500, "1.50 kB"},
		{250_000_000, "250.0 MB"},
		{20_680_000_000, "20.68 GB"},
		{1_200_000_000_000_000, "1200 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSize(tt.bytes))
		})
	}
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "Done", formatETA(1, 0))
	assert.Equal(t, "Unknown", formatETA(0.5, 0))
	assert.Equal(t, "Unknown", formatETA(0.5, etaInfinity))
	assert.Equal(t, "45 sec", formatETA(0.5, 45))
	assert.Equal(t, "12 min", formatETA(0.5, 12*60+5))
	assert.Equal(t, "3 hrs", formatETA(0.5, 3*3600))
	assert.Equal(t, "2 days", formatETA(0.5, 2*86400+10))
}

func TestStatusWord(t *testing.T) {
	assert.Equal(t, "Up & Down", statusWord("downloading", 10, 10))
	assert.Equal(t, "Downloading", statusWord("forcedDL", 10, 0))
	assert.Equal(t, "Idle", statusWord("stalledUP", 0, 0))
	assert.Equal(t, "Queued", statusWord("queuedDL", 0, 0))
	assert.Equal(t, "Verifying", statusWord("checkingResumeData", 0, 0))
	assert.Equal(t, "Unknown", statusWord("somethingNew", 0, 0))
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "None", formatRatio(-1))
	assert.Equal(t, "0.51", formatRatio(0.514))
	assert.Equal(t, "12.3", formatRatio(12.34))
	assert.Equal(t, "150", formatRatio(150.2))
}
