package qbittorrent

import (
	"fmt"
	"math"
	"strconv"

	"github.com/autobrr/go-qbittorrent"

	"github.com/s0up4200/transmission-rest/status"
)

// etaInfinity is the ETA qBittorrent reports when it cannot estimate one.
const etaInfinity = 8640000

// toSlot renders a torrent as a transmission-remote listing row
func toSlot(id int, t qbittorrent.Torrent) status.Slot {
	state := string(t.State)

	slotID := strconv.Itoa(id)
	if state == "error" || state == "missingFiles" {
		slotID += "*"
	}

	return status.Slot{
		ID:     status.SlotID(slotID),
		Done:   formatDone(t.Size, t.Progress),
		Have:   formatSize(int64(float64(t.Size) * t.Progress)),
		ETA:    formatETA(t.Progress, t.ETA),
		Up:     formatSpeed(t.UpSpeed),
		Down:   formatSpeed(t.DlSpeed),
		Ratio:  formatRatio(t.Ratio),
		Status: statusWord(state, t.DlSpeed, t.UpSpeed),
		Name:   t.Name,
	}
}

func formatDone(size int64, progress float64) string {
	if size <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d%%", int(math.Floor(progress*100)))
}

// formatSize prints a byte count with decimal units like transmission-remote
func formatSize(bytes int64) string {
	if bytes <= 0 {
		return "None"
	}
	if bytes < 1000 {
		return fmt.Sprintf("%d B", bytes)
	}

	units := []string{"kB", "MB", "GB", "TB"}
	value := float64(bytes)
	unit := ""
	for _, u := range units {
		value /= 1000
		unit = u
		if value < 1000 {
			break
		}
	}

	switch {
	case value < 100:
		return fmt.Sprintf("%.2f %s", value, unit)
	case value < 1000:
		return fmt.Sprintf("%.1f %s", value, unit)
	default:
		return fmt.Sprintf("%.0f %s", value, unit)
	}
}

func formatETA(progress float64, eta int64) string {
	if progress >= 1 {
		return "Done"
	}
	if eta <= 0 || eta >= etaInfinity {
		return "Unknown"
	}

	switch {
	case eta < 60:
		return fmt.Sprintf("%d sec", eta)
	case eta < 3600:
		return fmt.Sprintf("%d min", eta/60)
	case eta < 86400:
		return fmt.Sprintf("%d hrs", eta/3600)
	default:
		return fmt.Sprintf("%d days", eta/86400)
	}
}

// formatSpeed prints a rate in kB/s with one decimal
func formatSpeed(bytesPerSecond int64) string {
	return fmt.Sprintf("%.1f", float64(bytesPerSecond)/1000)
}

func formatRatio(ratio float64) string {
	switch {
	case ratio < 0:
		return "None"
	case ratio < 10:
		return fmt.Sprintf("%.2f", ratio)
	case ratio < 100:
		return fmt.Sprintf("%.1f", ratio)
	default:
		return fmt.Sprintf("%.0f", ratio)
	}
}

// statusWord maps a qBittorrent state to the word transmission-remote prints
func statusWord(state string, down, up int64) string {
	switch state {
	case "downloading", "forcedDL", "metaDL", "forcedMetaDL":
		if up > 0 && down > 0 {
			return "Up & Down"
		}
		return "Downloading"
	case "uploading", "forcedUP":
		return "Seeding"
	case "stalledUP", "stalledDL":
		return "Idle"
	case "pausedUP", "pausedDL", "stoppedUP", "stoppedDL", "error", "missingFiles":
		return "Stopped"
	case "queuedUP", "queuedDL":
		return "Queued"
	case "checkingUP", "checkingDL", "checkingResumeData":
		return "Verifying"
	case "moving":
		return "Moving"
	default:
		return "Unknown"
	}
}
