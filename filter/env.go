package filter

import (
	"maps"
	"strconv"
	"strings"

	"github.com/s0up4200/transmission-rest/status"
)

// createEnvironment exposes a slot and its helpers to an expression
func createEnvironment(slot status.Slot, extra map[string]any) map[string]any {
	env := make(map[string]any, 32)
	addHelperFunctions(env)

	// Slot columns, as printed by the client
	env["Slot"] = string(slot.ID)
	env["Done"] = slot.Done
	env["Have"] = slot.Have
	env["ETA"] = slot.ETA
	env["Up"] = slot.Up
	env["Down"] = slot.Down
	env["Ratio"] = slot.Ratio
	env["Status"] = slot.Status
	env["Name"] = slot.Name

	env["ratio"] = func() float64 { return parseNumber(slot.Ratio) }
	env["percentDone"] = func() float64 { return parseNumber(strings.TrimSuffix(slot.Done, "%")) }
	env["upRate"] = func() float64 { return parseNumber(slot.Up) }
	env["downRate"] = func() float64 { return parseNumber(slot.Down) }
	env["hasStatus"] = func(s string) bool { return strings.EqualFold(slot.Status, s) }
	env["isSeeding"] = func() bool { return strings.EqualFold(slot.Status, "Seeding") }
	env["isIdle"] = func() bool { return strings.EqualFold(slot.Status, "Idle") }
	env["isStopped"] = func() bool { return strings.EqualFold(slot.Status, "Stopped") }
	env["isDownloading"] = func() bool {
		return strings.EqualFold(slot.Status, "Downloading") || strings.EqualFold(slot.Status, "Up & Down")
	}
	env["aboveRatio"] = func(limit float64) bool { return parseNumber(slot.Ratio) >= limit }

	maps.Copy(env, extra)
	return env
}

// addHelperFunctions adds the slot independent helpers. contains, startsWith
// and endsWith are expr operators and stay case sensitive; the Fold variants
// ignore case.
func addHelperFunctions(env map[string]any) {
	env["containsFold"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["hasPrefixFold"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["hasSuffixFold"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
}

// parseNumber reads a display number; "None", "n/a" and blanks are 0.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
