package status

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Document types.
const (
	TypeStatus = "status"
	TypeError  = "error"
)

// UnknownRatio is the maxratio value reported when no ratio limit is configured.
const UnknownRatio = 0.0

// SlotID is the slot column as printed by the client. It is usually a number but
// may carry a marker, e.g. "7*" for a torrent in error.
type SlotID string

// MarshalJSON writes plain integers as JSON numbers and everything else as strings.
func (id SlotID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(string(id)), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *SlotID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SlotID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid slot id %s: %w", data, err)
	}
	*id = SlotID(n.String())
	return nil
}

// Slot is one row of the client's listing. All values are display strings
// exactly as the client printed them.
type Slot struct {
	ID     SlotID `json:"slot"`
	Done   string `json:"done"`
	Have   string `json:"have"`
	ETA    string `json:"eta"`
	Up     string `json:"up"`
	Down   string `json:"down"`
	Ratio  string `json:"ratio"`
	Status string `json:"status"`
	Name   string `json:"name"`
}

// Document is the response body of the status endpoint.
type Document struct {
	Type     string  `json:"type"`
	Slots    []Slot  `json:"slots,omitempty"`
	Count    int     `json:"count,omitempty"`
	MaxRatio float64 `json:"maxratio"`
	Data     string  `json:"data,omitempty"`
}

type statusPayload struct {
	Type     string  `json:"type"`
	Slots    []Slot  `json:"slots"`
	Count    int     `json:"count"`
	MaxRatio float64 `json:"maxratio"`
}

type errorPayload struct {
	Type     string  `json:"type"`
	Data     string  `json:"data"`
	MaxRatio float64 `json:"maxratio"`
}

// NewStatusDocument builds a status document over slots.
func NewStatusDocument(slots []Slot, maxRatio float64) Document {
	if slots == nil {
		slots = []Slot{}
	}
	return Document{
		Type:     TypeStatus,
		Slots:    slots,
		Count:    len(slots),
		MaxRatio: maxRatio,
	}
}

// NewErrorDocument builds an error document carrying message.
func NewErrorDocument(message string, maxRatio float64) Document {
	return Document{
		Type:     TypeError,
		Data:     message,
		MaxRatio: maxRatio,
	}
}

// IsError reports whether the document is an error document
func (d Document) IsError() bool {
	return d.Type == TypeError
}

// Filter returns a status document holding only the slots keep accepts, in
// their original order. Error documents are returned unchanged.
func (d Document) Filter(keep func(Slot) bool) Document {
	if d.IsError() || keep == nil {
		return d
	}
	kept := make([]Slot, 0, len(d.Slots))
	for _, slot := range d.Slots {
		if keep(slot) {
			kept = append(kept, slot)
		}
	}
	return NewStatusDocument(kept, d.MaxRatio)
}

// MarshalJSON emits only the fields that belong to the document type.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.IsError() {
		return json.Marshal(errorPayload{
			Type:     TypeError,
			Data:     d.Data,
			MaxRatio: d.MaxRatio,
		})
	}

	slots := d.Slots
	if slots == nil {
		slots = []Slot{}
	}
	return json.Marshal(statusPayload{
		Type:     TypeStatus,
		Slots:    slots,
		Count:    len(slots),
		MaxRatio: d.MaxRatio,
	})
}
