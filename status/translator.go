package status

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Source produces the current slot listing of a torrent client.
type Source interface {
	// Name identifies the source in logs and errors
	Name() string

	// Slots queries the client and returns its slots in listing order
	Slots(ctx context.Context) ([]Slot, error)
}

const genericFailureMessage = "The torrent client status could not be retrieved"

// Translator turns a Source listing into a Document.
type Translator struct {
	source   Source
	maxRatio float64
	logger   zerolog.Logger
}

// NewTranslator creates a translator. maxRatio is fixed for the lifetime of
// the translator; pass UnknownRatio when no limit is configured.
func NewTranslator(source Source, maxRatio float64, logger zerolog.Logger) *Translator {
	return &Translator{
		source:   source,
		maxRatio: maxRatio,
		logger:   logger,
	}
}

// MaxRatio returns the configured ratio threshold
func (t *Translator) MaxRatio() float64 {
	return t.maxRatio
}

// ErrorDocument builds an error document carrying the configured threshold.
func (t *Translator) ErrorDocument(message string) Document {
	return NewErrorDocument(message, t.maxRatio)
}

// Translate queries the source and builds a document. When the source fails
// the returned document is an error document and err describes the failure.
func (t *Translator) Translate(ctx context.Context) (Document, error) {
	slots, err := t.source.Slots(ctx)
	if err != nil {
		message := genericFailureMessage
		var srcErr *SourceError
		if errors.As(err, &srcErr) && srcErr.Message != "" {
			message = srcErr.Message
		}

		t.logger.Warn().
			Err(err).
			Str("source", t.source.Name()).
			Msg("Status query failed")

		return t.ErrorDocument(message), err
	}

	t.logger.Debug().
		Str("source", t.source.Name()).
		Int("count", len(slots)).
		Msg("Translated status listing")

	return NewStatusDocument(slots, t.maxRatio), nil
}
