// Package status holds the status document served by transmission-rest and the
// translator that builds it from a slot source.
//
// A Document is either a status payload (slots, count, maxratio) or an error
// payload (data). Documents are built fresh for every request and never cached.
//
// # Usage
//
//	translator := status.NewTranslator(source, maxRatio, logger)
//	doc, err := translator.Translate(ctx)
//	if errors.Is(err, status.ErrSourceUnavailable) {
//	    // doc is an error document describing the failure
//	}
package status
