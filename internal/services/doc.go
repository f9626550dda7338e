// Package services defines shared utilities consumed by the scan session and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers, recognition request
//     tokens, and operator actions for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified (transport vs configuration vs validation) at the point of the
//     operator action that triggered them.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform.
package services
