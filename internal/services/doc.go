// Package services defines shared utilities consumed by the batch pipeline
// stages and the external tool integration.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, archive names, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (configuration vs external tool vs validation) consistently.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
