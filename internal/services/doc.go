// Package services defines shared utilities consumed by the pipeline stages and
// the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and chunk identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (bad input vs. broken environment) with errors.Is.
//
// Core packages return these markers directly; the CLI maps them to exit codes
// through ExitCode.
package services
