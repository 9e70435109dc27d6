// Package model defines shared data types for the historical bar pipeline.
//
// Conventions:
//   - Timestamps: int64 milliseconds since Unix epoch, UTC
//   - Ranges: half-open intervals [Start, End)
//   - Prices/volume: float64, matching the upstream provider payloads
package model
