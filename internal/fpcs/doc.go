// Package fpcs describes permission schedules: for every program location,
// the ordered repack operations (Expand, Collapse, Weaken) that move
// capabilities between places before the location's effect is encoded.
//
// The schedule is computed by an upstream analysis and consumed here as an
// oracle. Table is an in-memory schedule keyed by location and phase.
package fpcs
