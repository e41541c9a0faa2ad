// Package forcefield declares the Gay-Berne force-field description and
// its validator.
//
// A [GayBerneForce] is a plain mutable value: per-particle ellipsoid
// parameters, pairwise exception overrides, and the nonbonded truncation
// policy. Nothing checks values as they are set; [Validate] checks the
// whole description against the enclosing system in one pass and reports
// the first broken invariant as a [Violation].
//
// Validation order is part of the contract: independent implementations
// validating the same invalid description must report the same first
// violation, so diagnostics are reproducible.
package forcefield
