// Package carrier holds the per-carrier pricing configuration read by the
// rate calculator and edited by administrators.
//
// A Config is an immutable value. Administrators change it field by field
// through the With* setters (or Apply for a partial update); bulk saves go
// through Coerce, which falls back to the carrier defaults for any missing
// or unusable number. Defaults returns the bootstrap set for the supported
// carriers.
package carrier
