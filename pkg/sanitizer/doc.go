// Package sanitizer normalizes free-form request fields before validation.
//
// All functions are idempotent and never fail: invalid input collapses to an
// empty string, which validation then rejects where a value is required.
package sanitizer
