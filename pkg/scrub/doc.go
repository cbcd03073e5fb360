// Package scrub normalizes mail thread text before it is embedded in a
// prompt.
//
// Formatting removes HTML tags and collapses blank-line runs; Links shortens
// every http(s) URL to its host. Text applies both in that order. All
// functions are pure and safe for concurrent use.
package scrub
