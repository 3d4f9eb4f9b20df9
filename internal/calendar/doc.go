// Package calendar projects stored guesses into calendar events.
//
// Projection is pure and recomputed on every call; nothing here is cached or
// persisted.
package calendar
