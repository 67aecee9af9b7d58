// Package model defines the data structures shared by the run history and
// the report writers.
//
// RunSummary is kept in its own package so that history and report can both
// use it without importing each other. It is serializable to JSON and holds
// totals only; visited URLs are never recorded.
package model
