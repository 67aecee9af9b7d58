// Package config provides configuration structures and utilities for trafficgen.
// It defines the root URLs to browse, traversal depth and pause bounds,
// request settings, egress routing and run history preferences.
package config
