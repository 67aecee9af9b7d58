// Package main provides the entry point for the trafficgen CLI.
//
// trafficgen produces random HTTP and HTTPS browsing noise: it starts at a
// random root URL, follows a random link on every page for a random number
// of hops, pauses between requests and starts over, until interrupted.
//
// Usage:
//
//	trafficgen trafficgen.yaml
//	trafficgen init
//	trafficgen history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
