// Package egress decides how trafficgen's requests leave the host.
//
// By default requests go out directly. A SOCKS5 proxy can be configured,
// typically a local Tor daemon, or a private Tor daemon can be started with
// tornago so generated traffic is mixed into the Tor network. Root URLs on
// .onion hosts are checked here too: they need a proxy and a well-formed
// v3 address.
//
// Open returns a Route holding the HTTP client for the run; Close releases
// the embedded daemon if one was started.
package egress
