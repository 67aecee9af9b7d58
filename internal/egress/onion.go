package egress

import (
	"encoding/base32"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// onionSuffix ends every onion host name.
	onionSuffix = ".onion"

	// onionV3Version is the version byte of v3 addresses.
	onionV3Version = 0x03
)

var (
	onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)
	onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)
)

// checksumPrefix is prepended to the key when computing a v3 checksum.
var checksumPrefix = []byte(".onion checksum")

// IsOnionHost reports whether host (without port) is in the .onion domain.
// Subdomains of an onion service count too.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), onionSuffix)
}

// IsValidV3Address reports whether address is a v3 onion host with a correct
// checksum and version byte.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(strings.TrimSuffix(address, onionSuffix)))
	if err != nil || len(decoded) != 35 {
		return false
	}

	// pubkey (32) | checksum (2) | version (1)
	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]
	if version != onionV3Version {
		return false
	}

	expected := v3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// v3Checksum is the first two bytes of SHA3-256(".onion checksum" | pubkey | version).
func v3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}

// CheckRoots verifies the .onion root URLs. They are only reachable through
// a proxy, and their host must be a valid v3 address. Subdomains are
// validated on their last two labels. Other roots are not inspected.
func CheckRoots(roots []string, proxied bool) error {
	for _, raw := range roots {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if !IsOnionHost(host) {
			continue
		}

		if !proxied {
			return fmt.Errorf("%w: %s", ErrOnionWithoutProxy, raw)
		}

		service := serviceName(host)
		if IsValidV3Address(service) {
			continue
		}
		if onionV2Pattern.MatchString(service) {
			return fmt.Errorf("%w: %s", ErrV2AddressDeprecated, raw)
		}
		return fmt.Errorf("%w: %s", ErrInvalidOnionAddress, raw)
	}
	return nil
}

// serviceName strips subdomains: "www.<addr>.onion" becomes "<addr>.onion".
func serviceName(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
