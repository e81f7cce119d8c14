package utils

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"

	"webscan/pkg/models"
)

// maxHostBits caps how large a single range may be (2^20 addresses)
const maxHostBits = 20

var (
	errRangeTooLarge = fmt.Errorf("range larger than 2^%d addresses", maxHostBits)
	errBadPort       = errors.New("port must be between 1 and 65535")
)

// GenerateIPs generates the usable host addresses of a CIDR block.
//
// For IPv4 the network and broadcast addresses are skipped unless the prefix
// is /31 or /32. For IPv6 only the subnet-router address is skipped, unless
// the prefix is /127 or /128.
func GenerateIPs(network string) ([]string, error) {
	network = strings.TrimSpace(network)
	prefix, err := netip.ParsePrefix(network)
	if err != nil {
		return nil, &models.ConfigurationError{Field: "range", Value: network, Err: err}
	}
	prefix = prefix.Masked()

	hostBits := prefix.Addr().BitLen() - prefix.Bits()
	if hostBits > maxHostBits {
		return nil, &models.ConfigurationError{Field: "range", Value: network, Err: errRangeTooLarge}
	}

	first := prefix.Addr()
	last := netipx.PrefixLastIP(prefix)

	if prefix.Addr().Is4() {
		if hostBits >= 2 {
			first = first.Next()
			last = last.Prev()
		}
	} else if hostBits >= 2 {
		first = first.Next()
	}

	ips := make([]string, 0, 1<<hostBits)
	for ip := range rangeAddrs(netipx.IPRangeFrom(first, last)) {
		ips = append(ips, ip.String())
	}

	return ips, nil
}

// rangeAddrs yields every address of r in ascending order
func rangeAddrs(r netipx.IPRange) func(yield func(netip.Addr) bool) {
	return func(yield func(netip.Addr) bool) {
		if !r.IsValid() {
			return
		}
		for ip := r.From(); ip.IsValid() && ip.Compare(r.To()) <= 0; ip = ip.Next() {
			if !yield(ip) {
				return
			}
		}
	}
}

// ParsePortRange parses a port list such as "80,443" or "8000-8010" (or a mix
// of both) into a slice of port numbers, keeping the given order.
func ParsePortRange(portRange string) ([]int, error) {
	var ports []int

	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			// Range format: 1-1000
			start, err := parsePort(lo)
			if err != nil {
				return nil, err
			}
			end, err := parsePort(hi)
			if err != nil {
				return nil, err
			}
			if start > end {
				return nil, &models.ConfigurationError{
					Field: "port range",
					Value: part,
					Err:   errors.New("start is greater than end"),
				}
			}
			for i := start; i <= end; i++ {
				ports = append(ports, i)
			}
			continue
		}

		port, err := parsePort(part)
		if err != nil {
			return nil, err
		}
		ports = append(ports, port)
	}

	if len(ports) == 0 {
		return nil, &models.ConfigurationError{Field: "ports", Value: portRange, Err: errors.New("no ports given")}
	}

	return ports, nil
}

func parsePort(s string) (int, error) {
	s = strings.TrimSpace(s)
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, &models.ConfigurationError{Field: "port", Value: s, Err: err}
	}
	if err := ValidatePort(port); err != nil {
		return 0, err
	}
	return port, nil
}

// ValidatePort checks that port is a usable TCP port number
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return &models.ConfigurationError{Field: "port", Value: strconv.Itoa(port), Err: errBadPort}
	}
	return nil
}
