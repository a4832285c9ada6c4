package rtc

import (
	"net"
	"strings"
)

var (
	_, cgnatBlock, _ = net.ParseCIDR("100.64.0.0/10")

	tunnelMarkers = []string{"tun", "tap", "wg", "ppp", "warp"}
)

// ShouldForceRelay reports whether the host looks like it sits behind a VPN
// or carrier grade NAT, where direct media paths usually fail.
func ShouldForceRelay() bool {
	interfaces, err := net.Interfaces()
	if err != nil {
		return false
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		var ips []net.IP
		if addrs, err := iface.Addrs(); err == nil {
			for _, addr := range addrs {
				switch v := addr.(type) {
				case *net.IPNet:
					ips = append(ips, v.IP)
				case *net.IPAddr:
					ips = append(ips, v.IP)
				}
			}
		}

		if looksTunneled(iface.Name, ips) {
			return true
		}
	}
	return false
}

// looksTunneled matches VPN interface names and CGNAT addresses.
func looksTunneled(name string, ips []net.IP) bool {
	name = strings.ToLower(name)
	for _, marker := range tunnelMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	for _, ip := range ips {
		if cgnatBlock.Contains(ip) {
			return true
		}
	}
	return false
}
