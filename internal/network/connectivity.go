package network

import (
	"net"

	"github.com/fakhrymubarak/moonshine/internal/config"
)

// Checker reports whether the host has a usable network connection.
type Checker interface {
	IsNetworkAvailable() bool
}

// Interface is the part of a network interface the check looks at.
type Interface struct {
	Name     string
	Up       bool
	Loopback bool
	Addrs    int
}

// InterfaceChecker considers the network available when at least one
// non-loopback interface is up and has an address.
type InterfaceChecker struct {
	list func() ([]Interface, error)
}

func NewInterfaceChecker(list ...func() ([]Interface, error)) *InterfaceChecker {
	fn := systemInterfaces
	if len(list) > 0 && list[0] != nil {
		fn = list[0]
	}
	return &InterfaceChecker{list: fn}
}

func (c *InterfaceChecker) IsNetworkAvailable() bool {
	ifaces, err := c.list()
	if err != nil {
		config.GetLogger().Warnw("Could not list network interfaces", "error", err)
		return false
	}
	for _, iface := range ifaces {
		if iface.Up && !iface.Loopback && iface.Addrs > 0 {
			return true
		}
	}
	return false
}

func systemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		out = append(out, Interface{
			Name:     iface.Name,
			Up:       iface.Flags&net.FlagUp != 0,
			Loopback: iface.Flags&net.FlagLoopback != 0,
			Addrs:    len(addrs),
		})
	}
	return out, nil
}

// Static is a Checker with a fixed answer.
type Static bool

func (s Static) IsNetworkAvailable() bool { return bool(s) }

// NewChecker returns the checker selected by configuration.
func NewChecker() Checker {
	if config.AssumeOnline() {
		return Static(true)
	}
	return NewInterfaceChecker()
}
