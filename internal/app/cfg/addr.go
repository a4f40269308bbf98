// Package cfg implements functionaltiy to configure an app.
//
// The configuration objects defined here need only be implemented once,
// but can be applied to multiple types.
//
// In order to add support for a new type, the configuration
// need only implement an ApplyX method.
//
package cfg

import (
	"net"
	"strconv"
	"strings"

	"github.com/suve19/np-assignment1b/internal/app/apps"

	"github.com/pkg/errors"
)

// AddrCfg is configuration for the server address.
type AddrCfg struct {
	addr string
}

// NewAddrCfg creates a new AddrCfg from a host:port string.
func NewAddrCfg(addr string) *AddrCfg {
	return &AddrCfg{
		addr: addr,
	}
}

// AddrFromArgs creates a new AddrCfg from positional arguments, either
// "host:port" or "host" "port".
func AddrFromArgs(args []string) (*AddrCfg, error) {
	var host, port string
	switch len(args) {
	case 1:
		var err error
		host, port, err = net.SplitHostPort(args[0])
		if err != nil {
			return nil, errors.Wrapf(err, "parse address %q failed", args[0])
		}
	case 2:
		host, port = strings.Trim(args[0], "[]"), args[1]
	default:
		return nil, errors.Errorf("expected host:port or host port, got %d arguments", len(args))
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil || p == 0 {
		return nil, errors.Errorf("invalid port %q", port)
	}
	return NewAddrCfg(net.JoinHostPort(host, port)), nil
}

// ApplyClientApp applies the AddrCfg to a ClientApp.
func (cfg AddrCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Addr = cfg.addr
	return nil
}

// ApplyServerApp applies the AddrCfg to a ServerApp.
func (cfg AddrCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.Addr = cfg.addr
	return nil
}
