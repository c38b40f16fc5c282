package link

import (
	"fmt"
	"os/exec"
	"strings"
)

// NMDriver drives the wireless interface through NetworkManager's nmcli and
// systemd-resolved's resolvectl, the stacks present on the target image.
// NetworkManager keeps the connection profile and re-associates on its own
// after transient drops, which is the auto-reconnect behavior steady state
// relies on.
type NMDriver struct {
	iface string

	// run is swapped out in tests.
	run func(name string, args ...string) ([]byte, error)
}

func NewNMDriver(iface string) *NMDriver {
	return &NMDriver{
		iface: iface,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}
}

func (d *NMDriver) Associate(ssid, password string) error {
	args := []string{"device", "wifi", "connect", ssid, "ifname", d.iface}
	if password != "" {
		args = append(args, "password", password)
	}
	out, err := d.run("nmcli", args...)
	if err != nil {
		return fmt.Errorf("nmcli connect: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (d *NMDriver) IsUp() bool {
	out, err := d.run("nmcli", "-g", "GENERAL.STATE", "device", "show", d.iface)
	if err != nil {
		return false
	}
	// nmcli prints e.g. "100 (connected)".
	state := strings.TrimSpace(string(out))
	return strings.Contains(state, "(connected)")
}

func (d *NMDriver) ConfigureResolver(servers ...string) error {
	args := append([]string{"dns", d.iface}, servers...)
	out, err := d.run("resolvectl", args...)
	if err != nil {
		return fmt.Errorf("resolvectl dns: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
