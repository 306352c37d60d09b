// Package subscribe delivers kernel uevent notifications for
// backlight devices.
package subscribe

import (
	"fmt"
	"log/slog"
	"strings"
	"syscall"
)

// BacklightEvents opens a netlink uevent socket and signals whenever
// a backlight device reports a change. Closing stop tears the socket
// down.
func BacklightEvents(stop <-chan struct{}) (<-chan struct{}, error) {
	fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_RAW, syscall.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, fmt.Errorf("open netlink socket: %w", err)
	}
	addr := &syscall.SockaddrNetlink{
		Family: syscall.AF_NETLINK,
		Groups: 1, // kernel broadcast uevents
	}
	if err := syscall.Bind(fd, addr); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("bind netlink socket: %w", err)
	}

	events := make(chan struct{}, 1)
	go func() {
		<-stop
		syscall.Close(fd)
	}()
	go func() {
		buf := make([]byte, 4096)
		for {
			n, _, err := syscall.Recvfrom(fd, buf, 0)
			if err != nil {
				select {
				case <-stop:
				default:
					slog.Warn("netlink recv error", "err", err)
				}
				return
			}
			msg := string(buf[:n])
			if strings.Contains(msg, "SUBSYSTEM=backlight") && strings.Contains(msg, "ACTION=change") {
				select {
				case events <- struct{}{}:
				default:
				}
			}
		}
	}()
	return events, nil
}
