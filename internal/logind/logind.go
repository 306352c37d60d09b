// Package logind talks to systemd-logind over the system bus. Going
// through logind means no root privileges are needed to change the
// backlight, only an active session.
package logind

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/godbus/dbus/v5"
)

const (
	busName      = "org.freedesktop.login1"
	managerPath  = "/org/freedesktop/login1"
	managerIface = "org.freedesktop.login1.Manager"
	sessionIface = "org.freedesktop.login1.Session"
)

// ErrNoSession is returned when no session can be found for the
// invoking user.
var ErrNoSession = errors.New("no login session found")

// Conn wraps a system bus connection to logind.
type Conn struct {
	bus *dbus.Conn
}

func Connect() (*Conn, error) {
	bus, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	return &Conn{bus: bus}, nil
}

func (c *Conn) Close() error {
	return c.bus.Close()
}

// CurrentSessionID resolves the caller's session ID: $XDG_SESSION_ID
// when set, otherwise the invoking user's first seated session.
func (c *Conn) CurrentSessionID() (string, error) {
	if id := os.Getenv("XDG_SESSION_ID"); id != "" {
		return id, nil
	}
	slog.Debug("XDG_SESSION_ID not set, listing sessions instead")

	obj := c.bus.Object(busName, managerPath)
	var sessions []struct {
		ID   string
		UID  uint32
		User string
		Seat string
		Path dbus.ObjectPath
	}
	if err := obj.Call(managerIface+".ListSessions", 0).Store(&sessions); err != nil {
		return "", fmt.Errorf("list sessions: %w", err)
	}
	uid := uint32(os.Getuid())
	for _, s := range sessions {
		if s.UID == uid && s.Seat != "" {
			return s.ID, nil
		}
	}
	return "", fmt.Errorf("%w for uid %d", ErrNoSession, uid)
}

// SessionPath resolves the D-Bus object path for a session ID.
func (c *Conn) SessionPath(id string) (dbus.ObjectPath, error) {
	obj := c.bus.Object(busName, managerPath)
	var path dbus.ObjectPath
	if err := obj.Call(managerIface+".GetSession", 0, id).Store(&path); err != nil {
		return "", fmt.Errorf("get session %s: %w", id, err)
	}
	return path, nil
}
