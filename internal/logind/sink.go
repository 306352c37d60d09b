package logind

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// Sink commits brightness values through a session's SetBrightness
// call. It satisfies fade.Sink.
type Sink struct {
	conn   *Conn
	path   dbus.ObjectPath
	device string
}

// Sink returns a committer for the backlight device owned by the
// session at path.
func (c *Conn) Sink(path dbus.ObjectPath, device string) *Sink {
	return &Sink{conn: c, path: path, device: device}
}

// Apply commits a single brightness value. logind verifies that the
// caller owns the session.
func (s *Sink) Apply(brightness int) error {
	slog.Debug("applying brightness", "device", s.device, "value", brightness)
	obj := s.conn.bus.Object(busName, s.path)
	call := obj.Call(sessionIface+".SetBrightness", 0, "backlight", s.device, uint32(brightness))
	if call.Err != nil {
		return fmt.Errorf("set brightness on %s: %w", s.device, call.Err)
	}
	return nil
}
