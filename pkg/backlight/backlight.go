// Package backlight reads backlight devices exposed under sysfs.
package backlight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSysfsDir is where the kernel exposes backlight devices.
const DefaultSysfsDir = "/sys/class/backlight"

// ErrNoDevice is returned when no backlight device can be discovered.
var ErrNoDevice = errors.New("no backlight device found")

// Levels holds the current and maximum brightness of a device.
type Levels struct {
	Current int
	Max     int
}

// Sysfs reads backlight devices rooted at Dir.
type Sysfs struct {
	Dir string
}

func New() *Sysfs {
	return &Sysfs{Dir: DefaultSysfsDir}
}

// Discover returns the name of the first non-hidden backlight device.
func (s *Sysfs) Discover() (string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", s.Dir, err)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			return e.Name(), nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoDevice, s.Dir)
}

// Levels reads the current and maximum brightness of a named device.
func (s *Sysfs) Levels(device string) (Levels, error) {
	dir := filepath.Join(s.Dir, device)
	current, err := readInt(filepath.Join(dir, "brightness"))
	if err != nil {
		return Levels{}, err
	}
	max, err := readInt(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return Levels{}, err
	}
	if max <= 0 || current < 0 || current > max {
		return Levels{}, fmt.Errorf("device %s reports invalid levels %d/%d", device, current, max)
	}
	return Levels{Current: current, Max: max}, nil
}

func readInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("read value from %s: %w", path, err)
	}
	return v, nil
}
