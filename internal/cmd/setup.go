package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/maxerenberg/backlight-dbus/internal/config"
	"github.com/maxerenberg/backlight-dbus/internal/fade"
	"github.com/maxerenberg/backlight-dbus/pkg/backlight"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Device     string `yaml:"device,omitempty"`
	Session    string `yaml:"session,omitempty"`
	IntervalMS int    `yaml:"interval_ms"`
	Verbose    bool   `yaml:"verbose"`
}

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Generate or update the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Path()
		if path == "" {
			return fmt.Errorf("cannot determine user config directory")
		}
		reader := bufio.NewReader(os.Stdin)
		if _, err := os.Stat(path); err == nil {
			if !confirm(reader, fmt.Sprintf("%s already exists. Overwrite?", path)) {
				return nil
			}
		}

		defaultDevice, _ := backlight.New().Discover()

		conf := fileConfig{}
		conf.Device = prompt(reader, "Backlight device", defaultDevice)
		conf.Session = prompt(reader, "Session ID (empty to auto-detect)", "")
		interval := prompt(reader, "Fade poll interval in ms",
			strconv.Itoa(int(fade.DefaultInterval.Milliseconds())))
		ms, err := strconv.Atoi(interval)
		if err != nil || ms <= 0 {
			return fmt.Errorf("invalid interval %q", interval)
		}
		conf.IntervalMS = ms

		d, err := yaml.Marshal(&conf)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, d, 0644); err != nil {
			return err
		}
		fmt.Println("Wrote", path)
		return nil
	},
}

func prompt(r *bufio.Reader, label, defaultValue string) string {
	fmt.Printf("%s [%s]: ", label, defaultValue)
	input, _ := r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}
	return input
}

func confirm(r *bufio.Reader, message string) bool {
	fmt.Printf("%s (y/N): ", message)
	input, _ := r.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}
