package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maxerenberg/backlight-dbus/internal/config"
	"github.com/maxerenberg/backlight-dbus/internal/subscribe"
	"github.com/maxerenberg/backlight-dbus/pkg/backlight"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print brightness levels as they change",
	Long: `Watch subscribes to kernel backlight uevents and prints
"<current> <max>" whenever the device changes, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		sysfs := backlight.New()

		device, err := resolveDevice(sysfs)
		if err != nil {
			return err
		}
		slog.Debug("watching device", "name", device)

		// Pick up a device switch when the config file is edited.
		deviceCh := make(chan string, 1)
		config.Watch(func() {
			if flagDevice != "" {
				return
			}
			if d := cfg.GetString(config.KeyDevice); d != "" {
				select {
				case deviceCh <- d:
				default:
				}
			}
		})

		printLevels := func() {
			levels, err := sysfs.Levels(device)
			if err != nil {
				slog.Warn("cannot read levels", "device", device, "err", err)
				return
			}
			fmt.Printf("%d %d\n", levels.Current, levels.Max)
		}
		printLevels()

		stop := make(chan struct{})
		defer close(stop)
		events, err := subscribe.BacklightEvents(stop)
		if err != nil {
			return err
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)
		for {
			select {
			case <-sigs:
				return nil
			case d := <-deviceCh:
				if d != device {
					device = d
					slog.Debug("switched device", "name", device)
					printLevels()
				}
			case <-events:
				printLevels()
			}
		}
	},
}
