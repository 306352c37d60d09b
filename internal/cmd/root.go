package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/maxerenberg/backlight-dbus/internal/config"
	"github.com/maxerenberg/backlight-dbus/internal/fade"
	"github.com/maxerenberg/backlight-dbus/internal/logind"
	"github.com/maxerenberg/backlight-dbus/pkg/backlight"
	"github.com/maxerenberg/backlight-dbus/pkg/brightness"
	"github.com/spf13/cobra"
)

var Version = "1.1.0"

var (
	flagDevice  string
	flagSession string
	flagTime    string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:     "backlight-dbus [brightness]",
	Version: Version,
	Short:   "Set display backlight brightness through systemd-logind",
	Long: `backlight-dbus reads backlight levels from sysfs and commits new values
through logind's SetBrightness call, so no root privileges are needed.

Brightness may be absolute (50), relative (+10, -10) or a percentage of
the maximum (75%, -10%). With -t the change fades linearly over the
given number of seconds; interrupting a fade restores the original
level. With no brightness argument the current and maximum levels are
printed.`,
	Args:             cobra.MaximumNArgs(1),
	RunE:             run,
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRun: setupLogging,
}

func Execute() {
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&flagDevice, "device", "d", "", "backlight device name, e.g. intel_backlight")
	rootCmd.Flags().StringVarP(&flagSession, "session", "x", "", "logind session ID for the current user")
	rootCmd.Flags().StringVarP(&flagTime, "time", "t", "", "fade the change over this many seconds")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug output")
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(generateConfigCmd)
}

// normalizeArgs keeps a bare negative brightness argument like "-10"
// or "-25%" from being rejected as an unknown flag.
func normalizeArgs(args []string) []string {
	for i, a := range args {
		if a == "--" {
			return args
		}
		if len(a) >= 2 && a[0] == '-' && a[1] >= '0' && a[1] <= '9' {
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i]...)
			out = append(out, args[i+1:]...)
			return append(out, "--", a)
		}
	}
	return args
}

func setupLogging(cmd *cobra.Command, args []string) {
	level := slog.LevelWarn
	if flagVerbose || config.Load().GetBool(config.KeyVerbose) {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// resolveDevice picks the device from the flag, the config file, or
// sysfs discovery, in that order.
func resolveDevice(sysfs *backlight.Sysfs) (string, error) {
	if flagDevice != "" {
		return flagDevice, nil
	}
	if d := config.Load().GetString(config.KeyDevice); d != "" {
		return d, nil
	}
	return sysfs.Discover()
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	sysfs := backlight.New()

	device, err := resolveDevice(sysfs)
	if err != nil {
		return err
	}
	slog.Debug("using device", "name", device)

	levels, err := sysfs.Levels(device)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Printf("%d %d\n", levels.Current, levels.Max)
		return nil
	}

	expr, err := brightness.Parse(args[0])
	if err != nil {
		return err
	}
	target, err := brightness.Resolve(expr, levels.Current, levels.Max)
	if err != nil {
		return err
	}
	slog.Debug("new brightness", "value", target)

	countdown, err := brightness.ParseCountdown(flagTime)
	if err != nil {
		return err
	}

	conn, err := logind.Connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	session := flagSession
	if session == "" {
		session = cfg.GetString(config.KeySession)
	}
	if session == "" {
		if session, err = conn.CurrentSessionID(); err != nil {
			return err
		}
	}
	slog.Debug("using session", "id", session)

	path, err := conn.SessionPath(session)
	if err != nil {
		return err
	}
	slog.Debug("resolved session object", "path", path)

	ctrl := fade.NewController()
	ctrl.Arm()
	defer ctrl.Disarm()

	sched := fade.NewScheduler(conn.Sink(path, device), ctrl)
	if ms := cfg.GetInt(config.KeyInterval); ms > 0 {
		sched.Interval = time.Duration(ms) * time.Millisecond
	}
	state, err := sched.Run(fade.Schedule{
		Origin:   levels.Current,
		Target:   target,
		Duration: countdown,
	})
	if err != nil {
		return err
	}
	if state == fade.Cancelled {
		slog.Debug("fade cancelled, original brightness restored")
	}
	return nil
}
