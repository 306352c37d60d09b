package main

import "github.com/maxerenberg/backlight-dbus/internal/cmd"

func main() {
	cmd.Execute()
}
