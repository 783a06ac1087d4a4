// Demo entrypoint: builds a small rig on the host fakes and hands the
// maintenance console your terminal. Try `list`, then
// `move pan 180 2000 out-cubic`.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"twist-go/config"
	"twist-go/logx"
	"twist-go/platform"
	"twist-go/runtime"
	"twist-go/services/console"

	_ "twist-go/devices/distance"
	_ "twist-go/devices/joystick"
	_ "twist-go/devices/servo"
)

const topology = `
pwm_drivers:
  - address: 0x40
    freq_hz: 50
devices:
  - kind: servo
    id: 1
    name: pan
    servo:
      driver: 0
      channel: 0
      min_pulse_us: 500
      max_pulse_us: 2500
  - kind: servo
    id: 2
    name: tilt
    servo:
      driver: 0
      channel: 1
      step_min: 102
      step_max: 512
      speed_deg_per_sec: 90
  - kind: joystick
    id: 3
    name: stick
    joystick:
      x_pin: 26
      y_pin: 27
      deadzone: 120
  - kind: distance
    id: 4
    name: front
    distance:
      trig_pin: 2
      echo_pin: 3
      interval_ms: 100
      alpha: 0.3
`

func main() {
	log := logx.NewConsole(os.Stderr, logx.LevelInfo)

	topo, err := config.Load(strings.NewReader(topology))
	if err != nil {
		logx.Errorf(log, "MAIN", "topology: %v", err)
		os.Exit(1)
	}

	hw := platform.NewHost()
	rt := runtime.New(runtime.Config{Log: log})
	if err := rt.Build(topo, hw); err != nil {
		logx.Errorf(log, "MAIN", "build: %v", err)
		os.Exit(1)
	}
	if err := rt.Init(); err != nil {
		logx.Errorf(log, "MAIN", "init: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in, out := hw.ConsolePort()
	if err := console.New(rt, in, out, log).Start(ctx); err != nil {
		logx.Errorf(log, "MAIN", "console: %v", err)
		os.Exit(1)
	}

	logx.Infof(log, "MAIN", "running; type help")
	if err := rt.Run(ctx, 20*time.Millisecond); err != context.Canceled {
		logx.Errorf(log, "MAIN", "run: %v", err)
	}
}
