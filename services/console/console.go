// Package console is a line-oriented maintenance shell over any serial
// stream. It addresses devices by registry name and speaks the motion API
// directly, which makes it the quickest way to exercise a rig from a UART.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"twist-go/devices/servo"
	"twist-go/logx"
	"twist-go/runtime"
	"twist-go/types"
)

// motor is the slice of the servo API the console drives. Narrowing through
// an interface keeps the console usable with any conforming actuator.
type motor interface {
	types.OutputDevice
	MoveToWithEasing(target float32, d time.Duration, e servo.Easing)
	SetSpeed(degPerSec float32)
	MoveWithSpeed(target float32)
	Stop()
	Pause()
	Resume()
}

type Service struct {
	rt  *runtime.Runtime
	in  io.Reader
	out io.Writer
	log logx.Logger
}

func New(rt *runtime.Runtime, in io.Reader, out io.Writer, log logx.Logger) *Service {
	return &Service{rt: rt, in: in, out: out, log: log}
}

// Start runs the read loop on its own goroutine until the context ends or
// the stream closes.
func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context) {
	sc := bufio.NewScanner(s.in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		reply := s.Execute(sc.Text())
		if reply != "" {
			fmt.Fprintln(s.out, reply)
		}
	}
	logx.Infof(s.log, "CONSOLE", "input stream closed")
}

// Execute runs one command line and returns the reply text.
func (s *Service) Execute(line string) string {
	args, err := shlex.Split(line)
	if err != nil {
		return "parse error: " + err.Error()
	}
	if len(args) == 0 {
		return ""
	}

	switch args[0] {
	case "help":
		return helpText
	case "list":
		return s.list()
	case "info":
		return s.withDevice(args, 2, func(d types.Device, _ []string) string {
			i := d.Info()
			return fmt.Sprintf("%s kind=%s id=%d caps=0x%02X channels=%d state=%s enabled=%v",
				i.Name, i.Kind, i.ID, uint16(i.Capabilities), i.Channels, d.State(), d.Enabled())
		})
	case "set":
		return s.withMotor(args, 3, func(m motor, rest []string) string {
			v, err := parseFloat(rest[0])
			if err != nil {
				return err.Error()
			}
			m.SetValue(v)
			return fmt.Sprintf("value=%g", m.Value())
		})
	case "move":
		return s.withMotor(args, 4, func(m motor, rest []string) string {
			target, err := parseFloat(rest[0])
			if err != nil {
				return err.Error()
			}
			ms, err := strconv.Atoi(rest[1])
			if err != nil {
				return "bad duration: " + rest[1]
			}
			easing := servo.EaseLinear
			if len(rest) > 2 {
				e, ok := servo.ParseEasing(rest[2])
				if !ok {
					return "unknown easing: " + rest[2]
				}
				easing = e
			}
			m.MoveToWithEasing(target, time.Duration(ms)*time.Millisecond, easing)
			return fmt.Sprintf("moving to %g over %dms", target, ms)
		})
	case "speed":
		return s.withMotor(args, 3, func(m motor, rest []string) string {
			rate, err := parseFloat(rest[0])
			if err != nil {
				return err.Error()
			}
			m.SetSpeed(rate)
			if len(rest) > 1 {
				target, err := parseFloat(rest[1])
				if err != nil {
					return err.Error()
				}
				m.MoveWithSpeed(target)
				return fmt.Sprintf("moving to %g at %g deg/s", target, rate)
			}
			return fmt.Sprintf("speed=%g deg/s", rate)
		})
	case "stop":
		return s.withMotor(args, 2, func(m motor, _ []string) string {
			m.Stop()
			return fmt.Sprintf("stopped at %g", m.Value())
		})
	case "pause":
		return s.withMotor(args, 2, func(m motor, _ []string) string {
			m.Pause()
			return "paused"
		})
	case "resume":
		return s.withMotor(args, 2, func(m motor, _ []string) string {
			m.Resume()
			return "resumed"
		})
	case "read":
		return s.withDevice(args, 2, func(d types.Device, rest []string) string {
			in, ok := d.(types.InputDevice)
			if !ok {
				return "not an input device"
			}
			axis := 0
			if len(rest) > 0 {
				axis, _ = strconv.Atoi(rest[0])
			}
			return fmt.Sprintf("%g", in.ReadAnalog(uint8(axis)))
		})
	}
	return "unknown command; try help"
}

const helpText = `commands:
  list
  info <name>
  set <name> <angle>
  move <name> <angle> <ms> [easing]
  speed <name> <deg-per-sec> [target]
  stop|pause|resume <name>
  read <name> [axis]`

func (s *Service) list() string {
	var b strings.Builder
	s.rt.Reg.ForEach(func(d types.Device) {
		i := d.Info()
		fmt.Fprintf(&b, "%-16s %-10s id=%-3d %s\n", i.Name, i.Kind, i.ID, d.State())
	})
	if b.Len() == 0 {
		return "no devices"
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Service) withDevice(args []string, minArgs int, fn func(types.Device, []string) string) string {
	if len(args) < minArgs {
		return "usage: " + args[0] + " <name> ..."
	}
	d := s.rt.Reg.FindByName(args[1])
	if d == nil {
		return "no such device: " + args[1]
	}
	return fn(d, args[2:])
}

func (s *Service) withMotor(args []string, minArgs int, fn func(motor, []string) string) string {
	return s.withDevice(args, minArgs, func(d types.Device, rest []string) string {
		m, ok := d.(motor)
		if !ok {
			return args[1] + " is not a motion device"
		}
		return fn(m, rest)
	})
}

func parseFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number: %s", s)
	}
	return float32(v), nil
}
