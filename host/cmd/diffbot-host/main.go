package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"diffbot/config"
	"diffbot/host/rover"
	"diffbot/log"
	"diffbot/protocol"
)

var (
	configPath = flag.String("config", "", "Robot config file (.json, .yaml); built-in defaults if empty")
	device     = flag.String("device", "", "Serial device path (overrides config)")
	sim        = flag.Bool("sim", false, "Drive an in-process simulated controller")
	simLink    = flag.String("link", "serial", "Simulated link: serial or i2c")
	linear     = flag.Float64("linear", 0.2, "Linear velocity in m/s")
	angular    = flag.Float64("angular", 0, "Angular velocity in rad/s")
	duration   = flag.Duration("duration", 3*time.Second, "How long to drive")
	rate       = flag.Float64("rate", 0, "Command rate in Hz (config control rate if 0)")
	ramp       = flag.Int("ramp", 0, "Shape linear velocity as a triangular profile of this many points (odd, >= 3)")
	logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	dumpEvents = flag.Bool("dump-events", false, "Print the simulated controller's event ring on exit")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	fmt.Println("diffbot host - differential drive link")
	fmt.Printf("wire layout %s\n\n", protocol.Version)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *device != "" {
		cfg.Link.Device = *device
	}

	period := cfg.ControlPeriod()
	if *rate > 0 {
		period = time.Duration(float64(time.Second) / *rate)
	}

	steps := int(*duration / period)
	plan, err := commandPlan(cfg, steps, *ramp, *linear, *angular)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *sim {
		err = runSim(ctx, cfg, plan, period, *simLink, *dumpEvents)
	} else {
		err = runSerial(ctx, cfg, plan, period)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.RobotConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func runSerial(ctx context.Context, cfg *config.RobotConfig, plan []command, period time.Duration) error {
	fmt.Printf("Connecting to controller on %s...\n", cfg.Link.Device)
	client, err := rover.Dial(cfg.Link)
	if err != nil {
		return err
	}
	defer client.Close()

	_, err = drive(ctx, &serialLink{client: client}, plan, period, nil)
	if dropped := client.Dropped(); dropped > 0 {
		log.Warn("corrupt blocks on link", "dropped", dropped)
	}
	return err
}

func printStatus(s protocol.StatusFrame) {
	fmt.Printf("seq=%-5d v=%+.3f w=%+.3f duty=%+5d/%+5d enc=%d/%d heading=%+.3f %s\n",
		s.Sequence, s.Linear, s.Angular, s.LeftDuty, s.RightDuty,
		s.LeftCount, s.RightCount, s.Heading, flagString(s.Flags))
}

func flagString(flags uint16) string {
	out := ""
	if flags&protocol.StatusEnabled != 0 {
		out += "[ENABLED]"
	}
	if flags&protocol.StatusGovernorClamped != 0 {
		out += "[GOV]"
	}
	if flags&protocol.StatusAccelLimited != 0 {
		out += "[SLEW]"
	}
	return out
}
