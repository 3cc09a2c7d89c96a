// Command lightingd drives the multi-zone house lighting from the PIR
// motion sensors and the wall button.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mfreith1/MotionSensingLighting/internal/board"
	"github.com/mfreith1/MotionSensingLighting/internal/events"
	"github.com/mfreith1/MotionSensingLighting/internal/lights"
	"github.com/mfreith1/MotionSensingLighting/internal/logic"
	"github.com/mfreith1/MotionSensingLighting/internal/stats"
)

func main() {
	defaults := board.DefaultConfig()
	sensors := flag.String("sensors", pinList(defaults.SensorPins), "comma-separated BCM pins for the PIR sensors (hall first)")
	relays := flag.String("relays", pinList(defaults.RelayPins), "comma-separated BCM pins for the zone relays (hall first)")
	button := flag.Int("button", defaults.ButtonPin, "BCM pin for the wall button")
	spiPort := flag.String("spi", defaults.SPIPort, "SPI port for the indicator LED (empty picks the first registered port)")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "heartbeat interval (0 to disable)")
	debug := flag.Bool("debug", false, "log at debug level")
	readPins := flag.Bool("read-pins", false, "print current input levels and exit")

	flag.Parse()

	log := newLogger(*debug)
	defer func() { _ = log.Sync() }()

	if err := run(log, *sensors, *relays, *button, *spiPort, *heartbeat, *readPins); err != nil {
		log.Fatal("fatal", zap.Error(err))
	}
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log
}

func run(log *zap.Logger, sensors, relays string, button int, spiPort string, heartbeat time.Duration, readPins bool) error {
	sensorPins, err := parsePins(sensors)
	if err != nil {
		return fmt.Errorf("parse -sensors: %w", err)
	}
	relayPins, err := parsePins(relays)
	if err != nil {
		return fmt.Errorf("parse -relays: %w", err)
	}

	bcfg := board.DefaultConfig()
	bcfg.SensorPins = sensorPins
	bcfg.RelayPins = relayPins
	bcfg.ButtonPin = button
	bcfg.SPIPort = spiPort

	brd, err := board.NewRealBoard(bcfg)
	if err != nil {
		return fmt.Errorf("init board: %w", err)
	}
	defer brd.Close()

	// Diagnostic mode
	if readPins {
		levels, err := brd.ReadSensors()
		if err != nil {
			return fmt.Errorf("read sensors: %w", err)
		}
		pressed, err := brd.ReadButton()
		if err != nil {
			return fmt.Errorf("read button: %w", err)
		}
		for z := logic.ZoneHall; z < logic.ZoneCount; z++ {
			fmt.Printf("%s: %s\n", z, levelString(levels[z]))
		}
		fmt.Printf("button: %s\n", levelString(pressed))
		return nil
	}

	driver := lights.NewDriver(brd, log)

	reporter := events.NewLogReporter(log)
	defer reporter.Close()

	// Initialize the stats tracker before STARTUP so a snapshot is available
	tracker := stats.NewTracker(time.Now(), stats.Config{
		TickMs:         logic.TickPeriod.Milliseconds(),
		SleepTimeoutMs: logic.SleepTimeout.Milliseconds(),
		HeartbeatMs:    heartbeat.Milliseconds(),
		Zones:          logic.ZoneCount,
	})

	startup := events.SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
		Config: &events.SystemConfig{
			TickMs:         logic.TickPeriod.Milliseconds(),
			SleepTimeoutMs: logic.SleepTimeout.Milliseconds(),
			HeartbeatMs:    heartbeat.Milliseconds(),
			Zones:          logic.ZoneCount,
		},
	}
	if err := reporter.ReportSystem(startup); err != nil {
		log.Warn("startup report failed", zap.Error(err))
	}

	log.Info("started",
		zap.Duration("tick", logic.TickPeriod),
		zap.String("sensors", sensors),
		zap.String("relays", relays),
		zap.Int("button", button),
		zap.Duration("heartbeat", heartbeat))

	ticker := time.NewTicker(logic.TickPeriod)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)

	return runLoop(brd, driver, reporter, tracker, log, heartbeat, time.Now, os.Stderr, ticker.C, sigCh)
}

func runLoop(brd board.Board, acts logic.Actuator, reporter events.Reporter, tracker *stats.Tracker, log *zap.Logger, heartbeat time.Duration, now func() time.Time, dumpW io.Writer, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	cfg := logic.DefaultConfig()
	ctrl := logic.NewController(cfg, acts)
	lastBeat := startTime

	for {
		select {
		case s := <-sig:
			if s == syscall.SIGUSR1 {
				log.Info("status dump requested")
				dumpStatus(dumpW, tracker, log)
				continue
			}

			name := signalName(s)
			log.Info("shutting down", zap.String("signal", name))

			snap := tracker.Snapshot()
			event := events.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     name,
				RawPayload: stats.FormatStatusEvent(snap, "SHUTDOWN", name),
			}
			if err := reporter.ReportSystem(event); err != nil {
				log.Warn("shutdown report failed", zap.Error(err))
			}
			dumpStatus(dumpW, tracker, log)
			return nil

		case <-tick:
			t := now()

			sensors, err := brd.ReadSensors()
			if err != nil {
				log.Warn("sensor read failed", zap.Error(err))
				continue
			}
			pressed, err := brd.ReadButton()
			if err != nil {
				log.Warn("button read failed", zap.Error(err))
				continue
			}

			for _, e := range ctrl.Tick(logic.Input{Sensors: sensors, Pressed: pressed, Step: cfg.Tick}) {
				tracker.Record(e)
				if err := reporter.Report(e); err != nil {
					log.Warn("event report failed", zap.Error(err))
				}
			}

			tracker.Update(ctrl.Mode(), ctrl.ActiveZone(), ctrl.ButtonSignal(), ctrl.CountsSnapshot(), ctrl.Uptime())

			if heartbeat > 0 && t.Sub(lastBeat) >= heartbeat {
				lastBeat = t
				counts := ctrl.CountsSnapshot()
				hb := events.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
					Heartbeat: &events.HeartbeatInfo{
						UptimeSeconds: int64(t.Sub(startTime).Seconds()),
						EventCounts: events.HeartbeatCounts{
							ZoneSwitches: counts.ZoneSwitches,
							ModeChanges:  counts.ModeChanges,
							Clicks:       counts.Clicks,
							Holds:        counts.Holds,
						},
					},
				}
				if err := reporter.ReportSystem(hb); err != nil {
					log.Warn("heartbeat report failed", zap.Error(err))
				}
			}
		}
	}
}

// dumpStatus writes the status block and the metrics registry to w.
// A failed render is logged; the metrics section is written regardless.
func dumpStatus(w io.Writer, tracker *stats.Tracker, log *zap.Logger) {
	if err := stats.RenderText(w, tracker.Snapshot()); err != nil {
		log.Warn("status render failed", zap.Error(err))
	}
	fmt.Fprintln(w)
	stats.WritePrometheus(w)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func levelString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// pinList renders a pin table as the comma-separated flag default.
func pinList(pins [board.NumZones]int) string {
	parts := make([]string, len(pins))
	for i, p := range pins {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

// parsePins parses a comma-separated pin list, one pin per zone.
func parsePins(s string) ([board.NumZones]int, error) {
	var pins [board.NumZones]int
	parts := strings.Split(s, ",")
	if len(parts) != board.NumZones {
		return pins, fmt.Errorf("want %d comma-separated pins, got %d", board.NumZones, len(parts))
	}
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return pins, fmt.Errorf("pin %q: %w", part, err)
		}
		pins[i] = n
	}
	return pins, nil
}
