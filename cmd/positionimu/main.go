// Command positionimu tracks a colored target in a video stream, samples a
// BNO055 orientation sensor once per frame, and appends one line per frame to
// a record log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/banshee-data/positionimu/internal/bno055"
	"github.com/banshee-data/positionimu/internal/capture"
	"github.com/banshee-data/positionimu/internal/config"
	"github.com/banshee-data/positionimu/internal/display"
	"github.com/banshee-data/positionimu/internal/monitoring"
	"github.com/banshee-data/positionimu/internal/orientation"
	"github.com/banshee-data/positionimu/internal/recordlog"
	"github.com/banshee-data/positionimu/internal/serialport"
	"github.com/banshee-data/positionimu/internal/timeutil"
	"github.com/banshee-data/positionimu/internal/tracker"
	"github.com/banshee-data/positionimu/internal/version"
	"github.com/banshee-data/positionimu/internal/vision"
)

var (
	videoPath   = flag.String("video", "", "Path to a video file (default: live camera)")
	piCamera    = flag.Int("picamera", -1, "Use the Raspberry Pi camera when > 0")
	cameraID    = flag.Int("camera", 0, "Camera device index when not using -video or -picamera")
	buffer      = flag.Int("buffer", 64, "Number of past centers drawn as the trail")
	verbose     = flag.Bool("verbose", false, "Log per-frame debug output")
	configFile  = flag.String("config", "", "Path to a JSON config file (default: built-in defaults)")
	serialPath  = flag.String("port", "/dev/serial0", "Serial port of the BNO055 (ignored in dev mode)")
	baudRate    = flag.Int("baud", 115200, "Serial baud rate")
	logPath     = flag.String("log", "positionIMU.csv", "Record log to append to")
	showDisplay = flag.Bool("display", false, "Show the tracking overlay in a window; press q to quit")
	devMode     = flag.Bool("dev", false, "Use an emulated BNO055 instead of the serial port")
	showVersion = flag.Bool("version", false, "Print the version and exit")
)

const windowTitle = "Frame"

// Pi camera capture size.
const (
	piWidth  = 640
	piHeight = 480
	piFPS    = 30
)

// Short forms kept from the original command line.
func init() {
	flag.StringVar(videoPath, "v", "", "Shorthand for -video")
	flag.IntVar(buffer, "b", 64, "Shorthand for -buffer")
	flag.IntVar(piCamera, "r", -1, "Shorthand for -picamera")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	monitoring.SetVerbose(*verbose)

	settings, err := loadSettings(*configFile, explicitFlags())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	runID := uuid.New()
	log.Printf("positionimu %s run %s", version.String(), runID)

	if err := run(runID, settings); err != nil {
		if errors.Is(err, orientation.ErrSensorInit) {
			log.Printf("%v", err)
			os.Exit(1)
		}
		log.Fatalf("run %s failed: %v", runID, err)
	}
	log.Printf("Graceful shutdown complete")
}

// explicitFlags returns the names of flags given on the command line.
func explicitFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// loadSettings reads the config file, if any, and lets explicitly given
// flags override it.
func loadSettings(path string, set map[string]bool) (config.Settings, error) {
	cfg := config.EmptyConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return config.Settings{}, err
		}
	}

	if set["buffer"] {
		cfg.TrailBuffer = buffer
	}
	if set["port"] {
		cfg.SerialPort = serialPath
	}
	if set["baud"] {
		cfg.BaudRate = baudRate
	}
	if set["log"] {
		cfg.LogPath = logPath
	}

	if err := cfg.Validate(); err != nil {
		return config.Settings{}, err
	}
	return cfg.Settings(), nil
}

func openSource() (capture.Source, error) {
	switch {
	case *videoPath != "":
		return capture.OpenFile(*videoPath)
	case *piCamera > 0:
		return capture.OpenPiCamera(piWidth, piHeight, piFPS)
	default:
		return capture.OpenCamera(*cameraID)
	}
}

func openSensorPort(s config.Settings) (serialport.SerialPorter, error) {
	if *devMode {
		log.Printf("dev mode: using emulated BNO055")
		return bno055.NewEmulator(), nil
	}
	return serialport.Open(s.SerialPort, serialport.PortOptions{BaudRate: s.BaudRate}, s.ReadTimeout)
}

func run(runID uuid.UUID, s config.Settings) error {
	clock := timeutil.RealClock{}

	port, err := openSensorPort(s)
	if err != nil {
		return fmt.Errorf("%w: %v", orientation.ErrSensorInit, err)
	}
	sampler := orientation.NewSampler(bno055.New(port, clock), clock, s.Warmup)

	source, err := openSource()
	if err != nil {
		sampler.Close()
		return err
	}

	records, err := recordlog.Open(s.LogPath)
	if err != nil {
		source.Close()
		sampler.Close()
		return err
	}
	defer func() {
		if err := records.Close(); err != nil {
			log.Printf("failed to close record log: %v", err)
		}
	}()

	var renderer display.Renderer = display.Nop{}
	if *showDisplay {
		renderer = display.NewWindow(windowTitle, s.TrailBuffer, s.MinRadius)
	}

	ctrl, err := tracker.New(tracker.Config{
		RunID:    runID,
		Source:   source,
		Detector: vision.NewPipeline(vision.ParamsFromSettings(s)),
		Sampler:  sampler,
		Log:      records,
		Renderer: renderer,
		Clock:    clock,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("tracking %s, logging to %s", source, s.LogPath)
	err = ctrl.Run(ctx)

	stats := ctrl.Stats()
	log.Printf("run %s: %d frames, %d detections, %d records in %s",
		runID, stats.Frames, stats.Detections, stats.Records, stats.StoppedAt.Sub(stats.StartedAt))
	return err
}
