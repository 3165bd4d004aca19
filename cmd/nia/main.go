package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/norasector/nia/pkg/nia"
	"github.com/norasector/nia/pkg/nia/config"
	"github.com/norasector/nia/pkg/nia/device"
	"github.com/norasector/nia/pkg/nia/device/file"
	"github.com/norasector/nia/pkg/nia/device/hid"
	"github.com/norasector/nia/pkg/nia/device/mock"
	"github.com/norasector/nia/pkg/nia/server"
	"github.com/norasector/nia/pkg/nia/viz"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)
	configFile := flag.String("config", "nia.yaml", "YAML config file")
	recordLocation := flag.String("record", "", "write samples to this playback file and exit")
	recordSamples := flag.Int("n", 0, "number of samples to record (default: one second at sampling_rate)")
	flag.Parse()

	opts, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}
	log.Logger = log.Logger.Level(opts.Level())

	src := newSource(opts)

	sessionOpts := []nia.SessionOption{
		nia.WithSamplingRate(opts.SamplingRate),
		nia.WithNotifier(nia.NewLogNotifier(log.Logger.With().Str("device", src.Name()).Logger())),
	}
	if opts.InfluxDB.Host != "" {
		client := influxdb2.NewClient(opts.InfluxDB.Host, opts.InfluxDB.Token)
		defer client.Close()
		writeAPI := client.WriteAPI(opts.InfluxDB.Organization, opts.InfluxDB.Bucket)
		defer writeAPI.Flush()
		sessionOpts = append(sessionOpts, nia.WithInfluxDB(writeAPI))
	}

	session, err := nia.NewSession(src, sessionOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session")
	}

	eg, ctx := errgroup.WithContext(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg.Go(func() error {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	if err := session.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not connect")
	}

	switch {
	case *recordLocation != "":
		n := *recordSamples
		if n <= 0 {
			n = opts.SamplingRate
		}
		eg.Go(func() error {
			defer cancel()
			return record(session, *recordLocation, n)
		})
	case opts.Server.Port != 0:
		plotter := viz.NewTimeDomainPlotter("NIA raw signal", opts.Server.PlotSize)
		srv := server.NewServer(opts.Server.Port, session, plotter,
			server.WithPoller(opts.PollInterval, opts.NumSamples),
			server.WithLogger(log.Logger))
		eg.Go(func() error {
			return srv.Run(ctx)
		})
	default:
		eg.Go(func() error {
			return poll(ctx, session, opts.PollInterval, opts.NumSamples)
		})
	}

	err = eg.Wait()
	session.Disconnect()
	if err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("exited program")
	}
}

func newSource(opts config.Config) device.Source {
	switch opts.Device {
	case config.DeviceFile:
		log.Info().Str("device", "file").Str("playback_location", opts.PlaybackLocation).Msg("initializing device...")
		return file.NewFileSource(opts.PlaybackLocation, opts.PlaybackLoop)
	case config.DeviceHID:
		log.Info().Str("device", "hid").Str("hid_path", opts.HIDPath).Msg("initializing device...")
		return hid.NewHIDSource(opts.HIDPath)
	default:
		log.Info().Str("device", "mock").Msg("initializing device...")
		return mock.NewMockSource()
	}
}

func poll(ctx context.Context, session *nia.Session, interval time.Duration, numSamples int) error {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			samples, err := session.ReadSignal(numSamples)
			if err != nil {
				return err
			}
			log.Info().Floats64("samples", samples).Msg("read samples")
		}
	}
}

func record(session *nia.Session, location string, numSamples int) error {
	out, err := os.Create(location)
	if err != nil {
		return err
	}
	defer out.Close()

	samples, err := session.ReadSignal(numSamples)
	if err != nil {
		return err
	}
	if err := file.Record(out, samples); err != nil {
		return err
	}
	log.Info().Int("num_samples", numSamples).Str("record_location", location).Msg("recorded samples")
	return out.Close()
}
