package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/oneamp/oneamp/api"
	"github.com/oneamp/oneamp/internal/config"
	"github.com/oneamp/oneamp/internal/player"
	"github.com/oneamp/oneamp/internal/playlist"
	"github.com/oneamp/oneamp/pkg/events"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	volume := flag.Float64("volume", -1, "playback volume 0.0-1.0 (overrides config)")
	eqOn := flag.Bool("eq", false, "enable the equalizer at startup")
	flag.Parse()

	if flag.NArg() == 0 {
		return fmt.Errorf("usage: %s [flags] file...", os.Args[0])
	}

	// Load configuration
	configPath := config.GetConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Initialize player engine
	engine := player.NewEngine()
	engine.Start(ctx)

	if *volume >= 0 {
		cfg.Volume = *volume
	}
	if err := engine.SetVolume(cfg.Volume); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	if *eqOn {
		cfg.EqualizerEnabled = true
	}
	engine.SetAllEqualizerGains(cfg.EqualizerGains)
	engine.SetEqualizerEnabled(cfg.EqualizerEnabled)

	// Queue the tracks from the command line
	queue := playlist.New()
	queue.Add(flag.Args()...)

	bus := events.NewEventBus()
	var wg sync.WaitGroup

	// Status printer: one bus subscriber among others.
	printer := bus.SubscribeAll()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for event := range printer {
			switch event.Type {
			case api.EventTrackLoaded:
				if meta, ok := event.Payload.(api.TrackMetadata); ok {
					fmt.Printf("Playing: %s - %s (%s, %.0fs)\n",
						meta.Artist, meta.Title, meta.Codec, meta.Duration)
				}
			case api.EventError:
				fmt.Fprintf(os.Stderr, "Warning: %v\n", event.Payload)
			}
		}
	}()

	// Playlist driver: advances the queue on track boundaries and keeps
	// the persisted equalizer state current.
	driver := bus.SubscribeAll()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for event := range driver {
			switch event.Type {
			case api.EventTrackLoaded:
				engine.Play()

			case api.EventPlaybackFinished, api.EventRequestNext:
				next, ok := queue.Next()
				if !ok {
					// End of the queue
					cancel()
					continue
				}
				engine.LoadFile(next)

			case api.EventRequestPrevious:
				if prev, ok := queue.Previous(); ok {
					engine.LoadFile(prev)
				}

			case api.EventEqualizerUpdated:
				if st, ok := event.Payload.(api.EqualizerState); ok {
					cfg.EqualizerEnabled = st.Enabled
					cfg.EqualizerGains = st.Gains
				}
			}
		}
	}()

	first, _ := queue.Current()
	engine.LoadFile(first)

	// Single fan-out of engine events onto the bus. The engine closes
	// its channel on shutdown, which ends the loop; closing the bus then
	// ends the subscribers.
	for event := range engine.Events() {
		bus.Publish(event)
	}
	bus.Close()
	wg.Wait()
	<-engine.Done()

	// Persist volume and equalizer settings for the next session
	cfg.Volume = engine.State().Volume
	if err := config.SaveConfig(cfg, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: save config: %v\n", err)
	}

	return nil
}
