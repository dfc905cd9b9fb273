// Command tracker is the live-position presence client: it reports the local
// position to the backend and follows every other connected participant,
// printing the reconciled view as it changes.
//
// Commands on stdin while running:
//
//	focus <id>    center the map view on a participant
//	retry         re-attempt position acquisition after an error
//	theme <light|dark>
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Marlon200530/real-time-map-client/internal/app"
	"github.com/Marlon200530/real-time-map-client/internal/channel"
	"github.com/Marlon200530/real-time-map-client/internal/config"
	"github.com/Marlon200530/real-time-map-client/internal/geoloc"
	"github.com/Marlon200530/real-time-map-client/internal/prefs"
)

var (
	startLat = flag.Float64("lat", 52.52, "starting latitude for the simulated walk")
	startLng = flag.Float64("lng", 13.405, "starting longitude for the simulated walk")
	seed     = flag.Int64("seed", 0, "walk seed; 0 means time-based")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	cfg := config.Load()

	theme := loadTheme(cfg)
	endpoint := channel.ResolveEndpoint(cfg.BackendURL, cfg.PublicOrigin)
	log.Printf("tracker: endpoint %s, theme %s", endpoint, theme)

	walkSeed := *seed
	if walkSeed == 0 {
		walkSeed = time.Now().UnixNano()
	}
	provider := geoloc.NewWalkProvider(*startLat, *startLng, walkSeed)

	ch := channel.New(endpoint)
	a := app.New(ch, provider, newConsoleRenderer())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go readCommands(a)
	a.Run(ctx)
	log.Printf("tracker: shut down")
}

func loadTheme(cfg *config.Config) prefs.Theme {
	store, err := prefs.NewStore()
	if err != nil {
		log.Printf("tracker: preferences unavailable: %v", err)
		return prefs.PlatformDefault()
	}
	if cfg.Theme != "" {
		t := prefs.Theme(cfg.Theme)
		if err := store.SetTheme(t); err != nil {
			log.Printf("tracker: %v", err)
			return store.Theme(prefs.PlatformDefault())
		}
		return t
	}
	return store.Theme(prefs.PlatformDefault())
}

func readCommands(a *app.App) {
	store, _ := prefs.NewStore()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "focus":
			if len(fields) == 2 {
				a.Select(fields[1])
			}
		case "retry":
			a.Retry()
		case "theme":
			if len(fields) == 2 && store != nil {
				if err := store.SetTheme(prefs.Theme(fields[1])); err != nil {
					log.Printf("tracker: %v", err)
				}
			}
		default:
			log.Printf("tracker: unknown command %q", fields[0])
		}
	}
}

// consoleRenderer prints the view whenever it materially changes.
type consoleRenderer struct {
	last string
}

func newConsoleRenderer() *consoleRenderer { return &consoleRenderer{} }

func (r *consoleRenderer) Render(v app.View) {
	var b strings.Builder
	if v.Online {
		b.WriteString("online")
	} else {
		b.WriteString("offline")
	}
	if v.Self != nil {
		fmt.Fprintf(&b, " | me %.5f,%.5f", v.Self.Lat, v.Self.Lng)
	}
	if v.AcquireErr != nil {
		fmt.Fprintf(&b, " | position error: %v", v.AcquireErr)
	}
	fmt.Fprintf(&b, " | %d participants", len(v.Participants))
	for _, p := range v.Participants {
		if p.ID == v.SelfID {
			continue
		}
		marker := " "
		if p.ID == v.FocusedID {
			marker = "*"
		}
		fmt.Fprintf(&b, "\n  %s %s %.5f,%.5f", marker, p.ID, p.Lat, p.Lng)
	}

	line := b.String()
	if line == r.last {
		return
	}
	r.last = line
	log.Print(line)
}
