package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/shenikar/bear_coordination/internal/routing"
	"github.com/shenikar/bear_coordination/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	routeServiceURL string
	routeTimeout    time.Duration
	routeJSON       bool
)

var routeCmd = &cobra.Command{
	Use:   "route <lat,lon> <lat,lon>",
	Short: "Fetch a driving route between two points",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoute,
}

func init() {
	f := routeCmd.Flags()
	f.StringVar(&routeServiceURL, "service", "https://router.project-osrm.org", "Route service base URL")
	f.DurationVar(&routeTimeout, "timeout", 10*time.Second, "Request timeout")
	f.BoolVar(&routeJSON, "json", false, "Output as JSON")
}

func runRoute(cmd *cobra.Command, args []string) error {
	from, err := parsePoint(args[0])
	if err != nil {
		return err
	}
	to, err := parsePoint(args[1])
	if err != nil {
		return err
	}

	log := logger.New("warn", "text")
	client := routing.NewClient(routeServiceURL, routeTimeout, log)
	route, err := client.Route(cmd.Context(), from, to)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if routeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(route)
	}
	fmt.Fprintf(out, "distance: %.1f km\nduration: %s\npoints:   %d\n",
		route.Distance/1000, route.Duration.Round(time.Second), len(route.Points))
	return nil
}

// parsePoint разбирает "lat,lon"
func parsePoint(s string) (models.LocationSample, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.LocationSample{}, fmt.Errorf("invalid point %q, expected lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.LocationSample{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.LocationSample{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return models.LocationSample{}, fmt.Errorf("point %q is out of range", s)
	}
	return models.LocationSample{Latitude: lat, Longitude: lon}, nil
}
