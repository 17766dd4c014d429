// Package routing запрашивает маршрут от спасателя до места инцидента у
// сервиса маршрутизации с OSRM-совместимым API.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrNoRoute - сервис не нашел маршрут между точками
var ErrNoRoute = errors.New("no route found")

// Point - точка маршрута
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Route - построенный маршрут
type Route struct {
	Points   []Point       `json:"points"`
	Distance float64       `json:"distance_m"`
	Duration time.Duration `json:"duration"`
}

// Client - клиент сервиса маршрутизации
type Client struct {
	baseURL    string
	profile    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient создает клиента; профиль передвижения - driving
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route строит маршрут from -> to
func (c *Client) Route(ctx context.Context, from, to models.LocationSample) (*Route, error) {
	log := c.logger.WithFields(logrus.Fields{
		"component": "routing",
		"method":    "Route",
	})

	// OSRM принимает координаты в порядке lon,lat
	url := fmt.Sprintf("%s/route/v1/%s/%s,%s;%s,%s?overview=full&geometries=geojson",
		c.baseURL, c.profile,
		formatCoord(from.Longitude), formatCoord(from.Latitude),
		formatCoord(to.Longitude), formatCoord(to.Latitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("routing: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Route request failed")
		return nil, fmt.Errorf("routing: request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("routing: read response: %w", err)
	}

	var body osrmResponse
	if err := json.Unmarshal(data, &body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("routing: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("routing: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).WithField("code", body.Code).Warn("Routing service returned error")
		if body.Code == "NoRoute" {
			return nil, ErrNoRoute
		}
		return nil, fmt.Errorf("routing: status %d: %s", resp.StatusCode, body.Message)
	}
	if len(body.Routes) == 0 {
		return nil, ErrNoRoute
	}

	best := body.Routes[0]
	route := &Route{
		Points:   make([]Point, 0, len(best.Geometry.Coordinates)),
		Distance: best.Distance,
		Duration: time.Duration(best.Duration * float64(time.Second)),
	}
	for _, coord := range best.Geometry.Coordinates {
		if len(coord) < 2 {
			continue
		}
		route.Points = append(route.Points, Point{Latitude: coord[1], Longitude: coord[0]})
	}

	log.WithFields(logrus.Fields{
		"points":     len(route.Points),
		"distance_m": route.Distance,
	}).Debug("Route built")
	return route, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
