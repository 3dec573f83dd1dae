package demo

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/bobmcallan/api2mcp/internal/common"
)

var summaries = []string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild", "Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

// maxForecastDays bounds GET /api/weather.
const maxForecastDays = 366

// WeatherForecast is one day's forecast for a city.
type WeatherForecast struct {
	City         string    `json:"city"`
	Date         time.Time `json:"date"`
	TemperatureC int       `json:"temperatureC"`
	TemperatureF int       `json:"temperatureF"`
	Summary      *string   `json:"summary"`
}

// CreateWeatherForecastRequest is the body of a forecast creation.
type CreateWeatherForecastRequest struct {
	City         string    `json:"city"`
	Date         time.Time `json:"date"`
	TemperatureC int       `json:"temperatureC"`
	Summary      *string   `json:"summary,omitempty"`
}

// Weather produces random forecasts.
type Weather struct {
	logger *common.Logger
	now    func() time.Time
	intn   func(n int) int
}

// NewWeather creates a forecast source.
func NewWeather(logger *common.Logger) *Weather {
	return &Weather{logger: logger, now: time.Now, intn: rand.IntN}
}

func (wt *Weather) forecast(city string, daysAhead int) WeatherForecast {
	c := wt.intn(75) - 20
	summary := summaries[wt.intn(len(summaries))]
	return WeatherForecast{
		City:         city,
		Date:         wt.now().AddDate(0, 0, daysAhead),
		TemperatureC: c,
		TemperatureF: fahrenheit(c),
		Summary:      &summary,
	}
}

func fahrenheit(c int) int {
	return 32 + int(float64(c)/0.5556)
}

// intQuery reads an integer query value, returning def when absent.
func intQuery(r *http.Request, name string, def int) (int, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, true
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetAll handles GET /api/weather.
func (wt *Weather) GetAll(w http.ResponseWriter, r *http.Request) {
	days, ok := intQuery(r, "days", 5)
	if !ok || days < 0 || days > maxForecastDays {
		problem(w, http.StatusBadRequest, "days must be an integer between 0 and 366")
		return
	}

	out := make([]WeatherForecast, 0, days)
	for i := 1; i <= days; i++ {
		out = append(out, wt.forecast("Default", i))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetByCity handles GET /api/weather/{city}.
func (wt *Weather) GetByCity(w http.ResponseWriter, r *http.Request) {
	daysAhead, ok := intQuery(r, "daysAhead", 1)
	if !ok {
		problem(w, http.StatusBadRequest, "daysAhead must be an integer")
		return
	}
	writeJSON(w, http.StatusOK, wt.forecast(r.PathValue("city"), daysAhead))
}

// Create handles POST /api/weather. The forecast is echoed back, not stored.
func (wt *Weather) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWeatherForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, WeatherForecast{
		City:         req.City,
		Date:         req.Date,
		TemperatureC: req.TemperatureC,
		TemperatureF: fahrenheit(req.TemperatureC),
		Summary:      req.Summary,
	})
}
