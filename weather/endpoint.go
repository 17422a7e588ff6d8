package weather

import "time"

// Endpoint mapeia um nome público para um path da API de clima.
type Endpoint struct {
	Name string        `yaml:"name"`
	Path string        `yaml:"path"`
	TTL  time.Duration `yaml:"ttl"`
	// Params são fixos e sobrescrevem o que o cliente mandou.
	Params map[string]string `yaml:"params"`
}

// AllowedParams são os únicos parâmetros do cliente repassados ao provedor.
var AllowedParams = []string{"q", "days", "lang", "aqi", "alerts", "dt"}

// DefaultEndpoints segue os paths da WeatherAPI.
var DefaultEndpoints = []Endpoint{
	{Name: "current", Path: "current.json", TTL: 10 * time.Minute},
	{Name: "forecast", Path: "forecast.json", TTL: 30 * time.Minute},
	{Name: "alerts", Path: "alerts.json", TTL: 10 * time.Minute},
	{Name: "airquality", Path: "current.json", TTL: 30 * time.Minute, Params: map[string]string{"aqi": "yes"}},
	{Name: "search", Path: "search.json", TTL: 24 * time.Hour},
}
