package config

type HTTPConfig struct {
	Addr       string
	CORSOrigin string
}

func LoadHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		Addr:       getEnv("HTTP_ADDR", ":8000"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
	}
}
