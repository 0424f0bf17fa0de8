package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the subset of Config that may be set from YAML.
// Pointers distinguish "absent" from zero values.
type fileConfig struct {
	Service struct {
		Name    *string `yaml:"name"`
		Version *string `yaml:"version"`
	} `yaml:"service"`
	HTTP struct {
		Addr            *string  `yaml:"addr"`
		ReadTimeout     *string  `yaml:"readTimeout"`
		WriteTimeout    *string  `yaml:"writeTimeout"`
		ShutdownTimeout *string  `yaml:"shutdownTimeout"`
		CORSOrigins     []string `yaml:"corsOrigins"`
		SwaggerEnabled  *bool    `yaml:"swaggerEnabled"`
	} `yaml:"http"`
	Log struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`
	API struct {
		BaseURL        *string  `yaml:"baseUrl"`
		Key            *string  `yaml:"key"`
		Timeout        *string  `yaml:"timeout"`
		UseMockData    *bool    `yaml:"useMockData"`
		EnableLogging  *bool    `yaml:"enableLogging"`
		Transport      *string  `yaml:"transport"`
		RateLimitRPS   *float64 `yaml:"rateLimitRps"`
		RateLimitBurst *int     `yaml:"rateLimitBurst"`
		Circuit        struct {
			Enabled          *bool   `yaml:"enabled"`
			FailureThreshold *int    `yaml:"failureThreshold"`
			OpenTimeout      *string `yaml:"openTimeout"`
			HalfOpenMaxReq   *int    `yaml:"halfOpenMaxReq"`
		} `yaml:"circuit"`
	} `yaml:"api"`
	Cache struct {
		TTL             map[string]string `yaml:"ttl"`
		JanitorInterval *string           `yaml:"janitorInterval"`
	} `yaml:"cache"`
	Features map[string]bool `yaml:"features"`
	Live     struct {
		PollInterval *string `yaml:"pollInterval"`
	} `yaml:"live"`
	Mock struct {
		Seed        *uint64  `yaml:"seed"`
		Delay       *string  `yaml:"delay"`
		FailureRate *float64 `yaml:"failureRate"`
	} `yaml:"mock"`
	Preferences struct {
		Backend     *string `yaml:"backend"`
		CacheTTL    *string `yaml:"cacheTtl"`
		DBURL       *string `yaml:"dbUrl"`
		LevelDBPath *string `yaml:"leveldbPath"`
	} `yaml:"preferences"`
	ErrorReport struct {
		Endpoint *string `yaml:"endpoint"`
		Timeout  *string `yaml:"timeout"`
		MinLevel *string `yaml:"minLevel"`
	} `yaml:"errorReport"`
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return fc.apply(cfg)
}

func (fc fileConfig) apply(cfg *Config) error {
	setString(&cfg.ServiceName, fc.Service.Name)
	setString(&cfg.ServiceVersion, fc.Service.Version)
	setString(&cfg.HTTPAddr, fc.HTTP.Addr)
	setBool(&cfg.SwaggerEnabled, fc.HTTP.SwaggerEnabled)
	if len(fc.HTTP.CORSOrigins) > 0 {
		cfg.CORSAllowedOrigins = append([]string(nil), fc.HTTP.CORSOrigins...)
	}
	if fc.Log.Level != nil {
		cfg.LogLevel = parseLogLevel(*fc.Log.Level)
	}
	if fc.Log.Format != nil {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(*fc.Log.Format))
	}

	setString(&cfg.APIBaseURL, fc.API.BaseURL)
	setString(&cfg.APIKey, fc.API.Key)
	setBool(&cfg.UseMockData, fc.API.UseMockData)
	setBool(&cfg.EnableLogging, fc.API.EnableLogging)
	setString(&cfg.HTTPTransport, fc.API.Transport)
	if fc.API.RateLimitRPS != nil {
		cfg.ClientRateLimit = *fc.API.RateLimitRPS
	}
	setInt(&cfg.ClientRateBurst, fc.API.RateLimitBurst)
	setBool(&cfg.CircuitBreaker.Enabled, fc.API.Circuit.Enabled)
	setInt(&cfg.CircuitBreaker.FailureThreshold, fc.API.Circuit.FailureThreshold)
	setInt(&cfg.CircuitBreaker.HalfOpenMaxReq, fc.API.Circuit.HalfOpenMaxReq)

	durations := []struct {
		name string
		raw  *string
		dst  *time.Duration
	}{
		{"http.readTimeout", fc.HTTP.ReadTimeout, &cfg.ReadTimeout},
		{"http.writeTimeout", fc.HTTP.WriteTimeout, &cfg.WriteTimeout},
		{"http.shutdownTimeout", fc.HTTP.ShutdownTimeout, &cfg.ShutdownTimeout},
		{"errorReport.timeout", fc.ErrorReport.Timeout, &cfg.ErrorReportTimeout},
		{"api.timeout", fc.API.Timeout, &cfg.APITimeout},
		{"api.circuit.openTimeout", fc.API.Circuit.OpenTimeout, &cfg.CircuitBreaker.OpenTimeout},
		{"cache.janitorInterval", fc.Cache.JanitorInterval, &cfg.CacheJanitorInterval},
		{"live.pollInterval", fc.Live.PollInterval, &cfg.LivePollInterval},
		{"mock.delay", fc.Mock.Delay, &cfg.MockDelay},
		{"preferences.cacheTtl", fc.Preferences.CacheTTL, &cfg.PreferenceCacheTTL},
	}
	for _, item := range durations {
		if err := setDuration(item.dst, item.raw, item.name); err != nil {
			return err
		}
	}

	ttlTargets := map[Resource]*time.Duration{
		ResourceFixtures:     &cfg.CacheTTL.Fixtures,
		ResourceLiveFixtures: &cfg.CacheTTL.LiveFixtures,
		ResourceTeams:        &cfg.CacheTTL.Teams,
		ResourceLeagueTable:  &cfg.CacheTTL.LeagueTable,
		ResourceAIInsights:   &cfg.CacheTTL.AIInsights,
		ResourceMatchStats:   &cfg.CacheTTL.MatchStats,
	}
	for name, raw := range fc.Cache.TTL {
		dst, ok := ttlTargets[Resource(name)]
		if !ok {
			return fmt.Errorf("unknown cache.ttl resource %q", name)
		}
		value := raw
		if err := setDuration(dst, &value, "cache.ttl."+name); err != nil {
			return err
		}
	}

	featureTargets := map[Feature]*bool{
		FeatureRealTimeUpdates:    &cfg.Features.RealTimeUpdates,
		FeatureOfflineMode:        &cfg.Features.OfflineMode,
		FeatureErrorReporting:     &cfg.Features.ErrorReporting,
		FeaturePerformanceLogging: &cfg.Features.PerformanceLogging,
	}
	for name, enabled := range fc.Features {
		dst, ok := featureTargets[Feature(name)]
		if !ok {
			return fmt.Errorf("unknown feature %q", name)
		}
		*dst = enabled
	}

	if fc.Mock.Seed != nil {
		cfg.MockSeed = *fc.Mock.Seed
	}
	if fc.Mock.FailureRate != nil {
		cfg.MockFailureRate = *fc.Mock.FailureRate
	}

	setString(&cfg.PreferenceBackend, fc.Preferences.Backend)
	setString(&cfg.DBURL, fc.Preferences.DBURL)
	setString(&cfg.LevelDBPath, fc.Preferences.LevelDBPath)

	setString(&cfg.ErrorReportEndpoint, fc.ErrorReport.Endpoint)
	if fc.ErrorReport.MinLevel != nil {
		cfg.ErrorReportMinLevel = parseLogLevel(*fc.ErrorReport.MinLevel)
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, raw *string, name string) error {
	if raw == nil {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*dst = d
	return nil
}
