package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("dev profile", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.APIBaseURL != "http://localhost:3001/api" {
			t.Fatalf("unexpected base url: %s", cfg.APIBaseURL)
		}
		if !cfg.UseMockData || !cfg.EnableLogging {
			t.Fatalf("expected mock data and logging in dev")
		}
		if cfg.TTLFor(ResourceFixtures) != 5*time.Minute || cfg.TTLFor(ResourceLiveFixtures) != 30*time.Second {
			t.Fatalf("unexpected dev ttls: %+v", cfg.CacheTTL)
		}
		if cfg.FeatureEnabled(FeatureErrorReporting) || !cfg.FeatureEnabled(FeaturePerformanceLogging) {
			t.Fatalf("unexpected dev features: %+v", cfg.Features)
		}
	})

	t.Run("stage uses prod profile", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvStage)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.APIBaseURL != "https://api.footballdata.org/v4" {
			t.Fatalf("unexpected base url: %s", cfg.APIBaseURL)
		}
		if cfg.UseMockData {
			t.Fatalf("expected live api in stage")
		}
		if cfg.TTLFor(ResourceLiveFixtures) != 15*time.Second {
			t.Fatalf("unexpected live ttl: %s", cfg.TTLFor(ResourceLiveFixtures))
		}
		if cfg.TTLFor(ResourceMatchStats) != time.Minute {
			t.Fatalf("unexpected match stats ttl: %s", cfg.TTLFor(ResourceMatchStats))
		}
		if !cfg.FeatureEnabled(FeatureErrorReporting) || cfg.FeatureEnabled(FeaturePerformanceLogging) {
			t.Fatalf("unexpected prod features: %+v", cfg.Features)
		}
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("FOOTBALL_API_BASE_URL", "https://example.test/api/")
	t.Setenv("FOOTBALL_API_KEY", "secret")
	t.Setenv("CACHE_TTL_LEAGUE_TABLE", "90s")
	t.Setenv("FEATURE_REALTIME_UPDATES", "false")
	t.Setenv("FOOTBALL_API_TRANSPORT", "fasthttp")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIBaseURL != "https://example.test/api" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.APIBaseURL)
	}
	if cfg.APIKey != "secret" {
		t.Fatalf("unexpected api key")
	}
	if cfg.TTLFor(ResourceLeagueTable) != 90*time.Second {
		t.Fatalf("unexpected league table ttl: %s", cfg.TTLFor(ResourceLeagueTable))
	}
	if cfg.FeatureEnabled(FeatureRealTimeUpdates) {
		t.Fatalf("expected realtime updates disabled")
	}
	if cfg.HTTPTransport != TransportFastHTTP {
		t.Fatalf("unexpected transport: %s", cfg.HTTPTransport)
	}
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CACHE_TTL_TEAMS", "0s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestLoad_RejectsUnknownPreferenceBackend(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PREFERENCE_BACKEND", "redis")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown preference backend")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matchcenter.yaml")
	body := []byte(`
api:
  baseUrl: https://file.test/v1
  timeout: 7s
  useMockData: false
cache:
  ttl:
    fixtures: 3m
    aiInsights: 1m
features:
  enableOfflineMode: false
live:
  pollInterval: 10s
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("MATCHCENTER_CONFIG_FILE", path)
	t.Setenv("CACHE_TTL_FIXTURES", "4m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIBaseURL != "https://file.test/v1" || cfg.APITimeout != 7*time.Second || cfg.UseMockData {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.TTLFor(ResourceFixtures) != 4*time.Minute {
		t.Fatalf("env must win over file, got %s", cfg.TTLFor(ResourceFixtures))
	}
	if cfg.TTLFor(ResourceAIInsights) != time.Minute {
		t.Fatalf("unexpected ai insights ttl: %s", cfg.TTLFor(ResourceAIInsights))
	}
	if cfg.FeatureEnabled(FeatureOfflineMode) {
		t.Fatalf("expected offline mode disabled by file")
	}
	if cfg.LivePollInterval != 10*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.LivePollInterval)
	}
	if cfg.ConfigFile != path {
		t.Fatalf("unexpected config file: %s", cfg.ConfigFile)
	}
}

func TestLoad_FileRejectsUnknownFeature(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("features:\n  enableTeleport: true\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("MATCHCENTER_CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown feature")
	}
}

func TestTTLFor_UnknownFallsBackToFixtures(t *testing.T) {
	cfg := Defaults(EnvDev)
	if got := cfg.TTLFor(Resource("players")); got != cfg.CacheTTL.Fixtures {
		t.Fatalf("unexpected fallback ttl: %s", got)
	}
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	got := parseUptraceDSNFromOTLPHeaders(`foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)
	if got != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected dsn: %q", got)
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "matchcenter-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "matchcenter-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_ErrorReportSettings(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("ERROR_REPORT_ENDPOINT", " https://logs.matchcenter.example.com/ingest ")
	t.Setenv("ERROR_REPORT_TOKEN", "tok")
	t.Setenv("ERROR_REPORT_TIMEOUT", "750ms")
	t.Setenv("ERROR_REPORT_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ErrorReportEndpoint != "https://logs.matchcenter.example.com/ingest" || cfg.ErrorReportToken != "tok" {
		t.Fatalf("unexpected error report target: %q %q", cfg.ErrorReportEndpoint, cfg.ErrorReportToken)
	}
	if cfg.ErrorReportTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected timeout: %s", cfg.ErrorReportTimeout)
	}
	if cfg.ErrorReportMinLevel != logging.LevelWarn {
		t.Fatalf("unexpected min level: %s", cfg.ErrorReportMinLevel)
	}

	t.Setenv("ERROR_REPORT_TIMEOUT", "0s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-positive ERROR_REPORT_TIMEOUT")
	}
}
