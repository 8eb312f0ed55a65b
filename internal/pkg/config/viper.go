package config

import (
	"bytes"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envAliases binds keys to environment names that do not follow the
// dotted-to-underscore convention.
var envAliases = map[string]string{
	"jwt.secret":      "JWT_SECRET",
	"jwt.session_ttl": "JWT_EXPIRES",
	"cookie.domain":   "AUTH_DOMAIN",
	"app.env":         "APP_ENV",
}

// Viper reads configuration through spf13/viper with environment overrides.
type Viper struct {
	v *viper.Viper
}

// NewViper reads the file at pathFile, typed by its extension, and reloads it
// whenever it changes on disk. Keys read per request (maintenance flags,
// cookie settings) pick up the new values without a restart.
func NewViper(pathFile string) (*Viper, error) {
	v := newWithEnv()
	v.SetConfigFile(pathFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config reloaded", "path", e.Name, "op", e.Op.String())
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration of configType ("yaml", "json") from
// memory. Used by tests.
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := newWithEnv()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func newWithEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envAliases {
		_ = v.BindEnv(key, env, strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	return v
}

func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

func (vc *Viper) GetInt(key string) int {
	return vc.v.GetInt(key)
}

func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

func (vc *Viper) GetFloat64(key string) float64 {
	return vc.v.GetFloat64(key)
}

func (vc *Viper) GetDuration(key string) time.Duration {
	raw := vc.v.GetString(key)
	d, ok := parseDuration(raw)
	if !ok {
		slog.Warn("config: unparseable duration, using 0", "key", key, "value", raw)
	}
	return d
}

// GetArray accepts both a YAML list and a comma separated string, the form
// environment overrides take.
func (vc *Viper) GetArray(key string) []string {
	var out []string
	for _, item := range vc.v.GetStringSlice(key) {
		for part := range strings.SplitSeq(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (vc *Viper) GetMap(key string) map[string]string {
	m := make(map[string]string)

	for _, pair := range vc.GetArray(key) {
		if k, v, ok := strings.Cut(pair, ":"); ok {
			m[k] = v
		}
	}

	return m
}

func (vc *Viper) Close() error {
	return nil
}

// parseDuration accepts Go durations, day counts ("30d") and bare seconds.
// ok is false only for a non-empty value in none of those forms.
func parseDuration(raw string) (d time.Duration, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(n) * time.Second, true
	}

	if days, found := strings.CutSuffix(raw, "d"); found {
		n, err := strconv.ParseInt(days, 10, 64)
		if err != nil {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}

	return d, true
}
