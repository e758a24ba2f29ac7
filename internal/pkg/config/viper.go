package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides: jwt.secret is read from EASYMED_JWT_SECRET.
const EnvPrefix = "EASYMED"

var defaults = map[string]any{
	"app.node_id":                                   1,
	"app.server.max_goroutine":                      64,
	"jwt.issuer":                                    "easymed",
	"jwt.ttl_minutes":                               720,
	"keylock.driver":                                "memory",
	"storage.driver":                                "file",
	"storage.file.dir":                              "./data",
	"messaging.driver":                              "memory",
	"sms.driver":                                    "simulated",
	"sms.simulated.delay_ms":                        1000,
	"healthid.driver":                               "static",
	"mail.driver":                                   "log",
	"modules.auth.dev_otp_enabled":                  false,
	"modules.auth.sweep_interval_seconds":           60,
	"modules.auth.otp.generator":                    "random",
	"modules.auth.otp.ttl_minutes":                  5,
	"modules.auth.otp.max_attempts":                 5,
	"modules.auth.session.ttl_minutes":              5,
	"modules.auth.registration.pending_ttl_minutes": 1440,
	"modules.auth.state.driver":                     "memory",
	"modules.auth.snapshot.key":                     "easymed/users.json",
	"modules.notification.delivery_log_capacity":    1000,
}

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// NewViper loads configuration from the given file path and reloads it on change.
// The config file type is inferred from the filename extension.
func NewViper(pathFile string) (*Viper, error) {
	v := newViper()

	filename := path.Base(pathFile)
	configName := filename[:len(filename)-len(path.Ext(filename))]

	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(configName)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", pathFile, "err", err)
			return
		}
		slog.Info("config success reloaded", "path", pathFile)
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration from memory. configType is a format
// supported by Viper (e.g. "yaml", "json", "toml").
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (vc *Viper) GetInt(key string) int {
	return vc.v.GetInt(key)
}

func (vc *Viper) GetInt32(key string) int32 {
	return vc.v.GetInt32(key)
}

func (vc *Viper) GetUint(key string) uint {
	return vc.v.GetUint(key)
}

func (vc *Viper) GetUint16(key string) uint16 {
	return vc.v.GetUint16(key)
}

func (vc *Viper) GetFloat64(key string) float64 {
	return vc.v.GetFloat64(key)
}

func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

func (vc *Viper) GetBinary(key string) []byte {
	data, err := base64.StdEncoding.DecodeString(vc.v.GetString(key))
	if err != nil {
		return nil
	}

	return data
}

func (vc *Viper) GetArray(key string) []string {
	return lo.Compact(lo.Map(strings.Split(vc.v.GetString(key), ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

// Close has nothing to release; the file watcher stops with the process.
func (*Viper) Close() error {
	return nil
}
