package config

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_config_unmarshaler.go github.com/kasuboski/shokoz/config ConfigUnmarshaler

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Shoko    Shoko    `json:"shoko" yaml:"shoko" mapstructure:"shoko"`
	Metadata Metadata `json:"metadata" yaml:"metadata" mapstructure:"metadata"`
	Sync     Sync     `json:"sync" yaml:"sync" mapstructure:"sync"`
	Storage  Storage  `json:"storage" yaml:"storage" mapstructure:"storage"`
	Server   Server   `json:"server" yaml:"server" mapstructure:"server"`
	Manager  Manager  `json:"manager" yaml:"manager" mapstructure:"manager"`
}

type Shoko struct {
	Scheme      string        `json:"scheme" yaml:"scheme" mapstructure:"scheme" validate:"omitempty,oneof=http https"`
	Host        string        `json:"host" yaml:"host" mapstructure:"host"`
	APIKey      string        `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
	BaseBackoff time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff"`
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries" mapstructure:"maxRetries" validate:"gte=0"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

const (
	GroupingNone  = "none"
	GroupingShoko = "shoko"
)

// Metadata controls how series are grouped into shows and projected into seasons
type Metadata struct {
	// Language is a BCP 47 tag for preferred titles
	Language        string   `json:"language" yaml:"language" mapstructure:"language"`
	SeriesGrouping  string   `json:"seriesGrouping" yaml:"seriesGrouping" mapstructure:"seriesGrouping" validate:"omitempty,oneof=none shoko"`
	AddAniDBID      bool     `json:"addAniDBId" yaml:"addAniDBId" mapstructure:"addAniDBId"`
	HideSpoilerTags bool     `json:"hideSpoilerTags" yaml:"hideSpoilerTags" mapstructure:"hideSpoilerTags"`
	ExcludedTags    []string `json:"excludedTags" yaml:"excludedTags" mapstructure:"excludedTags"`
}

const (
	ConflictNewest = "newest"
	ConflictLocal  = "local"
	ConflictRemote = "remote"
)

type Sync struct {
	Users          []UserConfiguration `json:"users" yaml:"users" mapstructure:"users" validate:"dive"`
	Workers        int                 `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gte=0"`
	QueueSize      int                 `json:"queueSize" yaml:"queueSize" mapstructure:"queueSize" validate:"gte=0"`
	ConflictPolicy string              `json:"conflictPolicy" yaml:"conflictPolicy" mapstructure:"conflictPolicy" validate:"omitempty,oneof=newest local remote"`
}

// UserConfiguration links a host user to a Shoko account
type UserConfiguration struct {
	UserID             string `json:"userId" yaml:"userId" mapstructure:"userId" validate:"required,uuid"`
	Enabled            bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Token              string `json:"token" yaml:"token" mapstructure:"token" validate:"required_if=Enabled true"`
	SyncOnImport       bool   `json:"syncOnImport" yaml:"syncOnImport" mapstructure:"syncOnImport"`
	SyncDuringPlayback bool   `json:"syncDuringPlayback" yaml:"syncDuringPlayback" mapstructure:"syncDuringPlayback"`
	SyncAfterPlayback  bool   `json:"syncAfterPlayback" yaml:"syncAfterPlayback" mapstructure:"syncAfterPlayback"`
}

// Active reports whether the user may sync at all
func (u UserConfiguration) Active() bool {
	return u.Enabled && u.Token != ""
}

// Storage configuration is assumed to be for sqlite database only currently
type Storage struct {
	FilePath string `json:"filePath" yaml:"filePath" mapstructure:"filePath"`
}

type Server struct {
	Port int `json:"port" yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
}

// Manager houses configuration related to the scheduler
type Manager struct {
	Jobs Jobs `json:"jobs" yaml:"jobs" mapstructure:"jobs"`
}

type Jobs struct {
	UserDataSync        time.Duration `json:"userDataSync" yaml:"userDataSync" mapstructure:"userDataSync"`
	JobScheduleInterval time.Duration `json:"jobScheduleInterval" yaml:"jobScheduleInterval" mapstructure:"jobScheduleInterval"`
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks enum values and per-user requirements
func Validate(c Config) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
