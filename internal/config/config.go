package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "CALBAR_"

type Application struct {
	Listen   string    `koanf:"listen"`
	Database Database  `koanf:"db"`
	Display  Display   `koanf:"display"`
	Google   Google    `koanf:"google"`
	ICS      []ICSFeed `koanf:"ics"`
	Sync     Sync      `koanf:"sync"`
}

type Database struct {
	Path string `koanf:"path"`
}

type Display struct {
	// Timezone is the IANA zone events are projected into for grouping and the status line.
	Timezone    string        `koanf:"timezone"`
	DayFormat   string        `koanf:"dayformat"`
	HorizonDays int           `koanf:"horizondays"`
	NextWithin  time.Duration `koanf:"nextwithin"`
}

type Google struct {
	Enabled         bool   `koanf:"enabled"`
	CredentialsFile string `koanf:"credentialsfile"`
	TokenFile       string `koanf:"tokenfile"`
	CallbackPort    int    `koanf:"callbackport"`
	LookaheadDays   int    `koanf:"lookaheaddays"`
	PageSize        int64  `koanf:"pagesize"`
}

type ICSFeed struct {
	ID       string `koanf:"id"`
	Name     string `koanf:"name"`
	URL      string `koanf:"url"`
	Timezone string `koanf:"timezone"`
}

type Sync struct {
	Cron    string `koanf:"cron"`
	OnStart bool   `koanf:"onstart"`
}

// Defaults returns the configuration used before any file or environment overrides.
func Defaults() Application {
	return Application{
		Listen: "127.0.0.1:8181",
		Database: Database{
			Path: filepath.Join(DataDir(), "cal.db"),
		},
		Display: Display{
			Timezone:    "UTC",
			DayFormat:   "%Y-%m-%d",
			HorizonDays: 100,
			NextWithin:  24 * time.Hour,
		},
		Google: Google{
			Enabled:         true,
			CredentialsFile: filepath.Join(ConfigDir(), "google-credentials.json"),
			TokenFile:       filepath.Join(DataDir(), "google-token.json"),
			CallbackPort:    8085,
			LookaheadDays:   30,
			PageSize:        250,
		},
		Sync: Sync{
			Cron:    "*/15 * * * *",
			OnStart: true,
		},
	}
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ConfigDir returns $XDG_CONFIG_HOME/calbar (~/.config/calbar).
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "calbar"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "calbar")
}

// DataDir returns $XDG_DATA_HOME/calbar (~/.local/share/calbar).
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "calbar"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "calbar")
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Debugf("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Debugf("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
