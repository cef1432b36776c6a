package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Port     int      `koanf:"port"`
	Frontend Frontend `koanf:"frontend"`
	Storage  Storage  `koanf:"storage"`
	Database Database `koanf:"db"`
	Client   Client   `koanf:"client"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

// Storage selects the persistence engine behind the timesheet service:
// "postgres" for the relational backend, "file" for the flat
// JSON-file-per-week fallback used when no database is available.
type Storage struct {
	Engine string `koanf:"engine"`
	Dir    string `koanf:"dir"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
	Pool   Pool   `koanf:"pool"`
}

// Pool sizes the connection pool: max/min connections, acquire timeout and
// idle lifetime in seconds.
type Pool struct {
	Max        int `koanf:"max"`
	Min        int `koanf:"min"`
	AcquireSec int `koanf:"acquiresec"`
	IdleSec    int `koanf:"idlesec"`
}

// Client tunes the grid client core: where the remote service lives, the
// local cache location, the autosave debounce window, the remote call
// timeout, and the daily-hours overload threshold.
type Client struct {
	RemoteURL         string  `koanf:"remoteurl"`
	CacheDir          string  `koanf:"cachedir"`
	DebounceMs        int     `koanf:"debouncems"`
	TimeoutSec        int     `koanf:"timeoutsec"`
	OverloadThreshold float64 `koanf:"overloadthreshold"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Port: 8080,
		Frontend: Frontend{
			Enabled: true,
		},
		Storage: Storage{
			Engine: "file",
			Dir:    "./data",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "weektally",
			Pass:   "",
			Name:   "weektally",
			Schema: "weektally",
			Pool: Pool{
				Max:        25,
				Min:        5,
				AcquireSec: 10,
				IdleSec:    300,
			},
		},
		Client: Client{
			RemoteURL:         "http://localhost:8080",
			CacheDir:          "./cache",
			DebounceMs:        1000,
			TimeoutSec:        5,
			OverloadThreshold: 8,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "WEEKTALLY_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "WEEKTALLY_")), "_", ".")
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
