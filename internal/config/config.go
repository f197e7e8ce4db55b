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
	Listen   string   `koanf:"listen"`
	Database Database `koanf:"db"`
	Google   Google   `koanf:"google"`
	Payroll  Payroll  `koanf:"payroll"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Google struct {
	// ApiKey grants read access to public Google calendars (holiday import).
	ApiKey string `koanf:"apikey"`
	// HolidayCalendarId is the public calendar to import holidays from,
	// e.g. "en.italian#holiday@group.v.calendar.google.com".
	HolidayCalendarId string `koanf:"holidaycalendarid"`
}

type Payroll struct {
	// DailyThresholdHours is the number of regular hours per weekday shift
	// before the remainder is classified as overtime.
	DailyThresholdHours int `koanf:"dailythresholdhours"`
	// OvertimeMultiplier is applied to the weekday rate for overtime hours,
	// expressed as a decimal string ("1.5").
	OvertimeMultiplier string `koanf:"overtimemultiplier"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Listen: ":8181",
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "curaflow",
			Pass:   "",
			Name:   "curaflow",
			Schema: "curaflow",
		},
		Payroll: Payroll{
			DailyThresholdHours: 8,
			OvertimeMultiplier:  "1.5",
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
		Prefix: "CURAFLOW_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "CURAFLOW_")), "_", ".")
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
