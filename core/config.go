package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the application configuration. It is loaded once at import time
// from defaults, an optional config/.env.<env> file and environment variables.
var Conf *Config

type Config struct {
	Env      string // DEV (default), TEST, QA, PROD
	Debug    bool
	TestMode bool
	AppName  string
	Build    string // set via -ldflags at build time
	WorkDir  string

	Database struct {
		Path string // path to the sqlite database file
	}

	DefaultFromEmail mail.Address
	SendgridApiKey   string
	RollbarToken     string

	// SweepInterval is the re-arming interval of the deadline sweep.
	// The sweep also runs once at application startup.
	SweepInterval time.Duration
}

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "SkisatiResa")
	v.SetDefault("build", "dev")
	v.SetDefault("workDir", Getwd())
	v.SetDefault("databasePath", filepath.Join(Getwd(), "data", "skisati.db"))
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sweepInterval", 24*time.Hour)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Env:      env,
		Debug:    v.GetBool("debug"),
		TestMode: env == "TEST",
		AppName:  v.GetString("appName"),
		Build:    v.GetString("build"),
		WorkDir:  v.GetString("workDir"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("appName"),
			Address: v.GetString("defaultFromEmail"),
		},
		SendgridApiKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),
		SweepInterval:  v.GetDuration("sweepInterval"),
	}
	Conf.Database.Path = v.GetString("databasePath")
}
