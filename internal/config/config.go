package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Outputs  OutputsConfig  `mapstructure:"outputs"`
}

type ServerConfig struct {
	Port       int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS       CORSConfig `mapstructure:"cors"`
	UserHeader string     `mapstructure:"user_header" validate:"required"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver" validate:"oneof=mysql sqlite"`
	Path            string            `mapstructure:"path" validate:"required_if=Driver sqlite"`
	Host            string            `mapstructure:"host" validate:"required_if=Driver mysql"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database" validate:"required_if=Driver mysql"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type ScheduleConfig struct {
	// Timezone decides where calendar days start when bucketing due dates.
	Timezone string `mapstructure:"timezone" validate:"omitempty,timezone"`
}

// Location falls back to UTC when no timezone is configured.
func (c ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation(%s) > %w", c.Timezone, err)
	}
	return loc, nil
}

const (
	CatalogSourceFile = "file"
	CatalogSourceHTTP = "http"
)

type CatalogConfig struct {
	Source string            `mapstructure:"source" validate:"oneof=file http"`
	File   string            `mapstructure:"file" validate:"omitempty,file"`
	HTTP   CatalogHTTPConfig `mapstructure:"http"`
}

type CatalogHTTPConfig struct {
	BaseURL          string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey           string `mapstructure:"api_key"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds" validate:"min=0"`
	MaxRetryAttempts uint   `mapstructure:"max_retry_attempts"`
}

type OutputsConfig struct {
	ExportDirectory string `mapstructure:"export_directory"`
	ReportDirectory string `mapstructure:"report_directory"`
	// ReportTemplate replaces the embedded markdown template of the review report.
	ReportTemplate string `mapstructure:"report_template" validate:"omitempty,file"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/revisit")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.user_header", "X-User-Id")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", filepath.Join("data", "revisit.db"))
	v.SetDefault("database.port", 3306)
	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("catalog.source", CatalogSourceFile)
	v.SetDefault("catalog.http.timeout_seconds", 10)
	v.SetDefault("catalog.http.max_retry_attempts", 2)
	v.SetDefault("outputs.export_directory", filepath.Join("outputs", "export"))
	v.SetDefault("outputs.report_directory", filepath.Join("outputs", "report"))

	// Secrets come from the environment only
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("catalog.http.api_key", "CATALOG_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind CATALOG_API_KEY environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
