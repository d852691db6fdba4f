package config

import (
	"os"
	"path"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig holds process-level settings.
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Location string `yaml:"location" json:"location"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// WebConfig holds the HTTP listener settings. Webroot, when set, points at a
// directory with the static admin pages; empty disables them.
type WebConfig struct {
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	Webroot string `yaml:"webroot" json:"webroot"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// SessionConfig controls token lifetime. TTL is in seconds; 0 means issued
// tokens never expire within the process lifetime.
type SessionConfig struct {
	TTL int64 `yaml:"ttl" json:"ttl"`
}

// BackupConfig controls the periodic store snapshot job.
type BackupConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Cron    string `yaml:"cron" json:"cron"`
	Keep    int    `yaml:"keep" json:"keep"`
}

// AdminConfig seeds the bootstrap admin account. Ignored when an admin
// already exists in the users file.
type AdminConfig struct {
	Name     string `yaml:"name" json:"name"`
	Phone    string `yaml:"phone" json:"phone"`
	Password string `yaml:"password" json:"password"`
}

type AppConfig struct {
	System  SysConfig     `yaml:"system" json:"system"`
	Web     WebConfig     `yaml:"web" json:"web"`
	Logger  LoggerConfig  `yaml:"logger" json:"logger"`
	Session SessionConfig `yaml:"session" json:"session"`
	Backup  BackupConfig  `yaml:"backup" json:"backup"`
	Admin   AdminConfig   `yaml:"admin" json:"admin"`
}

// ProductsFile returns the path of the product collection file.
func (c *AppConfig) ProductsFile() string {
	return path.Join(c.System.Workdir, "products.json")
}

// UsersFile returns the path of the user collection file.
func (c *AppConfig) UsersFile() string {
	return path.Join(c.System.Workdir, "users.json")
}

// OrdersFile returns the path of the order collection file.
func (c *AppConfig) OrdersFile() string {
	return path.Join(c.System.Workdir, "orders.json")
}

// BackupDir returns the directory snapshot backups are written to.
func (c *AppConfig) BackupDir() string {
	return path.Join(c.System.Workdir, "backup")
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "cashcarry",
			Workdir:  "/var/cashcarry",
			Location: "Africa/Johannesburg",
			Debug:    false,
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 4000,
		},
		Logger: LoggerConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/cashcarry/cashcarry.log",
		},
		Session: SessionConfig{TTL: 0},
		Backup: BackupConfig{
			Enabled: false,
			Cron:    "@daily",
			Keep:    7,
		},
	}
}

// LoadConfig reads the YAML file at cfile over the defaults and then applies
// CASHCARRY_* environment overrides. A missing file is not an error; the
// defaults plus environment apply.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig()
	if cfile != "" {
		if raw, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(raw, cfg)
		}
	}
	cfg.setupEnvValues()
	return cfg
}

func (c *AppConfig) setupEnvValues() {
	setEnvString("CASHCARRY_WORKDIR", &c.System.Workdir)
	setEnvString("CASHCARRY_LOCATION", &c.System.Location)
	setEnvBool("CASHCARRY_DEBUG", &c.System.Debug)

	setEnvString("CASHCARRY_WEB_HOST", &c.Web.Host)
	setEnvInt("CASHCARRY_WEB_PORT", &c.Web.Port)
	setEnvString("CASHCARRY_WEB_WEBROOT", &c.Web.Webroot)

	setEnvString("CASHCARRY_LOGGER_MODE", &c.Logger.Mode)

	setEnvInt64("CASHCARRY_SESSION_TTL", &c.Session.TTL)

	setEnvBool("CASHCARRY_BACKUP_ENABLED", &c.Backup.Enabled)
	setEnvString("CASHCARRY_BACKUP_CRON", &c.Backup.Cron)
	setEnvInt("CASHCARRY_BACKUP_KEEP", &c.Backup.Keep)

	setEnvString("CASHCARRY_ADMIN_NAME", &c.Admin.Name)
	setEnvString("CASHCARRY_ADMIN_PHONE", &c.Admin.Phone)
	setEnvString("CASHCARRY_ADMIN_PASSWORD", &c.Admin.Password)
}

func setEnvString(name string, val *string) {
	if evalue, ok := os.LookupEnv(name); ok {
		*val = evalue
	}
}

func setEnvBool(name string, val *bool) {
	if evalue, ok := os.LookupEnv(name); ok {
		*val = cast.ToBool(evalue)
	}
}

func setEnvInt(name string, val *int) {
	if evalue, ok := os.LookupEnv(name); ok {
		*val = cast.ToInt(evalue)
	}
}

func setEnvInt64(name string, val *int64) {
	if evalue, ok := os.LookupEnv(name); ok {
		*val = cast.ToInt64(evalue)
	}
}
