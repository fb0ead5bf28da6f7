package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// File storage backends
const (
	FilesDisk = "disk"
	FilesOSS  = "oss"
)

type (
	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
	}

	DatabaseConfig struct {
		Backend       string
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	MongoConfig struct {
		URI     string
		Name    string
		Timeout time.Duration
	}

	RedisConfig struct {
		Address   string
		Password  string
		DB        int
		CursorTTL time.Duration
	}

	FilesConfig struct {
		Backend            string
		Dir                string
		PublicBaseURL      string
		MaxUploadSize      int64
		OSSEndpoint        string
		OSSAccessKeyID     string
		OSSAccessKeySecret string
		OSSBucket          string
	}

	ListingConfig struct {
		VisibilityWindow      time.Duration
		NotificationsPageSize int
		AssignmentsPageSize   int
		MaterialsPageSize     int
		LatestNotifications   int
	}

	DownloadConfig struct {
		Timeout time.Duration
	}

	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Database DatabaseConfig
		Mongo    MongoConfig
		Redis    RedisConfig
		Files    FilesConfig
		Listing  ListingConfig
		Download DownloadConfig
		Admins   Admins
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewConfig reads the configuration from the environment, prefixed with $ENV,
// after loading `config/.env.<env>` when it exists.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("appName", "DeptPortal")
	v.SetDefault("secretKey", "zq#1-l7n@rv^0o)w=e!k4+b2x5(u9s&t3d%p8*c6y$m_h")

	v.SetDefault("server_host", "localhost")
	v.SetDefault("server_address", ":8000")
	v.SetDefault("server_debugHost", ":4000")
	v.SetDefault("server_jwtExpirationDelta", 12*time.Hour)
	v.SetDefault("server_jwtRefreshExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server_shutdownTimeout", 5*time.Second)
	v.SetDefault("server_readTimeout", 5*time.Second)
	v.SetDefault("server_writeTimeout", 30*time.Second)

	v.SetDefault("database_backend", BackendMemory)
	v.SetDefault("database_engine", "postgres")
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", 5432)
	v.SetDefault("database_name", "deptportal")
	v.SetDefault("database_user", "deptportal")
	v.SetDefault("database_password", "deptportal")
	v.SetDefault("database_disableTLS", true)

	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_name", "deptportal")
	v.SetDefault("mongo_timeout", 10*time.Second)

	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_cursorTTL", 10*time.Minute)

	v.SetDefault("files_backend", FilesDisk)
	v.SetDefault("files_dir", "uploads")
	v.SetDefault("files_publicBaseURL", "http://localhost:8000/uploads")
	v.SetDefault("files_maxUploadSize", int64(20<<20))

	v.SetDefault("listing_visibilityWindow", 24*time.Hour)
	v.SetDefault("listing_notificationsPageSize", 5)
	v.SetDefault("listing_assignmentsPageSize", 5)
	v.SetDefault("listing_materialsPageSize", 6)
	v.SetDefault("listing_latestNotifications", 3)

	v.SetDefault("download_timeout", 30*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      workDir,
		Server: ServerConfig{
			Host:                      v.GetString("server_host"),
			Address:                   v.GetString("server_address"),
			DebugHost:                 v.GetString("server_debugHost"),
			JWTExpirationDelta:        v.GetDuration("server_jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server_jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("server_shutdownTimeout"),
			ReadTimeout:               v.GetDuration("server_readTimeout"),
			WriteTimeout:              v.GetDuration("server_writeTimeout"),
		},
		Database: DatabaseConfig{
			Backend:       v.GetString("database_backend"),
			Engine:        v.GetString("database_engine"),
			Host:          v.GetString("database_host"),
			Port:          v.GetInt("database_port"),
			Name:          v.GetString("database_name"),
			User:          v.GetString("database_user"),
			Password:      v.GetString("database_password"),
			AdminUser:     v.GetString("database_adminUser"),
			AdminPassword: v.GetString("database_adminPassword"),
			DisableTLS:    v.GetBool("database_disableTLS"),
		},
		Mongo: MongoConfig{
			URI:     v.GetString("mongo_uri"),
			Name:    v.GetString("mongo_name"),
			Timeout: v.GetDuration("mongo_timeout"),
		},
		Redis: RedisConfig{
			Address:   v.GetString("redis_address"),
			Password:  v.GetString("redis_password"),
			DB:        v.GetInt("redis_db"),
			CursorTTL: v.GetDuration("redis_cursorTTL"),
		},
		Files: FilesConfig{
			Backend:            v.GetString("files_backend"),
			Dir:                v.GetString("files_dir"),
			PublicBaseURL:      v.GetString("files_publicBaseURL"),
			MaxUploadSize:      v.GetInt64("files_maxUploadSize"),
			OSSEndpoint:        v.GetString("files_ossEndpoint"),
			OSSAccessKeyID:     v.GetString("files_ossAccessKeyID"),
			OSSAccessKeySecret: v.GetString("files_ossAccessKeySecret"),
			OSSBucket:          v.GetString("files_ossBucket"),
		},
		Listing: ListingConfig{
			VisibilityWindow:      v.GetDuration("listing_visibilityWindow"),
			NotificationsPageSize: v.GetInt("listing_notificationsPageSize"),
			AssignmentsPageSize:   v.GetInt("listing_assignmentsPageSize"),
			MaterialsPageSize:     v.GetInt("listing_materialsPageSize"),
			LatestNotifications:   v.GetInt("listing_latestNotifications"),
		},
		Download: DownloadConfig{
			Timeout: v.GetDuration("download_timeout"),
		},
	}

	admins, err := loadAdmins(v)
	if err != nil {
		log.Fatalf("config.loadAdmins: %v", err)
	}
	conf.Admins = admins
	return conf
}

// loadAdmins reads ADMIN_1, ADMIN_2, ... until the first missing one.
func loadAdmins(v *viper.Viper) (Admins, error) {
	var admins Admins
	for i := 1; ; i++ {
		raw := v.GetString(fmt.Sprintf("admin_%d", i))
		if raw == "" {
			return admins, nil
		}
		admin, err := ParseAdmin(raw)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_%d: %w", i, err)
		}
		admins = append(admins, admin)
	}
}

// Getwd finds the project root: the closest parent directory holding a go.mod.
// go test runs from the package directory, so the working directory alone is not enough.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd // not in a source tree (e.g. deployed binary)
		}
		currDir = newDir
	}
}
