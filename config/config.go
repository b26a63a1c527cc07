package config

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the server settings
type ServerConfig struct {
	ListenAddrIP     string
	ListenAddrPort   string
	DatabaseType     string // sqlite, postgres, cockroachdb, ephemeral or none
	DatabasePath     string // sqlite file, ":memory:" allowed
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string `json:"-"`
	DatabaseDbname   string
	DatabaseSslmode  string
	MaxUploadMB      int
	HandleIdle       time.Duration // handles unused for longer are closed by the reaper
	ReapInterval     time.Duration
	RenderConfig
}

// RenderConfig holds the engine and default render settings shared by the server and the CLI
type RenderConfig struct {
	PDFEngine      string // pdfium or fitz
	PasswordPolicy string // ignore or forward
	InstanceWait   time.Duration
	DefaultHDPI    float64
	DefaultVDPI    float64
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

func loadEnvFiles() {
	// silently ignore missing files
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")
}

// loadRenderConfig reads the engine settings shared by every entry point
func loadRenderConfig() RenderConfig {
	return RenderConfig{
		PDFEngine:      getEnv("PDF_ENGINE", "pdfium"),
		PasswordPolicy: getEnv("PASSWORD_POLICY", "ignore"),
		InstanceWait:   time.Duration(getEnvInt("PDFIUM_INSTANCE_WAIT_SECONDS", 30)) * time.Second,
		DefaultHDPI:    getEnvFloat("DEFAULT_HDPI", 72),
		DefaultVDPI:    getEnvFloat("DEFAULT_VDPI", 72),
	}
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive := ServerConfig{}

	loadEnvFiles()

	logger := setupLogging()
	Logger = logger

	// Server configuration
	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")
	serverConfigLive.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", 64)

	// Database configuration
	serverConfigLive.DatabaseType = getEnv("DATABASE_TYPE", "sqlite")
	serverConfigLive.DatabasePath = getEnv("DATABASE_PATH", "pdfbridge.db")
	serverConfigLive.DatabaseHost = getEnv("DATABASE_HOST", "localhost")
	serverConfigLive.DatabasePort = getEnv("DATABASE_PORT", "5432")
	serverConfigLive.DatabaseUser = getEnv("DATABASE_USER", "pdfbridge")
	serverConfigLive.DatabasePassword = getEnv("DATABASE_PASSWORD", "")
	serverConfigLive.DatabaseDbname = getEnv("DATABASE_NAME", "pdfbridge")
	serverConfigLive.DatabaseSslmode = getEnv("DATABASE_SSLMODE", "disable")

	logger.Info("Database configuration loaded", "type", serverConfigLive.DatabaseType)

	// Handle lifecycle
	serverConfigLive.HandleIdle = time.Duration(getEnvInt("HANDLE_IDLE_MINUTES", 30)) * time.Minute
	serverConfigLive.ReapInterval = time.Duration(getEnvInt("REAP_INTERVAL_MINUTES", 5)) * time.Minute

	serverConfigLive.RenderConfig = loadRenderConfig()
	if err := serverConfigLive.RenderConfig.Validate(); err != nil {
		logger.Error("Invalid render configuration, falling back to defaults", "error", err)
		serverConfigLive.RenderConfig = RenderConfig{
			PDFEngine:      "pdfium",
			PasswordPolicy: "ignore",
			InstanceWait:   30 * time.Second,
			DefaultHDPI:    72,
			DefaultVDPI:    72,
		}
	}

	fmt.Println("\n========================================")
	fmt.Println("   pdfbridge - PDF rendering bridge")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	fmt.Printf("PDF engine: %s (passwords: %s)\n", serverConfigLive.PDFEngine, serverConfigLive.PasswordPolicy)
	fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "pdfbridge.log"))
	fmt.Println("Initializing...")

	logger.Info("Render configuration loaded",
		"engine", serverConfigLive.PDFEngine,
		"passwordPolicy", serverConfigLive.PasswordPolicy,
		"hdpi", serverConfigLive.DefaultHDPI,
		"vdpi", serverConfigLive.DefaultVDPI,
		"handleIdle", serverConfigLive.HandleIdle)

	return serverConfigLive, logger
}

// SetupCLI loads configuration for the one-shot render command. Logs go to
// stderr unless LOG_OUTPUT says otherwise.
func SetupCLI() (RenderConfig, *slog.Logger) {
	loadEnvFiles()
	if os.Getenv("LOG_OUTPUT") == "" {
		os.Setenv("LOG_OUTPUT", "stderr")
	}
	if os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", "warn")
	}

	logger := setupLogging()
	Logger = logger

	renderConfig := loadRenderConfig()
	logger.Info("CLI configuration loaded", "engine", renderConfig.PDFEngine, "passwordPolicy", renderConfig.PasswordPolicy)
	return renderConfig, logger
}

// Validate checks the engine name, the password policy and the default resolution
func (c RenderConfig) Validate() error {
	if err := checkEngine(c.PDFEngine); err != nil {
		return err
	}
	switch c.PasswordPolicy {
	case "ignore", "forward":
	default:
		return fmt.Errorf("unknown password policy %q (supported: ignore, forward)", c.PasswordPolicy)
	}
	if c.DefaultHDPI <= 0 || c.DefaultVDPI <= 0 {
		return fmt.Errorf("default resolution must be positive, got %gx%g DPI", c.DefaultHDPI, c.DefaultVDPI)
	}
	return nil
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "debug")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	handlerOptions := &slog.HandlerOptions{Level: level, AddSource: getEnvBool("LOG_SOURCE", false)}

	logOutput := getEnv("LOG_OUTPUT", "file")
	var logWriter io.Writer

	switch logOutput {
	case "stdout":
		logWriter = os.Stdout
	case "stderr":
		logWriter = os.Stderr
	default:
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "pdfbridge.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}

// GetPreferredOutboundIP gets preferred outbound IP of this machine
func GetPreferredOutboundIP() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP, nil
}

// checkEngine verifies the PDF engine name
func checkEngine(name string) error {
	switch name {
	case "pdfium", "fitz":
		return nil
	}
	return fmt.Errorf("unknown PDF engine %q (supported: pdfium, fitz)", name)
}
