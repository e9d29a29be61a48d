package config

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"copymanga/internal/domain"
	"copymanga/internal/logger"
	"copymanga/internal/source"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	DefaultRequestsPerPeriod = 6
	DefaultPeriodMillis      = 1000
)

var configTemplate = `# config.yaml

# Download Location
# Needs to be filled out for the monitor command, e.g. "/data/downloads/manga"
#
# Default: ""
#
downloadLocation: ""

# Naming Template
# This can be used to change how the downloaded chapter will be named
# {num} is the position of the chapter in reading order
# The default will result something like this: 海贼王 Ch. 001 - 第1话
#
# Default: {manga:<.>} Ch. {num:3}{title: - <.>}
#
namingTemplate: "{manga:<.>} Ch. {num:3}{title: - <.>}"

# Check interval in minutes
#
# Default: 15
#
checkInterval: 15

# Rate limit
# Maximum amount of requests to the api per period
#
# Default: 6
#
# Options: 1 - 10
#
requestsPerPeriod: 6

# Rate limit period in milliseconds
#
# Default: 1000
#
# Options: 500 - 6000, in steps of 500
#
periodMillis: 1000

# Upscale
# Route page images through an image enhancement proxy
#
# Default: false
#
upscaleEnabled: false

# Upscale URL Template
# Must contain {url}, which is replaced with the image url
#
# Default: "https://wsrv.nl/?url={url}&w=3000&fit=inside&sharp=1&output=webp"
#
upscaleUrlTemplate: "https://wsrv.nl/?url={url}&w=3000&fit=inside&sharp=1&output=webp"

# Monitored Manga
# Here you can define which manga you want to monitor
#
monitoredManga:
  # Custom name you can give the entry to easily distinguish between them
  #
  One Piece:
    # Key or path word of the manga
    #
    manga: "/api/v3/comic2/haizeiwang"

    # Output format, "cbz" or "pdf"
    #
    # Default: "cbz"
    #
    format: "cbz"

# copymanga logs file
# If not defined, logs to stdout
# Make sure to use forward slashes and include the filename with extension. e.g. "logs/copymanga.log", "C:/copymanga/logs/copymanga.log"
#
# Optional
#
#logPath: ""

# Log level
#
# Default: "DEBUG"
#
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
#
logLevel: "DEBUG"

# Log Max Size
#
# Default: 50
#
# Max log size in megabytes
#
#logMaxSize: 50

# Log Max Backups
#
# Default: 3
#
# Max amount of old log files
#
#logMaxBackups: 3
`

func (c *AppConfig) writeConfig(configPath string, configFile string) error {
	cfgPath := filepath.Join(configPath, configFile)

	// check if configPath exists, if not create it
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		err := os.MkdirAll(configPath, os.ModePerm)
		if err != nil {
			log.Println(err)
			return err
		}
	}

	// check if config exists, if not create it
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {

		f, err := os.Create(cfgPath)
		if err != nil { // perm 0666
			// handle failed create
			log.Printf("error creating file: %q", err)
			return err
		}
		defer f.Close()

		if _, err = f.WriteString(configTemplate); err != nil {
			log.Printf("error writing contents to file: %v %q", configPath, err)
			return err
		}

		return f.Sync()
	}

	return nil
}

type Config interface {
	UpdateConfig() error
	DynamicReload(log logger.Logger, upscale UpscaleUpdater)
}

// UpscaleUpdater receives validated upscale settings on reload.
type UpscaleUpdater interface {
	UpdateUpscale(enabled bool, template string) error
}

type AppConfig struct {
	Config *domain.Config
	m      *sync.Mutex
	v      *viper.Viper
}

func New(configPath string, version string) *AppConfig {
	c := &AppConfig{
		m: new(sync.Mutex),
		v: viper.New(),
	}
	c.defaults()
	c.Config = &domain.Config{
		Version:    version,
		ConfigPath: configPath,
	}

	c.load(configPath)
	c.loadFromEnv()
	c.validate()

	return c
}

func (c *AppConfig) defaults() {
	c.v.SetDefault("downloadLocation", "")
	c.v.SetDefault("namingTemplate", "{manga:<.>} Ch. {num:3}{title: - <.>}")
	c.v.SetDefault("checkInterval", 15)
	c.v.SetDefault("monitoredManga", make(map[string]*domain.MonitoredManga))
	c.v.SetDefault("requestsPerPeriod", DefaultRequestsPerPeriod)
	c.v.SetDefault("periodMillis", DefaultPeriodMillis)
	c.v.SetDefault("upscaleEnabled", false)
	c.v.SetDefault("upscaleUrlTemplate", source.DefaultUpscaleURLTemplate)
	c.v.SetDefault("logPath", "")
	c.v.SetDefault("logLevel", "DEBUG")
	c.v.SetDefault("logMaxSize", 50)
	c.v.SetDefault("logMaxBackups", 3)
}

func (c *AppConfig) loadFromEnv() {
	prefix := "COPYMANGA__"

	envs := os.Environ()
	for _, env := range envs {
		if strings.HasPrefix(env, prefix) {
			envPair := strings.SplitN(env, "=", 2)

			if envPair[1] != "" {
				switch envPair[0] {
				case prefix + "DOWNLOAD_LOCATION":
					c.Config.DownloadLocation = envPair[1]
				case prefix + "NAMING_TEMPLATE":
					c.Config.NamingTemplate = envPair[1]
				case prefix + "CHECK_INTERVAL":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.CheckInterval = int(i)
					}
				case prefix + "REQUESTS_PER_PERIOD":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.RequestsPerPeriod = int(i)
					}
				case prefix + "PERIOD_MILLIS":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.PeriodMillis = int(i)
					}
				case prefix + "UPSCALE_ENABLED":
					if b, err := strconv.ParseBool(envPair[1]); err == nil {
						c.Config.UpscaleEnabled = b
					}
				case prefix + "UPSCALE_URL_TEMPLATE":
					c.Config.UpscaleURLTemplate = envPair[1]
				case prefix + "LOG_LEVEL":
					c.Config.LogLevel = envPair[1]
				case prefix + "LOG_PATH":
					c.Config.LogPath = envPair[1]
				case prefix + "LOG_MAX_SIZE":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.LogMaxSize = int(i)
					}
				case prefix + "LOG_MAX_BACKUPS":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.LogMaxBackups = int(i)
					}
				}
			}
		}
	}
}

func (c *AppConfig) load(configPath string) {
	c.v.SetConfigType("yaml")

	// clean trailing slash from configPath
	configPath = path.Clean(configPath)
	if configPath != "" && configPath != "." {
		// check if path and file exists
		// if not, create path and file
		if err := c.writeConfig(configPath, "config.yaml"); err != nil {
			log.Printf("write error: %q", err)
		}

		c.v.SetConfigFile(path.Join(configPath, "config.yaml"))
	} else {
		c.v.SetConfigName("config")

		// Search config in directories
		c.v.AddConfigPath(".")
		c.v.AddConfigPath("$HOME/.config/copymanga")
		c.v.AddConfigPath("$HOME/.copymanga")
	}

	// read config
	if err := c.v.ReadInConfig(); err != nil {
		log.Printf("config read error: %q", err)
	}

	if err := c.v.Unmarshal(c.Config); err != nil {
		log.Fatalf("Could not unmarshal config file: %v: err %q", c.v.ConfigFileUsed(), err)
	}
}

// ValidRequestsPerPeriod reports whether n is one of the selectable rate permits.
func ValidRequestsPerPeriod(n int) bool {
	return n >= 1 && n <= 10
}

// ValidPeriodMillis reports whether ms is one of the selectable rate periods.
func ValidPeriodMillis(ms int) bool {
	return ms >= 500 && ms <= 6000 && ms%500 == 0
}

// validate resets out of range values to their defaults.
func (c *AppConfig) validate() {
	if !ValidRequestsPerPeriod(c.Config.RequestsPerPeriod) {
		log.Printf("invalid requestsPerPeriod %d, using %d", c.Config.RequestsPerPeriod, DefaultRequestsPerPeriod)
		c.Config.RequestsPerPeriod = DefaultRequestsPerPeriod
	}

	if !ValidPeriodMillis(c.Config.PeriodMillis) {
		log.Printf("invalid periodMillis %d, using %d", c.Config.PeriodMillis, DefaultPeriodMillis)
		c.Config.PeriodMillis = DefaultPeriodMillis
	}

	if err := source.ValidateUpscaleTemplate(c.Config.UpscaleURLTemplate); err != nil {
		log.Printf("invalid upscaleUrlTemplate, using default: %v", err)
		c.Config.UpscaleURLTemplate = source.DefaultUpscaleURLTemplate
	}

	if c.Config.CheckInterval <= 0 {
		c.Config.CheckInterval = 15
	}
}

// RequireDownloadLocation is checked by commands that write to disk.
func (c *AppConfig) RequireDownloadLocation() error {
	if c.Config.DownloadLocation == "" {
		return errors.New("downloadLocation can't be empty, please provide a valid path to the directory you want your downloads to go to")
	}

	return nil
}

func (c *AppConfig) DynamicReload(log logger.Logger, upscale UpscaleUpdater) {
	c.v.WatchConfig()

	c.v.OnConfigChange(func(_ fsnotify.Event) {
		c.m.Lock()
		defer c.m.Unlock()

		logLevel := c.v.GetString("logLevel")
		c.Config.LogLevel = logLevel
		log.SetLogLevel(c.Config.LogLevel)

		logPath := c.v.GetString("logPath")
		c.Config.LogPath = logPath

		if err := c.applyUpscale(c.v.GetBool("upscaleEnabled"), c.v.GetString("upscaleUrlTemplate"), upscale); err != nil {
			log.Error().Err(err).Msg("rejected upscale settings, keeping previous values")
		}

		if c.v.GetInt("requestsPerPeriod") != c.Config.RequestsPerPeriod || c.v.GetInt("periodMillis") != c.Config.PeriodMillis {
			log.Warn().Msg("rate limit changes are applied after a restart")
		}

		log.Debug().Msg("config file reloaded!")
	})
}

// applyUpscale stores new upscale settings only when they validate and the
// updater accepts them.
func (c *AppConfig) applyUpscale(enabled bool, template string, upscale UpscaleUpdater) error {
	if err := source.ValidateUpscaleTemplate(template); err != nil {
		return err
	}

	if upscale != nil {
		if err := upscale.UpdateUpscale(enabled, template); err != nil {
			return errors.Wrap(err, "could not update upscale settings")
		}
	}

	c.Config.UpscaleEnabled = enabled
	c.Config.UpscaleURLTemplate = template

	return nil
}

// UpdateConfig writes the effective log and upscale values back into the config file.
func (c *AppConfig) UpdateConfig() error {
	filePath := c.v.ConfigFileUsed()
	if filePath == "" {
		filePath = path.Join(c.Config.ConfigPath, "config.yaml")
	}

	f, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("could not read config filePath: %s: %w", filePath, err)
	}

	lines := strings.Split(string(f), "\n")
	lines = c.processLines(lines)

	output := strings.Join(lines, "\n")
	if err := os.WriteFile(filePath, []byte(output), 0o644); err != nil {
		return fmt.Errorf("could not write config file: %s: %w", filePath, err)
	}

	return nil
}

type configLine struct {
	key     string
	line    string
	comment []string
}

func (c *AppConfig) configLines() []configLine {
	logPathLine := fmt.Sprintf(`logPath: "%s"`, c.Config.LogPath)
	if c.Config.LogPath == "" {
		logPathLine = `#logPath: ""`
	}

	return []configLine{
		{
			key:  "logLevel:",
			line: fmt.Sprintf(`logLevel: "%s"`, c.Config.LogLevel),
			comment: []string{
				"# Log level",
				"#",
				`# Default: "DEBUG"`,
				"#",
				`# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"`,
				"#",
			},
		},
		{
			key:     "logPath:",
			line:    logPathLine,
			comment: []string{"# Log Path", "#", "# Optional", "#"},
		},
		{
			key:     "upscaleUrlTemplate:",
			line:    fmt.Sprintf(`upscaleUrlTemplate: "%s"`, c.Config.UpscaleURLTemplate),
			comment: []string{"# Upscale URL Template", "# Must contain {url}, which is replaced with the image url", "#"},
		},
	}
}

func (c *AppConfig) processLines(lines []string) []string {
	for _, cl := range c.configLines() {
		found := false

		for i, line := range lines {
			if strings.Contains(line, cl.key) {
				lines[i] = cl.line
				found = true
				break
			}
		}

		// append not found values at the bottom
		if !found {
			lines = append(lines, cl.comment...)
			lines = append(lines, cl.line)
		}
	}

	return lines
}
