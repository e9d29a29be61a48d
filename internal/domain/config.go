package domain

type Config struct {
	Version            string
	ConfigPath         string
	DownloadLocation   string                     `yaml:"downloadLocation"`
	NamingTemplate     string                     `yaml:"namingTemplate"`
	CheckInterval      int                        `yaml:"checkInterval"`
	MonitoredManga     map[string]*MonitoredManga `yaml:"monitoredManga"`
	RequestsPerPeriod  int                        `yaml:"requestsPerPeriod"`
	PeriodMillis       int                        `yaml:"periodMillis"`
	UpscaleEnabled     bool                       `yaml:"upscaleEnabled"`
	UpscaleURLTemplate string                     `yaml:"upscaleUrlTemplate"`
	LogPath            string                     `yaml:"logPath"`
	LogLevel           string                     `yaml:"LogLevel"`
	LogMaxSize         int                        `yaml:"logMaxSize"` // in megabytes
	LogMaxBackups      int                        `yaml:"logMaxBackups"`
}

type MonitoredManga struct {
	// Manga is either a manga key (/api/v3/comic2/<pathWord>) or a bare path word.
	Manga  string `yaml:"manga"`
	Format string `yaml:"format"`
}
