package configuration

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrsync/pkg/backoff"
	"github.com/iota-uz/hrsync/pkg/logging"
)

const Production = "production"

var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadEnv loads the env files that exist. Files missing from the working
// directory are looked up in the nearest parent that holds a go.mod.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if path, ok := locate(file); ok {
			existingFiles = append(existingFiles, path)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

func locate(file string) (string, bool) {
	if fileExists(file) {
		return file, true
	}
	if filepath.IsAbs(file) {
		return "", false
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if fileExists(filepath.Join(dir, "go.mod")) {
			candidate := filepath.Join(dir, file)
			return candidate, fileExists(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type HRISOptions struct {
	TokenURL         string `env:"KEKA_URL"`
	ClientID         string `env:"CLIENT_ID"`
	ClientSecret     string `env:"CLIENT_SECRET"`
	GrantType        string `env:"GRANT_TYPE" envDefault:"kekaapi"`
	Scope            string `env:"SCOPE" envDefault:"kekaapi"`
	APIKey           string `env:"API_KEY"`
	AttendanceAPIKey string `env:"API_KEY_ATTENDANCE"`

	EmployeesURL  string `env:"HRIS_EMPLOYEES_URL"`
	AttendanceURL string `env:"HRIS_ATTENDANCE_URL"`
	// Query parameter names for the attendance window, "from,to" or "startDate,endDate".
	AttendanceRangeParams []string `env:"HRIS_ATTENDANCE_RANGE_PARAMS" envDefault:"from,to" envSeparator:","`

	PageSize        int           `env:"HRIS_PAGE_SIZE" envDefault:"200"`
	PageDelay       time.Duration `env:"HRIS_PAGE_DELAY" envDefault:"1s"`
	AttendanceDelay time.Duration `env:"HRIS_ATTENDANCE_DELAY" envDefault:"1500ms"`
	RequestTimeout  time.Duration `env:"HRIS_REQUEST_TIMEOUT" envDefault:"30s"`
	AuthRetries     int           `env:"HRIS_AUTH_RETRIES" envDefault:"1"`

	RetryMaxAttempts int           `env:"HRIS_RETRY_MAX_ATTEMPTS" envDefault:"4"`
	RetryBaseDelay   time.Duration `env:"HRIS_RETRY_BASE_DELAY" envDefault:"2s"`
	RetryMaxDelay    time.Duration `env:"HRIS_RETRY_MAX_DELAY" envDefault:"30s"`
	RetryStrategy    string        `env:"HRIS_RETRY_STRATEGY" envDefault:"linear"`
}

func (o *HRISOptions) Validate() error {
	if o.PageSize <= 0 {
		return fmt.Errorf("HRIS_PAGE_SIZE must be positive, got %d", o.PageSize)
	}
	if o.AuthRetries < 0 || o.AuthRetries > 2 {
		return fmt.Errorf("HRIS_AUTH_RETRIES must be between 0 and 2, got %d", o.AuthRetries)
	}
	if o.RetryMaxAttempts < 0 {
		return fmt.Errorf("HRIS_RETRY_MAX_ATTEMPTS must be non-negative, got %d", o.RetryMaxAttempts)
	}
	if len(o.AttendanceRangeParams) != 2 {
		return fmt.Errorf("HRIS_ATTENDANCE_RANGE_PARAMS must name exactly two parameters, got %q", strings.Join(o.AttendanceRangeParams, ","))
	}
	if _, err := backoff.ParseStrategy(o.RetryStrategy); err != nil {
		return err
	}
	return nil
}

// RetryPolicy builds the shared backoff policy for token, page and attendance calls.
func (o *HRISOptions) RetryPolicy() backoff.Policy {
	strategy, _ := backoff.ParseStrategy(o.RetryStrategy)
	return backoff.Policy{
		MaxAttempts: o.RetryMaxAttempts,
		BaseDelay:   o.RetryBaseDelay,
		MaxDelay:    o.RetryMaxDelay,
		Strategy:    strategy,
	}
}

type ExportOptions struct {
	OutputDir          string `env:"TARGET_FILE_PATH" envDefault:"output"`
	DirectoryTemplate  string `env:"TEMPLATE_FILE_PATH"`
	RosterTemplate     string `env:"TEMPLATE_FILE_PATH_DICE"`
	AttendanceTemplate string `env:"ATT_TEMPLATE_FILE_PATH"`
	Timezone           string `env:"EXPORT_TIMEZONE" envDefault:"Local"`

	// Zero-based cell below the template header where exported rows start.
	TemplateStartRow    int `env:"TEMPLATE_START_ROW" envDefault:"0"`
	TemplateStartColumn int `env:"TEMPLATE_START_COLUMN" envDefault:"0"`

	ActiveStatusCode        int      `env:"EXPORT_ACTIVE_STATUS" envDefault:"0"`
	ExcludedEmployeeNumbers []string `env:"EXPORT_EXCLUDED_EMPLOYEES" envDefault:"TEST001,TEST002,TEST003,TEST004,TEST005" envSeparator:","`
	EmailDomains            []string `env:"EXPORT_EMAIL_DOMAINS" envSeparator:","`
	DirectoryGroups         []string `env:"EXPORT_DIRECTORY_GROUPS" envDefault:"Support Office,Support Zones" envSeparator:","`
	GroupIdentifier         string   `env:"EXPORT_GROUP_IDENTIFIER" envDefault:"8A5FA38D-592E-4EE5-9DC2-1A984EFF6E68"`
	PlaceholderEmail        string   `env:"EXPORT_PLACEHOLDER_EMAIL"`
	PlaceholderName         string   `env:"EXPORT_PLACEHOLDER_NAME" envDefault:"Test"`

	RosterTitles          []string `env:"ROSTER_SECONDARY_TITLES" envDefault:"center manager,cluster manager" envSeparator:","`
	RosterEmployeeNumbers []string `env:"ROSTER_EMPLOYEE_NUMBERS" envSeparator:","`
	RosterRequireActive   bool     `env:"ROSTER_REQUIRE_ACTIVE" envDefault:"false"`

	AttendanceColumns       int      `env:"ATTENDANCE_COLUMNS" envDefault:"17"`
	AttendanceSkipStatuses  []string `env:"ATTENDANCE_SKIP_STATUSES" envDefault:"pending" envSeparator:","`
	DirectoryDestinations   []string `env:"DIRECTORY_DESTINATIONS" envDefault:"sftp" envSeparator:","`
	RosterDestinations      []string `env:"ROSTER_DESTINATIONS" envDefault:"sftp_roster" envSeparator:","`
	AttendanceDestinations  []string `env:"ATTENDANCE_DESTINATIONS" envSeparator:","`
	DestinationStartupCheck bool     `env:"DESTINATION_STARTUP_CHECK" envDefault:"false"`
}

func (o *ExportOptions) Validate() error {
	if o.AttendanceColumns != 17 && o.AttendanceColumns != 19 {
		return fmt.Errorf("ATTENDANCE_COLUMNS must be 17 or 19, got %d", o.AttendanceColumns)
	}
	if o.TemplateStartRow < 0 || o.TemplateStartColumn < 0 {
		return fmt.Errorf("TEMPLATE_START_ROW and TEMPLATE_START_COLUMN must be non-negative")
	}
	if strings.TrimSpace(o.OutputDir) == "" {
		return fmt.Errorf("TARGET_FILE_PATH is required")
	}
	if _, err := time.LoadLocation(o.Timezone); err != nil {
		return fmt.Errorf("invalid EXPORT_TIMEZONE=%q: %w", o.Timezone, err)
	}
	if o.directoryConfigured() && !hasValue(o.EmailDomains) {
		return fmt.Errorf("EXPORT_EMAIL_DOMAINS is required for the directory export")
	}
	return nil
}

func (o *ExportOptions) directoryConfigured() bool {
	return strings.TrimSpace(o.DirectoryTemplate) != "" || hasValue(o.DirectoryDestinations)
}

func hasValue(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// Placeholder returns the substitute email for missing approvers.
func (o *ExportOptions) Placeholder() string {
	if strings.TrimSpace(o.PlaceholderEmail) != "" {
		return o.PlaceholderEmail
	}
	for _, d := range o.EmailDomains {
		if d = strings.TrimSpace(d); d != "" {
			return o.PlaceholderName + "@" + d
		}
	}
	return ""
}

func (o *ExportOptions) Location() *time.Location {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type SFTPOptions struct {
	Host           string        `env:"HOST_NAME"`
	Port           int           `env:"PORT" envDefault:"22"`
	User           string        `env:"USER_NAME"`
	Password       string        `env:"PASSWORD"`
	PrivateKeyPath string        `env:"KEY_PATH"`
	Passphrase     string        `env:"KEY_PASSPHRASE"`
	HostKey        string        `env:"HOST_KEY"`
	Folder         string        `env:"FOLDER"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

func (o *SFTPOptions) Enabled() bool {
	return strings.TrimSpace(o.Host) != ""
}

func (o *SFTPOptions) Validate(prefix string) error {
	if !o.Enabled() {
		return nil
	}
	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("%sPORT out of range: %d", prefix, o.Port)
	}
	if strings.TrimSpace(o.User) == "" {
		return fmt.Errorf("%sUSER_NAME is required when %sHOST_NAME is set", prefix, prefix)
	}
	if o.Password == "" && o.PrivateKeyPath == "" {
		return fmt.Errorf("%sPASSWORD or %sKEY_PATH is required", prefix, prefix)
	}
	return nil
}

type DriveOptions struct {
	CredentialsFile string `env:"GDRIVE_CREDENTIALS_FILE"`
	CredentialsJSON string `env:"GDRIVE_CREDENTIALS"`
	FolderID        string `env:"GDRIVE_FOLDER_ID"`
}

func (o *DriveOptions) Enabled() bool {
	return strings.TrimSpace(o.FolderID) != "" && (o.CredentialsFile != "" || o.CredentialsJSON != "")
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	// ulule/limiter formatted rate, e.g. "6-H" is six sync runs per hour.
	SyncRate string `env:"RATE_LIMIT_SYNC_RATE" envDefault:"6-H"`
}

func (r *RateLimitOptions) Validate() error {
	if r.Enabled && strings.TrimSpace(r.SyncRate) == "" {
		return fmt.Errorf("RATE_LIMIT_SYNC_RATE is required when rate limiting is enabled")
	}
	return nil
}

// Configuration is built once at startup and handed to every component.
type Configuration struct {
	HRIS       HRISOptions
	Export     ExportOptions
	SFTP       SFTPOptions `envPrefix:"FTP_"`
	RosterSFTP SFTPOptions `envPrefix:"DICE_FTP_"`
	Drive      DriveOptions
	Prometheus PrometheusOptions
	RateLimit  RateLimitOptions

	ServerPort       int    `env:"PORT" envDefault:"8000"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath          string `env:"LOG_PATH"`
	RequestIDHeader  string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`

	logFile io.Closer
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

// Load reads env files and the process environment into a fresh Configuration.
func Load(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(c.LogPath) != "" {
		f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
		if err != nil {
			return err
		}
		c.logFile = f
		c.logger = logger
	} else {
		c.logger = logging.ConsoleLogger(c.LogrusLogLevel())
	}

	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) Validate() error {
	if err := c.HRIS.Validate(); err != nil {
		return fmt.Errorf("hris configuration error: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export configuration error: %w", err)
	}
	if err := c.SFTP.Validate("FTP_"); err != nil {
		return fmt.Errorf("sftp configuration error: %w", err)
	}
	if err := c.RosterSFTP.Validate("DICE_FTP_"); err != nil {
		return fmt.Errorf("sftp configuration error: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	return nil
}

// Unload closes the log file, if any.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
