package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bedrocksmith/bsmith/internal/config"
	"github.com/bedrocksmith/bsmith/internal/session"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "bsmith",
	Short: "BedrockSmith - Amazon Bedrock invocation log viewer",
	Long: `BedrockSmith fetches Amazon Bedrock model invocation logs from CloudWatch Logs
and shows each Converse call as readable input, output and metadata.

Viewer Commands:
  bsmith view                   # Interactive terminal viewer
  bsmith serve                  # Same viewer in the browser
  bsmith events list            # Print the most recent invocations
  bsmith events show 1          # Print one invocation by position or event ID

Settings:
  bsmith status                 # Show resolved settings and AWS identity
  bsmith config set limit 200   # Persist a default

Settings resolve as flag > BSMITH_* environment > config file > default.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default "+config.GetConfigPath()+")")
	pf.StringP("profile", "p", "", "AWS profile to use")
	pf.StringP("region", "r", config.DefaultRegion, "AWS region of the log group")
	pf.StringP("log-group", "g", config.DefaultLogGroup, "CloudWatch log group with invocation logs")
	pf.Int("hours", config.DefaultLookbackHours, "lookback window in hours (1, 6, 12, 24, 48, 96)")
	pf.IntP("limit", "n", config.DefaultLimit, fmt.Sprintf("maximum events to fetch (%d-%d)", config.MinLimit, config.MaxLimit))
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// settings holds the resolved query and AWS settings of one invocation
type settings struct {
	ConfigPath    string
	Profile       string
	Region        string
	LogGroup      string
	LookbackHours int
	Limit         int
	ListenAddr    string
}

// Query returns the viewer query of s
func (s *settings) Query() session.Query {
	return session.Query{
		LogGroup:      s.LogGroup,
		Region:        s.Region,
		LookbackHours: s.LookbackHours,
		Limit:         s.Limit,
	}
}

// flagKeys maps persistent flags to config keys
var flagKeys = map[string]string{
	"profile":   "profile",
	"region":    "region",
	"log-group": "log_group",
	"hours":     "lookback_hours",
	"limit":     "limit",
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetConfigPath()
}

// loadSettings resolves settings from flags, environment and the config file
func loadSettings(cmd *cobra.Command) (*settings, error) {
	path := configPath()
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	file := cfg.WithDefaults()

	v := viper.New()
	v.SetEnvPrefix("BSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("profile", "BSMITH_PROFILE", "AWS_PROFILE")
	_ = v.BindEnv("region", "BSMITH_REGION", "AWS_REGION", "AWS_DEFAULT_REGION")

	v.SetDefault("profile", file.Profile)
	v.SetDefault("region", file.Region)
	v.SetDefault("log_group", file.LogGroup)
	v.SetDefault("lookback_hours", file.LookbackHours)
	v.SetDefault("limit", file.Limit)
	v.SetDefault("listen_addr", file.ListenAddr)

	flags := cmd.Root().PersistentFlags()
	for name, key := range flagKeys {
		// Unchanged flags must not shadow the config file
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	if f := cmd.Flags().Lookup("listen"); f != nil && f.Changed {
		if err := v.BindPFlag("listen_addr", f); err != nil {
			return nil, err
		}
	}

	s := &settings{
		ConfigPath:    path,
		Profile:       v.GetString("profile"),
		Region:        v.GetString("region"),
		LogGroup:      v.GetString("log_group"),
		LookbackHours: v.GetInt("lookback_hours"),
		Limit:         v.GetInt("limit"),
		ListenAddr:    v.GetString("listen_addr"),
	}

	if err := config.ValidateLookback(s.LookbackHours); err != nil {
		return nil, err
	}
	if err := config.ValidateLimit(s.Limit); err != nil {
		return nil, err
	}
	if s.LogGroup == "" {
		return nil, fmt.Errorf("log group must not be empty")
	}

	return s, nil
}

// newLogger returns the diagnostics logger. Output goes to w so it never
// mixes with command output
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
