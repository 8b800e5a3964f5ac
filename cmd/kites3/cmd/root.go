package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/assetnote/kites3/internal/ops"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// These global variables can be configured with the corresponding lowercase flag
var (
	Verbose string // Verbose defines the logging level, either trace, debug, info, error, fatal
	Output  string // Output defines the output format, either pretty, text, json

	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kites3",
	Short: "kites3 talks to s3 compatible object stores",
	Long: `kites3 issues s3 bucket and object requests against any s3 compatible
endpoint using virtual host or path style addressing.
Batch operations are multiplexed over a bounded number of concurrent requests`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnInitialize(initLogging)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kites3.yaml)")

	pf.StringVarP(&Verbose, "verbose", "v", "info", "level of logging verbosity. can be error,info,debug,trace")
	pf.StringVarP(&Output, "output", "o", "pretty", "output format. can be json,text,pretty")

	pf.String("host", "s3.amazonaws.com", "s3 endpoint host, optionally with a port")
	pf.Bool("https", true, "use https to talk to the endpoint")
	pf.Bool("path-style", false, "address buckets as /bucket/key instead of bucket.host/key")
	pf.Duration("timeout", 30*time.Second, "timeout for each request")
	pf.Int("max-redirects", 10, "maximum redirects to follow for a request. 0 disables following")
	pf.Int("concurrency", 16, "maximum concurrent requests for batch operations")
	pf.String("user-agent-info", "", "extra text appended to the user agent")
	pf.Bool("progress", true, "show a progress bar for batch operations")

	for _, name := range []string{"verbose", "output", "host", "https", "path-style", "timeout",
		"max-redirects", "concurrency", "user-agent-info", "progress"} {
		viper.BindPFlag(name, pf.Lookup(name))
	}
}

func initLogging() {
	log.SetFormat(viper.GetString("output"))

	level := viper.GetString("verbose")
	if level != "" {
		if err := log.SetLevelString(level); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize logging")
		}
	}
	log.Debug().Str("level", level).Str("format", viper.GetString("output")).Msg("custom log settings")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".kites3" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".kites3")
	}

	// KITES3_PATH_STYLE overrides path-style
	viper.SetEnvPrefix("KITES3")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// globalOptions converts the persistent flags into ops options
func globalOptions() []ops.Option {
	format, err := ops.FormatFromString(viper.GetString("output"))
	if err != nil {
		log.Fatal().Err(err).Str("output", viper.GetString("output")).Msg("invalid output format")
	}
	return []ops.Option{
		ops.Host(viper.GetString("host")),
		ops.HTTPS(viper.GetBool("https")),
		ops.PathStyle(viper.GetBool("path-style")),
		ops.OutputFormat(format),
		ops.Timeout(viper.GetDuration("timeout")),
		ops.MaxRedirects(viper.GetInt("max-redirects")),
		ops.Concurrency(viper.GetInt("concurrency")),
		ops.UserAgentInfo(viper.GetString("user-agent-info")),
		ops.Progress(viper.GetBool("progress")),
	}
}
