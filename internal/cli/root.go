// Package cli implements the factsumm command line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aic-factcheck/factsumm/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factsumm",
	Short: "Factsumm - factual consistency scoring for abstractive summaries",
	Long: `Factsumm scores how factually consistent a summary is with its source
document. It compares relation triples extracted from both texts, checks
question-answering agreement, and reports lexical and embedding overlap.

The scores are diagnostic signals, not a verdict: a low score points at
where the summary and the source diverge, a high score means the checked
facts line up.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Factsumm.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("factsumm v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.factsumm/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output with extraction diagnostics")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.factsumm")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match FACTSUMM_*
	viper.SetEnvPrefix("FACTSUMM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the runtime configuration: defaults overlaid with the
// config file and FACTSUMM_* environment variables. Flag overrides are
// applied by the commands afterwards.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	cfg.Output.Verbose = verbose

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

// requireAPIKey fails when an openai/ adapter is configured without a key.
// Called after flag overrides so adapter overrides are respected.
func requireAPIKey(cfg *model.Config) error {
	if usesOpenAI(cfg) && cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set (required by openai/ adapters)")
	}
	return nil
}

func usesOpenAI(cfg *model.Config) bool {
	for _, name := range []string{
		cfg.Adapters.Rel, cfg.Adapters.QG, cfg.Adapters.QA,
		cfg.Adapters.OpenIE, cfg.Adapters.Embedder,
	} {
		if strings.HasPrefix(name, "openai/") {
			return true
		}
	}
	return false
}
