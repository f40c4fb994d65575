package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gapfill",
	Short: "Gapfill - dialogue gap-fill exercise generator",
	Long: `Gapfill turns a tagged English dialogue into a gap-fill exercise.

It scores every candidate phrase for teaching value, picks well-spaced
blanks across verbs, idioms and locked chunks, lists acceptable
alternative answers for each blank and explains the most useful phrases.

Input is the JSON (or YAML) output of an external tagger: turns with
tokens, lemmas, part-of-speech tags, noun chunks and tagged phrases.

The same input and options always produce the same exercise.`,
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
	Long:  `Display the version number and build information for Gapfill.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gapfill %s\n", buildVersion())
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Printf("  go:        %s\n", info.GoVersion)
		}
	},
}

// buildVersion prefers the linker-set Version, then the module version
func buildVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.gapfill/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".gapfill"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match GAPFILL_* (GAPFILL_EXERCISE_DENSITY, ...)
	viper.SetEnvPrefix("GAPFILL")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	switch {
	case err == nil:
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	case cfgFile != "":
		// An explicit --config that cannot be read is worth a warning
		fmt.Fprintf(os.Stderr, "Warning: cannot read config %s: %v\n", cfgFile, err)
	}
}
