package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mdlehane/fwatch/internal/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appTitle = "File/Directory Watcher"

var (
	cfgFile string
	version = "0.1.38"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fwatch",
	Short: "Watch a file or directory and run a command on change",
	Long: `fwatch watches for a change on a file, files or directory,
then executes the given command once the burst of changes has settled.

Examples:
  fwatch --file notes.txt --exec "make html"
  fwatch -f ./src -e "go test ./..." --verbose`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatcher()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if len(os.Args) == 1 {
		return rootCmd.Help()
	}
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.Flags().StringP("file", "f", "", "File or directory to watch for changes")
	rootCmd.Flags().BoolP("stdin", "s", false, "Read stdin rather than a file")
	rootCmd.Flags().StringP("exec", "e", "", "Command to execute upon a change event")
	rootCmd.Flags().BoolP("once", "1", false, "Wait for a single change, default is a continuous scan")
	rootCmd.Flags().BoolP("verbose", "v", false, "Print debug information and event data to stdout")
	rootCmd.Flags().Bool("path", false, "Display the program path on stdout")

	// Bind flags to viper
	viper.BindPFlag("file", rootCmd.Flags().Lookup("file"))
	viper.BindPFlag("stdin", rootCmd.Flags().Lookup("stdin"))
	viper.BindPFlag("exec", rootCmd.Flags().Lookup("exec"))
	viper.BindPFlag("once", rootCmd.Flags().Lookup("once"))
	viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("path", rootCmd.Flags().Lookup("path"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".fwatch" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fwatch")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func runWatcher() error {
	if viper.GetBool("path") {
		reportPath()
		return nil
	}

	target := viper.GetString("file")
	if viper.GetBool("stdin") {
		// Stdin selection clears the file target; watching stdin itself is
		// not implemented.
		target = ""
	}
	command := viper.GetString("exec")

	if target == "" {
		return errors.New("please supply a file or directory to watch for changes (--file)")
	}
	if command == "" {
		return errors.New("please supply a command to execute on file change (--exec)")
	}

	continuous := !viper.GetBool("once")
	verbose := viper.GetBool("verbose")

	if verbose {
		mode := "Continuous"
		if !continuous {
			mode = "Single"
		}
		fmt.Printf("%s watch for change on %s\n", mode, target)
		fmt.Printf("Execute '%s' on event.\n", command)
	}

	return watch.Run(target, command, continuous, verbose)
}

// reportPath prints the program working directory on stdout.
func reportPath() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting current directory: %v\n", err)
		return
	}
	fmt.Printf("%s: %s\n", appTitle, wd)
}
