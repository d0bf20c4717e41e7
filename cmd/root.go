package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/sKV/cmd/kv"
	"github.com/ValentinKolb/sKV/cmd/watch"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "skv",
		Short: "file-backed settings store",
		Long: fmt.Sprintf(`sKV (v%s)

A thread-safe, file-backed key-value settings store written in Go,
with atomic whole-file persistence and pluggable codecs.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(watch.WatchCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
