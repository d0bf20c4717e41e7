package kv

import (
	"log/slog"

	"github.com/ValentinKolb/sKV/cmd/util"
	"github.com/ValentinKolb/sKV/lib/codec"
	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/spf13/cobra"
)

var (
	kvStore store.IStore
	kvCodec codec.ICodec

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value store operations",
		PersistentPreRunE: setupStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common store flags to the KV command
	util.SetupStoreFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(allCmd)
	KeyValueCommands.AddCommand(updateCmd)
	KeyValueCommands.AddCommand(clearCmd)
	KeyValueCommands.AddCommand(infoCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupStore opens the store file for the subcommands
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	util.SetupLogger()

	// Open the store described by the configuration
	conf := util.GetStoreConfig()
	slog.Debug("opening store", "file", conf.File, "codec", conf.Codec)

	var err error
	kvStore, kvCodec, err = util.NewStore(conf)
	return err
}
