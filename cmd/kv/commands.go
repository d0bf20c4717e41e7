package kv

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/sKV/cmd/util"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := parseValue(args[1])
			if err := kvStore.Set(key, value); err != nil {
				return err
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			// with a fallback only the value is printed
			if cmd.Flags().Changed("default") {
				fallback, _ := cmd.Flags().GetString("default")
				if value, err := kvStore.GetDefault(key, parseValue(fallback)); err != nil {
					return err
				} else {
					fmt.Println(renderValue(value))
				}
				return nil
			}

			if value, found, err := kvStore.Get(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, value=%s\n", key, found, renderValue(value))
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := kvStore.Delete(key); err != nil {
				return err
			} else {
				fmt.Println("delete successfully")
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if found, err := kvStore.Has(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%t\n", key, found)
			}
			return nil
		},
	}
	allCmd = &cobra.Command{
		Use:   "all",
		Short: "Prints all entries encoded with the store codec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := kvStore.GetAll()
			if err != nil {
				return err
			}
			data, err := kvCodec.Encode(entries)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
	updateCmd = &cobra.Command{
		Use:   "update [document]",
		Short: "Applies all entries of a JSON object in one write",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries map[string]any
			if err := json.Unmarshal([]byte(args[0]), &entries); err != nil {
				return fmt.Errorf("document must be a JSON object: %w", err)
			}
			if err := kvStore.Update(entries); err != nil {
				return err
			} else {
				fmt.Printf("updated %d keys\n", len(entries))
			}
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all entries from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvStore.Clear(); err != nil {
				return err
			} else {
				fmt.Println("store cleared")
			}
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints store and file information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := kvStore.GetStoreInfo()
			if err != nil {
				return err
			}
			fmt.Println(info.String())
			return nil
		},
	}
)

func init() {
	// add flags
	getCmd.Flags().String("default", "", util.WrapString("Fallback value to print if the key is missing (parsed like a set value)"))
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseValue interprets a command line argument as a store value. Arguments
// that parse as JSON keep their JSON type (numbers, booleans, null, lists,
// objects), everything else is stored as a plain string.
func parseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}
	return raw
}

// renderValue formats a store value as compact JSON for terminal output
func renderValue(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}
