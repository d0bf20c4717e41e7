package util

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ValentinKolb/sKV/lib/codec"
	"github.com/ValentinKolb/sKV/lib/persister"
	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/ValentinKolb/sKV/lib/store/fstore"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds common store flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "file"
	cmd.PersistentFlags().String(key, "~/.skv/store.json", WrapString("Path to the store file. The file and its parent directories are created by the first write"))

	key = "codec"
	cmd.PersistentFlags().String(key, "", WrapString(fmt.Sprintf("File encoding (%s). Defaults to the file extension, or %s if the extension is not a known codec", strings.Join(codec.Names(), ", "), codec.DefaultCodec)))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("Log level (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("skv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// SetupLogger replaces the default slog logger with a tinted handler at the
// configured log level. Colors are disabled when stderr is not a terminal.
func SetupLogger() {
	slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ParseLogLevel(viper.GetString("log-level")),
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))
}

// ParseLogLevel maps a level name to a slog level, defaulting to info
func ParseLogLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// --------------------------------------------------------------------------
// Store configuration
// --------------------------------------------------------------------------

// StoreConfig holds all configuration parameters for a store handle.
type StoreConfig struct {
	// File is the path of the store file
	File string

	// Codec is the name of the registered codec used to encode the file
	Codec string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *StoreConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Store settings
	addSection("Store")
	addField("File", c.File)
	addField("Codec", c.Codec)

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// GetStoreConfig reads store configuration from viper
func GetStoreConfig() *StoreConfig {
	file := ExpandHome(viper.GetString("file"))

	name := viper.GetString("codec")
	if name == "" {
		name = CodecForFile(file)
	}

	return &StoreConfig{
		File:     file,
		Codec:    name,
		LogLevel: viper.GetString("log-level"),
	}
}

// CodecForFile derives the codec name from the file extension, falling back
// to the default codec for unknown extensions
func CodecForFile(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "yml" {
		ext = "yaml"
	}
	if _, err := codec.Get(ext); err == nil {
		return ext
	}
	return codec.DefaultCodec
}

// ExpandHome replaces a leading ~ with the user home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// NewStore creates a file-backed store based on configuration
func NewStore(conf *StoreConfig) (store.IStore, codec.ICodec, error) {
	c, err := codec.Get(conf.Codec)
	if err != nil {
		return nil, nil, err
	}

	s, err := fstore.New(func() persister.IPersister {
		return persister.NewFilePersister(conf.File, c)
	}, c)
	if err != nil {
		return nil, nil, err
	}

	return s, c, nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
