package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xtding233/gacha-wish/internal/catalog"
)

// Execute runs the wish command line.
func Execute() error {
	return newRootCmd().Execute()
}

// app carries what every subcommand needs, built once flags and config are read.
type app struct {
	v      *viper.Viper
	loader *catalog.Loader
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "wish",
		Short:         "Pull on gacha banners, simulate pity and price top-ups",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.wire(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (yaml)")
	pf.String("catalog", "", "catalog directory (default: bundled catalog)")
	pf.Uint64("seed", 0, "RNG seed (unset: crypto/rand)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	_ = a.v.BindPFlag("catalog", pf.Lookup("catalog"))
	_ = a.v.BindPFlag("seed", pf.Lookup("seed"))
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))

	a.v.SetEnvPrefix("WISH")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindEnv("catalog", "WISH_CATALOG_DIR")

	rootCmd.AddCommand(
		newBannersCmd(a),
		newPullCmd(a),
		newSimulateCmd(a),
		newCostCmd(a),
	)
	return rootCmd
}

func (a *app) wire(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString("log_level"))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	var fsys fs.FS = catalog.Bundled()
	if dir := a.v.GetString("catalog"); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("catalog dir: %w", err)
		}
		if !info.IsDir() {
			return errors.New("catalog must be a directory")
		}
		fsys = os.DirFS(dir)
	}
	a.loader = catalog.NewLoader(fsys, a.logger)
	return nil
}

// seed returns the seed from the flag, WISH_SEED or the config file, or nil
// when none is set and pulls should use crypto/rand. Zero is a valid seed.
func (a *app) seed() *uint64 {
	if !a.v.IsSet("seed") {
		return nil
	}
	s := a.v.GetUint64("seed")
	return &s
}
