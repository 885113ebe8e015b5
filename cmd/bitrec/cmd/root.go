// Package cmd implements the bitrec command tree.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mkch/bitrec/catalog"
	"github.com/mkch/bitrec/internal/config"
	"github.com/mkch/bitrec/schema"
	"github.com/mkch/bitrec/schemafile"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg      *config.Config
	logger   *slog.Logger
	registry *schemafile.Registry
}

// NewRootCmd builds a fresh bitrec command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "bitrec",
		Short: "Decode and encode bit-packed binary records",
		Long: `bitrec decodes binary records into YAML, JSON or CBOR and encodes them
back, driven by a schema document or one of the built-in catalog schemas.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvVar+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	root.AddCommand(
		newDecodeCmd(a),
		newEncodeCmd(a),
		newCheckCmd(a),
		newSchemaCmd(a),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if _, err := config.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))
	a.registry = schemafile.NewRegistry(a.logger)
	return nil
}

// schemaFlags select the schema a subcommand works with.
type schemaFlags struct {
	file    string
	typ     string
	builtin string
}

func (f *schemaFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.file, "schema", "s", "", "schema document (.yaml, .yml, .json or .jsonc)")
	fs.StringVarP(&f.typ, "type", "t", "", "type to use from the schema document")
	fs.StringVar(&f.builtin, "builtin", "", "built-in schema ("+strings.Join(catalog.Names(), ", ")+")")
}

// schema resolves the selected schema. Flags win over the config file and
// --builtin wins over --schema.
func (a *app) schema(f *schemaFlags) (*schema.Schema, error) {
	switch {
	case f.builtin != "":
		return builtin(f.builtin)
	case f.file != "":
		return a.fileSchema(f.file, or(f.typ, a.cfg.Type))
	case a.cfg.Builtin != "":
		return builtin(a.cfg.Builtin)
	case a.cfg.Schema != "":
		return a.fileSchema(a.cfg.Schema, or(f.typ, a.cfg.Type))
	}
	return nil, fmt.Errorf("no schema: use --schema or --builtin")
}

func builtin(name string) (*schema.Schema, error) {
	s, ok := catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown built-in schema %q (have %s)", name, strings.Join(catalog.Names(), ", "))
	}
	return s, nil
}

func (a *app) fileSchema(path, typ string) (*schema.Schema, error) {
	set, err := a.registry.Load(path)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		names := set.Names()
		if len(names) != 1 {
			return nil, fmt.Errorf("%s defines %d types, choose one with --type: %s", path, len(names), strings.Join(names, ", "))
		}
		typ = names[0]
	}
	s, ok := set.Lookup(typ)
	if !ok {
		return nil, fmt.Errorf("%s: no type %q", path, typ)
	}
	a.logger.Debug("schema selected", "file", path, "type", typ, "fingerprint", s.Fingerprint().Short())
	return s, nil
}

func or(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
