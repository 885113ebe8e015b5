package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mkch/bitrec/schema"
)

func newSchemaCmd(a *app) *cobra.Command {
	var sf schemaFlags
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print schema layouts and fingerprints",
		Long: `schema prints the entry layout of a schema and its BLAKE3 fingerprint.
Given a document without --type, every type in it is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if sf.builtin == "" && sf.file != "" && sf.typ == "" {
				set, err := a.registry.Load(sf.file)
				if err != nil {
					return err
				}
				for _, name := range set.Names() {
					s, _ := set.Lookup(name)
					printSchema(w, s)
				}
				return nil
			}
			s, err := a.schema(&sf)
			if err != nil {
				return err
			}
			printSchema(w, s)
			return nil
		},
	}
	sf.register(cmd.Flags())
	return cmd
}

func printSchema(w io.Writer, s *schema.Schema) {
	fmt.Fprint(w, s)
	fmt.Fprintf(w, "fingerprint %s\n\n", s.Fingerprint())
}
