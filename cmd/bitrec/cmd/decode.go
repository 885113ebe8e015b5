package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mkch/bitrec/bitio"
	"github.com/mkch/bitrec/codec"
	"github.com/mkch/bitrec/record"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		sf     schemaFlags
		in     inputFlags
		format string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode binary records to YAML, JSON or CBOR",
		Example: `  bitrec decode --builtin fixed --hex "2f f8 00 07"
  bitrec decode -s items.yaml -t Track -i capture.bin.zst --in-compression zstd --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema(&sf)
			if err != nil {
				return err
			}
			data, err := a.readBinary(cmd, &in)
			if err != nil {
				return err
			}
			c := codec.New(s, codec.WithLogger(a.logger))
			r := bitio.NewReader(data)
			var recs []*record.Record
			for {
				start := r.Pos()
				rec, err := c.DecodeFrom(r)
				if err != nil {
					return err
				}
				recs = append(recs, rec)
				// Every record starts on an octet boundary.
				r.Seek((r.Pos() + 7) / 8 * 8)
				if !all || r.Remaining() == 0 {
					break
				}
				if r.Pos() == start {
					a.logger.Warn("record consumed no input, stopping", "schema", s.Name())
					break
				}
			}
			if n := r.Remaining() / 8; n > 0 {
				a.logger.Info("trailing bytes ignored", "bytes", n)
			}
			a.logger.Debug("decoded", "records", len(recs), "schema", s.Name())
			return writeRecords(cmd.OutOrStdout(), or(format, a.cfg.Format), recs)
		},
	}
	sf.register(cmd.Flags())
	in.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: yaml, json or cbor")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "decode records until the input is exhausted")
	return cmd
}
