package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkch/bitrec/codec"
	"github.com/mkch/bitrec/internal/compress"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		sf          schemaFlags
		inPath      string
		format      string
		outPath     string
		compression string
		noUpdate    bool
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode YAML, JSON or CBOR records to binary",
		Long: `encode reads records and writes their binary form. Continuation markers
and derived fields are recomputed first unless --no-update is given.
Without --out the bytes are printed in hex.`,
		Example: `  bitrec encode --builtin extended -i track.yaml
  bitrec encode -s items.yaml -t Track -i tracks.json -o tracks.bin.gz --out-compression gzip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema(&sf)
			if err != nil {
				return err
			}
			r, closeIn, err := open(cmd, inPath)
			if err != nil {
				return err
			}
			data, err := io.ReadAll(r)
			closeIn()
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			recs, err := readRecords(s, formatOf(inPath, or(format, a.cfg.Format)), data)
			if err != nil {
				return err
			}

			c := codec.New(s, codec.WithLogger(a.logger))
			var out []byte
			for _, rec := range recs {
				if !noUpdate {
					if err := c.Update(rec); err != nil {
						return err
					}
				}
				b, err := c.Encode(rec)
				if err != nil {
					return err
				}
				out = append(out, b...)
			}
			a.logger.Debug("encoded", "records", len(recs), "bytes", len(out))

			if outPath == "" {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "% x\n", out)
				return err
			}
			return a.writeBinary(cmd, outPath, or(compression, a.cfg.OutCompression), out)
		},
	}
	sf.register(cmd.Flags())
	cmd.Flags().StringVarP(&inPath, "in", "i", "", `record file, "-" for stdin`)
	cmd.Flags().StringVarP(&format, "format", "f", "", "record format when the extension does not tell: yaml, json or cbor")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", `output file, "-" for stdout`)
	cmd.Flags().StringVar(&compression, "out-compression", "", "output compression ("+strings.Join(compress.Names(), ", ")+")")
	cmd.Flags().BoolVar(&noUpdate, "no-update", false, "encode markers and derived fields as given")
	return cmd
}

func (a *app) writeBinary(cmd *cobra.Command, path, compression string, data []byte) (err error) {
	var w io.Writer = cmd.OutOrStdout()
	if path != "-" {
		var file *os.File
		if file, err = os.Create(path); err != nil {
			return err
		}
		defer func() {
			if cerr := file.Close(); err == nil {
				err = cerr
			}
		}()
		w = file
	}
	zw, err := compress.NewWriter(compression, w)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
