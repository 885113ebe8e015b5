package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkch/bitrec/bitio"
	"github.com/mkch/bitrec/codec"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		sf schemaFlags
		in inputFlags
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Decode a record, re-encode it and compare the bytes",
		Args:  cobra.NoArgs,
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
			rec, err := c.DecodeFrom(r)
			if err != nil {
				return err
			}
			bits := r.Pos()
			used := data[:(bits+7)/8]
			// Encode over a copy of the input so bits past the record in
			// its last octet keep their values.
			w := bitio.NewWriterOver(bytes.Clone(data))
			if err := c.EncodeTo(w, rec); err != nil {
				return err
			}
			if w.Pos() != bits {
				return fmt.Errorf("round trip differs in length: decoded %d bits, re-encoded %d", bits, w.Pos())
			}
			out := w.Bytes()[:len(used)]
			if !bytes.Equal(out, used) {
				return fmt.Errorf("round trip differs at byte %d: decoded % x, re-encoded % x", firstDiff(used, out), used, out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s, %d bits in %d bytes", s.Name(), bits, len(used))
			if n := len(data) - len(used); n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", %d trailing bytes", n)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	sf.register(cmd.Flags())
	in.register(cmd)
	return cmd
}

func firstDiff(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
