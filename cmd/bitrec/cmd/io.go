package cmd

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mkch/bitrec/internal/compress"
	"github.com/mkch/bitrec/record"
	"github.com/mkch/bitrec/schema"
)

// inputFlags select where binary input comes from.
type inputFlags struct {
	hex         string
	path        string
	compression string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.hex, "hex", "x", "", "input bytes in hex; spaces and colons are ignored")
	fs.StringVarP(&f.path, "in", "i", "", `input file, "-" for stdin`)
	fs.StringVar(&f.compression, "in-compression", "", "input compression ("+strings.Join(compress.Names(), ", ")+" or auto)")
	cmd.MarkFlagsMutuallyExclusive("hex", "in")
}

func (a *app) readBinary(cmd *cobra.Command, f *inputFlags) ([]byte, error) {
	if f.hex != "" {
		return parseHex(f.hex)
	}
	r, closeFn, err := open(cmd, f.path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	zr, err := compress.NewReader(or(f.compression, a.cfg.InCompression), r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	a.logger.Debug("input read", "bytes", len(data))
	return data, nil
}

func open(cmd *cobra.Command, path string) (io.Reader, func() error, error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() error { return nil }, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}

func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ':' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --hex: %w", err)
	}
	return data, nil
}

// Record formats.
const (
	formatYAML = "yaml"
	formatJSON = "json"
	formatCBOR = "cbor"
)

// formatOf picks the record format from the file extension, falling back
// to def.
func formatOf(path, def string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".json":
		return formatJSON
	case ".cbor":
		return formatCBOR
	}
	return def
}

// writeRecords writes recs as a YAML document stream, a JSON value stream
// or a CBOR sequence.
func writeRecords(w io.Writer, format string, recs []*record.Record) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		for _, rec := range recs {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		for _, rec := range recs {
			if err := enc.Encode(rec.ToMap()); err != nil {
				return err
			}
		}
		return nil
	case formatCBOR:
		for _, rec := range recs {
			b, err := rec.MarshalCBOR()
			if err != nil {
				return err
			}
			if _, err := w.Write(b); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q (want yaml, json or cbor)", format)
}

// readRecords parses records of s from data. YAML and JSON input may hold
// several documents; CBOR input holds one record.
func readRecords(s *schema.Schema, format string, data []byte) ([]*record.Record, error) {
	var recs []*record.Record
	switch format {
	case formatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		for {
			var m map[string]any
			err := dec.Decode(&m)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("parsing record %d: %w", len(recs), err)
			}
			rec, err := record.FromMap(s, m)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", len(recs), err)
			}
			recs = append(recs, rec)
		}
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		for {
			var m map[string]any
			err := dec.Decode(&m)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("parsing record %d: %w", len(recs), err)
			}
			rec, err := record.FromMap(s, m)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", len(recs), err)
			}
			recs = append(recs, rec)
		}
	case formatCBOR:
		rec, err := record.FromCBOR(s, data)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	default:
		return nil, fmt.Errorf("unknown format %q (want yaml, json or cbor)", format)
	}
	if len(recs) == 0 {
		return nil, errors.New("no records in input")
	}
	return recs, nil
}
