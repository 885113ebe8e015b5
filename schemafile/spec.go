package schemafile

import (
	"strconv"
	"strings"

	"github.com/mkch/bitrec/bitio"
)

// fieldSpec is the parsed form of a spec string.
type fieldSpec struct {
	bits      int
	signed    bool
	byteOrder bitio.ByteOrder
	bitOrder  bitio.BitOrder
	temp      bool
	magic     *uint64
	pad       bool
}

// parseSpec parses a spec string such as "bits:9,signed,endian:little".
// typ and field name the owner in errors.
func parseSpec(typ, field, spec string) (*fieldSpec, error) {
	var fs fieldSpec
	seen := make(map[string]bool)
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		nv := strings.Split(item, ":")
		if len(nv) > 2 {
			return nil, errorf(typ, field, "invalid spec %q", spec)
		}
		key := nv[0]
		var value *string
		if len(nv) == 2 {
			v := strings.TrimSpace(nv[1])
			value = &v
		}
		if seen[key] {
			return nil, errorf(typ, field, "duplicated spec %q", key)
		}
		seen[key] = true

		switch key {
		case "bits":
			if value == nil {
				return nil, errorf(typ, field, `spec "bits" has no value`)
			}
			bits, err := strconv.Atoi(*value)
			if err != nil || bits <= 0 || bits > bitio.MaxWidth {
				return nil, errorf(typ, field, `spec "bits" has invalid value %v`, *value)
			}
			fs.bits = bits
		case "endian":
			if value == nil {
				return nil, errorf(typ, field, `spec "endian" has no value`)
			}
			o, err := bitio.ParseByteOrder(*value)
			if err != nil {
				return nil, errorf(typ, field, "%v", err)
			}
			fs.byteOrder = o
		case "order":
			if value == nil {
				return nil, errorf(typ, field, `spec "order" has no value`)
			}
			o, err := bitio.ParseBitOrder(*value)
			if err != nil {
				return nil, errorf(typ, field, "%v", err)
			}
			fs.bitOrder = o
		case "magic":
			if value == nil {
				return nil, errorf(typ, field, `spec "magic" has no value`)
			}
			v, err := strconv.ParseUint(*value, 0, 64)
			if err != nil {
				return nil, errorf(typ, field, `spec "magic" has invalid value %v`, *value)
			}
			fs.magic = &v
		case "signed", "temp", "pad":
			if value != nil {
				return nil, errorf(typ, field, "unnecessary value of spec %q", key)
			}
			switch key {
			case "signed":
				fs.signed = true
			case "temp":
				fs.temp = true
			case "pad":
				fs.pad = true
			}
		default:
			return nil, errorf(typ, field, "unknown spec %q", key)
		}
	}
	if fs.bits == 0 {
		return nil, errorf(typ, field, `spec "bits" is required`)
	}
	roles := 0
	for _, b := range []bool{fs.temp, fs.magic != nil, fs.pad} {
		if b {
			roles++
		}
	}
	if roles > 1 {
		return nil, errorf(typ, field, "only one of temp, magic or pad may be given")
	}
	if fs.signed && fs.magic != nil {
		return nil, errorf(typ, field, "magic values are unsigned")
	}
	return &fs, nil
}
