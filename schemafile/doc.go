/*
Package schemafile builds schemas from YAML or JSONC documents.

A document names a set of types. Fields are declared with a compact spec
string in the manner of a struct tag:

	byte_order: big
	types:
	  Elem:
	    fields:
	      - {name: a,    spec: "bits:4"}
	      - {name: b,    spec: "bits:8,signed"}
	      - {name: c,    spec: "bits:3"}
	      - {name: more, spec: "bits:1"}
	  Track:
	    fields:
	      - {name: head, spec: "bits:7"}
	      - {name: fx,   spec: "bits:1,temp", value: "len(items) > 0"}
	      - name: items
	        when: "fx == 1"
	        repeat:
	          type: Elem
	          continuation: {field: more, more: 1, last: 0}

Spec keys:

	bits:N          width, 1..64 (required)
	signed          two's-complement
	endian:big      byte order, big or little
	order:msb       bit order, msb or lsb
	temp            bits drive later decisions but are not stored;
	                requires value
	magic:V         the field must hold V (decimal, 0x, 0o or 0b)
	pad             reserved bits, written as zeros

A field with type names a nested group; a field with repeat is a list of
records of repeat.type, ended by until, count, or a continuation marker,
and bounded by max.

Expressions in when, value, update, until and count use Go expression
syntax over integers: literals, field names, len(name), unary ! - ^ and
the binary operators of Go. Comparisons and logical operators yield 1 or
0; a predicate holds when its expression is not 0. Names resolve against
the fields decoded so far, temp fields included, then against enclosing
records. Division by zero yields 0.
*/
package schemafile
