/*
Package schema describes bit-level record layouts.

A Schema is an ordered list of entries:

	*Field
An integer of 1 to 64 bits. Its Role decides what happens to it:
Stored fields are kept in the record; Temp fields are read but only
bound by name for later predicates, and recomputed from their Value
expression when encoding; Magic fields must hold a constant; Pad
fields are skipped on decode and written as zeros.
	*Group
A nested Schema.
	*Repeat
A list of records of an element Schema, ended either by the Until
predicate evaluated on each decoded element (inclusive), or by a Count
expression.

Fields, groups and repeats may carry a When guard. A false guard means
the entry takes no bits; the record then holds the field's Default, a
nil group or an empty list.

Predicates and expressions are plain Go functions receiving a State, a
read-only view of values already known in the current pass.

Schemas are built once with New and never change afterwards, so one
Schema may serve any number of concurrent decode and encode calls.

	track := schema.Must(schema.New("Track",
		schema.Uint("sac", 8),
		schema.Uint("sic", 8),
		schema.Uint("fx", 1).Computed(func(s schema.State) int64 {
			return schema.Bool(schema.Len(s, "ext") > 0)
		}),
		schema.RepeatOf("ext", element).
			If(schema.Equals("fx", 1)).
			StopWhen(schema.Equals("more", 0)).
			Marker("more", 1, 0),
	))
*/
package schema
