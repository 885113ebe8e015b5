// Command bitrec decodes and encodes bit-packed binary records described
// by a schema document or a built-in catalog schema.
package main

import "github.com/mkch/bitrec/cmd/bitrec/cmd"

func main() {
	cmd.Execute()
}
