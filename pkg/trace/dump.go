package trace

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const dumpFormat = "%-25s %-40s   %s -> %s\n"

// Dump writes one line per operator listing its kind, scope and the numeric
// slot identifiers it consumes and produces:
//
//	kind                      scopeName                                  inputs -> outputs
//	onnx::Conv                Net/Conv2d[conv1]                          [0, 1, 2] -> [5]
//
// Dump is a diagnostic side channel and never inspects anything else.
func Dump(w io.Writer, ops []Operator) error {
	if _, err := fmt.Fprintf(w, dumpFormat, "kind", "scopeName", "inputs", "outputs"); err != nil {
		return err
	}
	for _, op := range ops {
		if _, err := fmt.Fprintf(w, dumpFormat, op.Kind, op.Scope, slotList(op.Inputs), slotList(op.OutputIDs())); err != nil {
			return err
		}
	}
	return nil
}

// slotList formats ids as "[a, b, c]".
func slotList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
