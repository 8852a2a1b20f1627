package content

import (
	"sort"
)

// operatorTable lists every content-stream operator, longest first so that
// a multi-character operator wins over its own prefix ("BDC" before "BT"
// before "B").
var operatorTable = func() []string {
	ops := []string{
		"b", "B", "b*", "B*", "BDC", "BI", "BMC", "BT", "BX",
		"c", "cm", "CS", "cs",
		"d", "d0", "d1", "Do", "DP",
		"EI", "EMC", "ET", "EX",
		"f", "F", "f*",
		"G", "g", "gs",
		"h", "i", "ID",
		"j", "J", "K", "k",
		"l", "m", "M", "MP", "n",
		"q", "Q",
		"re", "RG", "rg", "ri",
		"s", "S", "SC", "sc", "SCN", "scn", "sh",
		"T*", "Tc", "Td", "TD", "Tf", "Tj", "TJ", "TL", "Tm", "Tr", "Ts", "Tw", "Tz",
		"v", "w", "W", "W*", "y", "'", `"`,
	}
	sort.SliceStable(ops, func(i, j int) bool { return len(ops[i]) > len(ops[j]) })
	return ops
}()

var operatorSet = func() map[string]bool {
	m := make(map[string]bool, len(operatorTable))
	for _, op := range operatorTable {
		m[op] = true
	}
	return m
}()

var maxOperatorLength = len(operatorTable[0])

// Operators returns the operator table in matching order
func Operators() []string {
	out := make([]string, len(operatorTable))
	copy(out, operatorTable)
	return out
}

// IsOperator reports whether op is a known content-stream operator
func IsOperator(op string) bool {
	return operatorSet[op]
}
