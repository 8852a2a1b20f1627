package document

// State is a step of document assembly. Assembly moves through the states
// in order and stops at the first failure.
type State int

const (
	StateInit State = iota
	StateVersionRead
	StateXRefLocated
	StateXRefRead
	StateTrailerRead
	StateXRefMerged
	StateCatalogResolved
	StatePagesWalked
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateVersionRead:
		return "version-read"
	case StateXRefLocated:
		return "xref-located"
	case StateXRefRead:
		return "xref-read"
	case StateTrailerRead:
		return "trailer-read"
	case StateXRefMerged:
		return "xref-merged"
	case StateCatalogResolved:
		return "catalog-resolved"
	case StatePagesWalked:
		return "pages-walked"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}
