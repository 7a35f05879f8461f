package models

// LookupTable names one of the append-only label tables.
type LookupTable string

const (
	TableTxnType        LookupTable = "trans_type"
	TableMethod         LookupTable = "trans_method"
	TableClassification LookupTable = "trans_cat"
)

func (t LookupTable) Valid() bool {
	return t == TableTxnType || t == TableMethod || t == TableClassification
}

// Lookup is one id/label row. Kind is only meaningful for TableTxnType.
type Lookup struct {
	ID    int32       `json:"id"`
	Table LookupTable `json:"table"`
	Label string      `json:"label"`
	Kind  TxnKind     `json:"kind,omitempty"`
}
