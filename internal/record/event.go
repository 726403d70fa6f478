package record

// Event is a single time-stamped, coded occurrence in a patient's
// clinical history. Events are immutable once loaded.
type Event struct {
	// Date is the calendar date the event occurred.
	Date Date

	// System identifies the coding system (e.g., "CPT", "ICD-10-CM",
	// "SNOMED-CT", "HCPCS").
	System string

	// Code is the code within System.
	Code string

	// Description is the free-text description carried by the source
	// record. It is quoted verbatim in audit evidence.
	Description string
}

// CodeMatcher reports membership of a (system, code) pair in a code set.
// Implemented by terminology.CodeSet (production) and by counting fakes
// in tests that verify lookup cost.
type CodeMatcher interface {
	Contains(system, code string) bool
}
