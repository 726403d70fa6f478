// Package measure implements the deterministic gold-truth engine for one
// clinical quality measure: given a normalized patient record and a fixed
// measurement-period end date, it computes initial-population,
// denominator, exclusion, and numerator membership, and cites the exact
// evidentiary event for a numerator-met verdict.
//
// The engine is a pure computation library. All inputs are immutable for
// the duration of a call, there is no I/O on the evaluation path, and
// identical inputs always produce byte-identical verdicts. Evaluations
// for distinct patients share only the read-only terminology registry,
// so a cohort can be evaluated concurrently with no locking.
package measure

import "github.com/clinbench/goldtruth/internal/record"

// Definition is the declarative shape of one measure: demographic
// eligibility, the numerator lookback, and the terminology categories
// each evaluation stage resolves against. Implementing a new measure
// means writing a new Definition (and, where its logic differs
// structurally, a new evaluator stage), not editing the pipeline.
type Definition struct {
	ID    string
	Title string

	// Initial-population demographics, judged at the period end date.
	// Ages are inclusive on both ends.
	Sex    record.Sex
	MinAge int
	MaxAge int

	// LookbackMonths is the rolling numerator window length in calendar
	// months, ending at the period end date.
	LookbackMonths int

	// NumeratorCategory names the code set a qualifying service must
	// match within the lookback window.
	NumeratorCategory string

	// Exclusion categories. A bilateral event alone excludes; so does
	// the combination of a left-side and a right-side event, recorded at
	// any time, possibly years apart. One unilateral side alone does
	// not exclude.
	BilateralCategory string
	LeftCategory      string
	RightCategory     string
}

// BreastCancerScreening returns the CMS125 (BCS-E) definition: women
// 50-74 at period end with a screening mammogram in the 27 months ending
// at the period end, excluding bilateral mastectomy or its two-sided
// unilateral equivalent.
func BreastCancerScreening() Definition {
	return Definition{
		ID:                "CMS125",
		Title:             "Breast Cancer Screening",
		Sex:               record.Female,
		MinAge:            50,
		MaxAge:            74,
		LookbackMonths:    27,
		NumeratorCategory: "mammography",
		BilateralCategory: "bilateral-mastectomy",
		LeftCategory:      "unilateral-mastectomy-left",
		RightCategory:     "unilateral-mastectomy-right",
	}
}
