package constants

// SubmissionStatus is the canonical status for rows in submissions.
type SubmissionStatus string

// Stable values (store these exact strings in DB).
const (
	SubmissionProcessing SubmissionStatus = "processing" // created at upload, samples not committed yet
	SubmissionCompleted  SubmissionStatus = "completed"
	SubmissionFailed     SubmissionStatus = "failed" // terminal failure
)

// SampleStatus is a workflow stage of a sample.
type SampleStatus string

const (
	SampleSubmitted   SampleStatus = "submitted"
	SamplePrep        SampleStatus = "prep"
	SampleSequencing  SampleStatus = "sequencing"
	SampleAnalysis    SampleStatus = "analysis"
	SampleCompleted   SampleStatus = "completed"
	SampleDistributed SampleStatus = "distributed"
	SampleArchived    SampleStatus = "archived"
	SampleCancelled   SampleStatus = "cancelled"
	SampleFailed      SampleStatus = "failed"
)

var allSampleStatuses = []SampleStatus{
	SampleSubmitted,
	SamplePrep,
	SampleSequencing,
	SampleAnalysis,
	SampleCompleted,
	SampleDistributed,
	SampleArchived,
	SampleCancelled,
	SampleFailed,
}

// SampleStatuses returns every workflow stage in lifecycle order.
func SampleStatuses() []SampleStatus {
	out := make([]SampleStatus, len(allSampleStatuses))
	copy(out, allSampleStatuses)
	return out
}

// ParseSampleStatus accepts any casing and surrounding whitespace.
func ParseSampleStatus(s string) (SampleStatus, bool) {
	for _, st := range allSampleStatuses {
		if equalFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}
