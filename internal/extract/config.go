package extract

import (
	"regexp"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
)

// Document-level field keys.
const (
	FieldSampleName       = "sample_name"
	FieldSubmitterName    = "submitter_name"
	FieldSubmitterEmail   = "submitter_email"
	FieldLab              = "lab"
	FieldPhone            = "phone"
	FieldOrganism         = "organism"
	FieldBuffer           = "buffer"
	FieldSampleType       = "sample_type"
	FieldQuoteIdentifier  = "quote_identifier"
	FieldFlowCell         = "flow_cell"
	FieldGenomeSize       = "genome_size"
	FieldCoverage         = "coverage"
	FieldCost             = "cost"
	FieldServiceRequested = "service_requested"
	FieldSequencingType   = "sequencing_type"
	FieldBasecalling      = "basecalling"
	FieldFileFormat       = "file_format"
	FieldPIs              = "pis"
	FieldBillingAddress   = "billing_address"
	FieldComments         = "comments"
	FieldDataDelivery     = "data_delivery_email"
	FieldConcentration    = "concentration"
	FieldVolume           = "volume"
)

// Per-sample scored field keys.
const (
	ScoreName          = "name"
	ScoreSampleType    = "sample_type"
	ScoreConcentration = "concentration"
	ScoreVolume        = "volume"
	ScoreNanodrop      = "nanodrop"
	ScoreA260280       = "a260_280"
	ScoreA260230       = "a260_230"
	ScoreBuffer        = "buffer"
)

// scoredFields fixes the order issues are reported in.
var scoredFields = []string{
	ScoreName, ScoreSampleType, ScoreConcentration, ScoreVolume,
	ScoreNanodrop, ScoreA260280, ScoreA260230, ScoreBuffer,
}

type FieldPattern struct {
	Key     string
	Pattern *regexp.Regexp
}

type SpecialLabel struct {
	Pattern   *regexp.Regexp
	Canonical string
}

type Range struct {
	Min, Max float64
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Config carries every pattern and threshold a pipeline run uses. Values are
// read-only once built, so one Config may be shared by concurrent runs.
type Config struct {
	HeaderMarker   *regexp.Regexp
	NumericRow     *regexp.Regexp
	SpecialRow     *regexp.Regexp
	SpecialLabels  []SpecialLabel
	DocumentFields []FieldPattern
	Denylist       Denylist
	Ranges         map[string]Range

	// Decrement is subtracted from a field score per warning.
	Decrement              float64
	LowConfidenceThreshold float64
	// DisagreementRatio is the max/min factor above which qubit and nanodrop disagree.
	DisagreementRatio float64
	DefaultSampleType constants.SampleType
	// EnhanceFields are the document keys the language model may fill.
	EnhanceFields []string
}

const reading = `(\d+(?:\.\d+)?|-{1,2}|(?i:n/?a))`

// DefaultConfig returns the patterns used for nanopore quote forms.
func DefaultConfig() Config {
	sep := `[ \t]+`
	return Config{
		HeaderMarker: regexp.MustCompile(`(?im)^[^\n]*sample[ \t]*name[^\n]*volume[^\n]*$`),
		NumericRow: regexp.MustCompile(`^[ \t]*(\d{1,4})\.?` + sep + `(\S.*?)` +
			sep + reading + sep + reading + sep + reading + sep + reading +
			`(?:` + sep + reading + `)?[ \t]*$`),
		SpecialRow: regexp.MustCompile(`(?i)^[ \t]*(\d{1,4})\.?` + sep +
			`(positive[ \t]+control|negative[ \t]+control|no[ \t]+template[ \t]+control|blank|ntc)` +
			`(?:[ \t]+.*)?$`),
		SpecialLabels: []SpecialLabel{
			{regexp.MustCompile(`(?i)^positive[ \t]+control$`), "Positive control"},
			{regexp.MustCompile(`(?i)^negative[ \t]+control$`), "Negative control"},
			{regexp.MustCompile(`(?i)^(?:no[ \t]+template[ \t]+control|ntc)$`), "NTC"},
			{regexp.MustCompile(`(?i)^blank$`), "BLANK"},
		},
		DocumentFields: defaultDocumentFields(),
		Denylist:       DefaultDenylist(),
		Ranges: map[string]Range{
			ScoreVolume:        {Min: 0.5, Max: 1000},
			ScoreConcentration: {Min: 0, Max: 5000},
			ScoreNanodrop:      {Min: 0, Max: 5000},
			ScoreA260280:       {Min: 1.6, Max: 2.2},
			ScoreA260230:       {Min: 1.5, Max: 2.6},
		},
		Decrement:              30,
		LowConfidenceThreshold: 60,
		DisagreementRatio:      2,
		DefaultSampleType:      constants.SampleTypeDNA,
		EnhanceFields: []string{
			FieldSubmitterName, FieldSubmitterEmail, FieldLab,
			FieldOrganism, FieldSampleType, FieldBuffer,
		},
	}
}

func labeled(label, value string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*` + label + `[ \t]*:[ \t]*` + value)
}

func defaultDocumentFields() []FieldPattern {
	line := `(\S[^\n]*)`
	email := `([^\s@]+@[^\s@]+\.[^\s@]+)`
	return []FieldPattern{
		{FieldSampleName, labeled(`sample[ \t]*(?:name|id)`, line)},
		{FieldSubmitterName, labeled(`(?:submitter|contact|requester)(?:[ \t]*name)?`, line)},
		{FieldSubmitterEmail, labeled(`(?:submitter[ \t]+)?e-?mail`, email)},
		{FieldLab, labeled(`lab(?:oratory)?(?:[ \t]*name)?`, line)},
		{FieldPhone, labeled(`phone`, line)},
		{FieldOrganism, labeled(`(?:source[ \t]*)?(?:organism|species)`, line)},
		{FieldBuffer, labeled(`(?:sample[ \t]*)?buffer`, line)},
		{FieldSampleType, labeled(`(?:type[ \t]*of[ \t]*sample|sample[ \t]*type)`, line)},
		{FieldQuoteIdentifier, labeled(`(?:quote[ \t]*)?identifier`, line)},
		{FieldFlowCell, labeled(`flow[ \t]*cell(?:[ \t]*type)?`, line)},
		{FieldGenomeSize, labeled(`(?:approx(?:imate)?\.?[ \t]*)?genome[ \t]*size`, line)},
		{FieldCoverage, labeled(`(?:desired[ \t]*)?coverage`, line)},
		{FieldCost, labeled(`(?:projected[ \t]*)?cost`, `\$?[ \t]*(\S[^\n]*)`)},
		{FieldServiceRequested, labeled(`service[ \t]*requested`, line)},
		{FieldSequencingType, regexp.MustCompile(`(?i)I[ \t]+will[ \t]+be[ \t]+submitting[^\n]*?for[ \t]*:[ \t]*(\S[^\n]*)`)},
		{FieldBasecalling, regexp.MustCompile(`(?i)basecalled[ \t]+using[ \t]*:?[ \t]*(\S[^\n]*)`)},
		{FieldFileFormat, labeled(`file[ \t]*format`, line)},
		{FieldPIs, labeled(`PIs?`, line)},
		{FieldBillingAddress, labeled(`billing[ \t]*address`, line)},
		{FieldComments, labeled(`additional[ \t]*comments`, line)},
		{FieldDataDelivery, regexp.MustCompile(`(?i)data[ \t]*delivery[^\n]*?e-?mail[ \t]*:[ \t]*` + email)},
		{FieldConcentration, labeled(`concentration`, `(\d+(?:\.\d+)?)`)},
		{FieldVolume, labeled(`volume`, `(\d+(?:\.\d+)?)`)},
	}
}
