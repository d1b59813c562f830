package models

// LedgerStream names one of the missing-items ledger files.
type LedgerStream string

const (
	StreamPrimary  LedgerStream = "primary"  // Default and Monitor runs
	StreamValidate LedgerStream = "validate" // Validate runs
)

// RunMode selects how the harvest driver treats previously harvested pairs.
//
// Implemented by [DefaultMode], [MonitorMode] and [ValidateMode].
type RunMode interface {
	// Name returns the mode name used in logs and the run journal.
	Name() string
	// Stream returns the missing-items ledger stream failures are written to.
	Stream() LedgerStream
	// Prior returns the pairs-table rows kept ahead of freshly harvested rows.
	Prior() []PairRecord

	runMode()
}

// DefaultMode is a fresh full harvest.
type DefaultMode struct{}

func (DefaultMode) Name() string         { return "default" }
func (DefaultMode) Stream() LedgerStream { return StreamPrimary }
func (DefaultMode) Prior() []PairRecord  { return nil }
func (DefaultMode) runMode()             {}

// MonitorMode is an incremental harvest that skips pairs already present in Existing.
type MonitorMode struct {
	Existing []PairRecord
	ledger   ResumeLedger
}

// NewMonitorMode builds a monitor run over an existing pairs table.
func NewMonitorMode(existing []PairRecord) MonitorMode {
	return MonitorMode{Existing: existing, ledger: NewResumeLedger(existing)}
}

func (MonitorMode) Name() string          { return "monitor" }
func (MonitorMode) Stream() LedgerStream  { return StreamPrimary }
func (m MonitorMode) Prior() []PairRecord { return m.Existing }
func (MonitorMode) runMode()              {}

// Ledger returns the resume ledger derived from Existing.
func (m MonitorMode) Ledger() ResumeLedger {
	if m.ledger == nil {
		return NewResumeLedger(m.Existing)
	}
	return m.ledger
}

// ValidateMode harvests only datasets absent from both the harvested table (Existing)
// and the externally curated table (Reference).
type ValidateMode struct {
	Existing  []PairRecord
	Reference []PairRecord
}

func (ValidateMode) Name() string          { return "validate" }
func (ValidateMode) Stream() LedgerStream  { return StreamValidate }
func (m ValidateMode) Prior() []PairRecord { return m.Existing }
func (ValidateMode) runMode()              {}

// Known returns the identifiers present in Existing or Reference.
func (m ValidateMode) Known() map[string]struct{} {
	known := Identifiers(m.Existing)
	for id := range Identifiers(m.Reference) {
		known[id] = struct{}{}
	}
	return known
}
