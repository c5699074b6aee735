// Package events defines the analysis events pushed by the backend stream and
// the append-only log that stores them for the current run.
//
// Event is a sealed interface: the only implementations are the variant types
// declared here, so a type switch over an Event is exhaustive.
package events

// Kind identifies an event variant.
type Kind string

// Event kinds.
const (
	KindLogMessage       Kind = "log-message"
	KindGranthamScore    Kind = "grantham-score"
	KindChargeStatement  Kind = "charge-statement"
	KindAllIsoforms      Kind = "all-isoforms"
	KindMatchingIsoforms Kind = "matching-isoforms"
	KindFilteredIsoforms Kind = "filtered-isoforms"
	KindPDBIDs           Kind = "pdb-ids"
	KindSequence         Kind = "sequence"
	KindDone             Kind = "done"
)

// Event is one unit of server-pushed analysis information.
type Event interface {
	Kind() Kind
	event()
}

// LogMessage is a line of progress text.
type LogMessage struct {
	Text string `json:"text"`
}

// GranthamScore carries the server's Grantham score statement.
type GranthamScore struct {
	Statement string `json:"statement"`
}

// ChargeStatement carries the server's charge-change statement.
type ChargeStatement struct {
	Statement string `json:"statement"`
}

// AllIsoforms lists every isoform known for the gene.
type AllIsoforms struct {
	IDs []string `json:"ids"`
}

// MatchingIsoforms lists the isoforms whose residue at the position matches residue1.
type MatchingIsoforms struct {
	IDs []string `json:"ids"`
}

// FilteredIsoforms lists the matching isoforms whose gene name also matches.
type FilteredIsoforms struct {
	IDs []string `json:"ids"`
}

// PDBEntry is one experimental structure reference for an isoform.
type PDBEntry struct {
	ID        string `json:"id"`
	ChainSpec string `json:"chain_spec,omitempty"`
	HasChains bool   `json:"has_chains"`
}

// PDBIDs maps isoform accessions to their structure references.
type PDBIDs struct {
	Entries map[string][]PDBEntry `json:"entries"`
}

// Sequence carries one isoform sequence reported by the server.
type Sequence struct {
	Isoform string `json:"isoform"`
	Text    string `json:"sequence"`
}

// Done marks the end of a run.
type Done struct{}

func (LogMessage) Kind() Kind { return KindLogMessage }
func (GranthamScore) Kind() Kind { return KindGranthamScore }
func (ChargeStatement) Kind() Kind { return KindChargeStatement }
func (AllIsoforms) Kind() Kind { return KindAllIsoforms }
func (MatchingIsoforms) Kind() Kind { return KindMatchingIsoforms }
func (FilteredIsoforms) Kind() Kind { return KindFilteredIsoforms }
func (PDBIDs) Kind() Kind { return KindPDBIDs }
func (Sequence) Kind() Kind { return KindSequence }
func (Done) Kind() Kind { return KindDone }

func (LogMessage) event() {}
func (GranthamScore) event() {}
func (ChargeStatement) event() {}
func (AllIsoforms) event() {}
func (MatchingIsoforms) event() {}
func (FilteredIsoforms) event() {}
func (PDBIDs) event() {}
func (Sequence) event() {}
func (Done) event() {}

// Interface compliance checks.
var (
	_ Event = LogMessage{}
	_ Event = GranthamScore{}
	_ Event = ChargeStatement{}
	_ Event = AllIsoforms{}
	_ Event = MatchingIsoforms{}
	_ Event = FilteredIsoforms{}
	_ Event = PDBIDs{}
	_ Event = Sequence{}
	_ Event = Done{}
)
