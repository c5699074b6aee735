// Package views derives the named projections of an event log: the log text,
// first-wins statements, isoform sets, the structure map and sequences.
//
// Every function here is pure and total. Compute is the fold of Apply, so a
// snapshot can be maintained incrementally while the log grows.
package views

import (
	"slices"
	"strings"

	"github.com/mutantautomate/mutant/pkg/events"
)

// Snapshot holds every derived view of one log state.
//
// Nil slices and maps mean the view is absent; a non-nil empty slice is a
// present, empty value. Snapshots are immutable once returned.
type Snapshot struct {
	Log              string                       `json:"log" yaml:"log"`
	ChargeStatement  *string                      `json:"charge_statement,omitempty" yaml:"charge_statement,omitempty"`
	GranthamScore    *string                      `json:"grantham_score,omitempty" yaml:"grantham_score,omitempty"`
	AllIsoforms      []string                     `json:"all_isoforms" yaml:"all_isoforms,omitempty"`
	MatchingIsoforms []string                     `json:"matching_isoforms" yaml:"matching_isoforms,omitempty"`
	FilteredIsoforms []string                     `json:"filtered_isoforms" yaml:"filtered_isoforms,omitempty"`
	PDBIDs           map[string][]events.PDBEntry `json:"pdb_ids" yaml:"pdb_ids,omitempty"`
	Sequences        []events.Sequence            `json:"sequences,omitempty" yaml:"sequences,omitempty"`
	Done             bool                         `json:"done" yaml:"done"`
	Events           int                          `json:"events" yaml:"events"`
}

// Compute derives every view from a log.
func Compute(evs []events.Event) Snapshot {
	var s Snapshot
	for _, e := range evs {
		s = s.Apply(e)
	}
	return s
}

// Apply returns the snapshot of the log extended by e. The receiver is not modified.
func (s Snapshot) Apply(e events.Event) Snapshot {
	s.Events++

	switch v := e.(type) {
	case events.LogMessage:
		if v.Text != "" {
			if s.Log != "" {
				s.Log += "\n"
			}
			s.Log += v.Text
		}
	case events.GranthamScore:
		if s.GranthamScore == nil {
			stmt := v.Statement
			s.GranthamScore = &stmt
		}
	case events.ChargeStatement:
		if s.ChargeStatement == nil {
			stmt := v.Statement
			s.ChargeStatement = &stmt
		}
	case events.AllIsoforms:
		if s.AllIsoforms == nil {
			s.AllIsoforms = cloneIDs(v.IDs)
		}
	case events.MatchingIsoforms:
		if s.MatchingIsoforms == nil {
			s.MatchingIsoforms = cloneIDs(v.IDs)
		}
	case events.FilteredIsoforms:
		if s.FilteredIsoforms == nil {
			s.FilteredIsoforms = cloneIDs(v.IDs)
		}
	case events.PDBIDs:
		if s.PDBIDs == nil {
			s.PDBIDs = clonePDB(v.Entries)
		}
	case events.Sequence:
		// Clip forces a fresh backing array so earlier snapshots never see the append.
		s.Sequences = append(slices.Clip(s.Sequences), v)
	case events.Done:
		s.Done = true
	}
	return s
}

// LogText joins all non-empty log messages in arrival order.
func LogText(evs []events.Event) string {
	var lines []string
	for _, e := range evs {
		if m, ok := e.(events.LogMessage); ok && m.Text != "" {
			lines = append(lines, m.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// FirstChargeStatement returns the first charge statement in the log.
func FirstChargeStatement(evs []events.Event) (string, bool) {
	v, ok := first[events.ChargeStatement](evs)
	return v.Statement, ok
}

// FirstGranthamScore returns the first Grantham score statement in the log.
func FirstGranthamScore(evs []events.Event) (string, bool) {
	v, ok := first[events.GranthamScore](evs)
	return v.Statement, ok
}

// FirstAllIsoforms returns the first all-isoforms list in the log.
func FirstAllIsoforms(evs []events.Event) ([]string, bool) {
	v, ok := first[events.AllIsoforms](evs)
	return v.IDs, ok
}

// FirstMatchingIsoforms returns the first matching-isoforms list in the log.
func FirstMatchingIsoforms(evs []events.Event) ([]string, bool) {
	v, ok := first[events.MatchingIsoforms](evs)
	return v.IDs, ok
}

// FirstFilteredIsoforms returns the first filtered-isoforms list in the log.
func FirstFilteredIsoforms(evs []events.Event) ([]string, bool) {
	v, ok := first[events.FilteredIsoforms](evs)
	return v.IDs, ok
}

// FirstPDBIDs returns the first structure map in the log.
func FirstPDBIDs(evs []events.Event) (map[string][]events.PDBEntry, bool) {
	v, ok := first[events.PDBIDs](evs)
	return v.Entries, ok
}

// AllSequences returns every sequence event in arrival order, duplicates included.
func AllSequences(evs []events.Event) []events.Sequence {
	var out []events.Sequence
	for _, e := range evs {
		if s, ok := e.(events.Sequence); ok {
			out = append(out, s)
		}
	}
	return out
}

func first[T events.Event](evs []events.Event) (T, bool) {
	for _, e := range evs {
		if v, ok := e.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}

func clonePDB(in map[string][]events.PDBEntry) map[string][]events.PDBEntry {
	out := make(map[string][]events.PDBEntry, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}
