package events

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mutantautomate/mutant/pkg/errors"
)

// Wire type tags used by the backend.
const (
	wireGrantham = "grantham_score"
	wireCharge   = "charge_statement"
	wireSequence = "sequence"
	wireDone     = "done"
)

// Decode parses one stream message into events.
//
// A message may carry a log line next to a payload field, so it can yield more
// than one event. Events are returned in a fixed order: the log message, the
// type-tagged variant, then all, matching and filtered isoforms, then pdb ids.
//
// A malformed field does not discard its siblings: Decode returns the events
// that did decode together with an error describing every bad field.
func Decode(data []byte) ([]Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.WrapParse("json", "stream message", err)
	}
	if fields == nil {
		return nil, errors.NewParseError("json", "stream message", "message is null", nil)
	}

	var (
		out  []Event
		errs []error
	)

	if raw, ok := present(fields, "message"); ok {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			errs = append(errs, errors.WrapParse("json", "message", err))
		} else {
			out = append(out, LogMessage{Text: text})
		}
	}

	if e, err := decodeTagged(fields); err != nil {
		errs = append(errs, err)
	} else if e != nil {
		out = append(out, e)
	}

	for _, f := range []struct {
		key  string
		wrap func([]string) Event
	}{
		{"all_isoforms", func(ids []string) Event { return AllIsoforms{IDs: ids} }},
		{"matching_isoforms", func(ids []string) Event { return MatchingIsoforms{IDs: ids} }},
		{"filtered_isoforms", func(ids []string) Event { return FilteredIsoforms{IDs: ids} }},
	} {
		raw, ok := present(fields, f.key)
		if !ok {
			continue
		}
		ids := []string{}
		if err := json.Unmarshal(raw, &ids); err != nil {
			errs = append(errs, errors.WrapParse("json", f.key, err))
			continue
		}
		out = append(out, f.wrap(ids))
	}

	if raw, ok := present(fields, "pdb_ids"); ok {
		entries, err := decodePDBIDs(raw)
		if err != nil {
			errs = append(errs, err)
		} else {
			out = append(out, PDBIDs{Entries: entries})
		}
	}

	if len(out) == 0 && len(errs) == 0 {
		return nil, errors.NewParseError("json", "stream message", "no event variant matched", errors.ErrUnrecognizedEvent)
	}
	return out, errors.Join(errs...)
}

// decodeTagged decodes the variant selected by the type field. It returns nil
// when the message has no type or an unknown one.
func decodeTagged(fields map[string]json.RawMessage) (Event, error) {
	var tag string
	if raw, ok := present(fields, "type"); ok {
		if err := json.Unmarshal(raw, &tag); err != nil {
			return nil, errors.WrapParse("json", "type", err)
		}
	}

	switch tag {
	case wireGrantham:
		s, err := optionalString(fields, "grantham_statement")
		if err != nil {
			return nil, err
		}
		return GranthamScore{Statement: s}, nil
	case wireCharge:
		s, err := optionalString(fields, "charge_statement")
		if err != nil {
			return nil, err
		}
		return ChargeStatement{Statement: s}, nil
	case wireSequence:
		iso, err := optionalString(fields, "isoform")
		if err != nil {
			return nil, err
		}
		seq, err := optionalString(fields, "sequence")
		if err != nil {
			return nil, err
		}
		return Sequence{Isoform: iso, Text: seq}, nil
	case wireDone:
		return Done{}, nil
	}
	return nil, nil
}

func decodePDBIDs(raw json.RawMessage) (map[string][]PDBEntry, error) {
	var wire map[string][][]*string
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, errors.WrapParse("json", "pdb_ids", err)
	}

	entries := make(map[string][]PDBEntry, len(wire))
	for iso, rows := range wire {
		list := make([]PDBEntry, 0, len(rows))
		for i, row := range rows {
			if len(row) == 0 || row[0] == nil {
				return nil, errors.NewParseError("json", "pdb_ids",
					fmt.Sprintf("entry %d of %s has no structure id", i, iso), nil)
			}
			entry := PDBEntry{ID: *row[0]}
			if len(row) > 1 && row[1] != nil {
				entry.ChainSpec = *row[1]
				entry.HasChains = true
			}
			list = append(list, entry)
		}
		entries[iso] = list
	}
	return entries, nil
}

// present returns a field unless it is missing or JSON null.
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

func optionalString(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := present(fields, key)
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.WrapParse("json", key, err)
	}
	return s, nil
}

// Encode renders an event in the backend wire shape.
func Encode(e Event) ([]byte, error) {
	var msg map[string]any
	switch v := e.(type) {
	case LogMessage:
		msg = map[string]any{"message": v.Text}
	case GranthamScore:
		msg = map[string]any{"type": wireGrantham, "grantham_statement": v.Statement}
	case ChargeStatement:
		msg = map[string]any{"type": wireCharge, "charge_statement": v.Statement}
	case AllIsoforms:
		msg = map[string]any{"all_isoforms": nonNil(v.IDs)}
	case MatchingIsoforms:
		msg = map[string]any{"matching_isoforms": nonNil(v.IDs)}
	case FilteredIsoforms:
		msg = map[string]any{"filtered_isoforms": nonNil(v.IDs)}
	case PDBIDs:
		wire := make(map[string][][]any, len(v.Entries))
		for iso, list := range v.Entries {
			rows := make([][]any, 0, len(list))
			for _, entry := range list {
				var chains any
				if entry.HasChains {
					chains = entry.ChainSpec
				}
				rows = append(rows, []any{entry.ID, chains})
			}
			wire[iso] = rows
		}
		msg = map[string]any{"pdb_ids": wire}
	case Sequence:
		msg = map[string]any{"type": wireSequence, "isoform": v.Isoform, "sequence": v.Text}
	case Done:
		msg = map[string]any{"type": wireDone}
	default:
		return nil, errors.NewValidationError("event", e, "unknown event type")
	}
	return json.Marshal(msg)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}
