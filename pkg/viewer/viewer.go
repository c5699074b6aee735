// Package viewer keeps molecular viewers in step with the client's structures.
//
// A Viewer is any 3Dmol-style display. Sync binds two of them to the trimmed
// and mutated structures and drives both for residue zooms. Recorder captures
// commands in memory; Remote serializes them to a Publisher such as the
// server's websocket hub.
package viewer

// Selection picks residues. The zero value selects everything.
type Selection struct {
	Resi int `json:"resi,omitempty"`
}

// CartoonStyle renders the backbone as a cartoon.
type CartoonStyle struct {
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// StickStyle renders atoms and bonds as sticks.
type StickStyle struct {
	Color string `json:"color,omitempty"`
}

// Style is applied to a selection, replacing any previous style.
type Style struct {
	Cartoon *CartoonStyle `json:"cartoon,omitempty"`
	Stick   *StickStyle   `json:"stick,omitempty"`
}

// LabelOptions controls how a residue label is drawn.
type LabelOptions struct {
	Alignment         string  `json:"alignment"`
	BackgroundOpacity float64 `json:"backgroundOpacity"`
	FontSize          int     `json:"fontSize"`
	ShowBackground    bool    `json:"showBackground"`
}

// Viewer is a molecular viewer.
type Viewer interface {
	Clear()
	AddModel(data, format string)
	SetStyle(sel Selection, style Style)
	AddLabel(text string, opts LabelOptions, sel Selection)
	Render()
	ZoomTo(sel Selection, durationMS int)
}

// Styles used by Sync.
var (
	ModelStyle = Style{Cartoon: &CartoonStyle{Color: "gray"}}

	HighlightStyle = Style{
		Stick:   &StickStyle{Color: "red"},
		Cartoon: &CartoonStyle{Color: "green", Opacity: 0.5},
	}

	HighlightLabel = LabelOptions{
		Alignment:         "center",
		BackgroundOpacity: 0.8,
		FontSize:          12,
		ShowBackground:    true,
	}
)
