package viewer

import (
	"slices"
	"sync"
)

// Op names a viewer operation.
type Op string

// Viewer operations.
const (
	OpClear    Op = "clear"
	OpAddModel Op = "addModel"
	OpSetStyle Op = "setStyle"
	OpAddLabel Op = "addLabel"
	OpRender   Op = "render"
	OpZoomTo   Op = "zoomTo"
)

// Command is one recorded viewer call.
type Command struct {
	Slot string `json:"slot,omitempty"`
	Op   Op     `json:"op"`
	Args Args   `json:"args"`
}

// Args carries the arguments of a Command. Only the fields of its Op are set.
type Args struct {
	Data      string        `json:"data,omitempty"`
	Format    string        `json:"format,omitempty"`
	Selection *Selection    `json:"selection,omitempty"`
	Style     *Style        `json:"style,omitempty"`
	Text      string        `json:"text,omitempty"`
	Label     *LabelOptions `json:"label,omitempty"`
	Duration  int           `json:"duration,omitempty"`
}

func commandFor(slot string, op Op, args Args) Command {
	return Command{Slot: slot, Op: op, Args: args}
}

func clearCmd(slot string) Command { return commandFor(slot, OpClear, Args{}) }

func addModelCmd(slot, data, format string) Command {
	return commandFor(slot, OpAddModel, Args{Data: data, Format: format})
}

func setStyleCmd(slot string, sel Selection, style Style) Command {
	return commandFor(slot, OpSetStyle, Args{Selection: &sel, Style: &style})
}

func addLabelCmd(slot, text string, opts LabelOptions, sel Selection) Command {
	return commandFor(slot, OpAddLabel, Args{Text: text, Label: &opts, Selection: &sel})
}

func renderCmd(slot string) Command { return commandFor(slot, OpRender, Args{}) }

func zoomToCmd(slot string, sel Selection, durationMS int) Command {
	return commandFor(slot, OpZoomTo, Args{Selection: &sel, Duration: durationMS})
}

// Recorder is a Viewer that records every call.
type Recorder struct {
	mu       sync.Mutex
	name     string
	commands []Command
}

var _ Viewer = (*Recorder)(nil)

// NewRecorder creates a recorder whose commands carry the given slot name.
func NewRecorder(name string) *Recorder {
	return &Recorder{name: name}
}

func (r *Recorder) record(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, c)
}

// Commands returns a copy of the recorded commands.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.commands)
}

// Ops returns the recorded operations in order.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]Op, len(r.commands))
	for i, c := range r.commands {
		ops[i] = c.Op
	}
	return ops
}

// Reset forgets every recorded command.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}

func (r *Recorder) Clear() { r.record(clearCmd(r.name)) }

func (r *Recorder) AddModel(data, format string) { r.record(addModelCmd(r.name, data, format)) }

func (r *Recorder) SetStyle(sel Selection, style Style) { r.record(setStyleCmd(r.name, sel, style)) }

func (r *Recorder) AddLabel(text string, opts LabelOptions, sel Selection) {
	r.record(addLabelCmd(r.name, text, opts, sel))
}

func (r *Recorder) Render() { r.record(renderCmd(r.name)) }

func (r *Recorder) ZoomTo(sel Selection, durationMS int) { r.record(zoomToCmd(r.name, sel, durationMS)) }
