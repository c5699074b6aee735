package viewer

import (
	"github.com/rs/zerolog"
)

// Publisher delivers viewer commands to remote displays.
type Publisher interface {
	Publish(cmd Command) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Command) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(cmd Command) error { return f(cmd) }

// Remote is a Viewer that forwards every call to a Publisher.
type Remote struct {
	slot   string
	pub    Publisher
	logger *zerolog.Logger
}

var _ Viewer = (*Remote)(nil)

// NewRemote creates a remote viewer for the named slot. Publish failures are
// logged and dropped; a display that missed commands catches up on the next
// update.
func NewRemote(slot string, pub Publisher, logger *zerolog.Logger) *Remote {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Remote{slot: slot, pub: pub, logger: logger}
}

func (r *Remote) send(c Command) {
	if err := r.pub.Publish(c); err != nil {
		r.logger.Warn().Err(err).Str("slot", r.slot).Str("op", string(c.Op)).Msg("viewer command dropped")
	}
}

func (r *Remote) Clear() { r.send(clearCmd(r.slot)) }

func (r *Remote) AddModel(data, format string) { r.send(addModelCmd(r.slot, data, format)) }

func (r *Remote) SetStyle(sel Selection, style Style) { r.send(setStyleCmd(r.slot, sel, style)) }

func (r *Remote) AddLabel(text string, opts LabelOptions, sel Selection) {
	r.send(addLabelCmd(r.slot, text, opts, sel))
}

func (r *Remote) Render() { r.send(renderCmd(r.slot)) }

func (r *Remote) ZoomTo(sel Selection, durationMS int) { r.send(zoomToCmd(r.slot, sel, durationMS)) }
