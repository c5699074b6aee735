package viewer

import (
	"strconv"
	"sync"

	"github.com/mutantautomate/mutant/pkg/constants"
	"github.com/mutantautomate/mutant/pkg/structure"
)

// Slot names used for the two bound viewers.
const (
	SlotTrimmed = "trimmed"
	SlotMutated = "mutated"
)

type slot struct {
	kind     structure.Kind
	viewer   Viewer
	content  string
	hasModel bool
}

// Sync binds one viewer to the trimmed structure and one to the mutated
// structure. Calls are serialized, so the commands of one update or zoom are
// never interleaved with another's.
type Sync struct {
	mu    sync.Mutex
	slots []*slot
}

// NewSync binds the given viewers. A nil viewer leaves its slot unbound.
func NewSync(trimmed, mutated Viewer) *Sync {
	s := &Sync{}
	if trimmed != nil {
		s.slots = append(s.slots, &slot{kind: structure.Trimmed, viewer: trimmed})
	}
	if mutated != nil {
		s.slots = append(s.slots, &slot{kind: structure.Mutated, viewer: mutated})
	}
	return s
}

// Update redraws the viewer bound to kind. Kinds without a viewer are ignored.
// Empty content leaves the viewer cleared without a model.
func (s *Sync) Update(kind structure.Kind, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range s.slots {
		if sl.kind == kind {
			sl.content = content
			draw(sl)
		}
	}
}

// Refresh redraws every bound viewer from its last content.
func (s *Sync) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range s.slots {
		draw(sl)
	}
}

func draw(sl *slot) {
	v := sl.viewer
	v.Clear()
	sl.hasModel = sl.content != ""
	if !sl.hasModel {
		return
	}
	v.AddModel(sl.content, constants.StructureFormat)
	v.SetStyle(Selection{}, ModelStyle)
	v.ZoomTo(Selection{}, 0)
	v.Render()
}

// ZoomTo highlights and centers a residue in every viewer holding a model.
// Positions below 1 are ignored.
func (s *Sync) ZoomTo(position int) {
	if position <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := Selection{Resi: position}
	label := strconv.Itoa(position)
	for _, sl := range s.slots {
		if !sl.hasModel {
			continue
		}
		v := sl.viewer
		v.SetStyle(sel, HighlightStyle)
		v.AddLabel(label, HighlightLabel, sel)
		v.Render()
		v.ZoomTo(sel, constants.ZoomDuration)
	}
}

// HasModel reports whether the viewer bound to kind currently shows a model.
func (s *Sync) HasModel(kind structure.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range s.slots {
		if sl.kind == kind {
			return sl.hasModel
		}
	}
	return false
}
