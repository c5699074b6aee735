package viewer_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutantautomate/mutant/pkg/logging"
	"github.com/mutantautomate/mutant/pkg/structure"
	"github.com/mutantautomate/mutant/pkg/viewer"
)

func newSync() (*viewer.Sync, *viewer.Recorder, *viewer.Recorder) {
	a := viewer.NewRecorder(viewer.SlotTrimmed)
	b := viewer.NewRecorder(viewer.SlotMutated)
	return viewer.NewSync(a, b), a, b
}

func TestUpdateCommandOrder(t *testing.T) {
	s, a, b := newSync()

	s.Update(structure.Trimmed, "ATOM trimmed")

	assert.Equal(t, []viewer.Op{
		viewer.OpClear, viewer.OpAddModel, viewer.OpSetStyle, viewer.OpZoomTo, viewer.OpRender,
	}, a.Ops())
	assert.Empty(t, b.Ops())

	cmds := a.Commands()
	assert.Equal(t, "ATOM trimmed", cmds[1].Args.Data)
	assert.Equal(t, "pdb", cmds[1].Args.Format)
	assert.Equal(t, viewer.Selection{}, *cmds[2].Args.Selection)
	assert.Equal(t, "gray", cmds[2].Args.Style.Cartoon.Color)
	assert.Equal(t, 0, cmds[3].Args.Duration)
	assert.True(t, s.HasModel(structure.Trimmed))
}

func TestUpdateEmptyClears(t *testing.T) {
	s, a, _ := newSync()

	s.Update(structure.Trimmed, "ATOM")
	a.Reset()
	s.Update(structure.Trimmed, "")

	assert.Equal(t, []viewer.Op{viewer.OpClear}, a.Ops())
	assert.False(t, s.HasModel(structure.Trimmed))
}

func TestUpdateIgnoresRaw(t *testing.T) {
	s, a, b := newSync()
	s.Update(structure.Raw, "ATOM")
	assert.Empty(t, a.Ops())
	assert.Empty(t, b.Ops())
}

func TestZoomTo(t *testing.T) {
	s, a, b := newSync()
	s.Update(structure.Trimmed, "T")
	s.Update(structure.Mutated, "M")
	a.Reset()
	b.Reset()

	s.ZoomTo(140)

	for _, r := range []*viewer.Recorder{a, b} {
		assert.Equal(t, []viewer.Op{
			viewer.OpSetStyle, viewer.OpAddLabel, viewer.OpRender, viewer.OpZoomTo,
		}, r.Ops())

		cmds := r.Commands()
		assert.Equal(t, viewer.Selection{Resi: 140}, *cmds[0].Args.Selection)
		assert.Equal(t, "red", cmds[0].Args.Style.Stick.Color)
		assert.Equal(t, "green", cmds[0].Args.Style.Cartoon.Color)
		assert.Equal(t, 0.5, cmds[0].Args.Style.Cartoon.Opacity)

		assert.Equal(t, "140", cmds[1].Args.Text)
		assert.Equal(t, viewer.HighlightLabel, *cmds[1].Args.Label)

		assert.Equal(t, viewer.Selection{Resi: 140}, *cmds[3].Args.Selection)
		assert.Equal(t, 500, cmds[3].Args.Duration)
	}
}

func TestZoomToSkipsEmptySlots(t *testing.T) {
	s, a, b := newSync()
	s.Update(structure.Trimmed, "T")
	a.Reset()

	s.ZoomTo(26)
	assert.Len(t, a.Ops(), 4)
	assert.Empty(t, b.Ops())

	a.Reset()
	s.ZoomTo(0)
	s.ZoomTo(-3)
	assert.Empty(t, a.Ops())
}

func TestZoomWithoutModelsIsNoop(t *testing.T) {
	s, a, b := newSync()
	s.ZoomTo(10)
	assert.Empty(t, a.Ops())
	assert.Empty(t, b.Ops())
}

func TestRefresh(t *testing.T) {
	s, a, b := newSync()
	s.Update(structure.Mutated, "M")
	a.Reset()
	b.Reset()

	s.Refresh()
	assert.Equal(t, []viewer.Op{viewer.OpClear}, a.Ops())
	assert.Len(t, b.Ops(), 5)
}

func TestNilViewerSlot(t *testing.T) {
	a := viewer.NewRecorder(viewer.SlotTrimmed)
	s := viewer.NewSync(a, nil)
	s.Update(structure.Mutated, "M")
	s.ZoomTo(1)
	assert.Empty(t, a.Ops())
	assert.False(t, s.HasModel(structure.Mutated))
}

func TestRemote(t *testing.T) {
	var got []viewer.Command
	pub := viewer.PublisherFunc(func(c viewer.Command) error {
		got = append(got, c)
		return nil
	})

	s := viewer.NewSync(viewer.NewRemote(viewer.SlotTrimmed, pub, nil), nil)
	s.Update(structure.Trimmed, "T")
	s.ZoomTo(5)

	require.Len(t, got, 9)
	for _, c := range got {
		assert.Equal(t, viewer.SlotTrimmed, c.Slot)
	}

	data, err := json.Marshal(got[8])
	require.NoError(t, err)
	assert.JSONEq(t, `{"slot":"trimmed","op":"zoomTo","args":{"selection":{"resi":5},"duration":500}}`, string(data))
}

func TestRemoteLogsPublishFailure(t *testing.T) {
	tl := logging.NewTestLogger(t)
	pub := viewer.PublisherFunc(func(viewer.Command) error { return errors.New("closed") })

	viewer.NewRemote(viewer.SlotMutated, pub, tl.Logger).Render()
	tl.AssertContains(t, "viewer command dropped")
}
