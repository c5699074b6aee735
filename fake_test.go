package mutant

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mutantautomate/mutant/pkg/logging"
	"github.com/mutantautomate/mutant/pkg/viewer"
)

// streamScript writes one /process response. send writes a data frame and
// flushes it.
type streamScript func(r *http.Request, send func(data string))

// fakeServices serves every upstream the client talks to from one server.
type fakeServices struct {
	t   *testing.T
	srv *httptest.Server

	scripts chan streamScript

	mu        sync.Mutex
	trimBody  map[string]any
	mutations int

	// trimGate and mutateGate, when set, hold the response until closed or
	// until the request is cancelled.
	trimGate   chan struct{}
	mutateGate chan struct{}

	// predictions is the JSON served by the prediction endpoint.
	predictions string

	trimStatus   int
	streamStatus int
}

const (
	testFASTA   = ">sp|Q8N2Q7|NLGN1_HUMAN Neuroligin-1\nMALPR\nCTWPN\n"
	testRawPDB  = "HEADER    RAW\nATOM      1  N   MET A   1\nATOM      2  N   MET B   1\n"
	testTrimPDB = "ATOM      1  N   MET A   1\n"
	testAFPDB   = "ATOM      1  N   MET A   1  AF\n"
)

func newFakeServices(t *testing.T) *fakeServices {
	t.Helper()
	f := &fakeServices{
		t:          t,
		scripts:    make(chan streamScript, 8),
		trimStatus: http.StatusOK,
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	f.predictions = fmt.Sprintf(`[{"entryId":"AF-Q8N2Q7-F1","pdbUrl":"%s/files/AF-Q8N2Q7-F1.pdb"}]`, f.srv.URL)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServices) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/process":
		f.serveStream(w, r)

	case r.URL.Path == "/trim_pdb":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.trimBody = body
		gate, status := f.trimGate, f.trimStatus
		f.mu.Unlock()
		if !wait(r, gate) {
			return
		}
		if status != http.StatusOK {
			http.Error(w, "trim failed", status)
			return
		}
		_, _ = io.WriteString(w, testTrimPDB)

	case r.URL.Path == "/mutate":
		var body struct {
			PDBString string `json:"pdb_string"`
			Residue1  string `json:"residue1"`
			Position  int    `json:"position"`
			Residue2  string `json:"residue2"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.mutations++
		gate := f.mutateGate
		f.mu.Unlock()
		if !wait(r, gate) {
			return
		}
		fmt.Fprintf(w, "MUTATED %s%d%s\n%s", body.Residue1, body.Position, body.Residue2, body.PDBString)

	case r.URL.Path == "/uniprotkb/Q8N2Q7.fasta":
		_, _ = io.WriteString(w, testFASTA)

	case r.URL.Path == "/download/3BIX.pdb":
		_, _ = io.WriteString(w, testRawPDB)

	case r.URL.Path == "/api/prediction/Q8N2Q7":
		f.mu.Lock()
		preds := f.predictions
		f.mu.Unlock()
		_, _ = io.WriteString(w, preds)

	case r.URL.Path == "/files/AF-Q8N2Q7-F1.pdb":
		_, _ = io.WriteString(w, testAFPDB)

	default:
		http.NotFound(w, r)
	}
}

func wait(r *http.Request, gate chan struct{}) bool {
	if gate == nil {
		return true
	}
	select {
	case <-gate:
		return true
	case <-r.Context().Done():
		return false
	}
}

func (f *fakeServices) serveStream(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	status := f.streamStatus
	f.mu.Unlock()
	if status != 0 {
		http.Error(w, "stream unavailable", status)
		return
	}

	var script streamScript
	select {
	case script = <-f.scripts:
	case <-time.After(5 * time.Second):
		http.Error(w, "no stream scripted", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	flusher := w.(http.Flusher)
	flusher.Flush()

	script(r, func(data string) {
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	})
}

// script queues the response of the next /process request.
func (f *fakeServices) script(s streamScript) {
	f.scripts <- s
}

// frames scripts a stream that sends the given data frames then ends.
func (f *fakeServices) frames(data ...string) {
	f.script(func(_ *http.Request, send func(string)) {
		for _, d := range data {
			send(d)
		}
	})
}

// hold scripts a stream that sends the given frames then stays open until
// the client goes away.
func (f *fakeServices) hold(data ...string) {
	f.script(func(r *http.Request, send func(string)) {
		for _, d := range data {
			send(d)
		}
		<-r.Context().Done()
	})
}

// testClient wires a client to the fake services with recording viewers.
type testClient struct {
	*client
	fake    *fakeServices
	trimmed *viewer.Recorder
	mutated *viewer.Recorder
	logs    *logging.TestLogger
	wire    *wireLog
}

func newTestClient(t *testing.T, opts ...Option) *testClient {
	t.Helper()
	fake := newFakeServices(t)
	tl := logging.NewTestLogger(t)
	wire := &wireLog{next: http.DefaultTransport}

	trimmed := viewer.NewRecorder(viewer.SlotTrimmed)
	mutated := viewer.NewRecorder(viewer.SlotMutated)

	base := []Option{
		WithBackendURL(fake.srv.URL),
		WithUniProtURL(fake.srv.URL),
		WithRCSBURL(fake.srv.URL),
		WithAlphaFoldURL(fake.srv.URL),
		WithHTTPClient(&http.Client{Transport: wire, Timeout: 10 * time.Second}),
		WithLogger(tl.Logger),
		WithViewers(trimmed, mutated),
		WithRetries(0),
		WithRateLimit(0),
	}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return &testClient{
		client:  c.(*client),
		fake:    fake,
		trimmed: trimmed,
		mutated: mutated,
		logs:    tl,
		wire:    wire,
	}
}

// wireLog records when analysis streams are opened and closed.
type wireLog struct {
	next http.RoundTripper

	mu      sync.Mutex
	entries []string
	streams int
}

func (w *wireLog) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Path != "/process" {
		return w.next.RoundTrip(req)
	}

	w.mu.Lock()
	w.streams++
	n := w.streams
	w.entries = append(w.entries, fmt.Sprintf("open %d", n))
	w.mu.Unlock()

	resp, err := w.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = &closeRecorder{ReadCloser: resp.Body, onClose: func() {
		w.mu.Lock()
		w.entries = append(w.entries, fmt.Sprintf("close %d", n))
		w.mu.Unlock()
	}}
	return resp, nil
}

func (w *wireLog) log() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.entries...)
}

type closeRecorder struct {
	io.ReadCloser
	once    sync.Once
	onClose func()
}

func (c *closeRecorder) Close() error {
	c.once.Do(c.onClose)
	return c.ReadCloser.Close()
}

var nlgn1 = Params{GeneName: "NLGN1", Residue1: "D", Position: 140, Residue2: "Y"}

func msg(text string) string {
	return fmt.Sprintf(`{"message": %q}`, text)
}

func joined(parts ...string) string {
	return strings.Join(parts, "\n")
}
