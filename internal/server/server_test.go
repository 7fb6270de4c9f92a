package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/controller"
	pkgerrors "github.com/matzehuels/brickyard/pkg/errors"
	"github.com/matzehuels/brickyard/pkg/library"
	"github.com/matzehuels/brickyard/pkg/observability"
	"github.com/matzehuels/brickyard/pkg/raycast"
	"github.com/matzehuels/brickyard/pkg/session"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	n := 0
	ctrl := controller.New(nil, controller.Options{NewID: func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}})
	logger := log.New(io.Discard)
	loop := session.New(ctrl, raycast.NewTopDown(), session.Options{FrameRate: 120, Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()

	opts.Logger = logger
	ts := httptest.NewServer(New(loop, opts).Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s decode error = %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestClickPlacesPiece(t *testing.T) {
	ts := newTestServer(t, Options{})

	var f session.Frame
	if code := call(t, ts, "POST", "/api/pointer", `{"x":0,"y":0}`, &f); code != http.StatusOK {
		t.Fatalf("POST /api/pointer = %d, want 200", code)
	}
	if f.Preview == nil || f.Preview.Contact != "ground" {
		t.Fatalf("preview = %+v, want ground candidate", f.Preview)
	}

	if code := call(t, ts, "POST", "/api/press", `{"x":100,"y":100}`, nil); code != http.StatusNoContent {
		t.Fatalf("POST /api/press = %d, want 204", code)
	}
	var cm commitResponse
	call(t, ts, "POST", "/api/release", `{"x":103,"y":104}`, &cm)
	if !cm.Committed || cm.Piece == nil || cm.Piece.ID != "p1" || cm.Contact != "ground" {
		t.Fatalf("release = %+v, want p1 committed on ground", cm)
	}

	var pieces build.Pieces
	call(t, ts, "GET", "/api/pieces", "", &pieces)
	if len(pieces) != 1 || pieces[0].Y() != 0.2 {
		t.Errorf("GET /api/pieces = %+v, want one piece at y=0.2", pieces)
	}
}

func TestDragDoesNotPlace(t *testing.T) {
	ts := newTestServer(t, Options{})
	call(t, ts, "POST", "/api/pointer", `{"x":0,"y":0}`, nil)
	call(t, ts, "POST", "/api/press", `{"x":0,"y":0}`, nil)

	var cm commitResponse
	call(t, ts, "POST", "/api/release", `{"x":30,"y":0}`, &cm)
	if cm.Committed {
		t.Errorf("release after drag = %+v, want no commit", cm)
	}
}

func TestUndoRedo(t *testing.T) {
	ts := newTestServer(t, Options{})
	call(t, ts, "POST", "/api/pointer", `{"x":0,"y":0}`, nil)
	call(t, ts, "POST", "/api/press", `{"x":0,"y":0}`, nil)
	call(t, ts, "POST", "/api/release", `{"x":0,"y":0}`, nil)

	tests := []struct {
		path    string
		applied bool
		count   int
	}{
		{"/api/undo", true, 0},
		{"/api/undo", false, 0},
		{"/api/redo", true, 1},
		{"/api/redo", false, 1},
		{"/api/clear", true, 0},
		{"/api/clear", false, 0},
	}
	for _, tt := range tests {
		var got editResponse
		call(t, ts, "POST", tt.path, "", &got)
		if got.Applied != tt.applied || got.Count != tt.count {
			t.Errorf("POST %s = %+v, want applied=%v count=%d", tt.path, got, tt.applied, tt.count)
		}
	}
}

func TestRemove(t *testing.T) {
	ts := newTestServer(t, Options{})
	call(t, ts, "POST", "/api/pointer", `{"x":0,"y":0}`, nil)
	call(t, ts, "POST", "/api/press", `{"x":0,"y":0}`, nil)
	call(t, ts, "POST", "/api/release", `{"x":0,"y":0}`, nil)

	var body errorBody
	if code := call(t, ts, "DELETE", "/api/pieces/nope", "", &body); code != http.StatusNotFound {
		t.Errorf("DELETE unknown = %d, want 404", code)
	}
	if body.Code != pkgerrors.ErrCodePieceNotFound {
		t.Errorf("error code = %s, want %s", body.Code, pkgerrors.ErrCodePieceNotFound)
	}

	var got editResponse
	if code := call(t, ts, "DELETE", "/api/pieces/p1", "", &got); code != http.StatusOK || !got.Applied || got.Count != 0 {
		t.Errorf("DELETE p1 = %d %+v, want applied with no pieces left", code, got)
	}
}

func TestImportExport(t *testing.T) {
	ts := newTestServer(t, Options{})
	input := `[{"id":"a","type":"2x4","position":[0,0.2,0],"rotation":[0,0,0],"color":"#E3000B"}]`

	var got editResponse
	if code := call(t, ts, "PUT", "/api/build", input, &got); code != http.StatusOK || !got.Applied || got.Count != 1 {
		t.Fatalf("PUT /api/build = %d %+v, want one piece applied", code, got)
	}
	call(t, ts, "PUT", "/api/build", input, &got)
	if got.Applied {
		t.Errorf("re-import of identical build applied, want no-op")
	}

	var pieces build.Pieces
	call(t, ts, "GET", "/api/build", "", &pieces)
	if len(pieces) != 1 || pieces[0].ID != "a" {
		t.Errorf("GET /api/build = %+v, want piece a", pieces)
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	ts := newTestServer(t, Options{})
	call(t, ts, "PUT", "/api/build",
		`[{"id":"a","type":"2x4","position":[0,0.2,0],"rotation":[0,0,0],"color":"#E3000B"}]`, nil)

	for _, body := range []string{`{}`, `not json`, `[{"id":"b"}]`} {
		var eb errorBody
		if code := call(t, ts, "PUT", "/api/build", body, &eb); code != http.StatusBadRequest {
			t.Errorf("PUT %q = %d, want 400", body, code)
		}
		if eb.Code != pkgerrors.ErrCodeInvalidBuild {
			t.Errorf("PUT %q code = %s, want %s", body, eb.Code, pkgerrors.ErrCodeInvalidBuild)
		}
	}

	var pieces build.Pieces
	call(t, ts, "GET", "/api/pieces", "", &pieces)
	if len(pieces) != 1 {
		t.Errorf("pieces after rejected imports = %d, want 1", len(pieces))
	}
}

func TestTool(t *testing.T) {
	ts := newTestServer(t, Options{})

	var f session.Frame
	if code := call(t, ts, "PUT", "/api/tool", `{"type":"plate-1x1","color":"#0055BF"}`, &f); code != http.StatusOK {
		t.Fatalf("PUT /api/tool = %d, want 200", code)
	}
	if f.ActiveType != "plate-1x1" || f.ActiveColor != "#0055BF" {
		t.Errorf("tool = %s %s, want plate-1x1 #0055BF", f.ActiveType, f.ActiveColor)
	}

	tests := []struct {
		body string
		code pkgerrors.Code
	}{
		{`{"type":"9x9"}`, pkgerrors.ErrCodeInvalidPieceType},
		{`{"color":"pink"}`, pkgerrors.ErrCodeInvalidColor},
		{`{"shape":"round"}`, pkgerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		var eb errorBody
		if status := call(t, ts, "PUT", "/api/tool", tt.body, &eb); status != http.StatusBadRequest || eb.Code != tt.code {
			t.Errorf("PUT /api/tool %s = %d %s, want 400 %s", tt.body, status, eb.Code, tt.code)
		}
	}
}

func TestLibrary(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		ts := newTestServer(t, Options{})
		if code := call(t, ts, "GET", "/api/library/", "", nil); code != http.StatusNotImplemented {
			t.Errorf("GET /api/library/ = %d, want 501", code)
		}
	})

	t.Run("file", func(t *testing.T) {
		store, err := library.NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		ts := newTestServer(t, Options{Library: store})
		call(t, ts, "PUT", "/api/build",
			`[{"id":"a","type":"2x4","position":[0,0.2,0],"rotation":[0,0,0],"color":"#E3000B"}]`, nil)

		var info library.Info
		if code := call(t, ts, "PUT", "/api/library/castle", "", &info); code != http.StatusOK || info.Count != 1 {
			t.Fatalf("save = %d %+v, want castle with one piece", code, info)
		}
		call(t, ts, "POST", "/api/clear", "", nil)

		var got editResponse
		if code := call(t, ts, "POST", "/api/library/castle/load", "", &got); code != http.StatusOK || got.Count != 1 {
			t.Errorf("load = %d %+v, want one piece", code, got)
		}
		if code := call(t, ts, "POST", "/api/library/moat/load", "", nil); code != http.StatusNotFound {
			t.Errorf("load missing = %d, want 404", code)
		}

		var infos []library.Info
		call(t, ts, "GET", "/api/library/", "", &infos)
		if len(infos) != 1 || infos[0].Name != "castle" {
			t.Errorf("list = %+v, want [castle]", infos)
		}
		if code := call(t, ts, "DELETE", "/api/library/castle", "", nil); code != http.StatusNoContent {
			t.Errorf("delete = %d, want 204", code)
		}
		if code := call(t, ts, "DELETE", "/api/library/castle", "", nil); code != http.StatusNotFound {
			t.Errorf("delete again = %d, want 404", code)
		}
	})
}

func TestStream(t *testing.T) {
	ts := newTestServer(t, Options{})
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first session.Frame
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if first.Preview != nil {
		t.Errorf("initial frame has preview %+v, want none", first.Preview)
	}

	if err := conn.WriteJSON(streamMessage{Type: "pointer"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	for {
		var f session.Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if f.Preview != nil {
			if f.Seq <= first.Seq {
				t.Errorf("frame seq = %d, want > %d", f.Seq, first.Seq)
			}
			break
		}
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom := observability.NewPrometheus(reg)
	observability.SetHTTPHooks(prom)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, Options{Gatherer: reg})
	call(t, ts, "GET", "/api/frame", "", nil)

	var body []byte
	for range 50 {
		resp, err := ts.Client().Get(ts.URL + "/metrics")
		if err != nil {
			t.Fatalf("GET /metrics error = %v", err)
		}
		body, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
		if bytes.Contains(body, []byte(`route="/api/frame"`)) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("/metrics missing /api/frame series:\n%s", body)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{pkgerrors.New(pkgerrors.ErrCodeInvalidBuild, "x"), http.StatusBadRequest},
		{pkgerrors.New(pkgerrors.ErrCodeInvalidName, "x"), http.StatusBadRequest},
		{pkgerrors.New(pkgerrors.ErrCodeBuildNotFound, "x"), http.StatusNotFound},
		{pkgerrors.New(pkgerrors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{pkgerrors.New(pkgerrors.ErrCodeStorage, "x"), http.StatusBadGateway},
		{session.ErrStopped, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
