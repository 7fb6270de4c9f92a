package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/errors"
	pkgio "github.com/matzehuels/brickyard/pkg/io"
)

// isolate points config and data directories at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("BRICKYARD_STORE", "")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCatalogCommand(t *testing.T) {
	isolate(t)
	tests := []struct {
		args    []string
		want    []string
		notWant []string
	}{
		{[]string{"catalog"}, []string{"2x4", "plate-1x1", "cylinder"}, nil},
		{[]string{"catalog", "--group", "plates"}, []string{"plate-2x4"}, []string{"1x3", "arch"}},
		{[]string{"catalog", "--colors"}, []string{"#E3000B", "light gray"}, []string{"plate"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("execute() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q", w)
				}
			}
		})
	}

	if _, err := execute(t, "catalog", "--group", "towers"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("catalog --group towers error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestPlaceStacks(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "tower.json")

	if _, err := execute(t, "place", file, "--at", "0,0"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("place without --create error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
	if _, err := execute(t, "place", file, "--create", "--type", "2x4", "--at", "0,0", "--at", "0.2,0.3"); err != nil {
		t.Fatalf("place error = %v", err)
	}
	if _, err := execute(t, "place", file, "--type", "plate-1x1", "--color", "blue", "--at", "0.5,0.5"); err != nil {
		t.Fatalf("place plate error = %v", err)
	}

	pieces, err := pkgio.ImportJSON(file)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	wantY := []float64{0.2, 1.2, 2.2}
	if len(pieces) != len(wantY) {
		t.Fatalf("pieces = %d, want %d", len(pieces), len(wantY))
	}
	for i, p := range pieces {
		if diff := p.Y() - wantY[i]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("piece %d y = %v, want %v", i, p.Y(), wantY[i])
		}
	}
	if pieces[2].Color != "#0055BF" {
		t.Errorf("plate colour = %s, want #0055BF", pieces[2].Color)
	}

	if _, err := execute(t, "place", file, "--at", "left"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("place --at left error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func writeBuild(t *testing.T, dir string, pieces build.Pieces) string {
	t.Helper()
	file := filepath.Join(dir, "build.json")
	if err := pkgio.ExportJSON(pieces, file); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	return file
}

func floatingBuild() build.Pieces {
	return build.Pieces{
		{ID: "base", Type: "2x4", Position: [3]float64{0, 0.2, 0}, Color: "#E3000B"},
		{ID: "top", Type: "1x1", Position: [3]float64{0.5, 1.2, 0.5}, Color: "#0055BF"},
		{ID: "ghost", Type: "1x1", Position: [3]float64{8.5, 3.2, 8.5}, Color: "#F2CD37"},
	}
}

func TestInspectJSON(t *testing.T) {
	dir := isolate(t)
	file := writeBuild(t, dir, floatingBuild())

	out, err := execute(t, "inspect", file, "--json")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	var r report
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if r.Pieces != 3 || r.ByType["1x1"] != 2 {
		t.Errorf("report counts = %+v, want 3 pieces with two 1x1", r)
	}
	if len(r.Floating) != 1 || r.Floating[0] != "ghost" {
		t.Errorf("report floating = %v, want [ghost]", r.Floating)
	}
	if d := r.MaxElevation - 4.2; d > 1e-9 || d < -1e-9 {
		t.Errorf("report max elevation = %v, want 4.2", r.MaxElevation)
	}

	out, err = execute(t, "inspect", file)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if !strings.Contains(out, "floating: ghost") {
		t.Errorf("inspect output missing floating warning:\n%s", out)
	}
}

func TestInspectRejectsMalformed(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(file, []byte(`{"pieces": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "inspect", file); !errors.Is(err, errors.ErrCodeInvalidBuild) {
		t.Errorf("inspect error = %v, want %s", err, errors.ErrCodeInvalidBuild)
	}
}

func TestSupportDOT(t *testing.T) {
	dir := isolate(t)
	file := writeBuild(t, dir, floatingBuild())

	out, err := execute(t, "support", file)
	if err != nil {
		t.Fatalf("support error = %v", err)
	}
	for _, want := range []string{"digraph G", "rankdir=BT", `"base" -> "top"`} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}

	dotFile := filepath.Join(dir, "graph.dot")
	if _, err := execute(t, "support", file, "-o", dotFile); err != nil {
		t.Fatalf("support -o error = %v", err)
	}
	if data, err := os.ReadFile(dotFile); err != nil || !bytes.HasPrefix(data, []byte("digraph")) {
		t.Errorf("graph.dot = %q, %v; want DOT", data, err)
	}
}

func TestLibraryCommands(t *testing.T) {
	dir := isolate(t)
	file := writeBuild(t, dir, floatingBuild())

	if _, err := execute(t, "library", "save", "castle", file); err != nil {
		t.Fatalf("library save error = %v", err)
	}
	out, err := execute(t, "library", "list")
	if err != nil {
		t.Fatalf("library list error = %v", err)
	}
	if !strings.Contains(out, "castle") {
		t.Errorf("library list missing castle:\n%s", out)
	}

	out, err = execute(t, "library", "load", "castle")
	if err != nil {
		t.Fatalf("library load error = %v", err)
	}
	got, err := pkgio.Unmarshal([]byte(out))
	if err != nil {
		t.Fatalf("Unmarshal(load output) error = %v", err)
	}
	if !got.Equal(floatingBuild()) {
		t.Errorf("library load = %+v, want the saved build", got)
	}

	if _, err := execute(t, "library", "delete", "castle"); err != nil {
		t.Fatalf("library delete error = %v", err)
	}
	if _, err := execute(t, "library", "load", "castle"); !errors.Is(err, errors.ErrCodeBuildNotFound) {
		t.Errorf("load after delete error = %v, want %s", err, errors.ErrCodeBuildNotFound)
	}
	if _, err := execute(t, "library", "save", "../escape", file); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("save ../escape error = %v, want %s", err, errors.ErrCodeInvalidName)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)
	want := filepath.Join(dir, "config", "brickyard", "config.toml")

	out, err := execute(t, "config", "path")
	if err != nil || strings.TrimSpace(out) != want {
		t.Errorf("config path = %q, %v; want %q", out, err, want)
	}
	if _, err := execute(t, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := execute(t, "config", "init"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second config init error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if _, err := execute(t, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}

	out, err = execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	for _, key := range []string{"click_threshold = 5.0", `backend = "file"`} {
		if !strings.Contains(out, key) {
			t.Errorf("config show missing %q:\n%s", key, out)
		}
	}

	if _, err := execute(t, "--config", filepath.Join(dir, "missing.toml"), "config", "show"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("config show with missing --config error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestParseXZ(t *testing.T) {
	tests := []struct {
		in      string
		x, z    float64
		wantErr bool
	}{
		{"0,0", 0, 0, false},
		{"2.5, -6", 2.5, -6, false},
		{"1", 0, 0, true},
		{"a,b", 0, 0, true},
		{"1,", 0, 0, true},
	}
	for _, tt := range tests {
		x, z, err := parseXZ(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseXZ(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (x != tt.x || z != tt.z) {
			t.Errorf("parseXZ(%q) = (%v, %v), want (%v, %v)", tt.in, x, z, tt.x, tt.z)
		}
	}
}
