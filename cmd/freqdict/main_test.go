package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuildFromDirectory(t *testing.T) {
	dir := t.TempDir()
	articles := filepath.Join(dir, "articles")
	if err := os.MkdirAll(articles, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(articles, "Cats.txt"), []byte("The cat sat. The cat ran with a dog."), 0644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out.json")

	out, err := runCLI(t, "build", "--dir", articles, "-o", outPath, "Cats", "Nowhere")
	if err != nil {
		t.Fatalf("build error = %v\n%s", err, out)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"cat":2,"dog":1,"ran":1,"sat":1}`; string(data) != want {
		t.Errorf("dictionary = %s, want %s", data, want)
	}
	if !strings.Contains(out, "Nowhere") || !strings.Contains(out, "missing") {
		t.Errorf("report does not list the skipped page:\n%s", out)
	}
}

func TestBuildUnknownSource(t *testing.T) {
	_, err := runCLI(t, "build", "--source", "ftp", "-o", filepath.Join(t.TempDir(), "x.json"), "Go")
	if err == nil || !strings.Contains(err.Error(), "unknown source") {
		t.Errorf("build error = %v, want unknown source", err)
	}
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "words.csv")
	content := "word,count\nw1,1\nw2,2\nw3,3\nw4,4\nw5,5\nbad,abc\n"
	if err := os.WriteFile(in, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "clean", "--in", in, "--percentile", "0.2")
	if err != nil {
		t.Fatalf("clean error = %v\n%s", err, out)
	}
	data, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	if want := "word,count\nw2,2\nw3,3\nw4,4\nw5,5\n"; string(data) != want {
		t.Errorf("cleaned file = %q, want %q", data, want)
	}
	if !strings.Contains(out, "1.8") {
		t.Errorf("report missing cutoff:\n%s", out)
	}
}

func TestCleanInvalidPercentile(t *testing.T) {
	in := filepath.Join(t.TempDir(), "words.csv")
	if err := os.WriteFile(in, []byte("word,count\na,1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "clean", "--in", in, "-p", "1.5"); err == nil {
		t.Error("clean accepted percentile 1.5")
	}
}

func TestCleanFormatMustMatchOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "words.csv")
	content := "word,count\nalpha,1\nbeta,5\ngamma,9\n"
	if err := os.WriteFile(in, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "clean", "--in", in, "--format", "json"); err == nil {
		t.Fatal("clean wrote json over a csv input")
	}
	data, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("input changed after rejected clean: %q", data)
	}

	jsonOut := filepath.Join(dir, "words.json")
	out, err := runCLI(t, "clean", "--in", in, "--out", jsonOut, "--format", "json")
	if err != nil {
		t.Fatalf("clean to json error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "JSON Frequency Table") {
		t.Errorf("report missing output format:\n%s", out)
	}
	if _, err := runCLI(t, "clean", "--in", jsonOut); err != nil {
		t.Errorf("cleaned json does not load back: %v", err)
	}
}

func TestConvertToChunks(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "words.json")
	if err := os.WriteFile(in, []byte(`{"alpha": 3, "beta": "x", "gamma": 9}`), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "chunks")

	if out, err := runCLI(t, "convert", "--in", in, "--out", outDir, "--format", "chunks"); err != nil {
		t.Fatalf("convert error = %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "dict_0001.bin")); err != nil {
		t.Errorf("chunk file missing: %v", err)
	}
}

func TestConfigInitAndPath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "cfg", "config.toml")
	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output = %q, want target path", out)
	}
	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Error("config init overwrote an existing file without --overwrite")
	}

	out, err = runCLI(t, "--config", target, "config", "path")
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if strings.TrimSpace(out) != target {
		t.Errorf("config path = %q, want %q", strings.TrimSpace(out), target)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestReadTitles(t *testing.T) {
	titles, err := readTitles(strings.NewReader("Go\n\n# comment\n  Rust  \n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 2 || titles[0] != "Go" || titles[1] != "Rust" {
		t.Errorf("readTitles() = %v", titles)
	}
}

func TestOrdinal(t *testing.T) {
	tests := map[float64]string{0.2: "20th", 0.01: "1st", 0.22: "22nd", 0.03: "3rd", 0.11: "11th", 0.125: "12.50th"}
	for p, want := range tests {
		if got := ordinal(p); got != want {
			t.Errorf("ordinal(%v) = %q, want %q", p, got, want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	got := renderTable([]string{"Word", "Count"}, [][]string{{"cat", "2"}, {"dog"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"WORD", "COUNT", "cat", "dog"} {
		if !strings.Contains(got, want) {
			t.Errorf("renderTable() missing %q:\n%s", want, got)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("renderTable() with no headers should be empty")
	}
}
