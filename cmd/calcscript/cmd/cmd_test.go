package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cfgFile, runAST, runNoHistory, runRemote = "", false, false, ""
		historyFailures, historyStats, historyJSON = false, false, false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.toml", "[history]\nenabled = true\npath = \""+filepath.Join(dir, "history.db")+"\"\n")

	prog := writeFile(t, dir, "ok.calc", "x = 5\ny = x * (2 + 3)\nprint(y)\n")
	out, err := execute(t, "run", "--config", cfg, prog)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if out != "25\n" {
		t.Errorf("output = %q, want %q", out, "25\n")
	}

	bad := writeFile(t, dir, "bad.calc", "print(1)\nprint(y)\n")
	out, err = execute(t, "run", "--config", cfg, bad)
	if err == nil || !isReported(err) {
		t.Fatalf("fault error = %v, want reported fault", err)
	}
	if out != "" {
		t.Errorf("fault printed output %q", out)
	}

	out, err = execute(t, "history", "--config", cfg)
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 2 {
		t.Errorf("history lines = %d:\n%s", len(lines), out)
	}

	out, err = execute(t, "history", "--config", cfg, "--failures")
	if err != nil || !strings.Contains(out, "NAME") {
		t.Errorf("failures = %q, %v", out, err)
	}
}

func TestRunCommand_AST(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.toml", "[history]\nenabled = false\n")
	prog := writeFile(t, dir, "prog.calc", "x = 1 + 2")

	out, err := execute(t, "run", "--config", cfg, "--ast", prog)
	if err != nil {
		t.Fatalf("run --ast error = %v", err)
	}
	for _, want := range []string{"line 1: x = (1 + 2)", "Assignment x", "BinaryOp +"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryDisabled(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "config.toml", "[history]\nenabled = false\n")
	if _, err := execute(t, "history", "--config", cfg); err == nil {
		t.Error("history with disabled store should fail")
	}
}

func TestLocalAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.0.0.0:9300", "localhost:9300"},
		{"[::]:9300", "localhost:9300"},
		{"nonsense", "nonsense"},
	}
	for _, tt := range tests {
		if got := localAddress(tt.in); got != tt.want {
			t.Errorf("localAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
