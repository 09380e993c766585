package sidxcli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"kinds"})
	_, opts, err := ExecuteForTest(cmd)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if opts.ConfigPath != "" || opts.Daemon != "" || len(opts.Dirs) != 0 || opts.Verbose {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}

func TestDirRepeat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"kinds", "-C", "src", "--dir", " ", "--dir", "lib"})
	_, opts, err := ExecuteForTest(cmd)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(opts.Dirs) != 2 || opts.Dirs[0] != "src" || opts.Dirs[1] != "lib" {
		t.Fatalf("Dirs=%v", opts.Dirs)
	}
}

func TestJournalInvalidIsError(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"kinds", "--journal", "redis"})
	if _, _, err := ExecuteForTest(cmd); err == nil {
		t.Fatal("expected error")
	}
}

func TestLogFormatInvalidIsError(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"kinds", "--log-format", "xml"})
	if _, _, err := ExecuteForTest(cmd); err == nil {
		t.Fatal("expected error")
	}
}

func TestConfig_FlagsOverrideFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".sidx.yaml")
	body := "executable: /usr/bin/cscope\ndatabase: tags.out\njournal: bleve\ndirectories: [a, b]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts := &Options{ConfigPath: path}
	cfg, err := opts.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Executable != "/usr/bin/cscope" || cfg.Database != "tags.out" || cfg.Journal != "bleve" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if len(cfg.Directories) != 2 || cfg.Directories[0] != filepath.Join(root, "a") {
		t.Fatalf("Directories=%v", cfg.Directories)
	}

	abs := filepath.Join(root, "c")
	opts = &Options{ConfigPath: path, Executable: "gtags-cscope", Database: "x.out", Journal: "none", Dirs: []string{abs}}
	cfg, err = opts.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Executable != "gtags-cscope" || cfg.Database != "x.out" || cfg.Journal != "none" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if len(cfg.Directories) != 1 || cfg.Directories[0] != abs {
		t.Fatalf("Directories=%v", cfg.Directories)
	}
}
