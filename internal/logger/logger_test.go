package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveLogFilePathUsesWorkdirDefault(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}

	// t.TempDir may sit behind a symlink on darwin.
	realTmpDir, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("eval tmp dir failed: %v", err)
	}
	realGotDir, err := filepath.EvalSymlinks(filepath.Dir(got))
	if err != nil {
		t.Fatalf("eval log dir failed: %v", err)
	}
	if realGotDir != filepath.Join(realTmpDir, defaultLogDirName) {
		t.Fatalf("log dir want %s got %s", filepath.Join(realTmpDir, defaultLogDirName), realGotDir)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("log filename want %s got %s", defaultLogFilename, filepath.Base(got))
	}
	if _, err := os.Stat(filepath.Dir(got)); err != nil {
		t.Fatalf("log dir should exist after resolve: %v", err)
	}
}

func TestReleaseModeWritesJSONToFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{
		Dir:      tmpDir,
		Filename: "assinahub.log",
	})
	log.Sugar().Infow("billing_cycle_closed", "subscription_id", 42)
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "assinahub.log"))
	if err != nil {
		t.Fatalf("read log file failed: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "billing_cycle_closed") {
		t.Fatalf("log line should carry the message, got %s", line)
	}
	if !strings.Contains(line, `"subscription_id"`) {
		t.Fatalf("structured fields should be JSON-encoded, got %s", line)
	}
}

func TestDebugModeStaysOnStdout(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{
		Dir:      tmpDir,
		Filename: "assinahub.log",
	})
	log.Sugar().Debugw("dev_only")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "assinahub.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode must not create a log file")
	}
}

func TestInitInstallsGlobalLogger(t *testing.T) {
	tmpDir := t.TempDir()
	previous := L
	t.Cleanup(func() { L = previous })

	got := Init("release", Options{Dir: tmpDir, Filename: "init.log"})
	if got == nil || L != got {
		t.Fatalf("Init should install and return the global logger")
	}
	if Z() != got {
		t.Fatalf("Z should hand back the installed logger")
	}
}

func TestNormalizePositiveInt(t *testing.T) {
	if got := normalizePositiveInt(0, 7); got != 7 {
		t.Fatalf("zero falls back, want 7 got %d", got)
	}
	if got := normalizePositiveInt(-3, 7); got != 7 {
		t.Fatalf("negative falls back, want 7 got %d", got)
	}
	if got := normalizePositiveInt(14, 7); got != 14 {
		t.Fatalf("positive passes through, want 14 got %d", got)
	}
}
