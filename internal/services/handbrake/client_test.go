package handbrake

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"irilis/internal/services"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/HandBrakeCLI"))
	if cli.binary != "/opt/HandBrakeCLI" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestEncodeRequiresInput(t *testing.T) {
	cli := NewCLI()
	if err := cli.Encode(context.Background(), "", "/tmp/out.mkv", "movie"); err == nil {
		t.Fatal("expected error when input path is empty")
	}
}

func TestEncodeRequiresPreset(t *testing.T) {
	cli := NewCLI()
	if err := cli.Encode(context.Background(), "/media/in.mkv", "/tmp/out.mkv", "  "); err == nil {
		t.Fatal("expected error when preset is empty")
	}
}

func TestEncodeBuildsPresetArguments(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HANDBRAKE_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI(WithPresetDir("/etc/irilis/presets"))
	if err := cli.Encode(context.Background(), "/media/in.mkv", "/tmp/out.mkv", "movie"); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	wantImport := filepath.Join("/etc/irilis/presets", "movie.json")
	var sawImport, sawPreset bool
	for i, arg := range capturedArgs {
		if arg == "--preset-import-file" && i+1 < len(capturedArgs) && capturedArgs[i+1] == wantImport {
			sawImport = true
		}
		if arg == "--preset" && i+1 < len(capturedArgs) && capturedArgs[i+1] == "movie" {
			sawPreset = true
		}
	}
	if !sawImport || !sawPreset {
		t.Fatalf("missing preset arguments in %v", capturedArgs)
	}
}

func TestEncodeFailureIsExternalToolError(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HANDBRAKE_HELPER_MODE=failure")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI()
	err := cli.Encode(context.Background(), "/media/in.mkv", "/tmp/out.mkv", "movie")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestCheckFailureIsConfigurationError(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HANDBRAKE_HELPER_MODE=failure")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI()
	err := cli.Check(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("HANDBRAKE_HELPER_MODE") {
	case "success":
		fmt.Println("Encode done!")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "unable to open preset")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
