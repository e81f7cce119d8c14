package main

import (
	"context"
	"flag"
	"io"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"webscan/pkg/config"
	"webscan/pkg/probe"
	"webscan/pkg/scanner"
	"webscan/pkg/store"
)

func parse(t *testing.T, args ...string) (*flag.FlagSet, options) {
	t.Helper()
	opts := options{}
	fs := newFlagSet(&opts)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return fs, opts
}

func TestBuildConfigDefaults(t *testing.T) {
	fs, opts := parse(t)
	cfg, err := buildConfig(fs, opts)
	if err != nil {
		t.Fatalf("buildConfig() error: %v", err)
	}
	if cfg.Proxy != "socks5h://127.0.0.1:1080" || cfg.Concurrency != 50 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestBuildConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webscan.yaml")
	if err := os.WriteFile(path, []byte("ranges: [10.0.0.0/24]\nconcurrency: 10\nproxy: socks5://10.0.0.1:1080\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	fs, opts := parse(t, "-config", path, "-ports", "80,8000-8001", "-c", "3", "-verify-tls")
	cfg, err := buildConfig(fs, opts)
	if err != nil {
		t.Fatalf("buildConfig() error: %v", err)
	}

	if !reflect.DeepEqual(cfg.Ranges, []string{"10.0.0.0/24"}) {
		t.Errorf("Ranges = %v, want value from file", cfg.Ranges)
	}
	if cfg.Proxy != "socks5://10.0.0.1:1080" {
		t.Errorf("Proxy = %q, want value from file", cfg.Proxy)
	}
	if !reflect.DeepEqual(cfg.Ports, []int{80, 8000, 8001}) {
		t.Errorf("Ports = %v", cfg.Ports)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want flag value 3", cfg.Concurrency)
	}
	if !cfg.VerifyTLS {
		t.Error("VerifyTLS flag not applied")
	}
}

func TestBuildConfigBadPorts(t *testing.T) {
	fs, opts := parse(t, "-ports", "http")
	if _, err := buildConfig(fs, opts); err == nil {
		t.Error("expected error for bad port list")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" 10.0.0.0/24, ,192.168.1.0/30,")
	want := []string{"10.0.0.0/24", "192.168.1.0/30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitList() = %v, want %v", got, want)
	}
}

func TestRunInvalidRange(t *testing.T) {
	if code := run([]string{"-ranges", "10.0.0.0/33", "-o", ""}); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
}

func TestRunUnreachableProxy(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	closed := ln.Addr().String()
	ln.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "results.txt")
	db := filepath.Join(dir, "webscan.db")

	code := run([]string{
		"-ranges", "10.0.0.0/30",
		"-ports", "80",
		"-proxy", "socks5h://" + closed,
		"-timeout", "2s",
		"-o", out,
		"-db", db,
	})
	if code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("results file not written: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("results file = %q, want empty", data)
	}

	if code := run([]string{"-db", db, "-history", "5"}); code != 0 {
		t.Errorf("history run() = %d, want 0", code)
	}
	if code := run([]string{"-db", db, "-show", "1"}); code != 0 {
		t.Errorf("show run() = %d, want 0", code)
	}
}

func TestHistoryNeedsDatabase(t *testing.T) {
	if code := run([]string{"-history", "3"}); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
}

func TestInterruptedScanKeepsPreviousResults(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "results.txt")
	previous := "10.0.0.1:80 - Status: 200, Title: Router\n"
	if err := os.WriteFile(out, []byte(previous), 0644); err != nil {
		t.Fatalf("failed to write results: %v", err)
	}

	history, err := store.Open(filepath.Join(dir, "webscan.db"))
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	defer history.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	closed := ln.Addr().String()
	ln.Close()

	cfg := config.Default()
	cfg.Proxy = "socks5h://" + closed
	cfg.Output = out

	exec, err := probe.NewExecutor(cfg)
	if err != nil {
		t.Fatalf("NewExecutor() error: %v", err)
	}
	units, err := scanner.Targets([]string{"10.0.0.0/30"}, []int{80, 443})
	if err != nil {
		t.Fatalf("Targets() error: %v", err)
	}

	job := &scanJob{
		cfg:     cfg,
		units:   units,
		scanner: scanner.New(exec, 2, zap.NewNop()),
		history: history,
		logger:  zap.NewNop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read results: %v", err)
	}
	if string(data) != previous {
		t.Errorf("results file = %q, want previous scan kept", data)
	}

	scans, err := history.Scans(context.Background(), 10)
	if err != nil {
		t.Fatalf("Scans() error: %v", err)
	}
	if len(scans) != 0 {
		t.Errorf("interrupted scan was recorded: %+v", scans)
	}
}
