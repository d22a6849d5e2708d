package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lifecoach/internal/cloudsync"
	"lifecoach/internal/state"
	"lifecoach/internal/types"
)

func TestTaskAddAndList(t *testing.T) {
	logger = zap.NewNop()
	workspace = t.TempDir()
	taskGoal, taskDeadline, taskAll = "", "", false

	output := captureOutput(t, func() {
		if err := taskAdd(&cobra.Command{}, []string{"write", "the", "brief"}); err != nil {
			t.Fatalf("taskAdd returned error: %v", err)
		}
	})
	if !strings.Contains(output, "write the brief") {
		t.Fatalf("expected added task title, got: %s", output)
	}

	output = captureOutput(t, func() {
		if err := taskList(&cobra.Command{}, nil); err != nil {
			t.Fatalf("taskList returned error: %v", err)
		}
	})
	if !strings.Contains(output, "write the brief") {
		t.Fatalf("expected task in listing, got: %s", output)
	}
}

func TestTaskPersistsAcrossCommands(t *testing.T) {
	logger = zap.NewNop()
	workspace = t.TempDir()
	taskGoal, taskDeadline, taskAll = "", "", false

	captureOutput(t, func() {
		if err := taskAdd(&cobra.Command{}, []string{"call", "the", "bank"}); err != nil {
			t.Fatalf("taskAdd returned error: %v", err)
		}
	})

	// New command invocation, fresh App: the task must come back from disk.
	output := captureOutput(t, func() {
		if err := taskDone(&cobra.Command{}, []string{"call the bank"}); err != nil {
			t.Fatalf("taskDone returned error: %v", err)
		}
	})
	if !strings.Contains(output, "call the bank") {
		t.Fatalf("expected toggled task title, got: %s", output)
	}
}

func TestGoalAddRejectsBadColor(t *testing.T) {
	logger = zap.NewNop()
	workspace = t.TempDir()
	goalDeadline, goalColor, goalVision = "2026-12-31", "not-a-color", ""
	defer func() { goalColor = "" }()

	captureOutput(t, func() {
		if err := goalAdd(&cobra.Command{}, []string{"Run", "a", "marathon"}); err == nil {
			t.Fatal("expected error for invalid color")
		}
	})
}

func TestHabitCheckToggle(t *testing.T) {
	logger = zap.NewNop()
	workspace = t.TempDir()
	habitColor = ""

	// The default snapshot seeds a morning check-in habit.
	output := captureOutput(t, func() {
		if err := habitCheck(&cobra.Command{}, []string{"morning"}); err != nil {
			t.Fatalf("habitCheck returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Checked in") {
		t.Fatalf("expected check-in confirmation, got: %s", output)
	}

	output = captureOutput(t, func() {
		if err := habitCheck(&cobra.Command{}, []string{"morning"}); err != nil {
			t.Fatalf("habitCheck returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Removed") {
		t.Fatalf("expected check-in removal, got: %s", output)
	}
}

func TestSessionStartStop(t *testing.T) {
	logger = zap.NewNop()
	workspace = t.TempDir()
	sessionTask = ""

	output := captureOutput(t, func() {
		if err := sessionStart(&cobra.Command{}, []string{"deep", "work"}); err != nil {
			t.Fatalf("sessionStart returned error: %v", err)
		}
	})
	if !strings.Contains(output, "deep work") {
		t.Fatalf("expected session label, got: %s", output)
	}

	captureOutput(t, func() {
		if err := sessionStart(&cobra.Command{}, []string{"another"}); err == nil {
			t.Fatal("expected error for second concurrent session")
		}
	})

	output = captureOutput(t, func() {
		if err := sessionStop(&cobra.Command{}, nil); err != nil {
			t.Fatalf("sessionStop returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Stopped") {
		t.Fatalf("expected stop confirmation, got: %s", output)
	}
}

func TestSyncPushWithoutConfig(t *testing.T) {
	logger = zap.NewNop()
	workspace = t.TempDir()

	captureOutput(t, func() {
		if err := syncPush(&cobra.Command{}, nil); err == nil {
			t.Fatal("expected error when cloud backup is not configured")
		}
	})
}

func TestExportWritesFile(t *testing.T) {
	logger = zap.NewNop()
	workspace = t.TempDir()
	exportDir = t.TempDir()

	output := captureOutput(t, func() {
		if err := runExport(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runExport returned error: %v", err)
		}
	})
	if !strings.Contains(output, "coach-backup-") {
		t.Fatalf("expected export path, got: %s", output)
	}
}

func TestStartupRestoreOffersConfirmation(t *testing.T) {
	logger = zap.NewNop()
	workspace = t.TempDir()
	timeout = time.Minute

	remote := types.AppState{Tasks: []types.Task{{ID: "t1", Title: "from cloud"}}}
	raw, _ := json.Marshal(remote)
	rec, _ := json.Marshal(map[string]string{"id": "backup", "data": string(raw)})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v0/records/backup" {
			w.Write(rec)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := state.NewStore(types.AppState{Theme: "dark"})
	engine := cloudsync.NewEngine(store, cloudsync.NewClient(srv.URL, "token"))

	var out bytes.Buffer
	offerStartupRestore(context.Background(), engine, strings.NewReader("n\n"), &out)
	if !strings.Contains(out.String(), "Cloud backup found") {
		t.Fatalf("no offer shown: %s", out.String())
	}
	if len(store.Read().Tasks) != 0 {
		t.Error("declined restore still applied")
	}

	out.Reset()
	offerStartupRestore(context.Background(), engine, strings.NewReader("y\n"), &out)
	if got := store.Read().Tasks; len(got) != 1 || got[0].Title != "from cloud" {
		t.Errorf("accepted restore not applied: %+v", got)
	}
}

func TestStartupRestoreSilentWhenNoBackup(t *testing.T) {
	logger = zap.NewNop()
	workspace = t.TempDir()
	timeout = time.Minute

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := state.NewStore(types.AppState{})
	engine := cloudsync.NewEngine(store, cloudsync.NewClient(srv.URL, "token"))

	var out bytes.Buffer
	offerStartupRestore(context.Background(), engine, strings.NewReader(""), &out)
	if out.Len() != 0 {
		t.Errorf("expected silence with no backup, got: %s", out.String())
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
