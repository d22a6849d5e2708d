package cloudsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lifecoach/internal/state"
	"lifecoach/internal/types"
)

// kvServer is an in-memory key-value backend speaking the client's wire
// protocol.
type kvServer struct {
	mu      sync.Mutex
	records map[string]string
	puts    map[string]int
}

func newKVServer() (*kvServer, *httptest.Server) {
	kv := &kvServer{records: map[string]string{}, puts: map[string]int{}}
	srv := httptest.NewServer(kv)
	return kv, srv
}

func (kv *kvServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v0/records/")
	kv.mu.Lock()
	defer kv.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		var rec record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		kv.records[id] = rec.Data
		kv.puts[id]++
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	case http.MethodGet:
		data, ok := kv.records[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(record{ID: id, Data: data})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func syncSampleState() types.AppState {
	return types.AppState{
		Tasks: []types.Task{{ID: "t1", Title: "pack bags"}},
		Goals: []types.Goal{{ID: "g1", Title: "Ship MVP", Deadline: "2026-10-01"}},
		ChatSessions: []types.ChatSession{
			{ID: "A", Title: "old chat one"},
			{ID: "B", Title: "current chat", Messages: []types.ChatMessage{{ID: "m1", Role: types.RoleUser, Text: "hi"}}},
			{ID: "C", Title: "old chat two"},
		},
		Reports:       []types.DailyReport{{ID: "r1", Date: "2026-08-30", Title: "Yesterday"}},
		CurrentChatID: "B",
		CoachSettings: types.CoachSettings{Name: "Coach", EnableContext: true},
		StorageConfig: types.StorageConfig{Provider: "cloud"},
	}
}

func TestSplitMergeReconstructsAllChats(t *testing.T) {
	st := syncSampleState()
	core, archive := SplitChunks(st)

	if core.ActiveChat == nil || core.ActiveChat.ID != "B" {
		t.Fatalf("active chat not in core: %+v", core.ActiveChat)
	}
	if len(archive.ChatSessions) != 2 {
		t.Fatalf("archive chats = %d, want 2", len(archive.ChatSessions))
	}

	merged := MergeChunks(core, archive)
	ids := map[string]bool{}
	for _, cs := range merged.ChatSessions {
		if ids[cs.ID] {
			t.Errorf("duplicate chat %s after merge", cs.ID)
		}
		ids[cs.ID] = true
	}
	if !ids["A"] || !ids["B"] || !ids["C"] {
		t.Errorf("merge lost chats: %v", ids)
	}
	if merged.CurrentChatID != "B" {
		t.Errorf("current chat id = %q", merged.CurrentChatID)
	}
}

func TestMergeActiveChatWinsOverStaleArchiveCopy(t *testing.T) {
	st := syncSampleState()
	core, archive := SplitChunks(st)
	// Simulate an older archive that still holds a stale copy of chat B.
	archive.ChatSessions = append(archive.ChatSessions, types.ChatSession{ID: "B", Title: "stale"})

	merged := MergeChunks(core, archive)
	count := 0
	for _, cs := range merged.ChatSessions {
		if cs.ID == "B" {
			count++
			if cs.Title != "current chat" {
				t.Errorf("stale archive copy won: %q", cs.Title)
			}
		}
	}
	if count != 1 {
		t.Errorf("chat B appears %d times", count)
	}
}

func TestUploadSkipsUnchangedArchive(t *testing.T) {
	kv, srv := newKVServer()
	defer srv.Close()

	store := state.NewStore(syncSampleState())
	engine := NewEngine(store, NewClient(srv.URL, "token"))

	if err := engine.Upload(context.Background()); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if kv.puts[KeyCore] != 1 || kv.puts[KeyArchive] != 1 {
		t.Fatalf("first upload puts: core=%d archive=%d", kv.puts[KeyCore], kv.puts[KeyArchive])
	}

	// A core-only change: toggle a task. Chat/report shape is untouched.
	store.ToggleTask("t1", true)
	if err := engine.Upload(context.Background()); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if kv.puts[KeyCore] != 2 {
		t.Errorf("core puts = %d, want 2", kv.puts[KeyCore])
	}
	if kv.puts[KeyArchive] != 1 {
		t.Errorf("archive re-uploaded without shape change: %d puts", kv.puts[KeyArchive])
	}

	// A new report changes the shape; archive must go up again.
	store.AddReport("2026-08-31", "Today", "content", 0)
	if err := engine.Upload(context.Background()); err != nil {
		t.Fatalf("third upload: %v", err)
	}
	if kv.puts[KeyArchive] != 2 {
		t.Errorf("archive not re-uploaded after shape change: %d puts", kv.puts[KeyArchive])
	}
}

func TestDownloadHeldPendingUntilConfirm(t *testing.T) {
	_, srv := newKVServer()
	defer srv.Close()

	remote := syncSampleState()
	uploader := NewEngine(state.NewStore(remote), NewClient(srv.URL, "token"))
	if err := uploader.Upload(context.Background()); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	local := state.NewStore(types.AppState{Theme: "dark"})
	engine := NewEngine(local, NewClient(srv.URL, "token"))

	found, err := engine.Download(context.Background())
	if err != nil || !found {
		t.Fatalf("download: found=%v err=%v", found, err)
	}

	// Not applied yet.
	if got := local.Read().Theme; got != "dark" {
		t.Error("download auto-applied before confirmation")
	}
	if !engine.Status().PendingDownload {
		t.Error("status does not report pending download")
	}

	if err := engine.Confirm(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got := local.Read()
	want := remote
	if diff := cmp.Diff(want.Tasks, got.Tasks); diff != "" {
		t.Errorf("tasks after confirm (-want +got):\n%s", diff)
	}
	if len(got.ChatSessions) != 3 {
		t.Errorf("chats after confirm = %d, want 3", len(got.ChatSessions))
	}
}

func TestCancelDiscardsPending(t *testing.T) {
	_, srv := newKVServer()
	defer srv.Close()

	seed := NewEngine(state.NewStore(syncSampleState()), NewClient(srv.URL, "token"))
	seed.Upload(context.Background())

	local := state.NewStore(types.AppState{Theme: "dark"})
	engine := NewEngine(local, NewClient(srv.URL, "token"))
	engine.Download(context.Background())
	engine.Cancel()

	if engine.Status().PendingDownload {
		t.Error("pending survived cancel")
	}
	if err := engine.Confirm(); err == nil {
		t.Error("confirm after cancel should fail")
	}
	if got := local.Read().Theme; got != "dark" {
		t.Error("cancelled download mutated state")
	}
}

func TestDownloadNoBackupIsNormal(t *testing.T) {
	_, srv := newKVServer()
	defer srv.Close()

	engine := NewEngine(state.NewStore(types.AppState{}), NewClient(srv.URL, "token"))
	found, err := engine.Download(context.Background())
	if err != nil {
		t.Fatalf("absence must not be an error: %v", err)
	}
	if found {
		t.Error("found=true with empty backend")
	}
}

func TestDownloadLegacyMonolithicFallback(t *testing.T) {
	kv, srv := newKVServer()
	defer srv.Close()

	legacy := syncSampleState()
	raw, _ := json.Marshal(legacy)
	kv.records[KeyLegacy] = string(raw)

	engine := NewEngine(state.NewStore(types.AppState{}), NewClient(srv.URL, "token"))
	found, err := engine.Download(context.Background())
	if err != nil || !found {
		t.Fatalf("legacy download: found=%v err=%v", found, err)
	}
	pending := engine.Pending()
	if pending == nil || len(pending.ChatSessions) != 3 {
		t.Fatalf("legacy snapshot wrong: %+v", pending)
	}
}

func TestInFlightGuardRejectsConcurrentSync(t *testing.T) {
	_, srv := newKVServer()
	defer srv.Close()

	engine := NewEngine(state.NewStore(syncSampleState()), NewClient(srv.URL, "token"))
	if !engine.begin() {
		t.Fatal("begin failed on idle engine")
	}
	if err := engine.Upload(context.Background()); err == nil {
		t.Error("second sync accepted while one is in flight")
	}
	engine.end()
	if err := engine.Upload(context.Background()); err != nil {
		t.Errorf("upload after release: %v", err)
	}
}

func TestClientGet404(t *testing.T) {
	_, srv := newKVServer()
	defer srv.Close()

	client := NewClient(srv.URL, "token")
	_, found, err := client.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("404 should not be an error: %v", err)
	}
	if found {
		t.Error("found=true for missing record")
	}
}
