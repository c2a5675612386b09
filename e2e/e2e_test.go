package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xinyuewang/hanabi/internal/app"
	"github.com/xinyuewang/hanabi/internal/detector"
	"github.com/xinyuewang/hanabi/internal/server"
	"github.com/xinyuewang/hanabi/internal/stage"
	"github.com/xinyuewang/hanabi/internal/store"
)

const dt = 1.0 / 60.0

// tickUntil advances the stage until cond holds, failing if it never does.
func tickUntil(t *testing.T, s *stage.Stage, cond func() bool) {
	t.Helper()

	for tick := 0; tick < 20000; tick++ {
		if cond() {
			return
		}
		s.Tick(dt)
	}
	t.Fatal("condition never reached")
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	config := app.DefaultConfig()
	config.Store = s
	config.Stage.Text = "OK"
	application := app.New(config)
	application.SetDetector(detector.NewMockDetector())

	srv := server.New(server.Config{Store: s, Stage: application.Stage()})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("Health", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health request error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("CreateFortune", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/fortunes",
			"application/json",
			strings.NewReader(`{"text": "The firework you wish on is already rising."}`),
		)
		if err != nil {
			t.Fatalf("create fortune error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	})

	t.Run("ListFortunes", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/fortunes")
		if err != nil {
			t.Fatalf("list fortunes error = %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			Fortunes []struct {
				ID   string `json:"id"`
				Text string `json:"text"`
			} `json:"fortunes"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		// Seeded defaults plus the one created above.
		if len(body.Fortunes) < 2 {
			t.Fatalf("fortunes = %d, want seeded pool plus the created one", len(body.Fortunes))
		}
	})

	st := application.Stage()

	t.Run("FistToOpenLaunchesFireworks", func(t *testing.T) {
		fist := detector.FistLandmarks()
		st.PushFrame(&fist)
		open := detector.OpenPalmLandmarks()
		st.PushFrame(&open)

		st.Tick(dt)

		snap := st.Snapshot()
		if !snap.FireworksRunning {
			t.Fatal("fireworks should be running after fist-to-open")
		}
		if len(snap.Particles) == 0 {
			t.Fatal("snapshot should carry particles")
		}
		if snap.GestureState != "open" {
			t.Errorf("gesture state = %q, want open", snap.GestureState)
		}
	})

	t.Run("ScrollRoundRevealsAfterIdle", func(t *testing.T) {
		tickUntil(t, st, func() bool { return len(st.Snapshot().Scrolls) > 0 })

		snap := st.Snapshot()
		if snap.FireworksRunning {
			t.Error("fireworks should be idle before the reveal")
		}
		if len(snap.Scrolls) != 3 {
			t.Fatalf("scrolls = %d, want 3", len(snap.Scrolls))
		}
		seen := map[string]bool{}
		for _, sc := range snap.Scrolls {
			if sc.State != "idle" {
				t.Errorf("scroll %d state = %q, want idle", sc.Index, sc.State)
			}
			if seen[sc.Payload] {
				t.Errorf("payload %q drawn twice", sc.Payload)
			}
			seen[sc.Payload] = true
		}
	})

	t.Run("FingerCountSelects", func(t *testing.T) {
		two := detector.FingerCountLandmarks(2)
		st.PushFrame(&two)
		st.Tick(dt)

		snap := st.Snapshot()
		if snap.SelectedIndex != 1 {
			t.Fatalf("selected index = %d, want 1 for two fingers", snap.SelectedIndex)
		}
		if snap.RoundState != "selecting" {
			t.Errorf("round state = %q, want selecting", snap.RoundState)
		}
	})

	t.Run("ConfirmDisplaysChosenScroll", func(t *testing.T) {
		st.QueueConfirm()
		st.Tick(dt)

		tickUntil(t, st, func() bool { return st.Snapshot().RoundState == "displayed" })

		snap := st.Snapshot()
		var displayed, hidden int
		for _, sc := range snap.Scrolls {
			switch sc.State {
			case "displayed":
				displayed++
				if sc.Index != 1 {
					t.Errorf("displayed scroll index = %d, want 1", sc.Index)
				}
				if sc.Unroll != 1 {
					t.Errorf("displayed scroll unroll = %f, want 1", sc.Unroll)
				}
			case "hidden":
				hidden++
			}
		}
		if displayed != 1 {
			t.Errorf("displayed scrolls = %d, want exactly 1", displayed)
		}
		if hidden != 2 {
			t.Errorf("hidden scrolls = %d, want 2", hidden)
		}
	})

	t.Run("RoundCleansUpAfterDisplay", func(t *testing.T) {
		tickUntil(t, st, func() bool { return len(st.Snapshot().Scrolls) == 0 })

		snap := st.Snapshot()
		if snap.RoundState != "idle" {
			t.Errorf("round state = %q, want idle after cleanup", snap.RoundState)
		}
		if snap.SelectedIndex != -1 {
			t.Errorf("selected index = %d, want -1 after cleanup", snap.SelectedIndex)
		}
	})
}

func TestE2E_TriggerDuringRoundRestarts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	config := app.DefaultConfig()
	config.Stage.Text = "OK"
	application := app.New(config)
	application.SetDetector(detector.NewMockDetector())

	st := application.Stage()

	fist := detector.FistLandmarks()
	open := detector.OpenPalmLandmarks()

	st.PushFrame(&fist)
	st.PushFrame(&open)
	st.Tick(dt)
	tickUntil(t, st, func() bool { return len(st.Snapshot().Scrolls) > 0 })

	// A second trigger would normally wait out the cooldown; the keyboard
	// path skips the gesture machine entirely.
	st.QueueTrigger()
	st.Tick(dt)

	snap := st.Snapshot()
	if len(snap.Scrolls) != 0 {
		t.Error("old round should be cleared by a new trigger")
	}
	if !snap.FireworksRunning {
		t.Error("new fireworks run should be active")
	}
}
