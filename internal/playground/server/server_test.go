package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	mdwlog "github.com/msto63/calcscript/foundation/core/log"
	"github.com/msto63/calcscript/internal/playground/handler"
	"github.com/msto63/calcscript/internal/runner/service"
	"github.com/msto63/calcscript/pkg/core/logging"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logging.Wrap(mdwlog.Discard(), "playground-test")

	svcCfg := service.DefaultConfig()
	svcCfg.Logger = logger
	runner := service.NewService(svcCfg, nil)

	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.Logger = logger
	srv := New(cfg, runner)

	if err := srv.StartAsync(); err != nil {
		t.Fatalf("StartAsync() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Stop(ctx)
	})
	return srv
}

func TestServer_RunCode(t *testing.T) {
	srv := startTestServer(t)

	resp, err := http.PostForm("http://"+srv.Address()+"/run_code", url.Values{"code": {"x = 5\nprint(x * x)"}})
	if err != nil {
		t.Fatalf("POST /run_code error = %v", err)
	}
	defer resp.Body.Close()

	var got handler.RunCodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !got.Success || got.Output != "25\n" || got.Message != handler.MessageSuccess {
		t.Errorf("response = %+v", got)
	}
}

func TestServer_Health(t *testing.T) {
	srv := startTestServer(t)

	resp, err := http.Get("http://" + srv.Address() + "/api/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	report := srv.HealthRegistry().CheckWithTimeout(time.Second)
	if len(report.Checks) != 1 || report.Checks[0].Name != "engine" {
		t.Errorf("checks = %+v", report.Checks)
	}
}

func TestServer_WebSocket(t *testing.T) {
	srv := startTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Address()+"/api/v1/run/ws", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	exchange := func(msg string) (string, map[string]interface{}) {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("write: %v", err)
		}
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var resp struct {
			Type    string                 `json:"type"`
			Payload map[string]interface{} `json:"payload"`
		}
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read: %v", err)
		}
		return resp.Type, resp.Payload
	}

	if typ, _ := exchange(`{"type":"ping"}`); typ != "pong" {
		t.Errorf("ping reply type = %q", typ)
	}

	typ, payload := exchange(`{"type":"run","payload":{"code":"a = 2\nb = a * 3\nprint(b - 1)"}}`)
	if typ != "result" || payload["output"] != "5\n" {
		t.Errorf("run reply = %s %v", typ, payload)
	}

	// no state carries over from the previous run
	typ, payload = exchange(`{"type":"run","payload":{"code":"print(a)"}}`)
	if typ != "error" || payload["code"] != "NAME" {
		t.Errorf("fault reply = %s %v", typ, payload)
	}
	if msg, _ := payload["message"].(string); !strings.Contains(msg, "variable 'a' is not defined") {
		t.Errorf("fault message = %q", msg)
	}

	if typ, payload = exchange(`{"type":"compile"}`); typ != "error" || payload["code"] != "unknown_type" {
		t.Errorf("unknown type reply = %s %v", typ, payload)
	}
}
