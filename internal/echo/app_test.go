package echo

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/deutron/deutron/deutron"
	"github.com/deutron/deutron/internal/config"
	"github.com/deutron/deutron/internal/logging"
)

func run(t *testing.T, input string, logs *bytes.Buffer) (*App, string) {
	t.Helper()
	var out bytes.Buffer
	logger := logging.NewNop()
	if logs != nil {
		logger = slog.New(slog.NewTextHandler(logs, nil))
	}
	client := deutron.New(deutron.Options{In: strings.NewReader(input), Out: &out, Logger: logger})
	app := New(client, config.EchoConfig{Prefix: "Processed message: "}, logger)
	app.Register()

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return app, out.String()
}

func TestApp_RepliesToSender(t *testing.T) {
	_, out := run(t, `{"Message":{"from":3,"data":"hello"}}`+"\n", nil)

	if !strings.HasPrefix(out, deutron.Marker) {
		t.Fatalf("expected a reply, got %q", out)
	}
	var got map[string]map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out[len(deutron.Marker):])), &got); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if got["Message"]["target"] != float64(3) || got["Message"]["data"] != "Processed message: hello" {
		t.Errorf("got %v", got)
	}
}

func TestApp_IgnoresMessagesWithoutSender(t *testing.T) {
	_, out := run(t, `{"Message":"broadcast"}`+"\n"+`not json`+"\n"+`{"Other":1}`+"\n", nil)
	if out != "" {
		t.Errorf("expected no replies, got %q", out)
	}
}

func TestApp_TracksWindows(t *testing.T) {
	var logs bytes.Buffer
	input := strings.Join([]string{
		`{"Ready":"/app"}`,
		`{"Info":{"Created":1}}`,
		`{"Info":{"Created":2}}`,
		`{"Info":{"Loaded":1}}`,
		`{"Info":{"Closed":1}}`,
		`{"Info":{"Closed":2}}`,
		`{"Info":{"Error":"bad window"}}`,
	}, "\n") + "\n"
	app, _ := run(t, input, &logs)

	if app.OpenWindows() != 0 {
		t.Errorf("expected no open windows, got %d", app.OpenWindows())
	}
	text := logs.String()
	for _, want := range []string{"dir=/app", "last window closed", "event_type=host_error", "bad window"} {
		if !strings.Contains(text, want) {
			t.Errorf("logs missing %q", want)
		}
	}
	if strings.Count(text, "last window closed") != 1 {
		t.Errorf("last window should be reported once")
	}
}

func TestApp_Unregister(t *testing.T) {
	var out bytes.Buffer
	client := deutron.New(deutron.Options{
		In:     strings.NewReader(`{"Message":{"from":1,"data":"x"}}` + "\n"),
		Out:    &out,
		Logger: logging.NewNop(),
	})
	app := New(client, config.EchoConfig{Prefix: "> "}, logging.NewNop())
	app.Register()
	app.Unregister()

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("unregistered app replied: %q", out.String())
	}
}
