// Command webhook-probe posts canned platform payloads at a running bridge
// instance and prints the native replies. Useful for eyeballing adapter and
// formatter behavior without registering real platform webhooks.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type options struct {
	baseURL   string
	platform  string
	utterance string
	timeout   time.Duration
}

func main() {
	opts := parseFlags()

	payloads, err := buildPayloads(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: opts.timeout}
	for _, p := range payloads {
		if err := post(client, opts.baseURL+p.path, p.body); err != nil {
			fmt.Fprintf(os.Stderr, "probe %s: %v\n", p.path, err)
			os.Exit(1)
		}
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "bridge base URL")
	flag.StringVar(&opts.platform, "platform", "all", "platform to probe: alice|telegram|assistant|dialogflow|all")
	flag.StringVar(&opts.utterance, "text", "leo", "utterance to send")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	flag.Parse()
	return opts
}

type probePayload struct {
	path string
	body []byte
}

func buildPayloads(opts options) ([]probePayload, error) {
	var out []probePayload

	want := func(name string) bool {
		return opts.platform == "all" || opts.platform == name
	}

	if want("alice") {
		body, _ := json.Marshal(map[string]any{
			"version": "1.0",
			"meta":    map[string]any{"locale": "ru-RU", "timezone": "Europe/Moscow"},
			"session": map[string]any{
				"new":        false,
				"message_id": 1,
				"session_id": "probe-session",
				"user":       map[string]any{"user_id": "probe-user"},
			},
			"request": map[string]any{
				"command":            opts.utterance,
				"original_utterance": opts.utterance,
				"type":               "SimpleUtterance",
			},
		})
		out = append(out, probePayload{path: "/webhooks/alice", body: body})
	}

	if want("telegram") {
		body, _ := json.Marshal(map[string]any{
			"update_id": 7001,
			"message": map[string]any{
				"message_id": 42,
				"from":       map[string]any{"id": 100500, "language_code": "en"},
				"chat":       map[string]any{"id": 100500, "type": "private"},
				"text":       opts.utterance,
			},
		})
		out = append(out, probePayload{path: "/webhooks/telegram", body: body})
	}

	if want("assistant") {
		body, _ := json.Marshal(map[string]any{
			"user":         map[string]any{"userId": "probe-user", "locale": "en-US"},
			"conversation": map[string]any{"conversationId": "probe-conv", "type": "ACTIVE"},
			"inputs": []map[string]any{{
				"intent":    "actions.intent.TEXT",
				"rawInputs": []map[string]any{{"inputType": "VOICE", "query": opts.utterance}},
			}},
		})
		out = append(out, probePayload{path: "/webhooks/assistant", body: body})
	}

	if want("dialogflow") {
		body, _ := json.Marshal(map[string]any{
			"responseId": "probe-response",
			"session":    "projects/probe/agent/sessions/probe",
			"queryResult": map[string]any{
				"queryText":    opts.utterance,
				"languageCode": "en",
				"intent":       map[string]any{"displayName": "horoscope"},
			},
		})
		out = append(out, probePayload{path: "/webhooks/assistant", body: body})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("unknown platform %q", opts.platform)
	}
	return out, nil
}

func post(client *http.Client, url string, body []byte) error {
	res, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	reply, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	fmt.Printf("POST %s -> %d\n%s\n\n", url, res.StatusCode, strings.TrimSpace(string(reply)))
	return nil
}
