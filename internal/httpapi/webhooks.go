package httpapi

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/astrelay/astrelay/internal/dispatch"
	"github.com/astrelay/astrelay/internal/universal"
)

// handleAliceWebhook serves the voice-assistant skill endpoint. The platform
// contract requires a fully well-formed response object even on error, so
// every failure path still produces a valid skill reply with the apology
// text and an open session.
func (s *Server) handleAliceWebhook(w http.ResponseWriter, r *http.Request) {
	adapter := s.adapters[universal.PlatformAlice]

	raw, err := readBody(w, r)
	if err != nil {
		s.respondAliceApology(w, "read_body", err)
		return
	}

	stageStart := time.Now()
	if !adapter.Validate(raw) {
		s.metrics.ObserveStage("validate", time.Since(stageStart))
		s.metrics.WebhookRequests.WithLabelValues(string(universal.PlatformAlice), "invalid").Inc()
		s.respondAliceApology(w, "validate", nil)
		return
	}
	s.metrics.ObserveStage("validate", time.Since(stageStart))

	stageStart = time.Now()
	req, err := adapter.ToUniversal(raw)
	s.metrics.ObserveStage("to_universal", time.Since(stageStart))
	if err != nil {
		s.metrics.ConversionErrors.WithLabelValues(string(universal.PlatformAlice), "inbound").Inc()
		s.respondAliceApology(w, "to_universal", err)
		return
	}

	stageStart = time.Now()
	resp := s.dispatcher.Handle(r.Context(), req)
	s.metrics.ObserveStage("dispatch", time.Since(stageStart))

	stageStart = time.Now()
	native, err := adapter.FromUniversal(resp)
	s.metrics.ObserveStage("from_universal", time.Since(stageStart))
	if err != nil {
		s.metrics.ConversionErrors.WithLabelValues(string(universal.PlatformAlice), "outbound").Inc()
		s.respondAliceApology(w, "from_universal", err)
		return
	}

	s.metrics.WebhookRequests.WithLabelValues(string(universal.PlatformAlice), "ok").Inc()
	s.tap.Broadcast(tapEvent{Platform: universal.PlatformAlice, Text: req.Text, Reply: resp.Text})
	respondJSON(w, http.StatusOK, native)
}

func (s *Server) respondAliceApology(w http.ResponseWriter, stage string, err error) {
	if err != nil {
		log.Printf("alice webhook %s failed: %v", stage, err)
	} else {
		log.Printf("alice webhook rejected at %s", stage)
	}
	adapter := s.adapters[universal.PlatformAlice]
	native, convErr := adapter.FromUniversal(&universal.Response{
		Text:       dispatch.ApologyText,
		EndSession: false,
		Routing:    universal.AliceContext{},
	})
	if convErr != nil {
		// Cannot happen with a fresh routing context; keep the contract anyway.
		respondError(w, http.StatusInternalServerError, "internal", convErr.Error())
		return
	}
	s.metrics.WebhookRequests.WithLabelValues(string(universal.PlatformAlice), "error").Inc()
	respondJSON(w, http.StatusOK, native)
}

// handleTelegramWebhook serves the bot-messaging endpoint. The platform
// contract only requires an acknowledgement: internal failures are logged
// out-of-band while the webhook still acknowledges receipt, otherwise the
// platform keeps redelivering the update.
func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	adapter := s.adapters[universal.PlatformTelegram]

	raw, err := readBody(w, r)
	if err != nil {
		s.acknowledgeTelegram(w, "read_body", err)
		return
	}

	stageStart := time.Now()
	valid := adapter.Validate(raw)
	s.metrics.ObserveStage("validate", time.Since(stageStart))
	if !valid {
		s.metrics.WebhookRequests.WithLabelValues(string(universal.PlatformTelegram), "invalid").Inc()
		s.acknowledgeTelegram(w, "validate", nil)
		return
	}

	stageStart = time.Now()
	req, err := adapter.ToUniversal(raw)
	s.metrics.ObserveStage("to_universal", time.Since(stageStart))
	if err != nil {
		s.metrics.ConversionErrors.WithLabelValues(string(universal.PlatformTelegram), "inbound").Inc()
		s.acknowledgeTelegram(w, "to_universal", err)
		return
	}

	stageStart = time.Now()
	resp := s.dispatcher.Handle(r.Context(), req)
	s.metrics.ObserveStage("dispatch", time.Since(stageStart))

	stageStart = time.Now()
	native, err := adapter.FromUniversal(resp)
	s.metrics.ObserveStage("from_universal", time.Since(stageStart))
	if err != nil {
		s.metrics.ConversionErrors.WithLabelValues(string(universal.PlatformTelegram), "outbound").Inc()
		s.acknowledgeTelegram(w, "from_universal", err)
		return
	}

	s.metrics.WebhookRequests.WithLabelValues(string(universal.PlatformTelegram), "ok").Inc()
	s.tap.Broadcast(tapEvent{Platform: universal.PlatformTelegram, Text: req.Text, Reply: resp.Text})
	respondJSON(w, http.StatusOK, native)
}

func (s *Server) acknowledgeTelegram(w http.ResponseWriter, stage string, err error) {
	if err != nil {
		log.Printf("telegram webhook %s failed: %v", stage, err)
	} else {
		log.Printf("telegram webhook rejected at %s", stage)
	}
	s.metrics.WebhookRequests.WithLabelValues(string(universal.PlatformTelegram), "error").Inc()
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleAssistantWebhook serves both assistant sub-protocols under one
// endpoint. Unlike the other two platforms its contract tolerates plain HTTP
// errors: invalid payloads get 400, internal conversion faults get 500.
func (s *Server) handleAssistantWebhook(w http.ResponseWriter, r *http.Request) {
	adapter := s.adapters[universal.PlatformAssistant]

	raw, err := readBody(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	stageStart := time.Now()
	valid := adapter.Validate(raw)
	s.metrics.ObserveStage("validate", time.Since(stageStart))
	if !valid {
		s.metrics.WebhookRequests.WithLabelValues(string(universal.PlatformAssistant), "invalid").Inc()
		respondError(w, http.StatusBadRequest, "invalid_payload", "payload matches neither assistant sub-protocol")
		return
	}

	stageStart = time.Now()
	req, err := adapter.ToUniversal(raw)
	s.metrics.ObserveStage("to_universal", time.Since(stageStart))
	if err != nil {
		s.metrics.ConversionErrors.WithLabelValues(string(universal.PlatformAssistant), "inbound").Inc()
		respondError(w, http.StatusBadRequest, "conversion_failed", err.Error())
		return
	}

	stageStart = time.Now()
	resp := s.dispatcher.Handle(r.Context(), req)
	s.metrics.ObserveStage("dispatch", time.Since(stageStart))

	stageStart = time.Now()
	native, err := adapter.FromUniversal(resp)
	s.metrics.ObserveStage("from_universal", time.Since(stageStart))
	if err != nil {
		s.metrics.ConversionErrors.WithLabelValues(string(universal.PlatformAssistant), "outbound").Inc()
		log.Printf("assistant webhook from_universal failed: %v", err)
		respondError(w, http.StatusInternalServerError, "serialization_failed", "could not serialize native reply")
		return
	}

	s.metrics.WebhookRequests.WithLabelValues(string(universal.PlatformAssistant), "ok").Inc()
	s.tap.Broadcast(tapEvent{Platform: universal.PlatformAssistant, Text: req.Text, Reply: resp.Text})
	respondJSON(w, http.StatusOK, native)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}
