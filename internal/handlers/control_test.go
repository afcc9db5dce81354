package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pondwatch"
	"pondwatch/internal/service"
)

func TestControlHandlers_GetAndPatch(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	ctl := &mockControl{state: pondwatch.ControlState{
		Mode:      true,
		Heater:    true,
		UpdatedAt: time.Now().UTC(),
	}}
	s := &service.Service{
		Authorization: auth,
		Control:       ctl,
	}
	r := newTestRouter(s)

	// GET control
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/control", nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d, body=%s", w.Code, w.Body.String())
	}
	var st pondwatch.ControlState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if !st.Mode || !st.Heater {
		t.Fatalf("unexpected state: %+v", st)
	}

	// PATCH forwards only the provided toggles
	body := bytes.NewBufferString(`{"pump":true,"heater":false}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/control", body)
	req.Header.Set("Content-Type", "application/json")
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status=%d, body=%s", w.Code, w.Body.String())
	}
	if ctl.lastUpd.Pump == nil || !*ctl.lastUpd.Pump {
		t.Fatalf("pump toggle not forwarded: %+v", ctl.lastUpd)
	}
	if ctl.lastUpd.Heater == nil || *ctl.lastUpd.Heater {
		t.Fatalf("heater toggle not forwarded: %+v", ctl.lastUpd)
	}
	if ctl.lastUpd.Mode != nil || ctl.lastUpd.Cutoff != nil || ctl.lastUpd.Peltier != nil {
		t.Fatalf("omitted toggles should stay nil: %+v", ctl.lastUpd)
	}
}

func TestControlHandlers_PatchErrors(t *testing.T) {
	auth := &mockAuth{parseID: 7}

	// Validation failure: service returns a zero state with an error.
	ctl := &mockControl{applyErr: errors.New("control update: no fields set")}
	s := &service.Service{Authorization: auth, Control: ctl}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/control", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d (body=%s)", w.Code, w.Body.String())
	}

	// Write failure: service returns the prior state with an error.
	ctl = &mockControl{
		state:    pondwatch.ControlState{Mode: true, UpdatedAt: time.Now().UTC()},
		applyErr: errors.New("save control state: disk full"),
	}
	s = &service.Service{Authorization: auth, Control: ctl}
	r = newTestRouter(s)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/control", bytes.NewBufferString(`{"pump":true}`))
	req.Header.Set("Content-Type", "application/json")
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for write failure, got %d (body=%s)", w.Code, w.Body.String())
	}
}
