package service

import (
	"pondwatch"
	"pondwatch/internal/realtime"
)

// DesktopNotice is the frame pushed to clients that render native
// notifications on the operator's machine.
type DesktopNotice struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// HubDesktopSink delivers desktop notifications through the live hub;
// a connected client forwards them to the OS. The permitted flag models
// the browser permission gate: when false every Notify reports
// ErrPermissionDenied, which callers treat as a silent suppress.
type HubDesktopSink struct {
	hub       *realtime.Hub
	permitted bool
}

func NewHubDesktopSink(hub *realtime.Hub, permitted bool) *HubDesktopSink {
	return &HubDesktopSink{hub: hub, permitted: permitted}
}

var _ DesktopSink = (*HubDesktopSink)(nil)

func (s *HubDesktopSink) Notify(title, body string) error {
	if !s.permitted {
		return pondwatch.ErrPermissionDenied
	}
	s.hub.Publish(realtime.TopicDesktop, DesktopNotice{Title: title, Body: body})
	return nil
}
