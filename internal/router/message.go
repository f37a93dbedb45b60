package router

import (
	"jobgo-agent/internal/detect"
)

// Message types accepted from UI surfaces.
const (
	TypeScanNow    = "SCAN_NOW"
	TypeClearBadge = "CLEAR_BADGE"
	TypeAddToJobGo = "ADD_TO_JOBGO"
)

type Message struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	Platform string `json:"platform,omitempty"`
	Slug     string `json:"slug,omitempty"`
}

type Response struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func Success(data any) Response { return Response{OK: true, Data: data} }

func Failure(err error) Response {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Response{OK: false, Error: msg}
}

// TrackMessage is the ADD_TO_JOBGO request for a detected career page.
func TrackMessage(d detect.Detection) Message {
	return Message{Type: TypeAddToJobGo, Name: d.Name, Platform: d.Platform, Slug: d.Slug}
}

// ExpectsResponse reports whether the sender should wait for a reply.
func ExpectsResponse(typ string) bool {
	return typ != TypeClearBadge
}
