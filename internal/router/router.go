// Package router is the single entry point for requests from UI surfaces.
// Each message type maps to exactly one handler, and each handler states up
// front whether it answers now, later, or never.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"jobgo-agent/internal/api"
	"jobgo-agent/internal/events"
)

type Scanner interface {
	ScanNow(ctx context.Context) (api.ScanResult, error)
}

type BadgeClearer interface {
	ClearBadge()
}

type CompanyAdder interface {
	AddCompany(ctx context.Context, name, platform, slug string) (api.Company, error)
}

type Deps struct {
	Scanner   Scanner
	Badge     BadgeClearer
	Companies CompanyAdder
	Hub       *events.Hub
	Log       *slog.Logger
}

type Router struct {
	scanner   Scanner
	badge     BadgeClearer
	companies CompanyAdder
	hub       *events.Hub
	log       *slog.Logger
}

func New(d Deps) *Router {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		scanner:   d.Scanner,
		badge:     d.Badge,
		companies: d.Companies,
		hub:       d.Hub,
		log:       log.With("component", "router"),
	}
}

// Dispatch routes msg to its handler. Deferred work is detached from ctx's
// cancellation: once started, a scan or add runs to completion.
func (r *Router) Dispatch(ctx context.Context, msg Message) Outcome {
	r.log.Debug("message", "type", msg.Type)

	switch msg.Type {
	case TypeScanNow:
		return Deferred{Future: Go(func() Response {
			return r.scanNow(context.WithoutCancel(ctx))
		})}

	case TypeClearBadge:
		r.badge.ClearBadge()
		return FireAndForget{}

	case TypeAddToJobGo:
		name := strings.TrimSpace(msg.Name)
		platform := strings.TrimSpace(msg.Platform)
		slug := strings.TrimSpace(msg.Slug)
		if name == "" || platform == "" || slug == "" {
			return Immediate{Response: Failure(errors.New("name, platform and slug are required"))}
		}
		return Deferred{Future: Go(func() Response {
			return r.addToJobGo(context.WithoutCancel(ctx), name, platform, slug)
		})}

	default:
		r.log.Warn("unknown message type", "type", msg.Type)
		return Immediate{Response: Failure(fmt.Errorf("unknown message type: %s", msg.Type))}
	}
}

// Handle adapts Dispatch to a callback transport. respond is called exactly
// once for messages that expect a response and never for fire-and-forget
// ones. The return value is true when respond will be called later, from
// another goroutine.
func (r *Router) Handle(ctx context.Context, msg Message, respond func(Response)) bool {
	switch o := r.Dispatch(ctx, msg).(type) {
	case Immediate:
		respond(o.Response)
		return false
	case Deferred:
		go func() {
			resp, _ := o.Future.Wait(context.Background())
			respond(resp)
		}()
		return true
	default:
		return false
	}
}

func (r *Router) scanNow(ctx context.Context) Response {
	res, err := r.scanner.ScanNow(ctx)
	if err != nil {
		r.log.Warn("scan request failed", "err", err)
		return Failure(err)
	}
	r.hub.Emit(events.TypeScanCompleted, res)
	return Success(res)
}

func (r *Router) addToJobGo(ctx context.Context, name, platform, slug string) Response {
	c, err := r.companies.AddCompany(ctx, name, platform, slug)
	if err != nil {
		r.log.Warn("track company failed", "platform", platform, "slug", slug, "err", err)
		return Failure(err)
	}
	r.log.Info("company tracked", "id", c.ID, "platform", platform, "slug", slug)
	r.hub.Emit(events.TypeCompanyTracked, c)
	return Success(c)
}

// Send dispatches msg and waits for its response. Fire-and-forget messages
// return an OK response straight away.
func (r *Router) Send(ctx context.Context, msg Message) (Response, error) {
	switch o := r.Dispatch(ctx, msg).(type) {
	case Immediate:
		return o.Response, nil
	case Deferred:
		return o.Future.Wait(ctx)
	default:
		return Response{OK: true}, nil
	}
}
