package main

import (
	"context"
	"os"

	"jobgo-agent/internal/httpapi"
	"jobgo-agent/internal/nativemsg"
	"jobgo-agent/internal/router"
)

// relay forwards native messages to an agent that is already running, so a
// second browser connection does not need its own poll alarm.
type relay struct {
	client *httpapi.Client
}

func (r relay) Handle(ctx context.Context, msg router.Message, respond func(router.Response)) bool {
	if !router.ExpectsResponse(msg.Type) {
		go func() { _, _ = r.client.Send(context.WithoutCancel(ctx), msg) }()
		return false
	}
	go func() {
		resp, err := r.client.Send(context.WithoutCancel(ctx), msg)
		if err != nil {
			resp = router.Failure(err)
		}
		respond(resp)
	}()
	return true
}

func relayStdio(ctx context.Context, a *app) error {
	h := relay{client: httpapi.NewClient(a.cfg.App.ListenAddr)}
	return nativemsg.NewHost(h, a.log).Serve(ctx, os.Stdin, os.Stdout)
}
