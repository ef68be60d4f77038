package panel

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"reloadpanel/pkg/client"
	"reloadpanel/pkg/core"
)

func TestRestartService_PlainTextOK(t *testing.T) {
	h := newHarness(t)

	if err := h.panel.RestartService(context.Background()); err != nil {
		t.Fatalf("RestartService() = %v; want nil", err)
	}
	h.expectNotice(t, core.SeveritySuccess, "Service restarted")
	if snap := h.panel.Store().Snapshot(); snap.Status == nil || !snap.Status.Running {
		t.Errorf("Status = %+v", snap.Status)
	}
}

func TestServiceAction_FollowUpFailureKeepsSuccessNotice(t *testing.T) {
	h := newHarness(t)
	h.failAction(client.ActionStatus, http.StatusServiceUnavailable)

	if err := h.panel.RestartService(context.Background()); err != nil {
		t.Fatalf("RestartService() = %v; want nil", err)
	}
	h.expectNotice(t, core.SeveritySuccess, "Service restarted")
	if snap := h.panel.Store().Snapshot(); !snap.URLsLoaded {
		t.Error("URL list not reloaded after restart")
	}

	// An explicit refresh still reports the failure.
	if err := h.panel.RefreshStatus(context.Background()); err == nil {
		t.Fatal("RefreshStatus() = nil; want error")
	}
	h.expectNotice(t, core.SeverityDanger, "Failed to load")
}

func TestStopThenStartService(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.panel.StopService(ctx); err != nil {
		t.Fatal(err)
	}
	if snap := h.panel.Store().Snapshot(); snap.Status == nil || snap.Status.Running {
		t.Errorf("after stop Status = %+v", snap.Status)
	}
	if err := h.panel.StartService(ctx); err != nil {
		t.Fatal(err)
	}
	if !h.registry.Running() {
		t.Error("service not running after start")
	}
}

func TestServiceAction_FailureNamesManualCommand(t *testing.T) {
	for _, action := range []string{client.ActionStart, client.ActionStop, client.ActionRestart} {
		h := newHarness(t)
		h.failAction(action, http.StatusInternalServerError)

		var err error
		switch action {
		case client.ActionStart:
			err = h.panel.StartService(context.Background())
		case client.ActionStop:
			err = h.panel.StopService(context.Background())
		default:
			err = h.panel.RestartService(context.Background())
		}
		var httpErr *client.HTTPStatusError
		if !errors.As(err, &httpErr) {
			t.Errorf("%s: err = %v; want HTTPStatusError", action, err)
		}
		h.expectNotice(t, core.SeverityDanger, "Use manual command: page-reloader "+action)
	}
}

func TestAutostart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.panel.EnableAutostart(ctx); err != nil {
		t.Fatal(err)
	}
	h.expectNotice(t, core.SeveritySuccess, "Auto-start enabled")
	if err := h.panel.DisableAutostart(ctx); err != nil {
		t.Fatal(err)
	}
	h.expectNotice(t, core.SeveritySuccess, "Auto-start disabled")
}

func TestUninstall_RequiresTwoConfirmations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	uninstalled := 0
	h.panel.SetOnUninstalled(func() { uninstalled++ })
	h.panel.Start(ctx)

	h.confirm.reply(true, false)
	if err := h.panel.Uninstall(ctx); !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v; want ErrCancelled", err)
	}
	if h.calls.count(client.ActionUninstall) != 0 || h.registry.Uninstalled() {
		t.Fatal("uninstall sent after one confirmation")
	}

	h.confirm.reply(true, true)
	if err := h.panel.Uninstall(ctx); err != nil {
		t.Fatal(err)
	}
	if !h.registry.Uninstalled() || uninstalled != 1 {
		t.Errorf("uninstalled = %t, hook calls = %d", h.registry.Uninstalled(), uninstalled)
	}
	if h.panel.Scheduler().Running() {
		t.Error("scheduler still running after uninstall")
	}
	h.expectNotice(t, core.SeveritySuccess, "uninstalled")
}

func TestUninstall_WithoutConfirmerDoesNothing(t *testing.T) {
	h := newHarness(t)
	h.panel.SetConfirmer(nil)

	if err := h.panel.Uninstall(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v; want ErrCancelled", err)
	}
	if h.calls.total() != 0 {
		t.Error("calls made without confirmation")
	}
}
