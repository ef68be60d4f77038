package panel

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"reloadpanel/pkg/client"
	"reloadpanel/pkg/core"
)

func TestExportImportRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_ = h.registry.AddURL("http://a")
	_ = h.registry.AddURL("http://b")
	_ = h.registry.SetURLInterval("http://b", 600)
	h.registry.SetTimeout(20)
	wantURLs := h.registry.URLs()
	wantTiming := h.registry.Timing()

	if err := h.panel.ExportConfig(ctx); err != nil {
		t.Fatal(err)
	}
	if h.saver.name != ConfigFileName || len(h.saver.data) == 0 {
		t.Fatalf("saved %q (%d bytes)", h.saver.name, len(h.saver.data))
	}

	// Wreck the service state, then restore it from the exported file.
	h.registry.ClearURLs()
	_ = h.registry.ApplyPreset("fast")
	_ = h.registry.AddURL("http://stray")

	h.opener.data = h.saver.data
	h.calls.reset()
	if err := h.panel.ImportConfig(ctx); err != nil {
		t.Fatal(err)
	}

	if got := h.registry.URLs(); !reflect.DeepEqual(got, wantURLs) {
		t.Errorf("URLs after import = %+v; want %+v", got, wantURLs)
	}
	if got := h.registry.Timing(); got.DefaultIntervalSeconds != wantTiming.DefaultIntervalSeconds || got.TimeoutSeconds != wantTiming.TimeoutSeconds {
		t.Errorf("Timing after import = %+v; want %+v", got, wantTiming)
	}
	for _, action := range []string{client.ActionListURLs, client.ActionShowTiming, client.ActionStatus} {
		if h.calls.count(action) != 1 {
			t.Errorf("%s refreshed %d times after import; want 1", action, h.calls.count(action))
		}
	}
	snap := h.panel.Store().Snapshot()
	if len(snap.URLs) != 2 || snap.Timing == nil || snap.Status == nil {
		t.Errorf("store not refreshed: %+v", snap)
	}
	h.expectNotice(t, core.SeveritySuccess, "imported")
}

func TestImportConfig_CancelledMakesNoCall(t *testing.T) {
	h := newHarness(t)
	h.opener.err = ErrCancelled

	if err := h.panel.ImportConfig(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v; want ErrCancelled", err)
	}
	if h.calls.total() != 0 {
		t.Error("cancelled import reached the network")
	}
}

func TestImportConfig_EmptyFileRejected(t *testing.T) {
	h := newHarness(t)
	h.opener.data = []byte("  \n")

	err := h.panel.ImportConfig(context.Background())
	var verr *core.ValidationError
	if !errors.As(err, &verr) || h.calls.total() != 0 {
		t.Fatalf("err = %v, calls = %d", err, h.calls.total())
	}
}

func TestImportConfig_ServiceRejects(t *testing.T) {
	h := newHarness(t)
	_ = h.registry.AddURL("http://keep")
	h.opener.data = []byte("interval=1\n")

	if err := h.panel.ImportConfig(context.Background()); err == nil {
		t.Fatal("ImportConfig() = nil; want error")
	}
	h.expectNotice(t, core.SeverityDanger, "Failed to import config")
	if len(h.registry.URLs()) != 1 {
		t.Error("rejected import changed the service")
	}
}

func TestExportConfig_Failures(t *testing.T) {
	h := newHarness(t)
	h.failAction(client.ActionExportConfig, http.StatusInternalServerError)
	if err := h.panel.ExportConfig(context.Background()); err == nil {
		t.Fatal("ExportConfig() = nil; want error")
	}
	if h.saver.data != nil {
		t.Error("saver called after a failed export")
	}

	h.failAction(client.ActionExportConfig, 0)
	h.saver.err = ErrCancelled
	if err := h.panel.ExportConfig(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Errorf("err = %v; want ErrCancelled", err)
	}
}

func TestSaveLogReport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.panel.SaveLogReport(ctx, h.endpoint); err == nil {
		t.Fatal("SaveLogReport() before logs loaded = nil; want error")
	}
	h.expectNotice(t, core.SeverityWarning, "Load the logs")

	h.registry.SetAutostart(true)
	if err := h.panel.RefreshLogs(ctx); err != nil {
		t.Fatal(err)
	}
	if err := h.panel.SaveLogReport(ctx, h.endpoint); err != nil {
		t.Fatal(err)
	}
	if h.saver.name != LogReportFileName || !bytes.HasPrefix(h.saver.data, []byte("%PDF-")) {
		t.Errorf("saved %q starting %q", h.saver.name, h.saver.data[:min(8, len(h.saver.data))])
	}
}
