package ui

import (
	"context"
	"errors"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"reloadpanel/pkg/panel"
)

// windowDialogs shows modal dialogs on window and waits for the answer.
// Its methods block, so they must not be called from the UI goroutine.
type windowDialogs struct {
	window fyne.Window
}

func (d *windowDialogs) Confirm(ctx context.Context, title, message string) bool {
	answer := make(chan bool, 1)
	fyne.Do(func() {
		dialog.ShowConfirm(title, message, func(ok bool) { answer <- ok }, d.window)
	})
	select {
	case ok := <-answer:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (d *windowDialogs) SaveFile(ctx context.Context, suggestedName string, data []byte) error {
	result := make(chan error, 1)
	fyne.Do(func() {
		save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
			if err != nil {
				result <- err
				return
			}
			if w == nil {
				result <- panel.ErrCancelled
				return
			}
			_, werr := w.Write(data)
			result <- errors.Join(werr, w.Close())
		}, d.window)
		save.SetFileName(suggestedName)
		save.Show()
	})
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *windowDialogs) OpenFile(ctx context.Context) ([]byte, error) {
	type opened struct {
		data []byte
		err  error
	}
	result := make(chan opened, 1)
	fyne.Do(func() {
		dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil {
				result <- opened{err: err}
				return
			}
			if r == nil {
				result <- opened{err: panel.ErrCancelled}
				return
			}
			defer r.Close()
			data, err := io.ReadAll(r)
			result <- opened{data: data, err: err}
		}, d.window)
	})
	select {
	case got := <-result:
		return got.data, got.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
