// Lux
// Copyright (c) 2026 The Lux Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Lux.
//
// Lux is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lux is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lux.  If not, see <http://www.gnu.org/licenses/>.

package dialog

import (
	"context"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Terminal draws the prompts with tview when lux runs from a console.
type Terminal struct{}

func setTheme(theme *tview.Theme) {
	theme.BorderColor = tcell.ColorLightYellow
	theme.PrimaryTextColor = tcell.ColorWhite
	theme.PrimitiveBackgroundColor = tcell.ColorDarkBlue
	theme.ContrastBackgroundColor = tcell.ColorBlue
	theme.InverseTextColor = tcell.ColorDarkBlue
}

// runApp shows root until the app stops or ctx is done.
func runApp(ctx context.Context, app *tview.Application, root tview.Primitive) error {
	setTheme(&tview.Styles)
	stop := context.AfterFunc(ctx, app.Stop)
	defer stop()
	if err := app.SetRoot(root, true).EnableMouse(true).Run(); err != nil {
		return fmt.Errorf("failed to run terminal dialog: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("terminal dialog: %w", err)
	}
	return nil
}

func (*Terminal) ShowFileWithConfirm(ctx context.Context, title, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the descriptor
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	app := tview.NewApplication()
	accepted := false

	text := tview.NewTextView().SetText(string(data)).SetScrollable(true)
	text.SetBorder(true).SetTitle(title)

	buttons := tview.NewForm().
		AddButton("Accept", func() {
			accepted = true
			app.Stop()
		}).
		AddButton("Reject", app.Stop)
	buttons.SetButtonsAlign(tview.AlignCenter)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(text, 0, 1, false).
		AddItem(buttons, 3, 0, true)

	if err := runApp(ctx, app, layout); err != nil {
		return err
	}
	if !accepted {
		return ErrRejected
	}
	return nil
}

func (*Terminal) TextInput(ctx context.Context, title, label string) (string, error) {
	app := tview.NewApplication()
	var value string
	submitted := false

	form := tview.NewForm().AddInputField(label, "", 40, nil, func(text string) {
		value = text
	})
	form.AddButton("OK", func() {
		submitted = true
		app.Stop()
	}).AddButton("Cancel", app.Stop)
	form.SetBorder(true).SetTitle(title)

	if err := runApp(ctx, app, form); err != nil {
		return "", err
	}
	if !submitted {
		return "", ErrCancelled
	}
	return value, nil
}

func (*Terminal) ShowError(ctx context.Context, title, message string) error {
	app := tview.NewApplication()
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) { app.Stop() })
	modal.SetTitle(title).SetBorder(true)
	return runApp(ctx, app, modal)
}

func (*Terminal) SelectChoice(ctx context.Context, title string, choices []string) (string, error) {
	app := tview.NewApplication()
	selected := ""

	list := tview.NewList().ShowSecondaryText(false)
	for _, c := range choices {
		list.AddItem(c, "", 0, func() {
			selected = c
			app.Stop()
		})
	}
	list.SetDoneFunc(app.Stop)
	list.SetBorder(true).SetTitle(title)

	if err := runApp(ctx, app, list); err != nil {
		return "", err
	}
	if selected == "" {
		return "", ErrCancelled
	}
	return selected, nil
}
