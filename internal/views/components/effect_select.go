package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"filter-forge/internal/models"
)

// NormalOption is the select entry that turns every effect off.
const NormalOption = "Normal"

// EffectSelect is the top bar shortcut that enables one effect exclusively.
type EffectSelect struct {
	container *fyne.Container
	selector  *widget.Select

	selectHandler func(string)
	syncing       bool
}

// NewEffectSelect creates the effect shortcut selector
func NewEffectSelect() *EffectSelect {
	es := &EffectSelect{}

	options := []string{NormalOption}
	for _, e := range models.Effects() {
		options = append(options, e.DisplayName())
	}
	es.selector = widget.NewSelect(options, es.onChanged)
	es.selector.PlaceHolder = "Select effect"
	es.selector.SetSelected(NormalOption)

	es.container = container.NewHBox(
		widget.NewLabel("Effect"),
		es.selector,
	)
	return es
}

func (es *EffectSelect) onChanged(option string) {
	if es.syncing || es.selectHandler == nil {
		return
	}
	es.selectHandler(option)
}

// SetSelectHandler sets the handler invoked with the chosen option
func (es *EffectSelect) SetSelectHandler(handler func(string)) {
	es.selectHandler = handler
}

// Choose selects option as if the user picked it.
func (es *EffectSelect) Choose(option string) {
	if es.selector.Selected == option {
		es.onChanged(option)
		return
	}
	es.selector.SetSelected(option)
}

// Show displays option without notifying the handler.
func (es *EffectSelect) Show(option string) {
	es.syncing = true
	defer func() { es.syncing = false }()
	es.selector.SetSelected(option)
}

// Clear removes the displayed option without notifying the handler.
func (es *EffectSelect) Clear() {
	es.syncing = true
	defer func() { es.syncing = false }()
	es.selector.ClearSelected()
}

// Selected returns the displayed option
func (es *EffectSelect) Selected() string {
	return es.selector.Selected
}

// Options returns every selectable option
func (es *EffectSelect) Options() []string {
	return es.selector.Options
}

// SetEnabled enables or disables the selector
func (es *EffectSelect) SetEnabled(enabled bool) {
	if enabled {
		es.selector.Enable()
	} else {
		es.selector.Disable()
	}
}

// GetContainer returns the selector container
func (es *EffectSelect) GetContainer() *fyne.Container {
	return es.container
}
