package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"filter-forge/internal/models"
)

// Fine enough that dragging reads as continuous at any panel width.
const sliderStep = 0.0001

type effectRow struct {
	effect  models.Effect
	check   *widget.Check
	caption *widget.Label
	slider  *widget.Slider
	value   *widget.Label
}

// ControlPanel holds one enable toggle and one intensity slider per effect.
// Every user change is reported as the full state of the touched effect.
type ControlPanel struct {
	container *fyne.Container
	rows      [len(models.ApplicationOrder)]*effectRow

	updateHandler func(models.EffectState)

	// set while the panel mirrors a snapshot so widget callbacks stay quiet
	syncing  bool
	disabled bool
}

// NewControlPanel creates the side panel controls
func NewControlPanel() *ControlPanel {
	cp := &ControlPanel{}
	cp.createComponents()
	cp.buildLayout()
	return cp
}

func (cp *ControlPanel) createComponents() {
	for i, e := range models.Effects() {
		row := &effectRow{effect: e}

		row.check = widget.NewCheck(e.DisplayName(), func(checked bool) {
			cp.onToggle(e, checked)
		})
		row.caption = widget.NewLabel(e.Caption())
		row.caption.TextStyle = fyne.TextStyle{Italic: true}

		row.slider = widget.NewSlider(0, 1)
		row.slider.Step = sliderStep
		row.slider.OnChanged = func(v float64) {
			cp.onSlide(e, v)
		}
		row.value = widget.NewLabel(formatIntensity(0))

		cp.rows[i] = row
	}
}

func (cp *ControlPanel) buildLayout() {
	sections := make([]fyne.CanvasObject, 0, len(cp.rows)*2+1)
	sections = append(sections, widget.NewRichTextFromMarkdown("**Effects**"))
	for _, row := range cp.rows {
		sections = append(sections,
			container.NewVBox(
				container.NewBorder(nil, nil, nil, row.value, row.check),
				row.caption,
				row.slider,
			),
			widget.NewSeparator(),
		)
	}
	cp.container = container.NewVBox(sections...)
}

func (cp *ControlPanel) row(e models.Effect) *effectRow {
	for _, r := range cp.rows {
		if r.effect == e {
			return r
		}
	}
	return nil
}

func (cp *ControlPanel) onToggle(e models.Effect, checked bool) {
	if cp.syncing || cp.disabled {
		return
	}
	r := cp.row(e)
	if r == nil {
		return
	}
	cp.emit(models.EffectState{Effect: e, Enabled: checked, Intensity: r.slider.Value})
}

func (cp *ControlPanel) onSlide(e models.Effect, v float64) {
	r := cp.row(e)
	if r == nil {
		return
	}
	r.value.SetText(formatIntensity(v))
	if cp.syncing || cp.disabled {
		return
	}
	cp.emit(models.EffectState{Effect: e, Enabled: r.check.Checked, Intensity: v})
}

func (cp *ControlPanel) emit(st models.EffectState) {
	if cp.updateHandler != nil {
		cp.updateHandler(st)
	}
}

// SetUpdateHandler sets the handler receiving per-effect updates
func (cp *ControlPanel) SetUpdateHandler(handler func(models.EffectState)) {
	cp.updateHandler = handler
}

// SetState mirrors snap into the widgets without emitting updates.
func (cp *ControlPanel) SetState(snap models.Snapshot) {
	cp.syncing = true
	defer func() { cp.syncing = false }()

	for _, r := range cp.rows {
		st := snap.Get(r.effect)
		if r.check.Checked != st.Enabled {
			r.check.SetChecked(st.Enabled)
		}
		if r.slider.Value != st.Intensity {
			r.slider.SetValue(st.Intensity)
		}
		r.value.SetText(formatIntensity(st.Intensity))
	}
}

// State returns what the widgets currently show for e.
func (cp *ControlPanel) State(e models.Effect) (models.EffectState, error) {
	r := cp.row(e)
	if r == nil {
		return models.EffectState{}, fmt.Errorf("%w: %d", models.ErrInvalidEffect, int(e))
	}
	return models.EffectState{Effect: e, Enabled: r.check.Checked, Intensity: r.slider.Value}, nil
}

// SetEnabled enables or disables every control
func (cp *ControlPanel) SetEnabled(enabled bool) {
	cp.disabled = !enabled
	for _, r := range cp.rows {
		setDisabled(r.check, !enabled)
		setDisabled(r.slider, !enabled)
	}
}

// Enabled reports whether the controls accept input
func (cp *ControlPanel) Enabled() bool {
	return !cp.disabled
}

// GetContainer returns the control panel container
func (cp *ControlPanel) GetContainer() *fyne.Container {
	return cp.container
}

func setDisabled(obj fyne.CanvasObject, disabled bool) {
	d, ok := obj.(fyne.Disableable)
	if !ok {
		return
	}
	if disabled {
		d.Disable()
	} else {
		d.Enable()
	}
}

func formatIntensity(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
