// Package rating implements the half-star rating control: five slots, each split
// into a left and right half-zone, with a hover preview on top of the committed value.
//
// The control is controlled by its owner. Activating a zone only reports the new
// value through the change callback; the owner feeds the committed value back with
// SetValue.
package rating

import (
	"fmt"
	"strconv"
)

// Slots is the number of stars in the row.
const Slots = 5

// Half identifies one side of a slot.
type Half int

const (
	Left Half = iota
	Right
)

// Zone is one independently activatable half of a slot.
type Zone struct {
	Slot int
	Half Half
}

// Value is the rating this zone commits: i+0.5 for the left half, i+1 for the right.
func (z Zone) Value() float64 {
	if z.Half == Left {
		return float64(z.Slot) + 0.5
	}
	return float64(z.Slot) + 1
}

// Label is the accessible name of the zone, e.g. "Rate 3.5 stars".
func (z Zone) Label() string {
	return fmt.Sprintf("Rate %s stars", strconv.FormatFloat(z.Value(), 'f', -1, 64))
}

func (z Zone) valid() bool {
	return z.Slot >= 0 && z.Slot < Slots && (z.Half == Left || z.Half == Right)
}

// Zones lists every zone in row order.
func Zones() []Zone {
	zones := make([]Zone, 0, Slots*2)
	for i := 0; i < Slots; i++ {
		zones = append(zones, Zone{Slot: i, Half: Left}, Zone{Slot: i, Half: Right})
	}
	return zones
}

// Fill is how much of a slot's glyph is painted.
type Fill int

const (
	Empty Fill = iota
	HalfFilled
	Full
)

// ClipPercent is the right-hand inset applied to the filled glyph.
func (f Fill) ClipPercent() int {
	switch f {
	case Full:
		return 0
	case HalfFilled:
		return 50
	default:
		return 100
	}
}

func (f Fill) String() string {
	switch f {
	case Full:
		return "full"
	case HalfFilled:
		return "half"
	default:
		return "empty"
	}
}

// Tone is the color family used for a slot's filled portion.
type Tone int

const (
	Neutral Tone = iota
	Selected
	Preview
)

func (t Tone) String() string {
	switch t {
	case Selected:
		return "selected"
	case Preview:
		return "preview"
	default:
		return "neutral"
	}
}

// SlotView is the render state of one slot.
type SlotView struct {
	Index int
	Fill  Fill
	Tone  Tone
	Left  Zone
	Right Zone
}

// Control holds the interaction state of one rating row.
type Control struct {
	value    float64
	hover    float64
	hovering bool
	onChange func(float64)
}

// New creates an idle control showing value. onChange may be nil.
func New(value float64, onChange func(float64)) *Control {
	return &Control{value: value, onChange: onChange}
}

// Value returns the committed rating, 0 meaning none.
func (c *Control) Value() float64 {
	return c.value
}

// SetValue updates the committed rating. It does not touch hover state.
func (c *Control) SetValue(v float64) {
	c.value = v
}

// Hover returns the preview value and whether the pointer is over a zone.
func (c *Control) Hover() (float64, bool) {
	return c.hover, c.hovering
}

// Displayed is the preview value while hovering, the committed value otherwise.
func (c *Control) Displayed() float64 {
	if c.hovering {
		return c.hover
	}
	return c.value
}

// Enter moves the pointer onto zone z.
func (c *Control) Enter(z Zone) {
	if !z.valid() {
		return
	}
	c.hover = z.Value()
	c.hovering = true
}

// Leave is the pointer leaving the control entirely.
func (c *Control) Leave() {
	c.hover = 0
	c.hovering = false
}

// Activate commits zone z by invoking the change callback.
func (c *Control) Activate(z Zone) {
	if !z.valid() {
		return
	}
	if c.onChange != nil {
		c.onChange(z.Value())
	}
}

// HitTest maps a pointer offset x over a row of total width to the zone under it.
// Each slot's box is split into two equal halves and nothing finer.
func HitTest(x, width float64) (Zone, bool) {
	if width <= 0 || x < 0 || x >= width {
		return Zone{}, false
	}
	slotWidth := width / Slots
	slot := int(x / slotWidth)
	if slot >= Slots {
		slot = Slots - 1
	}
	half := Left
	if x-float64(slot)*slotWidth >= slotWidth/2 {
		half = Right
	}
	return Zone{Slot: slot, Half: half}, true
}

// PointerMove enters the zone under x, or leaves when x is outside the row.
func (c *Control) PointerMove(x, width float64) {
	z, ok := HitTest(x, width)
	if !ok {
		c.Leave()
		return
	}
	c.Enter(z)
}

// Click activates the zone under x. It reports whether a zone was hit.
func (c *Control) Click(x, width float64) bool {
	z, ok := HitTest(x, width)
	if ok {
		c.Activate(z)
	}
	return ok
}

// Render computes the view of every slot for the current state.
func (c *Control) Render() [Slots]SlotView {
	displayed := c.Displayed()
	tone := Selected
	if c.hovering && c.hover > c.value {
		tone = Preview
	}

	var views [Slots]SlotView
	for i := 0; i < Slots; i++ {
		view := SlotView{
			Index: i,
			Fill:  FillFor(displayed, i),
			Left:  Zone{Slot: i, Half: Left},
			Right: Zone{Slot: i, Half: Right},
		}
		if view.Fill != Empty {
			view.Tone = tone
		}
		views[i] = view
	}
	return views
}

// FillFor returns the fill of slot i for a displayed value. No rounding is applied.
func FillFor(displayed float64, i int) Fill {
	full := float64(i) + 1
	half := float64(i) + 0.5
	switch {
	case displayed >= full:
		return Full
	case displayed >= half:
		return HalfFilled
	default:
		return Empty
	}
}
