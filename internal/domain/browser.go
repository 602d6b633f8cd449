package domain

// WindowIDNone is the window id the browser reports when no window has focus.
const WindowIDNone = -1

// Tab is the subset of a browser tab the tracker needs.
type Tab struct {
	ID       int    `json:"id"`
	WindowID int    `json:"windowId"`
	URL      string `json:"url"`
	Active   bool   `json:"active"`
}

// Window is a browser window with its tabs populated.
type Window struct {
	ID      int   `json:"id"`
	Focused bool  `json:"focused"`
	Tabs    []Tab `json:"tabs"`
}

// ActiveTab returns the window's active tab, if any.
func (w *Window) ActiveTab() (Tab, bool) {
	for _, t := range w.Tabs {
		if t.Active {
			return t, true
		}
	}
	return Tab{}, false
}

// IdleState is the user presence state reported by the browser.
type IdleState string

const (
	IdleStateActive IdleState = "active"
	IdleStateIdle   IdleState = "idle"
	IdleStateLocked IdleState = "locked"
)
