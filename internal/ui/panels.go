package ui

// Panel identifies which panel has focus.
type Panel int

const (
	PanelList   Panel = iota // notification list (Inbox / Snoozed tabs)
	PanelDetail              // item detail
)

// AppMode represents the current input mode.
type AppMode int

const (
	ModeNavigation AppMode = iota
	ModeSnooze     // waiting for a snooze duration choice
	ModeOverlay    // help or settings overlay active
)

// Layout constants
const (
	minListWidth   = 30
	minDetailWidth = 36
	minTotalWidth  = 60

	// Below this terminal width the detail panel auto-collapses.
	collapseThreshold = 90

	listRatio = 0.45

	statusBarHeight = 1
)

// PanelSizes holds calculated panel dimensions.
type PanelSizes struct {
	ListWidth   int
	DetailWidth int
	PanelHeight int
	TooSmall    bool
}

// CalculatePanelSizes determines panel widths based on terminal dimensions
// and whether the detail panel is visible.
func CalculatePanelSizes(termWidth, termHeight int, detailVisible bool) PanelSizes {
	if termWidth < minTotalWidth {
		return PanelSizes{TooSmall: true}
	}

	panelHeight := termHeight - statusBarHeight
	if panelHeight < 5 {
		return PanelSizes{TooSmall: true}
	}

	collapsed := !detailVisible || termWidth < collapseThreshold
	if collapsed {
		return PanelSizes{
			ListWidth:   termWidth,
			DetailWidth: 0,
			PanelHeight: panelHeight,
		}
	}

	listW := max(minListWidth, int(float64(termWidth)*listRatio))
	detailW := termWidth - listW
	if detailW < minDetailWidth {
		detailW = minDetailWidth
		listW = termWidth - detailW
	}
	if listW < minListWidth {
		// Not enough room for both; fall back to list-only.
		return PanelSizes{
			ListWidth:   termWidth,
			DetailWidth: 0,
			PanelHeight: panelHeight,
		}
	}

	return PanelSizes{
		ListWidth:   listW,
		DetailWidth: detailW,
		PanelHeight: panelHeight,
	}
}

func (p Panel) Next() Panel {
	if p == PanelList {
		return PanelDetail
	}
	return PanelList
}

func (p Panel) Prev() Panel {
	return p.Next()
}

func (p Panel) String() string {
	switch p {
	case PanelList:
		return "Notifications"
	case PanelDetail:
		return "Detail"
	default:
		return "Unknown"
	}
}
