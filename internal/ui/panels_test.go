package ui

import "testing"

func TestCalculatePanelSizes(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		detailVisible bool
		wantTooSmall  bool
		wantCollapsed bool
	}{
		{"too narrow", 59, 40, true, true, false},
		{"too short", 120, 5, true, true, false},
		{"minimum viable", 60, 7, true, false, true},
		{"narrow collapses detail", 80, 40, true, false, true},
		{"detail hidden collapses", 120, 40, false, false, true},
		{"wide shows both", 120, 40, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePanelSizes(tt.width, tt.height, tt.detailVisible)
			if got.TooSmall != tt.wantTooSmall {
				t.Fatalf("TooSmall = %v, want %v", got.TooSmall, tt.wantTooSmall)
			}
			if got.TooSmall {
				return
			}
			if tt.wantCollapsed {
				if got.ListWidth != tt.width || got.DetailWidth != 0 {
					t.Errorf("collapsed sizes = %d/%d, want %d/0", got.ListWidth, got.DetailWidth, tt.width)
				}
			} else {
				if got.ListWidth+got.DetailWidth != tt.width {
					t.Errorf("widths %d+%d do not fill %d", got.ListWidth, got.DetailWidth, tt.width)
				}
				if got.ListWidth < minListWidth || got.DetailWidth < minDetailWidth {
					t.Errorf("panel below minimum: list %d detail %d", got.ListWidth, got.DetailWidth)
				}
			}
			if got.PanelHeight != tt.height-statusBarHeight {
				t.Errorf("PanelHeight = %d, want %d", got.PanelHeight, tt.height-statusBarHeight)
			}
		})
	}
}

func TestPanelNextPrev(t *testing.T) {
	if got := PanelList.Next(); got != PanelDetail {
		t.Errorf("PanelList.Next() = %v, want PanelDetail", got)
	}
	if got := PanelDetail.Next(); got != PanelList {
		t.Errorf("PanelDetail.Next() = %v, want PanelList", got)
	}
	if got := PanelList.Prev(); got != PanelDetail {
		t.Errorf("PanelList.Prev() = %v, want PanelDetail", got)
	}
}

func TestPanelString(t *testing.T) {
	tests := []struct {
		panel Panel
		want  string
	}{
		{PanelList, "Notifications"},
		{PanelDetail, "Detail"},
		{Panel(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.panel.String(); got != tt.want {
			t.Errorf("Panel(%d).String() = %q, want %q", tt.panel, got, tt.want)
		}
	}
}
