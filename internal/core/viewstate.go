package core

// ViewState is what a page renders: the loaded sheets, the selected tab and
// whether loading is still in progress or failed. It is a value; a new one
// is built from the latest refresh for every request.
type ViewState struct {
	Sheets    []SheetData
	ActiveTab int
	Loading   bool
	Err       error
}

// NewViewState builds the view for activeTab. A nil result with no error
// means the first refresh has not finished. The tab is clamped to the
// loaded sheets.
func NewViewState(result *RefreshResult, err error, activeTab int) ViewState {
	v := ViewState{Err: err}
	if result != nil {
		v.Sheets = result.Sheets
	}
	v.Loading = result == nil && err == nil
	v.ActiveTab = clampTab(activeTab, len(v.Sheets))
	return v
}

func clampTab(tab, n int) int {
	if n == 0 || tab < 0 {
		return 0
	}
	if tab >= n {
		return n - 1
	}
	return tab
}

// WithTab returns a copy of v with a different tab selected.
func (v ViewState) WithTab(tab int) ViewState {
	v.ActiveTab = clampTab(tab, len(v.Sheets))
	return v
}

// Current returns the selected sheet. ok is false when nothing is loaded.
func (v ViewState) Current() (SheetData, bool) {
	if len(v.Sheets) == 0 {
		return SheetData{}, false
	}
	return v.Sheets[v.ActiveTab], true
}

// HasData reports whether at least one sheet is loaded.
func (v ViewState) HasData() bool {
	return len(v.Sheets) > 0
}

// ErrorMessage is the text shown under the error heading.
func (v ViewState) ErrorMessage() string {
	if v.Err == nil {
		return ""
	}
	return v.Err.Error()
}
