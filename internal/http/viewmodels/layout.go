package viewmodels

type ToastViewData struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type SidebarItem struct {
	Name      string
	Icon      string
	Href      string
	Active    bool
	Removable bool
}

type LayoutData struct {
	Title      string
	CSRFToken  string
	UserName   string
	UserEmail  string
	UserRole   string
	IsAdmin    bool
	Sidebar    []SidebarItem
	Toast      *ToastViewData
	ActivePath string
}
