package viewmodels

// AppCardItem is one tile of the applications grid. Payload is the drag
// payload the tile carries.
type AppCardItem struct {
	Name      string
	Href      string
	Icon      string
	BgColor   string
	IconColor string
	Payload   string
	Position  int
}

type AppsViewData struct {
	Layout  LayoutData
	Cards   []AppCardItem
	Columns int
	HasApps bool
}
