package shell

import (
	"time"

	"github.com/fiitjobs/jobadmin/internal/session"
)

// MenuItem is one entry of the navigation panel
type MenuItem struct {
	Path   string
	Label  string
	Icon   string
	Active bool
}

// Menu is the navigation panel, in display order
var Menu = []MenuItem{
	{Path: "/dashboard", Label: "Dashboard", Icon: "house"},
	{Path: "/users", Label: "Users", Icon: "people"},
	{Path: "/jobs", Label: "Manage Jobs", Icon: "briefcase"},
	{Path: "/jobs/add", Label: "Add Job", Icon: "plus"},
	{Path: "/applications", Label: "Applications", Icon: "inbox"},
}

// Layout is the chrome view model rendered around every protected screen
type Layout struct {
	Title           string
	Subtitle        string
	CurrentPath     string
	Menu            []MenuItem
	Identity        session.Identity
	Compact         bool
	SidebarExpanded bool
	ShowLabels      bool
	PanelTitle      string
	Breakpoint      int
	Year            int
}

// Layout builds the chrome for the page at path
func (s *Shell) Layout(title, subtitle, path string, identity session.Identity) Layout {
	compact := s.Compact()
	expanded := s.SidebarExpanded()

	menu := make([]MenuItem, len(Menu))
	for i, item := range Menu {
		item.Active = item.Path == path
		menu[i] = item
	}

	// Labels hide only when the panel is collapsed on a compact viewport
	showLabels := expanded || !compact
	panelTitle := "Admin Panel"
	if !showLabels {
		panelTitle = "AP"
	}

	return Layout{
		Title:           title,
		Subtitle:        subtitle,
		CurrentPath:     path,
		Menu:            menu,
		Identity:        identity,
		Compact:         compact,
		SidebarExpanded: expanded,
		ShowLabels:      showLabels,
		PanelTitle:      panelTitle,
		Breakpoint:      s.breakpoint,
		Year:            time.Now().Year(),
	}
}
