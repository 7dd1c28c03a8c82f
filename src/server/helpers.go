package server

import (
	"market-dashboard/src/analysis"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

func isPanelName(name string) bool {
	switch name {
	case analysis.PanelBreadth, analysis.PanelSessionBreadth, analysis.PanelAssetTypes:
		return true
	}
	return contains(analysis.PanelNames, name)
}

// -----------------------------------------------------------------------------

// panelOf picks one output of the dashboard by name.
func panelOf(d *models.MDashboard, name string) interface{} {
	switch name {
	case analysis.PanelBreadth:
		return d.Breadth
	case analysis.PanelSessionBreadth:
		return d.SessionBreadth
	case analysis.PanelAssetTypes:
		return d.AssetTypes
	}
	if p, ok := d.Panel(name); ok {
		return p
	}
	return nil
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
