package tools

import "github.com/NERVsystems/navermcp/pkg/geo"

// Place is a searchPlaces result entry.
type Place struct {
	Name     string         `json:"name"`
	Address  string         `json:"address"`
	Location geo.Coordinate `json:"location"`
}

// SearchPlacesOutput is the searchPlaces result.
type SearchPlacesOutput struct {
	Places []Place `json:"places"`
}

// PlanarPoint is an x/y pair in some coordinate system.
type PlanarPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TransformOutput is the transformCoordinates result.
type TransformOutput struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	FromCoordSys string  `json:"fromCoordSys"`
	ToCoordSys   string  `json:"toCoordSys"`
}

// CoordinateSystem names accepted by transformCoordinates.
const (
	CoordSysWGS84  = "EPSG:4326"
	CoordSysNaver  = "NAVER"
	CoordSysUTMK   = "UTMK"
	CoordSysTM128  = "TM128"
	CoordSysBessel = "BESSEL"
)

// CoordinateSystems lists the accepted coordinate system names.
var CoordinateSystems = []string{CoordSysWGS84, CoordSysNaver, CoordSysUTMK, CoordSysTM128, CoordSysBessel}
