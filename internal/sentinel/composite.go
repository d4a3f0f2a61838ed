// Package sentinel assembles the Sentinel-2 NDVI composite request sent to
// Earth Engine: a cloud-free median composite over San Juan County reduced
// to a single visualized NDVI band.
package sentinel

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jknauernever/salish-prop/internal/earthengine"
)

const (
	// Collection is the harmonized Sentinel-2 surface reflectance collection.
	Collection = "COPERNICUS/S2_SR_HARMONIZED"

	// Project is the Google Cloud project maps are registered under.
	Project = "salish-sea-property-mapper"

	// MaxCloudyPercent drops images at or above this CLOUDY_PIXEL_PERCENTAGE.
	MaxCloudyPercent = 30

	// BandNIR and BandRed are the 10m bands NDVI is computed from.
	BandNIR = "B8"
	BandRed = "B4"

	// IndexName labels the single output band.
	IndexName = "NDVI"

	sclBand = "SCL"
)

// Region is the San Juan County bounding box.
var Region = orb.Bound{
	Min: orb.Point{-123.22, 48.40},
	Max: orb.Point{-122.75, 48.77},
}

// CloudClasses are the SCL codes masked out of every image: 3 cloud shadow,
// 8 cloud medium probability, 9 cloud high probability, 10 thin cirrus.
var CloudClasses = []int{3, 8, 9, 10}

// Vis maps NDVI onto the palette shared with the NAIP layer.
var Vis = earthengine.VisParams{
	Min: -0.2,
	Max: 0.8,
	Palette: []string{
		"#d73027", // bare/water
		"#fc8d59", // sparse
		"#fee08b", // low veg
		"#d9ef8b", // moderate
		"#66bd63", // healthy
		"#1a9850", // dense
		"#006837", // very dense
	},
}

// CompositePipeline describes the cloud-free composite over [start, end).
// The end boundary is exclusive per the remote date-range filter; both
// strings go to the service's date parser unparsed, so a reversed range
// yields an empty collection rather than a local error.
func CompositePipeline(start, end string) earthengine.Pipeline {
	return earthengine.Pipeline{
		Collection: Collection,
		Stages: []earthengine.Stage{
			earthengine.FilterBounds{Geometry: geojson.NewGeometry(Region.ToPolygon())},
			earthengine.FilterDate{Start: start, End: end},
			earthengine.FilterLessThan{Property: "CLOUDY_PIXEL_PERCENTAGE", Max: MaxCloudyPercent},
			earthengine.MaskClasses{Band: sclBand, Classes: CloudClasses},
		},
		Reducer: earthengine.ReduceMedian,
	}
}

// NDVIExpression compiles the full request: composite, normalized
// difference over B8/B4, rename, visualization.
func NDVIExpression(start, end string) *earthengine.Expression {
	b := earthengine.NewBuilder()
	composite := CompositePipeline(start, end).Compile(b)
	ndvi := earthengine.NormalizedDifference(b, composite, [2]string{BandNIR, BandRed})
	named := earthengine.Rename(b, ndvi, IndexName)
	return b.Build(earthengine.Visualize(b, named, Vis))
}
