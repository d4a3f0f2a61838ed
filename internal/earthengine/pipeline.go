package earthengine

import (
	"github.com/paulmach/orb/geojson"
)

// Reducer names a collection reduction algorithm.
type Reducer string

// ReduceMedian reduces a collection to its per-pixel, per-band median.
const ReduceMedian Reducer = "median"

// Pipeline describes a collection-processing chain as data: a source
// collection, an ordered list of stages, and a final reduction. Keeping the
// stages as a slice makes the chain inspectable and testable without
// touching the remote service.
type Pipeline struct {
	Collection string
	Stages     []Stage
	Reducer    Reducer
}

// Stage is one step of a pipeline: it takes the collection reference built
// so far and returns the reference of the transformed collection.
type Stage interface {
	compile(b *Builder, coll Ref) Ref
}

// FilterBounds keeps images intersecting a geometry.
type FilterBounds struct {
	Geometry *geojson.Geometry
}

func (s FilterBounds) compile(b *Builder, coll Ref) Ref {
	feature := b.Invoke("Feature", map[string]ValueNode{
		"geometry": Const(s.Geometry),
	})
	filter := b.Invoke("Filter.intersects", map[string]ValueNode{
		"leftField":  Const(".all"),
		"rightValue": feature.Node(),
	})
	return b.Invoke("Collection.filter", map[string]ValueNode{
		"collection": coll.Node(),
		"filter":     filter.Node(),
	})
}

// FilterDate keeps images acquired in [Start, End). Both strings go to the
// service's date parser unparsed; the half-open end boundary is the remote
// filter's contract.
type FilterDate struct {
	Start string
	End   string
}

func (s FilterDate) compile(b *Builder, coll Ref) Ref {
	dateRange := b.Invoke("DateRange", map[string]ValueNode{
		"start": Const(s.Start),
		"end":   Const(s.End),
	})
	filter := b.Invoke("Filter.dateRangeContains", map[string]ValueNode{
		"leftValue":  dateRange.Node(),
		"rightField": Const("system:time_start"),
	})
	return b.Invoke("Collection.filter", map[string]ValueNode{
		"collection": coll.Node(),
		"filter":     filter.Node(),
	})
}

// FilterLessThan keeps images whose metadata property is below Max.
type FilterLessThan struct {
	Property string
	Max      float64
}

func (s FilterLessThan) compile(b *Builder, coll Ref) Ref {
	filter := b.Invoke("Filter.lessThan", map[string]ValueNode{
		"leftField":  Const(s.Property),
		"rightValue": Const(s.Max),
	})
	return b.Invoke("Collection.filter", map[string]ValueNode{
		"collection": coll.Node(),
		"filter":     filter.Node(),
	})
}

// MaskClasses masks out pixels whose classification Band value is any of
// Classes, in every image of the collection. Masked pixels become no-data
// in all bands.
type MaskClasses struct {
	Band    string
	Classes []int
}

func (s MaskClasses) compile(b *Builder, coll Ref) Ref {
	fn := b.Define("image", func(img ValueNode) Ref {
		band := b.Invoke("Image.select", map[string]ValueNode{
			"input":         img,
			"bandSelectors": Const([]string{s.Band}),
		})
		var mask Ref
		for i, class := range s.Classes {
			value := b.Invoke("Image.constant", map[string]ValueNode{
				"value": Const(class),
			})
			keep := b.Invoke("Image.neq", map[string]ValueNode{
				"image1": band.Node(),
				"image2": value.Node(),
			})
			if i == 0 {
				mask = keep
			} else {
				mask = b.Invoke("Image.and", map[string]ValueNode{
					"image1": mask.Node(),
					"image2": keep.Node(),
				})
			}
		}
		return b.Invoke("Image.updateMask", map[string]ValueNode{
			"image": img,
			"mask":  mask.Node(),
		})
	})
	return b.Invoke("Collection.map", map[string]ValueNode{
		"collection":    coll.Node(),
		"baseAlgorithm": fn.Node(),
	})
}

// Compile lowers the pipeline onto b and returns the reference of the
// reduced composite image. An empty source collection reduces to an
// all-no-data image on the service side, not an error here.
func (p Pipeline) Compile(b *Builder) Ref {
	coll := b.Invoke("ImageCollection.load", map[string]ValueNode{
		"id": Const(p.Collection),
	})
	for _, stage := range p.Stages {
		coll = stage.compile(b, coll)
	}
	return b.Invoke("reduce."+string(p.Reducer), map[string]ValueNode{
		"collection": coll.Node(),
	})
}

// NormalizedDifference computes (a-b)/(a+b) per pixel between the two named
// bands of image. Division-by-zero handling is owned by the service.
func NormalizedDifference(b *Builder, image Ref, bands [2]string) Ref {
	return b.Invoke("Image.normalizedDifference", map[string]ValueNode{
		"input":     image.Node(),
		"bandNames": Const([]string{bands[0], bands[1]}),
	})
}

// Rename relabels the bands of image.
func Rename(b *Builder, image Ref, names ...string) Ref {
	return b.Invoke("Image.rename", map[string]ValueNode{
		"input": image.Node(),
		"names": Const(names),
	})
}

// VisParams mirrors the visualization arguments of the service's
// Image.visualize algorithm.
type VisParams struct {
	Min     float64
	Max     float64
	Palette []string
}

// Visualize maps image values onto the palette for tile rendering.
func Visualize(b *Builder, image Ref, vis VisParams) Ref {
	return b.Invoke("Image.visualize", map[string]ValueNode{
		"image":   image.Node(),
		"min":     Const(vis.Min),
		"max":     Const(vis.Max),
		"palette": Const(vis.Palette),
	})
}
