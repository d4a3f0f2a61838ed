package sentinel

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/jknauernever/salish-prop/internal/earthengine"
)

func TestCompositePipelineStages(t *testing.T) {
	p := CompositePipeline("2024-06-01", "2024-08-31")

	if p.Collection != Collection {
		t.Errorf("collection = %q, want %q", p.Collection, Collection)
	}
	if p.Reducer != earthengine.ReduceMedian {
		t.Errorf("reducer = %q, want median", p.Reducer)
	}
	if len(p.Stages) != 4 {
		t.Fatalf("got %d stages, want 4", len(p.Stages))
	}

	bounds, ok := p.Stages[0].(earthengine.FilterBounds)
	if !ok || bounds.Geometry == nil {
		t.Errorf("stage 0 = %#v, want spatial filter with geometry", p.Stages[0])
	}

	date, ok := p.Stages[1].(earthengine.FilterDate)
	if !ok || date.Start != "2024-06-01" || date.End != "2024-08-31" {
		t.Errorf("stage 1 = %#v, want date filter passing the range through", p.Stages[1])
	}

	cloudy, ok := p.Stages[2].(earthengine.FilterLessThan)
	if !ok || cloudy.Property != "CLOUDY_PIXEL_PERCENTAGE" || cloudy.Max != MaxCloudyPercent {
		t.Errorf("stage 2 = %#v, want cloudiness filter below %d", p.Stages[2], MaxCloudyPercent)
	}

	mask, ok := p.Stages[3].(earthengine.MaskClasses)
	if !ok || mask.Band != "SCL" || !reflect.DeepEqual(mask.Classes, []int{3, 8, 9, 10}) {
		t.Errorf("stage 3 = %#v, want SCL mask over classes 3/8/9/10", p.Stages[3])
	}
}

func TestNDVIExpression(t *testing.T) {
	expr := NDVIExpression("2024-06-01", "2024-08-31")

	root := expr.Values[expr.Result]
	if root.FunctionInvocationValue == nil || root.FunctionInvocationValue.FunctionName != "Image.visualize" {
		t.Fatalf("result node = %+v, want Image.visualize", root)
	}

	data, err := json.Marshal(expr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	serialized := string(data)
	for _, want := range []string{
		Collection,
		"2024-06-01", "2024-08-31",
		"Image.normalizedDifference", `"B8"`, `"B4"`, `"NDVI"`,
		"reduce.median",
		"CLOUDY_PIXEL_PERCENTAGE",
		"#d73027", "#006837",
		"-123.22", "48.77",
	} {
		if !strings.Contains(serialized, want) {
			t.Errorf("serialized expression missing %q", want)
		}
	}
}
