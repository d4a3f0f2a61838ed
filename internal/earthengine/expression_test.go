package earthengine

import (
	"testing"
)

// follow resolves a ref to its node in the built expression.
func follow(t *testing.T, expr *Expression, key string) ValueNode {
	t.Helper()
	node, ok := expr.Values[key]
	if !ok {
		t.Fatalf("node %q missing from graph", key)
	}
	return node
}

// invocation asserts the node is an invocation of name and returns it.
func invocation(t *testing.T, node ValueNode, name string) *FunctionInvocation {
	t.Helper()
	if node.FunctionInvocationValue == nil {
		t.Fatalf("node is not a function invocation: %+v", node)
	}
	if node.FunctionInvocationValue.FunctionName != name {
		t.Fatalf("functionName = %q, want %q", node.FunctionInvocationValue.FunctionName, name)
	}
	return node.FunctionInvocationValue
}

func TestBuilderNumbersNodesInOrder(t *testing.T) {
	b := NewBuilder()
	first := b.Constant("a")
	second := b.Constant("b")
	if first != "0" || second != "1" {
		t.Fatalf("refs = %q, %q, want 0, 1", first, second)
	}
}

func TestPipelineCompile(t *testing.T) {
	b := NewBuilder()
	p := Pipeline{
		Collection: "TEST/COLLECTION",
		Stages: []Stage{
			FilterDate{Start: "2024-01-01", End: "2024-02-01"},
			FilterLessThan{Property: "CLOUDY_PIXEL_PERCENTAGE", Max: 30},
		},
		Reducer: ReduceMedian,
	}
	expr := b.Build(p.Compile(b))

	// Walk the chain backwards from the result: median over the attribute
	// filter over the date filter over the loaded collection.
	root := invocation(t, follow(t, expr, expr.Result), "reduce.median")

	attrFilter := invocation(t, follow(t, expr, root.Arguments["collection"].ValueReference), "Collection.filter")
	lessThan := invocation(t, follow(t, expr, attrFilter.Arguments["filter"].ValueReference), "Filter.lessThan")
	if lessThan.Arguments["leftField"].ConstantValue != "CLOUDY_PIXEL_PERCENTAGE" {
		t.Errorf("leftField = %v", lessThan.Arguments["leftField"].ConstantValue)
	}
	if lessThan.Arguments["rightValue"].ConstantValue != float64(30) {
		t.Errorf("rightValue = %v", lessThan.Arguments["rightValue"].ConstantValue)
	}

	dateFilter := invocation(t, follow(t, expr, attrFilter.Arguments["collection"].ValueReference), "Collection.filter")
	contains := invocation(t, follow(t, expr, dateFilter.Arguments["filter"].ValueReference), "Filter.dateRangeContains")
	dateRange := invocation(t, follow(t, expr, contains.Arguments["leftValue"].ValueReference), "DateRange")
	if dateRange.Arguments["start"].ConstantValue != "2024-01-01" {
		t.Errorf("start = %v", dateRange.Arguments["start"].ConstantValue)
	}
	if dateRange.Arguments["end"].ConstantValue != "2024-02-01" {
		t.Errorf("end = %v", dateRange.Arguments["end"].ConstantValue)
	}

	load := invocation(t, follow(t, expr, dateFilter.Arguments["collection"].ValueReference), "ImageCollection.load")
	if load.Arguments["id"].ConstantValue != "TEST/COLLECTION" {
		t.Errorf("collection id = %v", load.Arguments["id"].ConstantValue)
	}
}

func TestMaskClassesMapsFunctionOverCollection(t *testing.T) {
	b := NewBuilder()
	p := Pipeline{
		Collection: "TEST/COLLECTION",
		Stages:     []Stage{MaskClasses{Band: "SCL", Classes: []int{3, 8, 9, 10}}},
		Reducer:    ReduceMedian,
	}
	expr := b.Build(p.Compile(b))

	root := invocation(t, follow(t, expr, expr.Result), "reduce.median")
	mapped := invocation(t, follow(t, expr, root.Arguments["collection"].ValueReference), "Collection.map")

	fnNode := follow(t, expr, mapped.Arguments["baseAlgorithm"].ValueReference)
	if fnNode.FunctionDefinitionValue == nil {
		t.Fatalf("baseAlgorithm is not a function definition: %+v", fnNode)
	}
	def := fnNode.FunctionDefinitionValue
	if len(def.ArgumentNames) != 1 || def.ArgumentNames[0] != "image" {
		t.Errorf("argumentNames = %v", def.ArgumentNames)
	}

	body := invocation(t, follow(t, expr, def.Body), "Image.updateMask")
	if body.Arguments["image"].ArgumentReference != "image" {
		t.Errorf("updateMask input = %+v, want the mapped image argument", body.Arguments["image"])
	}

	// The mask is a chain of three ANDs over four neq comparisons.
	ands, neqs := 0, 0
	for _, node := range expr.Values {
		if node.FunctionInvocationValue == nil {
			continue
		}
		switch node.FunctionInvocationValue.FunctionName {
		case "Image.and":
			ands++
		case "Image.neq":
			neqs++
		}
	}
	if ands != 3 || neqs != 4 {
		t.Errorf("mask graph has %d ands and %d neqs, want 3 and 4", ands, neqs)
	}
}
