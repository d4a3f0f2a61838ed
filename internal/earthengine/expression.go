// Package earthengine speaks the Earth Engine v1 REST API: it serializes
// image-processing expressions into the service's graph format and exchanges
// them for map tile URL templates. All pixel work happens on the remote
// service; this package only describes it.
package earthengine

import "strconv"

// Expression is the serialized form the service evaluates: a flat graph of
// numbered value nodes plus the key of the node holding the result.
type Expression struct {
	Values map[string]ValueNode `json:"values"`
	Result string               `json:"result"`
}

// ValueNode is one node of the expression graph. Exactly one field is set.
type ValueNode struct {
	ConstantValue           any                 `json:"constantValue,omitempty"`
	ArgumentReference       string              `json:"argumentReference,omitempty"`
	ValueReference          string              `json:"valueReference,omitempty"`
	FunctionInvocationValue *FunctionInvocation `json:"functionInvocationValue,omitempty"`
	FunctionDefinitionValue *FunctionDefinition `json:"functionDefinitionValue,omitempty"`
}

// FunctionInvocation calls a named server-side algorithm with a map of
// argument nodes.
type FunctionInvocation struct {
	FunctionName string               `json:"functionName"`
	Arguments    map[string]ValueNode `json:"arguments"`
}

// FunctionDefinition declares an anonymous function (used by Collection.map);
// Body is the key of the node computing its result.
type FunctionDefinition struct {
	ArgumentNames []string `json:"argumentNames"`
	Body          string   `json:"body"`
}

// Const wraps a literal as an inline argument node.
func Const(v any) ValueNode { return ValueNode{ConstantValue: v} }

// Arg references a named argument of the enclosing function definition.
func Arg(name string) ValueNode { return ValueNode{ArgumentReference: name} }

// Ref identifies a node already added to a Builder's graph.
type Ref string

// Node turns a reference into an argument node.
func (r Ref) Node() ValueNode { return ValueNode{ValueReference: string(r)} }

// Builder assembles an expression graph, numbering nodes in insertion order.
type Builder struct {
	values map[string]ValueNode
	next   int
}

// NewBuilder returns an empty expression builder.
func NewBuilder() *Builder {
	return &Builder{values: make(map[string]ValueNode)}
}

func (b *Builder) add(n ValueNode) Ref {
	key := strconv.Itoa(b.next)
	b.next++
	b.values[key] = n
	return Ref(key)
}

// Constant adds a standalone constant node.
func (b *Builder) Constant(v any) Ref {
	return b.add(Const(v))
}

// Invoke adds a function invocation node and returns its reference.
func (b *Builder) Invoke(name string, args map[string]ValueNode) Ref {
	return b.add(ValueNode{FunctionInvocationValue: &FunctionInvocation{
		FunctionName: name,
		Arguments:    args,
	}})
}

// Define adds a one-argument function definition whose body is produced by
// fn. Body nodes share the builder's graph, as the wire format requires.
func (b *Builder) Define(argName string, fn func(arg ValueNode) Ref) Ref {
	body := fn(Arg(argName))
	return b.add(ValueNode{FunctionDefinitionValue: &FunctionDefinition{
		ArgumentNames: []string{argName},
		Body:          string(body),
	}})
}

// Build finalizes the graph with result as the root node.
func (b *Builder) Build(result Ref) *Expression {
	return &Expression{Values: b.values, Result: string(result)}
}
