// Package ops defines the scalar operations a graph node can record.
//
// Every operation provides:
//   - Forward: the value of lhs op rhs, computed with plain IEEE-754 arithmetic
//   - Rule: the local gradient rule applied during the backward pass
//
// Supported operations:
//   - Add: d(a+b)/da = 1, d(a+b)/db = 1
//   - Sub: shares the additive rule (the sign lives in the forward value)
//   - Mul: d(a*b)/da = b, d(a*b)/db = a
//   - Div: shares the multiplicative rule
//
// Kinds are plain values, so a node that records one stays comparable and
// printable.
package ops

import "fmt"

// Kind identifies the operation that produced a node.
// None marks leaves.
type Kind uint8

// Operation kinds.
const (
	None Kind = iota
	Add
	Sub
	Mul
	Div
)

// GradRule returns the contributions an operation's output gradient makes to
// its two operands, given the operand values.
//
// The caller accumulates them:
//
//	lhs.Grad += gradLhs
//	rhs.Grad += gradRhs
type GradRule func(lhs, rhs, outGrad float64) (gradLhs, gradRhs float64)

type operation struct {
	name    string
	symbol  string
	forward func(lhs, rhs float64) float64
	rule    GradRule
}

var operations = [...]operation{
	None: {name: "none"},
	Add:  {name: "add", symbol: "+", forward: addForward, rule: additiveRule},
	Sub:  {name: "sub", symbol: "-", forward: subForward, rule: additiveRule},
	Mul:  {name: "mul", symbol: "*", forward: mulForward, rule: multiplicativeRule},
	Div:  {name: "div", symbol: "/", forward: divForward, rule: multiplicativeRule},
}

// Kinds returns every binary operation kind, None excluded.
func Kinds() []Kind {
	return []Kind{Add, Sub, Mul, Div}
}

// Valid reports whether k is a known kind (None included).
func (k Kind) Valid() bool {
	return int(k) < len(operations)
}

// IsBinary reports whether k combines two operands.
func (k Kind) IsBinary() bool {
	return k != None && k.Valid()
}

// String returns the lowercase operation name.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return operations[k].name
}

// Symbol returns the infix symbol of a binary kind, "" otherwise.
func (k Kind) Symbol() string {
	if !k.Valid() {
		return ""
	}
	return operations[k].symbol
}

// Forward computes lhs op rhs.
//
// Division by zero is not checked: it yields ±Inf or NaN as ordinary float
// arithmetic does. Forward panics for None and unknown kinds; graph code
// validates the kind before calling it.
func (k Kind) Forward(lhs, rhs float64) float64 {
	if !k.IsBinary() {
		panic(fmt.Sprintf("ops: forward on non-binary kind %s", k))
	}
	return operations[k].forward(lhs, rhs)
}

// Rule returns the gradient rule of k, or nil for None and unknown kinds.
func (k Kind) Rule() GradRule {
	if !k.Valid() {
		return nil
	}
	return operations[k].rule
}
