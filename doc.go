// Package rpn parses arithmetic expressions into sequences of nodes in
// evaluation order and evaluates them on a reusable operand stack.
//
// Expressions may be written in infix notation, "3 + 4 * 2", or postfix
// notation, "3 4 2 * +". Either way, the result is the same postfix sequence.
// Infix parsing uses operator precedence, with "^" binding most tightly among
// the binary operators and associating to the right. Functions are written
// with bracketed, comma-separated arguments, e.g. "max(x, y, 1)", or before a
// single bare operand, e.g. "sqrt 2". In postfix notation, a function takes as
// many operands as it can.
//
// Nodes are shared between every expression parsed with the same Context, so
// that a literal or bound function appears once in memory no matter how many
// expressions use it. Each node carries a reference count, and nodes holding
// resources release them when the last expression using them is cleared.
//
// An expression with no volatile nodes caches its result after the first
// evaluation. Variables and functions like rand are volatile.
//
// Functions defined with Context.Define evaluate an expression in their own
// frame of the evaluator's stack. Within the definition, $1 through $n name
// the arguments.
package rpn
