package rpn

// CallNode calls a function defined by an expression. The body reads its
// arguments through ArgumentNodes relative to the frame the call creates.
type CallNode struct {
	RefCount
	name  string
	body  *Expression
	nargs int
}

func (c *CallNode) Flags() Flags    { return PresentsOp | SucceedsOp }
func (c *CallNode) Precedence() int { return funcPrec }
func (c *CallNode) Arity() int      { return c.nargs }
func (c *CallNode) String() string  { return c.name }

// Volatile reports whether the body is volatile. Arguments are not volatile
// by themselves, so a call is cacheable whenever its operands are.
func (c *CallNode) Volatile() bool {
	return c.body.Volatile()
}

// Eval evaluates the body in a new frame. The body's own cache is bypassed,
// since its result depends on the arguments.
func (c *CallNode) Eval(ev *Evaluator) (float64, error) {
	return ev.Call(c.nargs, c.body.eval)
}

// Body returns the expression the function evaluates.
func (c *CallNode) Body() *Expression {
	return c.body
}

// Release clears the body once no expression calls the function.
func (c *CallNode) Release() {
	c.body.Clear()
}

func (c *CallNode) depthHint() int {
	return c.body.MaxDepth()
}

func (c *CallNode) bind(n int) (Node, bool) {
	if n != c.nargs {
		return nil, false
	}
	return c, true
}

func (c *CallNode) canCall(n int) bool {
	return n == c.nargs
}

func (c *CallNode) callName() string {
	return c.name
}

var (
	_ callable    = (*CallNode)(nil)
	_ Releaser    = (*CallNode)(nil)
	_ depthHinter = (*CallNode)(nil)
)
