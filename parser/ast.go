package parser

// Node is the base interface for all AST nodes
type Node interface {
	Position() Position
}

// Item is anything that may appear in a program body
type Item interface {
	Node
	itemNode()
}

// File is the root of a parsed source file
type File struct {
	Pos  Position
	Body *Program
}

func (f *File) Position() Position { return f.Pos }

// Program is a sequence of items: the whole file, one list element,
// or one block of a loop
type Program struct {
	Pos   Position
	Items []Item
}

func (p *Program) Position() Position { return p.Pos }

// IntegerLit is a run of decimal digits
type IntegerLit struct {
	Pos  Position
	Text string
}

func (n *IntegerLit) Position() Position { return n.Pos }
func (n *IntegerLit) itemNode()          {}

// ComplexLit is re°im. The front end splits the components; Text keeps
// the literal as written.
type ComplexLit struct {
	Pos  Position
	Text string
	Real string
	Imag string
}

func (n *ComplexLit) Position() Position { return n.Pos }
func (n *ComplexLit) itemNode()          {}

// StringKind records which of the three string forms was written
type StringKind int

const (
	StringNormal     StringKind = iota // `text`
	StringSingleChar                   // \c
	StringDoubleChar                   // ‛cc
)

// StringLit is a string with escapes already resolved
type StringLit struct {
	Pos   Position
	Kind  StringKind
	Value string
}

func (n *StringLit) Position() Position { return n.Pos }
func (n *StringLit) itemNode()          {}

// ListLit is ⟨a|b|c⟩; each element is its own program
type ListLit struct {
	Pos   Position
	Items []*Program
}

func (n *ListLit) Position() Position { return n.Pos }
func (n *ListLit) itemNode()          {}

// VariableAssn is →name (store) or ←name (load)
type VariableAssn struct {
	Pos  Position
	Sign string // SignSet or SignGet
	Name string
}

func (n *VariableAssn) Position() Position { return n.Pos }
func (n *VariableAssn) itemNode()          {}

// IsStore reports whether the access writes the variable
func (n *VariableAssn) IsStore() bool { return n.Sign == SignSet }

// Element is a built-in operator with an optional modifier prefix
type Element struct {
	Pos      Position
	Modifier string
	Text     string
}

func (n *Element) Position() Position { return n.Pos }
func (n *Element) itemNode()          {}

// Key is the catalog lookup key: modifier followed by token text
func (n *Element) Key() string { return n.Modifier + n.Text }

// WhileLoop is {body} or {cond|body}
type WhileLoop struct {
	Pos    Position
	Blocks []*Program
}

func (n *WhileLoop) Position() Position { return n.Pos }
func (n *WhileLoop) itemNode()          {}
