package ast

import "math/big"

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

type Node interface {
	Position() Pos
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

type Program struct {
	Stmts []Stmt
}

// VarDecl declares one or more bindings. Init is nil for a bare name.
type VarDecl struct {
	Kind  string // const, let or var
	Names []string
	Inits []Expr
	Pos
}

type ExprStmt struct {
	X Expr
	Pos
}

type NumberLit struct {
	Value float64
	Pos
}

type BigIntLit struct {
	Value *big.Int
	Pos
}

type StringLit struct {
	Value string
	Pos
}

type BoolLit struct {
	Value bool
	Pos
}

type NullLit struct {
	Pos
}

type RegexLit struct {
	Pattern string
	Flags   string
	Pos
}

type Ident struct {
	Name string
	Pos
}

// ArrayLit elements are nil for holes.
type ArrayLit struct {
	Elems []Expr
	Pos
}

// Property is one object literal entry. Key is set for static keys,
// KeyExpr for computed ones.
type Property struct {
	Value     Expr
	KeyExpr   Expr
	Key       string
	Shorthand bool
	Pos
}

type ObjectLit struct {
	Props []Property
	Pos
}

// FuncLit is a function, method or arrow. Bodies are skipped, never
// evaluated.
type FuncLit struct {
	Name  string
	Arrow bool
	Async bool
	Pos
}

// Member is obj.name or obj[expr].
type Member struct {
	Object   Expr
	Property Expr // computed key
	Name     string
	Computed bool
	Pos
}

type Call struct {
	Callee Expr
	Args   []Expr
	Pos
}

type New struct {
	Callee Expr
	Args   []Expr
	Pos
}

type Assign struct {
	Target Expr // *Ident or *Member
	Value  Expr
	Pos
}

type Sequence struct {
	Exprs []Expr
	Pos
}

type Unary struct {
	Op string
	X  Expr
	Pos
}

// Logical is ||, && or ??.
type Logical struct {
	Op    string
	Left  Expr
	Right Expr
	Pos
}

type Conditional struct {
	Test Expr
	Then Expr
	Else Expr
	Pos
}

func (p Pos) Position() Pos { return p }

func (*NumberLit) exprNode()   {}
func (*BigIntLit) exprNode()   {}
func (*StringLit) exprNode()   {}
func (*BoolLit) exprNode()     {}
func (*NullLit) exprNode()     {}
func (*RegexLit) exprNode()    {}
func (*Ident) exprNode()       {}
func (*ArrayLit) exprNode()    {}
func (*ObjectLit) exprNode()   {}
func (*FuncLit) exprNode()     {}
func (*Member) exprNode()      {}
func (*Call) exprNode()        {}
func (*New) exprNode()         {}
func (*Assign) exprNode()      {}
func (*Sequence) exprNode()    {}
func (*Unary) exprNode()       {}
func (*Logical) exprNode()     {}
func (*Conditional) exprNode() {}

func (*VarDecl) stmtNode()  {}
func (*ExprStmt) stmtNode() {}
