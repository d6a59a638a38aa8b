package parser

import (
	"strings"
)

// Unparse converts a node back to source text. Items are separated by a
// single space so adjacent numbers and names stay distinct; reparsing the
// result yields an equivalent tree.
func Unparse(node Node) string {
	var sb strings.Builder
	unparseNode(&sb, node)
	return sb.String()
}

func unparseNode(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case *File:
		unparseNode(sb, n.Body)

	case *Program:
		for i, item := range n.Items {
			if i > 0 {
				sb.WriteByte(' ')
			}
			unparseNode(sb, item)
		}

	case *IntegerLit:
		sb.WriteString(n.Text)

	case *ComplexLit:
		if n.Real != "" || n.Imag != "" {
			sb.WriteString(n.Real + ComplexSeparator + n.Imag)
		} else {
			sb.WriteString(n.Text)
		}

	case *StringLit:
		switch n.Kind {
		case StringSingleChar:
			sb.WriteString(`\` + n.Value)
		case StringDoubleChar:
			sb.WriteString("‛" + n.Value)
		default:
			sb.WriteByte('`')
			for _, r := range n.Value {
				if r == '`' || r == '\\' {
					sb.WriteByte('\\')
				}
				sb.WriteRune(r)
			}
			sb.WriteByte('`')
		}

	case *ListLit:
		sb.WriteString("⟨")
		unparseBlocks(sb, n.Items)
		sb.WriteString("⟩")

	case *VariableAssn:
		sb.WriteString(n.Sign + n.Name)

	case *Element:
		sb.WriteString(n.Modifier + n.Text)

	case *WhileLoop:
		sb.WriteString("{")
		unparseBlocks(sb, n.Blocks)
		sb.WriteString("}")
	}
}

func unparseBlocks(sb *strings.Builder, blocks []*Program) {
	for i, b := range blocks {
		if i > 0 {
			sb.WriteByte('|')
		}
		unparseNode(sb, b)
	}
}
