package ast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// computeMetrics walks def's body once, filling in the complexity fields of
// d. Cyclomatic complexity starts at 1 and gains 1 per DecisionKind node.
// Cognitive complexity follows the SonarSource definition: +1 per decision
// point, plus the current nesting level for nodes that nest (an `if` three
// levels deep costs 4, not 1). MaxNesting is the deepest NestingKind
// encountered; ParamCount reads the definition's own parameter list.
func computeMetrics(spec *LanguageSpec, n *tree_sitter.Node, d *Definition) {
	d.Cyclomatic = 1
	d.ParamCount = countParams(n)

	var walk func(node *tree_sitter.Node, nesting int)
	walk = func(node *tree_sitter.Node, nesting int) {
		kind := node.Kind()

		decision := spec.DecisionKinds[kind]
		if decision && kind == "binary_expression" {
			// Only the short-circuit operators are decision points;
			// arithmetic and comparison binaries are not.
			op := node.ChildByFieldName("operator")
			decision = op != nil && (op.Kind() == "&&" || op.Kind() == "||" || op.Kind() == "??")
		}
		if decision {
			d.Cyclomatic++
			d.Cognitive++
			if spec.NestingKinds[kind] {
				d.Cognitive += nesting
			}
		}
		if spec.LambdaKinds[kind] {
			d.LambdaCount++
		}
		if spec.ReturnKinds[kind] {
			d.ReturnCount++
		}
		if spec.ThrowKinds[kind] {
			d.ThrowCount++
		}
		if spec.CallKinds[kind] {
			d.CallCount++
		}

		childNesting := nesting
		if spec.NestingKinds[kind] {
			childNesting++
			if childNesting > d.MaxNesting {
				d.MaxNesting = childNesting
			}
		}

		count := int(node.ChildCount())
		for i := 0; i < count; i++ {
			child := node.Child(uint(i))
			if child != nil {
				walk(child, childNesting)
			}
		}
	}

	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(uint(i))
		if child != nil {
			walk(child, 0)
		}
	}
}

func countParams(n *tree_sitter.Node) int {
	paramsNode := n.ChildByFieldName("parameters")
	if paramsNode == nil {
		paramsNode = n.ChildByFieldName("parameter_list")
	}
	if paramsNode == nil {
		return 0
	}
	return int(paramsNode.NamedChildCount())
}
