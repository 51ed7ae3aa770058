package models

import (
	"github.com/ammiranda/idtree/tree"
)

// Node represents a single node in a tree snapshot
type Node struct {
	ID       string  `json:"id" yaml:"id" dynamodbav:"id"`
	ParentID *string `json:"parentId,omitempty" yaml:"parentId,omitempty" dynamodbav:"parentId,omitempty"`
	Position *int    `json:"position,omitempty" yaml:"position,omitempty" dynamodbav:"position,omitempty"`
	Data     any     `json:"data,omitempty" yaml:"data,omitempty" dynamodbav:"data,omitempty"`
	Children []*Node `json:"children" yaml:"children,omitempty" dynamodbav:"children"`
}

// NewNode creates a new snapshot node with the given id
func NewNode(id string) *Node {
	return &Node{
		ID:       id,
		Children: make([]*Node, 0),
	}
}

// AddChild adds a child node to the current node
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// Count returns the number of nodes in the snapshot, n included
func (n *Node) Count() int {
	count := 1
	for _, c := range n.Children {
		count += c.Count()
	}
	return count
}

// FromNode builds a detached snapshot of a single node without children
func FromNode(node *tree.Node) *Node {
	m := NewNode(node.ID())
	if p := node.Parent(); p != nil {
		parentID := p.ID()
		m.ParentID = &parentID
	}
	if pos, ok := node.Position(); ok {
		m.Position = &pos
	}
	m.Data = node.Data()
	return m
}

// BuildTree builds a snapshot of root and its whole subtree
func BuildTree(root *tree.Node) *Node {
	nodeMap := make(map[*tree.Node]*Node)
	var top *Node

	tree.Walk(root, func(n *tree.Node, _ int) bool {
		m := FromNode(n)
		nodeMap[n] = m
		if n == root {
			top = m
			return true
		}
		if parent, ok := nodeMap[n.Parent()]; ok {
			parent.AddChild(m)
		}
		return true
	})

	return top
}
