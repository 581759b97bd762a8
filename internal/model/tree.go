package model

import "fmt"

// Tree node kinds.
const (
	KindMessage     = "message"
	KindSignal      = "signal"
	KindEnumeration = "enumeration"
	KindCodes       = "codes"
	KindLabels      = "labels"
)

// TreeNode is one node of the database tree written to the conversion
// report. Each node carries its subtree inline.
//
// Example:
//
//	EngineStatus (message 0x64)
//	  EngineState (signal CAN_0001)
//	    VTB_0001 (enumeration)
//	      ARR_0001 (codes)
//	      ARR_0002 (labels)
//	  EngineTemp (signal CAN_0002)
type TreeNode struct {
	Kind     string      `json:"kind"`
	Name     string      `json:"name,omitempty"`
	ID       string      `json:"id,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// BuildTree links every message and signal to the identifiers the builder
// assigned it. rows must be the CAN rows built from messages, in order.
func BuildTree(messages []*Message, rows []CANRow) ([]*TreeNode, error) {
	roots := make([]*TreeNode, 0, len(messages))

	i := 0
	for _, msg := range messages {
		node := &TreeNode{
			Kind: KindMessage,
			Name: msg.Name,
			ID:   fmt.Sprintf("0x%X", msg.ID),
		}
		for _, sig := range msg.Signals {
			if i >= len(rows) {
				return nil, fmt.Errorf("tree: no row for signal %s.%s", msg.Name, sig.Name)
			}
			row := rows[i]
			i++
			if row.Message != msg.Name || row.Signal != sig.Name {
				return nil, fmt.Errorf("tree: row %s is %s.%s, want %s.%s",
					row.ID, row.Message, row.Signal, msg.Name, sig.Name)
			}
			node.Children = append(node.Children, signalNode(row))
		}
		roots = append(roots, node)
	}
	if i != len(rows) {
		return nil, fmt.Errorf("tree: %d rows for %d signals", len(rows), i)
	}
	return roots, nil
}

func signalNode(row CANRow) *TreeNode {
	node := &TreeNode{Kind: KindSignal, Name: row.Signal, ID: row.ID}
	if row.BridgeID == NA {
		return node
	}
	node.Children = []*TreeNode{{
		Kind: KindEnumeration,
		ID:   row.BridgeID,
		Children: []*TreeNode{
			{Kind: KindCodes, ID: row.InputArrayID},
			{Kind: KindLabels, ID: row.OutputArrayID},
		},
	}}
	return node
}
