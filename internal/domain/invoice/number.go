package invoice

import (
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

// NumberGenerator issues invoice ids that are unique within the process
type NumberGenerator interface {
	Next() string
}

// SnowflakeNumbers issues ids of the form INV-<snowflake id>
type SnowflakeNumbers struct {
	node *snowflake.Node
}

// NewSnowflakeNumbers creates a generator for the given node (0-1023)
func NewSnowflakeNumbers(node int64) (*SnowflakeNumbers, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &SnowflakeNumbers{node: n}, nil
}

// Next returns a new invoice id
func (s *SnowflakeNumbers) Next() string {
	return "INV-" + s.node.Generate().String()
}

// SequenceNumbers issues INV-<prefix><n> ids from an in-memory counter
type SequenceNumbers struct {
	prefix string
	n      atomic.Int64
}

// NewSequenceNumbers creates a counter based generator
func NewSequenceNumbers(prefix string) *SequenceNumbers {
	return &SequenceNumbers{prefix: prefix}
}

// Next returns a new invoice id
func (s *SequenceNumbers) Next() string {
	return fmt.Sprintf("INV-%s%d", s.prefix, s.n.Add(1))
}
