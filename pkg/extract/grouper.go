package extract

import (
	"github.com/confmine/confmine/pkg/common"
)

// Group clusters classified lines into blocks anchored on Role-Label lines.
//
// Lines are scanned once in ascending line order. A Role-Label line starts a
// new block (which stays in the result even if it never accretes content)
// and becomes the match anchor. Any other line is accepted into the current
// block when both its indent and its line number are strictly within the
// thresholds of the last accepted line; the accepted line then becomes the
// new anchor. This chain rule lets a block accrete lines that drift far from
// the role label itself, as long as each line stays close to its
// predecessor.
//
// Rejected lines are dropped and never reconsidered, as are lines seen
// before the first Role-Label line. No Role-Label line at all means an empty
// result.
func Group(lines []common.Line, indentDiffThresh int, lnumDiffThresh int) []common.Block {
	blocks := make([]common.Block, 0)
	current := -1
	var anchor common.Line

	for _, line := range lines {
		if line.Label == common.LabelRoleLabel {
			blocks = append(blocks, common.Block{RoleLabel: line, Content: make([]common.Line, 0)})
			current = len(blocks) - 1
			anchor = line
			continue
		}
		if current < 0 {
			continue
		}
		if absDiff(line.Indent, anchor.Indent) < indentDiffThresh &&
			absDiff(line.Num, anchor.Num) < lnumDiffThresh {
			blocks[current].Content = append(blocks[current].Content, line)
			anchor = line
		}
	}

	return blocks
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
