package scheduler

import "github.com/crewboard/daily-schedule/backend/internal/domain"

// GroupRows 按工地把连续的行分组，结果按组内第一行的下标排序
//
// 规则：
//  1. 从左到右扫描，记录已经被认领的行
//  2. 对于未被认领、工地不为空且没有被拆分（UnmergedFromJob = false）的行，开始一个新组，
//     向后扩展直到遇到工地不同或者被拆分的行
//  3. 其余未被认领的行（没有工地，或被拆分的行）各自成为只有一行的组
//  4. 每组的共享字段取自组内第一行
func GroupRows(rows []domain.AssignmentRow) []Group {
	visible := make([]int, len(rows))
	for i := range rows {
		visible[i] = i
	}
	return GroupVisible(rows, visible)
}

// GroupVisible 只对 visible 中的行分组（用于文本过滤后的视图），连续性按 visible 的顺序判断，
// 返回的下标仍然是 rows 中的下标
func GroupVisible(rows []domain.AssignmentRow, visible []int) []Group {
	claimed := make([]bool, len(visible))
	groups := make([]Group, 0, len(visible))

	for pos, index := range visible {
		if claimed[pos] {
			continue
		}
		claimed[pos] = true
		head := &rows[index]

		group := Group{
			Indices: []int{index},
			JobID:   cloneInt64(head.JobID),
			Merged:  mergedViewOf(head),
		}

		if head.JobID != nil && !head.UnmergedFromJob {
			for next := pos + 1; next < len(visible); next++ {
				row := &rows[visible[next]]
				if claimed[next] || row.UnmergedFromJob || !head.SameJob(row) {
					break
				}
				claimed[next] = true
				group.Indices = append(group.Indices, visible[next])
			}
		}

		groups = append(groups, group)
	}

	return groups
}

// GroupOf 找到包含 index 的组
func GroupOf(groups []Group, index int) (Group, bool) {
	for _, g := range groups {
		if g.Contains(index) {
			return g, true
		}
	}
	return Group{}, false
}
