package dashboard

import "fmt"

func columnID(idx int) string {
	return fmt.Sprintf("col-%d", idx+1)
}

func emptyColumns(count int) []Column {
	cols := make([]Column, count)
	for i := range cols {
		cols[i] = Column{ID: columnID(i), WidgetIDs: []string{}}
	}
	return cols
}

// fewestChildren picks the column with the fewest widgets; ties go to the
// first such column.
func fewestChildren(cols []Column) int {
	if len(cols) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(cols); i++ {
		if len(cols[i].WidgetIDs) < len(cols[best].WidgetIDs) {
			best = i
		}
	}
	return best
}

// resizeColumns grows or shrinks cols to count, returning the widgets that
// lived in removed columns in column-then-position order.
func resizeColumns(cols []Column, count int) ([]Column, []string) {
	if count >= len(cols) {
		for i := len(cols); i < count; i++ {
			cols = append(cols, Column{ID: columnID(i), WidgetIDs: []string{}})
		}
		return cols, nil
	}
	var orphans []string
	for _, col := range cols[count:] {
		orphans = append(orphans, col.WidgetIDs...)
	}
	return cols[:count], orphans
}

func indexOfColumn(cols []Column, id string) int {
	for i, col := range cols {
		if col.ID == id {
			return i
		}
	}
	return -1
}

func locateWidget(cols []Column, widgetID string) (int, int) {
	for ci, col := range cols {
		for wi, id := range col.WidgetIDs {
			if id == widgetID {
				return ci, wi
			}
		}
	}
	return -1, -1
}

func removeAt(ids []string, idx int) []string {
	return append(ids[:idx], ids[idx+1:]...)
}

func insertAt(ids []string, idx int, id string) []string {
	if idx < 0 || idx > len(ids) {
		idx = len(ids)
	}
	ids = append(ids, "")
	copy(ids[idx+1:], ids[idx:])
	ids[idx] = id
	return ids
}

func cloneColumns(cols []Column) []Column {
	out := make([]Column, len(cols))
	for i, col := range cols {
		out[i] = Column{ID: col.ID, WidgetIDs: append([]string{}, col.WidgetIDs...)}
	}
	return out
}
