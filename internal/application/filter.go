package application

// FilterTodos returns the items matching mode in list order. The input is not modified.
func FilterTodos(items []TodoItem, mode FilterMode) []TodoItem {
	out := make([]TodoItem, 0, len(items))
	for _, item := range items {
		switch mode {
		case FilterCompleted:
			if !item.Completed {
				continue
			}
		case FilterPending:
			if item.Completed {
				continue
			}
		}
		out = append(out, item.clone())
	}
	return out
}

// Summarize counts items by completion state.
func Summarize(items []TodoItem) Summary {
	summary := Summary{Total: len(items)}
	for _, item := range items {
		if item.Completed {
			summary.Completed++
		}
	}
	summary.Pending = summary.Total - summary.Completed
	return summary
}
