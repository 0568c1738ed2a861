package task

// TaskOption - частичное обновление задачи, применяется только к переданным полям
type TaskOption func(*Task)

func WithTitle(title *string) TaskOption {
	if title == nil {
		return nil
	}
	value := *title
	return func(task *Task) {
		task.Title = value
	}
}

func WithColor(color *string) TaskOption {
	if color == nil {
		return nil
	}
	value := *color
	return func(task *Task) {
		task.Color = value
	}
}

func WithCompleted(completed *bool) TaskOption {
	if completed == nil {
		return nil
	}
	value := *completed
	return func(task *Task) {
		task.Completed = value
	}
}

// Apply пропускает nil-опции
func Apply(t *Task, options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
