package task

// View is the filtered subsequence of a group handed to the UI. Positions in a View
// are only meaningful for that View; mutations must go through Resolve so they land on
// the canonical record even when the filter hides records in between.
type View struct {
	Group string
	Query string
	Items []Task
}

// Len returns the number of visible tasks.
func (v View) Len() int {
	return len(v.Items)
}

// At returns the task shown at pos.
func (v View) At(pos int) (Task, error) {
	if pos < 0 || pos >= len(v.Items) {
		return Task{}, ErrStaleView
	}
	return v.Items[pos], nil
}

// Resolve maps a visible position to the stable identity of the record shown there.
func (v View) Resolve(pos int) (ID, error) {
	t, err := v.At(pos)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}
