package table

import "context"

// Cursor returns the current cursor position.
func (c *Controller) Cursor() Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// MoveCursor moves the cursor by the given deltas, clamped to the table.
func (c *Controller) MoveCursor(dRow, dCol int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCursorLocked(c.cursor.Row+dRow, c.cursor.Col+dCol)
}

// SetCursor moves the cursor to (row, col), clamped to the table.
func (c *Controller) SetCursor(row, col int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCursorLocked(row, col)
}

// CursorKeys returns the row key and column key under the cursor. ok is
// false when the table is empty.
func (c *Controller) CursorKeys() (rowKey, columnKey string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.order) == 0 {
		return "", "", false
	}
	return c.order[c.cursor.Row], c.columns[c.cursor.Col].Key, true
}

// SortCursor sorts by the column under the cursor.
func (c *Controller) SortCursor(descending bool) error {
	c.mu.Lock()
	col := c.columns[c.cursor.Col].Key
	c.mu.Unlock()
	return c.Sort(col, descending)
}

// EditCursor edits the cell under the cursor. It is a no-op on an empty
// table or a read-only column.
func (c *Controller) EditCursor(ctx context.Context) error {
	rowKey, colKey, ok := c.CursorKeys()
	if !ok {
		return nil
	}
	return c.Edit(ctx, rowKey, colKey)
}

// DeleteCursor deletes the row under the cursor after confirmation.
func (c *Controller) DeleteCursor(ctx context.Context) error {
	rowKey, _, ok := c.CursorKeys()
	if !ok {
		return nil
	}
	return c.Delete(ctx, rowKey)
}

func (c *Controller) setCursorLocked(row, col int) {
	c.cursor.Row = clamp(row, 0, len(c.order)-1)
	c.cursor.Col = clamp(col, 0, len(c.columns)-1)
}

func (c *Controller) cursorKeyLocked() string {
	if len(c.order) == 0 || c.cursor.Row >= len(c.order) {
		return ""
	}
	return c.order[c.cursor.Row]
}

// restoreCursorLocked puts the cursor back on key if it is still present,
// otherwise clamps the current position.
func (c *Controller) restoreCursorLocked(key string) {
	if key != "" {
		for i, k := range c.order {
			if k == key {
				c.cursor.Row = i
				return
			}
		}
	}
	c.setCursorLocked(c.cursor.Row, c.cursor.Col)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
