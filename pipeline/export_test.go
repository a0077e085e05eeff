package pipeline

// CommitStage records stage data on a Context for tests.
func CommitStage(c *Context, data any) { c.commit(data) }
