package assert

// NotNil panics if value is nil, it is meant for constructor arguments that
// must always be provided.
func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}
