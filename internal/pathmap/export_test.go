package pathmap

// SetApplyRule swaps the rule application function and returns a restore func.
func SetApplyRule(fn func(r Rule, input string) (string, error)) func() {
	prev := applyRule
	applyRule = fn
	return func() { applyRule = prev }
}
