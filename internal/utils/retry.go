package utils

// RetryOnce runs fn and, when it fails with an error accepted by retryable,
// runs it one more time. The last error is returned.
func RetryOnce(fn func() error, retryable func(error) bool) error {
	err := fn()
	if err == nil || retryable == nil || !retryable(err) {
		return err
	}
	return fn()
}
