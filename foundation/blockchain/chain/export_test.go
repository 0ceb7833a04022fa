package chain

// SetProgressInterval changes how often mining progress is reported and
// returns a function that restores the original value.
func SetProgressInterval(n uint64) func() {
	orig := progressInterval
	progressInterval = n

	return func() { progressInterval = orig }
}
