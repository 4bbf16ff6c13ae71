//go:build !unix

package presets

func checkWritable(string) error { return nil }
