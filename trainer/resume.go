package trainer

import "github.com/bayronik/emulator/weights"

// Resume warm-starts the model from a previously written snapshot. With
// resume false it is a no-op.
func Resume(m Model, resume bool, path string) error {
	if !resume {
		return nil
	}
	s, err := weights.ReadFile(path)
	if err != nil {
		return err
	}
	return m.Restore(s)
}
