package runner

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// confirmSave asks the operator whether to persist the configuration just
// applied to a device.
func confirmSave(device string) (bool, error) {
	var confirmed bool
	confirm := huh.NewConfirm().
		Title(fmt.Sprintf("Save configuration on %s?", device)).
		Affirmative("Save").
		Negative("Skip").
		Value(&confirmed)
	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
