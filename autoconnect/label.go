package autoconnect

import "fmt"

// PrettyLabel returns "[address] alias", falls back to the name and finally to "[address]"
func PrettyLabel(d Device) string {
	alias, err := d.Alias()
	if err == nil && alias != "" {
		return fmt.Sprintf("[%s] %s", d.Address(), alias)
	}

	name, ok, err := d.Name()
	if err == nil && ok {
		return fmt.Sprintf("[%s] %s", d.Address(), name)
	}

	return fmt.Sprintf("[%s]", d.Address())
}
