package capability

import "fmt"

func errUnknownCapability(id string) error {
	return fmt.Errorf("unknown capability %q", id)
}

func errNoMapping(id string, target PlatformKey) error {
	return fmt.Errorf("no platform mapping for capability %q on %s/%s/%s/%s",
		id, target.Family, target.Distribution, target.VersionRange, target.Arch)
}

func errUnknownManager(managerID string) error {
	return fmt.Errorf("no install command known for package manager %q", managerID)
}
