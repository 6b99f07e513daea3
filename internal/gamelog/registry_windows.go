//go:build windows

package gamelog

import (
	"golang.org/x/sys/windows/registry"
)

// installPathFromRegistry reads the client's install root from its
// uninstall entry. Both registry hives are probed; the launcher writes
// HKLM, per-user installs HKCU.
func installPathFromRegistry(p Profile) (string, error) {
	roots := []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER}
	for _, keyPath := range p.RegistryKeys {
		for _, root := range roots {
			k, err := registry.OpenKey(root, keyPath, registry.QUERY_VALUE)
			if err != nil {
				continue
			}
			path, _, err := k.GetStringValue("InstallPath")
			k.Close()
			if err == nil && path != "" {
				return path, nil
			}
		}
	}
	return "", ErrNotFound
}
