//go:build !windows

package gamelog

func installPathFromRegistry(Profile) (string, error) {
	return "", ErrUnsupported
}
