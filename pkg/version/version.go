package version

// version is set at build time with -ldflags "-X github.com/cbodonnell/snek/pkg/version.version=<v>"
var version = "dev"

func Get() string {
	return version
}
