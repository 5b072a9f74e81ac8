package version

import "fmt"

// Значения подставляются при сборке через -ldflags:
//
//	-X github.com/blackbeesoft/erp/internal/version.release=v1.2.0
var (
	release   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Build описывает версию собранного бинарника.
type Build struct {
	Release   string
	GitCommit string
	BuildDate string
}

// Current возвращает информацию о текущей сборке.
func Current() Build {
	return Build{Release: release, GitCommit: gitCommit, BuildDate: buildDate}
}

func (b Build) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", b.Release, b.GitCommit, b.BuildDate)
}
