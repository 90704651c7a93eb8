package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/blang/semver"
	"github.com/spf13/cobra"

	"github.com/s0up4200/bbcloud/bitbucket"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records the build's version information
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// parsedVersion returns the build version if it is valid semver
func parsedVersion() (semver.Version, bool) {
	v, err := semver.ParseTolerant(strings.TrimPrefix(version, "v"))
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}

// defaultUserAgent is bbcloud/<version> for release builds
func defaultUserAgent() string {
	if v, ok := parsedVersion(); ok {
		return bitbucket.DefaultUserAgent + "/" + v.String()
	}
	return bitbucket.DefaultUserAgent
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// no config or client needed
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bbcloud %s\n", version)
		if v, ok := parsedVersion(); ok && len(v.Pre) > 0 {
			fmt.Println("  pre-release build")
		}
		fmt.Printf("  Build time: %s\n", buildTime)
		fmt.Printf("  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
