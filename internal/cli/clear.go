package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/engine"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/gitsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/localsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/pkgsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/urlsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/httputil"
	"github.com/seanwallawalla-forks/gyro/pkg/lockfile"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// clearCommand creates the "clear" command: force a specific root alias
// to be re-fetched on the next run by removing its Resolution Entry
// from the lockfile.
func (c *CLI) clearCommand() *cobra.Command {
	var manifestPath, lockfilePath, registryURL string

	cmd := &cobra.Command{
		Use:   "clear <alias>",
		Short: "Force a root dependency to be re-fetched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]

			proj, err := project.Load(manifestPath)
			if err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}
			oldLock, err := readLockfile(lockfilePath)
			if err != nil {
				return err
			}

			dir, _ := cacheDir()
			respCache := newFileCache(false)
			drivers := []depgraph.Driver{
				pkgsrc.New(httputil.NewClient(respCache, nil), registryURL),
				localsrc.New("."),
				urlsrc.New(httputil.NewClient(respCache, nil), dir),
				gitsrc.New(dir),
			}

			eng, err := engine.New(proj, drivers, oldLock, engine.Options{Logger: c.Logger, CacheDir: dir})
			if err != nil {
				return err
			}
			defer eng.Close()

			if !eng.ClearResolution(alias) {
				printWarning("No resolution entry found for %q", alias)
				printDetail("check that %q is a root dependency alias in %s", alias, manifestPath)
				return nil
			}

			newLock, err := lockfile.Emit(eng.Drivers(), eng.DriverOrder())
			if err != nil {
				return fmt.Errorf("emit lockfile: %w", err)
			}
			if err := os.WriteFile(lockfilePath, []byte(newLock), 0o644); err != nil {
				return fmt.Errorf("write lockfile: %w", err)
			}

			printSuccess("Cleared resolution for %q", alias)
			printNextStep("Re-resolve it", "gyro fetch")
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", defaultManifestName, "path to the project manifest")
	cmd.Flags().StringVar(&lockfilePath, "lockfile", defaultLockfileName, "path to the lockfile")
	cmd.Flags().StringVar(&registryURL, "registry", "https://registry.example.com", "base URL of the package registry")

	return cmd
}
