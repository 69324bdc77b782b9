package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/cubescout/internal/registry"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest <manifest>",
	Short: "Check a training manifest",
	Long: `Parse a training manifest and list the people it defines.
Each line is "path;label". Names are taken from the directory containing the
first image of each label.`,
	Args: cobra.ExactArgs(1),
	RunE: runManifest,
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}

func runManifest(cmd *cobra.Command, args []string) error {
	m, err := registry.LoadManifest(args[0])
	if err != nil {
		return err
	}
	reg, err := registry.FromManifest(m)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d images, %d people", len(m.Entries), reg.Len())
	if m.Skipped > 0 {
		fmt.Fprintf(out, ", %d malformed lines skipped", m.Skipped)
	}
	fmt.Fprintln(out)

	for _, id := range reg.Identities() {
		name, _ := reg.Name(id)
		fmt.Fprintf(out, "  %4s  %-24s %d images\n", id, name, reg.Samples(id))
	}
	return nil
}
