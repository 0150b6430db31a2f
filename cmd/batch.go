package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/provebench/leanc/internal/batch"
	"github.com/provebench/leanc/internal/config"
	"github.com/provebench/leanc/internal/service"
)

var batchCmd = &cobra.Command{
	Use:          "batch <manifest.json>",
	Short:        "Compile a batch of requests under a concurrency ceiling",
	Long:         `Read a JSON array of compile requests from a manifest file and execute them with at most --max-concurrent in flight.`,
	RunE:         runBatch,
	SilenceUsage: true,
	Args:         cobra.ExactArgs(1),
}

func init() {
	batchCmd.Flags().IntP("max-concurrent", "c", 0, "Maximum concurrent compilations")
	batchCmd.Flags().IntP("timeout", "t", 0, "Default compilation timeout in seconds")
	batchCmd.Flags().Bool("no-cache", false, "Bypass the result cache")
	batchCmd.Flags().Int("cache-ttl", 0, "Cache entry TTL in seconds (0 keeps entries forever)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	var requests []service.Request
	if err := json.Unmarshal(data, &requests); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	if len(requests) == 0 {
		return fmt.Errorf("manifest contains no requests")
	}

	// Resolve relative project roots against the manifest location
	manifestDir := filepath.Dir(args[0])
	for i := range requests {
		if requests[i].ProjectRoot == "" {
			requests[i].ProjectRoot = manifestDir
		}

		if !filepath.IsAbs(requests[i].ProjectRoot) {
			requests[i].ProjectRoot = filepath.Join(manifestDir, requests[i].ProjectRoot)
		}
	}

	bindPersistentFlags(cmd.Root())

	cfg, err := config.NewLoader().LoadForCompile(cmd, requests[0].ProjectRoot)
	if err != nil {
		return err
	}

	comps, err := newComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.close()

	if !comps.invoker.Installed(cmd.Context()) {
		fmt.Fprintln(os.Stderr, "Warning: elan toolchain not detected; compilation may fail")
	}

	responses := batch.Run(cmd.Context(), comps.svc, requests, cfg.MaxConcurrent, comps.log)

	if err := printJSON(responses); err != nil {
		return err
	}

	failed := 0
	for _, resp := range responses {
		if !resp.Success {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d compilations failed", failed, len(responses))
	}

	return nil
}
